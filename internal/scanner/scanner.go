// Package scanner evaluates advisory rules against a generated trajectory.
// Rules read the profile and trajectory only; impact estimates come from
// cloning the profile, applying the suggested change, and regenerating.
package scanner

import (
	"context"
	"fmt"
	"sort"

	"github.com/finpath/trajectory-engine/internal/calculation"
	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/money"
)

// Severity weighs a finding. Warnings are money actively being lost; notices
// are posture the household may want to change.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityNotice  Severity = "notice"
)

// Finding is one advisory result. Impact is the estimated lifetime effect of
// acting on it, present only when HasImpact is set.
type Finding struct {
	Rule      string      `json:"rule"`
	Severity  Severity    `json:"severity"`
	RelatedID string      `json:"related_id,omitempty"`
	Summary   string      `json:"summary"`
	Detail    string      `json:"detail"`
	Impact    money.Money `json:"impact"`
	HasImpact bool        `json:"has_impact"`
}

// Scanner runs the advisory rules. It shares the engine with its owner and is
// safe for concurrent use.
type Scanner struct {
	engine *calculation.Engine
}

// NewScanner creates a scanner over the given engine. A nil engine gets a
// default one.
func NewScanner(engine *calculation.Engine) *Scanner {
	if engine == nil {
		engine = calculation.NewEngine()
	}
	return &Scanner{engine: engine}
}

// Scan evaluates every rule against the profile and its trajectory. A nil
// trajectory is generated on the spot. Findings come back ordered: warnings
// before notices, larger impacts first.
func (s *Scanner) Scan(ctx context.Context, profile *domain.Profile, trajectory *domain.Trajectory) ([]Finding, error) {
	if profile == nil {
		return nil, fmt.Errorf("cannot scan: nil profile")
	}
	if trajectory == nil {
		generated, err := s.engine.GenerateTrajectory(ctx, profile)
		if err != nil {
			return nil, err
		}
		trajectory = generated
	}

	candidates := evaluateRules(profile, trajectory)
	findings := make([]Finding, 0, len(candidates))
	for _, c := range candidates {
		finding := c.finding
		if c.whatIf != nil {
			clone := profile.Clone()
			c.whatIf(clone)
			alternate, err := s.engine.GenerateTrajectory(ctx, clone)
			if err != nil {
				return nil, fmt.Errorf("what-if projection for %s: %w", finding.Rule, err)
			}
			finding.Impact = c.impact(trajectory, alternate)
			finding.HasImpact = true
		}
		findings = append(findings, finding)
	}

	sortFindings(findings)
	s.engine.Logger.Infof("scan of %q produced %d findings", profile.Name, len(findings))
	return findings, nil
}

// sortFindings orders warnings before notices, then by descending impact,
// then by rule and related id so equal findings land deterministically.
func sortFindings(findings []Finding) {
	rank := map[Severity]int{SeverityWarning: 0, SeverityNotice: 1}
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if rank[a.Severity] != rank[b.Severity] {
			return rank[a.Severity] < rank[b.Severity]
		}
		if a.Impact != b.Impact {
			return a.Impact > b.Impact
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.RelatedID < b.RelatedID
	})
}
