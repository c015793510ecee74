package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/finpath/trajectory-engine/internal/domain"
)

// Engine wires the per-concern calculators into the trajectory operations the
// rest of the application consumes. Every call projects from its own profile
// snapshot, so a single engine is safe to share across goroutines.
type Engine struct {
	Tax      *TaxCalculator
	BaseYear int
	Logger   Logger
}

// NewEngine creates an engine projecting from the current calendar year.
func NewEngine() *Engine {
	return &Engine{
		Tax:      NewTaxCalculator(),
		BaseYear: time.Now().Year(),
		Logger:   NopLogger{},
	}
}

// NewEngineWithBaseYear pins the first projection year, which keeps output
// stable across calendar year boundaries in tests and saved reports.
func NewEngineWithBaseYear(baseYear int) *Engine {
	engine := NewEngine()
	engine.BaseYear = baseYear
	return engine
}

// SetLogger sets the engine's logger. If nil is provided, a no-op logger is used.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// GenerateTrajectory projects the profile over its full horizon, from current
// age to life expectancy.
func (e *Engine) GenerateTrajectory(ctx context.Context, profile *domain.Profile) (*domain.Trajectory, error) {
	if profile == nil {
		return nil, fmt.Errorf("cannot generate trajectory: nil profile")
	}
	return e.generate(ctx, profile, profile.Assumptions.ProjectionYears())
}

// GenerateQuick projects only the first years of the horizon, for previews
// that redraw on every input change. A non-positive or oversized year count
// falls back to the full horizon.
func (e *Engine) GenerateQuick(ctx context.Context, profile *domain.Profile, years int) (*domain.Trajectory, error) {
	if profile == nil {
		return nil, fmt.Errorf("cannot generate trajectory: nil profile")
	}
	full := profile.Assumptions.ProjectionYears()
	if years <= 0 || years > full {
		years = full
	}
	return e.generate(ctx, profile, years)
}

func (e *Engine) generate(ctx context.Context, profile *domain.Profile, horizon int) (*domain.Trajectory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.Logger.Infof("generating trajectory for %q over %d years", profile.Name, horizon)
	trajectory := newProjector(profile, e.Tax, e.BaseYear, e.Logger).run(horizon)
	trajectory.GeneratedAt = time.Now().UTC()

	e.Logger.Infof("trajectory for %q complete: final net worth %s, %d milestones",
		profile.Name, trajectory.Summary.FinalNetWorth, len(trajectory.Milestones))
	return trajectory, nil
}

// CompareTrajectories diffs an alternate scenario's trajectory against a
// baseline. Both must already be generated; the comparison never recomputes.
func (e *Engine) CompareTrajectories(baseline, alternate *domain.Trajectory, changes []domain.ProfileChange, name string) (*domain.Comparison, error) {
	if baseline == nil || alternate == nil {
		return nil, fmt.Errorf("cannot compare: both trajectories are required")
	}

	comparison := BuildComparison(baseline, alternate, changes, name)
	comparison.GeneratedAt = time.Now().UTC()

	e.Logger.Infof("compared %q: retirement delta %d months, final net worth delta %s",
		name, comparison.RetirementDelta, comparison.FinalNetWorthDelta)
	return comparison, nil
}
