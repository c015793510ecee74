package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finpath/trajectory-engine/pkg/money"
)

// ProfileChange records one input difference between two compared profiles.
// The values are display strings supplied by the caller.
type ProfileChange struct {
	Field       string `yaml:"field" json:"field"`
	OldValue    string `yaml:"old_value" json:"old_value"`
	NewValue    string `yaml:"new_value" json:"new_value"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// YearDelta is the alternate-minus-baseline difference for one calendar year
// present in both trajectories.
type YearDelta struct {
	Year             int             `json:"year"`
	NetWorthDelta    money.Money     `json:"net_worth_delta"`
	IncomeDelta      money.Money     `json:"income_delta"`
	TaxesDelta       money.Money     `json:"taxes_delta"`
	DebtDelta        money.Money     `json:"debt_delta"`
	AssetsDelta      money.Money     `json:"assets_delta"`
	SavingsRateDelta decimal.Decimal `json:"savings_rate_delta"`
}

// Comparison is the full alternate-versus-baseline analysis of two
// trajectories. Optional year fields are 0 when the event never occurs.
type Comparison struct {
	Name               string          `json:"name"`
	BaselineProfileID  string          `json:"baseline_profile_id"`
	AlternateProfileID string          `json:"alternate_profile_id"`
	GeneratedAt        time.Time       `json:"generated_at"`
	Changes            []ProfileChange `json:"changes,omitempty"`

	YearDeltas []YearDelta `json:"year_deltas"`

	RetirementDelta           int             `json:"retirement_delta_months"`
	LifetimeInterestDelta     money.Money     `json:"lifetime_interest_delta"`
	NetWorthAtRetirementDelta money.Money     `json:"net_worth_at_retirement_delta"`
	FinalNetWorthDelta        money.Money     `json:"final_net_worth_delta"`
	LifetimeWorkHoursDelta    decimal.Decimal `json:"lifetime_work_hours_delta"`

	MaxDivergenceYear int    `json:"max_divergence_year,omitempty"`
	CrossoverYear     int    `json:"crossover_year,omitempty"`
	BreakEvenYear     int    `json:"break_even_year,omitempty"`
	KeyInsight        string `json:"key_insight"`
}

// DeltaByYear returns the delta entry for the given calendar year, or nil.
func (c *Comparison) DeltaByYear(year int) *YearDelta {
	for i := range c.YearDeltas {
		if c.YearDeltas[i].Year == year {
			return &c.YearDeltas[i]
		}
	}
	return nil
}

// FinalDelta returns the last aligned year's delta, or nil when the
// trajectories share no years.
func (c *Comparison) FinalDelta() *YearDelta {
	if len(c.YearDeltas) == 0 {
		return nil
	}
	return &c.YearDeltas[len(c.YearDeltas)-1]
}

// CumulativeImpact aggregates year deltas over an inclusive calendar range.
type CumulativeImpact struct {
	StartYear        int         `json:"start_year"`
	EndYear          int         `json:"end_year"`
	YearsInRange     int         `json:"years_in_range"`
	NetWorthChange   money.Money `json:"net_worth_change"`
	IncomeChange     money.Money `json:"income_change"`
	TaxesChange      money.Money `json:"taxes_change"`
	AvgYearlyBenefit money.Money `json:"avg_yearly_benefit"`
}
