package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/money"
)

const (
	monthsPerYear = 12
	weeksPerYear  = 52
)

// IncomeProjector computes per-source income for projected years. Growth
// compounds from the base year; a source with no positive growth rate of its
// own uses the default rate.
type IncomeProjector struct {
	DefaultGrowth decimal.Decimal
}

// NewIncomeProjector creates a projector with the given default growth rate.
func NewIncomeProjector(defaultGrowth decimal.Decimal) *IncomeProjector {
	return &IncomeProjector{DefaultGrowth: defaultGrowth}
}

// EndedSource identifies a source whose end date falls inside a projected
// year, for milestone detection.
type EndedSource struct {
	SourceID string
	Name     string
	Month    int
}

// YearIncome aggregates every source's projection for one calendar year.
// EarnedTotal excludes passive sources; it is the salary base for employer
// match calculations.
type YearIncome struct {
	Sources     []domain.IncomeYearState
	Total       money.Money
	EarnedTotal money.Money
	TotalHours  decimal.Decimal
	Ended       []EndedSource
}

// ProjectYear returns one source's state for the target calendar year.
// Inactive years produce zeros. A source ending mid-year is prorated by
// endMonth/12 on both amount and hours.
func (ip *IncomeProjector) ProjectYear(source domain.IncomeSource, targetYear, baseYear int) domain.IncomeYearState {
	state := domain.IncomeYearState{
		SourceID:    source.ID,
		HoursWorked: decimal.Zero,
	}

	months := activeMonths(source, targetYear)
	if months == 0 {
		return state
	}
	state.IsActive = true
	state.MonthsActive = months

	annual := source.BaseAmount
	if source.Type == domain.IncomeHourly {
		annual = annual.MulRate(source.HoursPerWeek.Mul(decimal.NewFromInt(weeksPerYear)))
	}

	yearsElapsed := targetYear - baseYear
	amount := annual.Grow(ip.growthRate(source), yearsElapsed)

	if source.Type != domain.IncomePassive {
		state.HoursWorked = source.HoursPerWeek.Mul(decimal.NewFromInt(weeksPerYear))
	}

	if months < monthsPerYear {
		fraction := decimal.NewFromInt(int64(months)).Div(decimal.NewFromInt(monthsPerYear))
		amount = amount.MulRate(fraction)
		state.HoursWorked = state.HoursWorked.Mul(fraction)
	}
	state.Amount = amount
	return state
}

// ProjectAll runs every source through ProjectYear and aggregates totals,
// hours, and the sources ending in the year.
func (ip *IncomeProjector) ProjectAll(sources []domain.IncomeSource, targetYear, baseYear int) YearIncome {
	agg := YearIncome{
		Sources:    make([]domain.IncomeYearState, 0, len(sources)),
		TotalHours: decimal.Zero,
	}
	for i := range sources {
		src := sources[i]
		state := ip.ProjectYear(src, targetYear, baseYear)
		agg.Sources = append(agg.Sources, state)
		agg.Total += state.Amount
		if src.Type != domain.IncomePassive {
			agg.EarnedTotal += state.Amount
		}
		agg.TotalHours = agg.TotalHours.Add(state.HoursWorked)
		if src.EndDate != nil && src.EndDate.Year == targetYear {
			agg.Ended = append(agg.Ended, EndedSource{
				SourceID: src.ID,
				Name:     src.Name,
				Month:    src.EndDate.Month,
			})
		}
	}
	return agg
}

func (ip *IncomeProjector) growthRate(source domain.IncomeSource) decimal.Decimal {
	if source.GrowthRate.IsPositive() {
		return source.GrowthRate
	}
	return ip.DefaultGrowth
}

// activeMonths returns how many months of the target year the source is
// active for, honoring the inclusive end date.
func activeMonths(source domain.IncomeSource, targetYear int) int {
	if source.EndDate == nil {
		return monthsPerYear
	}
	switch {
	case source.EndDate.Year < targetYear:
		return 0
	case source.EndDate.Year > targetYear:
		return monthsPerYear
	}
	if source.EndDate.Month < 1 {
		return 0
	}
	if source.EndDate.Month > monthsPerYear {
		return monthsPerYear
	}
	return source.EndDate.Month
}
