package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/money"
)

// BuildComparison diffs an alternate trajectory against a baseline. Deltas are
// alternate minus baseline, aligned by calendar year; years present on only
// one side are skipped. The caller supplies the profile-level changes that
// distinguish the two scenarios.
func BuildComparison(baseline, alternate *domain.Trajectory, changes []domain.ProfileChange, name string) *domain.Comparison {
	comparison := &domain.Comparison{
		Name:               name,
		BaselineProfileID:  baseline.ProfileID,
		AlternateProfileID: alternate.ProfileID,
		Changes:            changes,
		YearDeltas:         buildYearDeltas(baseline, alternate),
	}

	comparison.RetirementDelta = (effectiveRetirementYear(alternate) - effectiveRetirementYear(baseline)) * 12
	comparison.LifetimeInterestDelta = alternate.Summary.LifetimeInterestPaid - baseline.Summary.LifetimeInterestPaid
	comparison.NetWorthAtRetirementDelta = alternate.Summary.NetWorthAtRetirement - baseline.Summary.NetWorthAtRetirement
	comparison.FinalNetWorthDelta = alternate.Summary.FinalNetWorth - baseline.Summary.FinalNetWorth
	comparison.LifetimeWorkHoursDelta = alternate.Summary.LifetimeWorkHours.Sub(baseline.Summary.LifetimeWorkHours)

	comparison.MaxDivergenceYear = FindMaxDivergenceYear(comparison.YearDeltas)
	comparison.CrossoverYear = FindCrossoverYear(comparison.YearDeltas)
	comparison.BreakEvenYear = FindBreakEvenYear(comparison.YearDeltas)
	comparison.KeyInsight = keyInsight(comparison)

	return comparison
}

func buildYearDeltas(baseline, alternate *domain.Trajectory) []domain.YearDelta {
	deltas := make([]domain.YearDelta, 0, len(baseline.Years))
	for i := range baseline.Years {
		base := &baseline.Years[i]
		alt := alternate.YearByCalendar(base.Year)
		if alt == nil {
			continue
		}
		deltas = append(deltas, domain.YearDelta{
			Year:             base.Year,
			NetWorthDelta:    alt.NetWorth - base.NetWorth,
			IncomeDelta:      alt.GrossIncome - base.GrossIncome,
			TaxesDelta:       alt.Taxes.TotalTax - base.Taxes.TotalTax,
			DebtDelta:        alt.TotalDebt - base.TotalDebt,
			AssetsDelta:      alt.TotalAssets - base.TotalAssets,
			SavingsRateDelta: alt.SavingsRate.Sub(base.SavingsRate),
		})
	}
	return deltas
}

// effectiveRetirementYear treats a trajectory that never reaches readiness as
// retiring at the end of its projection horizon.
func effectiveRetirementYear(t *domain.Trajectory) int {
	if t.Summary.RetirementYear != 0 {
		return t.Summary.RetirementYear
	}
	if final := t.FinalYear(); final != nil {
		return final.Year
	}
	return 0
}

// FindMaxDivergenceYear returns the year with the largest absolute net worth
// delta, or 0 for an empty delta list.
func FindMaxDivergenceYear(deltas []domain.YearDelta) int {
	if len(deltas) == 0 {
		return 0
	}
	best := deltas[0]
	for _, delta := range deltas[1:] {
		if delta.NetWorthDelta.Abs() > best.NetWorthDelta.Abs() {
			best = delta
		}
	}
	return best.Year
}

// FindCrossoverYear returns the first year whose net worth delta strictly
// flips sign against the prior year, or 0 when the scenarios never cross.
func FindCrossoverYear(deltas []domain.YearDelta) int {
	for i := 1; i < len(deltas); i++ {
		prev := deltas[i-1].NetWorthDelta
		curr := deltas[i].NetWorthDelta
		if (prev.IsNegative() && curr.IsPositive()) || (prev.IsPositive() && curr.IsNegative()) {
			return deltas[i].Year
		}
	}
	return 0
}

// FindBreakEvenYear returns the first year at which the running sum of net
// worth deltas becomes non-negative, or 0 if it stays negative throughout.
func FindBreakEvenYear(deltas []domain.YearDelta) int {
	running := money.Zero
	for _, delta := range deltas {
		running += delta.NetWorthDelta
		if !running.IsNegative() {
			return delta.Year
		}
	}
	return 0
}

// CalculateCumulativeImpact measures what the alternate scenario is worth over
// a year range. Net worth is a stock, so the final in-range delta stands for
// the whole range; income and taxes are flows and sum.
func CalculateCumulativeImpact(deltas []domain.YearDelta, startYear, endYear int) domain.CumulativeImpact {
	impact := domain.CumulativeImpact{
		StartYear: startYear,
		EndYear:   endYear,
	}
	for _, delta := range deltas {
		if delta.Year < startYear || delta.Year > endYear {
			continue
		}
		impact.YearsInRange++
		impact.NetWorthChange = delta.NetWorthDelta
		impact.IncomeChange += delta.IncomeDelta
		impact.TaxesChange += delta.TaxesDelta
	}
	if impact.YearsInRange > 0 {
		impact.AvgYearlyBenefit = impact.NetWorthChange.DivInt(int64(impact.YearsInRange))
	}
	return impact
}

// keyInsight picks the most significant summary difference. The weights exist
// only to make months, dollars, and hours comparable on one scale: net worth
// in dollars is divided by 100,000 and work hours by 100.
func keyInsight(c *domain.Comparison) string {
	monthsWeight := decimal.NewFromInt(int64(absInt(c.RetirementDelta)))
	netWorthWeight := c.FinalNetWorthDelta.Abs().Dollars().Div(decimal.NewFromInt(100_000))
	hoursWeight := c.LifetimeWorkHoursDelta.Abs().Div(decimal.NewFromInt(100))

	if monthsWeight.IsZero() && netWorthWeight.IsZero() && hoursWeight.IsZero() {
		return "The scenarios are materially identical"
	}

	bestWeight := monthsWeight
	insight := retirementInsight(c.RetirementDelta)
	if netWorthWeight.GreaterThan(bestWeight) {
		bestWeight = netWorthWeight
		insight = netWorthInsight(c.FinalNetWorthDelta)
	}
	if hoursWeight.GreaterThan(bestWeight) {
		insight = hoursInsight(c.LifetimeWorkHoursDelta)
	}
	return insight
}

func retirementInsight(months int) string {
	if months < 0 {
		return fmt.Sprintf("Retirement comes %d months earlier", -months)
	}
	return fmt.Sprintf("Retirement comes %d months later", months)
}

func netWorthInsight(delta money.Money) string {
	if delta.IsNegative() {
		return fmt.Sprintf("Ends with %s less net worth", delta.Abs().Format())
	}
	return fmt.Sprintf("Ends with %s more net worth", delta.Format())
}

func hoursInsight(delta decimal.Decimal) string {
	if delta.IsNegative() {
		return fmt.Sprintf("Works %s fewer hours over the projection", delta.Abs().String())
	}
	return fmt.Sprintf("Works %s more hours over the projection", delta.String())
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
