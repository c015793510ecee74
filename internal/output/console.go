package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/dateutil"
)

const ruleWidth = 80

// ConsoleFormatter renders a full trajectory report for the terminal:
// header, lifetime summary, year-by-year table, and milestones.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (ConsoleFormatter) Format(t *domain.Trajectory) ([]byte, error) {
	if t == nil {
		return nil, errors.New("cannot format nil trajectory")
	}
	var b bytes.Buffer

	writeBanner(&b, "FINANCIAL TRAJECTORY")
	fmt.Fprintf(&b, "Profile:   %s\n", profileLabel(t))
	if !t.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated: %s\n", t.GeneratedAt.Format("2006-01-02 15:04 MST"))
	}
	if first := t.FirstYear(); first != nil {
		final := t.FinalYear()
		fmt.Fprintf(&b, "Horizon:   %d to %d (%d years, ages %d to %d)\n",
			first.Year, final.Year, len(t.Years), first.Age, final.Age)
	}

	b.WriteString("\n")
	writeSection(&b, "LIFETIME SUMMARY")
	writeSummary(&b, t)

	if len(t.Years) > 0 {
		b.WriteString("\n")
		writeSection(&b, "YEAR BY YEAR")
		writeYearTable(&b, t.Years)
	}

	if len(t.Milestones) > 0 {
		b.WriteString("\n")
		writeSection(&b, "MILESTONES")
		for _, m := range t.Milestones {
			fmt.Fprintf(&b, "%s  %s\n", dateutil.NewMonthYear(m.Month, m.Year), m.Description)
		}
	}

	return b.Bytes(), nil
}

func profileLabel(t *domain.Trajectory) string {
	if t.ProfileName == "" {
		return t.ProfileID
	}
	return fmt.Sprintf("%s (%s)", t.ProfileName, t.ProfileID)
}

func writeBanner(b *bytes.Buffer, title string) {
	rule := strings.Repeat("=", ruleWidth)
	b.WriteString(rule + "\n" + title + "\n" + rule + "\n")
}

func writeSection(b *bytes.Buffer, title string) {
	b.WriteString(title + "\n" + strings.Repeat("-", ruleWidth) + "\n")
}

func writeSummary(b *bytes.Buffer, t *domain.Trajectory) {
	s := t.Summary
	fmt.Fprintf(b, "%-28s %s\n", "Lifetime gross income:", s.LifetimeIncome.Format())
	fmt.Fprintf(b, "%-28s %s\n", "Lifetime tax:", s.LifetimeTax.Format())
	fmt.Fprintf(b, "%-28s %s\n", "Lifetime interest paid:", s.LifetimeInterestPaid.Format())
	fmt.Fprintf(b, "%-28s %s\n", "Lifetime work hours:", s.LifetimeWorkHours.StringFixed(0))
	fmt.Fprintf(b, "%-28s %s\n", "Final net worth:", s.FinalNetWorth.Format())
	fmt.Fprintf(b, "%-28s %s/hr\n", "Avg effective hourly rate:", s.AvgEffectiveHourlyRate.Format())
	if s.RetirementYear != 0 {
		fmt.Fprintf(b, "%-28s ready in %d at age %d with %s\n",
			"Retirement:", s.RetirementYear, s.RetirementAge, s.NetWorthAtRetirement.Format())
	} else {
		fmt.Fprintf(b, "%-28s not reached within the projection\n", "Retirement:")
	}
	if s.GoalsAchieved+s.GoalsMissed > 0 {
		fmt.Fprintf(b, "%-28s %d achieved, %d missed\n", "Goals:", s.GoalsAchieved, s.GoalsMissed)
	}
	if year := t.DebtFreeYear(); year != 0 {
		fmt.Fprintf(b, "%-28s %d\n", "Debt free:", year)
	}
}

func writeYearTable(b *bytes.Buffer, years []domain.TrajectoryYear) {
	fmt.Fprintf(b, "%-6s %-4s %13s %13s %13s %13s %13s %13s %8s\n",
		"Year", "Age", "Gross", "Tax", "Net", "Debt", "Assets", "Net Worth", "Save%")
	for i := range years {
		y := &years[i]
		fmt.Fprintf(b, "%-6d %-4d %13s %13s %13s %13s %13s %13s %8s\n",
			y.Year, y.Age,
			y.GrossIncome.Format(), y.Taxes.TotalTax.Format(), y.NetIncome.Format(),
			y.TotalDebt.Format(), y.TotalAssets.Format(), y.NetWorth.Format(),
			FormatPercent(y.SavingsRate))
	}
}

// ComparisonReport renders a scenario comparison for the terminal.
func ComparisonReport(c *domain.Comparison) ([]byte, error) {
	if c == nil {
		return nil, errors.New("cannot format nil comparison")
	}
	var b bytes.Buffer

	writeBanner(&b, "SCENARIO COMPARISON: "+c.Name)
	fmt.Fprintf(&b, "Baseline:  %s\n", c.BaselineProfileID)
	fmt.Fprintf(&b, "Alternate: %s\n", c.AlternateProfileID)

	if len(c.Changes) > 0 {
		b.WriteString("\n")
		writeSection(&b, "CHANGES")
		for _, ch := range c.Changes {
			fmt.Fprintf(&b, "%s: %s -> %s", ch.Field, ch.OldValue, ch.NewValue)
			if ch.Description != "" {
				fmt.Fprintf(&b, "  (%s)", ch.Description)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	writeSection(&b, "OUTCOME")
	fmt.Fprintf(&b, "%-28s %s\n", "Final net worth:", FormatSignedMoney(c.FinalNetWorthDelta))
	fmt.Fprintf(&b, "%-28s %s\n", "Net worth at retirement:", FormatSignedMoney(c.NetWorthAtRetirementDelta))
	fmt.Fprintf(&b, "%-28s %s\n", "Retirement timing:", retirementTiming(c.RetirementDelta))
	fmt.Fprintf(&b, "%-28s %s\n", "Lifetime interest:", FormatSignedMoney(c.LifetimeInterestDelta))
	fmt.Fprintf(&b, "%-28s %s\n", "Lifetime work hours:", signedHours(c.LifetimeWorkHoursDelta))
	fmt.Fprintf(&b, "%-28s %s\n", "Break-even year:", yearOrNone(c.BreakEvenYear))
	fmt.Fprintf(&b, "%-28s %s\n", "Crossover year:", yearOrNone(c.CrossoverYear))
	fmt.Fprintf(&b, "%-28s %s\n", "Max divergence year:", yearOrNone(c.MaxDivergenceYear))
	if c.KeyInsight != "" {
		fmt.Fprintf(&b, "\n>> %s\n", c.KeyInsight)
	}

	if len(c.YearDeltas) > 0 {
		b.WriteString("\n")
		writeSection(&b, "YEAR DELTAS")
		fmt.Fprintf(&b, "%-6s %13s %13s %13s %13s %13s\n",
			"Year", "Net Worth", "Income", "Taxes", "Debt", "Assets")
		for _, d := range c.YearDeltas {
			fmt.Fprintf(&b, "%-6d %13s %13s %13s %13s %13s\n",
				d.Year,
				FormatSignedMoney(d.NetWorthDelta), FormatSignedMoney(d.IncomeDelta),
				FormatSignedMoney(d.TaxesDelta), FormatSignedMoney(d.DebtDelta),
				FormatSignedMoney(d.AssetsDelta))
		}
	}

	return b.Bytes(), nil
}

func retirementTiming(months int) string {
	switch {
	case months < 0:
		return fmt.Sprintf("%d months earlier", -months)
	case months > 0:
		return fmt.Sprintf("%d months later", months)
	default:
		return "unchanged"
	}
}

func signedHours(d decimal.Decimal) string {
	if d.IsZero() {
		return "unchanged"
	}
	if d.IsPositive() {
		return "+" + d.StringFixed(0)
	}
	return d.StringFixed(0)
}

func yearOrNone(year int) string {
	if year == 0 {
		return "none"
	}
	return intToString(year)
}
