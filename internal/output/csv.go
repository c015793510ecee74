package output

import (
	"bytes"
	"encoding/csv"

	"github.com/pkg/errors"

	"github.com/finpath/trajectory-engine/internal/domain"
)

// yearColumns is the per-year export header. yearCells must stay aligned
// with it.
var yearColumns = []string{
	"Year", "Age",
	"GrossIncome", "FederalTax", "StateTax", "SocialSecurityTax", "MedicareTax",
	"TotalTax", "NetIncome",
	"DebtPayments", "InterestPaid", "TotalDebt",
	"Contributions", "EmployerMatch", "TotalAssets",
	"NetWorth", "SavingsRate", "DebtToIncome", "PayingPMI",
}

func yearCells(y *domain.TrajectoryYear) []string {
	return []string{
		intToString(y.Year),
		intToString(y.Age),
		y.GrossIncome.String(),
		y.Taxes.FederalTax.String(),
		y.Taxes.StateTax.String(),
		y.Taxes.SocialSecurityTax.String(),
		y.Taxes.MedicareTax.String(),
		y.Taxes.TotalTax.String(),
		y.NetIncome.String(),
		y.TotalDebtPayments.String(),
		y.InterestPaid.String(),
		y.TotalDebt.String(),
		y.TotalContributions.String(),
		y.EmployerMatch.String(),
		y.TotalAssets.String(),
		y.NetWorth.String(),
		y.SavingsRate.StringFixed(4),
		y.DebtToIncomeRatio.StringFixed(4),
		boolToString(y.PayingPMI),
	}
}

// CSVFormatter exports one row per projected year. Money columns are plain
// dollar amounts without a currency symbol, rates are decimal fractions.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(t *domain.Trajectory) ([]byte, error) {
	if t == nil {
		return nil, errors.New("cannot format nil trajectory")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(yearColumns); err != nil {
		return nil, err
	}
	for i := range t.Years {
		if err := w.Write(yearCells(&t.Years[i])); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
