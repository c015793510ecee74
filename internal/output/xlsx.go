package output

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/dateutil"
)

// XLSXFormatter builds a workbook with one sheet of per-year rows plus
// milestone and summary sheets.
type XLSXFormatter struct{}

func (XLSXFormatter) Name() string { return "xlsx" }

func (XLSXFormatter) Format(t *domain.Trajectory) ([]byte, error) {
	if t == nil {
		return nil, errors.New("cannot format nil trajectory")
	}
	f := excelize.NewFile()
	defer f.Close()

	const yearSheet = "Trajectory"
	if err := f.SetSheetName("Sheet1", yearSheet); err != nil {
		return nil, err
	}
	writeSheetRow(f, yearSheet, 1, yearColumns)
	for i := range t.Years {
		writeSheetRow(f, yearSheet, i+2, yearCells(&t.Years[i]))
	}

	if len(t.Milestones) > 0 {
		const sheet = "Milestones"
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		writeSheetRow(f, sheet, 1, []string{"When", "Type", "Description", "RelatedID"})
		for i, m := range t.Milestones {
			writeSheetRow(f, sheet, i+2, []string{
				dateutil.NewMonthYear(m.Month, m.Year).String(),
				string(m.Type),
				m.Description,
				m.RelatedID,
			})
		}
	}

	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	for i, row := range summaryRows(t.Summary) {
		writeSheetRow(f, summarySheet, i+1, row)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeSheetRow fills one row left to right starting at column A. Column
// counts here never exceed 26.
func writeSheetRow(f *excelize.File, sheet string, row int, cells []string) {
	for i, cell := range cells {
		axis := string(rune('A'+i)) + strconv.Itoa(row)
		f.SetCellValue(sheet, axis, cell)
	}
}

func summaryRows(s domain.TrajectorySummary) [][]string {
	rows := [][]string{
		{"Lifetime gross income", s.LifetimeIncome.String()},
		{"Lifetime tax", s.LifetimeTax.String()},
		{"Lifetime interest paid", s.LifetimeInterestPaid.String()},
		{"Lifetime work hours", s.LifetimeWorkHours.StringFixed(0)},
		{"Final net worth", s.FinalNetWorth.String()},
		{"Avg effective hourly rate", s.AvgEffectiveHourlyRate.String()},
		{"Goals achieved", intToString(s.GoalsAchieved)},
		{"Goals missed", intToString(s.GoalsMissed)},
	}
	if s.RetirementYear != 0 {
		rows = append(rows,
			[]string{"Retirement year", intToString(s.RetirementYear)},
			[]string{"Retirement age", intToString(s.RetirementAge)},
			[]string{"Net worth at retirement", s.NetWorthAtRetirement.String()},
		)
	}
	return rows
}
