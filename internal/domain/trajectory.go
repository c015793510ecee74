package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finpath/trajectory-engine/pkg/money"
)

// MilestoneType identifies the kind of event a milestone records.
type MilestoneType string

const (
	MilestoneDebtPayoff      MilestoneType = "debt_payoff"
	MilestonePMIRemoved      MilestoneType = "pmi_removed"
	MilestoneNetWorth        MilestoneType = "net_worth_milestone"
	MilestoneGoalAchieved    MilestoneType = "goal_achieved"
	MilestoneGoalMissed      MilestoneType = "goal_missed"
	MilestoneRetirementReady MilestoneType = "retirement_ready"
	MilestoneIncomeEnded     MilestoneType = "income_ended"
)

// Milestone marks a notable event detected while projecting.
type Milestone struct {
	Year        int           `json:"year"`
	Month       int           `json:"month"`
	Type        MilestoneType `json:"type"`
	Description string        `json:"description"`
	RelatedID   string        `json:"related_id,omitempty"`
}

// IncomeYearState is one income source's result for a projected year.
type IncomeYearState struct {
	SourceID     string          `json:"source_id"`
	Amount       money.Money     `json:"amount"`
	HoursWorked  decimal.Decimal `json:"hours_worked"`
	IsActive     bool            `json:"is_active"`
	MonthsActive int             `json:"months_active"`
}

// TaxBreakdown is the full tax picture for one year of gross income.
type TaxBreakdown struct {
	FederalTax        money.Money     `json:"federal_tax"`
	StateTax          money.Money     `json:"state_tax"`
	SocialSecurityTax money.Money     `json:"social_security_tax"`
	MedicareTax       money.Money     `json:"medicare_tax"`
	TotalTax          money.Money     `json:"total_tax"`
	NetIncome         money.Money     `json:"net_income"`
	EffectiveRate     decimal.Decimal `json:"effective_rate"`
	MarginalRate      decimal.Decimal `json:"marginal_rate"`
}

// DebtYearState is one debt's result for a projected year. PayoffMonth is
// 1-12 within the year, or 0 when the debt did not reach zero that year.
type DebtYearState struct {
	DebtID          string      `json:"debt_id"`
	StartingBalance money.Money `json:"starting_balance"`
	EndingBalance   money.Money `json:"ending_balance"`
	PrincipalPaid   money.Money `json:"principal_paid"`
	InterestPaid    money.Money `json:"interest_paid"`
	TotalPaid       money.Money `json:"total_paid"`
	IsPaidOff       bool        `json:"is_paid_off"`
	PayoffMonth     int         `json:"payoff_month,omitempty"`
}

// AssetYearState is one asset's result for a projected year.
type AssetYearState struct {
	AssetID         string      `json:"asset_id"`
	StartingBalance money.Money `json:"starting_balance"`
	Contributions   money.Money `json:"contributions"`
	EmployerMatch   money.Money `json:"employer_match"`
	Growth          money.Money `json:"growth"`
	EndingBalance   money.Money `json:"ending_balance"`
}

// TrajectoryYear is the complete financial state for one projected year.
type TrajectoryYear struct {
	Year int `json:"year"`
	Age  int `json:"age"`

	// Income
	Incomes     []IncomeYearState `json:"incomes"`
	GrossIncome money.Money       `json:"gross_income"`
	WorkHours   decimal.Decimal   `json:"work_hours"`

	// Taxes
	Taxes     TaxBreakdown `json:"taxes"`
	NetIncome money.Money  `json:"net_income"`

	// Debts
	Debts             []DebtYearState `json:"debts"`
	TotalDebt         money.Money     `json:"total_debt"`
	TotalDebtPayments money.Money     `json:"total_debt_payments"`
	InterestPaid      money.Money     `json:"interest_paid"`

	// Assets
	Assets             []AssetYearState `json:"assets"`
	TotalAssets        money.Money      `json:"total_assets"`
	TotalContributions money.Money      `json:"total_contributions"`
	EmployerMatch      money.Money      `json:"employer_match"`

	// Aggregates
	NetWorth            money.Money     `json:"net_worth"`
	Obligations         money.Money     `json:"obligations"`
	DiscretionaryIncome money.Money     `json:"discretionary_income"`
	SavingsRate         decimal.Decimal `json:"savings_rate"`
	DebtToIncomeRatio   decimal.Decimal `json:"debt_to_income_ratio"`

	// Housing, populated only when the profile carries a mortgage
	PropertyValue    money.Money     `json:"property_value,omitempty"`
	HomeEquity       money.Money     `json:"home_equity,omitempty"`
	LoanToValue      decimal.Decimal `json:"loan_to_value"`
	PayingPMI        bool            `json:"paying_pmi"`
	HousingCostRatio decimal.Decimal `json:"housing_cost_ratio"`
}

// EffectiveHourlyRate returns net income divided by hours worked, or zero
// when no hours were worked.
func (ty *TrajectoryYear) EffectiveHourlyRate() decimal.Decimal {
	if !ty.WorkHours.IsPositive() {
		return decimal.Zero
	}
	return ty.NetIncome.Dollars().Div(ty.WorkHours)
}

// IsDebtFree reports whether every tracked debt has reached zero.
func (ty *TrajectoryYear) IsDebtFree() bool {
	return ty.TotalDebt.IsZero()
}

// TrajectorySummary aggregates a trajectory into lifetime statistics.
// RetirementYear and RetirementAge are zero when retirement sufficiency was
// never reached.
type TrajectorySummary struct {
	LifetimeIncome         money.Money     `json:"lifetime_income"`
	LifetimeTax            money.Money     `json:"lifetime_tax"`
	LifetimeInterestPaid   money.Money     `json:"lifetime_interest_paid"`
	LifetimeWorkHours      decimal.Decimal `json:"lifetime_work_hours"`
	RetirementYear         int             `json:"retirement_year,omitempty"`
	RetirementAge          int             `json:"retirement_age,omitempty"`
	NetWorthAtRetirement   money.Money     `json:"net_worth_at_retirement"`
	FinalNetWorth          money.Money     `json:"final_net_worth"`
	GoalsAchieved          int             `json:"goals_achieved"`
	GoalsMissed            int             `json:"goals_missed"`
	AvgEffectiveHourlyRate money.Money     `json:"avg_effective_hourly_rate"`
}

// Trajectory is the year-by-year projection of a profile.
type Trajectory struct {
	ProfileID   string            `json:"profile_id"`
	ProfileName string            `json:"profile_name,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	Years       []TrajectoryYear  `json:"years"`
	Milestones  []Milestone       `json:"milestones"`
	Summary     TrajectorySummary `json:"summary"`
}

// FirstYear returns the earliest projected year, or nil for an empty
// trajectory.
func (t *Trajectory) FirstYear() *TrajectoryYear {
	if len(t.Years) == 0 {
		return nil
	}
	return &t.Years[0]
}

// FinalYear returns the last projected year, or nil for an empty trajectory.
func (t *Trajectory) FinalYear() *TrajectoryYear {
	if len(t.Years) == 0 {
		return nil
	}
	return &t.Years[len(t.Years)-1]
}

// YearByCalendar returns the entry for the given calendar year, or nil.
func (t *Trajectory) YearByCalendar(year int) *TrajectoryYear {
	for i := range t.Years {
		if t.Years[i].Year == year {
			return &t.Years[i]
		}
	}
	return nil
}

// MilestonesOfType filters milestones by kind, preserving order.
func (t *Trajectory) MilestonesOfType(mt MilestoneType) []Milestone {
	var out []Milestone
	for _, m := range t.Milestones {
		if m.Type == mt {
			out = append(out, m)
		}
	}
	return out
}

// DebtFreeYear returns the first calendar year whose total debt is zero, or
// 0 when the trajectory never becomes debt free.
func (t *Trajectory) DebtFreeYear() int {
	for i := range t.Years {
		if t.Years[i].IsDebtFree() {
			return t.Years[i].Year
		}
	}
	return 0
}
