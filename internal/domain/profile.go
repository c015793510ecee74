package domain

import (
	"github.com/shopspring/decimal"

	"github.com/finpath/trajectory-engine/pkg/dateutil"
	"github.com/finpath/trajectory-engine/pkg/money"
)

// IncomeType classifies how an income source earns.
type IncomeType string

const (
	IncomeSalary   IncomeType = "salary"
	IncomeHourly   IncomeType = "hourly"
	IncomeVariable IncomeType = "variable"
	IncomePassive  IncomeType = "passive"
)

// DebtType classifies a liability.
type DebtType string

const (
	DebtMortgage DebtType = "mortgage"
	DebtAuto     DebtType = "auto"
	DebtStudent  DebtType = "student"
	DebtCredit   DebtType = "credit"
	DebtPersonal DebtType = "personal"
	DebtOther    DebtType = "other"
)

// AssetType classifies a holding.
type AssetType string

const (
	AssetRetirementPretax AssetType = "retirement_pretax"
	AssetRetirementRoth   AssetType = "retirement_roth"
	AssetSavings          AssetType = "savings"
	AssetInvestment       AssetType = "investment"
	AssetProperty         AssetType = "property"
	AssetHSA              AssetType = "hsa"
	AssetOther            AssetType = "other"
)

// FilingStatus selects the federal tax table and FICA thresholds.
type FilingStatus string

const (
	FilingSingle          FilingStatus = "single"
	FilingMarriedJointly  FilingStatus = "married_filing_jointly"
	FilingHeadOfHousehold FilingStatus = "head_of_household"
)

// GoalType classifies a financial goal for milestone evaluation.
type GoalType string

const (
	GoalDebtFree      GoalType = "debt_free"
	GoalSavings       GoalType = "savings"
	GoalEmergencyFund GoalType = "emergency_fund"
	GoalRetirement    GoalType = "retirement"
)

// IncomeSource represents one stream of income. BaseAmount is annual for
// salary/variable/passive sources and per-hour for hourly sources. A nil
// EndDate means the source never ends; an end date is inclusive.
type IncomeSource struct {
	ID           string              `yaml:"id" json:"id" validate:"required"`
	Name         string              `yaml:"name" json:"name"`
	Type         IncomeType          `yaml:"type" json:"type" validate:"required,oneof=salary hourly variable passive"`
	BaseAmount   money.Money         `yaml:"base_amount" json:"base_amount" validate:"min=0"`
	HoursPerWeek decimal.Decimal     `yaml:"hours_per_week,omitempty" json:"hours_per_week"`
	GrowthRate   decimal.Decimal     `yaml:"growth_rate,omitempty" json:"growth_rate"`
	EndDate      *dateutil.MonthYear `yaml:"end_date,omitempty" json:"end_date,omitempty"`
}

// Debt represents one liability. The mortgage-only fields stay zero for
// every other debt type.
type Debt struct {
	ID             string          `yaml:"id" json:"id" validate:"required"`
	Name           string          `yaml:"name" json:"name"`
	Type           DebtType        `yaml:"type" json:"type" validate:"required,oneof=mortgage auto student credit personal other"`
	Principal      money.Money     `yaml:"principal" json:"principal" validate:"min=0"`
	InterestRate   decimal.Decimal `yaml:"interest_rate" json:"interest_rate"`
	MinimumPayment money.Money     `yaml:"minimum_payment,omitempty" json:"minimum_payment" validate:"min=0"`
	MonthlyPayment money.Money     `yaml:"monthly_payment,omitempty" json:"monthly_payment" validate:"min=0"`
	TermMonths     int             `yaml:"term_months,omitempty" json:"term_months" validate:"min=0"`

	// Mortgage only
	PropertyValue      money.Money     `yaml:"property_value,omitempty" json:"property_value,omitempty" validate:"min=0"`
	PMIThreshold       decimal.Decimal `yaml:"pmi_threshold,omitempty" json:"pmi_threshold,omitempty"` // LTV fraction, e.g. 0.80
	MonthlyPMI         money.Money     `yaml:"monthly_pmi,omitempty" json:"monthly_pmi,omitempty" validate:"min=0"`
	MonthlyPropertyTax money.Money     `yaml:"monthly_property_tax,omitempty" json:"monthly_property_tax,omitempty" validate:"min=0"`
	MonthlyInsurance   money.Money     `yaml:"monthly_insurance,omitempty" json:"monthly_insurance,omitempty" validate:"min=0"`
}

// IsMortgage reports whether this debt carries the mortgage-only fields.
func (d *Debt) IsMortgage() bool {
	return d.Type == DebtMortgage
}

// MonthlyEscrow returns the combined escrow components.
func (d *Debt) MonthlyEscrow() money.Money {
	return d.MonthlyPropertyTax + d.MonthlyInsurance
}

// PaymentOrMinimum returns the actual monthly payment, falling back to the
// minimum payment when no actual payment is set.
func (d *Debt) PaymentOrMinimum() money.Money {
	if d.MonthlyPayment.IsPositive() {
		return d.MonthlyPayment
	}
	return d.MinimumPayment
}

// Asset represents one holding with optional employer matching. The match
// limit is the fraction of salary matched, the match rate the fraction of the
// matched contribution the employer adds.
type Asset struct {
	ID                  string          `yaml:"id" json:"id" validate:"required"`
	Name                string          `yaml:"name" json:"name"`
	Type                AssetType       `yaml:"type" json:"type" validate:"required,oneof=retirement_pretax retirement_roth savings investment property hsa other"`
	Balance             money.Money     `yaml:"balance" json:"balance" validate:"min=0"`
	MonthlyContribution money.Money     `yaml:"monthly_contribution,omitempty" json:"monthly_contribution" validate:"min=0"`
	ExpectedReturn      decimal.Decimal `yaml:"expected_return,omitempty" json:"expected_return"`
	EmployerMatchRate   decimal.Decimal `yaml:"employer_match_rate,omitempty" json:"employer_match_rate,omitempty"`
	EmployerMatchLimit  decimal.Decimal `yaml:"employer_match_limit,omitempty" json:"employer_match_limit,omitempty"`
}

// IsRetirement reports whether the asset counts toward retirement sufficiency.
func (a *Asset) IsRetirement() bool {
	return a.Type == AssetRetirementPretax || a.Type == AssetRetirementRoth
}

// AnnualContribution returns the owner's yearly contribution.
func (a *Asset) AnnualContribution() money.Money {
	return a.MonthlyContribution.Annual()
}

// HasEmployerMatch reports whether both match parameters are present.
func (a *Asset) HasEmployerMatch() bool {
	return a.EmployerMatchRate.IsPositive() && a.EmployerMatchLimit.IsPositive()
}

// Obligation is a recurring living cost, stated in today's dollars and
// inflated per projected year.
type Obligation struct {
	ID            string      `yaml:"id" json:"id" validate:"required"`
	Name          string      `yaml:"name" json:"name"`
	MonthlyAmount money.Money `yaml:"monthly_amount" json:"monthly_amount" validate:"min=0"`
}

// Goal is a dated financial target evaluated in its target year.
type Goal struct {
	ID           string             `yaml:"id" json:"id" validate:"required"`
	Name         string             `yaml:"name" json:"name"`
	Type         GoalType           `yaml:"type" json:"type" validate:"required,oneof=debt_free savings emergency_fund retirement"`
	TargetAmount money.Money        `yaml:"target_amount,omitempty" json:"target_amount" validate:"min=0"`
	TargetDate   dateutil.MonthYear `yaml:"target_date" json:"target_date"`
}

// Assumptions contains the global economic parameters for a projection.
type Assumptions struct {
	InflationRate          decimal.Decimal `yaml:"inflation_rate" json:"inflation_rate"`
	MarketReturn           decimal.Decimal `yaml:"market_return" json:"market_return"`
	HomeAppreciation       decimal.Decimal `yaml:"home_appreciation" json:"home_appreciation"`
	DefaultSalaryGrowth    decimal.Decimal `yaml:"default_salary_growth" json:"default_salary_growth"`
	WithdrawalRate         decimal.Decimal `yaml:"withdrawal_rate" json:"withdrawal_rate"`
	IncomeReplacementRatio decimal.Decimal `yaml:"income_replacement_ratio" json:"income_replacement_ratio"`
	LifeExpectancy         int             `yaml:"life_expectancy" json:"life_expectancy" validate:"min=1,max=120"`
	CurrentAge             int             `yaml:"current_age" json:"current_age" validate:"min=0,max=119"`
	FilingStatus           FilingStatus    `yaml:"filing_status" json:"filing_status" validate:"required,oneof=single married_filing_jointly head_of_household"`
	State                  string          `yaml:"state" json:"state" validate:"omitempty,len=2"`
}

// ProjectionYears returns the number of years the trajectory covers: every
// age from the current one through life expectancy, inclusive.
func (a *Assumptions) ProjectionYears() int {
	if a.LifeExpectancy < a.CurrentAge {
		return 0
	}
	return a.LifeExpectancy - a.CurrentAge + 1
}

// Profile is the complete financial snapshot a trajectory is generated from.
type Profile struct {
	ID            string         `yaml:"id" json:"id"`
	Name          string         `yaml:"name" json:"name" validate:"required"`
	IncomeSources []IncomeSource `yaml:"income_sources" json:"income_sources" validate:"dive"`
	Debts         []Debt         `yaml:"debts,omitempty" json:"debts" validate:"dive"`
	Assets        []Asset        `yaml:"assets,omitempty" json:"assets" validate:"dive"`
	Obligations   []Obligation   `yaml:"obligations,omitempty" json:"obligations" validate:"dive"`
	Goals         []Goal         `yaml:"goals,omitempty" json:"goals" validate:"dive"`
	Assumptions   Assumptions    `yaml:"assumptions" json:"assumptions"`
}

// Clone returns a deep copy safe to mutate for what-if evaluation.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	clone.IncomeSources = append([]IncomeSource(nil), p.IncomeSources...)
	for i := range clone.IncomeSources {
		if end := clone.IncomeSources[i].EndDate; end != nil {
			endCopy := *end
			clone.IncomeSources[i].EndDate = &endCopy
		}
	}
	clone.Debts = append([]Debt(nil), p.Debts...)
	clone.Assets = append([]Asset(nil), p.Assets...)
	clone.Obligations = append([]Obligation(nil), p.Obligations...)
	clone.Goals = append([]Goal(nil), p.Goals...)
	return &clone
}

// DebtByID returns the debt with the given id, or nil.
func (p *Profile) DebtByID(id string) *Debt {
	for i := range p.Debts {
		if p.Debts[i].ID == id {
			return &p.Debts[i]
		}
	}
	return nil
}

// AssetByID returns the asset with the given id, or nil.
func (p *Profile) AssetByID(id string) *Asset {
	for i := range p.Assets {
		if p.Assets[i].ID == id {
			return &p.Assets[i]
		}
	}
	return nil
}

// PretaxContributions sums the annual contributions to pre-tax retirement
// accounts, the amount subtracted from taxable income.
func (p *Profile) PretaxContributions() money.Money {
	var total money.Money
	for i := range p.Assets {
		if p.Assets[i].Type == AssetRetirementPretax {
			total += p.Assets[i].AnnualContribution()
		}
	}
	return total
}

// MonthlyObligations sums the nominal monthly obligation amounts.
func (p *Profile) MonthlyObligations() money.Money {
	var total money.Money
	for i := range p.Obligations {
		total += p.Obligations[i].MonthlyAmount
	}
	return total
}

// Mortgage returns the first mortgage-type debt, or nil.
func (p *Profile) Mortgage() *Debt {
	for i := range p.Debts {
		if p.Debts[i].IsMortgage() {
			return &p.Debts[i]
		}
	}
	return nil
}
