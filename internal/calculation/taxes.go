package calculation

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/money"
)

// TAX MODEL ASSUMPTIONS:
//
// 1. Federal: 2025 brackets and standard deductions for all projection
//    years; future years go through the deflate/re-inflate estimator, not a
//    bracket-indexation model.
//
// 2. State: CA uses progressive brackets; PA, IL, CO, MA use flat rates.
//    Every other state code resolves to no state tax. Married-filing-jointly
//    doubles the single brackets and deduction; head-of-household uses the
//    single table.
//
// 3. FICA: applied to gross income. Pre-tax retirement contributions reduce
//    federal and state taxable income only.
//
// 4. No itemized deductions, credits, AMT, or capital-gains treatment.

// TaxBracket taxes the income that falls between Min and Max at Rate.
type TaxBracket struct {
	Min  money.Money
	Max  money.Money
	Rate decimal.Decimal
}

// noCeiling marks the open-ended top bracket.
const noCeiling = money.Money(math.MaxInt64)

func dollars(d int64) money.Money {
	return money.FromCents(d * 100)
}

// FederalTaxCalculator handles federal income tax calculations.
type FederalTaxCalculator struct {
	Year               int
	Brackets           map[domain.FilingStatus][]TaxBracket
	StandardDeductions map[domain.FilingStatus]money.Money
}

// NewFederalTaxCalculator2025 creates a federal tax calculator loaded with
// the 2025 tables.
func NewFederalTaxCalculator2025() *FederalTaxCalculator {
	return &FederalTaxCalculator{
		Year: 2025,
		Brackets: map[domain.FilingStatus][]TaxBracket{
			domain.FilingSingle: {
				{dollars(0), dollars(11_925), decimal.NewFromFloat(0.10)},
				{dollars(11_925), dollars(48_475), decimal.NewFromFloat(0.12)},
				{dollars(48_475), dollars(103_350), decimal.NewFromFloat(0.22)},
				{dollars(103_350), dollars(197_300), decimal.NewFromFloat(0.24)},
				{dollars(197_300), dollars(250_525), decimal.NewFromFloat(0.32)},
				{dollars(250_525), dollars(626_350), decimal.NewFromFloat(0.35)},
				{dollars(626_350), noCeiling, decimal.NewFromFloat(0.37)},
			},
			domain.FilingMarriedJointly: {
				{dollars(0), dollars(23_850), decimal.NewFromFloat(0.10)},
				{dollars(23_850), dollars(96_950), decimal.NewFromFloat(0.12)},
				{dollars(96_950), dollars(206_700), decimal.NewFromFloat(0.22)},
				{dollars(206_700), dollars(394_600), decimal.NewFromFloat(0.24)},
				{dollars(394_600), dollars(501_050), decimal.NewFromFloat(0.32)},
				{dollars(501_050), dollars(751_600), decimal.NewFromFloat(0.35)},
				{dollars(751_600), noCeiling, decimal.NewFromFloat(0.37)},
			},
			domain.FilingHeadOfHousehold: {
				{dollars(0), dollars(17_000), decimal.NewFromFloat(0.10)},
				{dollars(17_000), dollars(64_850), decimal.NewFromFloat(0.12)},
				{dollars(64_850), dollars(103_350), decimal.NewFromFloat(0.22)},
				{dollars(103_350), dollars(197_300), decimal.NewFromFloat(0.24)},
				{dollars(197_300), dollars(250_500), decimal.NewFromFloat(0.32)},
				{dollars(250_500), dollars(626_350), decimal.NewFromFloat(0.35)},
				{dollars(626_350), noCeiling, decimal.NewFromFloat(0.37)},
			},
		},
		StandardDeductions: map[domain.FilingStatus]money.Money{
			domain.FilingSingle:          dollars(15_000),
			domain.FilingMarriedJointly:  dollars(30_000),
			domain.FilingHeadOfHousehold: dollars(22_500),
		},
	}
}

// CalculateTax returns the federal tax on gross income after the standard
// deduction and pre-tax retirement contributions, plus the marginal rate of
// the last bracket touched.
func (ftc *FederalTaxCalculator) CalculateTax(gross, pretaxContributions money.Money, status domain.FilingStatus) (money.Money, decimal.Decimal) {
	taxable := gross - ftc.StandardDeductions[status] - pretaxContributions
	if taxable.IsNegative() {
		taxable = money.Zero
	}
	return walkBrackets(taxable, ftc.bracketsFor(status))
}

func (ftc *FederalTaxCalculator) bracketsFor(status domain.FilingStatus) []TaxBracket {
	if brackets, ok := ftc.Brackets[status]; ok {
		return brackets
	}
	return ftc.Brackets[domain.FilingSingle]
}

// walkBrackets applies an ordered bracket table to taxable income and
// reports the rate of the last bracket touched.
func walkBrackets(taxable money.Money, brackets []TaxBracket) (money.Money, decimal.Decimal) {
	var tax money.Money
	marginal := decimal.Zero
	for _, bracket := range brackets {
		if taxable <= bracket.Min {
			break
		}
		incomeInBracket := money.Min(taxable, bracket.Max) - bracket.Min
		tax += incomeInBracket.MulRate(bracket.Rate)
		marginal = bracket.Rate
	}
	return tax, marginal
}

// StateTaxConfig describes one state's income tax: a flat rate, a
// progressive bracket table, or neither for no-tax states. Bracket and
// deduction amounts are single-filer values.
type StateTaxConfig struct {
	Code              string
	FlatRate          decimal.Decimal
	Brackets          []TaxBracket
	StandardDeduction money.Money
}

// StateTaxCalculator resolves a two-letter state code to its tax config.
type StateTaxCalculator struct {
	Configs map[string]StateTaxConfig
}

// NewStateTaxCalculator creates a state tax calculator with the built-in
// state table.
func NewStateTaxCalculator() *StateTaxCalculator {
	return &StateTaxCalculator{
		Configs: map[string]StateTaxConfig{
			"CA": {
				Code:              "CA",
				StandardDeduction: dollars(5_540),
				Brackets: []TaxBracket{
					{dollars(0), dollars(10_756), decimal.NewFromFloat(0.01)},
					{dollars(10_756), dollars(25_499), decimal.NewFromFloat(0.02)},
					{dollars(25_499), dollars(40_245), decimal.NewFromFloat(0.04)},
					{dollars(40_245), dollars(55_866), decimal.NewFromFloat(0.06)},
					{dollars(55_866), dollars(70_606), decimal.NewFromFloat(0.08)},
					{dollars(70_606), dollars(360_659), decimal.NewFromFloat(0.093)},
					{dollars(360_659), dollars(432_787), decimal.NewFromFloat(0.103)},
					{dollars(432_787), dollars(721_314), decimal.NewFromFloat(0.113)},
					{dollars(721_314), noCeiling, decimal.NewFromFloat(0.123)},
				},
			},
			"PA": {Code: "PA", FlatRate: decimal.NewFromFloat(0.0307)},
			"IL": {Code: "IL", FlatRate: decimal.NewFromFloat(0.0495)},
			"CO": {Code: "CO", FlatRate: decimal.NewFromFloat(0.044)},
			"MA": {Code: "MA", FlatRate: decimal.NewFromFloat(0.05)},
		},
	}
}

// CalculateTax returns the state income tax for the given state code.
// Unknown codes mean no state tax.
func (stc *StateTaxCalculator) CalculateTax(gross, pretaxContributions money.Money, status domain.FilingStatus, state string) money.Money {
	config, ok := stc.Configs[state]
	if !ok {
		return money.Zero
	}

	multiplier := int64(1)
	if status == domain.FilingMarriedJointly {
		multiplier = 2
	}

	taxable := gross - config.StandardDeduction.MulInt(multiplier) - pretaxContributions
	if taxable.IsNegative() {
		taxable = money.Zero
	}
	if !config.FlatRate.IsZero() {
		return taxable.MulRate(config.FlatRate)
	}
	if len(config.Brackets) == 0 {
		return money.Zero
	}

	brackets := config.Brackets
	if multiplier > 1 {
		doubled := make([]TaxBracket, len(brackets))
		for i, b := range brackets {
			doubled[i] = TaxBracket{Min: b.Min.MulInt(multiplier), Max: b.Max, Rate: b.Rate}
			if b.Max != noCeiling {
				doubled[i].Max = b.Max.MulInt(multiplier)
			}
		}
		brackets = doubled
	}
	tax, _ := walkBrackets(taxable, brackets)
	return tax
}

// FICACalculator handles Social Security and Medicare tax calculations.
type FICACalculator struct {
	SocialSecurityRate     decimal.Decimal
	SocialSecurityWageBase money.Money
	MedicareRate           decimal.Decimal
	AdditionalMedicareRate decimal.Decimal
	AdditionalThresholds   map[domain.FilingStatus]money.Money
}

// NewFICACalculator2025 creates a FICA calculator with 2025 rates.
func NewFICACalculator2025() *FICACalculator {
	return &FICACalculator{
		SocialSecurityRate:     decimal.NewFromFloat(0.062),
		SocialSecurityWageBase: dollars(176_100),
		MedicareRate:           decimal.NewFromFloat(0.0145),
		AdditionalMedicareRate: decimal.NewFromFloat(0.009),
		AdditionalThresholds: map[domain.FilingStatus]money.Money{
			domain.FilingSingle:          dollars(200_000),
			domain.FilingMarriedJointly:  dollars(250_000),
			domain.FilingHeadOfHousehold: dollars(200_000),
		},
	}
}

// CalculateSocialSecurity returns Social Security tax on gross income,
// capped at the wage base.
func (fc *FICACalculator) CalculateSocialSecurity(gross money.Money) money.Money {
	return money.Min(gross, fc.SocialSecurityWageBase).MulRate(fc.SocialSecurityRate)
}

// CalculateMedicare returns Medicare tax on all gross income, including the
// additional surtax above the filing-status threshold.
func (fc *FICACalculator) CalculateMedicare(gross money.Money, status domain.FilingStatus) money.Money {
	tax := gross.MulRate(fc.MedicareRate)
	threshold, ok := fc.AdditionalThresholds[status]
	if !ok {
		threshold = fc.AdditionalThresholds[domain.FilingSingle]
	}
	if gross > threshold {
		tax += (gross - threshold).MulRate(fc.AdditionalMedicareRate)
	}
	return tax
}

// TaxCalculator produces a complete per-year tax breakdown by composing the
// federal, state, and FICA calculators.
type TaxCalculator struct {
	Federal *FederalTaxCalculator
	State   *StateTaxCalculator
	FICA    *FICACalculator
}

// NewTaxCalculator creates a tax calculator with the built-in 2025 tables.
func NewTaxCalculator() *TaxCalculator {
	return &TaxCalculator{
		Federal: NewFederalTaxCalculator2025(),
		State:   NewStateTaxCalculator(),
		FICA:    NewFICACalculator2025(),
	}
}

// Calculate returns the full tax breakdown for one year of gross income.
func (tc *TaxCalculator) Calculate(gross, pretaxContributions money.Money, status domain.FilingStatus, state string) domain.TaxBreakdown {
	federal, marginal := tc.Federal.CalculateTax(gross, pretaxContributions, status)
	breakdown := domain.TaxBreakdown{
		FederalTax:        federal,
		StateTax:          tc.State.CalculateTax(gross, pretaxContributions, status, state),
		SocialSecurityTax: tc.FICA.CalculateSocialSecurity(gross),
		MedicareTax:       tc.FICA.CalculateMedicare(gross, status),
		MarginalRate:      marginal,
	}
	breakdown.TotalTax = breakdown.FederalTax + breakdown.StateTax + breakdown.SocialSecurityTax + breakdown.MedicareTax
	breakdown.NetIncome = gross - breakdown.TotalTax
	breakdown.EffectiveRate = breakdown.TotalTax.Ratio(gross)
	return breakdown
}

// EstimateFutureYear approximates a future year's taxes by deflating nominal
// income to present-day dollars, applying current tables, and re-inflating
// the resulting components. Zero years degenerates to Calculate.
func (tc *TaxCalculator) EstimateFutureYear(gross, pretaxContributions money.Money, status domain.FilingStatus, state string, inflation decimal.Decimal, years int) domain.TaxBreakdown {
	if years <= 0 || inflation.IsZero() {
		return tc.Calculate(gross, pretaxContributions, status, state)
	}

	factor := decimal.NewFromInt(1).Add(inflation).Pow(decimal.NewFromInt(int64(years)))
	inverse := decimal.NewFromInt(1).Div(factor)

	deflated := tc.Calculate(gross.MulRate(inverse), pretaxContributions.MulRate(inverse), status, state)

	breakdown := domain.TaxBreakdown{
		FederalTax:        deflated.FederalTax.MulRate(factor),
		StateTax:          deflated.StateTax.MulRate(factor),
		SocialSecurityTax: deflated.SocialSecurityTax.MulRate(factor),
		MedicareTax:       deflated.MedicareTax.MulRate(factor),
		MarginalRate:      deflated.MarginalRate,
	}
	breakdown.TotalTax = breakdown.FederalTax + breakdown.StateTax + breakdown.SocialSecurityTax + breakdown.MedicareTax
	breakdown.NetIncome = gross - breakdown.TotalTax
	breakdown.EffectiveRate = breakdown.TotalTax.Ratio(gross)
	return breakdown
}
