package config

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/dateutil"
	"github.com/finpath/trajectory-engine/pkg/money"
)

func TestNewProfileLoader(t *testing.T) {
	loader := NewProfileLoader()
	assert.NotNil(t, loader)
}

func TestLoadProfile_Success(t *testing.T) {
	testProfile := "name: \"Load Test\"\n" +
		"income_sources:\n" +
		"  - id: salary\n" +
		"    name: \"Salary\"\n" +
		"    type: salary\n" +
		"    base_amount: 85000\n" +
		"    growth_rate: 0.03\n" +
		"debts:\n" +
		"  - id: car\n" +
		"    name: \"Car Loan\"\n" +
		"    type: auto\n" +
		"    principal: 18000\n" +
		"    interest_rate: 0.05\n" +
		"    monthly_payment: 400\n" +
		"assets:\n" +
		"  - id: 401k\n" +
		"    name: \"401k\"\n" +
		"    type: retirement_pretax\n" +
		"    balance: 40000.50\n" +
		"    monthly_contribution: 600\n" +
		"    expected_return: 0.07\n" +
		"assumptions:\n" +
		"  inflation_rate: 0.03\n" +
		"  market_return: 0.07\n" +
		"  withdrawal_rate: 0.04\n" +
		"  income_replacement_ratio: 0.8\n" +
		"  life_expectancy: 85\n" +
		"  current_age: 30\n" +
		"  filing_status: single\n" +
		"  state: ca\n"

	tmpfile, err := os.CreateTemp("", "test_profile_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.Write([]byte(testProfile))
	require.NoError(t, err)
	tmpfile.Close()

	loader := NewProfileLoader()
	profile, err := loader.LoadProfile(tmpfile.Name())

	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Load Test", profile.Name)
	assert.NotEmpty(t, profile.ID, "profiles without an id get one assigned")
	assert.Equal(t, "CA", profile.Assumptions.State, "state codes normalize to upper case")

	require.Len(t, profile.IncomeSources, 1)
	assert.Equal(t, money.FromCents(8_500_000), profile.IncomeSources[0].BaseAmount)
	require.Len(t, profile.Debts, 1)
	assert.Equal(t, money.FromCents(1_800_000), profile.Debts[0].Principal)
	assert.True(t, profile.Debts[0].InterestRate.Equal(decimal.NewFromFloat(0.05)))
	require.Len(t, profile.Assets, 1)
	assert.Equal(t, money.FromCents(4_000_050), profile.Assets[0].Balance)
}

func TestLoadProfile_FileNotFound(t *testing.T) {
	loader := NewProfileLoader()
	profile, err := loader.LoadProfile("nonexistent_profile.yaml")

	assert.Error(t, err)
	assert.Nil(t, profile)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadProfile_InvalidYAML(t *testing.T) {
	testProfile := `
name: "Broken"
income_sources:
	- id: salary
		type: salary
`

	tmpfile, err := os.CreateTemp("", "test_profile_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.Write([]byte(testProfile))
	require.NoError(t, err)
	tmpfile.Close()

	loader := NewProfileLoader()
	profile, err := loader.LoadProfile(tmpfile.Name())

	assert.Error(t, err)
	assert.Nil(t, profile)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidateProfile_Success(t *testing.T) {
	loader := NewProfileLoader()
	err := loader.ValidateProfile(validProfile())
	assert.NoError(t, err)
}

func TestValidateProfile_NoIncomeSources(t *testing.T) {
	loader := NewProfileLoader()
	profile := validProfile()
	profile.IncomeSources = nil

	err := loader.ValidateProfile(profile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no income sources provided")
}

func TestValidateProfile_MissingName(t *testing.T) {
	loader := NewProfileLoader()
	profile := validProfile()
	profile.Name = ""

	err := loader.ValidateProfile(profile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid field")
	assert.Contains(t, err.Error(), "Name")
}

func TestValidateProfile_UnknownIncomeType(t *testing.T) {
	loader := NewProfileLoader()
	profile := validProfile()
	profile.IncomeSources[0].Type = "commission"

	err := loader.ValidateProfile(profile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid field")
}

func TestValidateProfile_DuplicateIDs(t *testing.T) {
	loader := NewProfileLoader()
	profile := validProfile()
	profile.Assets = append(profile.Assets, profile.Assets[0])

	err := loader.ValidateProfile(profile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate asset id "401k"`)
}

func TestValidateIncomeSource_HourlyWithoutHours(t *testing.T) {
	loader := NewProfileLoader()
	source := domain.IncomeSource{
		ID:         "gig",
		Name:       "Gig",
		Type:       domain.IncomeHourly,
		BaseAmount: money.FromCents(3_500),
	}

	err := loader.validateIncomeSource(&source)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "hourly income requires hours per week")
}

func TestValidateIncomeSource_BadEndDate(t *testing.T) {
	loader := NewProfileLoader()
	source := domain.IncomeSource{
		ID:         "contract",
		Name:       "Contract",
		Type:       domain.IncomeVariable,
		BaseAmount: money.FromCents(1_200_000),
		EndDate:    &dateutil.MonthYear{Year: 2030, Month: 13},
	}

	err := loader.validateIncomeSource(&source)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "end date month must be between 1 and 12")
}

func TestValidateDebt_PropertyFieldsOnNonMortgage(t *testing.T) {
	loader := NewProfileLoader()
	debt := domain.Debt{
		ID:             "car",
		Name:           "Car",
		Type:           domain.DebtAuto,
		Principal:      money.FromCents(1_500_000),
		InterestRate:   decimal.NewFromFloat(0.05),
		MonthlyPayment: money.FromCents(40_000),
		PropertyValue:  money.FromCents(2_000_000),
	}

	err := loader.validateDebt(&debt)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "property fields are only valid on mortgages")
}

func TestValidateDebt_PMIRequiresThresholdAndValue(t *testing.T) {
	loader := NewProfileLoader()
	debt := domain.Debt{
		ID:           "home",
		Name:         "Home",
		Type:         domain.DebtMortgage,
		Principal:    money.FromCents(25_000_000),
		InterestRate: decimal.NewFromFloat(0.06),
		TermMonths:   360,
		MonthlyPMI:   money.FromCents(10_000),
	}

	err := loader.validateDebt(&debt)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "PMI requires a PMI threshold")

	debt.PMIThreshold = decimal.NewFromFloat(0.80)
	err = loader.validateDebt(&debt)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "PMI requires a property value")

	debt.PropertyValue = money.FromCents(30_000_000)
	assert.NoError(t, loader.validateDebt(&debt))
}

func TestValidateDebt_NoWayToPay(t *testing.T) {
	loader := NewProfileLoader()
	debt := domain.Debt{
		ID:           "card",
		Name:         "Card",
		Type:         domain.DebtCredit,
		Principal:    money.FromCents(500_000),
		InterestRate: decimal.NewFromFloat(0.22),
	}

	err := loader.validateDebt(&debt)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "a payment, minimum payment, or term is required")
}

func TestValidateDebt_InterestRateRange(t *testing.T) {
	loader := NewProfileLoader()
	debt := domain.Debt{
		ID:             "loan",
		Name:           "Loan",
		Type:           domain.DebtPersonal,
		Principal:      money.FromCents(100_000),
		InterestRate:   decimal.NewFromFloat(1.5),
		MonthlyPayment: money.FromCents(10_000),
	}

	err := loader.validateDebt(&debt)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "interest rate must be between 0 and 1")
}

func TestValidateAsset_MatchRequiresLimit(t *testing.T) {
	loader := NewProfileLoader()
	asset := domain.Asset{
		ID:                "401k",
		Name:              "401k",
		Type:              domain.AssetRetirementPretax,
		Balance:           money.FromCents(1_000_000),
		EmployerMatchRate: decimal.NewFromFloat(0.5),
	}

	err := loader.validateAsset(&asset)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "an employer match requires a match limit")
}

func TestValidateAsset_MatchRateRange(t *testing.T) {
	loader := NewProfileLoader()
	asset := domain.Asset{
		ID:                 "401k",
		Name:               "401k",
		Type:               domain.AssetRetirementPretax,
		Balance:            money.FromCents(1_000_000),
		EmployerMatchRate:  decimal.NewFromFloat(1.5),
		EmployerMatchLimit: decimal.NewFromFloat(0.06),
	}

	err := loader.validateAsset(&asset)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "employer match rate must be between 0 and 1")
}

func TestValidateGoal_Rules(t *testing.T) {
	loader := NewProfileLoader()

	goal := domain.Goal{ID: "g", Name: "Goal", Type: domain.GoalDebtFree}
	err := loader.validateGoal(&goal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "target date is required")

	goal.TargetDate = dateutil.MonthYear{Year: 2030, Month: 13}
	err = loader.validateGoal(&goal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "target date month must be between 1 and 12")

	goal = domain.Goal{ID: "g", Name: "Goal", Type: domain.GoalSavings, TargetDate: dateutil.MonthYear{Year: 2030, Month: 6}}
	err = loader.validateGoal(&goal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "savings goals require a target amount")
}

func TestValidateAssumptions_Bounds(t *testing.T) {
	loader := NewProfileLoader()

	assumptions := validProfile().Assumptions
	assumptions.InflationRate = decimal.NewFromFloat(-0.15)
	err := loader.validateAssumptions(&assumptions)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "inflation rate cannot be less than -10%")

	assumptions = validProfile().Assumptions
	assumptions.WithdrawalRate = decimal.NewFromFloat(0.25)
	err = loader.validateAssumptions(&assumptions)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "withdrawal rate must be between 0 and 20%")

	assumptions = validProfile().Assumptions
	assumptions.LifeExpectancy = 40
	assumptions.CurrentAge = 40
	err = loader.validateAssumptions(&assumptions)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "life expectancy must be greater than current age")
}

func TestCreateExampleProfile(t *testing.T) {
	loader := NewProfileLoader()
	example := CreateExampleProfile()

	require.NotNil(t, example)
	assert.NoError(t, loader.ValidateProfile(example), "the example must pass its own validation")

	// The example should survive an encode and reload unchanged.
	data, err := yaml.Marshal(example)
	require.NoError(t, err)

	parsed, err := loader.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, example.ID, parsed.ID)
	assert.Equal(t, example.Name, parsed.Name)
	require.Len(t, parsed.Debts, len(example.Debts))
	assert.Equal(t, example.Debts[0].Principal, parsed.Debts[0].Principal)
	require.Len(t, parsed.Assets, len(example.Assets))
	assert.Equal(t, example.Assets[0].MonthlyContribution, parsed.Assets[0].MonthlyContribution)
}

// validProfile builds a minimal profile that passes every validation rule.
func validProfile() *domain.Profile {
	return &domain.Profile{
		ID:   "valid-profile",
		Name: "Valid Profile",
		IncomeSources: []domain.IncomeSource{
			{
				ID:         "salary",
				Name:       "Salary",
				Type:       domain.IncomeSalary,
				BaseAmount: money.FromCents(9_000_000),
				GrowthRate: decimal.NewFromFloat(0.03),
			},
		},
		Debts: []domain.Debt{
			{
				ID:             "car",
				Name:           "Car Loan",
				Type:           domain.DebtAuto,
				Principal:      money.FromCents(1_500_000),
				InterestRate:   decimal.NewFromFloat(0.05),
				MonthlyPayment: money.FromCents(40_000),
			},
		},
		Assets: []domain.Asset{
			{
				ID:                  "401k",
				Name:                "401k",
				Type:                domain.AssetRetirementPretax,
				Balance:             money.FromCents(5_000_000),
				MonthlyContribution: money.FromCents(80_000),
				ExpectedReturn:      decimal.NewFromFloat(0.07),
			},
		},
		Obligations: []domain.Obligation{
			{ID: "utilities", Name: "Utilities", MonthlyAmount: money.FromCents(30_000)},
		},
		Goals: []domain.Goal{
			{
				ID:           "savings",
				Name:         "Savings Goal",
				Type:         domain.GoalSavings,
				TargetAmount: money.FromCents(10_000_000),
				TargetDate:   dateutil.MonthYear{Year: 2035, Month: 6},
			},
		},
		Assumptions: domain.Assumptions{
			InflationRate:          decimal.NewFromFloat(0.03),
			MarketReturn:           decimal.NewFromFloat(0.07),
			HomeAppreciation:       decimal.NewFromFloat(0.03),
			DefaultSalaryGrowth:    decimal.NewFromFloat(0.02),
			WithdrawalRate:         decimal.NewFromFloat(0.04),
			IncomeReplacementRatio: decimal.NewFromFloat(0.80),
			LifeExpectancy:         88,
			CurrentAge:             34,
			FilingStatus:           domain.FilingSingle,
			State:                  "TX",
		},
	}
}
