package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/dateutil"
	"github.com/finpath/trajectory-engine/pkg/money"
)

// ProfileLoader handles parsing and validation of profile input files.
type ProfileLoader struct {
	validate *validator.Validate
}

// NewProfileLoader creates a new profile loader.
func NewProfileLoader() *ProfileLoader {
	return &ProfileLoader{validate: validator.New()}
}

// LoadProfile loads a profile from a YAML file.
func (pl *ProfileLoader) LoadProfile(filename string) (*domain.Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return pl.Parse(data)
}

// Parse decodes a profile from raw YAML and validates it. Profiles without an
// id get one assigned; state codes are normalized to upper case.
func (pl *ProfileLoader) Parse(data []byte) (*domain.Profile, error) {
	var profile domain.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.Assumptions.State = strings.ToUpper(profile.Assumptions.State)

	if err := pl.ValidateProfile(&profile); err != nil {
		return nil, fmt.Errorf("profile validation failed: %w", err)
	}
	return &profile, nil
}

// ValidateProfile validates the loaded profile.
func (pl *ProfileLoader) ValidateProfile(profile *domain.Profile) error {
	if err := pl.validate.Struct(profile); err != nil {
		return fmt.Errorf("invalid field: %w", err)
	}

	if len(profile.IncomeSources) == 0 {
		return fmt.Errorf("no income sources provided")
	}

	if err := checkUniqueIDs(profile); err != nil {
		return err
	}

	for _, source := range profile.IncomeSources {
		if err := pl.validateIncomeSource(&source); err != nil {
			return fmt.Errorf("income source %s validation failed: %w", source.ID, err)
		}
	}
	for _, debt := range profile.Debts {
		if err := pl.validateDebt(&debt); err != nil {
			return fmt.Errorf("debt %s validation failed: %w", debt.ID, err)
		}
	}
	for _, asset := range profile.Assets {
		if err := pl.validateAsset(&asset); err != nil {
			return fmt.Errorf("asset %s validation failed: %w", asset.ID, err)
		}
	}
	for _, goal := range profile.Goals {
		if err := pl.validateGoal(&goal); err != nil {
			return fmt.Errorf("goal %s validation failed: %w", goal.ID, err)
		}
	}

	if err := pl.validateAssumptions(&profile.Assumptions); err != nil {
		return fmt.Errorf("assumptions validation failed: %w", err)
	}

	return nil
}

// checkUniqueIDs rejects duplicate ids within each collection. Projection
// state is keyed by id, so a duplicate would silently merge two entries.
func checkUniqueIDs(profile *domain.Profile) error {
	collections := []struct {
		kind string
		ids  []string
	}{
		{"income source", idsOf(len(profile.IncomeSources), func(i int) string { return profile.IncomeSources[i].ID })},
		{"debt", idsOf(len(profile.Debts), func(i int) string { return profile.Debts[i].ID })},
		{"asset", idsOf(len(profile.Assets), func(i int) string { return profile.Assets[i].ID })},
		{"obligation", idsOf(len(profile.Obligations), func(i int) string { return profile.Obligations[i].ID })},
		{"goal", idsOf(len(profile.Goals), func(i int) string { return profile.Goals[i].ID })},
	}

	for _, collection := range collections {
		seen := make(map[string]bool, len(collection.ids))
		for _, id := range collection.ids {
			if seen[id] {
				return fmt.Errorf("duplicate %s id %q", collection.kind, id)
			}
			seen[id] = true
		}
	}
	return nil
}

func idsOf(n int, id func(int) string) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = id(i)
	}
	return ids
}

func (pl *ProfileLoader) validateIncomeSource(source *domain.IncomeSource) error {
	if source.Type == domain.IncomeHourly && !source.HoursPerWeek.IsPositive() {
		return fmt.Errorf("hourly income requires hours per week")
	}
	if source.HoursPerWeek.IsNegative() {
		return fmt.Errorf("hours per week cannot be negative")
	}
	if source.HoursPerWeek.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("hours per week must be at most 100")
	}
	if source.GrowthRate.LessThan(decimal.NewFromInt(-1)) {
		return fmt.Errorf("growth rate cannot be less than -100%%")
	}
	if source.EndDate != nil {
		if source.EndDate.Month < 1 || source.EndDate.Month > 12 {
			return fmt.Errorf("end date month must be between 1 and 12")
		}
		if source.EndDate.Year <= 0 {
			return fmt.Errorf("end date year is required")
		}
	}
	return nil
}

func (pl *ProfileLoader) validateDebt(debt *domain.Debt) error {
	if debt.InterestRate.IsNegative() || debt.InterestRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("interest rate must be between 0 and 1")
	}
	if debt.Principal.IsPositive() && debt.MonthlyPayment.IsZero() && debt.MinimumPayment.IsZero() && debt.TermMonths == 0 {
		return fmt.Errorf("a payment, minimum payment, or term is required")
	}

	hasMortgageFields := debt.PropertyValue.IsPositive() || debt.MonthlyPMI.IsPositive() ||
		debt.MonthlyPropertyTax.IsPositive() || debt.MonthlyInsurance.IsPositive() ||
		debt.PMIThreshold.IsPositive()
	if hasMortgageFields && !debt.IsMortgage() {
		return fmt.Errorf("property fields are only valid on mortgages")
	}
	if debt.MonthlyPMI.IsPositive() {
		if !debt.PMIThreshold.IsPositive() {
			return fmt.Errorf("PMI requires a PMI threshold")
		}
		if !debt.PropertyValue.IsPositive() {
			return fmt.Errorf("PMI requires a property value")
		}
	}
	if debt.PMIThreshold.IsNegative() || debt.PMIThreshold.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("PMI threshold must be between 0 and 1")
	}
	return nil
}

func (pl *ProfileLoader) validateAsset(asset *domain.Asset) error {
	if asset.ExpectedReturn.LessThan(decimal.NewFromInt(-1)) {
		return fmt.Errorf("expected return cannot be less than -100%%")
	}
	if asset.EmployerMatchRate.IsNegative() || asset.EmployerMatchRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("employer match rate must be between 0 and 1")
	}
	if asset.EmployerMatchLimit.IsNegative() || asset.EmployerMatchLimit.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("employer match limit must be between 0 and 1")
	}
	if asset.EmployerMatchRate.IsPositive() && !asset.EmployerMatchLimit.IsPositive() {
		return fmt.Errorf("an employer match requires a match limit")
	}
	return nil
}

func (pl *ProfileLoader) validateGoal(goal *domain.Goal) error {
	if goal.TargetDate.IsZero() {
		return fmt.Errorf("target date is required")
	}
	if goal.TargetDate.Month < 1 || goal.TargetDate.Month > 12 {
		return fmt.Errorf("target date month must be between 1 and 12")
	}
	switch goal.Type {
	case domain.GoalSavings, domain.GoalEmergencyFund:
		if !goal.TargetAmount.IsPositive() {
			return fmt.Errorf("%s goals require a target amount", goal.Type)
		}
	}
	return nil
}

func (pl *ProfileLoader) validateAssumptions(assumptions *domain.Assumptions) error {
	if assumptions.InflationRate.LessThan(decimal.NewFromFloat(-0.10)) {
		return fmt.Errorf("inflation rate cannot be less than -10%% (extreme deflation)")
	}
	if assumptions.MarketReturn.LessThan(decimal.NewFromInt(-1)) {
		return fmt.Errorf("market return cannot be less than -100%%")
	}
	if assumptions.HomeAppreciation.LessThan(decimal.NewFromInt(-1)) {
		return fmt.Errorf("home appreciation cannot be less than -100%%")
	}
	if assumptions.DefaultSalaryGrowth.LessThan(decimal.NewFromInt(-1)) {
		return fmt.Errorf("default salary growth cannot be less than -100%%")
	}
	if assumptions.WithdrawalRate.IsNegative() || assumptions.WithdrawalRate.GreaterThan(decimal.NewFromFloat(0.2)) {
		return fmt.Errorf("withdrawal rate must be between 0 and 20%%")
	}
	if assumptions.IncomeReplacementRatio.IsNegative() || assumptions.IncomeReplacementRatio.GreaterThan(decimal.NewFromInt(2)) {
		return fmt.Errorf("income replacement ratio must be between 0 and 2")
	}
	if assumptions.LifeExpectancy <= assumptions.CurrentAge {
		return fmt.Errorf("life expectancy must be greater than current age")
	}
	return nil
}

// CreateExampleProfile creates an example profile suitable for writing out as
// a starter file.
func CreateExampleProfile() *domain.Profile {
	return &domain.Profile{
		ID:   uuid.NewString(),
		Name: "Example Household",
		IncomeSources: []domain.IncomeSource{
			{
				ID:         "salary",
				Name:       "Primary Salary",
				Type:       domain.IncomeSalary,
				BaseAmount: money.FromCents(9_500_000), // $95,000
				GrowthRate: decimal.NewFromFloat(0.03),
			},
			{
				ID:           "tutoring",
				Name:         "Weekend Tutoring",
				Type:         domain.IncomeHourly,
				BaseAmount:   money.FromCents(4_500), // $45/hour
				HoursPerWeek: decimal.NewFromInt(4),
				EndDate:      &dateutil.MonthYear{Year: 2030, Month: 8},
			},
		},
		Debts: []domain.Debt{
			{
				ID:                 "home",
				Name:               "Home Mortgage",
				Type:               domain.DebtMortgage,
				Principal:          money.FromCents(28_500_000), // $285,000
				InterestRate:       decimal.NewFromFloat(0.0625),
				TermMonths:         360,
				PropertyValue:      money.FromCents(32_000_000), // $320,000
				PMIThreshold:       decimal.NewFromFloat(0.80),
				MonthlyPMI:         money.FromCents(11_500),
				MonthlyPropertyTax: money.FromCents(32_000),
				MonthlyInsurance:   money.FromCents(9_500),
			},
			{
				ID:             "student",
				Name:           "Student Loan",
				Type:           domain.DebtStudent,
				Principal:      money.FromCents(2_400_000), // $24,000
				InterestRate:   decimal.NewFromFloat(0.045),
				MonthlyPayment: money.FromCents(35_000),
			},
		},
		Assets: []domain.Asset{
			{
				ID:                  "401k",
				Name:                "401k",
				Type:                domain.AssetRetirementPretax,
				Balance:             money.FromCents(6_200_000), // $62,000
				MonthlyContribution: money.FromCents(95_000),
				ExpectedReturn:      decimal.NewFromFloat(0.07),
				EmployerMatchRate:   decimal.NewFromFloat(0.50),
				EmployerMatchLimit:  decimal.NewFromFloat(0.06),
			},
			{
				ID:                  "emergency",
				Name:                "Emergency Fund",
				Type:                domain.AssetSavings,
				Balance:             money.FromCents(1_200_000), // $12,000
				MonthlyContribution: money.FromCents(25_000),
			},
		},
		Obligations: []domain.Obligation{
			{ID: "utilities", Name: "Utilities", MonthlyAmount: money.FromCents(32_000)},
			{ID: "childcare", Name: "Childcare", MonthlyAmount: money.FromCents(95_000)},
		},
		Goals: []domain.Goal{
			{
				ID:           "emergency-fund",
				Name:         "Six months of expenses",
				Type:         domain.GoalEmergencyFund,
				TargetAmount: money.FromCents(3_000_000), // $30,000
				TargetDate:   dateutil.MonthYear{Year: 2028, Month: 12},
			},
			{
				ID:         "debt-free",
				Name:       "Completely debt free",
				Type:       domain.GoalDebtFree,
				TargetDate: dateutil.MonthYear{Year: 2056, Month: 1},
			},
		},
		Assumptions: domain.Assumptions{
			InflationRate:          decimal.NewFromFloat(0.025),
			MarketReturn:           decimal.NewFromFloat(0.07),
			HomeAppreciation:       decimal.NewFromFloat(0.03),
			DefaultSalaryGrowth:    decimal.NewFromFloat(0.03),
			WithdrawalRate:         decimal.NewFromFloat(0.04),
			IncomeReplacementRatio: decimal.NewFromFloat(0.80),
			LifeExpectancy:         90,
			CurrentAge:             32,
			FilingStatus:           domain.FilingMarriedJointly,
			State:                  "CO",
		},
	}
}
