package calculation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/dateutil"
	"github.com/finpath/trajectory-engine/pkg/money"
)

// createTestProfile builds a realistic household for end-to-end runs: a
// salaried engineer with a consulting side gig that winds down, a mortgaged
// house still paying PMI, a car loan, a matched 401k, a brokerage account,
// emergency savings, and two goals the trajectory should resolve.
func createTestProfile() *domain.Profile {
	return &domain.Profile{
		ID:   "integration-household",
		Name: "Avery Household",
		IncomeSources: []domain.IncomeSource{
			{
				ID:         "salary",
				Name:       "Engineering Salary",
				Type:       domain.IncomeSalary,
				BaseAmount: money.FromCents(12_000_000), // $120,000
				GrowthRate: decimal.NewFromFloat(0.03),
			},
			{
				ID:         "consulting",
				Name:       "Consulting",
				Type:       domain.IncomeVariable,
				BaseAmount: money.FromCents(1_800_000), // $18,000
				EndDate:    &dateutil.MonthYear{Year: 2028, Month: 6},
			},
		},
		Debts: []domain.Debt{
			{
				ID:           "home",
				Name:         "Home Mortgage",
				Type:         domain.DebtMortgage,
				Principal:    money.FromCents(30_000_000), // $300,000
				InterestRate: decimal.NewFromFloat(0.055),
				TermMonths:   360,
				// Payment left unset so the standard annuity payment applies.
				PropertyValue:      money.FromCents(34_000_000), // $340,000
				PMIThreshold:       decimal.NewFromFloat(0.80),
				MonthlyPMI:         money.FromCents(12_000),
				MonthlyPropertyTax: money.FromCents(35_000),
				MonthlyInsurance:   money.FromCents(11_000),
			},
			{
				ID:             "car",
				Name:           "Car Loan",
				Type:           domain.DebtAuto,
				Principal:      money.FromCents(2_200_000), // $22,000
				InterestRate:   decimal.NewFromFloat(0.049),
				MonthlyPayment: money.FromCents(45_000),
			},
		},
		Assets: []domain.Asset{
			{
				ID:                  "401k",
				Name:                "401k",
				Type:                domain.AssetRetirementPretax,
				Balance:             money.FromCents(8_500_000), // $85,000
				MonthlyContribution: money.FromCents(125_000),
				ExpectedReturn:      decimal.NewFromFloat(0.07),
				EmployerMatchRate:   decimal.NewFromFloat(0.50),
				EmployerMatchLimit:  decimal.NewFromFloat(0.06),
			},
			{
				ID:                  "brokerage",
				Name:                "Brokerage",
				Type:                domain.AssetInvestment,
				Balance:             money.FromCents(3_000_000), // $30,000
				MonthlyContribution: money.FromCents(50_000),
				ExpectedReturn:      decimal.NewFromFloat(0.065),
			},
			{
				ID:                  "emergency",
				Name:                "Emergency Fund",
				Type:                domain.AssetSavings,
				Balance:             money.FromCents(1_500_000), // $15,000
				MonthlyContribution: money.FromCents(30_000),
			},
		},
		Obligations: []domain.Obligation{
			{ID: "utilities", Name: "Utilities", MonthlyAmount: money.FromCents(35_000)},
			{ID: "insurance", Name: "Insurance Premiums", MonthlyAmount: money.FromCents(23_000)},
		},
		Goals: []domain.Goal{
			{
				ID:         "own-home",
				Name:       "Own the house outright",
				Type:       domain.GoalDebtFree,
				TargetDate: dateutil.MonthYear{Year: 2054, Month: 12},
			},
			{
				ID:           "half-million",
				Name:         "Half a million saved",
				Type:         domain.GoalSavings,
				TargetAmount: money.FromCents(50_000_000), // $500,000
				TargetDate:   dateutil.MonthYear{Year: 2040, Month: 6},
			},
		},
		Assumptions: domain.Assumptions{
			InflationRate:          decimal.NewFromFloat(0.025),
			MarketReturn:           decimal.NewFromFloat(0.07),
			HomeAppreciation:       decimal.NewFromFloat(0.03),
			DefaultSalaryGrowth:    decimal.NewFromFloat(0.03),
			WithdrawalRate:         decimal.NewFromFloat(0.04),
			IncomeReplacementRatio: decimal.NewFromFloat(0.80),
			LifeExpectancy:         64,
			CurrentAge:             35,
			FilingStatus:           domain.FilingSingle,
			State:                  "CA",
		},
	}
}

// TestHouseholdTrajectory runs a full thirty-year projection for a realistic
// household and checks the trajectory as a whole rather than any single
// calculator in isolation.
func TestHouseholdTrajectory(t *testing.T) {
	engine := NewEngineWithBaseYear(testBaseYear)
	profile := createTestProfile()

	trajectory, err := engine.GenerateTrajectory(context.Background(), profile)
	require.NoError(t, err)
	require.Len(t, trajectory.Years, 30, "ages 35 through 64 give thirty projected years")

	t.Run("YearsAdvanceConsistently", func(t *testing.T) {
		for i, year := range trajectory.Years {
			assert.Equal(t, testBaseYear+i, year.Year, "year %d: wrong calendar year", i)
			assert.Equal(t, 35+i, year.Age, "year %d: wrong age", i)
		}
	})

	t.Run("EveryYearBalances", func(t *testing.T) {
		for _, year := range trajectory.Years {
			assert.Equal(t, year.TotalAssets-year.TotalDebt, year.NetWorth,
				"year %d: net worth must equal assets minus debt", year.Year)
			assert.True(t, year.GrossIncome.IsPositive(),
				"year %d: the salary never ends, so gross income stays positive", year.Year)
			assert.True(t, year.NetIncome.IsPositive(),
				"year %d: net income should remain positive", year.Year)
			assert.True(t, year.NetIncome < year.GrossIncome,
				"year %d: taxes should leave net income below gross", year.Year)
			assert.True(t, year.Taxes.StateTax.IsPositive(),
				"year %d: California taxes this income level", year.Year)

			for _, debt := range year.Debts {
				assert.False(t, debt.EndingBalance.IsNegative(),
					"year %d: debt %s went negative", year.Year, debt.DebtID)
			}
			for _, asset := range year.Assets {
				assert.False(t, asset.EndingBalance.IsNegative(),
					"year %d: asset %s went negative", year.Year, asset.AssetID)
			}
		}
	})

	t.Run("DebtFallsAssetsRise", func(t *testing.T) {
		for i := 1; i < len(trajectory.Years); i++ {
			prev, curr := trajectory.Years[i-1], trajectory.Years[i]
			assert.True(t, curr.TotalDebt <= prev.TotalDebt,
				"year %d: both loans amortize, so total debt never grows", curr.Year)
			assert.True(t, curr.TotalAssets > prev.TotalAssets,
				"year %d: steady contributions and growth keep assets climbing", curr.Year)
		}

		final := trajectory.FinalYear()
		require.NotNil(t, final)
		assert.True(t, final.TotalDebt.IsZero(), "the mortgage term ends inside the horizon")
		assert.True(t, final.NetWorth > trajectory.Years[0].NetWorth,
			"thirty years of saving should raise net worth")
	})

	t.Run("MilestonesAreWellFormed", func(t *testing.T) {
		firstYear := trajectory.Years[0].Year
		finalYear := trajectory.FinalYear().Year
		for _, milestone := range trajectory.Milestones {
			assert.GreaterOrEqual(t, milestone.Year, firstYear, "milestone before the projection: %+v", milestone)
			assert.LessOrEqual(t, milestone.Year, finalYear, "milestone after the projection: %+v", milestone)
			assert.GreaterOrEqual(t, milestone.Month, 1, "milestone month out of range: %+v", milestone)
			assert.LessOrEqual(t, milestone.Month, 12, "milestone month out of range: %+v", milestone)
			assert.NotEmpty(t, milestone.Description)
		}
	})

	t.Run("ExpectedMilestonesFire", func(t *testing.T) {
		payoffs := trajectory.MilestonesOfType(domain.MilestoneDebtPayoff)
		require.Len(t, payoffs, 2, "both the car loan and the mortgage pay off")

		var carPayoff *domain.Milestone
		for i := range payoffs {
			if payoffs[i].RelatedID == "car" {
				carPayoff = &payoffs[i]
			}
		}
		require.NotNil(t, carPayoff, "the car loan pays off inside the horizon")
		for _, year := range trajectory.Years {
			if year.Year <= carPayoff.Year {
				continue
			}
			for _, debt := range year.Debts {
				if debt.DebtID == "car" {
					assert.True(t, debt.EndingBalance.IsZero(),
						"year %d: the car loan stays paid off", year.Year)
				}
			}
		}

		pmiRemovals := trajectory.MilestonesOfType(domain.MilestonePMIRemoved)
		require.Len(t, pmiRemovals, 1, "appreciation and principal paydown clear the PMI threshold")
		assert.Equal(t, "home", pmiRemovals[0].RelatedID)

		endings := trajectory.MilestonesOfType(domain.MilestoneIncomeEnded)
		require.Len(t, endings, 1)
		assert.Equal(t, "consulting", endings[0].RelatedID)
		assert.Equal(t, 2028, endings[0].Year)
		assert.Equal(t, 6, endings[0].Month)
	})

	t.Run("PMIFollowsLoanToValue", func(t *testing.T) {
		assert.True(t, trajectory.Years[0].PayingPMI,
			"the loan starts at 88 percent of the property value")
		assert.False(t, trajectory.FinalYear().PayingPMI)

		sawRemoval := false
		for i := 1; i < len(trajectory.Years); i++ {
			prev, curr := trajectory.Years[i-1], trajectory.Years[i]
			if prev.PayingPMI && !curr.PayingPMI {
				assert.False(t, sawRemoval, "PMI should come off exactly once")
				sawRemoval = true
			}
			assert.False(t, !prev.PayingPMI && curr.PayingPMI,
				"year %d: PMI never comes back once removed", curr.Year)
		}
		assert.True(t, sawRemoval)
	})

	t.Run("GoalsResolve", func(t *testing.T) {
		assert.Equal(t, 2, trajectory.Summary.GoalsAchieved,
			"the mortgage clears by 2054 and assets pass $500k well before 2040")
		assert.Equal(t, 0, trajectory.Summary.GoalsMissed)
	})

	t.Run("SummaryMatchesYears", func(t *testing.T) {
		var gross, tax, interest money.Money
		hours := decimal.Zero
		for _, year := range trajectory.Years {
			gross += year.GrossIncome
			tax += year.Taxes.TotalTax
			interest += year.InterestPaid
			hours = hours.Add(year.WorkHours)
		}
		assert.Equal(t, gross, trajectory.Summary.LifetimeIncome)
		assert.Equal(t, tax, trajectory.Summary.LifetimeTax)
		assert.Equal(t, interest, trajectory.Summary.LifetimeInterestPaid)
		assert.True(t, hours.Equal(trajectory.Summary.LifetimeWorkHours))
		assert.Equal(t, trajectory.FinalYear().NetWorth, trajectory.Summary.FinalNetWorth)
		assert.False(t, trajectory.GeneratedAt.IsZero())
	})
}

// TestCaliforniaStarterScenario projects a single Californian a decade out
// from a modest starting balance and checks the trajectory lands where steady
// contributions and compounding should put it.
func TestCaliforniaStarterScenario(t *testing.T) {
	engine := NewEngineWithBaseYear(testBaseYear)
	profile := &domain.Profile{
		ID:   "ca-starter",
		Name: "CA Starter",
		IncomeSources: []domain.IncomeSource{
			{ID: "salary", Name: "Salary", Type: domain.IncomeSalary, BaseAmount: money.FromCents(10_000_000)},
		},
		Assets: []domain.Asset{
			{
				ID:                  "401k",
				Name:                "401k",
				Type:                domain.AssetRetirementPretax,
				Balance:             money.FromCents(1_000_000), // $10,000
				MonthlyContribution: money.FromCents(100_000),   // $1,000
				ExpectedReturn:      decimal.NewFromFloat(0.07),
			},
		},
		Assumptions: domain.Assumptions{
			InflationRate:          decimal.NewFromFloat(0.03),
			MarketReturn:           decimal.NewFromFloat(0.07),
			WithdrawalRate:         decimal.NewFromFloat(0.04),
			IncomeReplacementRatio: decimal.NewFromFloat(0.80),
			LifeExpectancy:         40,
			CurrentAge:             30,
			FilingStatus:           domain.FilingSingle,
			State:                  "CA",
		},
	}

	trajectory, err := engine.GenerateTrajectory(context.Background(), profile)
	require.NoError(t, err)
	require.Len(t, trajectory.Years, 11, "ages 30 through 40 inclusive")

	first := trajectory.FirstYear()
	final := trajectory.FinalYear()
	assert.Equal(t, 30, first.Age)
	assert.Equal(t, 40, final.Age)

	assert.True(t, final.TotalAssets > money.FromCents(20_000_000),
		"$12k a year at 7 percent should clear $200,000, got %s", final.TotalAssets.Format())
	assert.True(t, final.TotalAssets > first.TotalAssets,
		"the balance must end above its first year")
	assert.Equal(t, final.TotalAssets, final.NetWorth, "no debt means net worth equals assets")

	for _, year := range trajectory.Years {
		assert.Equal(t, money.FromCents(10_000_000), year.GrossIncome,
			"year %d: no growth rate keeps the salary flat", year.Year)
		assert.True(t, year.Taxes.StateTax.IsPositive(),
			"year %d: California taxes a $100k single filer", year.Year)
		assert.True(t, year.Taxes.FederalTax.IsPositive(), "year %d", year.Year)
	}
}

// TestRetirementReadinessMonotonic checks that wanting less in retirement
// never pushes the ready date later: across a ladder of income replacement
// ratios, each lower ratio retires no later than the one above it.
func TestRetirementReadinessMonotonic(t *testing.T) {
	ratios := []float64{0.70, 0.50, 0.30, 0.20}
	years := make([]int, len(ratios))

	for i, ratio := range ratios {
		profile := salariedProfile(money.FromCents(10_000_000), 30)
		profile.Assets = []domain.Asset{
			{
				ID:                  "401k",
				Name:                "401k",
				Type:                domain.AssetRetirementPretax,
				Balance:             money.FromCents(5_000_000), // $50,000
				MonthlyContribution: money.FromCents(150_000),   // $1,500
				ExpectedReturn:      decimal.NewFromFloat(0.07),
			},
		}
		profile.Assumptions.IncomeReplacementRatio = decimal.NewFromFloat(ratio)

		trajectory := newTestProjector(profile).run(profile.Assumptions.ProjectionYears())
		years[i] = trajectory.Summary.RetirementYear
		require.NotZero(t, years[i],
			"a %.0f%% replacement target is reachable inside thirty years", ratio*100)
	}

	for i := 1; i < len(years); i++ {
		assert.LessOrEqual(t, years[i], years[i-1],
			"replacement %.0f%% retires year %d but %.0f%% retires year %d",
			ratios[i]*100, years[i], ratios[i-1]*100, years[i-1])
	}
}

// TestScenarioComparisonEndToEnd generates two trajectories that differ only
// in 401k contributions and confirms the comparison favors the saver.
func TestScenarioComparisonEndToEnd(t *testing.T) {
	engine := NewEngineWithBaseYear(testBaseYear)

	baseline, err := engine.GenerateTrajectory(context.Background(), createTestProfile())
	require.NoError(t, err)

	saver := createTestProfile()
	saver.ID = "integration-household-saver"
	saver.Assets[0].MonthlyContribution = money.FromCents(185_000)
	alternate, err := engine.GenerateTrajectory(context.Background(), saver)
	require.NoError(t, err)

	changes := []domain.ProfileChange{
		{Field: "assets.401k.monthly_contribution", OldValue: "$1,250", NewValue: "$1,850"},
	}
	comparison, err := engine.CompareTrajectories(baseline, alternate, changes, "Raise the 401k contribution")
	require.NoError(t, err)

	require.Len(t, comparison.YearDeltas, 30)
	assert.Equal(t, "Raise the 401k contribution", comparison.Name)
	assert.Equal(t, changes, comparison.Changes)
	assert.False(t, comparison.GeneratedAt.IsZero())

	assert.True(t, comparison.FinalNetWorthDelta.IsPositive(),
		"an extra $600 a month compounds into more net worth")
	for _, delta := range comparison.YearDeltas {
		assert.False(t, delta.NetWorthDelta.IsNegative(),
			"year %d: extra savings never leaves the saver behind", delta.Year)
		assert.False(t, delta.TaxesDelta.IsPositive(),
			"year %d: a larger pre-tax contribution cannot raise taxes", delta.Year)
	}

	assert.Equal(t, testBaseYear, comparison.BreakEvenYear,
		"the saver is ahead from the first year")
	assert.Equal(t, 0, comparison.RetirementDelta,
		"neither side reaches readiness, so both fall back to the final year")
	assert.NotEmpty(t, comparison.KeyInsight)
}
