package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/money"
)

// AssetGrowthCalculator projects assets year by year. Growth applies the
// asset's return to the starting balance plus half the year's contributions,
// a mid-year convention rather than daily compounding.
type AssetGrowthCalculator struct {
	MarketReturn     decimal.Decimal
	HomeAppreciation decimal.Decimal
}

// NewAssetGrowthCalculator creates a calculator with the fallback rates used
// when an asset states no expected return.
func NewAssetGrowthCalculator(marketReturn, homeAppreciation decimal.Decimal) *AssetGrowthCalculator {
	return &AssetGrowthCalculator{
		MarketReturn:     marketReturn,
		HomeAppreciation: homeAppreciation,
	}
}

// ProjectAssetYear returns one asset's state after a year of contributions,
// employer match, and growth. salary is the year's earned income, the base
// for the match limit.
func (ac *AssetGrowthCalculator) ProjectAssetYear(asset *domain.Asset, startingBalance, salary money.Money) domain.AssetYearState {
	state := domain.AssetYearState{
		AssetID:         asset.ID,
		StartingBalance: startingBalance,
		Contributions:   asset.AnnualContribution(),
	}
	if asset.HasEmployerMatch() {
		matchable := money.Min(state.Contributions, salary.MulRate(asset.EmployerMatchLimit))
		state.EmployerMatch = matchable.MulRate(asset.EmployerMatchRate)
	}

	total := state.Contributions + state.EmployerMatch
	state.Growth = (startingBalance + total.DivInt(2)).MulRate(ac.returnRate(asset))
	state.EndingBalance = startingBalance + total + state.Growth
	return state
}

// returnRate resolves the asset's growth rate, falling back by type when the
// asset does not state a positive expected return.
func (ac *AssetGrowthCalculator) returnRate(asset *domain.Asset) decimal.Decimal {
	if asset.ExpectedReturn.IsPositive() {
		return asset.ExpectedReturn
	}
	switch asset.Type {
	case domain.AssetProperty:
		return ac.HomeAppreciation
	case domain.AssetRetirementPretax, domain.AssetRetirementRoth, domain.AssetInvestment, domain.AssetHSA:
		return ac.MarketReturn
	default:
		return decimal.Zero
	}
}

// RetirementReady reports whether drawing the withdrawal rate from the given
// retirement assets covers the desired annual income.
func RetirementReady(retirementAssets, desiredAnnualIncome money.Money, withdrawalRate decimal.Decimal) bool {
	monthlyIncome := retirementAssets.MulRate(withdrawalRate).DivInt(monthsPerYear)
	return monthlyIncome.MulInt(monthsPerYear) >= desiredAnnualIncome
}
