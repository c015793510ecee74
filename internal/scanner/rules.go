package scanner

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finpath/trajectory-engine/internal/calculation"
	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/money"
)

// Rule identifiers, stable across releases so downstream tooling can filter.
const (
	RuleHighInterestDebt  = "high-interest-debt"
	RuleUnclaimedMatch    = "unclaimed-employer-match"
	RuleLowSavingsRate    = "low-savings-rate"
	RuleThinEmergencyFund = "thin-emergency-fund"
	RulePMINearRemoval    = "pmi-near-removal"
	RuleNeverAmortizing   = "never-amortizing-payment"
)

// Rule thresholds and the what-if levers used to estimate impacts.
var (
	highInterestCutoff = decimal.NewFromFloat(0.08)
	lowSavingsCutoff   = decimal.NewFromFloat(0.10)
	pmiProximity       = decimal.NewFromFloat(0.05)

	extraDebtPayment     = money.FromCents(20_000)
	contributionBoost    = money.FromCents(20_000)
	emergencyBoost       = money.FromCents(15_000)
	extraMortgagePayment = money.FromCents(10_000)
)

const (
	emergencyFundMonths = 3
	refinanceTermMonths = 120
)

// candidate pairs a finding with the optional what-if used to price it. A nil
// whatIf means the finding ships without an impact estimate.
type candidate struct {
	finding Finding
	whatIf  func(*domain.Profile)
	impact  func(baseline, alternate *domain.Trajectory) money.Money
}

func evaluateRules(profile *domain.Profile, trajectory *domain.Trajectory) []candidate {
	first := trajectory.FirstYear()
	if first == nil {
		return nil
	}

	var candidates []candidate
	candidates = append(candidates, highInterestDebts(profile)...)
	candidates = append(candidates, unclaimedMatch(profile, first)...)
	candidates = append(candidates, lowSavingsRate(profile, first)...)
	candidates = append(candidates, thinEmergencyFund(profile)...)
	candidates = append(candidates, pmiNearRemoval(profile, trajectory, first)...)
	candidates = append(candidates, neverAmortizing(profile)...)
	return candidates
}

// interestSaved prices a what-if by the lifetime interest it avoids.
func interestSaved(baseline, alternate *domain.Trajectory) money.Money {
	return baseline.Summary.LifetimeInterestPaid - alternate.Summary.LifetimeInterestPaid
}

// netWorthGained prices a what-if by its effect on final net worth.
func netWorthGained(baseline, alternate *domain.Trajectory) money.Money {
	return alternate.Summary.FinalNetWorth - baseline.Summary.FinalNetWorth
}

// effectivePayment resolves a debt's monthly payment the same way the
// projection does: stated payment first, then the amortizing payment for the
// original terms.
func effectivePayment(debt *domain.Debt) money.Money {
	if payment := debt.PaymentOrMinimum(); payment.IsPositive() {
		return payment
	}
	return calculation.MonthlyPayment(debt.Principal, debt.InterestRate, debt.TermMonths)
}

// highInterestDebts flags carried balances above the interest cutoff. Debts
// whose payment never amortizes are left to the dedicated rule.
func highInterestDebts(profile *domain.Profile) []candidate {
	var candidates []candidate
	for i := range profile.Debts {
		debt := profile.Debts[i]
		if !debt.Principal.IsPositive() || debt.InterestRate.LessThan(highInterestCutoff) {
			continue
		}
		payment := effectivePayment(&debt)
		if calculation.MonthsToPayoff(debt.Principal, debt.InterestRate, payment).Never() {
			continue
		}

		id := debt.ID
		boosted := payment + extraDebtPayment
		candidates = append(candidates, candidate{
			finding: Finding{
				Rule:      RuleHighInterestDebt,
				Severity:  SeverityWarning,
				RelatedID: id,
				Summary:   fmt.Sprintf("%s carries a %s interest rate", debt.Name, percent(debt.InterestRate)),
				Detail: fmt.Sprintf("An extra %s per month against this balance retires it sooner and cuts the interest paid.",
					extraDebtPayment.Format()),
			},
			whatIf: func(p *domain.Profile) {
				if d := p.DebtByID(id); d != nil {
					d.MonthlyPayment = boosted
				}
			},
			impact: interestSaved,
		})
	}
	return candidates
}

// unclaimedMatch flags accounts contributing below the employer match limit.
func unclaimedMatch(profile *domain.Profile, first *domain.TrajectoryYear) []candidate {
	earned := firstYearEarned(profile, first)
	if !earned.IsPositive() {
		return nil
	}

	var candidates []candidate
	for i := range profile.Assets {
		asset := profile.Assets[i]
		if !asset.HasEmployerMatch() {
			continue
		}
		matchable := earned.MulRate(asset.EmployerMatchLimit)
		contribution := asset.AnnualContribution()
		if contribution >= matchable {
			continue
		}
		missed := (matchable - contribution).MulRate(asset.EmployerMatchRate)

		id := asset.ID
		target := matchable.DivInt(12)
		candidates = append(candidates, candidate{
			finding: Finding{
				Rule:      RuleUnclaimedMatch,
				Severity:  SeverityWarning,
				RelatedID: id,
				Summary:   fmt.Sprintf("%s contributions fall short of the employer match limit", asset.Name),
				Detail: fmt.Sprintf("Contributing %s per month would capture the full match, about %s of free money this year.",
					target.Format(), missed.Format()),
			},
			whatIf: func(p *domain.Profile) {
				if a := p.AssetByID(id); a != nil {
					a.MonthlyContribution = target
				}
			},
			impact: netWorthGained,
		})
	}
	return candidates
}

// lowSavingsRate flags a first-year savings rate under the cutoff.
func lowSavingsRate(profile *domain.Profile, first *domain.TrajectoryYear) []candidate {
	if !first.NetIncome.IsPositive() || first.SavingsRate.GreaterThanOrEqual(lowSavingsCutoff) {
		return nil
	}

	c := candidate{
		finding: Finding{
			Rule:     RuleLowSavingsRate,
			Severity: SeverityNotice,
			Summary:  fmt.Sprintf("Savings rate is %s of net income", percent(first.SavingsRate)),
			Detail: fmt.Sprintf("Contributions below %s of net income leave little compounding runway.",
				percent(lowSavingsCutoff)),
		},
	}

	// Boost the first growable account, when one exists to boost.
	for i := range profile.Assets {
		if profile.Assets[i].Type == domain.AssetProperty {
			continue
		}
		id := profile.Assets[i].ID
		c.whatIf = func(p *domain.Profile) {
			if a := p.AssetByID(id); a != nil {
				a.MonthlyContribution += contributionBoost
			}
		}
		c.impact = netWorthGained
		break
	}
	return []candidate{c}
}

// thinEmergencyFund flags liquid savings below three months of essential
// outflow (obligations plus debt payments and escrow).
func thinEmergencyFund(profile *domain.Profile) []candidate {
	essential := profile.MonthlyObligations()
	for i := range profile.Debts {
		debt := &profile.Debts[i]
		if !debt.Principal.IsPositive() {
			continue
		}
		essential += effectivePayment(debt)
		if debt.IsMortgage() {
			essential += debt.MonthlyEscrow()
		}
	}
	if !essential.IsPositive() {
		return nil
	}

	var liquid money.Money
	bestID := ""
	bestBalance := money.Zero
	for i := range profile.Assets {
		asset := profile.Assets[i]
		if asset.Type != domain.AssetSavings {
			continue
		}
		liquid += asset.Balance
		if bestID == "" || asset.Balance > bestBalance {
			bestID = asset.ID
			bestBalance = asset.Balance
		}
	}

	floor := essential.MulInt(emergencyFundMonths)
	if liquid >= floor {
		return nil
	}

	months := liquid.Ratio(essential)
	c := candidate{
		finding: Finding{
			Rule:      RuleThinEmergencyFund,
			Severity:  SeverityNotice,
			RelatedID: bestID,
			Summary: fmt.Sprintf("Liquid savings cover %s months of essentials, under the %d-month floor",
				months.StringFixed(1), emergencyFundMonths),
			Detail: fmt.Sprintf("Essential outflow runs %s per month; a fund of %s keeps a job gap from becoming new debt.",
				essential.Format(), floor.Format()),
		},
		impact: netWorthGained,
	}
	if bestID != "" {
		id := bestID
		c.whatIf = func(p *domain.Profile) {
			if a := p.AssetByID(id); a != nil {
				a.MonthlyContribution += emergencyBoost
			}
		}
	} else {
		c.whatIf = func(p *domain.Profile) {
			p.Assets = append(p.Assets, domain.Asset{
				ID:                  "emergency-fund",
				Name:                "Emergency fund",
				Type:                domain.AssetSavings,
				MonthlyContribution: emergencyBoost,
			})
		}
	}
	return []candidate{c}
}

// pmiNearRemoval flags a mortgage paying PMI within a few loan-to-value
// points of its removal threshold.
func pmiNearRemoval(profile *domain.Profile, trajectory *domain.Trajectory, first *domain.TrajectoryYear) []candidate {
	mortgage := profile.Mortgage()
	if mortgage == nil || !first.PayingPMI {
		return nil
	}
	gap := first.LoanToValue.Sub(mortgage.PMIThreshold)
	if gap.GreaterThan(pmiProximity) {
		return nil
	}

	detail := fmt.Sprintf("An extra %s per month of principal pulls the removal date forward.", extraMortgagePayment.Format())
	if removed := trajectory.MilestonesOfType(domain.MilestonePMIRemoved); len(removed) > 0 {
		detail = fmt.Sprintf("On the current schedule PMI drops in %d. %s", removed[0].Year, detail)
	}

	id := mortgage.ID
	boosted := effectivePayment(mortgage) + extraMortgagePayment
	return []candidate{{
		finding: Finding{
			Rule:      RulePMINearRemoval,
			Severity:  SeverityNotice,
			RelatedID: id,
			Summary: fmt.Sprintf("Loan-to-value is %s, within %s of the PMI removal threshold",
				percent(first.LoanToValue), percent(pmiProximity)),
			Detail: detail,
		},
		whatIf: func(p *domain.Profile) {
			if d := p.DebtByID(id); d != nil {
				d.MonthlyPayment = boosted
			}
		},
		impact: interestSaved,
	}}
}

// neverAmortizing flags debts whose payment cannot cover interest, so the
// balance grows every month it is carried.
func neverAmortizing(profile *domain.Profile) []candidate {
	var candidates []candidate
	for i := range profile.Debts {
		debt := profile.Debts[i]
		if !debt.Principal.IsPositive() {
			continue
		}
		payment := effectivePayment(&debt)
		if !calculation.MonthsToPayoff(debt.Principal, debt.InterestRate, payment).Never() {
			continue
		}

		id := debt.ID
		amortizing := calculation.MonthlyPayment(debt.Principal, debt.InterestRate, refinanceTermMonths)
		candidates = append(candidates, candidate{
			finding: Finding{
				Rule:      RuleNeverAmortizing,
				Severity:  SeverityWarning,
				RelatedID: id,
				Summary:   fmt.Sprintf("The payment on %s never retires the balance", debt.Name),
				Detail: fmt.Sprintf("At %s the payment does not cover interest; %s per month clears the balance in %d years.",
					percent(debt.InterestRate), amortizing.Format(), refinanceTermMonths/12),
			},
			whatIf: func(p *domain.Profile) {
				if d := p.DebtByID(id); d != nil {
					d.MonthlyPayment = amortizing
				}
			},
			impact: netWorthGained,
		})
	}
	return candidates
}

// firstYearEarned sums the first projected year's non-passive income, the
// same salary base the employer match uses.
func firstYearEarned(profile *domain.Profile, first *domain.TrajectoryYear) money.Money {
	passive := make(map[string]bool)
	for _, source := range profile.IncomeSources {
		if source.Type == domain.IncomePassive {
			passive[source.ID] = true
		}
	}
	var earned money.Money
	for _, income := range first.Incomes {
		if !passive[income.SourceID] {
			earned += income.Amount
		}
	}
	return earned
}

func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
