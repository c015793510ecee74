package calculation

import (
	"fmt"

	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/money"
)

// netWorthThresholds are the fixed net worth levels that produce a milestone
// the first year the projected net worth crosses them. Only the lowest newly
// crossed threshold fires in a given year.
var netWorthThresholds = []struct {
	amount money.Money
	label  string
}{
	{money.FromCents(10_000_000), "$100,000"},
	{money.FromCents(25_000_000), "$250,000"},
	{money.FromCents(50_000_000), "$500,000"},
	{money.FromCents(100_000_000), "$1,000,000"},
	{money.FromCents(250_000_000), "$2,500,000"},
	{money.FromCents(500_000_000), "$5,000,000"},
	{money.FromCents(1_000_000_000), "$10,000,000"},
}

// retirementState is a latch. Once the readiness check passes it stays set for
// every remaining year, even if a later year's balances would fail the check.
type retirementState struct {
	ready bool
	year  int
	age   int
}

// latch records the first year readiness was reached. Calls after the latch is
// set leave it untouched and report false.
func (rs retirementState) latch(year, age int) (retirementState, bool) {
	if rs.ready {
		return rs, false
	}
	return retirementState{ready: true, year: year, age: age}, true
}

// projectionState carries the balances between projected years. Each year step
// receives a copy and returns a new copy, so no two years share a map.
type projectionState struct {
	debts      map[string]money.Money
	assets     map[string]money.Money
	retirement retirementState
}

func newProjectionState(profile *domain.Profile) projectionState {
	state := projectionState{
		debts:  make(map[string]money.Money, len(profile.Debts)),
		assets: make(map[string]money.Money, len(profile.Assets)),
	}
	for _, debt := range profile.Debts {
		state.debts[debt.ID] = debt.Principal
	}
	for _, asset := range profile.Assets {
		state.assets[asset.ID] = asset.Balance
	}
	return state
}

func (s projectionState) clone() projectionState {
	next := projectionState{
		debts:      make(map[string]money.Money, len(s.debts)),
		assets:     make(map[string]money.Money, len(s.assets)),
		retirement: s.retirement,
	}
	for id, balance := range s.debts {
		next.debts[id] = balance
	}
	for id, balance := range s.assets {
		next.assets[id] = balance
	}
	return next
}

// retirementAssets sums the balances of retirement-type accounts.
func (s projectionState) retirementAssets(profile *domain.Profile) money.Money {
	var total money.Money
	for _, asset := range profile.Assets {
		if asset.IsRetirement() {
			total += s.assets[asset.ID]
		}
	}
	return total
}

// projector runs a single trajectory generation. One is built per call and
// discarded afterwards, so it holds no mutable state of its own.
type projector struct {
	profile  *domain.Profile
	income   *IncomeProjector
	taxes    *TaxCalculator
	assets   *AssetGrowthCalculator
	baseYear int
	logger   Logger
}

func newProjector(profile *domain.Profile, taxes *TaxCalculator, baseYear int, logger Logger) *projector {
	if logger == nil {
		logger = NopLogger{}
	}
	assumptions := profile.Assumptions
	return &projector{
		profile:  profile,
		income:   NewIncomeProjector(assumptions.DefaultSalaryGrowth),
		taxes:    taxes,
		assets:   NewAssetGrowthCalculator(assumptions.MarketReturn, assumptions.HomeAppreciation),
		baseYear: baseYear,
		logger:   logger,
	}
}

// run folds the year step over the projection horizon and assembles the
// trajectory with its milestones and summary.
func (p *projector) run(horizon int) *domain.Trajectory {
	trajectory := &domain.Trajectory{
		ProfileID:   p.profile.ID,
		ProfileName: p.profile.Name,
		Years:       make([]domain.TrajectoryYear, 0, horizon),
		Milestones:  []domain.Milestone{},
	}

	state := newProjectionState(p.profile)
	prevNetWorth := initialNetWorth(p.profile)

	for i := 0; i < horizon; i++ {
		wasReady := state.retirement.ready
		var year domain.TrajectoryYear
		state, year = p.projectYear(state, i)

		var prev *domain.TrajectoryYear
		if len(trajectory.Years) > 0 {
			prev = &trajectory.Years[len(trajectory.Years)-1]
		}
		newlyReady := !wasReady && state.retirement.ready
		milestones := p.detectMilestones(prev, &year, prevNetWorth, newlyReady, state.retirement.ready)
		trajectory.Milestones = append(trajectory.Milestones, milestones...)

		trajectory.Years = append(trajectory.Years, year)
		prevNetWorth = year.NetWorth

		p.logger.Debugf("projected year %d: gross %s, net worth %s", year.Year, year.GrossIncome, year.NetWorth)
	}

	trajectory.Summary = p.summarize(trajectory, state.retirement)
	return trajectory
}

// projectYear advances the balances one calendar year and reports everything
// that happened during it. The input state is never mutated.
func (p *projector) projectYear(state projectionState, yearIndex int) (projectionState, domain.TrajectoryYear) {
	next := state.clone()
	assumptions := p.profile.Assumptions

	calendarYear := p.baseYear + yearIndex
	age := assumptions.CurrentAge + yearIndex

	incomes := p.income.ProjectAll(p.profile.IncomeSources, calendarYear, p.baseYear)
	pretax := p.profile.PretaxContributions()
	taxes := p.taxes.EstimateFutureYear(incomes.Total, pretax, assumptions.FilingStatus, assumptions.State, assumptions.InflationRate, yearIndex)

	year := domain.TrajectoryYear{
		Year:        calendarYear,
		Age:         age,
		Incomes:     incomes.Sources,
		GrossIncome: incomes.Total,
		WorkHours:   incomes.TotalHours,
		Taxes:       taxes,
		NetIncome:   taxes.NetIncome,
	}

	var housingCost money.Money
	for i := range p.profile.Debts {
		debt := &p.profile.Debts[i]
		starting := next.debts[debt.ID]
		payment := p.debtPayment(debt)

		debtYear := ProjectDebtYear(debt, starting, payment)
		next.debts[debt.ID] = debtYear.EndingBalance

		year.Debts = append(year.Debts, debtYear)
		year.TotalDebt += debtYear.EndingBalance
		year.InterestPaid += debtYear.InterestPaid

		cash := debtYear.TotalPaid
		if debt.IsMortgage() {
			cash += p.mortgageCarryingCost(debt, &debtYear, yearIndex)
			housingCost += cash
		}
		year.TotalDebtPayments += cash
	}

	for i := range p.profile.Assets {
		asset := &p.profile.Assets[i]
		starting := next.assets[asset.ID]

		assetYear := p.assets.ProjectAssetYear(asset, starting, incomes.EarnedTotal)
		next.assets[asset.ID] = assetYear.EndingBalance

		year.Assets = append(year.Assets, assetYear)
		year.TotalAssets += assetYear.EndingBalance
		year.TotalContributions += assetYear.Contributions + assetYear.EmployerMatch
		year.EmployerMatch += assetYear.EmployerMatch
	}

	year.NetWorth = year.TotalAssets - year.TotalDebt

	year.Obligations = p.profile.MonthlyObligations().Annual().Grow(assumptions.InflationRate, yearIndex)
	year.DiscretionaryIncome = year.NetIncome - year.TotalDebtPayments - year.Obligations

	if year.NetIncome.IsPositive() {
		year.SavingsRate = year.TotalContributions.Ratio(year.NetIncome)
	}
	year.DebtToIncomeRatio = year.TotalDebtPayments.Ratio(year.GrossIncome)

	if mortgage := p.profile.Mortgage(); mortgage != nil {
		balance := next.debts[mortgage.ID]
		year.PropertyValue = mortgage.PropertyValue.Grow(assumptions.HomeAppreciation, yearIndex)
		year.HomeEquity = year.PropertyValue - balance
		year.LoanToValue = balance.Ratio(year.PropertyValue)
		year.PayingPMI = payingPMI(mortgage, balance, year.PropertyValue)
		year.HousingCostRatio = housingCost.Ratio(year.GrossIncome)
	}

	desired := year.GrossIncome.MulRate(assumptions.IncomeReplacementRatio)
	if !next.retirement.ready && RetirementReady(next.retirementAssets(p.profile), desired, assumptions.WithdrawalRate) {
		next.retirement, _ = next.retirement.latch(calendarYear, age)
	}

	return next, year
}

// debtPayment resolves the monthly payment for a debt. A stated payment wins;
// otherwise the standard amortizing payment for the original terms is used.
func (p *projector) debtPayment(debt *domain.Debt) money.Money {
	if payment := debt.PaymentOrMinimum(); payment.IsPositive() {
		return payment
	}
	return MonthlyPayment(debt.Principal, debt.InterestRate, debt.TermMonths)
}

// mortgageCarryingCost is the escrow and PMI cash paid alongside the mortgage
// payment, prorated to the payoff month in the year the loan clears.
func (p *projector) mortgageCarryingCost(debt *domain.Debt, debtYear *domain.DebtYearState, yearIndex int) money.Money {
	if debtYear.StartingBalance.IsZero() {
		return 0
	}
	months := int64(12)
	if debtYear.IsPaidOff && debtYear.PayoffMonth > 0 {
		months = int64(debtYear.PayoffMonth)
	}
	cost := debt.MonthlyEscrow().MulInt(months)

	propertyValue := debt.PropertyValue.Grow(p.profile.Assumptions.HomeAppreciation, yearIndex)
	if payingPMI(debt, debtYear.StartingBalance, propertyValue) {
		cost += debt.MonthlyPMI.MulInt(months)
	}
	return cost
}

func payingPMI(debt *domain.Debt, balance, propertyValue money.Money) bool {
	if !debt.MonthlyPMI.IsPositive() || !debt.PMIThreshold.IsPositive() || !balance.IsPositive() {
		return false
	}
	return balance.Ratio(propertyValue).GreaterThan(debt.PMIThreshold)
}

// detectMilestones inspects a freshly projected year for events worth calling
// out. prev is nil for the first projected year.
func (p *projector) detectMilestones(prev, current *domain.TrajectoryYear, prevNetWorth money.Money, newlyReady, retirementReady bool) []domain.Milestone {
	var milestones []domain.Milestone

	for i := range current.Debts {
		debtYear := &current.Debts[i]
		if !debtYear.IsPaidOff || !debtYear.StartingBalance.IsPositive() {
			continue
		}
		name := debtYear.DebtID
		if debt := p.profile.DebtByID(debtYear.DebtID); debt != nil {
			name = debt.Name
		}
		milestones = append(milestones, domain.Milestone{
			Year:        current.Year,
			Month:       debtYear.PayoffMonth,
			Type:        domain.MilestoneDebtPayoff,
			Description: fmt.Sprintf("Paid off %s", name),
			RelatedID:   debtYear.DebtID,
		})
	}

	if prev != nil && prev.PayingPMI && !current.PayingPMI {
		milestone := domain.Milestone{
			Year:        current.Year,
			Month:       12,
			Type:        domain.MilestonePMIRemoved,
			Description: "PMI dropped from mortgage payment",
		}
		if mortgage := p.profile.Mortgage(); mortgage != nil {
			milestone.RelatedID = mortgage.ID
		}
		milestones = append(milestones, milestone)
	}

	for _, threshold := range netWorthThresholds {
		if current.NetWorth >= threshold.amount && prevNetWorth < threshold.amount {
			milestones = append(milestones, domain.Milestone{
				Year:        current.Year,
				Month:       12,
				Type:        domain.MilestoneNetWorth,
				Description: fmt.Sprintf("Net worth reached %s", threshold.label),
			})
			break
		}
	}

	for _, source := range p.profile.IncomeSources {
		if source.EndDate == nil || source.EndDate.Year != current.Year {
			continue
		}
		milestones = append(milestones, domain.Milestone{
			Year:        current.Year,
			Month:       source.EndDate.Month,
			Type:        domain.MilestoneIncomeEnded,
			Description: fmt.Sprintf("Income source %s ended", source.Name),
			RelatedID:   source.ID,
		})
	}

	if newlyReady {
		milestones = append(milestones, domain.Milestone{
			Year:        current.Year,
			Month:       12,
			Type:        domain.MilestoneRetirementReady,
			Description: fmt.Sprintf("Retirement ready at age %d", current.Age),
		})
	}

	for _, goal := range p.profile.Goals {
		if goal.TargetDate.Year != current.Year {
			continue
		}
		achieved := p.goalAchieved(&goal, current, retirementReady)
		milestoneType := domain.MilestoneGoalMissed
		description := fmt.Sprintf("Missed goal: %s", goal.Name)
		if achieved {
			milestoneType = domain.MilestoneGoalAchieved
			description = fmt.Sprintf("Achieved goal: %s", goal.Name)
		}
		milestones = append(milestones, domain.Milestone{
			Year:        current.Year,
			Month:       goal.TargetDate.Month,
			Type:        milestoneType,
			Description: description,
			RelatedID:   goal.ID,
		})
	}

	return milestones
}

func (p *projector) goalAchieved(goal *domain.Goal, year *domain.TrajectoryYear, retirementReady bool) bool {
	switch goal.Type {
	case domain.GoalDebtFree:
		return year.IsDebtFree()
	case domain.GoalSavings, domain.GoalEmergencyFund:
		return year.TotalAssets >= goal.TargetAmount
	case domain.GoalRetirement:
		return retirementReady
	default:
		return false
	}
}

// summarize rolls the projected years up into lifetime totals.
func (p *projector) summarize(trajectory *domain.Trajectory, retirement retirementState) domain.TrajectorySummary {
	summary := domain.TrajectorySummary{}

	hourlySum := money.Zero
	hourlyYears := int64(0)
	for i := range trajectory.Years {
		year := &trajectory.Years[i]
		summary.LifetimeIncome += year.GrossIncome
		summary.LifetimeTax += year.Taxes.TotalTax
		summary.LifetimeInterestPaid += year.InterestPaid
		summary.LifetimeWorkHours = summary.LifetimeWorkHours.Add(year.WorkHours)

		if year.WorkHours.IsPositive() {
			hourlySum += money.FromDollars(year.EffectiveHourlyRate())
			hourlyYears++
		}
	}

	if hourlyYears > 0 {
		summary.AvgEffectiveHourlyRate = hourlySum.DivInt(hourlyYears)
	}

	if final := trajectory.FinalYear(); final != nil {
		summary.FinalNetWorth = final.NetWorth
	}

	if retirement.ready {
		summary.RetirementYear = retirement.year
		summary.RetirementAge = retirement.age
		if year := trajectory.YearByCalendar(retirement.year); year != nil {
			summary.NetWorthAtRetirement = year.NetWorth
		}
	}

	for _, milestone := range trajectory.Milestones {
		switch milestone.Type {
		case domain.MilestoneGoalAchieved:
			summary.GoalsAchieved++
		case domain.MilestoneGoalMissed:
			summary.GoalsMissed++
		}
	}

	return summary
}

// initialNetWorth is the profile's net worth before any projection, used as
// the baseline for first-year threshold crossings.
func initialNetWorth(profile *domain.Profile) money.Money {
	var total money.Money
	for _, asset := range profile.Assets {
		total += asset.Balance
	}
	for _, debt := range profile.Debts {
		total -= debt.Principal
	}
	return total
}
