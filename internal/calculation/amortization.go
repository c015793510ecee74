package calculation

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/pkg/money"
)

// PayoffHorizon is the outcome of a months-to-payoff calculation: either a
// finite month count or a payment that never retires the balance. The zero
// value is an immediate (zero-month) payoff.
type PayoffHorizon struct {
	months int
	never  bool
}

// FiniteHorizon returns a horizon of the given month count.
func FiniteHorizon(months int) PayoffHorizon {
	return PayoffHorizon{months: months}
}

// NeverPaysOff returns the horizon of a payment that cannot cover interest.
func NeverPaysOff() PayoffHorizon {
	return PayoffHorizon{never: true}
}

// Never reports whether the balance is never retired.
func (h PayoffHorizon) Never() bool {
	return h.never
}

// Months returns the finite month count; ok is false for a never-amortizing
// horizon.
func (h PayoffHorizon) Months() (int, bool) {
	if h.never {
		return 0, false
	}
	return h.months, true
}

// ScheduleEntry is one month of an amortization schedule. Payment is the
// actual cash for the month, which differs from the nominal payment on the
// final, clamped month.
type ScheduleEntry struct {
	Month     int         `json:"month"`
	Payment   money.Money `json:"payment"`
	Interest  money.Money `json:"interest"`
	Principal money.Money `json:"principal"`
	Balance   money.Money `json:"balance"`
}

// MonthlyPayment returns the standard annuity payment for a loan: a zero rate
// divides the principal evenly, a non-positive term yields zero.
func MonthlyPayment(principal money.Money, annualRate decimal.Decimal, termMonths int) money.Money {
	if termMonths <= 0 || principal.IsZero() {
		return money.Zero
	}
	if annualRate.IsZero() {
		return principal.DivInt(int64(termMonths))
	}
	r := monthlyRate(annualRate)
	factor := decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt(int64(termMonths)))
	return principal.MulRate(r.Mul(factor).Div(factor.Sub(decimal.NewFromInt(1))))
}

// MonthsToPayoff returns how long the given payment takes to retire the
// balance. A payment at or below the first month's interest never pays off.
func MonthsToPayoff(balance money.Money, annualRate decimal.Decimal, payment money.Money) PayoffHorizon {
	if !balance.IsPositive() {
		return FiniteHorizon(0)
	}
	if !payment.IsPositive() {
		return NeverPaysOff()
	}
	if annualRate.IsZero() {
		months := (balance.Cents() + payment.Cents() - 1) / payment.Cents()
		return FiniteHorizon(int(months))
	}
	r := monthlyRate(annualRate)
	if payment <= balance.MulRate(r) {
		return NeverPaysOff()
	}

	// -ln(1 - P*r/payment) / ln(1+r), rounded up. Only the month count goes
	// through floats; all cash stays in cents.
	x := decimal.NewFromInt(1).Sub(balance.Dollars().Mul(r).Div(payment.Dollars())).InexactFloat64()
	if x <= 0 {
		return NeverPaysOff()
	}
	growth := decimal.NewFromInt(1).Add(r).InexactFloat64()
	months := int(math.Ceil(-math.Log(x) / math.Log(growth)))
	if months < 1 {
		months = 1
	}
	return FiniteHorizon(months)
}

// InterestOverLife returns the total interest paid until payoff as
// payment × months − balance. The horizon mirrors MonthsToPayoff so a
// never-amortizing payment propagates instead of producing a number.
func InterestOverLife(balance money.Money, annualRate decimal.Decimal, payment money.Money) (money.Money, PayoffHorizon) {
	horizon := MonthsToPayoff(balance, annualRate, payment)
	months, ok := horizon.Months()
	if !ok {
		return money.Zero, horizon
	}
	interest := payment.MulInt(int64(months)) - balance
	if interest.IsNegative() {
		interest = money.Zero
	}
	return interest, horizon
}

// InterestSaved estimates the interest avoided by paying extra each month.
// ok is false when either horizon never pays off.
func InterestSaved(balance money.Money, annualRate decimal.Decimal, payment, extra money.Money) (money.Money, bool) {
	base, baseHorizon := InterestOverLife(balance, annualRate, payment)
	if baseHorizon.Never() {
		return money.Zero, false
	}
	improved, improvedHorizon := InterestOverLife(balance, annualRate, payment+extra)
	if improvedHorizon.Never() {
		return money.Zero, false
	}
	saved := base - improved
	if saved.IsNegative() {
		saved = money.Zero
	}
	return saved, true
}

// BuildSchedule amortizes a loan month by month across its full term. The
// final term month clamps principal to the remaining balance so the schedule
// always ends at exactly zero, absorbing accumulated rounding residue. A
// payment that never amortizes the balance yields a nil schedule.
func BuildSchedule(principal money.Money, annualRate decimal.Decimal, termMonths int, payment money.Money) []ScheduleEntry {
	if !principal.IsPositive() || termMonths <= 0 {
		return nil
	}
	if MonthsToPayoff(principal, annualRate, payment).Never() {
		return nil
	}

	r := monthlyRate(annualRate)
	balance := principal
	schedule := make([]ScheduleEntry, 0, termMonths)
	for m := 1; m <= termMonths; m++ {
		interest := balance.MulRate(r)
		principalPart := payment - interest
		if principalPart >= balance || m == termMonths {
			principalPart = balance
		}
		balance -= principalPart
		schedule = append(schedule, ScheduleEntry{
			Month:     m,
			Payment:   interest + principalPart,
			Interest:  interest,
			Principal: principalPart,
			Balance:   balance,
		})
		if balance.IsZero() {
			break
		}
	}
	return schedule
}

// ProjectDebtYear advances one debt through up to twelve months of payments
// from the carried starting balance. A balance already at zero short-circuits
// to a paid-off state with zero flows; an unretired balance carries forward
// unclamped. A payment below the month's interest grows the balance.
func ProjectDebtYear(debt *domain.Debt, startingBalance, payment money.Money) domain.DebtYearState {
	state := domain.DebtYearState{
		DebtID:          debt.ID,
		StartingBalance: startingBalance,
		EndingBalance:   startingBalance,
	}
	if !startingBalance.IsPositive() {
		state.StartingBalance = money.Zero
		state.EndingBalance = money.Zero
		state.IsPaidOff = true
		return state
	}

	r := monthlyRate(debt.InterestRate)
	balance := startingBalance
	for m := 1; m <= monthsPerYear; m++ {
		interest := balance.MulRate(r)
		principalPart := payment - interest
		if principalPart >= balance {
			principalPart = balance
		}
		balance -= principalPart
		state.InterestPaid += interest
		state.PrincipalPaid += principalPart
		state.TotalPaid += interest + principalPart
		if balance.IsZero() {
			state.IsPaidOff = true
			state.PayoffMonth = m
			break
		}
	}
	state.EndingBalance = balance
	return state
}

// AvalancheOrder returns the positive-balance debts sorted by descending
// interest rate.
func AvalancheOrder(debts []domain.Debt) []domain.Debt {
	ordered := activeDebts(debts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].InterestRate.GreaterThan(ordered[j].InterestRate)
	})
	return ordered
}

// SnowballOrder returns the positive-balance debts sorted by ascending
// principal.
func SnowballOrder(debts []domain.Debt) []domain.Debt {
	ordered := activeDebts(debts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Principal < ordered[j].Principal
	})
	return ordered
}

func activeDebts(debts []domain.Debt) []domain.Debt {
	out := make([]domain.Debt, 0, len(debts))
	for _, d := range debts {
		if d.Principal.IsPositive() {
			out = append(out, d)
		}
	}
	return out
}

func monthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.Div(decimal.NewFromInt(monthsPerYear))
}
