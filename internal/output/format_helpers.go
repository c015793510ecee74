package output

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/finpath/trajectory-engine/pkg/money"
)

var hundred = decimal.NewFromInt(100)

// FormatPercent renders a decimal fraction as a percentage, so 0.2135
// becomes "21.35%".
func FormatPercent(rate decimal.Decimal) string {
	return rate.Mul(hundred).StringFixed(2) + "%"
}

// FormatSignedMoney renders an amount with an explicit sign so deltas
// read unambiguously in reports.
func FormatSignedMoney(m money.Money) string {
	if m.IsPositive() {
		return "+" + m.Format()
	}
	return m.Format()
}

func intToString(n int) string {
	return strconv.Itoa(n)
}

func boolToString(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
