package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Money is a monetary amount in minor currency units (integer cents).
// Rate arithmetic routes through decimal and rounds half up on the cents
// value at each step, so repeated multiplication never accumulates
// sub-cent drift.
type Money int64

// Zero is the zero amount.
const Zero Money = 0

// FromCents creates a Money value from an integer cent count.
func FromCents(cents int64) Money {
	return Money(cents)
}

// FromDollars converts a decimal dollar amount to cents, rounding half up.
func FromDollars(d decimal.Decimal) Money {
	return Money(d.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// FromDollarString parses a dollar amount such as "85000.50" into cents.
func FromDollarString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return FromDollars(d), nil
}

// Cents returns the raw cent count.
func (m Money) Cents() int64 {
	return int64(m)
}

// Dollars returns the amount as a decimal dollar value.
func (m Money) Dollars() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// MulRate multiplies by a decimal rate and rounds half up to whole cents.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money(decimal.NewFromInt(int64(m)).Mul(rate).Round(0).IntPart())
}

// MulInt multiplies by an integer factor.
func (m Money) MulInt(n int64) Money {
	return Money(int64(m) * n)
}

// DivInt divides by an integer, rounding half up. Division by zero yields zero.
func (m Money) DivInt(n int64) Money {
	if n == 0 {
		return 0
	}
	return Money(decimal.NewFromInt(int64(m)).Div(decimal.NewFromInt(n)).Round(0).IntPart())
}

// Grow applies compound growth of (1+rate)^years and rounds to cents.
func (m Money) Grow(rate decimal.Decimal, years int) Money {
	if years <= 0 {
		return m
	}
	factor := decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(years)))
	return m.MulRate(factor)
}

// Annual converts a monthly amount to annual.
func (m Money) Annual() Money {
	return m.MulInt(12)
}

// Monthly converts an annual amount to monthly, rounding half up.
func (m Money) Monthly() Money {
	return m.DivInt(12)
}

// Ratio returns m divided by other as a decimal fraction, zero when other is zero.
func (m Money) Ratio(other Money) decimal.Decimal {
	if other == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(m)).Div(decimal.NewFromInt(int64(other)))
}

// IsZero checks if the amount is zero.
func (m Money) IsZero() bool {
	return m == 0
}

// IsPositive checks if the amount is positive.
func (m Money) IsPositive() bool {
	return m > 0
}

// IsNegative checks if the amount is negative.
func (m Money) IsNegative() bool {
	return m < 0
}

// Abs returns the absolute value.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// Min returns the smaller of two amounts.
func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two amounts.
func Max(a, b Money) Money {
	if a > b {
		return a
	}
	return b
}

// String returns the dollar representation with two decimal places.
func (m Money) String() string {
	return m.Dollars().StringFixed(2)
}

// Format formats the amount with a currency symbol.
func (m Money) Format() string {
	if m < 0 {
		return "-$" + (-m).String()
	}
	return "$" + m.String()
}

// UnmarshalYAML decodes a dollar amount (number or string) into cents.
func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	switch value.Value {
	case "", "~", "null":
		*m = 0
		return nil
	}
	parsed, err := FromDollarString(value.Value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML encodes the amount as a dollar string.
func (m Money) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}
