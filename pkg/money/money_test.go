package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

func TestConstructors(t *testing.T) {
	if got := FromCents(123456); got.String() != "1234.56" {
		t.Fatalf("FromCents display mismatch: got %s", got.String())
	}

	if got := FromDollars(decimal.NewFromFloat(10.125)); got != 1013 {
		t.Fatalf("FromDollars should round half up: got %d", got.Cents())
	}

	m, err := FromDollarString("123.45")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != 12345 {
		t.Fatalf("FromDollarString got %d cents", m.Cents())
	}

	if _, err := FromDollarString("not-a-number"); err == nil {
		t.Fatalf("expected error for invalid string")
	}
}

func TestRateMultiplication(t *testing.T) {
	cases := []struct {
		cents int64
		rate  string
		want  int64
	}{
		{100000, "0.10", 10000},
		{100000, "0.0054166666666667", 542}, // 6.5%/12 on $1,000: 5.4166 -> 5.42
		{333, "0.5", 167},                   // 1.665 rounds up
		{1, "0.004", 0},                     // 0.004 rounds down
	}
	for _, c := range cases {
		rate, _ := decimal.NewFromString(c.rate)
		if got := FromCents(c.cents).MulRate(rate); got.Cents() != c.want {
			t.Fatalf("MulRate(%d, %s) got %d want %d", c.cents, c.rate, got.Cents(), c.want)
		}
	}
}

func TestGrow(t *testing.T) {
	base := FromCents(10000000) // $100,000
	grown := base.Grow(decimal.NewFromFloat(0.10), 2)
	if grown.Cents() != 12100000 {
		t.Fatalf("Grow 10%% over 2 years got %s want 121000.00", grown.String())
	}
	if base.Grow(decimal.NewFromFloat(0.10), 0) != base {
		t.Fatalf("Grow over 0 years should be identity")
	}
}

func TestPeriodConversions(t *testing.T) {
	m := FromCents(10000)
	if got := m.Annual(); got.Cents() != 120000 {
		t.Fatalf("Annual got %d", got.Cents())
	}
	if got := m.Annual().Monthly(); got != m {
		t.Fatalf("Monthly after Annual got %d", got.Cents())
	}
	if got := FromCents(100).DivInt(0); got != 0 {
		t.Fatalf("DivInt by zero should yield zero, got %d", got.Cents())
	}
}

func TestRatio(t *testing.T) {
	if got := FromCents(2500).Ratio(FromCents(10000)); !got.Equal(decimal.NewFromFloat(0.25)) {
		t.Fatalf("Ratio got %s", got)
	}
	if got := FromCents(2500).Ratio(0); !got.IsZero() {
		t.Fatalf("Ratio with zero denominator should be zero, got %s", got)
	}
}

func TestComparisonsAndUtils(t *testing.T) {
	a := FromCents(1000)
	b := FromCents(2000)

	if Min(a, b) != a || Max(a, b) != b {
		t.Fatalf("Min/Max failed")
	}
	if !Money(0).IsZero() || !b.IsPositive() || !FromCents(-1).IsNegative() {
		t.Fatalf("sign predicate failure")
	}
	if FromCents(-500).Abs() != FromCents(500) {
		t.Fatalf("Abs failed")
	}
}

func TestStringAndFormat(t *testing.T) {
	m := FromCents(123450)
	if got := m.String(); got != "1234.50" {
		t.Fatalf("String got %s", got)
	}
	if got := m.Format(); got != "$1234.50" {
		t.Fatalf("Format got %s", got)
	}
	if got := FromCents(-123450).Format(); got != "-$1234.50" {
		t.Fatalf("negative Format got %s", got)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	var decoded struct {
		Amount Money `yaml:"amount"`
	}
	if err := yaml.Unmarshal([]byte("amount: 85000.50\n"), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Amount != 8500050 {
		t.Fatalf("decoded %d cents", decoded.Amount.Cents())
	}

	out, err := yaml.Marshal(decoded)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "amount: \"85000.50\"\n" {
		t.Fatalf("marshal got %q", string(out))
	}
}
