package dateutil

import (
	"fmt"
	"time"
)

// MonthYear identifies a calendar month without a day component.
// Month runs 1-12.
type MonthYear struct {
	Month int `yaml:"month" json:"month"`
	Year  int `yaml:"year" json:"year"`
}

// NewMonthYear creates a MonthYear from a month (1-12) and a full year.
func NewMonthYear(month, year int) MonthYear {
	return MonthYear{Month: month, Year: year}
}

// FromTime extracts the month and year of a time value.
func FromTime(t time.Time) MonthYear {
	return MonthYear{Month: int(t.Month()), Year: t.Year()}
}

// IsZero reports whether the value is unset.
func (my MonthYear) IsZero() bool {
	return my.Month == 0 && my.Year == 0
}

// Before reports whether my is strictly earlier than other.
func (my MonthYear) Before(other MonthYear) bool {
	if my.Year != other.Year {
		return my.Year < other.Year
	}
	return my.Month < other.Month
}

// After reports whether my is strictly later than other.
func (my MonthYear) After(other MonthYear) bool {
	return other.Before(my)
}

// MonthsBetween returns the signed month count from a to b.
func MonthsBetween(a, b MonthYear) int {
	return (b.Year-a.Year)*12 + (b.Month - a.Month)
}

// String renders the value as YYYY-MM.
func (my MonthYear) String() string {
	return fmt.Sprintf("%04d-%02d", my.Year, my.Month)
}
