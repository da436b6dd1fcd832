package money

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - One accrual month (year, month)
// =============================================================================

// Period identifies a single accounting month. Depreciation is accrued
// once per asset per Period; every batch run targets exactly one Period,
// passed in explicitly (there is no process-wide "current period").
type Period struct {
	Year  int
	Month time.Month
}

func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// PeriodOf returns the period containing the given date.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod accepts "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q (want YYYY-MM): %w", s, err)
	}
	return PeriodOf(t), nil
}

func (p Period) Valid() bool {
	return p.Year > 0 && p.Month >= time.January && p.Month <= time.December
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start is the first day of the period month (UTC).
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last day of the period month.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

func (p Period) Next() Period     { return PeriodOf(p.Start().AddDate(0, 1, 0)) }
func (p Period) Previous() Period { return PeriodOf(p.Start().AddDate(0, -1, 0)) }

func (p Period) Equal(o Period) bool { return p.Year == o.Year && p.Month == o.Month }

func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

func (p Period) After(o Period) bool         { return o.Before(p) }
func (p Period) BeforeOrEqual(o Period) bool { return !o.Before(p) }

// MonthsSince counts whole months from the period containing 'from' up to
// (and excluding) this period. Used by the cumulative method to derive
// months in service without consulting the wall clock.
func (p Period) MonthsSince(from time.Time) int {
	start := PeriodOf(from)
	months := (p.Year-start.Year)*12 + int(p.Month) - int(start.Month)
	if months < 0 {
		return 0
	}
	return months
}
