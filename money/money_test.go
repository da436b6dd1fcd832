package money_test

import (
	"testing"
	"time"

	"github.com/warp/asset-ledger/money"
)

// =============================================================================
// MONEY ARITHMETIC
// =============================================================================

func TestMoney_DivRoundsHalfUp(t *testing.T) {
	// GIVEN: 100.00 split over 3 months
	// WHEN: dividing
	// THEN: result is 33.33 (rounded to two decimals, half-up)

	m := money.MustParse("100.00").Div(3)
	if m.String() != "33.33" {
		t.Errorf("expected 33.33, got %s", m)
	}
}

func TestMoney_MulByRatio(t *testing.T) {
	// Annual rate of 40% applied monthly: 12000 * 0.40 / 12 = 400.00
	rate := money.RatioFromInt(40, 100).Div(money.RatioFromInt(12, 1))
	m := money.MustParse("12000.00").Mul(rate)
	if m.String() != "400.00" {
		t.Errorf("expected 400.00, got %s", m)
	}
}

func TestMoney_MinMaxClamp(t *testing.T) {
	a := money.MustParse("10.00")
	b := money.MustParse("7.50")
	if !a.Min(b).Equal(b) {
		t.Errorf("Min: expected %s, got %s", b, a.Min(b))
	}
	if !a.Max(b).Equal(a) {
		t.Errorf("Max: expected %s, got %s", a, a.Max(b))
	}
}

func TestMoney_FromStringRejectsGarbage(t *testing.T) {
	if _, err := money.FromString("12,50"); err == nil {
		t.Error("expected error for malformed decimal")
	}
}

// =============================================================================
// PERIODS
// =============================================================================

func TestPeriod_Ordering(t *testing.T) {
	jan := money.NewPeriod(2025, time.January)
	feb := money.NewPeriod(2025, time.February)
	dec24 := money.NewPeriod(2024, time.December)

	if !jan.Before(feb) {
		t.Error("Jan 2025 should be before Feb 2025")
	}
	if !dec24.Before(jan) {
		t.Error("Dec 2024 should be before Jan 2025")
	}
	if !jan.Next().Equal(feb) {
		t.Error("Next of Jan should be Feb")
	}
	if !jan.Previous().Equal(dec24) {
		t.Error("Previous of Jan 2025 should be Dec 2024")
	}
}

func TestPeriod_YearBoundaryNext(t *testing.T) {
	dec := money.NewPeriod(2025, time.December)
	next := dec.Next()
	if next.Year != 2026 || next.Month != time.January {
		t.Errorf("expected 2026-01, got %s", next)
	}
}

func TestPeriod_MonthsSince(t *testing.T) {
	start := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		period money.Period
		want   int
	}{
		{money.NewPeriod(2024, time.March), 0},
		{money.NewPeriod(2024, time.April), 1},
		{money.NewPeriod(2025, time.March), 12},
		{money.NewPeriod(2023, time.December), 0}, // before start clamps to 0
	}
	for _, c := range cases {
		if got := c.period.MonthsSince(start); got != c.want {
			t.Errorf("%s.MonthsSince(2024-03): expected %d, got %d", c.period, c.want, got)
		}
	}
}

func TestPeriod_Parse(t *testing.T) {
	p, err := money.ParsePeriod("2025-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Year != 2025 || p.Month != time.July {
		t.Errorf("expected 2025-07, got %s", p)
	}

	if _, err := money.ParsePeriod("07.2025"); err == nil {
		t.Error("expected error for malformed period")
	}
}
