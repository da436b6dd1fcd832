package assets_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/asset-ledger/assets"
	"github.com/warp/asset-ledger/money"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func testGroup() assets.AssetGroup {
	return assets.AssetGroup{
		Code:                "04",
		Name:                "Machines and equipment",
		AccountNumber:       "104",
		DepreciationAccount: "131",
	}
}

func newAsset(method assets.DepreciationMethod, cost, residual string, lifeMonths int) *assets.Asset {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &assets.Asset{
		InventoryNumber:       "INV-0001",
		Name:                  "Milling machine",
		Group:                 testGroup(),
		Status:                assets.StatusActive,
		InitialCost:           money.MustParse(cost),
		ResidualValue:         money.MustParse(residual),
		Method:                method,
		UsefulLifeMonths:      lifeMonths,
		UnitsProducedToDate:   money.RatioFromInt(0, 1),
		CommissioningDate:     start,
		DepreciationStartDate: start,
		Version:               1,
	}
}

func period(year int, month time.Month) money.Period {
	return money.NewPeriod(year, month)
}

// =============================================================================
// STRAIGHT LINE
// =============================================================================

func TestStraightLine_MonthlyAmount(t *testing.T) {
	// GIVEN: 120000.00 over 120 months with no residual
	// WHEN: Computing one period
	// THEN: 1000.00 per month

	a := newAsset(assets.MethodStraightLine, "120000.00", "0.00", 120)

	amount, err := assets.MonthlyDepreciation(a, period(2025, time.January), assets.AccrualInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := amount.String(), "1000.00"; got != want {
		t.Errorf("monthly amount = %s, want %s", got, want)
	}
}

func TestStraightLine_FullScheduleLandsOnResidual(t *testing.T) {
	// GIVEN: 120000.00 over 120 months
	// WHEN: Accruing every period of the useful life
	// THEN: Book value lands exactly on the residual floor, never below

	a := newAsset(assets.MethodStraightLine, "120000.00", "0.00", 120)

	p := period(2025, time.January)
	for i := 0; i < 120; i++ {
		amount, err := assets.MonthlyDepreciation(a, p, assets.AccrualInput{})
		if err != nil {
			t.Fatalf("period %s: %v", p, err)
		}
		if _, err := a.ApplyAccrual(p, amount, assets.AccrualInput{}, "test"); err != nil {
			t.Fatalf("period %s: %v", p, err)
		}
		p = p.Next()
	}

	if !a.BookValue().IsZero() {
		t.Errorf("book value after full life = %s, want 0.00", a.BookValue())
	}
	if !a.FullyDepreciated() {
		t.Error("asset should be fully depreciated")
	}

	// One more period accrues nothing.
	amount, err := assets.MonthlyDepreciation(a, p, assets.AccrualInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amount.IsZero() {
		t.Errorf("amount past full depreciation = %s, want 0.00", amount)
	}
}

func TestStraightLine_FinalPeriodClampsToHeadroom(t *testing.T) {
	// GIVEN: Only 250.00 of headroom left but a 1000.00 monthly amount
	// WHEN: Computing the period
	// THEN: The amount is the remainder, landing book value on the floor

	a := newAsset(assets.MethodStraightLine, "120000.00", "0.00", 120)
	a.AccumulatedDepreciation = money.MustParse("119750.00")

	amount, err := assets.MonthlyDepreciation(a, period(2025, time.January), assets.AccrualInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := amount.String(), "250.00"; got != want {
		t.Errorf("clamped amount = %s, want %s", got, want)
	}
}

// =============================================================================
// REDUCING BALANCE
// =============================================================================

func TestReducingBalance_ConfiguredRate(t *testing.T) {
	// GIVEN: Book value 12000.00 and a configured 40% annual rate
	// WHEN: Computing one period
	// THEN: 12000 * 0.40 / 12 = 400.00

	a := newAsset(assets.MethodReducingBalance, "12000.00", "1000.00", 60)
	rate := money.RatioFromFloat(0.4)
	a.DepreciationRate = &rate

	amount, err := assets.MonthlyDepreciation(a, period(2025, time.January), assets.AccrualInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := amount.String(), "400.00"; got != want {
		t.Errorf("monthly amount = %s, want %s", got, want)
	}
}

func TestReducingBalance_DerivedRate(t *testing.T) {
	// GIVEN: No configured rate; cost 10000, residual 1000, life 5 years
	// WHEN: Computing one period
	// THEN: Rate is 1 - (1000/10000)^(1/5), monthly about 307.54

	a := newAsset(assets.MethodReducingBalance, "10000.00", "1000.00", 60)

	amount, err := assets.MonthlyDepreciation(a, period(2025, time.January), assets.AccrualInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := amount.String(), "307.54"; got != want {
		t.Errorf("monthly amount = %s, want %s", got, want)
	}
}

func TestReducingBalance_ZeroResidualFallsBackToStraightLine(t *testing.T) {
	// GIVEN: No rate and a zero residual (the root formula degenerates)
	// WHEN: Computing one period
	// THEN: The straight-line amount is used instead

	a := newAsset(assets.MethodReducingBalance, "24000.00", "0.00", 24)

	amount, err := assets.MonthlyDepreciation(a, period(2025, time.January), assets.AccrualInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := amount.String(), "1000.00"; got != want {
		t.Errorf("fallback amount = %s, want %s", got, want)
	}
}

// =============================================================================
// ACCELERATED REDUCING
// =============================================================================

func TestAcceleratedReducing_DoubleRate(t *testing.T) {
	// GIVEN: Book value 120000.00 over 120 months
	// WHEN: Computing one period
	// THEN: 120000 * 2 / 120 = 2000.00, and it shrinks as book value falls

	a := newAsset(assets.MethodAcceleratedReducing, "120000.00", "0.00", 120)

	amount, err := assets.MonthlyDepreciation(a, period(2025, time.January), assets.AccrualInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := amount.String(), "2000.00"; got != want {
		t.Errorf("first month = %s, want %s", got, want)
	}

	a.AccumulatedDepreciation = money.MustParse("60000.00")
	amount, err = assets.MonthlyDepreciation(a, period(2025, time.February), assets.AccrualInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := amount.String(), "1000.00"; got != want {
		t.Errorf("half-depreciated month = %s, want %s", got, want)
	}
}

// =============================================================================
// CUMULATIVE (sum-of-years-digits)
// =============================================================================

func TestCumulative_YearCoefficients(t *testing.T) {
	// GIVEN: Base 36000.00 over 3 years; sum of digits = 6
	// WHEN: Computing periods in service years 1, 2 and 3
	// THEN: Annual shares 3/6, 2/6, 1/6 => monthly 1500, 1000, 500

	a := newAsset(assets.MethodCumulative, "36000.00", "0.00", 36)

	cases := []struct {
		name   string
		period money.Period
		want   string
	}{
		{"year 1", period(2025, time.June), "1500.00"},
		{"year 2", period(2026, time.February), "1000.00"},
		{"year 3", period(2027, time.December), "500.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount, err := assets.MonthlyDepreciation(a, tc.period, assets.AccrualInput{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if amount.String() != tc.want {
				t.Errorf("amount = %s, want %s", amount, tc.want)
			}
		})
	}
}

func TestCumulative_PastUsefulLifeIsZero(t *testing.T) {
	// GIVEN: A 3-year asset in its 4th service year
	// WHEN: Computing the period
	// THEN: Zero, not an error

	a := newAsset(assets.MethodCumulative, "36000.00", "0.00", 36)

	amount, err := assets.MonthlyDepreciation(a, period(2028, time.June), assets.AccrualInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amount.IsZero() {
		t.Errorf("amount past useful life = %s, want 0.00", amount)
	}
}

// =============================================================================
// PRODUCTION
// =============================================================================

func TestProduction_PerUnitShare(t *testing.T) {
	// GIVEN: Base 100000.00, capacity 50000 units, 1200 units this period
	// WHEN: Computing the period
	// THEN: 100000 * 1200/50000 = 2400.00

	a := newAsset(assets.MethodProduction, "100000.00", "0.00", 120)
	capacity := money.RatioFromInt(50000, 1)
	a.TotalProductionCapacity = &capacity

	units := money.RatioFromInt(1200, 1)
	amount, err := assets.MonthlyDepreciation(a, period(2025, time.March), assets.AccrualInput{UnitsProduced: &units})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := amount.String(), "2400.00"; got != want {
		t.Errorf("amount = %s, want %s", got, want)
	}
}

func TestProduction_NoUnitsMeansZero(t *testing.T) {
	a := newAsset(assets.MethodProduction, "100000.00", "0.00", 120)
	capacity := money.RatioFromInt(50000, 1)
	a.TotalProductionCapacity = &capacity

	amount, err := assets.MonthlyDepreciation(a, period(2025, time.March), assets.AccrualInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amount.IsZero() {
		t.Errorf("amount without units = %s, want 0.00", amount)
	}
}

func TestProduction_MissingCapacityIsConfigurationError(t *testing.T) {
	a := newAsset(assets.MethodProduction, "100000.00", "0.00", 120)

	units := money.RatioFromInt(100, 1)
	_, err := assets.MonthlyDepreciation(a, period(2025, time.March), assets.AccrualInput{UnitsProduced: &units})
	if err == nil {
		t.Fatal("expected a configuration error")
	}
	var cfgErr *assets.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want ConfigurationError", err)
	}
}

// =============================================================================
// ELIGIBILITY
// =============================================================================

func TestMonthlyDepreciation_IneligibleAssetsAccrueZero(t *testing.T) {
	cases := []struct {
		name string
		prep func(a *assets.Asset)
	}{
		{"conserved", func(a *assets.Asset) { a.Status = assets.StatusConserved }},
		{"disposed", func(a *assets.Asset) { a.Status = assets.StatusDisposed }},
		{"start date after period", func(a *assets.Asset) {
			a.DepreciationStartDate = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
		}},
		{"fully depreciated", func(a *assets.Asset) {
			a.AccumulatedDepreciation = a.InitialCost
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newAsset(assets.MethodStraightLine, "120000.00", "0.00", 120)
			tc.prep(a)

			amount, err := assets.MonthlyDepreciation(a, period(2025, time.January), assets.AccrualInput{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !amount.IsZero() {
				t.Errorf("amount = %s, want 0.00", amount)
			}
		})
	}
}

func TestMonthlyDepreciation_StartPeriodItselfIsEligible(t *testing.T) {
	// The first eligible period is the one containing the start date.
	a := newAsset(assets.MethodStraightLine, "120000.00", "0.00", 120)
	a.DepreciationStartDate = time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	amount, err := assets.MonthlyDepreciation(a, period(2025, time.March), assets.AccrualInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount.IsZero() {
		t.Error("start period should accrue")
	}
}
