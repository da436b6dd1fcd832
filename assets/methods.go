/*
methods.go - The five depreciation accrual strategies

PURPOSE:

	One pure strategy per statutory depreciation method. Each maps
	(asset parameters, period, per-period input) to a monthly amount with
	no side effects, so every method is unit-testable without persistence.

METHODS:

	straight_line:        depreciable base spread evenly over useful life
	reducing_balance:     fixed annual % of the remaining book value
	accelerated_reducing: reducing balance at double the straight-line rate
	cumulative:           sum-of-years-digits coefficient per service year
	production:           base per unit of capacity times units produced

RATE DERIVATION (when depreciation_rate is not configured):

	reducing_balance derives the declining-balance rate
	1 - (residual / initial) ^ (1 / life-in-years); with a zero residual
	the formula degenerates, so it falls back to the straight-line amount.

CLAMPING (applies to all methods):

	The amount never pushes accumulated depreciation past
	initial_cost - residual_value; the final period takes whatever
	remainder lands book value exactly on the residual floor.

SEE ALSO:
  - valuation.go: ApplyAccrual consumes the computed amount
  - scheduler.go: runs the configured method per eligible asset
*/
package assets

import (
	"math"

	"github.com/warp/asset-ledger/money"
)

// =============================================================================
// STRATEGY INTERFACE
// =============================================================================

// AccrualInput carries collaborator-supplied per-period data. Only the
// production method needs any: the units produced during the period.
type AccrualInput struct {
	UnitsProduced *money.Ratio
}

// Strategy computes one period's depreciation for an asset snapshot.
// Implementations are pure: they read the snapshot, never mutate it.
type Strategy interface {
	// Accrue returns the raw monthly amount before clamping.
	Accrue(a *Asset, period money.Period, in AccrualInput) (money.Money, error)

	// Method identifies the variant.
	Method() DepreciationMethod
}

// MethodFor selects the strategy for a configured method. The set is
// closed; an unknown method is a configuration error.
func MethodFor(m DepreciationMethod) (Strategy, error) {
	switch m {
	case MethodStraightLine:
		return straightLine{}, nil
	case MethodReducingBalance:
		return reducingBalance{}, nil
	case MethodAcceleratedReducing:
		return acceleratedReducing{}, nil
	case MethodCumulative:
		return cumulative{}, nil
	case MethodProduction:
		return production{}, nil
	default:
		return nil, &ConfigurationError{Method: m, Message: "unknown depreciation method"}
	}
}

// =============================================================================
// ELIGIBILITY AND CLAMPING - Shared by all methods
// =============================================================================

// Eligible reports whether the asset accrues depreciation in the period:
// it must be active and its depreciation start date must not be after the
// period. Ineligible assets are skipped, never errors.
func Eligible(a *Asset, period money.Period) bool {
	if a.Status != StatusActive {
		return false
	}
	return money.PeriodOf(a.DepreciationStartDate).BeforeOrEqual(period)
}

// MonthlyDepreciation computes the clamped amount for one period. It
// returns zero (and no error) for ineligible or fully depreciated assets.
func MonthlyDepreciation(a *Asset, period money.Period, in AccrualInput) (money.Money, error) {
	if !Eligible(a, period) {
		return money.Zero, nil
	}

	headroom := a.RemainingDepreciable()
	if headroom.IsZero() {
		return money.Zero, nil
	}

	strategy, err := MethodFor(a.Method)
	if err != nil {
		return money.Zero, &ConfigurationError{Asset: a.InventoryNumber, Method: a.Method, Message: "unknown depreciation method"}
	}

	amount, err := strategy.Accrue(a, period, in)
	if err != nil {
		return money.Zero, err
	}
	if amount.IsNegative() {
		return money.Zero, nil
	}

	// Never depreciate below the residual floor.
	return amount.Min(headroom), nil
}

// =============================================================================
// 1. STRAIGHT LINE
// =============================================================================

type straightLine struct{}

func (straightLine) Method() DepreciationMethod { return MethodStraightLine }

func (straightLine) Accrue(a *Asset, _ money.Period, _ AccrualInput) (money.Money, error) {
	if a.UsefulLifeMonths <= 0 {
		return money.Zero, &ConfigurationError{Asset: a.InventoryNumber, Method: MethodStraightLine, Message: "useful life must be positive"}
	}
	base := a.DepreciableBase()
	if !base.IsPositive() {
		return money.Zero, nil
	}
	return base.Div(int64(a.UsefulLifeMonths)), nil
}

// =============================================================================
// 2. REDUCING BALANCE
// =============================================================================

type reducingBalance struct{}

func (reducingBalance) Method() DepreciationMethod { return MethodReducingBalance }

func (reducingBalance) Accrue(a *Asset, p money.Period, in AccrualInput) (money.Money, error) {
	if a.UsefulLifeMonths <= 0 {
		return money.Zero, &ConfigurationError{Asset: a.InventoryNumber, Method: MethodReducingBalance, Message: "useful life must be positive"}
	}

	annual, ok := annualRate(a)
	if !ok {
		// Zero residual makes the root formula degenerate; the statutory
		// practice is to fall back to the straight-line amount.
		return straightLine{}.Accrue(a, p, in)
	}

	monthly := annual.Div(money.RatioFromInt(12, 1))
	return a.BookValue().Mul(monthly), nil
}

// annualRate resolves the annual percentage for reducing-balance assets:
// the configured rate when present, otherwise
// 1 - (residual / initial) ^ (1 / life-in-years). Returns ok=false when
// the derivation is impossible (zero residual or cost).
func annualRate(a *Asset) (money.Ratio, bool) {
	if a.DepreciationRate != nil {
		return *a.DepreciationRate, true
	}
	if !a.ResidualValue.IsPositive() || !a.InitialCost.IsPositive() {
		return money.RatioFromInt(0, 1), false
	}

	years := float64(a.UsefulLifeMonths) / 12.0
	ratio, _ := a.ResidualValue.Decimal().Div(a.InitialCost.Decimal()).Float64()
	rate := 1.0 - math.Pow(ratio, 1.0/years)
	return money.RatioFromFloat(rate), true
}

// =============================================================================
// 3. ACCELERATED REDUCING
// =============================================================================

type acceleratedReducing struct{}

func (acceleratedReducing) Method() DepreciationMethod { return MethodAcceleratedReducing }

func (acceleratedReducing) Accrue(a *Asset, _ money.Period, _ AccrualInput) (money.Money, error) {
	if a.UsefulLifeMonths <= 0 {
		return money.Zero, &ConfigurationError{Asset: a.InventoryNumber, Method: MethodAcceleratedReducing, Message: "useful life must be positive"}
	}

	// Annual rate is double the straight-line rate: 2 / life-in-years.
	// Monthly: book value * 2 / life-in-months.
	monthly := money.RatioFromInt(2, int64(a.UsefulLifeMonths))
	return a.BookValue().Mul(monthly), nil
}

// =============================================================================
// 4. CUMULATIVE (sum-of-years-digits)
// =============================================================================

type cumulative struct{}

func (cumulative) Method() DepreciationMethod { return MethodCumulative }

func (cumulative) Accrue(a *Asset, p money.Period, _ AccrualInput) (money.Money, error) {
	if a.UsefulLifeMonths <= 0 {
		return money.Zero, &ConfigurationError{Asset: a.InventoryNumber, Method: MethodCumulative, Message: "useful life must be positive"}
	}

	years := a.UsefulLifeMonths / 12
	if years <= 0 {
		years = 1
	}

	// Which service year the target period falls into, counted from the
	// depreciation start date - never from the wall clock.
	monthsUsed := p.MonthsSince(a.DepreciationStartDate)
	currentYear := monthsUsed/12 + 1
	remainingYears := years - currentYear + 1
	if remainingYears <= 0 {
		return money.Zero, nil
	}

	base := a.DepreciableBase()
	if !base.IsPositive() {
		return money.Zero, nil
	}

	sumOfYears := years * (years + 1) / 2
	coefficient := money.RatioFromInt(int64(remainingYears), int64(sumOfYears))
	annual := base.Mul(coefficient)
	return annual.Div(12), nil
}

// =============================================================================
// 5. PRODUCTION
// =============================================================================

type production struct{}

func (production) Method() DepreciationMethod { return MethodProduction }

func (production) Accrue(a *Asset, _ money.Period, in AccrualInput) (money.Money, error) {
	if a.TotalProductionCapacity == nil || !a.TotalProductionCapacity.IsPositive() {
		return money.Zero, &ConfigurationError{Asset: a.InventoryNumber, Method: MethodProduction, Message: "total production capacity required"}
	}
	if in.UnitsProduced == nil || !in.UnitsProduced.IsPositive() {
		return money.Zero, nil
	}

	base := a.DepreciableBase()
	if !base.IsPositive() {
		return money.Zero, nil
	}

	// Full-precision units/capacity share, rounded once at the end.
	share := in.UnitsProduced.Div(*a.TotalProductionCapacity)
	return base.Mul(share), nil
}
