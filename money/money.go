/*
Package money provides the fixed-point primitives for valuation math.

PURPOSE:

	Every amount in the engine is a Money value backed by decimal.Decimal.
	No floating point touches valuation math: depreciation, revaluation and
	posting amounts are computed and rounded here, once, to two decimal
	places (half-up, the statutory rounding mode).

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: a two-decimal monetary amount
  - Ratio: an unrounded decimal factor (rates, coefficients, indexes)

DESIGN PRINCIPLES:
 1. Precision: decimal.Decimal everywhere, rounding only at Money boundaries
 2. Closed arithmetic: Money op Money -> Money, already rounded
 3. Comparability: rounded representation makes equality checks exact

SEE ALSO:
  - period.go: (year, month) accrual periods
  - assets/methods.go: depreciation strategies built on these primitives
*/
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Two-decimal monetary amount
// =============================================================================

type Money struct {
	value decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{value: decimal.Zero}

func New(value decimal.Decimal) Money {
	return Money{value: value.Round(2)}
}

// FromString parses a decimal string like "120000.00".
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money value %q: %w", s, err)
	}
	return New(d), nil
}

// MustParse is for literals in tests and seed data.
func MustParse(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) String() string           { return m.value.StringFixed(2) }

func (m Money) Add(o Money) Money { return Money{value: m.value.Add(o.value)} }
func (m Money) Sub(o Money) Money { return Money{value: m.value.Sub(o.value)} }
func (m Money) Neg() Money        { return Money{value: m.value.Neg()} }
func (m Money) Abs() Money        { return Money{value: m.value.Abs()} }

// Mul multiplies by an unrounded ratio and rounds half-up to two decimals.
func (m Money) Mul(r Ratio) Money {
	return Money{value: m.value.Mul(decimal.Decimal(r)).Round(2)}
}

// Div divides by an integer count (e.g., useful life in months) and rounds.
func (m Money) Div(n int64) Money {
	return Money{value: m.value.DivRound(decimal.NewFromInt(n), 2)}
}

func (m Money) IsZero() bool     { return m.value.IsZero() }
func (m Money) IsNegative() bool { return m.value.IsNegative() }
func (m Money) IsPositive() bool { return m.value.IsPositive() }

func (m Money) Equal(o Money) bool              { return m.value.Equal(o.value) }
func (m Money) GreaterThan(o Money) bool        { return m.value.GreaterThan(o.value) }
func (m Money) GreaterThanOrEqual(o Money) bool { return m.value.GreaterThanOrEqual(o.value) }
func (m Money) LessThan(o Money) bool           { return m.value.LessThan(o.value) }
func (m Money) LessThanOrEqual(o Money) bool    { return m.value.LessThanOrEqual(o.value) }

func (m Money) Min(o Money) Money {
	if m.LessThan(o) {
		return m
	}
	return o
}

func (m Money) Max(o Money) Money {
	if m.GreaterThan(o) {
		return m
	}
	return o
}

// =============================================================================
// RATIO - Unrounded decimal factor
// =============================================================================

// Ratio carries full precision between Money boundaries: annual rates,
// revaluation indexes, cumulative coefficients. Rounding happens only when
// a Ratio is applied to a Money.
type Ratio decimal.Decimal

func RatioFromInt(n, d int64) Ratio {
	return Ratio(decimal.NewFromInt(n).Div(decimal.NewFromInt(d)))
}

func RatioFromFloat(f float64) Ratio {
	return Ratio(decimal.NewFromFloat(f))
}

// RatioOf is the full-precision quotient of two amounts (e.g., fair value
// over book value for a revaluation index).
func RatioOf(num, den Money) Ratio {
	return Ratio(num.Decimal().Div(den.Decimal()))
}

// RatioFromString parses a decimal string, e.g. a stored rate.
func RatioFromString(s string) (Ratio, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio value %q: %w", s, err)
	}
	return Ratio(d), nil
}

func (r Ratio) Decimal() decimal.Decimal { return decimal.Decimal(r) }
func (r Ratio) String() string           { return decimal.Decimal(r).String() }

func (r Ratio) Add(o Ratio) Ratio {
	return Ratio(decimal.Decimal(r).Add(decimal.Decimal(o)))
}

func (r Ratio) Mul(o Ratio) Ratio {
	return Ratio(decimal.Decimal(r).Mul(decimal.Decimal(o)))
}

func (r Ratio) Div(o Ratio) Ratio {
	return Ratio(decimal.Decimal(r).Div(decimal.Decimal(o)))
}

func (r Ratio) IsPositive() bool { return decimal.Decimal(r).IsPositive() }

func (r Ratio) LessThan(o Ratio) bool {
	return decimal.Decimal(r).LessThan(decimal.Decimal(o))
}
