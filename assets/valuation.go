/*
valuation.go - Snapshot mutations and status transitions

PURPOSE:

	The Asset snapshot is the single source of truth for current value.
	Every mutation of its valuation fields lives here, as an explicit,
	tested transformation - nothing changes a snapshot as a side effect
	buried in a handler.

STATE MACHINE:

	active <-> conserved -> disposed
	Disposed is terminal. Conservation pauses accrual without resetting
	anything; reactivation resumes it.

PROPORTIONAL REVALUATION:

	A fair-value adjustment rescales BOTH initial cost and accumulated
	depreciation by index = fair_value / book_value, so the wear ratio is
	preserved and future straight-line/cumulative math stays consistent.

SEE ALSO:
  - processor.go: wraps these mutations in atomic persistence
  - methods.go: produces the amounts ApplyAccrual consumes
*/
package assets

import (
	"github.com/warp/asset-ledger/money"
)

// =============================================================================
// VALIDATION - Applied before any snapshot is accepted
// =============================================================================

// ValidateAsset checks the cross-field invariants of a snapshot. It is
// called before a new asset is persisted and never mutates anything.
func ValidateAsset(a *Asset) error {
	if a.InventoryNumber == "" {
		return &ValidationError{Field: "inventory_number", Message: "required"}
	}
	if a.Name == "" {
		return &ValidationError{Field: "name", Message: "required"}
	}
	if !a.InitialCost.GreaterThanOrEqual(money.MustParse("0.01")) {
		return &ValidationError{Field: "initial_cost", Message: "must be at least 0.01"}
	}
	if a.ResidualValue.IsNegative() {
		return &ValidationError{Field: "residual_value", Message: "must not be negative"}
	}
	if a.ResidualValue.GreaterThan(a.InitialCost) {
		return &ValidationError{Field: "residual_value", Message: "must not exceed initial cost"}
	}
	if a.IncomingDepreciation.IsNegative() {
		return &ValidationError{Field: "incoming_depreciation", Message: "must not be negative"}
	}
	if a.IncomingDepreciation.GreaterThan(a.InitialCost.Sub(a.ResidualValue)) {
		return &ValidationError{Field: "incoming_depreciation", Message: "must not exceed depreciable amount"}
	}
	if a.UsefulLifeMonths <= 0 {
		return &ValidationError{Field: "useful_life_months", Message: "must be positive"}
	}
	if !a.Method.Valid() {
		return &ValidationError{Field: "depreciation_method", Message: "unknown method"}
	}
	// The annual rate is a fraction, not a percentage: "0.40" means 40%.
	if r := a.DepreciationRate; r != nil {
		if !r.IsPositive() || !r.LessThan(money.RatioFromInt(1, 1)) {
			return &ValidationError{Field: "depreciation_rate", Message: "annual rate must be a fraction between 0 and 1, e.g. 0.40 for 40%"}
		}
	}
	if a.Method == MethodProduction && (a.TotalProductionCapacity == nil || !a.TotalProductionCapacity.IsPositive()) {
		return &ConfigurationError{Asset: a.InventoryNumber, Method: MethodProduction, Message: "total production capacity required"}
	}
	if a.DepreciationStartDate.Before(a.CommissioningDate) {
		return &ValidationError{Field: "depreciation_start_date", Message: "must not precede commissioning date"}
	}
	if g := a.Group; g.MinUsefulLifeMonths > 0 && a.UsefulLifeMonths < g.MinUsefulLifeMonths {
		return &ValidationError{Field: "useful_life_months", Message: "below the statutory minimum for the group"}
	}
	return nil
}

// =============================================================================
// ACCRUAL
// =============================================================================

// ApplyAccrual records one period's depreciation against the snapshot and
// returns the immutable record. The caller guarantees period uniqueness
// (the store enforces it again on commit).
func (a *Asset) ApplyAccrual(period money.Period, amount money.Money, in AccrualInput, actor string) (*DepreciationRecord, error) {
	if a.Status != StatusActive {
		return nil, &InvalidStateError{Asset: a.InventoryNumber, Status: a.Status, Attempt: "accrue depreciation"}
	}
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Message: "accrual amount must be positive"}
	}
	if amount.GreaterThan(a.RemainingDepreciable()) {
		return nil, &ValidationError{Field: "amount", Message: "accrual would depreciate below residual value"}
	}

	before := a.BookValue()
	a.AccumulatedDepreciation = a.AccumulatedDepreciation.Add(amount)
	if in.UnitsProduced != nil {
		a.UnitsProducedToDate = a.UnitsProducedToDate.Add(*in.UnitsProduced)
	}

	return &DepreciationRecord{
		Asset:           a.InventoryNumber,
		Period:          period,
		Method:          a.Method,
		Amount:          amount,
		BookValueBefore: before,
		BookValueAfter:  a.BookValue(),
		UnitsProduced:   in.UnitsProduced,
		CreatedBy:       actor,
	}, nil
}

// =============================================================================
// REVALUATION
// =============================================================================

// ApplyRevaluation adjusts the snapshot to a fair value using the
// proportional method and returns the populated revaluation record.
func (a *Asset) ApplyRevaluation(r Revaluation) (*Revaluation, error) {
	if a.Status == StatusDisposed {
		return nil, &InvalidStateError{Asset: a.InventoryNumber, Status: a.Status, Attempt: "revalue"}
	}
	if !r.FairValue.IsPositive() {
		return nil, &ValidationError{Field: "fair_value", Message: "must be positive"}
	}

	r.OldInitialCost = a.InitialCost
	r.OldDepreciation = a.AccumulatedDepreciation
	r.OldBookValue = a.BookValue()

	// Revaluation index; with a zero book value there is nothing to scale.
	index := money.RatioFromInt(1, 1)
	if r.OldBookValue.IsPositive() {
		index = money.RatioOf(r.FairValue, r.OldBookValue)
	}

	r.NewInitialCost = a.InitialCost.Mul(index)
	r.NewDepreciation = a.AccumulatedDepreciation.Mul(index)
	r.NewBookValue = r.NewInitialCost.Sub(r.NewDepreciation)
	r.Amount = r.NewBookValue.Sub(r.OldBookValue)
	if r.FairValue.GreaterThan(r.OldBookValue) {
		r.Direction = RevaluationUpward
	} else {
		r.Direction = RevaluationDownward
	}

	a.InitialCost = r.NewInitialCost
	a.AccumulatedDepreciation = r.NewDepreciation
	// Residual value is a contractual floor and is not rescaled.

	return &r, nil
}

// =============================================================================
// IMPROVEMENT
// =============================================================================

// ApplyImprovement capitalizes a value-increasing improvement onto the
// snapshot. Non-capitalized work is a period expense: the snapshot is
// untouched and only a posting results.
func (a *Asset) ApplyImprovement(imp Improvement) error {
	if a.Status == StatusDisposed {
		return &InvalidStateError{Asset: a.InventoryNumber, Status: a.Status, Attempt: "improve"}
	}
	if !imp.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "must be positive"}
	}
	if imp.IncreasesValue {
		a.InitialCost = a.InitialCost.Add(imp.Amount)
	}
	return nil
}

// =============================================================================
// DISPOSAL
// =============================================================================

// ApplyDisposal terminates the asset and returns the disposal with the
// snapshot values captured and the gain/loss derivable by the posting
// generator. Disposed is terminal.
func (a *Asset) ApplyDisposal(d Disposal) (*Disposal, error) {
	if a.Status == StatusDisposed {
		return nil, &InvalidStateError{Asset: a.InventoryNumber, Status: a.Status, Attempt: "dispose"}
	}
	if d.SaleAmount.IsNegative() {
		return nil, &ValidationError{Field: "sale_amount", Message: "must not be negative"}
	}
	if d.Type == DisposalSale && d.SaleAmount.IsZero() {
		return nil, &ValidationError{Field: "sale_amount", Message: "required for a sale"}
	}

	d.BookValueAtDisposal = a.BookValue()
	d.AccumulatedDepreciationAtDisposal = a.AccumulatedDepreciation

	a.Status = StatusDisposed
	date := d.Document.Date
	a.DisposalDate = &date

	return &d, nil
}

// GainLoss is sale amount minus book value at disposal: positive for a
// gain, negative for a loss, zero for a break-even disposal.
func (d *Disposal) GainLoss() money.Money {
	return d.SaleAmount.Sub(d.BookValueAtDisposal)
}

// =============================================================================
// TRANSFER
// =============================================================================

// ApplyTransfer moves custody. No valuation field changes; the audit
// emitter records the custody delta and no ledger posting is produced.
func (a *Asset) ApplyTransfer(t Transfer) error {
	if a.Status == StatusDisposed {
		return &InvalidStateError{Asset: a.InventoryNumber, Status: a.Status, Attempt: "transfer"}
	}
	if t.ToLocation == "" && t.ToPerson == "" {
		return &ValidationError{Field: "to_location", Message: "transfer needs a destination location or person"}
	}
	if t.ToLocation != "" {
		a.Location = t.ToLocation
	}
	if t.ToPerson != "" {
		a.ResponsiblePerson = t.ToPerson
	}
	return nil
}

// =============================================================================
// CONSERVATION
// =============================================================================

// Conserve pauses accrual without resetting state.
func (a *Asset) Conserve() error {
	if a.Status != StatusActive {
		return &InvalidStateError{Asset: a.InventoryNumber, Status: a.Status, Attempt: "conserve"}
	}
	a.Status = StatusConserved
	return nil
}

// Reactivate returns a conserved asset to service.
func (a *Asset) Reactivate() error {
	if a.Status != StatusConserved {
		return &InvalidStateError{Asset: a.InventoryNumber, Status: a.Status, Attempt: "reactivate"}
	}
	a.Status = StatusActive
	return nil
}

// Touch advances the optimistic version before a commit attempt.
// Stores compare-and-swap on the previous value.
func (a *Asset) Touch() {
	a.Version++
}
