/*
audit.go - Change history, separate from the ledger

PURPOSE:

	Every business event leaves a change record: who did what to which
	asset, with the per-field before/after values. The audit stream is
	observational - a failed audit write never rolls back the event that
	produced it; processors log the failure and move on.

SEE ALSO:
  - processor.go: emits a record after each committed event
  - store/sqlite/sqlite.go: durable audit log
*/
package assets

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// ACTIONS
// =============================================================================

type AuditAction string

const (
	AuditAssetCreated        AuditAction = "asset_created"
	AuditDepreciationAccrued AuditAction = "depreciation_accrued"
	AuditAssetRevalued       AuditAction = "asset_revalued"
	AuditAssetImproved       AuditAction = "asset_improved"
	AuditAssetTransferred    AuditAction = "asset_transferred"
	AuditAssetDisposed       AuditAction = "asset_disposed"
	AuditAssetConserved      AuditAction = "asset_conserved"
	AuditAssetReactivated    AuditAction = "asset_reactivated"
	AuditAccrualRun          AuditAction = "accrual_run"
)

// =============================================================================
// CHANGE RECORDS
// =============================================================================

// FieldDiff is one before/after pair, stringly typed so the audit trail
// survives schema evolution.
type FieldDiff struct {
	Field string
	Old   string
	New   string
}

// ChangeRecord is one audited event.
type ChangeRecord struct {
	ID        string
	Timestamp time.Time
	Actor     string
	Action    AuditAction
	Asset     InventoryNumber
	Fields    []FieldDiff
	Note      string
}

// Auditor records change history. Append-only, like the ledger streams.
type Auditor interface {
	RecordChange(ctx context.Context, rec ChangeRecord) error
	Changes(ctx context.Context, asset InventoryNumber) ([]ChangeRecord, error)
}

// NopAuditor discards everything. Useful in tests that do not assert on
// the audit trail.
type NopAuditor struct{}

func (NopAuditor) RecordChange(context.Context, ChangeRecord) error { return nil }
func (NopAuditor) Changes(context.Context, InventoryNumber) ([]ChangeRecord, error) {
	return nil, nil
}

// =============================================================================
// DIFFING
// =============================================================================

// DiffAssets computes the field-level delta between two snapshots of the
// same asset. Unchanged fields are omitted.
func DiffAssets(before, after *Asset) []FieldDiff {
	var diffs []FieldDiff
	add := func(field, oldV, newV string) {
		if oldV != newV {
			diffs = append(diffs, FieldDiff{Field: field, Old: oldV, New: newV})
		}
	}

	add("status", string(before.Status), string(after.Status))
	add("initial_cost", before.InitialCost.String(), after.InitialCost.String())
	add("residual_value", before.ResidualValue.String(), after.ResidualValue.String())
	add("accumulated_depreciation", before.AccumulatedDepreciation.String(), after.AccumulatedDepreciation.String())
	add("location", before.Location, after.Location)
	add("responsible_person", before.ResponsiblePerson, after.ResponsiblePerson)
	add("name", before.Name, after.Name)

	switch {
	case before.DisposalDate == nil && after.DisposalDate != nil:
		add("disposal_date", "", after.DisposalDate.Format("2006-01-02"))
	case before.DisposalDate != nil && after.DisposalDate != nil:
		add("disposal_date", before.DisposalDate.Format("2006-01-02"), after.DisposalDate.Format("2006-01-02"))
	}

	add("units_produced_to_date",
		fmt.Sprintf("%v", before.UnitsProducedToDate.Decimal()),
		fmt.Sprintf("%v", after.UnitsProducedToDate.Decimal()))

	return diffs
}
