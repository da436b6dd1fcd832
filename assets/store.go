/*
store.go - Persistence interfaces for snapshots, records and postings

PURPOSE:

	Defines the interface between the valuation engine and the database.
	Snapshots are updated under optimistic concurrency; depreciation
	records and account entries are APPEND-ONLY.

KEY INTERFACES:

	Store:   asset/group persistence plus the append-only record and
	         entry streams
	TxStore: atomic multi-table writes (one event = snapshot + records +
	         entries in a single transaction)

APPEND-ONLY CONTRACT:

	DepreciationRecord and AccountEntry have no Update or Delete. Ever.
	A wrong posting is corrected with a reversing entry set.

OPTIMISTIC CONCURRENCY:

	UpdateAsset carries the version the caller read. If the stored
	version differs, the write fails with ErrConflict and the caller
	re-reads and retries.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite
  - assets/store/memory.go: in-memory for tests

SEE ALSO:
  - processor.go: the only writer of snapshots
  - reports.go: read projections built on these queries
*/
package assets

import (
	"context"
	"time"

	"github.com/warp/asset-ledger/money"
)

// =============================================================================
// STORE - Snapshots, reference data, append-only streams
// =============================================================================

type Store interface {
	// ----- Asset groups (reference data) -----

	SaveGroup(ctx context.Context, g AssetGroup) error
	GetGroup(ctx context.Context, code GroupCode) (AssetGroup, error)
	ListGroups(ctx context.Context) ([]AssetGroup, error)

	// ----- Asset snapshots -----

	// CreateAsset persists a new snapshot. The inventory number must be
	// unused; a duplicate is a validation error.
	CreateAsset(ctx context.Context, a *Asset) error

	// UpdateAsset commits a mutated snapshot if and only if the stored
	// version still equals expectedVersion. Returns ErrConflict otherwise.
	UpdateAsset(ctx context.Context, a *Asset, expectedVersion int64) error

	GetAsset(ctx context.Context, n InventoryNumber) (*Asset, error)
	ListAssets(ctx context.Context, f AssetFilter) ([]*Asset, error)

	// ----- Depreciation records (append-only, unique per asset+period) -----

	// AppendRecord persists one accrual. Returns ErrPeriodAccrued if a
	// record for the (asset, period) pair already exists.
	AppendRecord(ctx context.Context, rec DepreciationRecord) error

	RecordExists(ctx context.Context, n InventoryNumber, p money.Period) (bool, error)
	RecordsByAsset(ctx context.Context, n InventoryNumber) ([]DepreciationRecord, error)
	RecordsByPeriod(ctx context.Context, p money.Period) ([]DepreciationRecord, error)

	// ----- Account entries (append-only) -----

	// AppendEntries persists a posting set atomically.
	AppendEntries(ctx context.Context, entries []AccountEntry) error

	Entries(ctx context.Context, f EntryFilter) ([]AccountEntry, error)

	// ----- Business event documents (append-only) -----
	//
	// One record per event, persisted in the same transaction as the
	// snapshot update and the postings it caused. The event records keep
	// the values captured at posting time (e.g. book value at disposal)
	// after the snapshot has moved on.

	AppendReceipt(ctx context.Context, r Receipt) error
	AppendRevaluation(ctx context.Context, r Revaluation) error
	AppendImprovement(ctx context.Context, imp Improvement) error
	AppendTransfer(ctx context.Context, t Transfer) error
	AppendDisposal(ctx context.Context, d Disposal) error

	// EventHistory returns the full document trail of one asset, each
	// stream oldest first.
	EventHistory(ctx context.Context, n InventoryNumber) (History, error)
}

// History is the document trail of one asset: every business event that
// ever touched it, grouped by kind.
type History struct {
	Receipts     []Receipt
	Revaluations []Revaluation
	Improvements []Improvement
	Transfers    []Transfer
	Disposals    []Disposal
}

// TxStore wraps Store with transaction support. Every event processor
// commits through WithTx so a snapshot update and its postings land
// together or not at all.
type TxStore interface {
	Store

	// WithTx executes fn within one transaction. An error from fn rolls
	// everything back.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// FILTERS
// =============================================================================

// AssetFilter narrows ListAssets. Zero values mean "no constraint".
type AssetFilter struct {
	Group    GroupCode
	Status   Status
	Method   DepreciationMethod
	Location string
}

// EntryFilter narrows the journal. Zero values mean "no constraint".
type EntryFilter struct {
	Asset   InventoryNumber
	Type    EntryType
	Account string // matches debit OR credit side
	From    time.Time
	To      time.Time
}
