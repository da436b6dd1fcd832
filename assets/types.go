/*
Package assets provides the fixed-asset valuation and depreciation engine.

PURPOSE:

	This package contains the domain types and algorithms for keeping asset
	valuations correct over their whole lifecycle: receipt, monthly
	depreciation under five accrual methods, revaluation, improvement,
	transfer and disposal - and for deriving the double-entry postings each
	of those events requires.

KEY CONCEPTS IN THIS FILE (types.go):
  - Asset: the authoritative valuation snapshot, one per inventory object
  - AssetGroup: reference data carrying the ledger accounts per group
  - DepreciationRecord: one immutable accrual per (asset, period)
  - Event payloads: Receipt, Disposal, Revaluation, Improvement, Transfer
  - AccountEntry: an append-only double-entry posting

DESIGN PRINCIPLES:
 1. Immutability: records and entries are never edited, only reversed
 2. Precision: money.Money everywhere, no floating point
 3. Single writer: only processors and the accrual run mutate snapshots
 4. Explicit periods: every accrual names its (year, month) target

SEE ALSO:
  - methods.go: the five depreciation strategies
  - valuation.go: snapshot mutations and status transitions
  - posting.go: event -> AccountEntry mapping
*/
package assets

import (
	"time"

	"github.com/warp/asset-ledger/money"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// InventoryNumber uniquely identifies an asset. Immutable once issued.
type InventoryNumber string

type GroupCode string
type EntryID string
type EventID string

// =============================================================================
// ASSET GROUP - Reference data with ledger accounts
// =============================================================================

// AssetGroup determines the default ledger accounts for its assets:
// the asset account (10x range) and the accumulated depreciation
// account (13x range).
type AssetGroup struct {
	Code                GroupCode
	Name                string
	AccountNumber       string // asset account, 10x
	DepreciationAccount string // accumulated depreciation account, 13x
	MinUsefulLifeMonths int    // statutory minimum, 0 = unconstrained
}

// =============================================================================
// DEPRECIATION METHODS
// =============================================================================

type DepreciationMethod string

const (
	MethodStraightLine        DepreciationMethod = "straight_line"
	MethodReducingBalance     DepreciationMethod = "reducing_balance"
	MethodAcceleratedReducing DepreciationMethod = "accelerated_reducing"
	MethodCumulative          DepreciationMethod = "cumulative"
	MethodProduction          DepreciationMethod = "production"
)

func (m DepreciationMethod) Valid() bool {
	switch m {
	case MethodStraightLine, MethodReducingBalance, MethodAcceleratedReducing,
		MethodCumulative, MethodProduction:
		return true
	}
	return false
}

// =============================================================================
// ASSET STATUS - active <-> conserved -> disposed
// =============================================================================

type Status string

const (
	// StatusActive: in service, depreciation accrues.
	StatusActive Status = "active"

	// StatusConserved: mothballed. Accrual pauses, state is preserved,
	// the asset can return to active.
	StatusConserved Status = "conserved"

	// StatusDisposed: terminal. Valuation fields never change again.
	StatusDisposed Status = "disposed"
)

// =============================================================================
// ASSET - Valuation snapshot
// =============================================================================

// Asset is the single source of truth for "what is this asset worth now".
// Only the event processors and the accrual run write to it.
type Asset struct {
	InventoryNumber InventoryNumber
	Name            string
	Group           AssetGroup
	Status          Status

	// Valuation
	InitialCost             money.Money
	ResidualValue           money.Money
	IncomingDepreciation    money.Money // wear accrued before this system took custody
	AccumulatedDepreciation money.Money

	// Depreciation configuration
	Method                  DepreciationMethod
	UsefulLifeMonths        int
	DepreciationRate        *money.Ratio // annual rate; nil = derive from life
	TotalProductionCapacity *money.Ratio // production method only
	UnitsProducedToDate     money.Ratio  // production method running total

	// Lifecycle
	CommissioningDate     time.Time
	DepreciationStartDate time.Time
	DisposalDate          *time.Time

	// Custody
	Location          string
	ResponsiblePerson string

	// Optimistic concurrency: incremented on every committed mutation.
	Version int64
}

// BookValue is initial cost less accumulated depreciation, floor-clamped
// at the residual value.
func (a *Asset) BookValue() money.Money {
	bv := a.InitialCost.Sub(a.AccumulatedDepreciation)
	return bv.Max(a.ResidualValue)
}

// DepreciableBase is the total amount that may ever be depreciated.
func (a *Asset) DepreciableBase() money.Money {
	return a.InitialCost.Sub(a.ResidualValue).Sub(a.IncomingDepreciation)
}

// RemainingDepreciable is how much accrual headroom is left before book
// value reaches the residual floor.
func (a *Asset) RemainingDepreciable() money.Money {
	remaining := a.InitialCost.Sub(a.ResidualValue).Sub(a.AccumulatedDepreciation)
	return remaining.Max(money.Zero)
}

// FullyDepreciated reports whether book value has reached the residual floor.
func (a *Asset) FullyDepreciated() bool {
	return a.RemainingDepreciable().IsZero()
}

// WearRatio is accumulated depreciation over initial cost, as a Ratio.
// Used for wear reporting (e.g., flagging assets worn past 90%).
func (a *Asset) WearRatio() money.Ratio {
	if !a.InitialCost.IsPositive() {
		return money.RatioFromInt(0, 1)
	}
	return money.RatioOf(a.AccumulatedDepreciation, a.InitialCost)
}

// =============================================================================
// DEPRECIATION RECORD - One accrual per (asset, period), immutable
// =============================================================================

type DepreciationRecord struct {
	Asset           InventoryNumber
	Period          money.Period
	Method          DepreciationMethod
	Amount          money.Money
	BookValueBefore money.Money
	BookValueAfter  money.Money
	UnitsProduced   *money.Ratio // production method only
	CreatedBy       string
	CreatedAt       time.Time
}

// =============================================================================
// BUSINESS EVENT PAYLOADS
// =============================================================================

// Document carries the paper trail shared by every business event.
type Document struct {
	Number string
	Date   time.Time
}

type ReceiptType string

const (
	ReceiptPurchase     ReceiptType = "purchase"
	ReceiptFree         ReceiptType = "free_receipt"
	ReceiptContribution ReceiptType = "contribution"
	ReceiptExchange     ReceiptType = "exchange"
	ReceiptSelfMade     ReceiptType = "self_made"
)

type Receipt struct {
	ID        EventID
	Asset     InventoryNumber
	Type      ReceiptType
	Document  Document
	Supplier  string
	Amount    money.Money
	CreatedBy string
	CreatedAt time.Time
}

type DisposalType string

const (
	DisposalSale         DisposalType = "sale"
	DisposalLiquidation  DisposalType = "liquidation"
	DisposalFreeTransfer DisposalType = "free_transfer"
	DisposalShortage     DisposalType = "shortage"
)

type Disposal struct {
	ID         EventID
	Asset      InventoryNumber
	Type       DisposalType
	Document   Document
	Reason     string
	SaleAmount money.Money

	// Captured from the snapshot at posting time.
	BookValueAtDisposal               money.Money
	AccumulatedDepreciationAtDisposal money.Money

	CreatedBy string
	CreatedAt time.Time
}

type RevaluationDirection string

const (
	RevaluationUpward   RevaluationDirection = "upward"
	RevaluationDownward RevaluationDirection = "downward"
)

type Revaluation struct {
	ID        EventID
	Asset     InventoryNumber
	Document  Document
	FairValue money.Money

	// Derived at posting time.
	Direction       RevaluationDirection
	OldInitialCost  money.Money
	OldDepreciation money.Money
	OldBookValue    money.Money
	NewInitialCost  money.Money
	NewDepreciation money.Money
	NewBookValue    money.Money
	Amount          money.Money // new book value - old book value

	CreatedBy string
	CreatedAt time.Time
}

type ImprovementType string

const (
	ImprovementCapital        ImprovementType = "capital"
	ImprovementCurrent        ImprovementType = "current"
	ImprovementModernization  ImprovementType = "modernization"
	ImprovementReconstruction ImprovementType = "reconstruction"
)

type Improvement struct {
	ID             EventID
	Asset          InventoryNumber
	Type           ImprovementType
	Document       Document
	Description    string
	Amount         money.Money
	IncreasesValue bool
	ExpenseAccount string // 23/91/92/93, used when not capitalized
	Contractor     string
	CreatedBy      string
	CreatedAt      time.Time
}

type Transfer struct {
	ID           EventID
	Asset        InventoryNumber
	Document     Document
	FromLocation string
	ToLocation   string
	FromPerson   string
	ToPerson     string
	CreatedBy    string
	CreatedAt    time.Time
}

// =============================================================================
// ACCOUNT ENTRY - Double-entry posting, append-only
// =============================================================================

type EntryType string

const (
	EntryReceipt      EntryType = "receipt"
	EntryDepreciation EntryType = "depreciation"
	EntryDisposal     EntryType = "disposal"
	EntryRevaluation  EntryType = "revaluation"
	EntryImprovement  EntryType = "improvement"
	EntryRepair       EntryType = "repair"
	EntryReversal     EntryType = "reversal"
)

// AccountEntry is one side-balanced posting. Entries are never updated or
// deleted; a mistake is corrected by a reversing entry set.
type AccountEntry struct {
	ID            EntryID
	Type          EntryType
	Date          time.Time
	DebitAccount  string
	CreditAccount string
	Amount        money.Money // strictly positive
	Description   string
	Asset         InventoryNumber
	Document      Document
	IsPosted      bool
	CreatedBy     string
	CreatedAt     time.Time
}

// Reversed returns the reversing entry for this one: accounts swapped,
// same amount, marked as a reversal referencing the same asset.
func (e AccountEntry) Reversed(date time.Time, actor string) AccountEntry {
	return AccountEntry{
		Type:          EntryReversal,
		Date:          date,
		DebitAccount:  e.CreditAccount,
		CreditAccount: e.DebitAccount,
		Amount:        e.Amount,
		Description:   "Reversal of: " + e.Description,
		Asset:         e.Asset,
		Document:      e.Document,
		IsPosted:      true,
		CreatedBy:     actor,
	}
}
