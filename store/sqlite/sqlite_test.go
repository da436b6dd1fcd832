package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/asset-ledger/assets"
	"github.com/warp/asset-ledger/money"
	"github.com/warp/asset-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.SaveGroup(context.Background(), assets.AssetGroup{
		Code:                "04",
		Name:                "Machines and equipment",
		AccountNumber:       "104",
		DepreciationAccount: "131",
	}))
	return store
}

func fixtureAsset(n assets.InventoryNumber) *assets.Asset {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &assets.Asset{
		InventoryNumber:       n,
		Name:                  "Lathe",
		Group:                 assets.AssetGroup{Code: "04"},
		Status:                assets.StatusActive,
		InitialCost:           money.MustParse("120000.00"),
		ResidualValue:         money.MustParse("0.00"),
		IncomingDepreciation:  money.MustParse("0.00"),
		Method:                assets.MethodStraightLine,
		UsefulLifeMonths:      120,
		UnitsProducedToDate:   money.RatioFromInt(0, 1),
		CommissioningDate:     start,
		DepreciationStartDate: start,
		Location:              "Shop 1",
		Version:               1,
	}
}

// =============================================================================
// ASSETS - Round trip and optimistic locking
// =============================================================================

func TestSQLiteStore_AssetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rate := money.RatioFromFloat(0.4)
	a := fixtureAsset("INV-0001")
	a.Method = assets.MethodReducingBalance
	a.DepreciationRate = &rate
	require.NoError(t, store.CreateAsset(ctx, a))

	got, err := store.GetAsset(ctx, "INV-0001")
	require.NoError(t, err)
	assert.Equal(t, a.Name, got.Name)
	assert.Equal(t, "120000.00", got.InitialCost.String())
	assert.Equal(t, assets.MethodReducingBalance, got.Method)
	require.NotNil(t, got.DepreciationRate)
	assert.Equal(t, "0.4", got.DepreciationRate.String())
	assert.Equal(t, "104", got.Group.AccountNumber, "group is rehydrated with its accounts")
	assert.True(t, got.CommissioningDate.Equal(a.CommissioningDate))
}

func TestSQLiteStore_GetAsset_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetAsset(context.Background(), "NOPE")
	assert.ErrorIs(t, err, assets.ErrAssetNotFound)
}

func TestSQLiteStore_CreateAsset_DuplicateRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateAsset(ctx, fixtureAsset("INV-0001")))
	err := store.CreateAsset(ctx, fixtureAsset("INV-0001"))
	assert.ErrorIs(t, err, assets.ErrValidation)
}

func TestSQLiteStore_UpdateAsset_VersionCAS(t *testing.T) {
	// GIVEN: A stored asset at version 1
	// WHEN: Committing with the right version, then replaying the old one
	// THEN: The first write lands, the replay gets ErrConflict with the
	//       stored version

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateAsset(ctx, fixtureAsset("INV-0001")))

	a, err := store.GetAsset(ctx, "INV-0001")
	require.NoError(t, err)
	a.Location = "Shop 2"
	expected := a.Version
	a.Version++
	require.NoError(t, store.UpdateAsset(ctx, a, expected))

	// Replay against the consumed version.
	stale := fixtureAsset("INV-0001")
	stale.Version = 2
	err = store.UpdateAsset(ctx, stale, 1)
	require.ErrorIs(t, err, assets.ErrConflict)

	var conflict *assets.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(1), conflict.Expected)
	assert.Equal(t, int64(2), conflict.Actual)
}

func TestSQLiteStore_UpdateAsset_MissingAssetNotConflict(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateAsset(context.Background(), fixtureAsset("GHOST"), 1)
	assert.ErrorIs(t, err, assets.ErrAssetNotFound)
}

func TestSQLiteStore_ListAssets_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := fixtureAsset("INV-0001")
	require.NoError(t, store.CreateAsset(ctx, a))

	b := fixtureAsset("INV-0002")
	b.Status = assets.StatusConserved
	b.Location = "Warehouse"
	require.NoError(t, store.CreateAsset(ctx, b))

	active, err := store.ListAssets(ctx, assets.AssetFilter{Status: assets.StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, assets.InventoryNumber("INV-0001"), active[0].InventoryNumber)

	warehouse, err := store.ListAssets(ctx, assets.AssetFilter{Location: "Warehouse"})
	require.NoError(t, err)
	require.Len(t, warehouse, 1)
	assert.Equal(t, assets.InventoryNumber("INV-0002"), warehouse[0].InventoryNumber)

	all, err := store.ListAssets(ctx, assets.AssetFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// DEPRECIATION RECORDS - Uniqueness per (asset, period)
// =============================================================================

func TestSQLiteStore_AppendRecord_UniquePerPeriod(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateAsset(ctx, fixtureAsset("INV-0001")))

	rec := assets.DepreciationRecord{
		Asset:           "INV-0001",
		Period:          money.NewPeriod(2025, time.June),
		Method:          assets.MethodStraightLine,
		Amount:          money.MustParse("1000.00"),
		BookValueBefore: money.MustParse("120000.00"),
		BookValueAfter:  money.MustParse("119000.00"),
		CreatedBy:       "system",
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, store.AppendRecord(ctx, rec))

	err := store.AppendRecord(ctx, rec)
	require.ErrorIs(t, err, assets.ErrPeriodAccrued)

	var dup *assets.PeriodAccruedError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, assets.InventoryNumber("INV-0001"), dup.Asset)

	exists, err := store.RecordExists(ctx, "INV-0001", money.NewPeriod(2025, time.June))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.RecordExists(ctx, "INV-0001", money.NewPeriod(2025, time.July))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLiteStore_RecordsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateAsset(ctx, fixtureAsset("INV-0001")))

	units := money.RatioFromInt(1200, 1)
	rec := assets.DepreciationRecord{
		Asset:           "INV-0001",
		Period:          money.NewPeriod(2025, time.June),
		Method:          assets.MethodProduction,
		Amount:          money.MustParse("2400.00"),
		BookValueBefore: money.MustParse("100000.00"),
		BookValueAfter:  money.MustParse("97600.00"),
		UnitsProduced:   &units,
		CreatedBy:       "system",
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, store.AppendRecord(ctx, rec))

	byAsset, err := store.RecordsByAsset(ctx, "INV-0001")
	require.NoError(t, err)
	require.Len(t, byAsset, 1)
	assert.Equal(t, "2400.00", byAsset[0].Amount.String())
	require.NotNil(t, byAsset[0].UnitsProduced)
	assert.Equal(t, "1200", byAsset[0].UnitsProduced.String())

	byPeriod, err := store.RecordsByPeriod(ctx, money.NewPeriod(2025, time.June))
	require.NoError(t, err)
	assert.Len(t, byPeriod, 1)
}

// =============================================================================
// ACCOUNT ENTRIES
// =============================================================================

func TestSQLiteStore_EntriesFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateAsset(ctx, fixtureAsset("INV-0001")))

	june := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	july := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	entries := []assets.AccountEntry{
		{
			ID: "e1", Type: assets.EntryReceipt, Date: june,
			DebitAccount: "104", CreditAccount: "152",
			Amount: money.MustParse("120000.00"),
			Asset:  "INV-0001", IsPosted: true, CreatedBy: "accountant", CreatedAt: june,
		},
		{
			ID: "e2", Type: assets.EntryDepreciation, Date: july,
			DebitAccount: "92", CreditAccount: "131",
			Amount: money.MustParse("1000.00"),
			Asset:  "INV-0001", IsPosted: true, CreatedBy: "system", CreatedAt: july,
		},
	}
	require.NoError(t, store.AppendEntries(ctx, entries))

	byType, err := store.Entries(ctx, assets.EntryFilter{Type: assets.EntryDepreciation})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "1000.00", byType[0].Amount.String())

	// Account filter matches debit or credit side.
	byAccount, err := store.Entries(ctx, assets.EntryFilter{Account: "131"})
	require.NoError(t, err)
	assert.Len(t, byAccount, 1)

	byRange, err := store.Entries(ctx, assets.EntryFilter{From: july})
	require.NoError(t, err)
	assert.Len(t, byRange, 1)

	all, err := store.Entries(ctx, assets.EntryFilter{Asset: "INV-0001"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// BUSINESS EVENT DOCUMENTS
// =============================================================================

func TestSQLiteStore_EventHistoryRoundTrip(t *testing.T) {
	// GIVEN: One document per event kind appended for the same asset
	// WHEN: Loading the event history
	// THEN: Every document comes back with its captured figures intact

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateAsset(ctx, fixtureAsset("INV-0001")))

	now := time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC)
	doc := assets.Document{Number: "ACT-17", Date: now}

	require.NoError(t, store.AppendReceipt(ctx, assets.Receipt{
		ID: "ev-1", Asset: "INV-0001", Type: assets.ReceiptPurchase,
		Document: doc, Supplier: "Verstat LLC",
		Amount:    money.MustParse("120000.00"),
		CreatedBy: "accountant", CreatedAt: now,
	}))
	require.NoError(t, store.AppendRevaluation(ctx, assets.Revaluation{
		ID: "ev-2", Asset: "INV-0001", Document: doc,
		FairValue: money.MustParse("75000.00"), Direction: assets.RevaluationUpward,
		OldInitialCost: money.MustParse("100000.00"), OldDepreciation: money.MustParse("40000.00"),
		OldBookValue:   money.MustParse("60000.00"),
		NewInitialCost: money.MustParse("125000.00"), NewDepreciation: money.MustParse("50000.00"),
		NewBookValue: money.MustParse("75000.00"), Amount: money.MustParse("15000.00"),
		CreatedBy: "appraiser", CreatedAt: now,
	}))
	require.NoError(t, store.AppendImprovement(ctx, assets.Improvement{
		ID: "ev-3", Asset: "INV-0001", Type: assets.ImprovementModernization,
		Document: doc, Amount: money.MustParse("15000.00"), IncreasesValue: true,
		Contractor: "Remont LLC", CreatedBy: "accountant", CreatedAt: now,
	}))
	require.NoError(t, store.AppendTransfer(ctx, assets.Transfer{
		ID: "ev-4", Asset: "INV-0001", Document: doc,
		FromLocation: "Shop 1", ToLocation: "Shop 2",
		CreatedBy: "accountant", CreatedAt: now,
	}))
	require.NoError(t, store.AppendDisposal(ctx, assets.Disposal{
		ID: "ev-5", Asset: "INV-0001", Type: assets.DisposalSale,
		Document: doc, SaleAmount: money.MustParse("80000.00"),
		BookValueAtDisposal:               money.MustParse("75000.00"),
		AccumulatedDepreciationAtDisposal: money.MustParse("50000.00"),
		CreatedBy:                         "accountant", CreatedAt: now,
	}))

	// A second asset's documents must not leak in.
	require.NoError(t, store.CreateAsset(ctx, fixtureAsset("INV-0002")))
	require.NoError(t, store.AppendReceipt(ctx, assets.Receipt{
		ID: "ev-6", Asset: "INV-0002", Type: assets.ReceiptPurchase,
		Document: doc, Amount: money.MustParse("50000.00"),
		CreatedBy: "accountant", CreatedAt: now,
	}))

	h, err := store.EventHistory(ctx, "INV-0001")
	require.NoError(t, err)

	require.Len(t, h.Receipts, 1)
	assert.Equal(t, "Verstat LLC", h.Receipts[0].Supplier)
	assert.Equal(t, "120000.00", h.Receipts[0].Amount.String())
	assert.Equal(t, "ACT-17", h.Receipts[0].Document.Number)

	require.Len(t, h.Revaluations, 1)
	assert.Equal(t, assets.RevaluationUpward, h.Revaluations[0].Direction)
	assert.Equal(t, "60000.00", h.Revaluations[0].OldBookValue.String())
	assert.Equal(t, "75000.00", h.Revaluations[0].NewBookValue.String())
	assert.Equal(t, "15000.00", h.Revaluations[0].Amount.String())

	require.Len(t, h.Improvements, 1)
	assert.True(t, h.Improvements[0].IncreasesValue)
	assert.Equal(t, "Remont LLC", h.Improvements[0].Contractor)

	require.Len(t, h.Transfers, 1)
	assert.Equal(t, "Shop 1", h.Transfers[0].FromLocation)
	assert.Equal(t, "Shop 2", h.Transfers[0].ToLocation)

	require.Len(t, h.Disposals, 1)
	assert.Equal(t, "75000.00", h.Disposals[0].BookValueAtDisposal.String())
	assert.Equal(t, "50000.00", h.Disposals[0].AccumulatedDepreciationAtDisposal.String())
	assert.Equal(t, "accountant", h.Disposals[0].CreatedBy)
}

func TestSQLiteStore_EventDocumentRollsBackWithTx(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateAsset(ctx, fixtureAsset("INV-0001")))

	err := store.WithTx(ctx, func(s assets.Store) error {
		if err := s.AppendDisposal(ctx, assets.Disposal{
			ID: "ev-1", Asset: "INV-0001", Type: assets.DisposalLiquidation,
			SaleAmount:          money.Zero,
			BookValueAtDisposal: money.MustParse("120000.00"),
			CreatedAt:           time.Now().UTC(),
		}); err != nil {
			return err
		}
		// Stale version forces the rollback.
		stale := fixtureAsset("INV-0001")
		return s.UpdateAsset(ctx, stale, 99)
	})
	require.ErrorIs(t, err, assets.ErrConflict)

	h, err := store.EventHistory(ctx, "INV-0001")
	require.NoError(t, err)
	assert.Empty(t, h.Disposals, "rolled-back document must not survive")
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestSQLiteStore_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A transaction that appends a record and then fails
	// WHEN: The transaction returns the error
	// THEN: Nothing it wrote survives

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateAsset(ctx, fixtureAsset("INV-0001")))

	rec := assets.DepreciationRecord{
		Asset:           "INV-0001",
		Period:          money.NewPeriod(2025, time.June),
		Method:          assets.MethodStraightLine,
		Amount:          money.MustParse("1000.00"),
		BookValueBefore: money.MustParse("120000.00"),
		BookValueAfter:  money.MustParse("119000.00"),
		CreatedAt:       time.Now().UTC(),
	}

	err := store.WithTx(ctx, func(s assets.Store) error {
		if err := s.AppendRecord(ctx, rec); err != nil {
			return err
		}
		// Stale version forces the rollback.
		stale := fixtureAsset("INV-0001")
		return s.UpdateAsset(ctx, stale, 99)
	})
	require.ErrorIs(t, err, assets.ErrConflict)

	exists, err := store.RecordExists(ctx, "INV-0001", money.NewPeriod(2025, time.June))
	require.NoError(t, err)
	assert.False(t, exists, "rolled-back record must not survive")
}

func TestSQLiteStore_WithTx_CommitsTogether(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateAsset(ctx, fixtureAsset("INV-0001")))

	rec := assets.DepreciationRecord{
		Asset:           "INV-0001",
		Period:          money.NewPeriod(2025, time.June),
		Method:          assets.MethodStraightLine,
		Amount:          money.MustParse("1000.00"),
		BookValueBefore: money.MustParse("120000.00"),
		BookValueAfter:  money.MustParse("119000.00"),
		CreatedAt:       time.Now().UTC(),
	}

	err := store.WithTx(ctx, func(s assets.Store) error {
		if err := s.AppendRecord(ctx, rec); err != nil {
			return err
		}
		a, err := s.GetAsset(ctx, "INV-0001")
		if err != nil {
			return err
		}
		a.AccumulatedDepreciation = money.MustParse("1000.00")
		expected := a.Version
		a.Version++
		return s.UpdateAsset(ctx, a, expected)
	})
	require.NoError(t, err)

	got, err := store.GetAsset(ctx, "INV-0001")
	require.NoError(t, err)
	assert.Equal(t, "1000.00", got.AccumulatedDepreciation.String())
	assert.Equal(t, int64(2), got.Version)

	exists, err := store.RecordExists(ctx, "INV-0001", money.NewPeriod(2025, time.June))
	require.NoError(t, err)
	assert.True(t, exists)
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func TestSQLiteStore_AuditRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := assets.ChangeRecord{
		ID:        "c1",
		Timestamp: time.Now().UTC(),
		Actor:     "accountant",
		Action:    assets.AuditAssetTransferred,
		Asset:     "INV-0001",
		Fields: []assets.FieldDiff{
			{Field: "location", Old: "Shop 1", New: "Shop 2"},
		},
		Note: "to Shop 2 / Kovalenko",
	}
	require.NoError(t, store.RecordChange(ctx, rec))

	changes, err := store.Changes(ctx, "INV-0001")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, assets.AuditAssetTransferred, changes[0].Action)
	require.Len(t, changes[0].Fields, 1)
	assert.Equal(t, "Shop 2", changes[0].Fields[0].New)
}
