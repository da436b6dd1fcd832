// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/asset-ledger/assets"
	"github.com/warp/asset-ledger/money"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type recordKey struct {
	Asset  assets.InventoryNumber
	Period money.Period
}

type Memory struct {
	mu      sync.RWMutex
	groups  map[assets.GroupCode]assets.AssetGroup
	assets  map[assets.InventoryNumber]*assets.Asset
	records []assets.DepreciationRecord
	byKey   map[recordKey]bool
	entries []assets.AccountEntry
	events  assets.History
	changes []assets.ChangeRecord
}

func NewMemory() *Memory {
	return &Memory{
		groups: make(map[assets.GroupCode]assets.AssetGroup),
		assets: make(map[assets.InventoryNumber]*assets.Asset),
		byKey:  make(map[recordKey]bool),
	}
}

// cloneAsset keeps callers from aliasing stored snapshots.
func cloneAsset(a *assets.Asset) *assets.Asset {
	c := *a
	if a.DepreciationRate != nil {
		r := *a.DepreciationRate
		c.DepreciationRate = &r
	}
	if a.TotalProductionCapacity != nil {
		r := *a.TotalProductionCapacity
		c.TotalProductionCapacity = &r
	}
	if a.DisposalDate != nil {
		d := *a.DisposalDate
		c.DisposalDate = &d
	}
	return &c
}

// ----- Groups -----

func (m *Memory) SaveGroup(_ context.Context, g assets.AssetGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[g.Code] = g
	return nil
}

func (m *Memory) GetGroup(_ context.Context, code assets.GroupCode) (assets.AssetGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getGroupLocked(code)
}

func (m *Memory) getGroupLocked(code assets.GroupCode) (assets.AssetGroup, error) {
	g, ok := m.groups[code]
	if !ok {
		return assets.AssetGroup{}, fmt.Errorf("%w: %s", assets.ErrGroupNotFound, code)
	}
	return g, nil
}

func (m *Memory) ListGroups(_ context.Context) ([]assets.AssetGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]assets.AssetGroup, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g)
	}
	return out, nil
}

// ----- Assets -----

func (m *Memory) CreateAsset(_ context.Context, a *assets.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createAssetLocked(a)
}

func (m *Memory) createAssetLocked(a *assets.Asset) error {
	if _, exists := m.assets[a.InventoryNumber]; exists {
		return &assets.ValidationError{Field: "inventory_number", Message: "already in use"}
	}
	m.assets[a.InventoryNumber] = cloneAsset(a)
	return nil
}

func (m *Memory) UpdateAsset(_ context.Context, a *assets.Asset, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateAssetLocked(a, expectedVersion)
}

func (m *Memory) updateAssetLocked(a *assets.Asset, expectedVersion int64) error {
	stored, ok := m.assets[a.InventoryNumber]
	if !ok {
		return fmt.Errorf("%w: %s", assets.ErrAssetNotFound, a.InventoryNumber)
	}
	if stored.Version != expectedVersion {
		return &assets.ConflictError{Asset: a.InventoryNumber, Expected: expectedVersion, Actual: stored.Version}
	}
	m.assets[a.InventoryNumber] = cloneAsset(a)
	return nil
}

func (m *Memory) GetAsset(_ context.Context, n assets.InventoryNumber) (*assets.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getAssetLocked(n)
}

func (m *Memory) getAssetLocked(n assets.InventoryNumber) (*assets.Asset, error) {
	a, ok := m.assets[n]
	if !ok {
		return nil, fmt.Errorf("%w: %s", assets.ErrAssetNotFound, n)
	}
	return cloneAsset(a), nil
}

func (m *Memory) ListAssets(_ context.Context, f assets.AssetFilter) ([]*assets.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listAssetsLocked(f)
}

func (m *Memory) listAssetsLocked(f assets.AssetFilter) ([]*assets.Asset, error) {
	var out []*assets.Asset
	for _, a := range m.assets {
		if f.Group != "" && a.Group.Code != f.Group {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Method != "" && a.Method != f.Method {
			continue
		}
		if f.Location != "" && a.Location != f.Location {
			continue
		}
		out = append(out, cloneAsset(a))
	}
	return out, nil
}

// ----- Depreciation records -----

func (m *Memory) AppendRecord(_ context.Context, rec assets.DepreciationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendRecordLocked(rec)
}

func (m *Memory) appendRecordLocked(rec assets.DepreciationRecord) error {
	k := recordKey{Asset: rec.Asset, Period: rec.Period}
	if m.byKey[k] {
		return &assets.PeriodAccruedError{Asset: rec.Asset, Period: rec.Period}
	}
	m.byKey[k] = true
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) RecordExists(_ context.Context, n assets.InventoryNumber, p money.Period) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byKey[recordKey{Asset: n, Period: p}], nil
}

func (m *Memory) RecordsByAsset(_ context.Context, n assets.InventoryNumber) ([]assets.DepreciationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []assets.DepreciationRecord
	for _, rec := range m.records {
		if rec.Asset == n {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) RecordsByPeriod(_ context.Context, p money.Period) ([]assets.DepreciationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []assets.DepreciationRecord
	for _, rec := range m.records {
		if rec.Period.Equal(p) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ----- Account entries -----

func (m *Memory) AppendEntries(_ context.Context, entries []assets.AccountEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendEntriesLocked(entries)
}

func (m *Memory) appendEntriesLocked(entries []assets.AccountEntry) error {
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *Memory) Entries(_ context.Context, f assets.EntryFilter) ([]assets.AccountEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []assets.AccountEntry
	for _, e := range m.entries {
		if f.Asset != "" && e.Asset != f.Asset {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Account != "" && e.DebitAccount != f.Account && e.CreditAccount != f.Account {
			continue
		}
		if !f.From.IsZero() && e.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && e.Date.After(f.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ----- Business event documents -----

func (m *Memory) AppendReceipt(_ context.Context, r assets.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events.Receipts = append(m.events.Receipts, r)
	return nil
}

func (m *Memory) AppendRevaluation(_ context.Context, r assets.Revaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events.Revaluations = append(m.events.Revaluations, r)
	return nil
}

func (m *Memory) AppendImprovement(_ context.Context, imp assets.Improvement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events.Improvements = append(m.events.Improvements, imp)
	return nil
}

func (m *Memory) AppendTransfer(_ context.Context, t assets.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events.Transfers = append(m.events.Transfers, t)
	return nil
}

func (m *Memory) AppendDisposal(_ context.Context, d assets.Disposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events.Disposals = append(m.events.Disposals, d)
	return nil
}

func (m *Memory) EventHistory(_ context.Context, n assets.InventoryNumber) (assets.History, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.eventHistoryLocked(n), nil
}

func (m *Memory) eventHistoryLocked(n assets.InventoryNumber) assets.History {
	var h assets.History
	for _, r := range m.events.Receipts {
		if r.Asset == n {
			h.Receipts = append(h.Receipts, r)
		}
	}
	for _, r := range m.events.Revaluations {
		if r.Asset == n {
			h.Revaluations = append(h.Revaluations, r)
		}
	}
	for _, imp := range m.events.Improvements {
		if imp.Asset == n {
			h.Improvements = append(h.Improvements, imp)
		}
	}
	for _, t := range m.events.Transfers {
		if t.Asset == n {
			h.Transfers = append(h.Transfers, t)
		}
	}
	for _, d := range m.events.Disposals {
		if d.Asset == n {
			h.Disposals = append(h.Disposals, d)
		}
	}
	return h
}

// ----- Audit (Memory doubles as Auditor for tests) -----

func (m *Memory) RecordChange(_ context.Context, rec assets.ChangeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, rec)
	return nil
}

func (m *Memory) Changes(_ context.Context, asset assets.InventoryNumber) ([]assets.ChangeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []assets.ChangeRecord
	for _, c := range m.changes {
		if c.Asset == asset {
			out = append(out, c)
		}
	}
	return out, nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn against a locked view; an error restores the
// pre-transaction snapshot.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(assets.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snap := tm.snapshot()
	if err := fn(&txView{parent: tm.Memory}); err != nil {
		tm.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	groups  map[assets.GroupCode]assets.AssetGroup
	assets  map[assets.InventoryNumber]*assets.Asset
	records []assets.DepreciationRecord
	byKey   map[recordKey]bool
	entries []assets.AccountEntry
	events  assets.History
}

func (tm *TxMemory) snapshot() memorySnapshot {
	s := memorySnapshot{
		groups:  make(map[assets.GroupCode]assets.AssetGroup, len(tm.groups)),
		assets:  make(map[assets.InventoryNumber]*assets.Asset, len(tm.assets)),
		records: append([]assets.DepreciationRecord(nil), tm.records...),
		byKey:   make(map[recordKey]bool, len(tm.byKey)),
		entries: append([]assets.AccountEntry(nil), tm.entries...),
		events: assets.History{
			Receipts:     append([]assets.Receipt(nil), tm.events.Receipts...),
			Revaluations: append([]assets.Revaluation(nil), tm.events.Revaluations...),
			Improvements: append([]assets.Improvement(nil), tm.events.Improvements...),
			Transfers:    append([]assets.Transfer(nil), tm.events.Transfers...),
			Disposals:    append([]assets.Disposal(nil), tm.events.Disposals...),
		},
	}
	for k, v := range tm.groups {
		s.groups[k] = v
	}
	for k, v := range tm.assets {
		s.assets[k] = cloneAsset(v)
	}
	for k, v := range tm.byKey {
		s.byKey[k] = v
	}
	return s
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.groups = s.groups
	tm.assets = s.assets
	tm.records = s.records
	tm.byKey = s.byKey
	tm.entries = s.entries
	tm.events = s.events
}

// txView exposes the locked mutators to the transaction body.
type txView struct {
	parent *Memory
}

func (tv *txView) SaveGroup(_ context.Context, g assets.AssetGroup) error {
	tv.parent.groups[g.Code] = g
	return nil
}

func (tv *txView) GetGroup(_ context.Context, code assets.GroupCode) (assets.AssetGroup, error) {
	return tv.parent.getGroupLocked(code)
}

func (tv *txView) ListGroups(_ context.Context) ([]assets.AssetGroup, error) {
	out := make([]assets.AssetGroup, 0, len(tv.parent.groups))
	for _, g := range tv.parent.groups {
		out = append(out, g)
	}
	return out, nil
}

func (tv *txView) CreateAsset(_ context.Context, a *assets.Asset) error {
	return tv.parent.createAssetLocked(a)
}

func (tv *txView) UpdateAsset(_ context.Context, a *assets.Asset, expectedVersion int64) error {
	return tv.parent.updateAssetLocked(a, expectedVersion)
}

func (tv *txView) GetAsset(_ context.Context, n assets.InventoryNumber) (*assets.Asset, error) {
	return tv.parent.getAssetLocked(n)
}

func (tv *txView) ListAssets(_ context.Context, f assets.AssetFilter) ([]*assets.Asset, error) {
	return tv.parent.listAssetsLocked(f)
}

func (tv *txView) AppendRecord(_ context.Context, rec assets.DepreciationRecord) error {
	return tv.parent.appendRecordLocked(rec)
}

func (tv *txView) RecordExists(_ context.Context, n assets.InventoryNumber, p money.Period) (bool, error) {
	return tv.parent.byKey[recordKey{Asset: n, Period: p}], nil
}

func (tv *txView) RecordsByAsset(_ context.Context, n assets.InventoryNumber) ([]assets.DepreciationRecord, error) {
	var out []assets.DepreciationRecord
	for _, rec := range tv.parent.records {
		if rec.Asset == n {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (tv *txView) RecordsByPeriod(_ context.Context, p money.Period) ([]assets.DepreciationRecord, error) {
	var out []assets.DepreciationRecord
	for _, rec := range tv.parent.records {
		if rec.Period.Equal(p) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (tv *txView) AppendEntries(_ context.Context, entries []assets.AccountEntry) error {
	return tv.parent.appendEntriesLocked(entries)
}

func (tv *txView) Entries(_ context.Context, f assets.EntryFilter) ([]assets.AccountEntry, error) {
	var out []assets.AccountEntry
	for _, e := range tv.parent.entries {
		if f.Asset != "" && e.Asset != f.Asset {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (tv *txView) AppendReceipt(_ context.Context, r assets.Receipt) error {
	tv.parent.events.Receipts = append(tv.parent.events.Receipts, r)
	return nil
}

func (tv *txView) AppendRevaluation(_ context.Context, r assets.Revaluation) error {
	tv.parent.events.Revaluations = append(tv.parent.events.Revaluations, r)
	return nil
}

func (tv *txView) AppendImprovement(_ context.Context, imp assets.Improvement) error {
	tv.parent.events.Improvements = append(tv.parent.events.Improvements, imp)
	return nil
}

func (tv *txView) AppendTransfer(_ context.Context, t assets.Transfer) error {
	tv.parent.events.Transfers = append(tv.parent.events.Transfers, t)
	return nil
}

func (tv *txView) AppendDisposal(_ context.Context, d assets.Disposal) error {
	tv.parent.events.Disposals = append(tv.parent.events.Disposals, d)
	return nil
}

func (tv *txView) EventHistory(_ context.Context, n assets.InventoryNumber) (assets.History, error) {
	return tv.parent.eventHistoryLocked(n), nil
}
