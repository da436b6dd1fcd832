/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:

	Implements assets.TxStore and assets.Auditor using SQLite. In
	production the same patterns apply to PostgreSQL - only minor SQL
	dialect differences.

KEY TABLES:

	asset_groups:         Reference data with the per-group ledger accounts
	assets:               Valuation snapshots, one row per inventory number
	depreciation_records: Immutable accruals, UNIQUE(asset, year, month)
	account_entries:      Append-only double-entry postings
	asset_receipts, asset_revaluations, asset_improvements,
	asset_transfers, asset_disposals:
	                      Business event documents, one row per event
	audit_log:            Change history with per-field diffs

APPEND-ONLY ENFORCEMENT:

	depreciation_records and account_entries have no UPDATE or DELETE
	statements. Corrections are reversing entries.

OPTIMISTIC CONCURRENCY:

	UpdateAsset executes UPDATE ... WHERE version = expected. Zero rows
	affected means a concurrent writer won; the caller gets ErrConflict
	with the stored version.

MONEY COLUMNS:

	Amounts and rates are stored as decimal TEXT, never REAL. Floating
	point never touches a stored amount.

WAL MODE:

	SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
	- Multiple readers don't block
	- Single writer at a time
	- Better crash recovery

USAGE:

	store, err := sqlite.New("./data/ledger.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

MIGRATION:

	Schema is auto-migrated on New(). For production, use a proper
	migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - assets/store.go: Interface definitions
  - assets/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/asset-ledger/assets"
	"github.com/warp/asset-ledger/money"
)

// Store implements assets.TxStore and assets.Auditor using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Asset groups (reference data with ledger accounts)
	CREATE TABLE IF NOT EXISTS asset_groups (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		account_number TEXT NOT NULL,
		depreciation_account TEXT NOT NULL,
		min_useful_life_months INTEGER DEFAULT 0
	);

	-- Asset snapshots, one row per inventory number
	CREATE TABLE IF NOT EXISTS assets (
		inventory_number TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		group_code TEXT NOT NULL REFERENCES asset_groups(code),
		status TEXT NOT NULL,
		initial_cost TEXT NOT NULL,
		residual_value TEXT NOT NULL,
		incoming_depreciation TEXT NOT NULL,
		accumulated_depreciation TEXT NOT NULL,
		method TEXT NOT NULL,
		useful_life_months INTEGER NOT NULL,
		depreciation_rate TEXT,
		total_production_capacity TEXT,
		units_produced_to_date TEXT NOT NULL,
		commissioning_date TEXT NOT NULL,
		depreciation_start_date TEXT NOT NULL,
		disposal_date TEXT,
		location TEXT,
		responsible_person TEXT,
		version INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assets_group ON assets(group_code);
	CREATE INDEX IF NOT EXISTS idx_assets_status ON assets(status);

	-- Depreciation records (append-only, one per asset+period)
	CREATE TABLE IF NOT EXISTS depreciation_records (
		asset TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		method TEXT NOT NULL,
		amount TEXT NOT NULL,
		book_value_before TEXT NOT NULL,
		book_value_after TEXT NOT NULL,
		units_produced TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(asset, year, month)
	);

	CREATE INDEX IF NOT EXISTS idx_records_period ON depreciation_records(year, month);

	-- Account entries (append-only double-entry postings)
	CREATE TABLE IF NOT EXISTS account_entries (
		id TEXT PRIMARY KEY,
		entry_type TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		debit_account TEXT NOT NULL,
		credit_account TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT,
		asset TEXT NOT NULL,
		document_number TEXT,
		document_date TEXT,
		is_posted BOOLEAN DEFAULT TRUE,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_asset ON account_entries(asset);
	CREATE INDEX IF NOT EXISTS idx_entries_date ON account_entries(entry_date);
	CREATE INDEX IF NOT EXISTS idx_entries_type ON account_entries(entry_type);
	CREATE INDEX IF NOT EXISTS idx_entries_debit ON account_entries(debit_account);
	CREATE INDEX IF NOT EXISTS idx_entries_credit ON account_entries(credit_account);

	-- Business event documents (append-only, one row per event)
	CREATE TABLE IF NOT EXISTS asset_receipts (
		id TEXT PRIMARY KEY,
		asset TEXT NOT NULL,
		receipt_type TEXT NOT NULL,
		document_number TEXT,
		document_date TEXT,
		supplier TEXT,
		amount TEXT NOT NULL,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS asset_revaluations (
		id TEXT PRIMARY KEY,
		asset TEXT NOT NULL,
		document_number TEXT,
		document_date TEXT,
		fair_value TEXT NOT NULL,
		direction TEXT NOT NULL,
		old_initial_cost TEXT NOT NULL,
		old_depreciation TEXT NOT NULL,
		old_book_value TEXT NOT NULL,
		new_initial_cost TEXT NOT NULL,
		new_depreciation TEXT NOT NULL,
		new_book_value TEXT NOT NULL,
		amount TEXT NOT NULL,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS asset_improvements (
		id TEXT PRIMARY KEY,
		asset TEXT NOT NULL,
		improvement_type TEXT NOT NULL,
		document_number TEXT,
		document_date TEXT,
		description TEXT,
		amount TEXT NOT NULL,
		increases_value BOOLEAN NOT NULL,
		expense_account TEXT,
		contractor TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS asset_transfers (
		id TEXT PRIMARY KEY,
		asset TEXT NOT NULL,
		document_number TEXT,
		document_date TEXT,
		from_location TEXT,
		to_location TEXT,
		from_person TEXT,
		to_person TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS asset_disposals (
		id TEXT PRIMARY KEY,
		asset TEXT NOT NULL,
		disposal_type TEXT NOT NULL,
		document_number TEXT,
		document_date TEXT,
		reason TEXT,
		sale_amount TEXT NOT NULL,
		book_value_at_disposal TEXT NOT NULL,
		accumulated_depreciation_at_disposal TEXT NOT NULL,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_receipts_asset ON asset_receipts(asset);
	CREATE INDEX IF NOT EXISTS idx_revaluations_asset ON asset_revaluations(asset);
	CREATE INDEX IF NOT EXISTS idx_improvements_asset ON asset_improvements(asset);
	CREATE INDEX IF NOT EXISTS idx_transfers_asset ON asset_transfers(asset);
	CREATE INDEX IF NOT EXISTS idx_disposals_asset ON asset_disposals(asset);

	-- Audit log (change history, append-only)
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		actor TEXT,
		action TEXT NOT NULL,
		asset TEXT NOT NULL,
		fields_json TEXT,
		note TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_asset ON audit_log(asset);
	`

	_, err := s.db.Exec(schema)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	execer
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// ASSET GROUPS
// =============================================================================

func (s *Store) SaveGroup(ctx context.Context, g assets.AssetGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveGroup(ctx, s.db, g)
}

func saveGroup(ctx context.Context, db execer, g assets.AssetGroup) error {
	query := `
		INSERT INTO asset_groups (code, name, account_number, depreciation_account, min_useful_life_months)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			account_number = excluded.account_number,
			depreciation_account = excluded.depreciation_account,
			min_useful_life_months = excluded.min_useful_life_months
	`
	_, err := db.ExecContext(ctx, query,
		g.Code, g.Name, g.AccountNumber, g.DepreciationAccount, g.MinUsefulLifeMonths)
	return err
}

func (s *Store) GetGroup(ctx context.Context, code assets.GroupCode) (assets.AssetGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getGroup(ctx, s.db, code)
}

func getGroup(ctx context.Context, db querier, code assets.GroupCode) (assets.AssetGroup, error) {
	var g assets.AssetGroup
	err := db.QueryRowContext(ctx,
		"SELECT code, name, account_number, depreciation_account, min_useful_life_months FROM asset_groups WHERE code = ?",
		code,
	).Scan(&g.Code, &g.Name, &g.AccountNumber, &g.DepreciationAccount, &g.MinUsefulLifeMonths)

	if err == sql.ErrNoRows {
		return assets.AssetGroup{}, fmt.Errorf("%w: %s", assets.ErrGroupNotFound, code)
	}
	if err != nil {
		return assets.AssetGroup{}, err
	}
	return g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]assets.AssetGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listGroups(ctx, s.db)
}

func listGroups(ctx context.Context, db querier) ([]assets.AssetGroup, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT code, name, account_number, depreciation_account, min_useful_life_months FROM asset_groups ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []assets.AssetGroup
	for rows.Next() {
		var g assets.AssetGroup
		if err := rows.Scan(&g.Code, &g.Name, &g.AccountNumber, &g.DepreciationAccount, &g.MinUsefulLifeMonths); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// =============================================================================
// ASSET SNAPSHOTS
// =============================================================================

const assetColumns = `inventory_number, name, group_code, status,
	initial_cost, residual_value, incoming_depreciation, accumulated_depreciation,
	method, useful_life_months, depreciation_rate, total_production_capacity, units_produced_to_date,
	commissioning_date, depreciation_start_date, disposal_date,
	location, responsible_person, version`

func (s *Store) CreateAsset(ctx context.Context, a *assets.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createAsset(ctx, s.db, a)
}

func createAsset(ctx context.Context, db execer, a *assets.Asset) error {
	query := `
		INSERT INTO assets (` + assetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query, assetArgs(a)...)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &assets.ValidationError{Field: "inventory_number", Message: "already in use"}
		}
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

func (s *Store) UpdateAsset(ctx context.Context, a *assets.Asset, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAsset(ctx, s.db, a, expectedVersion)
}

func updateAsset(ctx context.Context, db querier, a *assets.Asset, expectedVersion int64) error {
	query := `
		UPDATE assets SET
			name = ?, group_code = ?, status = ?,
			initial_cost = ?, residual_value = ?, incoming_depreciation = ?, accumulated_depreciation = ?,
			method = ?, useful_life_months = ?, depreciation_rate = ?, total_production_capacity = ?, units_produced_to_date = ?,
			commissioning_date = ?, depreciation_start_date = ?, disposal_date = ?,
			location = ?, responsible_person = ?, version = ?
		WHERE inventory_number = ? AND version = ?
	`
	args := assetArgs(a)
	// Shift inventory_number from the front to the WHERE clause.
	args = append(args[1:], a.InventoryNumber, expectedVersion)

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the asset is gone or a concurrent writer bumped the version.
		var actual int64
		err := db.QueryRowContext(ctx, "SELECT version FROM assets WHERE inventory_number = ?", a.InventoryNumber).Scan(&actual)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s", assets.ErrAssetNotFound, a.InventoryNumber)
		}
		if err != nil {
			return err
		}
		return &assets.ConflictError{Asset: a.InventoryNumber, Expected: expectedVersion, Actual: actual}
	}
	return nil
}

func assetArgs(a *assets.Asset) []any {
	return []any{
		a.InventoryNumber, a.Name, a.Group.Code, a.Status,
		a.InitialCost.String(), a.ResidualValue.String(), a.IncomingDepreciation.String(), a.AccumulatedDepreciation.String(),
		a.Method, a.UsefulLifeMonths, nullRatio(a.DepreciationRate), nullRatio(a.TotalProductionCapacity), a.UnitsProducedToDate.String(),
		a.CommissioningDate.Format(time.RFC3339), a.DepreciationStartDate.Format(time.RFC3339), nullTime(a.DisposalDate),
		a.Location, a.ResponsiblePerson, a.Version,
	}
}

func (s *Store) GetAsset(ctx context.Context, n assets.InventoryNumber) (*assets.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAsset(ctx, s.db, n)
}

func getAsset(ctx context.Context, db querier, n assets.InventoryNumber) (*assets.Asset, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+assetColumns+" FROM assets WHERE inventory_number = ?", n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", assets.ErrAssetNotFound, n)
	}
	a, err := scanAsset(ctx, db, rows)
	if err != nil {
		return nil, err
	}
	return a, rows.Err()
}

func (s *Store) ListAssets(ctx context.Context, f assets.AssetFilter) ([]*assets.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listAssets(ctx, s.db, f)
}

func listAssets(ctx context.Context, db querier, f assets.AssetFilter) ([]*assets.Asset, error) {
	query := "SELECT " + assetColumns + " FROM assets WHERE 1=1"
	var args []any
	if f.Group != "" {
		query += " AND group_code = ?"
		args = append(args, f.Group)
	}
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.Method != "" {
		query += " AND method = ?"
		args = append(args, f.Method)
	}
	if f.Location != "" {
		query += " AND location = ?"
		args = append(args, f.Location)
	}
	query += " ORDER BY inventory_number"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*assets.Asset
	for rows.Next() {
		a, err := scanAsset(ctx, db, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAsset(ctx context.Context, db querier, rows *sql.Rows) (*assets.Asset, error) {
	var (
		a                               assets.Asset
		groupCode                       assets.GroupCode
		cost, residual, incoming, accum string
		rate, capacity, disposal        sql.NullString
		units, commissioning, deprStart string
		location, responsible           sql.NullString
	)

	err := rows.Scan(
		&a.InventoryNumber, &a.Name, &groupCode, &a.Status,
		&cost, &residual, &incoming, &accum,
		&a.Method, &a.UsefulLifeMonths, &rate, &capacity, &units,
		&commissioning, &deprStart, &disposal,
		&location, &responsible, &a.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}

	if a.InitialCost, err = money.FromString(cost); err != nil {
		return nil, err
	}
	if a.ResidualValue, err = money.FromString(residual); err != nil {
		return nil, err
	}
	if a.IncomingDepreciation, err = money.FromString(incoming); err != nil {
		return nil, err
	}
	if a.AccumulatedDepreciation, err = money.FromString(accum); err != nil {
		return nil, err
	}
	if a.UnitsProducedToDate, err = money.RatioFromString(units); err != nil {
		return nil, err
	}
	if rate.Valid {
		r, err := money.RatioFromString(rate.String)
		if err != nil {
			return nil, err
		}
		a.DepreciationRate = &r
	}
	if capacity.Valid {
		r, err := money.RatioFromString(capacity.String)
		if err != nil {
			return nil, err
		}
		a.TotalProductionCapacity = &r
	}
	a.CommissioningDate, _ = time.Parse(time.RFC3339, commissioning)
	a.DepreciationStartDate, _ = time.Parse(time.RFC3339, deprStart)
	if disposal.Valid {
		t, _ := time.Parse(time.RFC3339, disposal.String)
		a.DisposalDate = &t
	}
	a.Location = location.String
	a.ResponsiblePerson = responsible.String

	group, err := getGroup(ctx, db, groupCode)
	if err != nil {
		return nil, err
	}
	a.Group = group
	return &a, nil
}

// =============================================================================
// DEPRECIATION RECORDS (append-only)
// =============================================================================

func (s *Store) AppendRecord(ctx context.Context, rec assets.DepreciationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendRecord(ctx, s.db, rec)
}

func appendRecord(ctx context.Context, db execer, rec assets.DepreciationRecord) error {
	query := `
		INSERT INTO depreciation_records
		(asset, year, month, method, amount, book_value_before, book_value_after, units_produced, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		rec.Asset, rec.Period.Year, int(rec.Period.Month), rec.Method,
		rec.Amount.String(), rec.BookValueBefore.String(), rec.BookValueAfter.String(),
		nullRatio(rec.UnitsProduced), rec.CreatedBy,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &assets.PeriodAccruedError{Asset: rec.Asset, Period: rec.Period}
		}
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

func (s *Store) RecordExists(ctx context.Context, n assets.InventoryNumber, p money.Period) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recordExists(ctx, s.db, n, p)
}

func recordExists(ctx context.Context, db querier, n assets.InventoryNumber, p money.Period) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM depreciation_records WHERE asset = ? AND year = ? AND month = ?",
		n, p.Year, int(p.Month),
	).Scan(&count)
	return count > 0, err
}

func (s *Store) RecordsByAsset(ctx context.Context, n assets.InventoryNumber) ([]assets.DepreciationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT asset, year, month, method, amount, book_value_before, book_value_after, units_produced, created_by, created_at
		FROM depreciation_records
		WHERE asset = ?
		ORDER BY year ASC, month ASC
	`
	return queryRecords(ctx, s.db, query, n)
}

func (s *Store) RecordsByPeriod(ctx context.Context, p money.Period) ([]assets.DepreciationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT asset, year, month, method, amount, book_value_before, book_value_after, units_produced, created_by, created_at
		FROM depreciation_records
		WHERE year = ? AND month = ?
		ORDER BY asset ASC
	`
	return queryRecords(ctx, s.db, query, p.Year, int(p.Month))
}

func queryRecords(ctx context.Context, db querier, query string, args ...any) ([]assets.DepreciationRecord, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []assets.DepreciationRecord
	for rows.Next() {
		var (
			rec              assets.DepreciationRecord
			year, month      int
			amount, bvBefore string
			bvAfter          string
			units            sql.NullString
			createdAt        string
		)
		if err := rows.Scan(&rec.Asset, &year, &month, &rec.Method,
			&amount, &bvBefore, &bvAfter, &units, &rec.CreatedBy, &createdAt); err != nil {
			return nil, err
		}

		rec.Period = money.NewPeriod(year, time.Month(month))
		if rec.Amount, err = money.FromString(amount); err != nil {
			return nil, err
		}
		if rec.BookValueBefore, err = money.FromString(bvBefore); err != nil {
			return nil, err
		}
		if rec.BookValueAfter, err = money.FromString(bvAfter); err != nil {
			return nil, err
		}
		if units.Valid {
			r, err := money.RatioFromString(units.String)
			if err != nil {
				return nil, err
			}
			rec.UnitsProduced = &r
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// ACCOUNT ENTRIES (append-only)
// =============================================================================

func (s *Store) AppendEntries(ctx context.Context, entries []assets.AccountEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendEntries(ctx, s.db, entries)
}

func appendEntries(ctx context.Context, db execer, entries []assets.AccountEntry) error {
	query := `
		INSERT INTO account_entries
		(id, entry_type, entry_date, debit_account, credit_account, amount, description,
		 asset, document_number, document_date, is_posted, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, e := range entries {
		_, err := db.ExecContext(ctx, query,
			e.ID, e.Type, e.Date.Format(time.RFC3339),
			e.DebitAccount, e.CreditAccount, e.Amount.String(), e.Description,
			e.Asset, e.Document.Number, e.Document.Date.Format(time.RFC3339),
			e.IsPosted, e.CreatedBy, e.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to append entry: %w", err)
		}
	}
	return nil
}

func (s *Store) Entries(ctx context.Context, f assets.EntryFilter) ([]assets.AccountEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryEntries(ctx, s.db, f)
}

func queryEntries(ctx context.Context, db querier, f assets.EntryFilter) ([]assets.AccountEntry, error) {
	query := `
		SELECT id, entry_type, entry_date, debit_account, credit_account, amount, description,
		       asset, document_number, document_date, is_posted, created_by, created_at
		FROM account_entries WHERE 1=1
	`
	var args []any
	if f.Asset != "" {
		query += " AND asset = ?"
		args = append(args, f.Asset)
	}
	if f.Type != "" {
		query += " AND entry_type = ?"
		args = append(args, f.Type)
	}
	if f.Account != "" {
		query += " AND (debit_account = ? OR credit_account = ?)"
		args = append(args, f.Account, f.Account)
	}
	if !f.From.IsZero() {
		query += " AND entry_date >= ?"
		args = append(args, f.From.Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		query += " AND entry_date <= ?"
		args = append(args, f.To.Format(time.RFC3339))
	}
	query += " ORDER BY entry_date ASC, created_at ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []assets.AccountEntry
	for rows.Next() {
		var (
			e                     assets.AccountEntry
			date, docDate, amount string
			desc, docNum, by      sql.NullString
			createdAt             string
		)
		if err := rows.Scan(&e.ID, &e.Type, &date, &e.DebitAccount, &e.CreditAccount,
			&amount, &desc, &e.Asset, &docNum, &docDate, &e.IsPosted, &by, &createdAt); err != nil {
			return nil, err
		}

		e.Date, _ = time.Parse(time.RFC3339, date)
		if e.Amount, err = money.FromString(amount); err != nil {
			return nil, err
		}
		e.Description = desc.String
		e.Document.Number = docNum.String
		e.Document.Date, _ = time.Parse(time.RFC3339, docDate)
		e.CreatedBy = by.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// BUSINESS EVENT DOCUMENTS (append-only)
// =============================================================================

func (s *Store) AppendReceipt(ctx context.Context, r assets.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendReceipt(ctx, s.db, r)
}

func appendReceipt(ctx context.Context, db execer, r assets.Receipt) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO asset_receipts
		(id, asset, receipt_type, document_number, document_date, supplier, amount, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.Asset, r.Type, r.Document.Number, r.Document.Date.Format(time.RFC3339),
		r.Supplier, r.Amount.String(), r.CreatedBy, r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append receipt: %w", err)
	}
	return nil
}

func (s *Store) AppendRevaluation(ctx context.Context, r assets.Revaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendRevaluation(ctx, s.db, r)
}

func appendRevaluation(ctx context.Context, db execer, r assets.Revaluation) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO asset_revaluations
		(id, asset, document_number, document_date, fair_value, direction,
		 old_initial_cost, old_depreciation, old_book_value,
		 new_initial_cost, new_depreciation, new_book_value, amount, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.Asset, r.Document.Number, r.Document.Date.Format(time.RFC3339),
		r.FairValue.String(), r.Direction,
		r.OldInitialCost.String(), r.OldDepreciation.String(), r.OldBookValue.String(),
		r.NewInitialCost.String(), r.NewDepreciation.String(), r.NewBookValue.String(),
		r.Amount.String(), r.CreatedBy, r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append revaluation: %w", err)
	}
	return nil
}

func (s *Store) AppendImprovement(ctx context.Context, imp assets.Improvement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendImprovement(ctx, s.db, imp)
}

func appendImprovement(ctx context.Context, db execer, imp assets.Improvement) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO asset_improvements
		(id, asset, improvement_type, document_number, document_date, description,
		 amount, increases_value, expense_account, contractor, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		imp.ID, imp.Asset, imp.Type, imp.Document.Number, imp.Document.Date.Format(time.RFC3339),
		imp.Description, imp.Amount.String(), imp.IncreasesValue, imp.ExpenseAccount,
		imp.Contractor, imp.CreatedBy, imp.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append improvement: %w", err)
	}
	return nil
}

func (s *Store) AppendTransfer(ctx context.Context, t assets.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendTransfer(ctx, s.db, t)
}

func appendTransfer(ctx context.Context, db execer, t assets.Transfer) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO asset_transfers
		(id, asset, document_number, document_date, from_location, to_location,
		 from_person, to_person, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.Asset, t.Document.Number, t.Document.Date.Format(time.RFC3339),
		t.FromLocation, t.ToLocation, t.FromPerson, t.ToPerson,
		t.CreatedBy, t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append transfer: %w", err)
	}
	return nil
}

func (s *Store) AppendDisposal(ctx context.Context, d assets.Disposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendDisposal(ctx, s.db, d)
}

func appendDisposal(ctx context.Context, db execer, d assets.Disposal) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO asset_disposals
		(id, asset, disposal_type, document_number, document_date, reason, sale_amount,
		 book_value_at_disposal, accumulated_depreciation_at_disposal, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID, d.Asset, d.Type, d.Document.Number, d.Document.Date.Format(time.RFC3339),
		d.Reason, d.SaleAmount.String(),
		d.BookValueAtDisposal.String(), d.AccumulatedDepreciationAtDisposal.String(),
		d.CreatedBy, d.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append disposal: %w", err)
	}
	return nil
}

func (s *Store) EventHistory(ctx context.Context, n assets.InventoryNumber) (assets.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return eventHistory(ctx, s.db, n)
}

func eventHistory(ctx context.Context, db querier, n assets.InventoryNumber) (assets.History, error) {
	var (
		h   assets.History
		err error
	)
	if h.Receipts, err = queryReceipts(ctx, db, n); err != nil {
		return assets.History{}, err
	}
	if h.Revaluations, err = queryRevaluations(ctx, db, n); err != nil {
		return assets.History{}, err
	}
	if h.Improvements, err = queryImprovements(ctx, db, n); err != nil {
		return assets.History{}, err
	}
	if h.Transfers, err = queryTransfers(ctx, db, n); err != nil {
		return assets.History{}, err
	}
	if h.Disposals, err = queryDisposals(ctx, db, n); err != nil {
		return assets.History{}, err
	}
	return h, nil
}

func queryReceipts(ctx context.Context, db querier, n assets.InventoryNumber) ([]assets.Receipt, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, asset, receipt_type, document_number, document_date, supplier, amount, created_by, created_at
		FROM asset_receipts WHERE asset = ? ORDER BY created_at ASC
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []assets.Receipt
	for rows.Next() {
		var (
			r                assets.Receipt
			docNum, supplier sql.NullString
			docDate, amount  string
			by               sql.NullString
			createdAt        string
		)
		if err := rows.Scan(&r.ID, &r.Asset, &r.Type, &docNum, &docDate, &supplier, &amount, &by, &createdAt); err != nil {
			return nil, err
		}
		r.Document.Number = docNum.String
		r.Document.Date, _ = time.Parse(time.RFC3339, docDate)
		r.Supplier = supplier.String
		if r.Amount, err = money.FromString(amount); err != nil {
			return nil, err
		}
		r.CreatedBy = by.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func queryRevaluations(ctx context.Context, db querier, n assets.InventoryNumber) ([]assets.Revaluation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, asset, document_number, document_date, fair_value, direction,
		       old_initial_cost, old_depreciation, old_book_value,
		       new_initial_cost, new_depreciation, new_book_value, amount, created_by, created_at
		FROM asset_revaluations WHERE asset = ? ORDER BY created_at ASC
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []assets.Revaluation
	for rows.Next() {
		var (
			r                                assets.Revaluation
			docNum, by                       sql.NullString
			docDate, createdAt               string
			fair, oldCost, oldDepr, oldBook  string
			newCost, newDepr, newBook, delta string
		)
		if err := rows.Scan(&r.ID, &r.Asset, &docNum, &docDate, &fair, &r.Direction,
			&oldCost, &oldDepr, &oldBook, &newCost, &newDepr, &newBook, &delta,
			&by, &createdAt); err != nil {
			return nil, err
		}
		r.Document.Number = docNum.String
		r.Document.Date, _ = time.Parse(time.RFC3339, docDate)
		if r.FairValue, err = money.FromString(fair); err != nil {
			return nil, err
		}
		if r.OldInitialCost, err = money.FromString(oldCost); err != nil {
			return nil, err
		}
		if r.OldDepreciation, err = money.FromString(oldDepr); err != nil {
			return nil, err
		}
		if r.OldBookValue, err = money.FromString(oldBook); err != nil {
			return nil, err
		}
		if r.NewInitialCost, err = money.FromString(newCost); err != nil {
			return nil, err
		}
		if r.NewDepreciation, err = money.FromString(newDepr); err != nil {
			return nil, err
		}
		if r.NewBookValue, err = money.FromString(newBook); err != nil {
			return nil, err
		}
		if r.Amount, err = money.FromString(delta); err != nil {
			return nil, err
		}
		r.CreatedBy = by.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func queryImprovements(ctx context.Context, db querier, n assets.InventoryNumber) ([]assets.Improvement, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, asset, improvement_type, document_number, document_date, description,
		       amount, increases_value, expense_account, contractor, created_by, created_at
		FROM asset_improvements WHERE asset = ? ORDER BY created_at ASC
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []assets.Improvement
	for rows.Next() {
		var (
			imp                        assets.Improvement
			docNum, desc, account      sql.NullString
			contractor, by             sql.NullString
			docDate, amount, createdAt string
		)
		if err := rows.Scan(&imp.ID, &imp.Asset, &imp.Type, &docNum, &docDate, &desc,
			&amount, &imp.IncreasesValue, &account, &contractor, &by, &createdAt); err != nil {
			return nil, err
		}
		imp.Document.Number = docNum.String
		imp.Document.Date, _ = time.Parse(time.RFC3339, docDate)
		imp.Description = desc.String
		if imp.Amount, err = money.FromString(amount); err != nil {
			return nil, err
		}
		imp.ExpenseAccount = account.String
		imp.Contractor = contractor.String
		imp.CreatedBy = by.String
		imp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, imp)
	}
	return out, rows.Err()
}

func queryTransfers(ctx context.Context, db querier, n assets.InventoryNumber) ([]assets.Transfer, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, asset, document_number, document_date, from_location, to_location,
		       from_person, to_person, created_by, created_at
		FROM asset_transfers WHERE asset = ? ORDER BY created_at ASC
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []assets.Transfer
	for rows.Next() {
		var (
			t                        assets.Transfer
			docNum                   sql.NullString
			fromLoc, toLoc           sql.NullString
			fromPerson, toPerson, by sql.NullString
			docDate, createdAt       string
		)
		if err := rows.Scan(&t.ID, &t.Asset, &docNum, &docDate, &fromLoc, &toLoc,
			&fromPerson, &toPerson, &by, &createdAt); err != nil {
			return nil, err
		}
		t.Document.Number = docNum.String
		t.Document.Date, _ = time.Parse(time.RFC3339, docDate)
		t.FromLocation = fromLoc.String
		t.ToLocation = toLoc.String
		t.FromPerson = fromPerson.String
		t.ToPerson = toPerson.String
		t.CreatedBy = by.String
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

func queryDisposals(ctx context.Context, db querier, n assets.InventoryNumber) ([]assets.Disposal, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, asset, disposal_type, document_number, document_date, reason, sale_amount,
		       book_value_at_disposal, accumulated_depreciation_at_disposal, created_by, created_at
		FROM asset_disposals WHERE asset = ? ORDER BY created_at ASC
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []assets.Disposal
	for rows.Next() {
		var (
			d                        assets.Disposal
			docNum, reason, by       sql.NullString
			docDate, sale, createdAt string
			book, accum              string
		)
		if err := rows.Scan(&d.ID, &d.Asset, &d.Type, &docNum, &docDate, &reason,
			&sale, &book, &accum, &by, &createdAt); err != nil {
			return nil, err
		}
		d.Document.Number = docNum.String
		d.Document.Date, _ = time.Parse(time.RFC3339, docDate)
		d.Reason = reason.String
		if d.SaleAmount, err = money.FromString(sale); err != nil {
			return nil, err
		}
		if d.BookValueAtDisposal, err = money.FromString(book); err != nil {
			return nil, err
		}
		if d.AccumulatedDepreciationAtDisposal, err = money.FromString(accum); err != nil {
			return nil, err
		}
		d.CreatedBy = by.String
		d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) RecordChange(ctx context.Context, rec assets.ChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fieldsJSON, _ := json.Marshal(rec.Fields)
	query := `
		INSERT INTO audit_log (id, timestamp, actor, action, asset, fields_json, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Timestamp.UTC().Format(time.RFC3339), rec.Actor,
		rec.Action, rec.Asset, string(fieldsJSON), rec.Note,
	)
	return err
}

func (s *Store) Changes(ctx context.Context, asset assets.InventoryNumber) ([]assets.ChangeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, timestamp, actor, action, asset, fields_json, note FROM audit_log WHERE asset = ? ORDER BY timestamp ASC",
		asset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []assets.ChangeRecord
	for rows.Next() {
		var (
			rec         assets.ChangeRecord
			ts          string
			fieldsJSON  sql.NullString
			actor, note sql.NullString
		)
		if err := rows.Scan(&rec.ID, &ts, &actor, &rec.Action, &rec.Asset, &fieldsJSON, &note); err != nil {
			return nil, err
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339, ts)
		rec.Actor = actor.String
		rec.Note = note.String
		if fieldsJSON.Valid && fieldsJSON.String != "" {
			json.Unmarshal([]byte(fieldsJSON.String), &rec.Fields)
		}
		changes = append(changes, rec)
	}
	return changes, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (assets.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store assets.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) SaveGroup(ctx context.Context, g assets.AssetGroup) error {
	return saveGroup(ctx, ts.tx, g)
}

func (ts *txStore) GetGroup(ctx context.Context, code assets.GroupCode) (assets.AssetGroup, error) {
	return getGroup(ctx, ts.tx, code)
}

func (ts *txStore) ListGroups(ctx context.Context) ([]assets.AssetGroup, error) {
	return listGroups(ctx, ts.tx)
}

func (ts *txStore) CreateAsset(ctx context.Context, a *assets.Asset) error {
	return createAsset(ctx, ts.tx, a)
}

func (ts *txStore) UpdateAsset(ctx context.Context, a *assets.Asset, expectedVersion int64) error {
	return updateAsset(ctx, ts.tx, a, expectedVersion)
}

func (ts *txStore) GetAsset(ctx context.Context, n assets.InventoryNumber) (*assets.Asset, error) {
	return getAsset(ctx, ts.tx, n)
}

func (ts *txStore) ListAssets(ctx context.Context, f assets.AssetFilter) ([]*assets.Asset, error) {
	return listAssets(ctx, ts.tx, f)
}

func (ts *txStore) AppendRecord(ctx context.Context, rec assets.DepreciationRecord) error {
	return appendRecord(ctx, ts.tx, rec)
}

func (ts *txStore) RecordExists(ctx context.Context, n assets.InventoryNumber, p money.Period) (bool, error) {
	return recordExists(ctx, ts.tx, n, p)
}

func (ts *txStore) RecordsByAsset(ctx context.Context, n assets.InventoryNumber) ([]assets.DepreciationRecord, error) {
	query := `
		SELECT asset, year, month, method, amount, book_value_before, book_value_after, units_produced, created_by, created_at
		FROM depreciation_records WHERE asset = ? ORDER BY year ASC, month ASC
	`
	return queryRecords(ctx, ts.tx, query, n)
}

func (ts *txStore) RecordsByPeriod(ctx context.Context, p money.Period) ([]assets.DepreciationRecord, error) {
	query := `
		SELECT asset, year, month, method, amount, book_value_before, book_value_after, units_produced, created_by, created_at
		FROM depreciation_records WHERE year = ? AND month = ? ORDER BY asset ASC
	`
	return queryRecords(ctx, ts.tx, query, p.Year, int(p.Month))
}

func (ts *txStore) AppendEntries(ctx context.Context, entries []assets.AccountEntry) error {
	return appendEntries(ctx, ts.tx, entries)
}

func (ts *txStore) Entries(ctx context.Context, f assets.EntryFilter) ([]assets.AccountEntry, error) {
	return queryEntries(ctx, ts.tx, f)
}

func (ts *txStore) AppendReceipt(ctx context.Context, r assets.Receipt) error {
	return appendReceipt(ctx, ts.tx, r)
}

func (ts *txStore) AppendRevaluation(ctx context.Context, r assets.Revaluation) error {
	return appendRevaluation(ctx, ts.tx, r)
}

func (ts *txStore) AppendImprovement(ctx context.Context, imp assets.Improvement) error {
	return appendImprovement(ctx, ts.tx, imp)
}

func (ts *txStore) AppendTransfer(ctx context.Context, t assets.Transfer) error {
	return appendTransfer(ctx, ts.tx, t)
}

func (ts *txStore) AppendDisposal(ctx context.Context, d assets.Disposal) error {
	return appendDisposal(ctx, ts.tx, d)
}

func (ts *txStore) EventHistory(ctx context.Context, n assets.InventoryNumber) (assets.History, error) {
	return eventHistory(ctx, ts.tx, n)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"account_entries", "depreciation_records", "audit_log",
		"asset_receipts", "asset_revaluations", "asset_improvements",
		"asset_transfers", "asset_disposals",
		"assets", "asset_groups",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullRatio(r *money.Ratio) sql.NullString {
	if r == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: r.String(), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
