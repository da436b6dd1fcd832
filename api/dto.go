/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:

	Defines the JSON structures for API communication. These types decouple
	the internal domain model from the external API contract, allowing:
	- Field renaming without breaking clients
	- API-specific validation
	- Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:

	Every monetary amount crosses the wire as a decimal STRING
	("120000.00"), never a float. Rates and production units are decimal
	strings too.

VALIDATION:

	Validation is done in handlers and the domain layer, not in DTOs.
	DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - assets/types.go: The domain model behind them
*/
package api

// =============================================================================
// GROUPS
// =============================================================================

// GroupDTO represents an asset group in API responses.
type GroupDTO struct {
	Code                string `json:"code"`
	Name                string `json:"name"`
	AccountNumber       string `json:"account_number"`
	DepreciationAccount string `json:"depreciation_account"`
	MinUsefulLifeMonths int    `json:"min_useful_life_months,omitempty"`
}

// =============================================================================
// ASSETS
// =============================================================================

// AssetDTO represents an asset snapshot in API responses.
type AssetDTO struct {
	InventoryNumber         string `json:"inventory_number"`
	Name                    string `json:"name"`
	Group                   string `json:"group"`
	Status                  string `json:"status"`
	InitialCost             string `json:"initial_cost"`
	ResidualValue           string `json:"residual_value"`
	IncomingDepreciation    string `json:"incoming_depreciation"`
	AccumulatedDepreciation string `json:"accumulated_depreciation"`
	BookValue               string `json:"book_value"`
	Method                  string `json:"depreciation_method"`
	UsefulLifeMonths        int    `json:"useful_life_months"`
	DepreciationRate        string `json:"depreciation_rate,omitempty"`
	TotalProductionCapacity string `json:"total_production_capacity,omitempty"`
	UnitsProducedToDate     string `json:"units_produced_to_date,omitempty"`
	CommissioningDate       string `json:"commissioning_date"`
	DepreciationStartDate   string `json:"depreciation_start_date"`
	DisposalDate            string `json:"disposal_date,omitempty"`
	Location                string `json:"location,omitempty"`
	ResponsiblePerson       string `json:"responsible_person,omitempty"`
	FullyDepreciated        bool   `json:"fully_depreciated"`
	Version                 int64  `json:"version"`
}

// RegisterAssetRequest creates a new asset with its receipt.
type RegisterAssetRequest struct {
	InventoryNumber      string `json:"inventory_number"`
	Name                 string `json:"name"`
	Group                string `json:"group"`
	InitialCost          string `json:"initial_cost"`
	ResidualValue        string `json:"residual_value"`
	IncomingDepreciation string `json:"incoming_depreciation,omitempty"`
	Method               string `json:"depreciation_method"`
	UsefulLifeMonths     int    `json:"useful_life_months"`

	// DepreciationRate is the annual rate as a decimal FRACTION between
	// 0 and 1 exclusive: "0.40" means 40% per year. Values of 1 or more
	// (e.g. a percentage sent as "40") are rejected.
	DepreciationRate        string `json:"depreciation_rate,omitempty"`
	TotalProductionCapacity string `json:"total_production_capacity,omitempty"`
	CommissioningDate       string `json:"commissioning_date"`
	DepreciationStartDate   string `json:"depreciation_start_date,omitempty"`
	Location                string `json:"location,omitempty"`
	ResponsiblePerson       string `json:"responsible_person,omitempty"`

	ReceiptType    string `json:"receipt_type,omitempty"` // purchase by default
	DocumentNumber string `json:"document_number,omitempty"`
	DocumentDate   string `json:"document_date,omitempty"`
	Supplier       string `json:"supplier,omitempty"`
}

// =============================================================================
// EVENTS
// =============================================================================

type RevalueRequest struct {
	FairValue      string `json:"fair_value"`
	DocumentNumber string `json:"document_number,omitempty"`
	DocumentDate   string `json:"document_date,omitempty"`
}

type RevaluationDTO struct {
	Asset           string `json:"asset"`
	Direction       string `json:"direction"`
	FairValue       string `json:"fair_value"`
	OldInitialCost  string `json:"old_initial_cost"`
	NewInitialCost  string `json:"new_initial_cost"`
	OldDepreciation string `json:"old_depreciation"`
	NewDepreciation string `json:"new_depreciation"`
	OldBookValue    string `json:"old_book_value"`
	NewBookValue    string `json:"new_book_value"`
	Amount          string `json:"amount"`
	DocumentNumber  string `json:"document_number,omitempty"`
	CreatedBy       string `json:"created_by,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

type ImproveRequest struct {
	Type           string `json:"type"` // capital, current, modernization, reconstruction
	Amount         string `json:"amount"`
	Description    string `json:"description,omitempty"`
	IncreasesValue bool   `json:"increases_value"`
	ExpenseAccount string `json:"expense_account,omitempty"`
	Contractor     string `json:"contractor,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	DocumentDate   string `json:"document_date,omitempty"`
}

type TransferRequest struct {
	ToLocation     string `json:"to_location,omitempty"`
	ToPerson       string `json:"to_person,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	DocumentDate   string `json:"document_date,omitempty"`
}

type DisposeRequest struct {
	Type           string `json:"type"` // sale, liquidation, free_transfer, shortage
	SaleAmount     string `json:"sale_amount,omitempty"`
	Reason         string `json:"reason,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	DocumentDate   string `json:"document_date,omitempty"`
}

type DisposalDTO struct {
	Asset                   string `json:"asset"`
	Type                    string `json:"type"`
	SaleAmount              string `json:"sale_amount"`
	BookValueAtDisposal     string `json:"book_value_at_disposal"`
	AccumulatedDepreciation string `json:"accumulated_depreciation"`
	GainLoss                string `json:"gain_loss"`
	Reason                  string `json:"reason,omitempty"`
	DocumentNumber          string `json:"document_number,omitempty"`
	CreatedBy               string `json:"created_by,omitempty"`
	CreatedAt               string `json:"created_at,omitempty"`
}

// =============================================================================
// EVENT HISTORY
// =============================================================================

type ReceiptDTO struct {
	Asset          string `json:"asset"`
	Type           string `json:"type"`
	Supplier       string `json:"supplier,omitempty"`
	Amount         string `json:"amount"`
	DocumentNumber string `json:"document_number,omitempty"`
	CreatedBy      string `json:"created_by,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

type ImprovementDTO struct {
	Asset          string `json:"asset"`
	Type           string `json:"type"`
	Amount         string `json:"amount"`
	Description    string `json:"description,omitempty"`
	IncreasesValue bool   `json:"increases_value"`
	ExpenseAccount string `json:"expense_account,omitempty"`
	Contractor     string `json:"contractor,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	CreatedBy      string `json:"created_by,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

type TransferDTO struct {
	Asset          string `json:"asset"`
	FromLocation   string `json:"from_location,omitempty"`
	ToLocation     string `json:"to_location,omitempty"`
	FromPerson     string `json:"from_person,omitempty"`
	ToPerson       string `json:"to_person,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	CreatedBy      string `json:"created_by,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// HistoryDTO is the full document trail of one asset.
type HistoryDTO struct {
	Receipts     []ReceiptDTO     `json:"receipts"`
	Revaluations []RevaluationDTO `json:"revaluations"`
	Improvements []ImprovementDTO `json:"improvements"`
	Transfers    []TransferDTO    `json:"transfers"`
	Disposals    []DisposalDTO    `json:"disposals"`
}

// =============================================================================
// ACCRUAL
// =============================================================================

// AccrueRequest runs one asset's depreciation for one period.
type AccrueRequest struct {
	Period        string `json:"period"` // "YYYY-MM"
	UnitsProduced string `json:"units_produced,omitempty"`
}

// RunAccrualRequest runs a whole period over the register.
type RunAccrualRequest struct {
	Period string `json:"period"` // "YYYY-MM"

	// Volumes carries units produced per inventory number for
	// production-method assets.
	Volumes map[string]string `json:"volumes,omitempty"`
}

type DepreciationRecordDTO struct {
	Asset           string `json:"asset"`
	Period          string `json:"period"`
	Method          string `json:"method"`
	Amount          string `json:"amount"`
	BookValueBefore string `json:"book_value_before"`
	BookValueAfter  string `json:"book_value_after"`
	UnitsProduced   string `json:"units_produced,omitempty"`
	CreatedBy       string `json:"created_by,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

type AssetErrorDTO struct {
	Asset string `json:"asset"`
	Error string `json:"error"`
}

type RunResultDTO struct {
	Period           string                  `json:"period"`
	Created          []DepreciationRecordDTO `json:"created"`
	Skipped          []string                `json:"skipped"`
	Errors           []AssetErrorDTO         `json:"errors"`
	FullyDepreciated []string                `json:"fully_depreciated"`
}

// =============================================================================
// LEDGER AND REPORTS
// =============================================================================

type EntryDTO struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Date           string `json:"date"`
	DebitAccount   string `json:"debit_account"`
	CreditAccount  string `json:"credit_account"`
	Amount         string `json:"amount"`
	Description    string `json:"description,omitempty"`
	Asset          string `json:"asset"`
	DocumentNumber string `json:"document_number,omitempty"`
	CreatedBy      string `json:"created_by,omitempty"`
}

type DepreciationSummaryDTO struct {
	Period     string                  `json:"period"`
	AssetCount int                     `json:"asset_count"`
	Total      string                  `json:"total"`
	ByMethod   map[string]string       `json:"by_method"`
	Records    []DepreciationRecordDTO `json:"records"`
}

type GroupStatisticsDTO struct {
	Group          string `json:"group"`
	AssetCount     int    `json:"asset_count"`
	TotalCost      string `json:"total_cost"`
	TotalWear      string `json:"total_wear"`
	TotalBookValue string `json:"total_book_value"`
}

type StatisticsDTO struct {
	TotalAssets      int                  `json:"total_assets"`
	ByStatus         map[string]int       `json:"by_status"`
	TotalInitialCost string               `json:"total_initial_cost"`
	TotalWear        string               `json:"total_wear"`
	TotalBookValue   string               `json:"total_book_value"`
	ByGroup          []GroupStatisticsDTO `json:"by_group"`
}

type WearRowDTO struct {
	Asset     string `json:"asset"`
	Name      string `json:"name"`
	Group     string `json:"group"`
	WearRatio string `json:"wear_ratio"`
	BookValue string `json:"book_value"`
}

// =============================================================================
// AUDIT
// =============================================================================

type FieldDiffDTO struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

type ChangeRecordDTO struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Actor     string         `json:"actor,omitempty"`
	Action    string         `json:"action"`
	Asset     string         `json:"asset"`
	Fields    []FieldDiffDTO `json:"fields,omitempty"`
	Note      string         `json:"note,omitempty"`
}

// ErrorResponse is the JSON shape of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
