/*
handlers.go - HTTP API handlers for the asset ledger

PURPOSE:

	Exposes the valuation engine via REST API. Handles HTTP
	request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:

	Groups:
	  GET    /api/groups                     List asset groups
	  POST   /api/groups                     Create or update a group

	Assets:
	  GET    /api/assets                     List assets (filterable)
	  POST   /api/assets                     Register asset with receipt
	  GET    /api/assets/{id}                Get asset snapshot
	  GET    /api/assets/{id}/records        Depreciation history
	  GET    /api/assets/{id}/entries        Ledger entries for the asset
	  GET    /api/assets/{id}/history        Business event documents
	  GET    /api/assets/{id}/audit          Change history

	Events:
	  POST   /api/assets/{id}/accrue         Single-asset accrual
	  POST   /api/assets/{id}/revalue        Fair-value revaluation
	  POST   /api/assets/{id}/improve        Improvement or repair
	  POST   /api/assets/{id}/transfer       Custody transfer
	  POST   /api/assets/{id}/dispose        Disposal
	  POST   /api/assets/{id}/conserve       Pause depreciation
	  POST   /api/assets/{id}/reactivate     Resume depreciation

	Accrual runs:
	  POST   /api/accruals/run               Whole-register monthly run

	Reports:
	  GET    /api/reports/depreciation       Period summary
	  GET    /api/reports/journal            Posting journal
	  GET    /api/reports/statistics         Register statistics
	  GET    /api/reports/wear               Wear report

ERROR HANDLING:

	Domain errors map to HTTP status:
	- 400: validation, invalid state, configuration
	- 404: unknown asset or group
	- 409: version conflict, period already accrued
	- 500: everything else

SECURITY NOTE:

	Currently NO authentication or authorization. The acting user is taken
	from the X-Actor header for the audit trail only.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/asset-ledger/assets"
	"github.com/warp/asset-ledger/money"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     assets.TxStore
	Processor *assets.Processor
	Reporter  *assets.Reporter
	Run       *assets.AccrualRun
}

// NewHandler wires a handler around a store and an auditor.
func NewHandler(store assets.TxStore, auditor assets.Auditor) *Handler {
	proc := &assets.Processor{Store: store, Auditor: auditor}
	return &Handler{
		Store:     store,
		Processor: proc,
		Reporter:  &assets.Reporter{Store: store},
		Run:       &assets.AccrualRun{Processor: proc, Store: store, Workers: 4},
	}
}

// actor identifies the acting user for the audit trail.
func actor(r *http.Request) string {
	if a := r.Header.Get("X-Actor"); a != "" {
		return a
	}
	return "system"
}

// =============================================================================
// GROUP HANDLERS
// =============================================================================

// ListGroups returns all asset groups.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Store.ListGroups(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list groups", err)
		return
	}

	dtos := make([]GroupDTO, len(groups))
	for i, g := range groups {
		dtos[i] = toGroupDTO(g)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateGroup creates or updates an asset group.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Code == "" || req.AccountNumber == "" || req.DepreciationAccount == "" {
		writeError(w, http.StatusBadRequest, "code, account_number and depreciation_account are required", nil)
		return
	}

	g := assets.AssetGroup{
		Code:                assets.GroupCode(req.Code),
		Name:                req.Name,
		AccountNumber:       req.AccountNumber,
		DepreciationAccount: req.DepreciationAccount,
		MinUsefulLifeMonths: req.MinUsefulLifeMonths,
	}
	if err := h.Store.SaveGroup(r.Context(), g); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save group", err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupDTO(g))
}

// =============================================================================
// ASSET HANDLERS
// =============================================================================

// ListAssets returns assets matching the query filters.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	f := assets.AssetFilter{
		Group:    assets.GroupCode(r.URL.Query().Get("group")),
		Status:   assets.Status(r.URL.Query().Get("status")),
		Method:   assets.DepreciationMethod(r.URL.Query().Get("method")),
		Location: r.URL.Query().Get("location"),
	}

	list, err := h.Store.ListAssets(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assets", err)
		return
	}

	dtos := make([]AssetDTO, len(list))
	for i, a := range list {
		dtos[i] = toAssetDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RegisterAsset creates a new asset and its receipt posting.
func (h *Handler) RegisterAsset(w http.ResponseWriter, r *http.Request) {
	var req RegisterAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	a, receipt, err := assetFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid asset", err)
		return
	}

	created, err := h.Processor.RegisterAsset(r.Context(), a, receipt, actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssetDTO(created))
}

// GetAsset returns one asset snapshot.
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	a, err := h.Store.GetAsset(r.Context(), inventoryParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(a))
}

// GetAssetRecords returns the asset's depreciation history.
func (h *Handler) GetAssetRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.RecordsByAsset(r.Context(), inventoryParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]DepreciationRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAssetEntries returns the ledger entries referencing the asset.
func (h *Handler) GetAssetEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.Entries(r.Context(), assets.EntryFilter{Asset: inventoryParam(r)})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// GetAssetHistory returns the asset's business event documents: the
// receipt, every revaluation, improvement, transfer and disposal.
func (h *Handler) GetAssetHistory(w http.ResponseWriter, r *http.Request) {
	n := inventoryParam(r)
	if _, err := h.Store.GetAsset(r.Context(), n); err != nil {
		writeDomainError(w, err)
		return
	}
	history, err := h.Store.EventHistory(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load event history", err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryDTO(history))
}

// GetAssetAudit returns the asset's change history.
func (h *Handler) GetAssetAudit(w http.ResponseWriter, r *http.Request) {
	if h.Processor.Auditor == nil {
		writeJSON(w, http.StatusOK, []ChangeRecordDTO{})
		return
	}
	changes, err := h.Processor.Auditor.Changes(r.Context(), inventoryParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load audit trail", err)
		return
	}

	dtos := make([]ChangeRecordDTO, len(changes))
	for i, c := range changes {
		dtos[i] = toChangeDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

// Accrue runs one asset's depreciation for one period.
func (h *Handler) Accrue(w http.ResponseWriter, r *http.Request) {
	var req AccrueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	period, err := money.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}

	var in assets.AccrualInput
	if req.UnitsProduced != "" {
		units, err := money.RatioFromString(req.UnitsProduced)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid units_produced", err)
			return
		}
		in.UnitsProduced = &units
	}

	rec, err := h.Processor.AccrueDepreciation(r.Context(), inventoryParam(r), period, in, actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rec == nil {
		// Eligible-but-zero and ineligible assets are a skip, not an error.
		writeJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(*rec))
}

// Revalue adjusts an asset to fair value.
func (h *Handler) Revalue(w http.ResponseWriter, r *http.Request) {
	var req RevalueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	fair, err := money.FromString(req.FairValue)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fair_value", err)
		return
	}

	rev := assets.Revaluation{
		FairValue: fair,
		Document:  documentFrom(req.DocumentNumber, req.DocumentDate),
	}
	applied, err := h.Processor.Revalue(r.Context(), inventoryParam(r), rev, actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRevaluationDTO(*applied))
}

// Improve records capital or current work on an asset.
func (h *Handler) Improve(w http.ResponseWriter, r *http.Request) {
	var req ImproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := money.FromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	imp := assets.Improvement{
		Type:           assets.ImprovementType(req.Type),
		Amount:         amount,
		Description:    req.Description,
		IncreasesValue: req.IncreasesValue,
		ExpenseAccount: req.ExpenseAccount,
		Contractor:     req.Contractor,
		Document:       documentFrom(req.DocumentNumber, req.DocumentDate),
	}
	if err := h.Processor.Improve(r.Context(), inventoryParam(r), imp, actor(r)); err != nil {
		writeDomainError(w, err)
		return
	}

	a, err := h.Store.GetAsset(r.Context(), inventoryParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(a))
}

// Transfer moves custody of an asset.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	t := assets.Transfer{
		ToLocation: req.ToLocation,
		ToPerson:   req.ToPerson,
		Document:   documentFrom(req.DocumentNumber, req.DocumentDate),
	}
	if err := h.Processor.TransferAsset(r.Context(), inventoryParam(r), t, actor(r)); err != nil {
		writeDomainError(w, err)
		return
	}

	a, err := h.Store.GetAsset(r.Context(), inventoryParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(a))
}

// Dispose terminates an asset.
func (h *Handler) Dispose(w http.ResponseWriter, r *http.Request) {
	var req DisposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sale := money.Zero
	if req.SaleAmount != "" {
		var err error
		sale, err = money.FromString(req.SaleAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid sale_amount", err)
			return
		}
	}

	d := assets.Disposal{
		Type:       assets.DisposalType(req.Type),
		SaleAmount: sale,
		Reason:     req.Reason,
		Document:   documentFrom(req.DocumentNumber, req.DocumentDate),
	}
	applied, err := h.Processor.Dispose(r.Context(), inventoryParam(r), d, actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDisposalDTO(*applied))
}

// Conserve pauses depreciation.
func (h *Handler) Conserve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Processor.Conserve)
}

// Reactivate resumes depreciation.
func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Processor.Reactivate)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, assets.InventoryNumber, string) error) {
	n := inventoryParam(r)
	if err := apply(r.Context(), n, actor(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	a, err := h.Store.GetAsset(r.Context(), n)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(a))
}

// =============================================================================
// ACCRUAL RUN
// =============================================================================

// RunAccrual executes one period over every active asset.
func (h *Handler) RunAccrual(w http.ResponseWriter, r *http.Request) {
	var req RunAccrualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	period, err := money.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}

	volumes := make(map[assets.InventoryNumber]money.Ratio, len(req.Volumes))
	for n, v := range req.Volumes {
		units, err := money.RatioFromString(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid units for asset "+n, err)
			return
		}
		volumes[assets.InventoryNumber(n)] = units
	}

	result, err := h.Run.Execute(r.Context(), period, volumes, actor(r))
	if err != nil && result == nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRunResultDTO(result))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// DepreciationSummary returns one period's totals.
func (h *Handler) DepreciationSummary(w http.ResponseWriter, r *http.Request) {
	period, err := money.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}

	summary, err := h.Reporter.DepreciationSummary(r.Context(), period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build summary", err)
		return
	}

	byMethod := make(map[string]string, len(summary.ByMethod))
	for m, total := range summary.ByMethod {
		byMethod[string(m)] = total.String()
	}
	records := make([]DepreciationRecordDTO, len(summary.Records))
	for i, rec := range summary.Records {
		records[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, DepreciationSummaryDTO{
		Period:     summary.Period.String(),
		AssetCount: summary.AssetCount,
		Total:      summary.Total.String(),
		ByMethod:   byMethod,
		Records:    records,
	})
}

// Journal returns the posting stream, filtered by query parameters.
func (h *Handler) Journal(w http.ResponseWriter, r *http.Request) {
	f := assets.EntryFilter{
		Asset:   assets.InventoryNumber(r.URL.Query().Get("asset")),
		Type:    assets.EntryType(r.URL.Query().Get("type")),
		Account: r.URL.Query().Get("account"),
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
		f.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
		f.To = t
	}

	entries, err := h.Reporter.Journal(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load journal", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// Statistics returns register-wide totals.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reporter.Statistics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build statistics", err)
		return
	}

	byStatus := make(map[string]int, len(stats.ByStatus))
	for s, c := range stats.ByStatus {
		byStatus[string(s)] = c
	}
	byGroup := make([]GroupStatisticsDTO, len(stats.ByGroup))
	for i, g := range stats.ByGroup {
		byGroup[i] = GroupStatisticsDTO{
			Group:          string(g.Group),
			AssetCount:     g.AssetCount,
			TotalCost:      g.TotalCost.String(),
			TotalWear:      g.TotalWear.String(),
			TotalBookValue: g.TotalBookValue.String(),
		}
	}
	writeJSON(w, http.StatusOK, StatisticsDTO{
		TotalAssets:      stats.TotalAssets,
		ByStatus:         byStatus,
		TotalInitialCost: stats.TotalInitialCost.String(),
		TotalWear:        stats.TotalWear.String(),
		TotalBookValue:   stats.TotalBookValue.String(),
		ByGroup:          byGroup,
	})
}

// WearReport lists assets worn past the threshold (default 0.9).
func (h *Handler) WearReport(w http.ResponseWriter, r *http.Request) {
	threshold := money.RatioFromInt(9, 10)
	if t := r.URL.Query().Get("threshold"); t != "" {
		parsed, err := money.RatioFromString(t)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid threshold", err)
			return
		}
		threshold = parsed
	}

	rows, err := h.Reporter.WearReport(r.Context(), threshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build wear report", err)
		return
	}

	dtos := make([]WearRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = WearRowDTO{
			Asset:     string(row.Asset),
			Name:      row.Name,
			Group:     string(row.Group),
			WearRatio: row.WearRatio.String(),
			BookValue: row.BookValue.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// MAPPING AND HELPERS
// =============================================================================

func inventoryParam(r *http.Request) assets.InventoryNumber {
	return assets.InventoryNumber(chi.URLParam(r, "id"))
}

func documentFrom(number, date string) assets.Document {
	doc := assets.Document{Number: number, Date: time.Now()}
	if date != "" {
		if t, err := time.Parse("2006-01-02", date); err == nil {
			doc.Date = t
		}
	}
	return doc
}

func assetFromRequest(req RegisterAssetRequest) (*assets.Asset, assets.Receipt, error) {
	var zero assets.Receipt

	cost, err := money.FromString(req.InitialCost)
	if err != nil {
		return nil, zero, err
	}
	residual := money.Zero
	if req.ResidualValue != "" {
		if residual, err = money.FromString(req.ResidualValue); err != nil {
			return nil, zero, err
		}
	}
	incoming := money.Zero
	if req.IncomingDepreciation != "" {
		if incoming, err = money.FromString(req.IncomingDepreciation); err != nil {
			return nil, zero, err
		}
	}

	commissioning, err := time.Parse("2006-01-02", req.CommissioningDate)
	if err != nil {
		return nil, zero, err
	}
	deprStart := commissioning
	if req.DepreciationStartDate != "" {
		if deprStart, err = time.Parse("2006-01-02", req.DepreciationStartDate); err != nil {
			return nil, zero, err
		}
	}

	a := &assets.Asset{
		InventoryNumber:         assets.InventoryNumber(req.InventoryNumber),
		Name:                    req.Name,
		Group:                   assets.AssetGroup{Code: assets.GroupCode(req.Group)},
		InitialCost:             cost,
		ResidualValue:           residual,
		IncomingDepreciation:    incoming,
		AccumulatedDepreciation: incoming,
		Method:                  assets.DepreciationMethod(req.Method),
		UsefulLifeMonths:        req.UsefulLifeMonths,
		UnitsProducedToDate:     money.RatioFromInt(0, 1),
		CommissioningDate:       commissioning,
		DepreciationStartDate:   deprStart,
		Location:                req.Location,
		ResponsiblePerson:       req.ResponsiblePerson,
	}
	if req.DepreciationRate != "" {
		rate, err := money.RatioFromString(req.DepreciationRate)
		if err != nil {
			return nil, zero, err
		}
		a.DepreciationRate = &rate
	}
	if req.TotalProductionCapacity != "" {
		capacity, err := money.RatioFromString(req.TotalProductionCapacity)
		if err != nil {
			return nil, zero, err
		}
		a.TotalProductionCapacity = &capacity
	}

	receiptType := assets.ReceiptType(req.ReceiptType)
	if receiptType == "" {
		receiptType = assets.ReceiptPurchase
	}
	receipt := assets.Receipt{
		Type:     receiptType,
		Document: documentFrom(req.DocumentNumber, req.DocumentDate),
		Supplier: req.Supplier,
		Amount:   cost,
	}
	return a, receipt, nil
}

func toGroupDTO(g assets.AssetGroup) GroupDTO {
	return GroupDTO{
		Code:                string(g.Code),
		Name:                g.Name,
		AccountNumber:       g.AccountNumber,
		DepreciationAccount: g.DepreciationAccount,
		MinUsefulLifeMonths: g.MinUsefulLifeMonths,
	}
}

func toAssetDTO(a *assets.Asset) AssetDTO {
	dto := AssetDTO{
		InventoryNumber:         string(a.InventoryNumber),
		Name:                    a.Name,
		Group:                   string(a.Group.Code),
		Status:                  string(a.Status),
		InitialCost:             a.InitialCost.String(),
		ResidualValue:           a.ResidualValue.String(),
		IncomingDepreciation:    a.IncomingDepreciation.String(),
		AccumulatedDepreciation: a.AccumulatedDepreciation.String(),
		BookValue:               a.BookValue().String(),
		Method:                  string(a.Method),
		UsefulLifeMonths:        a.UsefulLifeMonths,
		CommissioningDate:       a.CommissioningDate.Format("2006-01-02"),
		DepreciationStartDate:   a.DepreciationStartDate.Format("2006-01-02"),
		Location:                a.Location,
		ResponsiblePerson:       a.ResponsiblePerson,
		FullyDepreciated:        a.FullyDepreciated(),
		Version:                 a.Version,
	}
	if a.DepreciationRate != nil {
		dto.DepreciationRate = a.DepreciationRate.String()
	}
	if a.TotalProductionCapacity != nil {
		dto.TotalProductionCapacity = a.TotalProductionCapacity.String()
		dto.UnitsProducedToDate = a.UnitsProducedToDate.String()
	}
	if a.DisposalDate != nil {
		dto.DisposalDate = a.DisposalDate.Format("2006-01-02")
	}
	return dto
}

func toRecordDTO(rec assets.DepreciationRecord) DepreciationRecordDTO {
	dto := DepreciationRecordDTO{
		Asset:           string(rec.Asset),
		Period:          rec.Period.String(),
		Method:          string(rec.Method),
		Amount:          rec.Amount.String(),
		BookValueBefore: rec.BookValueBefore.String(),
		BookValueAfter:  rec.BookValueAfter.String(),
		CreatedBy:       rec.CreatedBy,
	}
	if rec.UnitsProduced != nil {
		dto.UnitsProduced = rec.UnitsProduced.String()
	}
	if !rec.CreatedAt.IsZero() {
		dto.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toEntryDTOs(entries []assets.AccountEntry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = EntryDTO{
			ID:             string(e.ID),
			Type:           string(e.Type),
			Date:           e.Date.Format("2006-01-02"),
			DebitAccount:   e.DebitAccount,
			CreditAccount:  e.CreditAccount,
			Amount:         e.Amount.String(),
			Description:    e.Description,
			Asset:          string(e.Asset),
			DocumentNumber: e.Document.Number,
			CreatedBy:      e.CreatedBy,
		}
	}
	return dtos
}

func toRevaluationDTO(r assets.Revaluation) RevaluationDTO {
	dto := RevaluationDTO{
		Asset:           string(r.Asset),
		Direction:       string(r.Direction),
		FairValue:       r.FairValue.String(),
		OldInitialCost:  r.OldInitialCost.String(),
		NewInitialCost:  r.NewInitialCost.String(),
		OldDepreciation: r.OldDepreciation.String(),
		NewDepreciation: r.NewDepreciation.String(),
		OldBookValue:    r.OldBookValue.String(),
		NewBookValue:    r.NewBookValue.String(),
		Amount:          r.Amount.String(),
		DocumentNumber:  r.Document.Number,
		CreatedBy:       r.CreatedBy,
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toDisposalDTO(d assets.Disposal) DisposalDTO {
	dto := DisposalDTO{
		Asset:                   string(d.Asset),
		Type:                    string(d.Type),
		SaleAmount:              d.SaleAmount.String(),
		BookValueAtDisposal:     d.BookValueAtDisposal.String(),
		AccumulatedDepreciation: d.AccumulatedDepreciationAtDisposal.String(),
		GainLoss:                d.GainLoss().String(),
		Reason:                  d.Reason,
		DocumentNumber:          d.Document.Number,
		CreatedBy:               d.CreatedBy,
	}
	if !d.CreatedAt.IsZero() {
		dto.CreatedAt = d.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toHistoryDTO(h assets.History) HistoryDTO {
	dto := HistoryDTO{
		Receipts:     make([]ReceiptDTO, len(h.Receipts)),
		Revaluations: make([]RevaluationDTO, len(h.Revaluations)),
		Improvements: make([]ImprovementDTO, len(h.Improvements)),
		Transfers:    make([]TransferDTO, len(h.Transfers)),
		Disposals:    make([]DisposalDTO, len(h.Disposals)),
	}
	for i, r := range h.Receipts {
		dto.Receipts[i] = ReceiptDTO{
			Asset:          string(r.Asset),
			Type:           string(r.Type),
			Supplier:       r.Supplier,
			Amount:         r.Amount.String(),
			DocumentNumber: r.Document.Number,
			CreatedBy:      r.CreatedBy,
			CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		}
	}
	for i, r := range h.Revaluations {
		dto.Revaluations[i] = toRevaluationDTO(r)
	}
	for i, imp := range h.Improvements {
		dto.Improvements[i] = ImprovementDTO{
			Asset:          string(imp.Asset),
			Type:           string(imp.Type),
			Amount:         imp.Amount.String(),
			Description:    imp.Description,
			IncreasesValue: imp.IncreasesValue,
			ExpenseAccount: imp.ExpenseAccount,
			Contractor:     imp.Contractor,
			DocumentNumber: imp.Document.Number,
			CreatedBy:      imp.CreatedBy,
			CreatedAt:      imp.CreatedAt.Format(time.RFC3339),
		}
	}
	for i, t := range h.Transfers {
		dto.Transfers[i] = TransferDTO{
			Asset:          string(t.Asset),
			FromLocation:   t.FromLocation,
			ToLocation:     t.ToLocation,
			FromPerson:     t.FromPerson,
			ToPerson:       t.ToPerson,
			DocumentNumber: t.Document.Number,
			CreatedBy:      t.CreatedBy,
			CreatedAt:      t.CreatedAt.Format(time.RFC3339),
		}
	}
	for i, d := range h.Disposals {
		dto.Disposals[i] = toDisposalDTO(d)
	}
	return dto
}

func toChangeDTO(c assets.ChangeRecord) ChangeRecordDTO {
	fields := make([]FieldDiffDTO, len(c.Fields))
	for i, f := range c.Fields {
		fields[i] = FieldDiffDTO{Field: f.Field, Old: f.Old, New: f.New}
	}
	return ChangeRecordDTO{
		ID:        c.ID,
		Timestamp: c.Timestamp.Format(time.RFC3339),
		Actor:     c.Actor,
		Action:    string(c.Action),
		Asset:     string(c.Asset),
		Fields:    fields,
		Note:      c.Note,
	}
}

func toRunResultDTO(result *assets.RunResult) RunResultDTO {
	dto := RunResultDTO{
		Period:           result.Period.String(),
		Created:          make([]DepreciationRecordDTO, len(result.Created)),
		Skipped:          make([]string, len(result.Skipped)),
		Errors:           make([]AssetErrorDTO, len(result.Errors)),
		FullyDepreciated: make([]string, len(result.FullyDepreciated)),
	}
	for i, rec := range result.Created {
		dto.Created[i] = toRecordDTO(rec)
	}
	for i, n := range result.Skipped {
		dto.Skipped[i] = string(n)
	}
	for i, e := range result.Errors {
		dto.Errors[i] = AssetErrorDTO{Asset: string(e.Asset), Error: e.Err.Error()}
	}
	for i, n := range result.FullyDepreciated {
		dto.FullyDepreciated[i] = string(n)
	}
	return dto
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case assets.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, assets.ErrConflict), errors.Is(err, assets.ErrPeriodAccrued):
		writeError(w, http.StatusConflict, "Conflict", err)
	case assets.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
