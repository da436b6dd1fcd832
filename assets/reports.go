/*
reports.go - Read projections over the register and its streams

PURPOSE:

	Pure read models for operators and accountants. Nothing here writes:
	every projection is recomputed from the store on request.

PROJECTIONS:

	DepreciationSummary: one period's accruals, totaled and split by method
	Journal:             the posting stream, filtered
	Statistics:          register-wide counts and valuation totals
	WearReport:          assets worn past a threshold, most worn first

SEE ALSO:
  - store.go: the queries these are built on
*/
package assets

import (
	"context"
	"sort"

	"github.com/warp/asset-ledger/money"
)

// Reporter serves the read projections.
type Reporter struct {
	Store Store
}

// =============================================================================
// DEPRECIATION SUMMARY - One period's accruals
// =============================================================================

type DepreciationSummary struct {
	Period     money.Period
	AssetCount int
	Total      money.Money
	ByMethod   map[DepreciationMethod]money.Money
	Records    []DepreciationRecord
}

// DepreciationSummary totals one period's accrual records.
func (r *Reporter) DepreciationSummary(ctx context.Context, p money.Period) (*DepreciationSummary, error) {
	records, err := r.Store.RecordsByPeriod(ctx, p)
	if err != nil {
		return nil, err
	}

	summary := &DepreciationSummary{
		Period:   p,
		Total:    money.Zero,
		ByMethod: make(map[DepreciationMethod]money.Money),
	}
	for _, rec := range records {
		summary.AssetCount++
		summary.Total = summary.Total.Add(rec.Amount)
		summary.ByMethod[rec.Method] = summary.ByMethod[rec.Method].Add(rec.Amount)
	}
	summary.Records = records
	return summary, nil
}

// =============================================================================
// JOURNAL - The posting stream
// =============================================================================

// Journal returns account entries matching the filter, oldest first.
func (r *Reporter) Journal(ctx context.Context, f EntryFilter) ([]AccountEntry, error) {
	entries, err := r.Store.Entries(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries, nil
}

// =============================================================================
// STATISTICS - Register-wide totals
// =============================================================================

type GroupStatistics struct {
	Group          GroupCode
	AssetCount     int
	TotalCost      money.Money
	TotalWear      money.Money
	TotalBookValue money.Money
}

type Statistics struct {
	TotalAssets      int
	ByStatus         map[Status]int
	TotalInitialCost money.Money // active and conserved assets only
	TotalWear        money.Money
	TotalBookValue   money.Money
	ByGroup          []GroupStatistics
}

// Statistics aggregates the register. Disposed assets count toward
// ByStatus but not toward the valuation totals.
func (r *Reporter) Statistics(ctx context.Context) (*Statistics, error) {
	assets, err := r.Store.ListAssets(ctx, AssetFilter{})
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		ByStatus:         make(map[Status]int),
		TotalInitialCost: money.Zero,
		TotalWear:        money.Zero,
		TotalBookValue:   money.Zero,
	}
	byGroup := make(map[GroupCode]*GroupStatistics)

	for _, a := range assets {
		stats.TotalAssets++
		stats.ByStatus[a.Status]++
		if a.Status == StatusDisposed {
			continue
		}

		stats.TotalInitialCost = stats.TotalInitialCost.Add(a.InitialCost)
		stats.TotalWear = stats.TotalWear.Add(a.AccumulatedDepreciation)
		stats.TotalBookValue = stats.TotalBookValue.Add(a.BookValue())

		g, ok := byGroup[a.Group.Code]
		if !ok {
			g = &GroupStatistics{Group: a.Group.Code, TotalCost: money.Zero, TotalWear: money.Zero, TotalBookValue: money.Zero}
			byGroup[a.Group.Code] = g
		}
		g.AssetCount++
		g.TotalCost = g.TotalCost.Add(a.InitialCost)
		g.TotalWear = g.TotalWear.Add(a.AccumulatedDepreciation)
		g.TotalBookValue = g.TotalBookValue.Add(a.BookValue())
	}

	for _, g := range byGroup {
		stats.ByGroup = append(stats.ByGroup, *g)
	}
	sort.Slice(stats.ByGroup, func(i, j int) bool { return stats.ByGroup[i].Group < stats.ByGroup[j].Group })
	return stats, nil
}

// =============================================================================
// WEAR REPORT - Assets approaching end of life
// =============================================================================

type WearRow struct {
	Asset     InventoryNumber
	Name      string
	Group     GroupCode
	WearRatio money.Ratio
	BookValue money.Money
}

// WearReport lists non-disposed assets whose wear ratio is at or above
// the threshold (e.g. 0.9 for "worn past 90%"), most worn first.
func (r *Reporter) WearReport(ctx context.Context, threshold money.Ratio) ([]WearRow, error) {
	assets, err := r.Store.ListAssets(ctx, AssetFilter{})
	if err != nil {
		return nil, err
	}

	var rows []WearRow
	for _, a := range assets {
		if a.Status == StatusDisposed {
			continue
		}
		wear := a.WearRatio()
		if wear.Decimal().GreaterThanOrEqual(threshold.Decimal()) {
			rows = append(rows, WearRow{
				Asset:     a.InventoryNumber,
				Name:      a.Name,
				Group:     a.Group.Code,
				WearRatio: wear,
				BookValue: a.BookValue(),
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].WearRatio.Decimal().GreaterThan(rows[j].WearRatio.Decimal())
	})
	return rows, nil
}
