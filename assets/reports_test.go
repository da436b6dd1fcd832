package assets_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/asset-ledger/assets"
	"github.com/warp/asset-ledger/money"
)

func newTestReporter(t *testing.T) (*assets.Reporter, *assets.Processor, *assets.AccrualRun) {
	t.Helper()
	run, p, mem := newTestRun(t)
	return &assets.Reporter{Store: mem}, p, run
}

func TestReporter_DepreciationSummary_TotalsByMethod(t *testing.T) {
	// GIVEN: A straight-line and an accelerated asset accrued for one period
	// WHEN: Summarizing that period
	// THEN: The total and the per-method split both add up

	reporter, p, run := newTestReporter(t)
	ctx := context.Background()
	// 1000.00 straight line, 2000.00 accelerated for 2025-06.
	registerNumbered(t, p, "INV-0001", assets.MethodStraightLine, "120000.00", 120)
	registerNumbered(t, p, "INV-0002", assets.MethodAcceleratedReducing, "24000.00", 24)

	_, err := run.Execute(ctx, period(2025, time.June), nil, "system")
	require.NoError(t, err)

	summary, err := reporter.DepreciationSummary(ctx, period(2025, time.June))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.AssetCount)
	assert.Equal(t, "3000.00", summary.Total.String())
	assert.Equal(t, "1000.00", summary.ByMethod[assets.MethodStraightLine].String())
	assert.Equal(t, "2000.00", summary.ByMethod[assets.MethodAcceleratedReducing].String())
}

func TestReporter_DepreciationSummary_EmptyPeriod(t *testing.T) {
	reporter, _, _ := newTestReporter(t)

	summary, err := reporter.DepreciationSummary(context.Background(), period(2030, time.January))
	require.NoError(t, err)
	assert.Zero(t, summary.AssetCount)
	assert.True(t, summary.Total.IsZero())
}

func TestReporter_Journal_OldestFirst(t *testing.T) {
	reporter, p, run := newTestReporter(t)
	ctx := context.Background()
	registerNumbered(t, p, "INV-0001", assets.MethodStraightLine, "120000.00", 120)

	_, err := run.Execute(ctx, period(2025, time.July), nil, "system")
	require.NoError(t, err)
	_, err = run.Execute(ctx, period(2025, time.June), nil, "system")
	require.NoError(t, err)

	entries, err := reporter.Journal(ctx, assets.EntryFilter{Type: assets.EntryDepreciation})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Date.Before(entries[1].Date), "journal is oldest first")
}

func TestReporter_Statistics_ExcludesDisposedFromValuation(t *testing.T) {
	// GIVEN: Two active assets and one disposed
	// WHEN: Aggregating statistics
	// THEN: The disposed asset counts by status but not in the totals

	reporter, p, _ := newTestReporter(t)
	ctx := context.Background()
	registerNumbered(t, p, "INV-0001", assets.MethodStraightLine, "120000.00", 120)
	registerNumbered(t, p, "INV-0002", assets.MethodStraightLine, "60000.00", 60)
	registerNumbered(t, p, "INV-0003", assets.MethodStraightLine, "30000.00", 60)

	_, err := p.Dispose(ctx, "INV-0003", assets.Disposal{
		Type:     assets.DisposalLiquidation,
		Document: testDoc,
	}, "accountant")
	require.NoError(t, err)

	stats, err := reporter.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalAssets)
	assert.Equal(t, 2, stats.ByStatus[assets.StatusActive])
	assert.Equal(t, 1, stats.ByStatus[assets.StatusDisposed])
	assert.Equal(t, "180000.00", stats.TotalInitialCost.String())
	assert.Equal(t, "180000.00", stats.TotalBookValue.String())

	require.Len(t, stats.ByGroup, 1)
	assert.Equal(t, 2, stats.ByGroup[0].AssetCount)
}

func TestReporter_WearReport_ThresholdAndOrder(t *testing.T) {
	// GIVEN: Assets worn 95%, 90% and 10%
	// WHEN: Reporting with a 0.9 threshold
	// THEN: Two rows, most worn first

	reporter, p, _ := newTestReporter(t)
	ctx := context.Background()
	registerNumbered(t, p, "INV-0001", assets.MethodStraightLine, "100000.00", 120)
	registerNumbered(t, p, "INV-0002", assets.MethodStraightLine, "100000.00", 120)
	registerNumbered(t, p, "INV-0003", assets.MethodStraightLine, "100000.00", 120)

	wearDown := func(n assets.InventoryNumber, worn string) {
		a, err := reporter.Store.GetAsset(ctx, n)
		require.NoError(t, err)
		a.AccumulatedDepreciation = money.MustParse(worn)
		require.NoError(t, reporter.Store.UpdateAsset(ctx, a, a.Version))
	}
	wearDown("INV-0001", "90000.00")
	wearDown("INV-0002", "95000.00")
	wearDown("INV-0003", "10000.00")

	rows, err := reporter.WearReport(ctx, money.RatioFromInt(9, 10))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, assets.InventoryNumber("INV-0002"), rows[0].Asset)
	assert.Equal(t, assets.InventoryNumber("INV-0001"), rows[1].Asset)
	assert.Equal(t, "5000.00", rows[0].BookValue.String())
}
