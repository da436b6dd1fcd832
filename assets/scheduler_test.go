package assets_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/asset-ledger/assets"
	"github.com/warp/asset-ledger/assets/store"
	"github.com/warp/asset-ledger/money"
)

func newTestRun(t *testing.T) (*assets.AccrualRun, *assets.Processor, *store.TxMemory) {
	t.Helper()
	p, mem := newTestProcessor(t)
	run := &assets.AccrualRun{Processor: p, Store: mem, Workers: 3}
	return run, p, mem
}

func registerNumbered(t *testing.T, p *assets.Processor, n assets.InventoryNumber, method assets.DepreciationMethod, cost string, life int) {
	t.Helper()
	a := newAsset(method, cost, "0.00", life)
	a.InventoryNumber = n
	a.Name = "Asset " + string(n)
	_, err := p.RegisterAsset(context.Background(), a, assets.Receipt{
		Type:     assets.ReceiptPurchase,
		Document: testDoc,
	}, "accountant")
	require.NoError(t, err)
}

func TestAccrualRun_CreatesOneRecordPerActiveAsset(t *testing.T) {
	// GIVEN: Three active straight-line assets
	// WHEN: Executing one period
	// THEN: Three records, deterministically ordered, no errors

	run, p, mem := newTestRun(t)
	ctx := context.Background()
	registerNumbered(t, p, "INV-0001", assets.MethodStraightLine, "120000.00", 120)
	registerNumbered(t, p, "INV-0002", assets.MethodStraightLine, "60000.00", 60)
	registerNumbered(t, p, "INV-0003", assets.MethodAcceleratedReducing, "24000.00", 24)

	result, err := run.Execute(ctx, period(2025, time.June), nil, "system")
	require.NoError(t, err)
	require.Len(t, result.Created, 3)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.Errors)

	// Sorted by inventory number for diffable output.
	assert.Equal(t, assets.InventoryNumber("INV-0001"), result.Created[0].Asset)
	assert.Equal(t, assets.InventoryNumber("INV-0003"), result.Created[2].Asset)

	recs, err := mem.RecordsByPeriod(ctx, period(2025, time.June))
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestAccrualRun_RerunIsIdempotent(t *testing.T) {
	// GIVEN: A period that has already been run
	// WHEN: Running it again
	// THEN: Every asset is skipped and no new records appear

	run, p, mem := newTestRun(t)
	ctx := context.Background()
	registerNumbered(t, p, "INV-0001", assets.MethodStraightLine, "120000.00", 120)
	registerNumbered(t, p, "INV-0002", assets.MethodStraightLine, "60000.00", 60)

	first, err := run.Execute(ctx, period(2025, time.June), nil, "system")
	require.NoError(t, err)
	require.Len(t, first.Created, 2)

	second, err := run.Execute(ctx, period(2025, time.June), nil, "system")
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Len(t, second.Skipped, 2)
	assert.Empty(t, second.Errors, "an already-accrued period is a skip, not an error")

	recs, err := mem.RecordsByPeriod(ctx, period(2025, time.June))
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestAccrualRun_OneBrokenAssetNeverAbortsTheBatch(t *testing.T) {
	// GIVEN: A healthy asset and a production asset missing its capacity
	// WHEN: Running with volumes for the broken one
	// THEN: The healthy accrual commits; the broken one lands in Errors

	run, p, mem := newTestRun(t)
	ctx := context.Background()
	registerNumbered(t, p, "INV-0001", assets.MethodStraightLine, "120000.00", 120)

	// Bypass registration validation to simulate legacy misconfigured data.
	broken := newAsset(assets.MethodProduction, "50000.00", "0.00", 60)
	broken.InventoryNumber = "INV-0002"
	require.NoError(t, mem.CreateAsset(ctx, broken))

	volumes := map[assets.InventoryNumber]money.Ratio{
		"INV-0002": money.RatioFromInt(100, 1),
	}
	result, err := run.Execute(ctx, period(2025, time.June), volumes, "system")
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	assert.Equal(t, assets.InventoryNumber("INV-0001"), result.Created[0].Asset)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, assets.InventoryNumber("INV-0002"), result.Errors[0].Asset)
	assert.ErrorIs(t, result.Errors[0].Err, assets.ErrConfiguration)
}

func TestAccrualRun_ProductionVolumesFlowThrough(t *testing.T) {
	run, p, mem := newTestRun(t)
	ctx := context.Background()

	a := newAsset(assets.MethodProduction, "100000.00", "0.00", 120)
	a.InventoryNumber = "INV-0005"
	capacity := money.RatioFromInt(50000, 1)
	a.TotalProductionCapacity = &capacity
	_, err := p.RegisterAsset(ctx, a, assets.Receipt{Type: assets.ReceiptPurchase, Document: testDoc}, "accountant")
	require.NoError(t, err)

	volumes := map[assets.InventoryNumber]money.Ratio{
		"INV-0005": money.RatioFromInt(1200, 1),
	}
	result, err := run.Execute(ctx, period(2025, time.June), volumes, "system")
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Equal(t, "2400.00", result.Created[0].Amount.String())

	stored, err := mem.GetAsset(ctx, "INV-0005")
	require.NoError(t, err)
	assert.Equal(t, "1200", stored.UnitsProducedToDate.String())
}

func TestAccrualRun_ProductionWithoutVolumesIsSkipped(t *testing.T) {
	// No units this period means a zero accrual, reported as a skip.
	run, p, _ := newTestRun(t)
	ctx := context.Background()

	a := newAsset(assets.MethodProduction, "100000.00", "0.00", 120)
	a.InventoryNumber = "INV-0005"
	capacity := money.RatioFromInt(50000, 1)
	a.TotalProductionCapacity = &capacity
	_, err := p.RegisterAsset(ctx, a, assets.Receipt{Type: assets.ReceiptPurchase, Document: testDoc}, "accountant")
	require.NoError(t, err)

	result, err := run.Execute(ctx, period(2025, time.June), nil, "system")
	require.NoError(t, err)
	assert.Empty(t, result.Created)
	assert.Equal(t, []assets.InventoryNumber{"INV-0005"}, result.Skipped)
}

func TestAccrualRun_ReportsAssetsReachingTheFloor(t *testing.T) {
	// GIVEN: An asset one month away from full depreciation
	// WHEN: Running the period
	// THEN: It appears in FullyDepreciated

	run, p, mem := newTestRun(t)
	ctx := context.Background()
	registerNumbered(t, p, "INV-0001", assets.MethodStraightLine, "120000.00", 120)

	a, err := mem.GetAsset(ctx, "INV-0001")
	require.NoError(t, err)
	a.AccumulatedDepreciation = money.MustParse("119000.00")
	require.NoError(t, mem.UpdateAsset(ctx, a, a.Version))

	result, err := run.Execute(ctx, period(2025, time.June), nil, "system")
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Equal(t, "1000.00", result.Created[0].Amount.String())
	assert.Equal(t, []assets.InventoryNumber{"INV-0001"}, result.FullyDepreciated)

	// Next period the asset just skips.
	next, err := run.Execute(ctx, period(2025, time.July), nil, "system")
	require.NoError(t, err)
	assert.Empty(t, next.Created)
	assert.Equal(t, []assets.InventoryNumber{"INV-0001"}, next.Skipped)
}

func TestAccrualRun_CanceledContextSurfacesAfterPartialResult(t *testing.T) {
	run, _, _ := newTestRun(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := run.Execute(ctx, period(2025, time.June), nil, "system")
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result, "partial result still comes back")
}

func TestAccrualRun_InvalidPeriodRejected(t *testing.T) {
	run, _, _ := newTestRun(t)

	_, err := run.Execute(context.Background(), money.Period{}, nil, "system")
	assert.ErrorIs(t, err, assets.ErrValidation)
}
