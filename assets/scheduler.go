/*
scheduler.go - Monthly accrual run over the whole register

PURPOSE:

	RunAccrual executes one period's depreciation for every asset, with
	partial-success semantics: one broken asset never aborts the batch.
	The run is idempotent - re-running a processed period skips the
	assets that already carry a record for it.

DESIGN:
  - Bounded worker pool; each asset commits independently through the
    Processor, so a batch failure leaves no half-applied asset
  - Production volumes are supplied per inventory number for the period
  - Cancellation is honored between assets: a canceled context stops
    dispatching, workers finish the asset in flight
  - Assets that reach the residual floor this period are reported so
    the operator can review near-end-of-life stock

USAGE:

	run := &AccrualRun{Processor: proc, Store: store, Workers: 4}
	result, err := run.Execute(ctx, period, volumes, "system")

SEE ALSO:
  - processor.go: the per-asset accrual this fans out to
  - reports.go: the per-period summary read back after a run
*/
package assets

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/warp/asset-ledger/money"
)

// =============================================================================
// RESULT
// =============================================================================

// AssetError pairs an inventory number with the reason its accrual failed.
type AssetError struct {
	Asset InventoryNumber
	Err   error
}

// RunResult summarizes one batch execution.
type RunResult struct {
	Period  money.Period
	Created []DepreciationRecord
	Skipped []InventoryNumber // already accrued, ineligible or zero amount
	Errors  []AssetError

	// FullyDepreciated lists assets whose book value reached the
	// residual floor during this run.
	FullyDepreciated []InventoryNumber
}

// =============================================================================
// ACCRUAL RUN
// =============================================================================

// AccrualRun fans one period's depreciation out over the register.
type AccrualRun struct {
	Processor *Processor
	Store     Store

	// Workers bounds the pool; values below 1 mean serial execution.
	Workers int
}

// Execute runs the period for every active asset. Volumes supplies the
// units produced this period for production-method assets, keyed by
// inventory number. The returned error is only for failures to start
// the run at all; per-asset failures land in RunResult.Errors.
func (r *AccrualRun) Execute(ctx context.Context, period money.Period, volumes map[InventoryNumber]money.Ratio, actor string) (*RunResult, error) {
	if !period.Valid() {
		return nil, &ValidationError{Field: "period", Message: "invalid accrual period"}
	}

	assets, err := r.Store.ListAssets(ctx, AssetFilter{Status: StatusActive})
	if err != nil {
		return nil, err
	}

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	log.Printf("[AccrualRun] Period %s: %d active assets, %d workers", period, len(assets), workers)

	type outcome struct {
		asset            InventoryNumber
		record           *DepreciationRecord
		err              error
		fullyDepreciated bool
	}

	jobs := make(chan *Asset)
	outcomes := make(chan outcome, len(assets))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range jobs {
				var in AccrualInput
				if units, ok := volumes[a.InventoryNumber]; ok {
					u := units
					in.UnitsProduced = &u
				}

				rec, err := r.Processor.AccrueDepreciation(ctx, a.InventoryNumber, period, in, actor)
				out := outcome{asset: a.InventoryNumber, record: rec, err: err}
				if err == nil && rec != nil && rec.BookValueAfter.Equal(a.ResidualValue) {
					out.fullyDepreciated = true
				}
				outcomes <- out
			}
		}()
	}

	// Dispatch until done or canceled. Workers finish the asset in
	// flight; nothing half-applies because each asset commits atomically.
	dispatched := 0
dispatch:
	for _, a := range assets {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- a:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	result := &RunResult{Period: period}
	for out := range outcomes {
		switch {
		case errors.Is(out.err, ErrPeriodAccrued):
			// Already accrued: the idempotent skip.
			result.Skipped = append(result.Skipped, out.asset)
		case out.err != nil:
			// Configuration errors and lost optimistic races both land
			// here; IsRetryable tells the operator which may be re-run.
			result.Errors = append(result.Errors, AssetError{Asset: out.asset, Err: out.err})
		case out.record == nil:
			result.Skipped = append(result.Skipped, out.asset)
		default:
			result.Created = append(result.Created, *out.record)
			if out.fullyDepreciated {
				result.FullyDepreciated = append(result.FullyDepreciated, out.asset)
			}
		}
	}

	sortResult(result)

	if err := ctx.Err(); err != nil {
		log.Printf("[AccrualRun] Period %s canceled after %d/%d assets", period, dispatched, len(assets))
		return result, err
	}

	log.Printf("[AccrualRun] Period %s completed: %d created, %d skipped, %d errors, %d fully depreciated",
		period, len(result.Created), len(result.Skipped), len(result.Errors), len(result.FullyDepreciated))
	return result, nil
}

// Deterministic ordering makes run output diffable across re-runs.
func sortResult(r *RunResult) {
	sort.Slice(r.Created, func(i, j int) bool { return r.Created[i].Asset < r.Created[j].Asset })
	sort.Slice(r.Skipped, func(i, j int) bool { return r.Skipped[i] < r.Skipped[j] })
	sort.Slice(r.Errors, func(i, j int) bool { return r.Errors[i].Asset < r.Errors[j].Asset })
	sort.Slice(r.FullyDepreciated, func(i, j int) bool { return r.FullyDepreciated[i] < r.FullyDepreciated[j] })
}
