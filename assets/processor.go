/*
processor.go - Event processors: the single write path for snapshots

PURPOSE:

	One processor method per business event. Every method follows the same
	shape:
	1. Load the snapshot (and remember it for the audit diff)
	2. Validate and apply the pure mutation (valuation.go)
	3. Generate the posting set (posting.go)
	4. Commit snapshot + event document + records + entries in ONE
	   transaction, with the optimistic version check
	5. Emit the audit record (fire-and-forget; failure is logged, never
	   rolls the event back)

CONCURRENCY:

	Two concurrent events against the same asset race on the version
	column. The loser gets ErrConflict and may re-read and retry; the
	snapshot is never double-applied.

SEE ALSO:
  - scheduler.go: batch accrual built on AccrueDepreciation
  - store.go: the TxStore contract this relies on
*/
package assets

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/warp/asset-ledger/money"
)

// =============================================================================
// PROCESSOR
// =============================================================================

// Processor executes business events against asset snapshots. It is the
// only component that writes snapshots.
type Processor struct {
	Store   TxStore
	Auditor Auditor

	// ExpenseAccount receives depreciation charges; empty means the
	// default administrative expense account.
	ExpenseAccount string

	// Clock is stubbed in tests; nil means time.Now.
	Clock func() time.Time

	postings PostingGenerator
}

func (p *Processor) now() time.Time {
	if p.Clock != nil {
		return p.Clock()
	}
	return time.Now()
}

func (p *Processor) stamp(entries []AccountEntry) []AccountEntry {
	now := p.now()
	for i := range entries {
		entries[i].ID = EntryID(uuid.NewString())
		entries[i].CreatedAt = now
	}
	return entries
}

// audit emits a change record. Audit is observational: a failure here is
// logged for the operator and never fails the event.
func (p *Processor) audit(ctx context.Context, action AuditAction, asset InventoryNumber, actor, note string, fields []FieldDiff) {
	if p.Auditor == nil {
		return
	}
	rec := ChangeRecord{
		ID:        uuid.NewString(),
		Timestamp: p.now(),
		Actor:     actor,
		Action:    action,
		Asset:     asset,
		Fields:    fields,
		Note:      note,
	}
	if err := p.Auditor.RecordChange(ctx, rec); err != nil {
		log.Printf("[Processor] Audit write failed for %s on asset %s: %v", action, asset, err)
	}
}

// =============================================================================
// RECEIPT - Register a new asset
// =============================================================================

// RegisterAsset validates and persists a new snapshot together with its
// receipt posting. The asset starts active at version 1.
func (p *Processor) RegisterAsset(ctx context.Context, a *Asset, r Receipt, actor string) (*Asset, error) {
	// 1. The group must exist; its accounts drive every posting.
	group, err := p.Store.GetGroup(ctx, a.Group.Code)
	if err != nil {
		return nil, err
	}
	a.Group = group

	// 2. Cross-field invariants.
	a.Status = StatusActive
	a.Version = 1
	if err := ValidateAsset(a); err != nil {
		return nil, err
	}

	// 3. Receipt posting: Dt group asset account, Kt capital investments.
	r.ID = EventID(uuid.NewString())
	r.Asset = a.InventoryNumber
	r.CreatedBy = actor
	r.CreatedAt = p.now()
	if r.Amount.IsZero() {
		r.Amount = a.InitialCost
	}
	entries := p.stamp(p.postings.ForReceipt(a, &r, actor))

	// 4. Atomic commit: snapshot, receipt document and postings together.
	err = p.Store.WithTx(ctx, func(s Store) error {
		if err := s.CreateAsset(ctx, a); err != nil {
			return err
		}
		if err := s.AppendReceipt(ctx, r); err != nil {
			return err
		}
		return s.AppendEntries(ctx, entries)
	})
	if err != nil {
		return nil, err
	}

	p.audit(ctx, AuditAssetCreated, a.InventoryNumber, actor,
		fmt.Sprintf("registered via %s for %s", r.Type, r.Amount), nil)
	return a, nil
}

// =============================================================================
// DEPRECIATION - Single-asset accrual
// =============================================================================

// AccrueDepreciation runs one asset's accrual for one period. Ineligible
// assets (inactive, start date after the period, fully depreciated)
// return (nil, nil): skipped, not an error. A period that was already
// accrued returns ErrPeriodAccrued.
func (p *Processor) AccrueDepreciation(ctx context.Context, n InventoryNumber, period money.Period, in AccrualInput, actor string) (*DepreciationRecord, error) {
	if !period.Valid() {
		return nil, &ValidationError{Field: "period", Message: "invalid accrual period"}
	}

	a, err := p.Store.GetAsset(ctx, n)
	if err != nil {
		return nil, err
	}

	// Idempotence: one record per (asset, period), ever.
	exists, err := p.Store.RecordExists(ctx, n, period)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &PeriodAccruedError{Asset: n, Period: period}
	}

	amount, err := MonthlyDepreciation(a, period, in)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, nil
	}

	before := *a
	rec, err := a.ApplyAccrual(period, amount, in, actor)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = p.now()

	entries := p.stamp(p.postings.ForDepreciation(a, rec, p.ExpenseAccount, actor))

	expected := a.Version
	a.Touch()
	err = p.Store.WithTx(ctx, func(s Store) error {
		if err := s.AppendRecord(ctx, *rec); err != nil {
			return err
		}
		if err := s.AppendEntries(ctx, entries); err != nil {
			return err
		}
		return s.UpdateAsset(ctx, a, expected)
	})
	if err != nil {
		return nil, err
	}

	p.audit(ctx, AuditDepreciationAccrued, n, actor,
		fmt.Sprintf("period %s: %s (%s)", period, rec.Amount, rec.Method), DiffAssets(&before, a))
	return rec, nil
}

// =============================================================================
// REVALUATION
// =============================================================================

// Revalue adjusts an asset to fair value using the proportional method.
func (p *Processor) Revalue(ctx context.Context, n InventoryNumber, r Revaluation, actor string) (*Revaluation, error) {
	a, err := p.Store.GetAsset(ctx, n)
	if err != nil {
		return nil, err
	}

	before := *a
	r.ID = EventID(uuid.NewString())
	r.Asset = n
	r.CreatedBy = actor
	r.CreatedAt = p.now()
	applied, err := a.ApplyRevaluation(r)
	if err != nil {
		return nil, err
	}

	entries := p.stamp(p.postings.ForRevaluation(a, applied, actor))

	expected := a.Version
	a.Touch()
	err = p.Store.WithTx(ctx, func(s Store) error {
		if err := s.AppendRevaluation(ctx, *applied); err != nil {
			return err
		}
		if err := s.AppendEntries(ctx, entries); err != nil {
			return err
		}
		return s.UpdateAsset(ctx, a, expected)
	})
	if err != nil {
		return nil, err
	}

	p.audit(ctx, AuditAssetRevalued, n, actor,
		fmt.Sprintf("%s revaluation to fair value %s (delta %s)", applied.Direction, applied.FairValue, applied.Amount),
		DiffAssets(&before, a))
	return applied, nil
}

// =============================================================================
// IMPROVEMENT
// =============================================================================

// Improve records capital or current work on an asset. Capitalized work
// raises initial cost; other work only produces an expense posting.
func (p *Processor) Improve(ctx context.Context, n InventoryNumber, imp Improvement, actor string) error {
	a, err := p.Store.GetAsset(ctx, n)
	if err != nil {
		return err
	}

	before := *a
	imp.ID = EventID(uuid.NewString())
	imp.Asset = n
	imp.CreatedBy = actor
	imp.CreatedAt = p.now()
	if err := a.ApplyImprovement(imp); err != nil {
		return err
	}

	entries := p.stamp(p.postings.ForImprovement(a, &imp, actor))

	expected := a.Version
	a.Touch()
	err = p.Store.WithTx(ctx, func(s Store) error {
		if err := s.AppendImprovement(ctx, imp); err != nil {
			return err
		}
		if err := s.AppendEntries(ctx, entries); err != nil {
			return err
		}
		return s.UpdateAsset(ctx, a, expected)
	})
	if err != nil {
		return err
	}

	p.audit(ctx, AuditAssetImproved, n, actor,
		fmt.Sprintf("%s for %s (capitalized=%t)", imp.Type, imp.Amount, imp.IncreasesValue),
		DiffAssets(&before, a))
	return nil
}

// =============================================================================
// TRANSFER - Custody only, no posting
// =============================================================================

// TransferAsset moves custody. Valuation is untouched and no ledger
// entry results; the transfer document and the audit trail carry the
// custody delta.
func (p *Processor) TransferAsset(ctx context.Context, n InventoryNumber, t Transfer, actor string) error {
	a, err := p.Store.GetAsset(ctx, n)
	if err != nil {
		return err
	}

	before := *a
	t.ID = EventID(uuid.NewString())
	t.Asset = n
	t.CreatedBy = actor
	t.CreatedAt = p.now()
	t.FromLocation = a.Location
	t.FromPerson = a.ResponsiblePerson
	if err := a.ApplyTransfer(t); err != nil {
		return err
	}

	expected := a.Version
	a.Touch()
	err = p.Store.WithTx(ctx, func(s Store) error {
		if err := s.AppendTransfer(ctx, t); err != nil {
			return err
		}
		return s.UpdateAsset(ctx, a, expected)
	})
	if err != nil {
		return err
	}

	p.audit(ctx, AuditAssetTransferred, n, actor,
		fmt.Sprintf("to %s / %s", a.Location, a.ResponsiblePerson), DiffAssets(&before, a))
	return nil
}

// =============================================================================
// DISPOSAL
// =============================================================================

// Dispose terminates an asset and posts the writeoff set: accumulated
// wear, residual book value, sale proceeds and the gain or loss against
// book value.
func (p *Processor) Dispose(ctx context.Context, n InventoryNumber, d Disposal, actor string) (*Disposal, error) {
	a, err := p.Store.GetAsset(ctx, n)
	if err != nil {
		return nil, err
	}

	before := *a
	d.ID = EventID(uuid.NewString())
	d.Asset = n
	d.CreatedBy = actor
	d.CreatedAt = p.now()
	applied, err := a.ApplyDisposal(d)
	if err != nil {
		return nil, err
	}

	entries := p.stamp(p.postings.ForDisposal(a, applied, actor))

	expected := a.Version
	a.Touch()
	err = p.Store.WithTx(ctx, func(s Store) error {
		if err := s.AppendDisposal(ctx, *applied); err != nil {
			return err
		}
		if err := s.AppendEntries(ctx, entries); err != nil {
			return err
		}
		return s.UpdateAsset(ctx, a, expected)
	})
	if err != nil {
		return nil, err
	}

	p.audit(ctx, AuditAssetDisposed, n, actor,
		fmt.Sprintf("%s: book value %s, gain/loss %s", applied.Type, applied.BookValueAtDisposal, applied.GainLoss()),
		DiffAssets(&before, a))
	return applied, nil
}

// =============================================================================
// CONSERVATION
// =============================================================================

// Conserve pauses depreciation for an active asset.
func (p *Processor) Conserve(ctx context.Context, n InventoryNumber, actor string) error {
	return p.transition(ctx, n, actor, AuditAssetConserved, (*Asset).Conserve)
}

// Reactivate returns a conserved asset to service.
func (p *Processor) Reactivate(ctx context.Context, n InventoryNumber, actor string) error {
	return p.transition(ctx, n, actor, AuditAssetReactivated, (*Asset).Reactivate)
}

func (p *Processor) transition(ctx context.Context, n InventoryNumber, actor string, action AuditAction, apply func(*Asset) error) error {
	a, err := p.Store.GetAsset(ctx, n)
	if err != nil {
		return err
	}

	before := *a
	if err := apply(a); err != nil {
		return err
	}

	expected := a.Version
	a.Touch()
	if err := p.Store.UpdateAsset(ctx, a, expected); err != nil {
		return err
	}

	p.audit(ctx, action, n, actor, "", DiffAssets(&before, a))
	return nil
}
