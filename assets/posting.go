/*
posting.go - Ledger Posting Generator

PURPOSE:

	Pure mapping from (event kind, asset, amounts) to double-entry
	AccountEntry rows. Group-specific accounts (asset 10x, wear 13x) come
	from the asset's group; the remaining accounts are fixed statutory
	chart positions.

CHART POSITIONS USED:

	10x  asset accounts (per group)
	13x  accumulated depreciation (per group)
	152  capital investments
	23/91/92/93  expense accounts (production/overhead/admin/selling)
	377  other debtors
	411  revaluation capital
	631  domestic suppliers
	746  other ordinary income
	793  result of other ordinary activity (disposal gain/loss)
	975  writedown of non-current assets
	976  writeoff of non-current assets

RULES:
  - Every entry amount is strictly positive.
  - A zero-amount event produces NO entry, never a zero-amount entry.
  - Transfers produce no entries at all (custody only).

SEE ALSO:
  - processor.go: persists the generated rows atomically with the event
*/
package assets

import (
	"fmt"
	"time"

	"github.com/warp/asset-ledger/money"
)

// Fixed statutory accounts.
const (
	AccountCapitalInvestments = "152"
	AccountOtherDebtors       = "377"
	AccountRevaluationCapital = "411"
	AccountSuppliers          = "631"
	AccountOtherIncome        = "746"
	AccountDisposalResult     = "793"
	AccountWritedownExpense   = "975"
	AccountWriteoffExpense    = "976"

	// DefaultExpenseAccount is where depreciation lands unless the
	// caller picks another expense account (23, 91, 92 or 93).
	DefaultExpenseAccount = "92"
)

// PostingGenerator builds entry rows. It is stateless; a zero value is
// ready to use.
type PostingGenerator struct{}

func entry(t EntryType, date time.Time, debit, credit string, amount money.Money, desc string, asset *Asset, doc Document, actor string) AccountEntry {
	return AccountEntry{
		Type:          t,
		Date:          date,
		DebitAccount:  debit,
		CreditAccount: credit,
		Amount:        amount,
		Description:   desc,
		Asset:         asset.InventoryNumber,
		Document:      doc,
		IsPosted:      true,
		CreatedBy:     actor,
	}
}

// =============================================================================
// RECEIPT - Dt <group asset account> Kt 152
// =============================================================================

func (PostingGenerator) ForReceipt(a *Asset, r *Receipt, actor string) []AccountEntry {
	if !r.Amount.IsPositive() {
		return nil
	}
	desc := fmt.Sprintf("Receipt of asset %s %q (%s)", a.InventoryNumber, a.Name, r.Type)
	return []AccountEntry{
		entry(EntryReceipt, r.Document.Date, a.Group.AccountNumber, AccountCapitalInvestments, r.Amount, desc, a, r.Document, actor),
	}
}

// =============================================================================
// DEPRECIATION - Dt <expense account> Kt <group wear account>
// =============================================================================

func (PostingGenerator) ForDepreciation(a *Asset, rec *DepreciationRecord, expenseAccount, actor string) []AccountEntry {
	if !rec.Amount.IsPositive() {
		return nil
	}
	if expenseAccount == "" {
		expenseAccount = DefaultExpenseAccount
	}
	periodDate := rec.Period.Start()
	desc := fmt.Sprintf("Depreciation of asset %s %q for %s (%s)", a.InventoryNumber, a.Name, rec.Period, rec.Method)
	return []AccountEntry{
		entry(EntryDepreciation, periodDate, expenseAccount, a.Group.DepreciationAccount, rec.Amount, desc, a, Document{Date: periodDate}, actor),
	}
}

// =============================================================================
// DISPOSAL - wear writeoff, book value writeoff, proceeds, gain/loss
// =============================================================================

func (PostingGenerator) ForDisposal(a *Asset, d *Disposal, actor string) []AccountEntry {
	var entries []AccountEntry
	assetAcc := a.Group.AccountNumber
	wearAcc := a.Group.DepreciationAccount

	if d.AccumulatedDepreciationAtDisposal.IsPositive() {
		desc := fmt.Sprintf("Writeoff of accumulated depreciation on disposal of asset %s %q (%s)", a.InventoryNumber, a.Name, d.Type)
		entries = append(entries, entry(EntryDisposal, d.Document.Date, wearAcc, assetAcc, d.AccumulatedDepreciationAtDisposal, desc, a, d.Document, actor))
	}

	if d.BookValueAtDisposal.IsPositive() {
		desc := fmt.Sprintf("Writeoff of residual value on disposal of asset %s %q (%s)", a.InventoryNumber, a.Name, d.Type)
		entries = append(entries, entry(EntryDisposal, d.Document.Date, AccountWriteoffExpense, assetAcc, d.BookValueAtDisposal, desc, a, d.Document, actor))
	}

	if d.Type == DisposalSale && d.SaleAmount.IsPositive() {
		desc := fmt.Sprintf("Proceeds from sale of asset %s %q", a.InventoryNumber, a.Name)
		entries = append(entries, entry(EntryDisposal, d.Document.Date, AccountOtherDebtors, AccountOtherIncome, d.SaleAmount, desc, a, d.Document, actor))
	}

	// Gain or loss relative to book value closes into the disposal
	// result account. Break-even disposals produce no result entry.
	gainLoss := d.GainLoss()
	switch {
	case gainLoss.IsPositive():
		desc := fmt.Sprintf("Gain on disposal of asset %s %q", a.InventoryNumber, a.Name)
		entries = append(entries, entry(EntryDisposal, d.Document.Date, AccountOtherIncome, AccountDisposalResult, gainLoss, desc, a, d.Document, actor))
	case gainLoss.IsNegative():
		desc := fmt.Sprintf("Loss on disposal of asset %s %q", a.InventoryNumber, a.Name)
		entries = append(entries, entry(EntryDisposal, d.Document.Date, AccountDisposalResult, AccountWriteoffExpense, gainLoss.Abs(), desc, a, d.Document, actor))
	}

	return entries
}

// =============================================================================
// REVALUATION - upward to capital, downward to expense
// =============================================================================

func (PostingGenerator) ForRevaluation(a *Asset, r *Revaluation, actor string) []AccountEntry {
	amount := r.Amount.Abs()
	if !amount.IsPositive() {
		return nil
	}
	assetAcc := a.Group.AccountNumber

	if r.Direction == RevaluationUpward {
		desc := fmt.Sprintf("Upward revaluation of asset %s %q to fair value %s", a.InventoryNumber, a.Name, r.FairValue)
		return []AccountEntry{
			entry(EntryRevaluation, r.Document.Date, assetAcc, AccountRevaluationCapital, amount, desc, a, r.Document, actor),
		}
	}
	desc := fmt.Sprintf("Downward revaluation of asset %s %q to fair value %s", a.InventoryNumber, a.Name, r.FairValue)
	return []AccountEntry{
		entry(EntryRevaluation, r.Document.Date, AccountWritedownExpense, assetAcc, amount, desc, a, r.Document, actor),
	}
}

// =============================================================================
// IMPROVEMENT - capitalized vs period expense
// =============================================================================

func (PostingGenerator) ForImprovement(a *Asset, imp *Improvement, actor string) []AccountEntry {
	if !imp.Amount.IsPositive() {
		return nil
	}

	if imp.IncreasesValue {
		desc := fmt.Sprintf("Improvement of asset %s %q (%s): %s", a.InventoryNumber, a.Name, imp.Type, imp.Description)
		return []AccountEntry{
			entry(EntryImprovement, imp.Document.Date, a.Group.AccountNumber, AccountCapitalInvestments, imp.Amount, desc, a, imp.Document, actor),
		}
	}

	expense := imp.ExpenseAccount
	if expense == "" {
		expense = "91"
	}
	desc := fmt.Sprintf("Repair of asset %s %q (%s): %s", a.InventoryNumber, a.Name, imp.Type, imp.Description)
	return []AccountEntry{
		entry(EntryRepair, imp.Document.Date, expense, AccountSuppliers, imp.Amount, desc, a, imp.Document, actor),
	}
}
