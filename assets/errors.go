/*
errors.go - Centralized error types for the valuation engine

PURPOSE:

	All error types in one place. Money-mutating paths never swallow an
	error: every rejected mutation returns one of these typed reasons.

ERROR CATEGORIES:
 1. Validation errors - malformed or out-of-range input, no state touched
 2. Invalid state - event not permitted for the asset's current status
 3. Conflict errors - a concurrent mutation won the race; safe to retry
 4. Configuration errors - method parameters missing or inconsistent

USAGE:

	Callers classify with errors.Is / errors.As:

	  if errors.Is(err, assets.ErrConflict) {
	      // re-read the snapshot and retry
	  }

SEE ALSO:
  - processor.go: returns these from every command
  - scheduler.go: collects them per asset without aborting the batch
*/
package assets

import (
	"errors"
	"fmt"

	"github.com/warp/asset-ledger/money"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState is returned when an event is not permitted given the
	// asset's current status (e.g., disposing a disposed asset).
	ErrInvalidState = errors.New("invalid asset state")

	// ErrConflict is returned when optimistic locking detects a concurrent
	// mutation of the same asset. Retryable after re-reading the snapshot.
	ErrConflict = errors.New("concurrent modification detected")

	// ErrConfiguration is returned when a method-specific required
	// parameter is missing (e.g., production method without capacity).
	ErrConfiguration = errors.New("depreciation configuration invalid")

	// ErrAssetNotFound is returned when the referenced inventory number
	// does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrGroupNotFound is returned when the referenced asset group
	// does not exist.
	ErrGroupNotFound = errors.New("asset group not found")

	// ErrPeriodAccrued is returned when a depreciation record already
	// exists for the (asset, period) pair.
	ErrPeriodAccrued = errors.New("period already accrued")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field and why it was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InvalidStateError explains which transition was refused.
type InvalidStateError struct {
	Asset   InventoryNumber
	Status  Status
	Attempt string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: asset %s is %s, cannot %s", e.Asset, e.Status, e.Attempt)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// ConflictError reports the version mismatch behind a lost race.
type ConflictError struct {
	Asset    InventoryNumber
	Expected int64
	Actual   int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: asset %s version %d, expected %d", e.Asset, e.Actual, e.Expected)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ConfigurationError names the missing or inconsistent method parameter.
type ConfigurationError struct {
	Asset   InventoryNumber
	Method  DepreciationMethod
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: asset %s method %s: %s", e.Asset, e.Method, e.Message)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// PeriodAccruedError reports a duplicate accrual attempt.
type PeriodAccruedError struct {
	Asset  InventoryNumber
	Period money.Period
}

func (e *PeriodAccruedError) Error() string {
	return fmt.Sprintf("period %s already accrued for asset %s", e.Period, e.Asset)
}

func (e *PeriodAccruedError) Unwrap() error { return ErrPeriodAccrued }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrPeriodAccrued)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssetNotFound) ||
		errors.Is(err, ErrGroupNotFound)
}
