/*
errors.go - Centralized error types for the scheduling pipeline

PURPOSE:
  All error types in one place. The pipeline's error policy has exactly two
  hard-failure classes; everything else is absorbed row-locally with
  documented defaults and never raised:

  1. Data-shape errors: a required column is missing or a required date is
     unparseable. The whole run fails with no partial output.
  2. Silent-truncation risk: a bulk read returns exactly one page boundary's
     worth of rows. The run fails; the check is mandatory.

  Admission failures (cooldown, tier cap, capacity, weekly limit) are NOT
  errors. They are silent skips inside the assigner. An empty schedule is a
  valid outcome distinguished from failure by the absence of an error.

SEE ALSO:
  - engine.go: applies the truncation guard
  - store/sqlite: wraps these with table/column context
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDataShape is returned when an input table violates its required
	// shape (missing column, unparseable required date).
	ErrDataShape = errors.New("input data shape violation")

	// ErrTruncatedRead is returned when a bulk read comes back with exactly
	// one page of rows, the signature of a pagination layer silently
	// dropping the remainder.
	ErrTruncatedRead = errors.New("bulk read truncated at page boundary")

	// ErrRunCancelled is returned when the run context is cancelled between
	// pipeline stages.
	ErrRunCancelled = errors.New("run cancelled")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DataShapeError identifies the offending table, column, and value.
type DataShapeError struct {
	Table  string
	Column string
	Value  string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("data shape violation in %s.%s (value %q)", e.Table, e.Column, e.Value)
}

func (e *DataShapeError) Unwrap() error { return ErrDataShape }

// TruncationError identifies the read that hit an exact page boundary.
type TruncationError struct {
	Table    string
	Rows     int
	PageSize int
}

func (e *TruncationError) Error() string {
	return fmt.Sprintf("read of %s returned exactly %d rows (page size %d): refusing possibly-truncated input",
		e.Table, e.Rows, e.PageSize)
}

func (e *TruncationError) Unwrap() error { return ErrTruncatedRead }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsDataShape reports whether err is a hard input-shape failure.
func IsDataShape(err error) bool { return errors.Is(err, ErrDataShape) }

// IsTruncation reports whether err is the exact-page truncation guard.
func IsTruncation(err error) bool { return errors.Is(err, ErrTruncatedRead) }
