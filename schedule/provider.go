/*
provider.go - Read-only data source interface for a pipeline run

PURPOSE:
  The pipeline never talks to a database directly. It receives a DataProvider
  and reads the seven operational tables through it, which keeps every stage
  pure and testable against the in-memory implementation.

CONTRACT:
  - All methods are read-only. The pipeline writes nothing through this
    interface; the final assignment list is handed back to the caller.
  - Implementations must return ALL rows, accumulating every page of a paged
    read before returning. The engine independently applies an exact-page
    truncation guard on top (see engine.go).
  - Office-scoped methods filter server-side where possible; the engine does
    not re-filter vehicles or capacity by office.

IMPLEMENTATIONS:
  - store/sqlite: production store (paged reads, migrate-on-open)
  - store/memory: map-backed twin for tests and demos

SEE ALSO:
  - engine.go: the only consumer
*/
package schedule

import "context"

// DataProvider exposes the operational tables a run reads.
type DataProvider interface {
	// Vehicles returns the fleet for one office.
	Vehicles(ctx context.Context, office Office) ([]Vehicle, error)

	// Partners returns all media partners.
	Partners(ctx context.Context) ([]Partner, error)

	// ApprovedMakes returns the partner-make eligibility list.
	ApprovedMakes(ctx context.Context) ([]Eligibility, error)

	// Rules returns the (make, rank) loan policy rules.
	Rules(ctx context.Context) ([]Rule, error)

	// LoanHistory returns the append-only loan audit trail.
	LoanHistory(ctx context.Context) ([]LoanRecord, error)

	// CurrentActivity returns bookings that block availability windows.
	CurrentActivity(ctx context.Context) ([]Activity, error)

	// OpsCapacity returns hand-off slots for one office in [from, to].
	OpsCapacity(ctx context.Context, office Office, from, to Day) ([]CapacitySlot, error)
}
