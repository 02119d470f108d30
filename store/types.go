package store

import (
	"github.com/opsgrid/tenantstore/fault"
)

// Record is an arbitrary-depth row with internal (camelCase) field names.
type Record = map[string]any

// QueryOptions configures a Query call. All field names are in the internal
// convention; the store translates them before they reach the remote
// boundary.
type QueryOptions struct {
	// Filters are equality predicates, ANDed together.
	Filters map[string]any

	// Columns projects specific columns; empty selects all.
	Columns []string

	// OrderBy is the column to sort on. Empty defaults to the creation
	// timestamp, descending.
	OrderBy string

	// Ascending selects sort direction when OrderBy is set.
	Ascending bool

	// Offset skips that many rows of the result.
	Offset int

	// Limit caps the number of rows returned (0 = no limit).
	Limit int
}

// Health reports remote-store connectivity.
type Health struct {
	// Healthy is true when the probe read succeeded.
	Healthy bool

	// Connected is false only when the probe failed at the transport level.
	Connected bool

	// Fault carries the classified probe failure, nil when healthy.
	Fault *fault.Fault
}
