package store

import (
	"errors"

	"github.com/opsgrid/tenantstore/fault"
)

var (
	// ErrNotAuthenticated is returned by write operations when no department
	// context can be resolved. It is a *fault.Fault so callers can treat it
	// uniformly with classified remote faults, but it is a local condition,
	// distinct from any remote-store failure.
	ErrNotAuthenticated = fault.New(fault.KindNotAuthenticated, "no authenticated department context")

	// ErrNotFound is returned when an update or delete matched zero rows:
	// the row does not exist, or belongs to another department.
	ErrNotFound = errors.New("tenantstore: row not found")
)
