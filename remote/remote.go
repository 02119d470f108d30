// Package remote defines the boundary to the remote tabular store.
//
// The store is opaque: per table it offers select with equality filters,
// ordering and range, insert returning the stored row, update by predicate
// returning the updated row, and delete by predicate. Field names crossing
// this boundary are always in the store's external (snake_case) convention.
// Errors from any backend arrive normalized as [*Error].
package remote

import (
	"context"
	"errors"
	"fmt"
)

// Row is a single stored row with external field names.
type Row = map[string]any

// SelectOptions configures a Select call.
type SelectOptions struct {
	// Columns projects specific columns; empty selects all.
	Columns []string

	// Filters are equality predicates, ANDed together.
	Filters map[string]any

	// OrderBy is the column to sort on; empty leaves order backend-defined.
	OrderBy string

	// Ascending selects sort direction when OrderBy is set.
	Ascending bool

	// Offset skips that many rows of the result.
	Offset int

	// Limit caps the number of rows returned (0 = no limit).
	Limit int
}

// Store is the capability set the remote tabular store exposes per table.
type Store interface {
	Select(ctx context.Context, table string, opts SelectOptions) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table string, filters map[string]any, patch Row) (Row, error)
	Delete(ctx context.Context, table string, filters map[string]any) (int64, error)
}

// SessionProvider reports the currently authenticated user. It is a black
// box owned by the authentication flow; an empty id means no session.
type SessionProvider interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// ErrNoRows is returned by Update when the predicate matched nothing.
var ErrNoRows = errors.New("remote: no rows matched")

// Error is the loosely-typed fault shape the remote boundary produces:
// a human-readable message plus an optional machine-readable code
// (SQLSTATE-style for relational backends).
type Error struct {
	Message string
	Code    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (code %s)", e.Message, e.Code)
	}
	return e.Message
}
