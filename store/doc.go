// Package store provides a tenant-scoped data-access layer over an opaque
// remote tabular store.
//
// The store sits between application code and a remote relational backend
// reached through the [remote.Store] boundary. It translates field names
// between the backend's snake_case convention and the application's
// camelCase convention in both directions, resolves and caches the active
// department id, and scopes every operation to it.
//
// # Tenant isolation
//
// Every query, insert, update and delete is constrained to the resolved
// department. The predicate is applied by the store itself and cannot be
// displaced by caller-supplied filters; an update or delete whose id
// belongs to another department matches zero rows and returns
// [ErrNotFound].
//
// # Department resolution
//
// The department id is resolved lazily on the first operation: current
// session user, then that user's profile row, then its department column.
// The result is held in an in-memory slot and a TTL cache (5 minutes by
// default). [Store.SetDepartmentID] overrides it, [Store.ClearDepartmentContext]
// drops it; both invalidate the cache. An unresolvable department is a
// valid unauthenticated state: reads return empty results and writes fail
// with [ErrNotAuthenticated].
//
// # Error propagation
//
// Read operations degrade: Query returns an empty slice alongside the
// classified fault, and HealthCheck folds the fault into its result. Write
// operations always propagate the classified [fault.Fault] so no write is
// silently dropped. Retries are opt-in: wrap individual operations with
// [fault.Retry] rather than relying on the store to retry internally, since
// inserts are only safe to retry because their id and creation timestamp
// are pre-stamped.
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrNotAuthenticated] - no department context could be resolved
//   - [ErrNotFound] - update or delete matched zero rows
package store
