package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opsgrid/tenantstore/fault"
	"github.com/opsgrid/tenantstore/internal/keymap"
	"github.com/opsgrid/tenantstore/remote"
)

// Store is the tenant-scoped data-access layer. Every read and write is
// implicitly constrained to the resolved department, and all field names
// are translated between the internal and external conventions at the
// remote boundary.
type Store struct {
	backend remote.Store
	tenant  *TenantContext
	mapper  *keymap.Mapper
	config  Config
	logger  *slog.Logger
}

// New creates a new Store instance.
func New(backend remote.Store, session remote.SessionProvider, config Config) (*Store, error) {
	return NewWithLogger(backend, session, config, nil)
}

// NewWithLogger creates a new Store instance with a structured logger for
// degraded-read and fault observations. A nil logger uses slog.Default.
func NewWithLogger(backend remote.Store, session remote.SessionProvider, config Config, logger *slog.Logger) (*Store, error) {
	config.validate()
	if logger == nil {
		logger = slog.Default()
	}

	mapper, err := keymap.New(config.FieldOverrides)
	if err != nil {
		return nil, fmt.Errorf("field overrides: %w", err)
	}

	return &Store{
		backend: backend,
		tenant:  NewTenantContext(session, backend, config, logger),
		mapper:  mapper,
		config:  config,
		logger:  logger,
	}, nil
}

// Tenant returns the store's tenant context.
func (s *Store) Tenant() *TenantContext {
	return s.tenant
}

// SetDepartmentID overrides the resolved department id, dropping any
// previously memoized lookup result.
func (s *Store) SetDepartmentID(id string) {
	s.tenant.SetDepartmentID(id)
}

// ClearDepartmentContext drops the resolved department id and the TTL
// cache. Called on sign-out and on department switch.
func (s *Store) ClearDepartmentContext() {
	s.tenant.Clear()
}

// Query returns the department's rows from table, translated to the
// internal convention. The department predicate is applied unconditionally
// and cannot be overridden by caller filters.
//
// Query degrades rather than failing: with no resolvable department it
// returns an empty slice and ErrNotAuthenticated, and on a remote fault it
// returns an empty slice and the classified fault. The returned slice is
// never nil, so callers that only consume rows may ignore the error; the
// error remains observable for telemetry.
func (s *Store) Query(ctx context.Context, table string, opts QueryOptions) ([]Record, error) {
	dept := s.tenant.Resolve(ctx)
	if dept == "" {
		return []Record{}, ErrNotAuthenticated
	}

	filters := make(map[string]any, len(opts.Filters)+1)
	for k, v := range opts.Filters {
		filters[s.mapper.ExternalKey(k)] = v
	}
	// Department predicate last so caller filters can never displace it.
	filters[s.config.TenantColumn] = dept

	orderBy := s.config.CreatedColumn
	ascending := false
	if opts.OrderBy != "" {
		orderBy = s.mapper.ExternalKey(opts.OrderBy)
		ascending = opts.Ascending
	}

	var columns []string
	for _, c := range opts.Columns {
		columns = append(columns, s.mapper.ExternalKey(c))
	}

	rows, err := s.backend.Select(ctx, table, remote.SelectOptions{
		Columns:   columns,
		Filters:   filters,
		OrderBy:   orderBy,
		Ascending: ascending,
		Offset:    opts.Offset,
		Limit:     opts.Limit,
	})
	if err != nil {
		f := fault.Classify(err)
		s.logger.Warn("query degraded to empty result",
			"table", table,
			"kind", f.Kind,
			"error", err,
		)
		return []Record{}, f
	}

	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = s.mapper.InternalRecord(row)
	}
	return out, nil
}

// Get retrieves a single row by id within the department scope, returning
// ErrNotFound if it does not exist or belongs to another department.
func (s *Store) Get(ctx context.Context, table, id string) (Record, error) {
	dept := s.tenant.Resolve(ctx)
	if dept == "" {
		return nil, ErrNotAuthenticated
	}

	rows, err := s.backend.Select(ctx, table, remote.SelectOptions{
		Filters: map[string]any{
			s.config.IDColumn:     id,
			s.config.TenantColumn: dept,
		},
		Limit: 1,
	})
	if err != nil {
		return nil, fault.Classify(err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return s.mapper.InternalRecord(rows[0]), nil
}

// Insert stores a new row, stamping the department id, an id and a creation
// timestamp. The id and creation timestamp are only stamped when absent, so
// a retried insert stays idempotent; the department id is always stamped
// and cannot be supplied by the caller. Faults are propagated: no write is
// silently dropped.
func (s *Store) Insert(ctx context.Context, table string, record Record) (Record, error) {
	dept := s.tenant.Resolve(ctx)
	if dept == "" {
		return nil, ErrNotAuthenticated
	}

	row := s.mapper.ExternalRecord(record)
	row[s.config.TenantColumn] = dept
	if _, ok := row[s.config.IDColumn]; !ok {
		row[s.config.IDColumn] = uuid.NewString()
	}
	if _, ok := row[s.config.CreatedColumn]; !ok {
		row[s.config.CreatedColumn] = time.Now().UTC().Format(time.RFC3339)
	}

	stored, err := s.backend.Insert(ctx, table, row)
	if err != nil {
		return nil, fault.Classify(err)
	}
	return s.mapper.InternalRecord(stored), nil
}

// Update patches the row matching both id and the resolved department,
// always stamping the update timestamp. A target belonging to another
// department matches zero rows and returns ErrNotFound; it never touches
// the other department's row. Faults are propagated.
func (s *Store) Update(ctx context.Context, table, id string, patch Record) (Record, error) {
	dept := s.tenant.Resolve(ctx)
	if dept == "" {
		return nil, ErrNotAuthenticated
	}

	p := s.mapper.ExternalRecord(patch)
	// The department column is never patchable.
	delete(p, s.config.TenantColumn)
	p[s.config.UpdatedColumn] = time.Now().UTC().Format(time.RFC3339)

	row, err := s.backend.Update(ctx, table, map[string]any{
		s.config.IDColumn:     id,
		s.config.TenantColumn: dept,
	}, p)
	if err != nil {
		if errors.Is(err, remote.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fault.Classify(err)
	}
	return s.mapper.InternalRecord(row), nil
}

// Delete removes the row matching both id and the resolved department,
// returning ErrNotFound when nothing matched. Faults are propagated.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	dept := s.tenant.Resolve(ctx)
	if dept == "" {
		return ErrNotAuthenticated
	}

	count, err := s.backend.Delete(ctx, table, map[string]any{
		s.config.IDColumn:     id,
		s.config.TenantColumn: dept,
	})
	if err != nil {
		return fault.Classify(err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// HealthCheck performs a minimal department-independent read against the
// configured health table. It reports connectivity without requiring
// authentication and never fails; a probe fault is carried in the result.
func (s *Store) HealthCheck(ctx context.Context) Health {
	_, err := s.backend.Select(ctx, s.config.HealthTable, remote.SelectOptions{Limit: 1})
	if err != nil {
		f := fault.Classify(err)
		return Health{
			Healthy:   false,
			Connected: f.Kind != fault.KindNetwork,
			Fault:     f,
		}
	}
	return Health{Healthy: true, Connected: true}
}
