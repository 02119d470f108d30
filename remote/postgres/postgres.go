// Package postgres implements the remote store boundary over PostgreSQL
// using pgx. Errors carry the SQLSTATE code, so the fault classifier never
// has to fall back to message-text heuristics for this backend.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsgrid/tenantstore/remote"
)

// Store is a PostgreSQL-backed remote.Store.
type Store struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

var _ remote.Store = (*Store)(nil)

// New creates a Store on top of an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Select returns rows matching the equality filters, with optional
// ordering, offset and limit.
func (s *Store) Select(ctx context.Context, table string, opts remote.SelectOptions) ([]remote.Row, error) {
	columns := opts.Columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}

	b := s.sb.Select(columns...).From(table)
	if len(opts.Filters) > 0 {
		b = b.Where(sq.Eq(opts.Filters))
	}
	if opts.OrderBy != "" {
		dir := "DESC"
		if opts.Ascending {
			dir = "ASC"
		}
		b = b.OrderBy(opts.OrderBy + " " + dir)
	}
	if opts.Offset > 0 {
		b = b.Offset(uint64(opts.Offset))
	}
	if opts.Limit > 0 {
		b = b.Limit(uint64(opts.Limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, wrapErr(err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// Insert stores row and returns it as stored.
func (s *Store) Insert(ctx context.Context, table string, row remote.Row) (remote.Row, error) {
	// Deterministic column order keeps statements cacheable.
	columns := make([]string, 0, len(row))
	for k := range row {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = row[c]
	}

	query, args, err := s.sb.Insert(table).
		Columns(columns...).
		Values(values...).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, wrapErr(err)
	}

	return s.queryOne(ctx, query, args)
}

// Update patches rows matching the equality filters and returns the updated
// row, or remote.ErrNoRows when the predicate matched nothing.
func (s *Store) Update(ctx context.Context, table string, filters map[string]any, patch remote.Row) (remote.Row, error) {
	query, args, err := s.sb.Update(table).
		SetMap(patch).
		Where(sq.Eq(filters)).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, wrapErr(err)
	}

	return s.queryOne(ctx, query, args)
}

// Delete removes rows matching the equality filters and reports how many
// were removed.
func (s *Store) Delete(ctx context.Context, table string, filters map[string]any) (int64, error) {
	query, args, err := s.sb.Delete(table).
		Where(sq.Eq(filters)).
		ToSql()
	if err != nil {
		return 0, wrapErr(err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, wrapErr(err)
	}
	return tag.RowsAffected(), nil
}

// queryOne runs a RETURNING statement and yields its single row.
func (s *Store) queryOne(ctx context.Context, query string, args []any) (remote.Row, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	result, err := collectRows(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, remote.ErrNoRows
	}
	return result[0], nil
}

// collectRows drains rows into generic field-name-keyed maps.
func collectRows(rows pgx.Rows) ([]remote.Row, error) {
	out := []remote.Row{}
	fields := rows.FieldDescriptions()

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, wrapErr(err)
		}
		row := make(remote.Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err)
	}
	return out, nil
}

// wrapErr normalizes pgx errors into the boundary's fault shape, keeping
// the SQLSTATE code when the server supplied one and labeling transport
// failures as network errors.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &remote.Error{
			Message: pgErr.Message,
			Code:    pgErr.Code,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &remote.Error{Message: fmt.Sprintf("network error: %v", err)}
	}

	return &remote.Error{Message: err.Error()}
}
