package store

import (
	"context"
	"log/slog"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/opsgrid/tenantstore/remote"
)

const tenantCacheKey = "department_id"

// TenantContext resolves and caches the active department id. The in-memory
// slot is checked first, then the TTL cache, then the external lookup chain
// (session user -> profile row -> department id). Lookup failures resolve to
// empty without populating the cache, so resolution is re-attempted on every
// call until an id is found.
//
// The TTL applies only until the slot is populated: once a resolution or a
// cache hit promotes an id into the slot, it is served indefinitely until
// Clear or SetDepartmentID drops it.
//
// Each Store owns exactly one TenantContext; the cached value is not shared
// across instances.
type TenantContext struct {
	mu      sync.Mutex
	current string

	cache        *gocache.Cache
	session      remote.SessionProvider
	backend      remote.Store
	logger       *slog.Logger
	profileTable string
	userColumn   string
	tenantColumn string
}

// NewTenantContext creates a TenantContext. cfg is validated by the caller.
func NewTenantContext(session remote.SessionProvider, backend remote.Store, cfg Config, logger *slog.Logger) *TenantContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantContext{
		cache:        gocache.New(cfg.TenantCacheTTL, cfg.TenantCacheTTL),
		session:      session,
		backend:      backend,
		logger:       logger,
		profileTable: cfg.ProfileTable,
		userColumn:   cfg.ProfileUserColumn,
		tenantColumn: cfg.TenantColumn,
	}
}

// Resolve returns the active department id, or empty when no authenticated
// department context exists. An empty result is a valid unauthenticated
// state, not an error.
func (tc *TenantContext) Resolve(ctx context.Context) string {
	tc.mu.Lock()
	current := tc.current
	tc.mu.Unlock()
	if current != "" {
		return current
	}

	if v, ok := tc.cache.Get(tenantCacheKey); ok {
		id := v.(string)
		tc.mu.Lock()
		tc.current = id
		tc.mu.Unlock()
		return id
	}

	id := tc.lookup(ctx)
	if id == "" {
		return ""
	}

	tc.mu.Lock()
	tc.current = id
	tc.mu.Unlock()
	tc.cache.Set(tenantCacheKey, id, gocache.DefaultExpiration)
	return id
}

// lookup performs the external resolution chain.
func (tc *TenantContext) lookup(ctx context.Context) string {
	userID, err := tc.session.CurrentUserID(ctx)
	if err != nil || userID == "" {
		if err != nil {
			tc.logger.Debug("session lookup failed", "error", err)
		}
		return ""
	}

	rows, err := tc.backend.Select(ctx, tc.profileTable, remote.SelectOptions{
		Filters: map[string]any{tc.userColumn: userID},
		Limit:   1,
	})
	if err != nil {
		tc.logger.Debug("profile lookup failed", "user", userID, "error", err)
		return ""
	}
	if len(rows) == 0 {
		return ""
	}

	id, _ := rows[0][tc.tenantColumn].(string)
	return id
}

// SetDepartmentID sets the in-memory slot directly and invalidates the TTL
// cache, so cached and explicit values never coexist stale.
func (tc *TenantContext) SetDepartmentID(id string) {
	tc.mu.Lock()
	tc.current = id
	tc.mu.Unlock()
	tc.cache.Flush()
}

// Clear resets both the in-memory slot and the TTL cache. Called on
// sign-out and on any department switch.
func (tc *TenantContext) Clear() {
	tc.mu.Lock()
	tc.current = ""
	tc.mu.Unlock()
	tc.cache.Flush()
}
