package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/opsgrid/tenantstore/remote"
	"github.com/opsgrid/tenantstore/store"
)

// --- Resolution Tests ---

func TestResolveMemoizesLookup(t *testing.T) {
	s, _, session := authedStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Query(ctx, "equipment", store.QueryOptions{}); err != nil {
			t.Fatalf("Query %d: %v", i, err)
		}
	}

	if session.calls != 1 {
		t.Errorf("expected a single session lookup, got %d", session.calls)
	}
}

func TestResolveRetriesWhileUnauthenticated(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("profiles", remote.Row{"user_id": "u1", "department_id": "dept-1"})
	session := &fakeSession{userID: ""}
	s := newTestStore(t, backend, session)
	ctx := context.Background()

	// Absence of a session must not be cached.
	if _, err := s.Query(ctx, "equipment", store.QueryOptions{}); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	session.userID = "u1"
	if _, err := s.Query(ctx, "equipment", store.QueryOptions{}); err != nil {
		t.Errorf("expected resolution after sign-in, got %v", err)
	}
	if session.calls != 2 {
		t.Errorf("expected re-resolution on every call, got %d lookups", session.calls)
	}
}

func TestResolveSessionError(t *testing.T) {
	session := &fakeSession{err: errors.New("session store unavailable")}
	s := newTestStore(t, newFakeBackend(), session)

	// A failed lookup chain is the unauthenticated state, not a fault.
	if _, err := s.Query(context.Background(), "equipment", store.QueryOptions{}); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestResolveProfileMissing(t *testing.T) {
	backend := newFakeBackend() // no profile row seeded
	session := &fakeSession{userID: "u1"}
	s := newTestStore(t, backend, session)

	if _, err := s.Query(context.Background(), "equipment", store.QueryOptions{}); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

// --- Override and Invalidation Tests ---

func TestSetDepartmentIDSkipsLookup(t *testing.T) {
	backend := newFakeBackend()
	session := &fakeSession{userID: ""}
	s := newTestStore(t, backend, session)
	s.SetDepartmentID("dept-7")

	if _, err := s.Query(context.Background(), "equipment", store.QueryOptions{}); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got := backend.lastSelectOpts.Filters["department_id"]; got != "dept-7" {
		t.Errorf("expected explicit department 'dept-7', got %v", got)
	}
	if session.calls != 0 {
		t.Errorf("expected no session lookups, got %d", session.calls)
	}
}

func TestClearForcesReResolution(t *testing.T) {
	s, backend, session := authedStore(t)
	ctx := context.Background()

	if _, err := s.Query(ctx, "equipment", store.QueryOptions{}); err != nil {
		t.Fatalf("Query: %v", err)
	}

	// Department switch: clear, repoint the session, resolve again.
	s.ClearDepartmentContext()
	backend.seed("profiles", remote.Row{"user_id": "u2", "department_id": "dept-2"})
	session.userID = "u2"

	if _, err := s.Query(ctx, "equipment", store.QueryOptions{}); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got := backend.lastSelectOpts.Filters["department_id"]; got != "dept-2" {
		t.Errorf("expected re-resolved department 'dept-2', got %v", got)
	}
	if session.calls != 2 {
		t.Errorf("expected 2 lookups, got %d", session.calls)
	}
}

func TestTenantAccessor(t *testing.T) {
	s, _, _ := authedStore(t)

	tc := s.Tenant()
	if tc == nil {
		t.Fatal("expected non-nil tenant context")
	}
	if got := tc.Resolve(context.Background()); got != "dept-1" {
		t.Errorf("expected 'dept-1', got %q", got)
	}
}
