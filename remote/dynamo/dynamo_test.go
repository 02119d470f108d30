package dynamo

import (
	"context"
	"testing"

	"github.com/opsgrid/tenantstore/remote"
)

// --- Constructor Tests ---

func TestNewDefaultsKeyAttribute(t *testing.T) {
	s := New(nil, Config{})
	if s.config.KeyAttribute != "id" {
		t.Errorf("expected key attribute 'id', got %q", s.config.KeyAttribute)
	}
}

func TestNewFromDefaultConfig(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")

	s, err := NewFromDefaultConfig(context.Background(), Config{KeyAttribute: "pk"})
	if err != nil {
		t.Fatalf("NewFromDefaultConfig: %v", err)
	}
	if s == nil || s.client == nil {
		t.Fatal("expected a store with a configured client")
	}
	if s.config.KeyAttribute != "pk" {
		t.Errorf("expected key attribute 'pk', got %q", s.config.KeyAttribute)
	}
}

// --- Helper Tests ---

func TestApplyRange(t *testing.T) {
	rows := []remote.Row{
		{"id": "a"}, {"id": "b"}, {"id": "c"}, {"id": "d"},
	}

	tests := []struct {
		name   string
		offset int
		limit  int
		ids    []string
	}{
		{"no range", 0, 0, []string{"a", "b", "c", "d"}},
		{"offset only", 1, 0, []string{"b", "c", "d"}},
		{"limit only", 0, 2, []string{"a", "b"}},
		{"offset and limit", 1, 2, []string{"b", "c"}},
		{"offset past end", 10, 0, nil},
		{"limit past end", 0, 10, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyRange(rows, tt.offset, tt.limit)
			if len(got) != len(tt.ids) {
				t.Fatalf("expected %d rows, got %d", len(tt.ids), len(got))
			}
			for i, id := range tt.ids {
				if got[i]["id"] != id {
					t.Errorf("position %d: expected %q, got %v", i, id, got[i]["id"])
				}
			}
		})
	}
}

func TestSortRows(t *testing.T) {
	rows := []remote.Row{
		{"created_at": "2026-02-01"},
		{"created_at": "2026-03-01"},
		{"created_at": "2026-01-01"},
	}

	sortRows(rows, "created_at", false)
	if rows[0]["created_at"] != "2026-03-01" || rows[2]["created_at"] != "2026-01-01" {
		t.Errorf("expected descending order, got %v", rows)
	}

	sortRows(rows, "created_at", true)
	if rows[0]["created_at"] != "2026-01-01" || rows[2]["created_at"] != "2026-03-01" {
		t.Errorf("expected ascending order, got %v", rows)
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		a, b     any
		expected int
	}{
		{"strings", "a", "b", -1},
		{"equal strings", "a", "a", 0},
		{"numbers", 2.0, 1.0, 1},
		{"equal numbers", 1.5, 1.5, 0},
		{"mixed types fall back to printed form", 10.0, "9", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compareValues(tt.a, tt.b); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestSplitFiltersRequiresKey(t *testing.T) {
	s := New(nil, Config{})

	_, _, _, _, err := s.splitFilters(map[string]any{"department_id": "d1"})
	if err == nil {
		t.Fatal("expected error when key attribute is missing")
	}

	key, expr, names, values, err := s.splitFilters(map[string]any{
		"id":            "e1",
		"department_id": "d1",
	})
	if err != nil {
		t.Fatalf("splitFilters: %v", err)
	}
	if _, ok := key["id"]; !ok {
		t.Errorf("expected key on id, got %v", key)
	}
	if expr != "attribute_exists(#pk) AND #c0 = :c0" {
		t.Errorf("unexpected condition expression %q", expr)
	}
	if names["#c0"] != "department_id" {
		t.Errorf("expected department_id condition, got %v", names)
	}
	if len(values) != 1 {
		t.Errorf("expected 1 condition value, got %d", len(values))
	}
}
