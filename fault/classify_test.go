package fault_test

import (
	"errors"
	"testing"

	"github.com/opsgrid/tenantstore/fault"
	"github.com/opsgrid/tenantstore/remote"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      fault.Kind
		retryable bool
	}{
		{
			name:      "fetch failure",
			err:       errors.New("Failed to fetch"),
			kind:      fault.KindNetwork,
			retryable: true,
		},
		{
			name:      "network failure",
			err:       &remote.Error{Message: "network error: connection refused"},
			kind:      fault.KindNetwork,
			retryable: true,
		},
		{
			name:      "invalid credentials",
			err:       &remote.Error{Message: "Invalid login credentials"},
			kind:      fault.KindInvalidCredentials,
			retryable: false,
		},
		{
			name:      "row level security",
			err:       &remote.Error{Message: `new row violates row-level security policy for table "equipment"`, Code: "42501"},
			kind:      fault.KindAccessDenied,
			retryable: false,
		},
		{
			name:      "unique constraint",
			err:       &remote.Error{Message: `duplicate key value violates unique constraint "equipment_pkey"`, Code: "23505"},
			kind:      fault.KindUniqueConstraint,
			retryable: false,
		},
		{
			name:      "foreign key constraint",
			err:       &remote.Error{Message: "insert or update violates foreign key constraint", Code: "23503"},
			kind:      fault.KindForeignKeyConstraint,
			retryable: false,
		},
		{
			name:      "insufficient privilege",
			err:       &remote.Error{Message: "permission denied for table equipment", Code: "42501"},
			kind:      fault.KindInsufficientPrivilege,
			retryable: false,
		},
		{
			name:      "other coded error",
			err:       &remote.Error{Message: "syntax error at or near SELECT", Code: "42601"},
			kind:      fault.KindUnknown,
			retryable: false,
		},
		{
			name:      "uncoded error",
			err:       errors.New("something odd happened"),
			kind:      fault.KindUnknown,
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fault.Classify(tt.err)
			if f == nil {
				t.Fatal("expected non-nil fault")
			}
			if f.Kind != tt.kind {
				t.Errorf("expected kind %q, got %q", tt.kind, f.Kind)
			}
			if f.Retryable != tt.retryable {
				t.Errorf("expected retryable %v, got %v", tt.retryable, f.Retryable)
			}
			if f.Message == "" {
				t.Error("expected descriptive message")
			}
		})
	}
}

func TestClassifyMessageRulesPrecedeCodeRules(t *testing.T) {
	// Rule order is fixed: a coded error whose message matches an earlier
	// message rule classifies by message.
	f := fault.Classify(&remote.Error{
		Message: "network error: connection reset during insert",
		Code:    "23505",
	})
	if f.Kind != fault.KindNetwork {
		t.Errorf("expected network classification, got %q", f.Kind)
	}
	if !f.Retryable {
		t.Error("expected network fault to be retryable")
	}
}

func TestClassifyNil(t *testing.T) {
	if f := fault.Classify(nil); f != nil {
		t.Errorf("expected nil, got %#v", f)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	original := fault.Classify(&remote.Error{Message: "dup", Code: "23505"})
	if again := fault.Classify(original); again != original {
		t.Error("classifying a fault should return it unchanged")
	}
}

func TestClassifyPreservesCause(t *testing.T) {
	raw := &remote.Error{Message: "dup", Code: "23505"}
	f := fault.Classify(raw)

	var unwrapped *remote.Error
	if !errors.As(f, &unwrapped) || unwrapped != raw {
		t.Error("expected fault to unwrap to the raw error")
	}
}
