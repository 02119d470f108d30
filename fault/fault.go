// Package fault normalizes remote-store errors into a bounded taxonomy with
// a retryability verdict, and provides a bounded exponential-backoff retry
// executor driven by that verdict.
package fault

// Kind identifies one of the fixed fault categories.
type Kind string

const (
	// KindNetwork is a transport-level failure. The only retryable kind.
	KindNetwork Kind = "network"

	// KindInvalidCredentials is a rejected login attempt.
	KindInvalidCredentials Kind = "invalid_credentials"

	// KindAccessDenied is a row-level-security policy rejection.
	KindAccessDenied Kind = "access_denied"

	// KindUniqueConstraint is a duplicate-value violation (SQLSTATE 23505).
	KindUniqueConstraint Kind = "unique_constraint"

	// KindForeignKeyConstraint is a missing-reference violation (SQLSTATE 23503).
	KindForeignKeyConstraint Kind = "foreign_key_constraint"

	// KindInsufficientPrivilege is a permission failure (SQLSTATE 42501).
	KindInsufficientPrivilege Kind = "insufficient_privilege"

	// KindNotAuthenticated means no tenant context could be resolved.
	// It is a local condition, never produced by classifying a remote error.
	KindNotAuthenticated Kind = "not_authenticated"

	// KindUnknown covers everything else.
	KindUnknown Kind = "unknown"
)

// Fault is a normalized, classified error. It is never mutated after
// creation.
type Fault struct {
	Kind      Kind
	Message   string
	Retryable bool
	cause     error
}

// New creates a Fault of the given kind. Retryability follows the kind:
// only KindNetwork faults are retryable.
func New(kind Kind, message string) *Fault {
	return &Fault{
		Kind:      kind,
		Message:   message,
		Retryable: kind == KindNetwork,
	}
}

func (f *Fault) Error() string {
	return "fault: " + f.Message
}

// Unwrap returns the raw error this fault was classified from, if any.
func (f *Fault) Unwrap() error {
	return f.cause
}
