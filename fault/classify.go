package fault

import (
	"errors"
	"strings"

	"github.com/opsgrid/tenantstore/remote"
)

// Classify maps a raw remote-store error to a Fault. It never fails: an
// unclassifiable error yields a well-formed KindUnknown fault carrying the
// original message. A nil error classifies to nil; an error that already is
// a *Fault is returned unchanged.
//
// Rules are checked in a fixed order: the message heuristics (network,
// credentials, row-level security) first, then the structured code on the
// error ([remote.Error] Code) for the constraint and privilege kinds. An
// error whose message matches an early rule classifies by message even when
// it also carries a code.
func Classify(err error) *Fault {
	if err == nil {
		return nil
	}

	var f *Fault
	if errors.As(err, &f) {
		return f
	}

	message := err.Error()
	code := ""
	var rerr *remote.Error
	if errors.As(err, &rerr) {
		message = rerr.Message
		code = rerr.Code
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "fetch") || strings.Contains(lower, "network"):
		return classified(KindNetwork, "network error, please check your connection: "+message, err)
	case strings.Contains(message, "Invalid login credentials"):
		return classified(KindInvalidCredentials, "invalid email or password", err)
	case strings.Contains(lower, "row-level security") || strings.Contains(lower, "row level security"):
		return classified(KindAccessDenied, "access denied by security policy", err)
	}

	switch code {
	case "23505":
		return classified(KindUniqueConstraint, "a record with this value already exists", err)
	case "23503":
		return classified(KindForeignKeyConstraint, "operation references a missing record", err)
	case "42501":
		return classified(KindInsufficientPrivilege, "insufficient privileges for this operation", err)
	case "":
		return classified(KindUnknown, "unexpected error: "+message, err)
	default:
		return classified(KindUnknown, "database error: "+message, err)
	}
}

func classified(kind Kind, message string, cause error) *Fault {
	f := New(kind, message)
	f.cause = cause
	return f
}
