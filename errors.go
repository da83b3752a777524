package bufy

import (
	"errors"
	"fmt"
)

// Kind partitions every failure the core can return into the small set of
// categories the binding layer exposes.
type Kind int

const (
	// KindValidation covers malformed input: bad recurrence rules, negative
	// amounts, unknown referenced ids, currency mismatches.
	KindValidation Kind = iota
	// KindStateConflict covers lifecycle violations, such as mutating a
	// simulation that is no longer a draft.
	KindStateConflict
	// KindPersistence covers I/O and serialization failures, and files too
	// new to migrate.
	KindPersistence
	// KindInternal covers broken invariants, such as a recurrence walk
	// exceeding its iteration cap.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStateConflict:
		return "state-conflict"
	case KindPersistence:
		return "persistence"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a categorized core failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrCurrencyMismatch marks a transaction whose currency differs from the
// ledger's accounting currency. It classifies as a validation failure.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Validationf builds a validation error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// StateConflictf builds a state-conflict error.
func StateConflictf(format string, args ...any) error {
	return &Error{Kind: KindStateConflict, Msg: fmt.Sprintf(format, args...)}
}

// Persistencef builds a persistence error wrapping an underlying cause.
func Persistencef(err error, format string, args ...any) error {
	return &Error{Kind: KindPersistence, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Internalf builds an internal invariant-violation error.
func Internalf(format string, args ...any) error {
	return &Error{Kind: KindInternal, Msg: fmt.Sprintf(format, args...)}
}

// KindOf classifies any error returned by the core. Unrecognized errors
// count as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrCurrencyMismatch) {
		return KindValidation
	}
	return KindInternal
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }

// IsStateConflict reports whether err is a lifecycle violation.
func IsStateConflict(err error) bool { return err != nil && KindOf(err) == KindStateConflict }
