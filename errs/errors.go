// Package errs defines the engine's error taxonomy: a small set of stable
// kinds, not a set of concrete per-case types, following the sentinel +
// wrapping style of api/database/errors.go.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the engine's error categories.
type Kind int

const (
	// InvalidArgument covers non-object inserts, non-object update
	// patches, unknown entities, and path traversal through a non-object
	// where update requires one.
	InvalidArgument Kind = iota
	// NotFound covers find_one with no match and commits that reference
	// an unregistered instance.
	NotFound
	// Storage covers file open, lock, read, write, and parse failures.
	Storage
	// Conflict covers two instances declaring the same entity.
	Conflict
	// Transaction wraps the inner failure of an operation that failed
	// during a transaction commit, after rollback has completed.
	Transaction
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case Storage:
		return "storage"
	case Conflict:
		return "conflict"
	case Transaction:
		return "transaction"
	default:
		return "unknown"
	}
}

// Error is the engine's concrete error type: a kind, a message, and an
// optional wrapped cause.
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

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// InvalidArgumentf builds an InvalidArgument error.
func InvalidArgumentf(format string, args ...any) *Error { return newf(InvalidArgument, format, args...) }

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...any) *Error { return newf(NotFound, format, args...) }

// Conflictf builds a Conflict error.
func Conflictf(format string, args ...any) *Error { return newf(Conflict, format, args...) }

// Storagef wraps cause as a Storage error with context.
func Storagef(cause error, format string, args ...any) *Error {
	e := newf(Storage, format, args...)
	e.Err = cause
	return e
}

// Txn wraps cause, the original inner failure, as a Transaction error.
func Txn(cause error) *Error {
	return &Error{Kind: Transaction, Msg: "operation failed during commit", Err: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
