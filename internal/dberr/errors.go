// Package dberr defines the error-kind taxonomy shared by every layer of
// the engine: parse errors, internal/semantic errors, MVCC write conflicts,
// and I/O failures. Callers classify an error with errors.Is against the
// sentinel Kind values, not by string matching.
package dberr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies which of the four error classes an error belongs to.
type Kind int

const (
	// KindParse is a lexical or grammatical failure in client SQL.
	KindParse Kind = iota
	// KindInternal is a schema, type, or semantic violation.
	KindInternal
	// KindWriteConflict is a first-committer-wins MVCC conflict.
	KindWriteConflict
	// KindIO is a disk or network failure.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindInternal:
		return "internal"
	case KindWriteConflict:
		return "write conflict"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a classified engine error. The message is what the client sees;
// Kind lets callers classify the error. The session's implicit-transaction
// rollback (§7) does not look at Kind: any error rolls the transaction back.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is one of the Kind sentinels, letting callers
// write errors.Is(err, dberr.ErrWriteConflict) without type assertions.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.msg == ""
}

// Kind sentinels usable with errors.Is. They carry no message; a concrete
// *Error built by Parsef/Internalf/etc. matches them because Is only
// compares Kind when the target's msg is empty.
var (
	ErrParse         = &Error{Kind: KindParse}
	ErrInternal      = &Error{Kind: KindInternal}
	ErrWriteConflict = &Error{Kind: KindWriteConflict}
	ErrIO            = &Error{Kind: KindIO}
)

// Parsef builds a Parse-kind error.
func Parsef(format string, args ...any) error {
	return &Error{Kind: KindParse, msg: fmt.Sprintf(format, args...)}
}

// Internalf builds an Internal-kind error.
func Internalf(format string, args ...any) error {
	return &Error{Kind: KindInternal, msg: fmt.Sprintf(format, args...)}
}

// WriteConflictf builds a WriteConflict-kind error.
func WriteConflictf(format string, args ...any) error {
	return &Error{Kind: KindWriteConflict, msg: fmt.Sprintf(format, args...)}
}

// IOf wraps a lower-level I/O error (typically from storage) with context.
func IOf(cause error, format string, args ...any) error {
	return &Error{Kind: KindIO, msg: fmt.Sprintf(format, args...), err: errors.WithStack(cause)}
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
