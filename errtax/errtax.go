// Package errtax is the daemon's error taxonomy: a small closed set of
// error kinds every package wraps its failures in, plus the pass-isolation
// helper the scheduler loop uses so one misbehaving pass never aborts a
// tick.
package errtax

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Kind is the closed set of error categories a package may report.
type Kind int

const (
	// NotFound: the subject (process, cgroup, file) does not exist.
	NotFound Kind = iota
	// Permission: the operation needs a privilege the daemon lacks.
	Permission
	// Parse: malformed data from /proc, cgroupfs, or a config file.
	Parse
	// Transport: a D-Bus/systemd call failed to complete.
	Transport
	// Interval: an operation was refused because a cooldown has not
	// elapsed yet (e.g. the restart-interval guard).
	Interval
	// CapacityExceeded: a bounded resource (dynamic cgroup slots) is full.
	CapacityExceeded
	// Validation: a config value or computed limit violates an invariant.
	Validation
	// Fatal: unrecoverable; the caller should not retry.
	Fatal
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Permission:
		return "permission"
	case Parse:
		return "parse"
	case Transport:
		return "transport"
	case Interval:
		return "interval"
	case CapacityExceeded:
		return "capacity_exceeded"
	case Validation:
		return "validation"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is the taxonomy's concrete error type. It wraps an underlying
// cause (if any) and tags it with a Kind so callers can branch with
// errors.Is/errors.As without parsing strings.
type Error struct {
	kind    Kind
	op      string
	message string
	cause   error
}

func New(kind Kind, op, message string) *Error {
	return &Error{kind: kind, op: op, message: message}
}

func Wrap(kind Kind, op string, cause error) *Error {
	return &Error{kind: kind, op: op, message: cause.Error(), cause: cause}
}

func (e *Error) Error() string {
	if e.op == "" {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.op, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Kind() Kind { return e.kind }

// Is lets errors.Is(err, errtax.ErrNotFound) work by comparing Kind, in
// addition to the usual *Error identity comparison.
func (e *Error) Is(target error) bool {
	ks, ok := target.(kindSentinel)
	if !ok {
		return false
	}
	return e.kind == ks.kind
}

// kindSentinel lets a Kind double as an errors.Is target.
type kindSentinel struct{ kind Kind }

func (s kindSentinel) Error() string { return s.kind.String() }

// Sentinel values for errors.Is(err, errtax.ErrNotFound)-style checks.
var (
	ErrNotFound          error = kindSentinel{NotFound}
	ErrPermission        error = kindSentinel{Permission}
	ErrParse             error = kindSentinel{Parse}
	ErrTransport         error = kindSentinel{Transport}
	ErrInterval          error = kindSentinel{Interval}
	ErrCapacityExceeded  error = kindSentinel{CapacityExceeded}
	ErrValidation        error = kindSentinel{Validation}
	ErrFatal             error = kindSentinel{Fatal}
)

// IsKind reports whether err (or anything it wraps) carries the given
// Kind. Equivalent to errors.Is against the matching sentinel (e.g.
// errors.Is(err, ErrNotFound)); prefer this for readability at call sites.
func IsKind(err error, kind Kind) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.kind == kind
	}
	return false
}

// IsolatePass runs fn and, on error, logs it and swallows it: one pass's
// failure must never abort the tick that contains it (spec §7). name
// identifies the pass in the log line.
func IsolatePass(name string, fn func() error) {
	if err := fn(); err != nil {
		var te *Error
		if errors.As(err, &te) {
			logrus.WithFields(logrus.Fields{
				"pass": name,
				"kind": te.Kind().String(),
			}).Warnf("pass failed: %v", err)
			return
		}
		logrus.WithField("pass", name).Warnf("pass failed: %v", err)
	}
}
