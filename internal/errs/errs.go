// Package errs defines the failure classes shared by every emc component.
//
// Components return ordinary wrapped errors; the values that decide how a
// failure is reported carry a [Kind]. [KindOf] walks the error chain and
// returns the first kind it finds, so callers can branch on the class of a
// failure without knowing which component produced it.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// Internal is any failure that carries no more specific kind.
	Internal Kind = iota
	// NotFound means a server name or DDNS domain is absent from the registry.
	NotFound
	// AlreadyExists means a server name or DDNS domain is already taken.
	AlreadyExists
	// AddressTimeout means address resolution exhausted its attempts.
	AddressTimeout
	// DdnsSyncFailure means a DNS update request failed or was rejected.
	DdnsSyncFailure
	// ProvisionError means the provider rejected server creation or returned no server.
	ProvisionError
	// ProviderError is any other provider-side failure.
	ProviderError
	// Aborted means the operator declined to continue.
	Aborted
)

var kindNames = map[Kind]string{
	Internal:        "internal",
	NotFound:        "not found",
	AlreadyExists:   "already exists",
	AddressTimeout:  "address timeout",
	DdnsSyncFailure: "ddns sync failure",
	ProvisionError:  "provision error",
	ProviderError:   "provider error",
	Aborted:         "aborted",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a kind-carrying error with an optional cause.
type Error struct {
	kind Kind
	msg  string
	err  error
}

// New returns an error of the given kind.
func New(kind Kind, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of the given kind wrapping err.
// It returns nil when err is nil.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.msg
	}
	if e.msg == "" {
		return e.err.Error()
	}
	return e.msg + ": " + e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

// Kind implements the kinded interface consulted by KindOf.
func (e *Error) Kind() Kind { return e.kind }

// Is reports whether target is an *Error of the same kind, which lets callers
// write errors.Is(err, errs.Sentinel(errs.NotFound)).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.msg == "" && t.err == nil && t.kind == e.kind
}

// Sentinel returns a bare error of the given kind for use with errors.Is.
func Sentinel(kind Kind) error {
	return &Error{kind: kind}
}

type kinded interface {
	Kind() Kind
}

// KindOf returns the kind of the outermost kinded error in err's chain,
// or Internal if there is none.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return Internal
}

// IsKind reports whether err has the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
