package sdk

import (
	"errors"
	"fmt"
)

// Prefix is prepended to every error message surfaced to scripts.
const Prefix = "[ScriptSDK] "

// CodeNotFound is the envelope code the bridge uses when
// the addressed player, entity or target does not exist.
const CodeNotFound = 404

// ErrNotFound is matched by errors.Is for every *NotFoundError.
var ErrNotFound = errors.New("not found")

// Result is the envelope every remote call returns.
type Result struct {
	Success bool     `json:"success"`
	Result  []string `json:"result"`
	Code    int      `json:"code,omitempty"`
}

// First returns the first result value or "" if there is none.
func (r *Result) First() string {
	if r == nil || len(r.Result) == 0 {
		return ""
	}
	return r.Result[0]
}

// Err maps an unsuccessful envelope to an error.
// It returns nil if the call succeeded.
func (r *Result) Err() error {
	if r == nil {
		return &Error{Msg: Prefix + "empty response"}
	}
	if r.Success {
		return nil
	}
	if r.Code == CodeNotFound {
		return &NotFoundError{Msg: Prefix + r.First()}
	}
	return &Error{Msg: Prefix + r.First(), Code: r.Code}
}

// NotFoundError is returned when the remote side reported
// that the addressed object does not exist.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Error is a generic remote or transport failure.
type Error struct {
	Msg  string
	Code int   // envelope code, zero for transport failures
	Err  error // underlying transport error, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf returns a generic *Error with the Prefix applied.
func Errorf(format string, args ...any) error {
	return &Error{Msg: Prefix + fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
