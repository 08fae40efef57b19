// Package sdk is the client side of the ScriptSDK bridge.
//
// Every capability of the scripting layer is a single request/response
// call to the bridge. A call yields a Result envelope which is mapped to
// an error with Result.Err.
package sdk

import (
	"context"
	"time"
)

// DefaultTimeout is used for calls without WithTimeout.
const DefaultTimeout = 5 * time.Second

// Sender sends a command to the bridge and waits for its Result.
//
// A non-nil error is only returned for transport failures
// (connection closed, timeout, canceled context). A remote failure
// is reported through an unsuccessful Result.
type Sender interface {
	Send(ctx context.Context, command string, args []string, opts ...SendOption) (*Result, error)
}

// SenderFunc is a func implementing Sender.
type SenderFunc func(ctx context.Context, command string, args []string, opts ...SendOption) (*Result, error)

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, command string, args []string, opts ...SendOption) (*Result, error) {
	return f(ctx, command, args, opts...)
}

// SendOptions are the resolved options of a single call.
type SendOptions struct {
	Timeout time.Duration
}

// SendOption configures a single call.
type SendOption func(*SendOptions)

// WithTimeout overrides DefaultTimeout for a call.
func WithTimeout(d time.Duration) SendOption {
	return func(o *SendOptions) { o.Timeout = d }
}

// ResolveOptions applies opts on top of the defaults.
func ResolveOptions(opts ...SendOption) SendOptions {
	o := SendOptions{Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Call sends a command and maps the envelope to an error.
// Transport errors are wrapped into a generic *Error.
func Call(ctx context.Context, s Sender, command string, args []string, opts ...SendOption) (*Result, error) {
	res, err := s.Send(ctx, command, args, opts...)
	if err != nil {
		return nil, &Error{Msg: Prefix + command + " failed", Err: err}
	}
	if err = res.Err(); err != nil {
		return res, err
	}
	return res, nil
}
