package engine

import (
	"errors"
	"fmt"
)

// Errors returned by engine operations.
var (
	// ErrTransportClosed indicates the host side of the wire went away.
	// There is no recovery; the interpreter is expected to exit.
	ErrTransportClosed = errors.New("transport closed")

	// ErrNotInitialized indicates an input wait before the first window
	// opened, and therefore before the init handshake.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrBadInit indicates the host's init message carried unusable
	// display metrics.
	ErrBadInit = errors.New("invalid init metrics")
)

// OpError wraps the failure of one Window API operation with the
// operation name and the window or stream id it targeted.
type OpError struct {
	Op     string
	Target int
	Err    error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.Target != 0 {
		return fmt.Sprintf("%s %d: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op string, target int, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Target: target, Err: err}
}
