package fasp

import (
	"errors"
	"fmt"
)

// LaunchError reports a missing executable or a failed OS spawn.
type LaunchError struct {
	Path string
	PID  int // non-zero when a child was started before the failure
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// AcceptTimeoutError signals that the child never connected to the management port.
type AcceptTimeoutError struct {
	Port int
	PID  int
	Wait string
}

func (e *AcceptTimeoutError) Error() string {
	return fmt.Sprintf("no connection on management port %d within %s (pid=%d)", e.Port, e.Wait, e.PID)
}

// ProtocolError is a malformed control-channel line. Line holds the offending text.
type ProtocolError struct {
	Reason string
	Line   string
}

func (e *ProtocolError) Error() string {
	if e.Line == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Line)
}

// TransferError is raised from a terminal ERROR frame.
type TransferError struct {
	Code        int
	Description string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed: %s (code %d)", e.Description, e.Code)
}

// InternalError means an invariant of the event stream was broken.
type InternalError struct{ msg string }

func (e *InternalError) Error() string { return "internal error: " + e.msg }

// ErrInternal constructs an InternalError.
func ErrInternal(msg string) error { return &InternalError{msg: msg} }

// InterruptedError wraps the context error that cancelled a transfer.
type InterruptedError struct{ Err error }

func (e *InterruptedError) Error() string { return "transfer interrupted: " + e.Err.Error() }

func (e *InterruptedError) Unwrap() error { return e.Err }

// IsLaunch reports whether err is (or wraps) a LaunchError.
func IsLaunch(err error) bool {
	var e *LaunchError
	return errors.As(err, &e)
}

// IsAcceptTimeout reports whether err is (or wraps) an AcceptTimeoutError.
func IsAcceptTimeout(err error) bool {
	var e *AcceptTimeoutError
	return errors.As(err, &e)
}

// IsProtocol reports whether err is (or wraps) a ProtocolError.
func IsProtocol(err error) bool {
	var e *ProtocolError
	return errors.As(err, &e)
}

// IsInternal reports whether err is (or wraps) an InternalError.
func IsInternal(err error) bool {
	var e *InternalError
	return errors.As(err, &e)
}

// IsInterrupted reports whether err is (or wraps) an InterruptedError.
func IsInterrupted(err error) bool {
	var e *InterruptedError
	return errors.As(err, &e)
}

// AsTransfer extracts the TransferError from err, if any, so callers can
// inspect the code for retry decisions.
func AsTransfer(err error) (*TransferError, bool) {
	var e *TransferError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
