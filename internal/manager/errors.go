package manager

import (
	"errors"
	"strconv"
)

// tooBusyError signals the concurrency limit was reached (429).
type tooBusyError struct{ limit int }

func (e tooBusyError) Error() string {
	return "too busy: " + strconv.Itoa(e.limit) + " transfers already running"
}

// IsTooBusy reports whether err indicates the active transfer limit (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

type transferNotFoundError struct{ id string }

func (e transferNotFoundError) Error() string { return "transfer not found: " + e.id }

// ErrTransferNotFound returns an error for an unknown transfer id.
func ErrTransferNotFound(id string) error { return transferNotFoundError{id: id} }

// IsTransferNotFound reports whether err indicates an unknown transfer id.
func IsTransferNotFound(err error) bool {
	var e transferNotFoundError
	return errors.As(err, &e)
}

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("manager closed")

// invalidRequestError rejects a request before anything is spawned (400).
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return "invalid request: " + e.msg }

// IsInvalidRequest reports whether err rejects the request itself (return 400).
func IsInvalidRequest(err error) bool {
	var e invalidRequestError
	return errors.As(err, &e)
}
