package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"faspmgr/internal/fasp"
	"faspmgr/internal/manager"
	"faspmgr/pkg/types"
)

// StatusClientClosedRequest is the non-standard code used for interrupted
// transfers.
const StatusClientClosedRequest = 499

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service and transfer errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case manager.IsTransferNotFound(err):
		return http.StatusNotFound
	case manager.IsInvalidRequest(err):
		return http.StatusBadRequest
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests
	case errors.Is(err, manager.ErrClosed):
		return http.StatusServiceUnavailable
	case fasp.IsInterrupted(err):
		return StatusClientClosedRequest
	case fasp.IsAcceptTimeout(err):
		return http.StatusGatewayTimeout
	case fasp.IsLaunch(err):
		return http.StatusServiceUnavailable
	case fasp.IsProtocol(err), fasp.IsInternal(err):
		return http.StatusBadGateway
	case errors.As(err, &he):
		return he.StatusCode()
	}
	if _, ok := fasp.AsTransfer(err); ok {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && zlog != nil {
		zlog.Debug().Err(err).Msg("encode response")
	}
}
