package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"faspmgr/internal/fasp"
	"faspmgr/internal/manager"
	"faspmgr/pkg/types"
)

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func TestStatusFor(t *testing.T) {
	_, invalid := manager.NewWithConfig(manager.ManagerConfig{}).Start(types.TransferRequest{Executable: "/bin/sh"})
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", manager.ErrTransferNotFound("x"), http.StatusNotFound},
		{"invalid request", invalid, http.StatusBadRequest},
		{"closed", manager.ErrClosed, http.StatusServiceUnavailable},
		{"launch", &fasp.LaunchError{Path: "ascp", Err: errors.New("no such file")}, http.StatusServiceUnavailable},
		{"accept timeout", &fasp.AcceptTimeoutError{Port: 1, PID: 2, Wait: "3s"}, http.StatusGatewayTimeout},
		{"protocol", &fasp.ProtocolError{Reason: "unexpected line", Line: "x"}, http.StatusBadGateway},
		{"internal", fasp.ErrInternal("no terminal frame"), http.StatusBadGateway},
		{"transfer", &fasp.TransferError{Code: 12, Description: "Disk full"}, http.StatusUnprocessableEntity},
		{"wrapped transfer", fmt.Errorf("run: %w", &fasp.TransferError{Code: 1}), http.StatusUnprocessableEntity},
		{"interrupted", &fasp.InterruptedError{Err: context.Canceled}, StatusClientClosedRequest},
		{"http error", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("%s: got %d want %d", tc.name, got, tc.want)
		}
	}
}

func TestStartTransferHandler_ErrorMapping(t *testing.T) {
	svc := newMockService()
	svc.startErr = &fasp.LaunchError{Path: "ascp", Err: errors.New("not found")}
	r := NewMux(svc, nil)
	if w := postJSON(t, r, "/transfers", `{"args":["a"]}`); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("launch error status=%d", w.Code)
	}
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSONError(w, http.StatusBadGateway, "bad")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("code=%d", w.Code)
	}
	if got := w.Body.String(); got != "{\"error\":\"bad\",\"code\":502}\n" {
		t.Fatalf("body=%q", got)
	}
}
