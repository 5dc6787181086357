package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"faspmgr/internal/manager"
	"faspmgr/pkg/types"
)

type mockService struct {
	transfers map[string]types.TransferStatus
	status    types.StatusResponse
	ready     bool
	startErr  error
	started   []types.TransferRequest
	cancelled []string
}

func newMockService() *mockService {
	return &mockService{transfers: map[string]types.TransferStatus{}, ready: true}
}

func (m *mockService) Start(req types.TransferRequest) (types.TransferStatus, error) {
	if m.startErr != nil {
		return types.TransferStatus{}, m.startErr
	}
	m.started = append(m.started, req)
	st := types.TransferStatus{ID: "t1", State: types.StateRunning, Args: req.Args}
	m.transfers[st.ID] = st
	return st, nil
}

func (m *mockService) List() []types.TransferStatus {
	out := make([]types.TransferStatus, 0, len(m.transfers))
	for _, st := range m.transfers {
		out = append(out, st)
	}
	return out
}

func (m *mockService) Get(id string) (types.TransferStatus, error) {
	st, ok := m.transfers[id]
	if !ok {
		return types.TransferStatus{}, manager.ErrTransferNotFound(id)
	}
	return st, nil
}

func (m *mockService) Cancel(id string) error {
	st, ok := m.transfers[id]
	if !ok {
		return manager.ErrTransferNotFound(id)
	}
	m.cancelled = append(m.cancelled, id)
	st.State = types.StateInterrupted
	m.transfers[id] = st
	return nil
}

func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStartTransferHandler(t *testing.T) {
	svc := newMockService()
	r := NewMux(svc, nil)
	w := postJSON(t, r, "/transfers", `{"args":["-l","10m","src","dst"],"env":{"ASPERA_SCP_PASS":"x"}}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/transfers/t1" {
		t.Fatalf("location=%q", loc)
	}
	var st types.TransferStatus
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("json: %v", err)
	}
	if st.ID != "t1" || st.State != types.StateRunning {
		t.Fatalf("unexpected status %+v", st)
	}
	if len(svc.started) != 1 || svc.started[0].Env["ASPERA_SCP_PASS"] != "x" {
		t.Fatalf("request not forwarded: %+v", svc.started)
	}
}

func TestStartTransferHandler_Validation(t *testing.T) {
	svc := newMockService()
	r := NewMux(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("missing content-type: status=%d", w.Code)
	}

	if w := postJSON(t, r, "/transfers", `{`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json: status=%d", w.Code)
	}
	w = postJSON(t, r, "/transfers", `{"args":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty args: status=%d", w.Code)
	}
	var er types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != http.StatusBadRequest {
		t.Fatalf("error payload %+v err=%v", er, err)
	}
	if len(svc.started) != 0 {
		t.Fatalf("service should not be called")
	}
}

func TestStartTransferHandler_BodyLimit(t *testing.T) {
	SetMaxBodyBytes(16)
	defer SetMaxBodyBytes(0)
	r := NewMux(newMockService(), nil)
	w := postJSON(t, r, "/transfers", `{"args":["aaaaaaaaaaaaaaaaaaaaaaaaaaaa"]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestGetAndCancelTransfer(t *testing.T) {
	svc := newMockService()
	svc.transfers["abc"] = types.TransferStatus{ID: "abc", State: types.StateRunning}
	r := NewMux(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/transfers/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/transfers/abc", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("delete status=%d", w.Code)
	}
	var st types.TransferStatus
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.State != types.StateInterrupted {
		t.Fatalf("state=%q", st.State)
	}

	req = httptest.NewRequest(http.MethodGet, "/transfers/missing", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing status=%d", w.Code)
	}
	req = httptest.NewRequest(http.MethodDelete, "/transfers/missing", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing delete status=%d", w.Code)
	}
}

func TestListAndStatusHandlers(t *testing.T) {
	svc := newMockService()
	svc.transfers["a"] = types.TransferStatus{ID: "a", State: types.StateDone}
	svc.status = types.StatusResponse{Running: 2, Progress: types.ProgressStatus{Title: "multi=2"}}
	r := NewMux(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/transfers", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var list types.TransfersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list.Transfers) != 1 {
		t.Fatalf("list=%+v err=%v", list, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var st types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("json: %v", err)
	}
	if st.Running != 2 || st.Progress.Title != "multi=2" {
		t.Fatalf("status=%+v", st)
	}
}

func TestHealthAndReady(t *testing.T) {
	svc := newMockService()
	r := NewMux(svc, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz %d %q", w.Code, w.Body.String())
	}
	svc.ready = false
	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz %d", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
}

func TestEventsNotMountedWithoutFeed(t *testing.T) {
	r := NewMux(newMockService(), nil)
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCORSOptIn(t *testing.T) {
	SetCORSOptions(true, []string{"http://ui.local"}, []string{"GET", "POST"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)
	r := NewMux(newMockService(), nil)
	req := httptest.NewRequest(http.MethodOptions, "/transfers", nil)
	req.Header.Set("Origin", "http://ui.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://ui.local" {
		t.Fatalf("allow-origin=%q", got)
	}
}
