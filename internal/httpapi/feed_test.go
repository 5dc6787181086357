package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faspmgr/internal/fasp"
)

func dialFeed(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	h := http.Header{}
	if origin != "" {
		h.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(u, h)
}

func TestFeed_BroadcastsEnhancedEvents(t *testing.T) {
	feed := NewFeed(context.Background(), zerolog.Nop())
	srv := httptest.NewServer(NewMux(newMockService(), feed))
	defer srv.Close()

	conn, _, err := dialFeed(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return feed.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	ev := fasp.Normalize(map[string]string{"Type": "STATS", "SessionId": "s1", "Bytescont": "42"})
	require.NoError(t, feed.OnEvent(fasp.Event{Format: fasp.FormatEnhanced, Enhanced: ev}))
	// Non-enhanced events are ignored.
	require.NoError(t, feed.OnEvent(fasp.Event{Format: fasp.FormatText, Text: "FASPMGR 2\n"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "STATS", got["type"])
	assert.Equal(t, "s1", got["session_id"])
	assert.EqualValues(t, 42, got["bytes_cont"])

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return feed.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFeed_RejectsForeignOrigin(t *testing.T) {
	feed := NewFeed(context.Background(), zerolog.Nop())
	srv := httptest.NewServer(NewMux(newMockService(), feed))
	defer srv.Close()

	_, resp, err := dialFeed(t, srv, "http://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

}

func TestFeed_AllowsConfiguredOrigin(t *testing.T) {
	SetCORSOptions(false, []string{"http://ui.example"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)
	feed := NewFeed(context.Background(), zerolog.Nop())
	srv := httptest.NewServer(NewMux(newMockService(), feed))
	defer srv.Close()

	conn, _, err := dialFeed(t, srv, "http://ui.example")
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return feed.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFeed_ClosesOnBaseContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	feed := NewFeed(ctx, zerolog.Nop())
	srv := httptest.NewServer(NewMux(newMockService(), feed))
	defer srv.Close()
	conn, _, err := dialFeed(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return feed.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "server should close the subscription")
	assert.Eventually(t, func() bool { return feed.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFeed_BaseContextIsPerFeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancelled := NewFeed(ctx, zerolog.Nop())
	live := NewFeed(context.Background(), zerolog.Nop())
	cancel()

	srv := httptest.NewServer(NewMux(newMockService(), live))
	defer srv.Close()
	conn, _, err := dialFeed(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return live.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return live.ClientCount() == 0 }, 100*time.Millisecond, 10*time.Millisecond,
		"cancelling another feed's context must not end this subscription")
	assert.Equal(t, 0, cancelled.ClientCount())

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return live.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
