package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/callsignal/internal/app/orch"
	"github.com/dkeye/callsignal/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func testConfig(debug bool) *config.Config {
	return &config.Config{
		Mode:           "test",
		Environment:    "test",
		StaticPath:     "./web",
		Secret:         "test-secret",
		DebugEndpoints: debug,
		ReadLimit:      65536,
		PingPeriod:     time.Minute,
		PongWait:       2 * time.Minute,
		WriteWait:      time.Second,
		SendBuffer:     16,
		MaxRoomMembers: 2,
		ICEServers:     []config.ICEServer{{URLs: []string{"stun:stun.example.org:3478"}}},
	}
}

func newServer(t *testing.T, debug bool) (*httptest.Server, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	o := orch.New(2, nil)
	r, err := SetupRouter(ctx, testConfig(debug), o)
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		o.Close()
		srv.Close()
	})
	return srv, o
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestRouter_Health(t *testing.T) {
	req := require.New(t)
	srv, _ := newServer(t, false)

	var body HealthResponse
	req.Equal(http.StatusOK, getJSON(t, srv.URL+"/api/health", &body))
	req.True(body.OK)
	req.Equal("test", body.Environment)
	_, err := time.Parse(time.RFC3339, body.Timestamp)
	req.NoError(err)
}

func TestRouter_RTCConfig(t *testing.T) {
	req := require.New(t)
	srv, _ := newServer(t, false)

	var body struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	req.Equal(http.StatusOK, getJSON(t, srv.URL+"/api/rtc/config", &body))
	req.Len(body.ICEServers, 1)
	req.Equal([]string{"stun:stun.example.org:3478"}, body.ICEServers[0].URLs)
}

func TestRouter_DebugEndpointToggle(t *testing.T) {
	req := require.New(t)

	srv, _ := newServer(t, false)
	req.Equal(http.StatusNotFound, getJSON(t, srv.URL+"/api/debug/connected-users", nil))

	srv, o := newServer(t, true)
	o.Register("c1", "u1", "")
	var stats struct {
		ConnectedUsers int `json:"connectedUsers"`
	}
	req.Equal(http.StatusOK, getJSON(t, srv.URL+"/api/debug/connected-users", &stats))
	req.Equal(1, stats.ConnectedUsers)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m map[string]any
	require.NoError(t, ws.ReadJSON(&m))
	return m
}

func TestRouter_SignalOverWebSocket(t *testing.T) {
	req := require.New(t)
	srv, o := newServer(t, false)
	a, b := dial(t, srv), dial(t, srv)

	req.NoError(a.WriteJSON(map[string]any{"event": "join-room", "roomId": "r1", "userId": "u1"}))
	msg := readEvent(t, a)
	req.Equal("joined-room", msg["event"])
	req.Equal("initiator", msg["role"])

	req.NoError(b.WriteJSON(map[string]any{"event": "join-room", "roomId": "r1", "userId": "u2"}))
	msg = readEvent(t, b)
	req.Equal("responder", msg["role"])
	req.Equal("user-joined", readEvent(t, a)["event"])
	req.Equal("partner-ready", readEvent(t, a)["event"])

	req.NoError(a.WriteJSON(map[string]any{"event": "webrtc-signal", "roomId": "r1", "type": "offer", "offer": map[string]any{"sdp": "v=0"}}))
	msg = readEvent(t, b)
	req.Equal("webrtc-signal", msg["event"])
	req.Equal(map[string]any{"sdp": "v=0"}, msg["offer"])

	// Closing b's socket runs the disconnect path
	req.NoError(b.Close())
	msg = readEvent(t, a)
	req.Equal("user-left", msg["event"])
	req.Equal("disconnect", msg["reason"])

	require.Eventually(t, func() bool { return len(o.ConnectionsOf("u2")) == 0 }, time.Second, 10*time.Millisecond)
}
