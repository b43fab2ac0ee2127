package signal

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/callsignal/internal/app/orch"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type fakeWS struct {
	in      chan []byte
	written chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeWS() *fakeWS {
	return &fakeWS{
		in:      make(chan []byte, 16),
		written: make(chan []byte, 64),
		closed:  make(chan struct{}),
	}
}

func (f *fakeWS) ReadMessage() (int, []byte, error) {
	select {
	case data, ok := <-f.in:
		if !ok {
			return 0, nil, io.EOF
		}
		return websocket.TextMessage, data, nil
	case <-f.closed:
		return 0, nil, net.ErrClosed
	}
}

func (f *fakeWS) WriteMessage(_ int, data []byte) error {
	select {
	case <-f.closed:
		return net.ErrClosed
	default:
	}
	f.written <- append([]byte(nil), data...)
	return nil
}

func (f *fakeWS) WriteControl(int, []byte, time.Time) error { return nil }
func (f *fakeWS) SetReadDeadline(time.Time) error           { return nil }
func (f *fakeWS) SetWriteDeadline(time.Time) error          { return nil }
func (f *fakeWS) SetReadLimit(int64)                        {}
func (f *fakeWS) SetPongHandler(func(string) error)         {}

func (f *fakeWS) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeWS) push(s string) { f.in <- []byte(s) }

func (f *fakeWS) next(t *testing.T) map[string]any {
	t.Helper()
	select {
	case data := <-f.written:
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return nil
	}
}

func (f *fakeWS) quiet(t *testing.T) {
	t.Helper()
	select {
	case data := <-f.written:
		t.Fatalf("unexpected frame %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func newController(limiter *ConnRateLimiter) *SignalWSController {
	return NewSignalWSController(orch.New(2, nil), limiter, Options{PingPeriod: time.Hour, PongWait: 2 * time.Hour})
}

func TestController_CallFlow(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctl := newController(nil)
	ws1, ws2 := newFakeWS(), newFakeWS()
	ctl.Serve(ctx, "c1", ws1)
	ctl.Serve(ctx, "c2", ws2)

	// Given u1 is waiting in r1
	ws1.push(`{"event":"join-room","roomId":"r1","userId":"u1","displayName":"Alice"}`)
	msg := ws1.next(t)
	req.Equal("joined-room", msg["event"])
	req.Equal("initiator", msg["role"])

	// When u2 joins
	ws2.push(`{"event":"join-room","roomId":"r1","userId":"u2","userData":{"name":"Bob"}}`)
	msg = ws2.next(t)
	req.Equal("joined-room", msg["event"])
	req.Equal("responder", msg["role"])
	req.Equal([]any{"u1", "u2"}, msg["members"])

	// Then u1 sees the join and the partner
	msg = ws1.next(t)
	req.Equal("user-joined", msg["event"])
	req.Equal("Bob", msg["displayName"])
	msg = ws1.next(t)
	req.Equal("partner-ready", msg["event"])

	// When u2 sends a candidate carrying an extra offer field
	ws2.push(`{"event":"webrtc-signal","roomId":"r1","type":"candidate","candidate":{"candidate":"x"},"offer":{"stale":true}}`)

	// Then only the candidate reaches u1
	msg = ws1.next(t)
	req.Equal("webrtc-signal", msg["event"])
	req.Equal("candidate", msg["type"])
	req.Equal("c2", msg["from"])
	req.NotContains(msg, "offer")
	ws2.quiet(t)

	// When u2's socket drops
	close(ws2.in)

	// Then u1 is told it left because of a disconnect
	msg = ws1.next(t)
	req.Equal("user-left", msg["event"])
	req.Equal("u2", msg["userId"])
	req.Equal("disconnect", msg["reason"])

	require.Eventually(t, func() bool {
		snap, ok := ctl.Orch.Room("r1")
		return ok && len(snap.Members) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestController_BadMessagesStayLocal(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctl := newController(nil)
	ws := newFakeWS()
	ctl.Serve(ctx, "c1", ws)

	ws.push(`not json`)
	req.Equal(map[string]any{"event": "error", "error": "bad_payload"}, ws.next(t))

	ws.push(`{"event":"explode"}`)
	req.Equal(map[string]any{"event": "error", "error": "unknown_event"}, ws.next(t))

	ws.push(`{"event":"join-room","roomId":"r1","userId":"undefined"}`)
	msg := ws.next(t)
	req.Equal("join-error", msg["event"])
	req.Equal("unauthenticated", msg["reason"])

	// The connection still works
	ws.push(`{"event":"ping"}`)
	req.Equal(map[string]any{"event": "pong"}, ws.next(t))
}

func TestController_HandlerPanicIsRecovered(t *testing.T) {
	// Given a controller whose orchestrator is missing, so every handler panics
	ctl := &SignalWSController{}

	// Then the panic stays inside the one event
	require.NotPanics(t, func() {
		ctl.handleMessage("c1", []byte(`{"event":"ping"}`))
	})
}

func TestController_RateLimited(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctl := newController(NewConnRateLimiter(0.001, 1))
	ws := newFakeWS()
	ctl.Serve(ctx, "c1", ws)

	ws.push(`{"event":"ping"}`)
	req.Equal("pong", ws.next(t)["event"])
	ws.push(`{"event":"ping"}`)
	req.Equal(map[string]any{"event": "error", "error": "rate_limited"}, ws.next(t))
}

func TestController_RegisterAndInitiateCall(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctl := newController(nil)
	caller, callee := newFakeWS(), newFakeWS()
	ctl.Serve(ctx, "c1", caller)
	ctl.Serve(ctx, "c2", callee)

	callee.push(`{"event":"register","userId":"u2"}`)
	msg := callee.next(t)
	req.Equal("registered", msg["event"])
	req.Equal("c2", msg["connection"])

	caller.push(`{"event":"register","userId":"u1","displayName":"Alice"}`)
	req.Equal("registered", caller.next(t)["event"])

	caller.push(`{"event":"initiate-call","roomId":"r9","targetUserId":"u2","offer":{"sdp":"o"}}`)
	msg = callee.next(t)
	req.Equal("incoming-call", msg["event"])
	req.Equal("r9", msg["roomId"])
	req.Equal("Alice", msg["callerName"])
	req.Equal(map[string]any{"sdp": "o"}, msg["offer"])

	callee.push(`{"event":"get-user-info","userId":"u1"}`)
	msg = callee.next(t)
	req.Equal("user-info-response", msg["event"])
	req.Equal("Alice", msg["displayName"])
}
