package signal

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/dkeye/callsignal/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, id core.ConnID, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("conn", string(id)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, id core.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
		cancel()
		ctl.Orch.Disconnect(id)
		ctl.Limiter.Forget(id)
		c.Close()
	}()

	if ctl.opts.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.opts.ReadLimit)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
				}
				return
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
			ctl.handleMessage(id, data)
		}
	}
}

// handleMessage applies one client frame. A failure stays local to this event.
func (ctl *SignalWSController) handleMessage(id core.ConnID, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "signal").Str("conn", string(id)).Interface("panic", r).
				Bytes("stack", debug.Stack()).Msg("handler panic")
		}
	}()

	if !ctl.Limiter.Allow(id) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("rate limited")
		ctl.sendError(id, "rate_limited")
		return
	}

	msg, err := Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("rejected message")
		reason := ErrBadPayload.Error()
		if errors.Is(err, ErrUnknownEvent) {
			reason = ErrUnknownEvent.Error()
		}
		ctl.sendError(id, reason)
		return
	}
	ctl.dispatch(id, msg)
}

func (ctl *SignalWSController) dispatch(id core.ConnID, msg Inbound) {
	switch m := msg.(type) {
	case *RegisterMsg:
		ctl.handleRegister(id, m)
	case *JoinRoomMsg:
		ctl.handleJoin(id, m)
	case *LeaveRoomMsg:
		ctl.handleLeave(id, m)
	case *WebRTCSignalMsg:
		ctl.handleWebRTCSignal(id, m)
	case *RequestOfferMsg:
		ctl.handleRequestOffer(id, m)
	case *InitiateCallMsg:
		ctl.handleInitiateCall(id, m)
	case *LegacySignalMsg:
		ctl.handleLegacySignal(id, m)
	case *CallResponseMsg:
		ctl.handleCallResponse(id, m)
	case *ShareUserInfoMsg:
		ctl.handleShareUserInfo(id, m)
	case *GetUserInfoMsg:
		ctl.handleGetUserInfo(id, m)
	case *PingMsg:
		ctl.handlePing(id)
	default:
		log.Warn().Str("module", "signal").Str("event", msg.Event()).Msg("unhandled message")
	}
}

func (ctl *SignalWSController) sendError(id core.ConnID, reason string) {
	ctl.Orch.Reply(id, core.ErrorReply{Error: reason})
}
