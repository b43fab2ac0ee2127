package orch

import (
	"encoding/json"

	"github.com/dkeye/callsignal/internal/core"
	"github.com/dkeye/callsignal/internal/domain"
	"github.com/rs/zerolog/log"
)

// Relay forwards a handshake payload from conn to every other member of room.
func (o *Orchestrator) Relay(conn core.ConnID, roomID domain.RoomID, sig core.Signal) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.broadcastFrom(conn, roomID, core.WebRTCSignal{
		Type:      sig.Type,
		Offer:     sig.Offer,
		Answer:    sig.Answer,
		Candidate: sig.Candidate,
		From:      conn,
	})
}

// RelayLegacy forwards an untyped signal blob the same way as Relay.
func (o *Orchestrator) RelayLegacy(conn core.ConnID, roomID domain.RoomID, data json.RawMessage) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.broadcastFrom(conn, roomID, core.LegacySignal{Data: data, From: conn})
}

// RequestOffer asks the other members of room to resend their offer.
func (o *Orchestrator) RequestOffer(conn core.ConnID, roomID domain.RoomID) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.broadcastFrom(conn, roomID, core.OfferRequested{From: conn})
}

// CallResponse tells the other members whether user accepted the call.
func (o *Orchestrator) CallResponse(conn core.ConnID, roomID domain.RoomID, accepted bool, user domain.UserID) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if bound, ok := o.Registry.UserOf(conn); ok {
		user = bound
	}
	return o.broadcastFrom(conn, roomID, core.CallResponse{Accepted: accepted, UserID: user})
}

// DirectedInitiate sends an incoming-call to every live connection of target,
// whether or not target has joined the room yet.
func (o *Orchestrator) DirectedInitiate(conn core.ConnID, roomID domain.RoomID, target domain.UserID, offer json.RawMessage) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	ev := core.IncomingCall{RoomID: roomID, Offer: offer, From: conn, CallerName: "Caller"}
	if caller, ok := o.Registry.UserOf(conn); ok {
		ev.FromUserID = caller
		ev.CallerName = o.Presence.Get(caller)
	}
	sent := 0
	for _, c := range o.Registry.ConnectionsOf(target) {
		if c == conn {
			continue
		}
		o.send(c, ev)
		sent++
	}
	if sent == 0 {
		log.Info().Str("module", "orch").Str("target", string(target)).Str("room", string(roomID)).Msg("initiate-call target not connected")
	}
	return sent
}

// ShareUserInfo records a display name and passes it to the other members of room.
func (o *Orchestrator) ShareUserInfo(conn core.ConnID, roomID domain.RoomID, user domain.UserID, displayName string) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	acting, err := o.actingUser(conn, roomID, user)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(conn)).Str("user", string(user)).Msg("share-user-info ignored")
		return 0
	}
	o.Presence.Set(acting, displayName)
	return o.broadcastFrom(conn, roomID, core.UserInfo{UserID: acting, DisplayName: o.Presence.Get(acting)})
}

// GetUserInfo answers conn with the presence label of user.
func (o *Orchestrator) GetUserInfo(conn core.ConnID, user domain.UserID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.send(conn, core.UserInfoResponse{UserID: user, DisplayName: o.Presence.Get(user)})
}

// Reply sends ev to conn only.
func (o *Orchestrator) Reply(conn core.ConnID, ev core.Outbound) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.send(conn, ev)
}

// broadcastFrom must be called with o.mu held. The sender has to be a room member.
func (o *Orchestrator) broadcastFrom(conn core.ConnID, roomID domain.RoomID, ev core.Outbound) int {
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		log.Debug().Str("module", "orch").Str("room", string(roomID)).Str("event", ev.Name()).Msg("broadcast to unknown room")
		return 0
	}
	if _, member := room.UserOf(conn); !member {
		log.Debug().Str("module", "orch").Str("room", string(roomID)).Str("conn", string(conn)).Str("event", ev.Name()).Msg("broadcast from non member")
		return 0
	}
	others := room.Others(conn)
	for _, m := range others {
		o.send(m.Conn, ev)
	}
	log.Debug().Str("module", "orch").Str("room", string(roomID)).Str("from", string(conn)).Str("event", ev.Name()).Int("sent_to", len(others)).Msg("broadcast")
	return len(others)
}
