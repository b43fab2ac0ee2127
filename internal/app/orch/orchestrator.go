// Package orch owns the shared signaling state: the connection registry,
// presence and rooms. Every inbound event is applied as one step under a
// single lock, together with the outbound messages it produces, so that
// concurrent joins cannot race past each other and per-connection send
// order matches the order in which events were applied.
package orch

import (
	"errors"
	"sync"

	"github.com/dkeye/callsignal/internal/app"
	"github.com/dkeye/callsignal/internal/core"
	"github.com/dkeye/callsignal/internal/domain"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	mu sync.Mutex

	Registry *app.Registry
	Presence *app.Presence
	Rooms    core.RoomManager
	Policy   app.Policy

	// MaxRoomMembers caps room size; 0 disables the cap.
	MaxRoomMembers int
}

func New(maxRoomMembers int, policy app.Policy) *Orchestrator {
	presence := app.NewPresence()
	if policy == nil {
		policy = app.SimplePolicy{Action: app.DropFrame}
	}
	return &Orchestrator{
		Registry:       app.NewRegistry(presence),
		Presence:       presence,
		Rooms:          app.NewRoomManager(),
		Policy:         policy,
		MaxRoomMembers: maxRoomMembers,
	}
}

// Connect attaches the transport handle of a new connection.
func (o *Orchestrator) Connect(conn core.ConnID, h core.SignalConnection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Registry.Attach(conn, h)
}

// Register binds conn to user and acknowledges it. An empty user is silently ignored.
// Rebinding to another user first takes conn out of the rooms it joined as the old one.
func (o *Orchestrator) Register(conn core.ConnID, user domain.UserID, displayName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if bound, ok := o.Registry.UserOf(conn); ok && !user.Empty() && bound != user {
		log.Info().Str("module", "orch").Str("conn", string(conn)).Str("from", string(bound)).Str("to", string(user)).Msg("connection rebound")
		o.leaveRooms(conn, "")
	}
	if !o.Registry.Register(conn, user, displayName) {
		return
	}
	o.send(conn, core.Registered{UserID: user, Connection: conn})
}

// Unregister drops the user binding of conn, and with it the rooms conn joined,
// without closing the connection.
func (o *Orchestrator) Unregister(conn core.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.leaveRooms(conn, "")
	o.Registry.Unregister(conn)
}

// Disconnect removes conn from every room it joined and from the registry.
func (o *Orchestrator) Disconnect(conn core.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onConnectionDropped(conn)
	o.Registry.Detach(conn)
	log.Info().Str("module", "orch").Str("conn", string(conn)).Msg("connection dropped")
}

// ConnectionsOf lists the live connections of user.
func (o *Orchestrator) ConnectionsOf(user domain.UserID) []core.ConnID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Registry.ConnectionsOf(user)
}

// DisplayName returns the presence label of user.
func (o *Orchestrator) DisplayName(user domain.UserID) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Presence.Get(user)
}

type Stats struct {
	app.RegistryStats
	Rooms []core.RoomInfo `json:"rooms"`
}

func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Stats{RegistryStats: o.Registry.Stats(), Rooms: o.Rooms.List()}
}

// Close closes every attached connection and drops all state.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	handles := o.Registry.Handles()
	for _, h := range handles {
		h.Close()
	}
	for _, info := range o.Rooms.List() {
		o.Rooms.StopRoom(info.ID)
	}
	o.Registry.Reset()
	log.Info().Str("module", "orch").Int("connections", len(handles)).Msg("signaling state closed")
}

// send must be called with o.mu held.
func (o *Orchestrator) send(conn core.ConnID, ev core.Outbound) {
	h, ok := o.Registry.Handle(conn)
	if !ok {
		log.Debug().Str("module", "orch").Str("conn", string(conn)).Str("event", ev.Name()).Msg("no handle for connection")
		return
	}
	frame, err := core.Encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", ev.Name()).Msg("encode outbound")
		return
	}
	if err := h.TrySend(frame); err != nil {
		o.onSendFailure(conn, h, ev.Name(), err)
	}
}

func (o *Orchestrator) onSendFailure(conn core.ConnID, h core.SignalConnection, event string, err error) {
	if !errors.Is(err, core.ErrBackpressure) {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(conn)).Str("event", event).Msg("send failed")
		return
	}
	switch o.Policy.OnBackPressure(conn, event) {
	case app.KickMember:
		log.Warn().Str("module", "orch").Str("conn", string(conn)).Str("event", event).Msg("backpressure, closing connection")
		// The read pump notices the close and runs Disconnect.
		h.Close()
	case app.DropFrame, app.NoAction:
		log.Warn().Str("module", "orch").Str("conn", string(conn)).Str("event", event).Msg("backpressure, frame dropped")
	}
}
