package app

import (
	"slices"

	"github.com/dkeye/callsignal/internal/core"
	"github.com/dkeye/callsignal/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type connEntry struct {
	Handle core.SignalConnection
	User   domain.UserID
	Rooms  map[domain.RoomID]struct{}
}

// Registry maps users to their live connections and connections to their binding.
// It is not safe for concurrent use; orch.Orchestrator owns it behind its lock.
type Registry struct {
	conns    map[core.ConnID]*connEntry
	users    map[domain.UserID][]core.ConnID
	presence *Presence
}

func NewRegistry(presence *Presence) *Registry {
	return &Registry{
		conns:    make(map[core.ConnID]*connEntry),
		users:    make(map[domain.UserID][]core.ConnID),
		presence: presence,
	}
}

func (r *Registry) entry(conn core.ConnID) *connEntry {
	e, ok := r.conns[conn]
	if !ok {
		e = &connEntry{Rooms: make(map[domain.RoomID]struct{})}
		r.conns[conn] = e
	}
	return e
}

// Attach records the transport handle of a freshly opened connection.
func (r *Registry) Attach(conn core.ConnID, h core.SignalConnection) {
	r.entry(conn).Handle = h
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("attached connection")
}

func (r *Registry) Handle(conn core.ConnID) (core.SignalConnection, bool) {
	e, ok := r.conns[conn]
	if !ok || e.Handle == nil {
		return nil, false
	}
	return e.Handle, true
}

// Register binds conn to user. Repeated calls from the same connection are idempotent;
// an empty user is ignored. It reports whether the binding was applied.
func (r *Registry) Register(conn core.ConnID, user domain.UserID, displayName string) bool {
	if user.Empty() {
		log.Debug().Str("module", "app.registry").Str("conn", string(conn)).Msg("register without user ignored")
		return false
	}
	e := r.entry(conn)
	if e.User != "" && e.User != user {
		r.unbind(conn, e)
	}
	e.User = user
	if !slices.Contains(r.users[user], conn) {
		r.users[user] = append(r.users[user], conn)
	}
	if name := domain.NormalizeDisplayName(displayName); name != "" {
		r.presence.Set(user, name)
	}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Str("user", string(user)).
		Int("connections", len(r.users[user])).Msg("registered user")
	return true
}

func (r *Registry) UserOf(conn core.ConnID) (domain.UserID, bool) {
	e, ok := r.conns[conn]
	if !ok || e.User == "" {
		return "", false
	}
	return e.User, true
}

// ConnectionsOf returns the user's live connections in registration order.
func (r *Registry) ConnectionsOf(user domain.UserID) []core.ConnID {
	return slices.Clone(r.users[user])
}

// Unregister drops the user binding of conn; the connection itself stays attached.
func (r *Registry) Unregister(conn core.ConnID) {
	if e, ok := r.conns[conn]; ok && e.User != "" {
		r.unbind(conn, e)
	}
}

// Detach forgets conn entirely and returns the rooms it had joined.
func (r *Registry) Detach(conn core.ConnID) []domain.RoomID {
	e, ok := r.conns[conn]
	if !ok {
		return nil
	}
	rooms := r.roomsOf(e)
	if e.User != "" {
		r.unbind(conn, e)
	}
	delete(r.conns, conn)
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("detached connection")
	return rooms
}

func (r *Registry) unbind(conn core.ConnID, e *connEntry) {
	user := e.User
	e.User = ""
	left := lo.Without(r.users[user], conn)
	if len(left) > 0 {
		r.users[user] = left
		log.Info().Str("module", "app.registry").Str("user", string(user)).Int("connections", len(left)).Msg("unregistered connection")
		return
	}
	delete(r.users, user)
	r.presence.Delete(user)
	log.Info().Str("module", "app.registry").Str("user", string(user)).Msg("removed last connection of user")
}

func (r *Registry) JoinRoom(conn core.ConnID, room domain.RoomID) {
	r.entry(conn).Rooms[room] = struct{}{}
}

func (r *Registry) LeaveRoom(conn core.ConnID, room domain.RoomID) {
	if e, ok := r.conns[conn]; ok {
		delete(e.Rooms, room)
	}
}

// RoomsOf lists the rooms conn has joined, sorted for stable cleanup order.
func (r *Registry) RoomsOf(conn core.ConnID) []domain.RoomID {
	e, ok := r.conns[conn]
	if !ok {
		return nil
	}
	return r.roomsOf(e)
}

func (r *Registry) roomsOf(e *connEntry) []domain.RoomID {
	rooms := lo.Keys(e.Rooms)
	slices.Sort(rooms)
	return rooms
}

// Handles returns every attached transport handle.
func (r *Registry) Handles() []core.SignalConnection {
	out := make([]core.SignalConnection, 0, len(r.conns))
	for _, e := range r.conns {
		if e.Handle != nil {
			out = append(out, e.Handle)
		}
	}
	return out
}

type RegistryStats struct {
	Users       int                             `json:"connectedUsers"`
	Connections int                             `json:"connections"`
	ByUser      map[domain.UserID][]core.ConnID `json:"userConnections"`
}

func (r *Registry) Stats() RegistryStats {
	byUser := make(map[domain.UserID][]core.ConnID, len(r.users))
	for u, conns := range r.users {
		byUser[u] = slices.Clone(conns)
	}
	return RegistryStats{Users: len(r.users), Connections: len(r.conns), ByUser: byUser}
}

// Reset drops all state. Handles are not closed.
func (r *Registry) Reset() {
	clear(r.conns)
	clear(r.users)
	r.presence.Reset()
}
