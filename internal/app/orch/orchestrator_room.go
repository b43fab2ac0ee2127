package orch

import (
	"errors"
	"fmt"

	"github.com/dkeye/callsignal/internal/core"
	"github.com/dkeye/callsignal/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Join-error reasons sent to clients.
const (
	ReasonMissingRoom      = "missing_room"
	ReasonUnauthenticated  = "unauthenticated"
	ReasonIdentityMismatch = "identity_mismatch"
	ReasonRoomFull         = "room_full"
)

type JoinResult struct {
	Role     domain.Role
	Members  []domain.UserID
	Rejoined bool
}

// JoinError carries the client facing reason of a rejected join.
type JoinError struct {
	Reason string
	Err    error
}

func (e *JoinError) Error() string { return fmt.Sprintf("join rejected (%s): %v", e.Reason, e.Err) }
func (e *JoinError) Unwrap() error { return e.Err }

// Join adds user to room from conn, answering with joined-room or join-error.
func (o *Orchestrator) Join(conn core.ConnID, roomID domain.RoomID, user domain.UserID, displayName string) (JoinResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	res, err := o.join(conn, roomID, user, displayName)
	if err != nil {
		reason := ReasonMissingRoom
		var je *JoinError
		if errors.As(err, &je) {
			reason = je.Reason
		}
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(conn)).Str("room", string(roomID)).
			Str("user", string(user)).Msg("join rejected")
		o.send(conn, core.JoinError{RoomID: roomID, Reason: reason})
		return JoinResult{}, err
	}
	return res, nil
}

func (o *Orchestrator) join(conn core.ConnID, roomID domain.RoomID, user domain.UserID, displayName string) (JoinResult, error) {
	if roomID == "" {
		return JoinResult{}, &JoinError{Reason: ReasonMissingRoom, Err: core.ErrValidation}
	}
	if !user.Authenticated() {
		return JoinResult{}, &JoinError{Reason: ReasonUnauthenticated, Err: core.ErrUnauthenticated}
	}
	if bound, ok := o.Registry.UserOf(conn); ok && bound != user {
		return JoinResult{}, &JoinError{
			Reason: ReasonIdentityMismatch,
			Err:    fmt.Errorf("%w: connection bound to %s", core.ErrValidation, bound),
		}
	}
	if existing, ok := o.Rooms.Get(roomID); ok && o.MaxRoomMembers > 0 {
		if _, member := existing.ConnOf(user); !member && existing.MemberCount() >= o.MaxRoomMembers {
			return JoinResult{}, &JoinError{Reason: ReasonRoomFull, Err: core.ErrRoomFull}
		}
	}

	// Clients may join without registering first.
	o.Registry.Register(conn, user, displayName)

	room := o.Rooms.GetOrCreate(roomID)
	prev, replaced := room.Upsert(user, conn)
	if replaced && prev != conn {
		o.Registry.LeaveRoom(prev, roomID)
	}
	o.Registry.JoinRoom(conn, roomID)

	size := room.MemberCount()
	res := JoinResult{
		Role:     domain.RoleForSize(size),
		Members:  lo.Map(room.Members(), func(m core.Member, _ int) domain.UserID { return m.UserID }),
		Rejoined: replaced,
	}
	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("room", string(roomID)).Str("user", string(user)).
		Str("role", string(res.Role)).Int("size", size).Bool("rejoin", replaced).Msg("joined room")

	o.send(conn, core.JoinedRoom{RoomID: roomID, Success: true, Members: res.Members, Role: res.Role})

	name := o.Presence.Get(user)
	others := room.Others(conn)
	for _, m := range others {
		o.send(m.Conn, core.UserJoined{UserID: user, DisplayName: name, Connection: conn})
	}
	if !replaced && size == 2 {
		for _, m := range others {
			o.send(m.Conn, core.PartnerReady{UserID: user, DisplayName: name})
		}
	}
	return res, nil
}

// Leave removes user from room. An empty user means the user conn speaks for.
// A connection may only take its own user out of a room.
func (o *Orchestrator) Leave(conn core.ConnID, roomID domain.RoomID, user domain.UserID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	acting, err := o.actingUser(conn, roomID, user)
	if err == nil {
		err = o.removeMember(roomID, acting, "")
	}
	switch {
	case err == nil:
	case errors.Is(err, core.ErrNotFound):
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(conn)).Str("room", string(roomID)).Msg("leave ignored")
	default:
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(conn)).Str("room", string(roomID)).Msg("leave rejected")
	}
	return err
}

// actingUser resolves the user conn speaks for: its bound user, or for an
// unbound connection the member it holds in roomID. A non-empty claimed user
// must match it.
func (o *Orchestrator) actingUser(conn core.ConnID, roomID domain.RoomID, claimed domain.UserID) (domain.UserID, error) {
	acting, ok := o.Registry.UserOf(conn)
	if !ok {
		if room, found := o.Rooms.Get(roomID); found {
			acting, ok = room.UserOf(conn)
		}
	}
	if !ok {
		return "", fmt.Errorf("%w: connection %s speaks for no user", core.ErrNotFound, conn)
	}
	if claimed != "" && claimed != acting {
		return "", fmt.Errorf("%w: connection of %s cannot act for %s", core.ErrValidation, acting, claimed)
	}
	return acting, nil
}

// onConnectionDropped runs the leave path, tagged as a disconnect, for every room conn joined.
func (o *Orchestrator) onConnectionDropped(conn core.ConnID) {
	o.leaveRooms(conn, core.ReasonDisconnect)
}

// leaveRooms runs the leave path for every room entry conn still holds.
// Entries rebound to another connection by a rejoin are left alone.
func (o *Orchestrator) leaveRooms(conn core.ConnID, reason string) {
	for _, roomID := range o.Registry.RoomsOf(conn) {
		o.Registry.LeaveRoom(conn, roomID)
		room, ok := o.Rooms.Get(roomID)
		if !ok {
			continue
		}
		for {
			user, ok := room.UserOf(conn)
			if !ok || o.removeMember(roomID, user, reason) != nil {
				break
			}
		}
	}
}

// removeMember must be called with o.mu held.
func (o *Orchestrator) removeMember(roomID domain.RoomID, user domain.UserID, reason string) error {
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return fmt.Errorf("%w: room %s", core.ErrNotFound, roomID)
	}
	conn, ok := room.Remove(user)
	if !ok {
		return fmt.Errorf("%w: %s is not in room %s", core.ErrNotFound, user, roomID)
	}
	o.Registry.LeaveRoom(conn, roomID)
	log.Info().Str("module", "orch").Str("room", string(roomID)).Str("user", string(user)).Str("reason", reason).
		Int("size", room.MemberCount()).Msg("left room")

	if room.MemberCount() == 0 {
		o.Rooms.StopRoom(roomID)
		return nil
	}
	for _, m := range room.Members() {
		o.send(m.Conn, core.UserLeft{UserID: user, Connection: conn, Reason: reason})
	}
	return nil
}

// RoomSnapshot is a read-only view of a live room.
type RoomSnapshot struct {
	ID      domain.RoomID
	State   domain.RoomState
	Members []core.Member
}

// Room reports the current state of roomID; ok is false once the room is destroyed.
func (o *Orchestrator) Room(roomID domain.RoomID) (RoomSnapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return RoomSnapshot{}, false
	}
	return RoomSnapshot{ID: roomID, State: room.State(), Members: room.Members()}, true
}
