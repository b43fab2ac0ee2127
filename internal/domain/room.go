package domain

import "time"

type RoomID string

type Room struct {
	ID        RoomID
	CreatedAt time.Time
}

// Role is decided per join, it is never stored on the room.
type Role string

const (
	RoleInitiator Role = "initiator"
	RoleResponder Role = "responder"
)

// RoleForSize returns the role of a joiner given the membership size after the join.
func RoleForSize(size int) Role {
	if size == 1 {
		return RoleInitiator
	}
	return RoleResponder
}

type RoomState int

const (
	RoomEmpty RoomState = iota
	RoomWaiting
	RoomReady
)

func StateForSize(size int) RoomState {
	switch {
	case size <= 0:
		return RoomEmpty
	case size == 1:
		return RoomWaiting
	default:
		return RoomReady
	}
}

func (s RoomState) String() string {
	switch s {
	case RoomWaiting:
		return "waiting"
	case RoomReady:
		return "ready"
	default:
		return "empty"
	}
}

func (s RoomState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
