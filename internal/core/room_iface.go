package core

import (
	"time"

	"github.com/dkeye/callsignal/internal/domain"
)

// RoomService is the core-facing API of a room.
// It owns the ordered membership but never touches transport resources.
// Implementations are not safe for concurrent use; the orchestrator serializes access.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	State() domain.RoomState
	Members() []Member
	Others(conn ConnID) []Member

	// Upsert appends user, or rebinds its entry to conn when already present.
	Upsert(user domain.UserID, conn ConnID) (prev ConnID, replaced bool)
	Remove(user domain.UserID) (ConnID, bool)
	ConnOf(user domain.UserID) (ConnID, bool)
	UserOf(conn ConnID) (domain.UserID, bool)
}

type RoomInfo struct {
	ID          domain.RoomID    `json:"id"`
	State       domain.RoomState `json:"state"`
	MemberCount int              `json:"member_count"`
	Members     []domain.UserID  `json:"members"`
	CreatedAt   time.Time        `json:"created_at"`
}

type RoomManager interface {
	GetOrCreate(id domain.RoomID) RoomService
	Get(id domain.RoomID) (RoomService, bool)
	List() []RoomInfo
	Len() int
	StopRoom(id domain.RoomID)
}
