package app

import (
	"slices"
	"strings"

	"github.com/dkeye/callsignal/internal/core"
	"github.com/dkeye/callsignal/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// RoomManagerImpl creates rooms on first join and drops them when emptied.
// Access is serialized by orch.Orchestrator.
type RoomManagerImpl struct {
	rooms map[domain.RoomID]core.RoomService
}

func NewRoomManager() core.RoomManager {
	return &RoomManagerImpl{rooms: make(map[domain.RoomID]core.RoomService)}
}

func (f *RoomManagerImpl) GetOrCreate(id domain.RoomID) core.RoomService {
	if room, ok := f.rooms[id]; ok {
		return room
	}
	room := core.NewRoomService(id)
	f.rooms[id] = room
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	return room
}

func (f *RoomManagerImpl) Get(id domain.RoomID) (core.RoomService, bool) {
	room, ok := f.rooms[id]
	return room, ok
}

func (f *RoomManagerImpl) Len() int { return len(f.rooms) }

func (f *RoomManagerImpl) List() []core.RoomInfo {
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for id, r := range f.rooms {
		out = append(out, core.RoomInfo{
			ID:          id,
			State:       r.State(),
			MemberCount: r.MemberCount(),
			Members:     lo.Map(r.Members(), func(m core.Member, _ int) domain.UserID { return m.UserID }),
			CreatedAt:   r.Room().CreatedAt,
		})
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return out
}

func (f *RoomManagerImpl) StopRoom(id domain.RoomID) {
	if _, ok := f.rooms[id]; !ok {
		return
	}
	delete(f.rooms, id)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room destroyed")
}
