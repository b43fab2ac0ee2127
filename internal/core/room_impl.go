package core

import (
	"slices"
	"time"

	"github.com/dkeye/callsignal/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// roomImpl is an in-memory room with membership kept in join order.
// It never closes adapter-owned resources.
type roomImpl struct {
	room    *domain.Room
	members []Member
}

func NewRoomService(id domain.RoomID) RoomService {
	return &roomImpl{room: &domain.Room{ID: id, CreatedAt: time.Now()}}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int { return len(r.members) }

func (r *roomImpl) State() domain.RoomState { return domain.StateForSize(len(r.members)) }

func (r *roomImpl) Members() []Member { return slices.Clone(r.members) }

func (r *roomImpl) Others(conn ConnID) []Member {
	return lo.Filter(r.members, func(m Member, _ int) bool { return m.Conn != conn })
}

func (r *roomImpl) Upsert(user domain.UserID, conn ConnID) (ConnID, bool) {
	if i := r.indexOf(user); i >= 0 {
		prev := r.members[i].Conn
		r.members[i].Conn = conn
		log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Str("user", string(user)).
			Str("conn", string(conn)).Str("prev_conn", string(prev)).Msg("member rebound")
		return prev, true
	}
	r.members = append(r.members, Member{UserID: user, Conn: conn})
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("user", string(user)).
		Str("conn", string(conn)).Int("size", len(r.members)).Msg("member added")
	return "", false
}

func (r *roomImpl) Remove(user domain.UserID) (ConnID, bool) {
	i := r.indexOf(user)
	if i < 0 {
		return "", false
	}
	conn := r.members[i].Conn
	r.members = slices.Delete(r.members, i, i+1)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("user", string(user)).
		Int("size", len(r.members)).Msg("member removed")
	return conn, true
}

func (r *roomImpl) ConnOf(user domain.UserID) (ConnID, bool) {
	if i := r.indexOf(user); i >= 0 {
		return r.members[i].Conn, true
	}
	return "", false
}

func (r *roomImpl) UserOf(conn ConnID) (domain.UserID, bool) {
	m, ok := lo.Find(r.members, func(m Member) bool { return m.Conn == conn })
	return m.UserID, ok
}

func (r *roomImpl) indexOf(user domain.UserID) int {
	return slices.IndexFunc(r.members, func(m Member) bool { return m.UserID == user })
}
