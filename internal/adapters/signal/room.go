package signal

import (
	"github.com/dkeye/callsignal/internal/core"
	"github.com/dkeye/callsignal/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(id core.ConnID, m *JoinRoomMsg) {
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("room", m.RoomID).Str("user", m.UserID).Msg("join")
	// join-error is sent by the orchestrator.
	_, _ = ctl.Orch.Join(id, domain.RoomID(m.RoomID), domain.UserID(m.UserID), m.Name())
}

// handleLeave leaves the room; the connection itself stays open.
func (ctl *SignalWSController) handleLeave(id core.ConnID, m *LeaveRoomMsg) {
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("room", m.RoomID).Msg("leave")
	// Rejected and unknown leaves are logged by the orchestrator.
	_ = ctl.Orch.Leave(id, domain.RoomID(m.RoomID), domain.UserID(m.UserID))
}
