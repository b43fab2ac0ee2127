package signal

import (
	"github.com/dkeye/callsignal/internal/core"
	"github.com/dkeye/callsignal/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleRegister(id core.ConnID, m *RegisterMsg) {
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("user", m.UserID).Msg("register")
	ctl.Orch.Register(id, domain.UserID(m.UserID), m.DisplayName)
}

func (ctl *SignalWSController) handleShareUserInfo(id core.ConnID, m *ShareUserInfoMsg) {
	ctl.Orch.ShareUserInfo(id, domain.RoomID(m.RoomID), domain.UserID(m.UserID), m.DisplayName)
}

func (ctl *SignalWSController) handleGetUserInfo(id core.ConnID, m *GetUserInfoMsg) {
	ctl.Orch.GetUserInfo(id, domain.UserID(m.UserID))
}
