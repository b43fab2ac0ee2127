package signal

import (
	"github.com/dkeye/callsignal/internal/core"
	"github.com/dkeye/callsignal/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleWebRTCSignal(id core.ConnID, m *WebRTCSignalMsg) {
	sig := core.Signal{
		Type:      core.SignalType(m.Type),
		Offer:     m.Offer,
		Answer:    m.Answer,
		Candidate: m.Candidate,
	}
	// Only the payload matching the tag travels on.
	switch sig.Type {
	case core.SignalOffer:
		sig.Answer, sig.Candidate = nil, nil
	case core.SignalAnswer:
		sig.Offer, sig.Candidate = nil, nil
	case core.SignalCandidate:
		sig.Offer, sig.Answer = nil, nil
	}
	n := ctl.Orch.Relay(id, domain.RoomID(m.RoomID), sig)
	log.Debug().Str("module", "signal").Str("conn", string(id)).Str("room", m.RoomID).Str("type", m.Type).Int("sent_to", n).Msg("webrtc signal")
}

func (ctl *SignalWSController) handleLegacySignal(id core.ConnID, m *LegacySignalMsg) {
	ctl.Orch.RelayLegacy(id, domain.RoomID(m.RoomID), m.Data)
}

func (ctl *SignalWSController) handleRequestOffer(id core.ConnID, m *RequestOfferMsg) {
	n := ctl.Orch.RequestOffer(id, domain.RoomID(m.RoomID))
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("room", m.RoomID).Int("sent_to", n).Msg("offer requested")
}

func (ctl *SignalWSController) handleInitiateCall(id core.ConnID, m *InitiateCallMsg) {
	n := ctl.Orch.DirectedInitiate(id, domain.RoomID(m.RoomID), domain.UserID(m.TargetUserID), m.Offer)
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("room", m.RoomID).Str("target", m.TargetUserID).
		Int("sent_to", n).Msg("initiate call")
}

func (ctl *SignalWSController) handleCallResponse(id core.ConnID, m *CallResponseMsg) {
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("room", m.RoomID).Bool("accepted", m.Accepted).Msg("call response")
	ctl.Orch.CallResponse(id, domain.RoomID(m.RoomID), m.Accepted, domain.UserID(m.UserID))
}
