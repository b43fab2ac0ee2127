package signal

import "github.com/dkeye/callsignal/internal/core"

func (ctl *SignalWSController) handlePing(id core.ConnID) {
	ctl.Orch.Reply(id, core.Pong{})
}
