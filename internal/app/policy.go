package app

import (
	"strings"

	"github.com/dkeye/callsignal/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens when a connection's outbound queue is full.
type Policy interface {
	OnBackPressure(conn core.ConnID, event string) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(core.ConnID, string) BackpressureAction {
	return p.Action
}

// PolicyFor maps a config value to a policy; anything but "kick" drops the frame.
func PolicyFor(name string) Policy {
	if strings.EqualFold(strings.TrimSpace(name), "kick") {
		return SimplePolicy{Action: KickMember}
	}
	return SimplePolicy{Action: DropFrame}
}
