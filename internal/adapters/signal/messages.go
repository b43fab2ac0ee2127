package signal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Inbound event names.
const (
	EvRegister             = "register"
	EvRegisterUser         = "register-user"
	EvJoinRoom             = "join-room"
	EvWebRTCSignal         = "webrtc-signal"
	EvRequestOffer         = "request-offer"
	EvShareUserInfo        = "share-user-info"
	EvGetUserInfo          = "get-user-info"
	EvLeaveRoom            = "leave-room"
	EvInitiateCall         = "initiate-call"
	EvSignal               = "signal"
	EvIncomingCallResponse = "incoming-call-response"
	EvPing                 = "ping"
)

var (
	ErrUnknownEvent = errors.New("unknown_event")
	ErrBadPayload   = errors.New("bad_payload")
)

// Inbound is the closed set of messages a client may send.
type Inbound interface {
	Event() string
	inbound()
}

type RegisterMsg struct {
	UserID      string `json:"userId" validate:"max=128"`
	DisplayName string `json:"displayName" validate:"max=256"`
}

// JoinRoomMsg leaves room and user unchecked here: a join without them
// is answered with join-error by the orchestrator.
type JoinRoomMsg struct {
	RoomID      string    `json:"roomId" validate:"max=128"`
	UserID      string    `json:"userId" validate:"max=128"`
	DisplayName string    `json:"displayName" validate:"max=256"`
	UserData    *UserData `json:"userData"`
}

type UserData struct {
	Name string `json:"name" validate:"max=256"`
}

func (m *JoinRoomMsg) Name() string {
	if m.DisplayName == "" && m.UserData != nil {
		return m.UserData.Name
	}
	return m.DisplayName
}

type WebRTCSignalMsg struct {
	RoomID    string          `json:"roomId" validate:"required,max=128"`
	Type      string          `json:"type" validate:"required,oneof=offer answer candidate"`
	Offer     json.RawMessage `json:"offer" validate:"required_if=Type offer"`
	Answer    json.RawMessage `json:"answer" validate:"required_if=Type answer"`
	Candidate json.RawMessage `json:"candidate" validate:"required_if=Type candidate"`
}

type RequestOfferMsg struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
}

type ShareUserInfoMsg struct {
	RoomID      string `json:"roomId" validate:"required,max=128"`
	UserID      string `json:"userId" validate:"required,max=128"`
	DisplayName string `json:"displayName" validate:"required,max=256"`
}

type GetUserInfoMsg struct {
	UserID string `json:"userId" validate:"required,max=128"`
}

type LeaveRoomMsg struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
	UserID string `json:"userId" validate:"max=128"`
}

type InitiateCallMsg struct {
	RoomID       string          `json:"roomId" validate:"required,max=128"`
	Offer        json.RawMessage `json:"offer" validate:"required"`
	TargetUserID string          `json:"targetUserId" validate:"required,max=128"`
}

type LegacySignalMsg struct {
	RoomID string          `json:"roomId" validate:"required,max=128"`
	Data   json.RawMessage `json:"data" validate:"required"`
}

type CallResponseMsg struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	Accepted bool   `json:"accepted"`
	UserID   string `json:"userId" validate:"max=128"`
}

type PingMsg struct{}

func (*RegisterMsg) Event() string      { return EvRegister }
func (*JoinRoomMsg) Event() string      { return EvJoinRoom }
func (*WebRTCSignalMsg) Event() string  { return EvWebRTCSignal }
func (*RequestOfferMsg) Event() string  { return EvRequestOffer }
func (*ShareUserInfoMsg) Event() string { return EvShareUserInfo }
func (*GetUserInfoMsg) Event() string   { return EvGetUserInfo }
func (*LeaveRoomMsg) Event() string     { return EvLeaveRoom }
func (*InitiateCallMsg) Event() string  { return EvInitiateCall }
func (*LegacySignalMsg) Event() string  { return EvSignal }
func (*CallResponseMsg) Event() string  { return EvIncomingCallResponse }
func (*PingMsg) Event() string          { return EvPing }

func (*RegisterMsg) inbound()      {}
func (*JoinRoomMsg) inbound()      {}
func (*WebRTCSignalMsg) inbound()  {}
func (*RequestOfferMsg) inbound()  {}
func (*ShareUserInfoMsg) inbound() {}
func (*GetUserInfoMsg) inbound()   {}
func (*LeaveRoomMsg) inbound()     {}
func (*InitiateCallMsg) inbound()  {}
func (*LegacySignalMsg) inbound()  {}
func (*CallResponseMsg) inbound()  {}
func (*PingMsg) inbound()          {}

var inboundTypes = map[string]func() Inbound{
	EvRegister:             func() Inbound { return &RegisterMsg{} },
	EvRegisterUser:         func() Inbound { return &RegisterMsg{} },
	EvJoinRoom:             func() Inbound { return &JoinRoomMsg{} },
	EvWebRTCSignal:         func() Inbound { return &WebRTCSignalMsg{} },
	EvRequestOffer:         func() Inbound { return &RequestOfferMsg{} },
	EvShareUserInfo:        func() Inbound { return &ShareUserInfoMsg{} },
	EvGetUserInfo:          func() Inbound { return &GetUserInfoMsg{} },
	EvLeaveRoom:            func() Inbound { return &LeaveRoomMsg{} },
	EvInitiateCall:         func() Inbound { return &InitiateCallMsg{} },
	EvSignal:               func() Inbound { return &LegacySignalMsg{} },
	EvIncomingCallResponse: func() Inbound { return &CallResponseMsg{} },
	EvPing:                 func() Inbound { return &PingMsg{} },
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses one client frame into its typed message.
func Decode(data []byte) (Inbound, error) {
	var env struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	newMsg, ok := inboundTypes[env.Event]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
	msg := newMsg()
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Event, err)
	}
	if err := validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Event, err)
	}
	return msg, nil
}
