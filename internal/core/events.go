package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dkeye/callsignal/internal/domain"
)

// Outbound event names.
const (
	EvRegistered       = "registered"
	EvJoinedRoom       = "joined-room"
	EvJoinError        = "join-error"
	EvUserJoined       = "user-joined"
	EvPartnerReady     = "partner-ready"
	EvUserLeft         = "user-left"
	EvWebRTCSignal     = "webrtc-signal"
	EvSignal           = "signal"
	EvOfferRequested   = "offer-requested"
	EvUserInfo         = "user-info"
	EvUserInfoResponse = "user-info-response"
	EvIncomingCall     = "incoming-call"
	EvCallResponse     = "call-response"
	EvPong             = "pong"
	EvError            = "error"
)

// Reasons attached to user-left.
const ReasonDisconnect = "disconnect"

// SignalType tags an opaque handshake payload.
type SignalType string

const (
	SignalOffer     SignalType = "offer"
	SignalAnswer    SignalType = "answer"
	SignalCandidate SignalType = "candidate"
)

// Signal is a handshake payload. Exactly one of Offer, Answer, Candidate is set;
// the relay never looks inside it.
type Signal struct {
	Type      SignalType
	Offer     json.RawMessage
	Answer    json.RawMessage
	Candidate json.RawMessage
}

// Outbound is one message the server sends to a connection.
type Outbound interface {
	Name() string
}

type Registered struct {
	UserID     domain.UserID `json:"userId"`
	Connection ConnID        `json:"connection"`
}

type JoinedRoom struct {
	RoomID  domain.RoomID   `json:"roomId"`
	Success bool            `json:"success"`
	Members []domain.UserID `json:"members"`
	Role    domain.Role     `json:"role"`
}

type JoinError struct {
	RoomID domain.RoomID `json:"roomId,omitempty"`
	Reason string        `json:"reason"`
}

type UserJoined struct {
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"displayName"`
	Connection  ConnID        `json:"connection"`
}

type PartnerReady struct {
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"displayName"`
}

type UserLeft struct {
	UserID     domain.UserID `json:"userId"`
	Connection ConnID        `json:"connection"`
	Reason     string        `json:"reason,omitempty"`
}

type WebRTCSignal struct {
	Type      SignalType      `json:"type"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	From      ConnID          `json:"from"`
}

type LegacySignal struct {
	Data json.RawMessage `json:"data"`
	From ConnID          `json:"from"`
}

type OfferRequested struct {
	From ConnID `json:"from"`
}

type UserInfo struct {
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"displayName"`
}

type UserInfoResponse struct {
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"displayName"`
}

type IncomingCall struct {
	RoomID     domain.RoomID   `json:"roomId"`
	Offer      json.RawMessage `json:"offer"`
	From       ConnID          `json:"from"`
	FromUserID domain.UserID   `json:"fromUserId,omitempty"`
	CallerName string          `json:"callerName"`
}

type CallResponse struct {
	Accepted bool          `json:"accepted"`
	UserID   domain.UserID `json:"userId"`
}

type Pong struct{}

type ErrorReply struct {
	Error string `json:"error"`
}

func (Registered) Name() string       { return EvRegistered }
func (JoinedRoom) Name() string       { return EvJoinedRoom }
func (JoinError) Name() string        { return EvJoinError }
func (UserJoined) Name() string       { return EvUserJoined }
func (PartnerReady) Name() string     { return EvPartnerReady }
func (UserLeft) Name() string         { return EvUserLeft }
func (WebRTCSignal) Name() string     { return EvWebRTCSignal }
func (LegacySignal) Name() string     { return EvSignal }
func (OfferRequested) Name() string   { return EvOfferRequested }
func (UserInfo) Name() string         { return EvUserInfo }
func (UserInfoResponse) Name() string { return EvUserInfoResponse }
func (IncomingCall) Name() string     { return EvIncomingCall }
func (CallResponse) Name() string     { return EvCallResponse }
func (Pong) Name() string             { return EvPong }
func (ErrorReply) Name() string       { return EvError }

// Encode renders ev as a JSON object carrying its name under "event".
func Encode(ev Outbound) (Frame, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Name(), err)
	}
	name, _ := json.Marshal(ev.Name())

	var buf bytes.Buffer
	buf.Grow(len(body) + len(name) + 10)
	buf.WriteString(`{"event":`)
	buf.Write(name)
	if rest := bytes.TrimSpace(body[1:]); len(rest) > 1 {
		buf.WriteByte(',')
		buf.Write(rest)
	} else {
		buf.WriteByte('}')
	}
	return Frame(buf.Bytes()), nil
}
