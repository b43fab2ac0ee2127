package core

import "github.com/dkeye/callsignal/internal/domain"

// Member pairs a user identity with the connection it joined a room from.
type Member struct {
	UserID domain.UserID
	Conn   ConnID
}
