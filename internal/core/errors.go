package core

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated user")
	ErrNotFound        = errors.New("not found")
	ErrRoomFull        = errors.New("room full")
	ErrBackpressure    = errors.New("backpressure")
	ErrConnClosed      = errors.New("connection closed")
)
