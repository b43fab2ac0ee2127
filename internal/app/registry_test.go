package app

import (
	"testing"

	"github.com/dkeye/callsignal/internal/core"
	"github.com/dkeye/callsignal/internal/domain"
	"github.com/stretchr/testify/require"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func TestRegistry_Register_Idempotent(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	registry := NewRegistry(presence)

	// When the same connection registers twice
	req.True(registry.Register("c1", "u1", "Alice"))
	req.True(registry.Register("c1", "u1", ""))

	// Then it is listed once
	req.Equal([]core.ConnID{"c1"}, registry.ConnectionsOf("u1"))
	req.Equal("Alice", presence.Get("u1"))
}

func TestRegistry_Register_EmptyUserIsNoop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(NewPresence())

	req.False(registry.Register("c1", "", "Alice"))
	_, ok := registry.UserOf("c1")
	req.False(ok)
	req.Zero(registry.Stats().Users)
}

func TestRegistry_MultipleDevices(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	registry := NewRegistry(presence)
	registry.Register("c1", "u1", "Alice")
	registry.Register("c2", "u1", "")

	// Given two connections for one user
	req.Equal([]core.ConnID{"c1", "c2"}, registry.ConnectionsOf("u1"))

	// When one disconnects
	registry.Detach("c1")

	// Then the other remains and presence survives
	req.Equal([]core.ConnID{"c2"}, registry.ConnectionsOf("u1"))
	req.Equal("Alice", presence.Get("u1"))

	// When the last one disconnects
	registry.Detach("c2")

	// Then the user and its presence are gone
	req.Empty(registry.ConnectionsOf("u1"))
	req.False(presence.Has("u1"))
	req.Equal(domain.FallbackName("u1"), presence.Get("u1"))
}

func TestRegistry_RebindMovesConnection(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	registry := NewRegistry(presence)
	registry.Register("c1", "u1", "Alice")

	registry.Register("c1", "u2", "Bob")

	req.Empty(registry.ConnectionsOf("u1"))
	req.False(presence.Has("u1"))
	req.Equal([]core.ConnID{"c1"}, registry.ConnectionsOf("u2"))
	user, ok := registry.UserOf("c1")
	req.True(ok)
	req.Equal(domain.UserID("u2"), user)
}

func TestRegistry_UnregisterKeepsHandle(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(NewPresence())
	registry.Attach("c1", nopConn{})
	registry.Register("c1", "u1", "")

	registry.Unregister("c1")

	req.Empty(registry.ConnectionsOf("u1"))
	_, ok := registry.Handle("c1")
	req.True(ok)
}

func TestRegistry_DetachReturnsRooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(NewPresence())
	registry.Attach("c1", nopConn{})
	registry.Register("c1", "u1", "")
	registry.JoinRoom("c1", "r2")
	registry.JoinRoom("c1", "r1")
	registry.LeaveRoom("c1", "r2")
	registry.JoinRoom("c1", "r3")

	rooms := registry.Detach("c1")

	req.Equal([]domain.RoomID{"r1", "r3"}, rooms)
	_, ok := registry.Handle("c1")
	req.False(ok)
	req.Nil(registry.Detach("c1"))
	req.Zero(registry.Stats().Connections)
}

func TestRegistry_ConnectionsOfUnknownUser(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(NewPresence())
	req.Empty(registry.ConnectionsOf("nobody"))
}
