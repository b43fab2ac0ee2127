package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFallbackName(t *testing.T) {
	req := require.New(t)
	req.Equal("User 64f1a2", FallbackName("64f1a2b3c4d5"))
	req.Equal("User u1", FallbackName("u1"))
	req.Equal("User ", FallbackName(""))
}

func TestUserID_Authenticated(t *testing.T) {
	req := require.New(t)
	req.True(UserID("u1").Authenticated())
	req.False(UserID("").Authenticated())
	req.False(UserID("   ").Authenticated())
	req.False(UserID("undefined").Authenticated())
	req.False(UserID("Anonymous").Authenticated())
	req.False(UserID("null").Authenticated())
	req.False(UserID(" undefined ").Authenticated())
	req.False(UserID("\tNULL\n").Authenticated())
}

func TestNormalizeDisplayName(t *testing.T) {
	req := require.New(t)
	req.Equal("Alice", NormalizeDisplayName("  Alice "))
	long := make([]rune, MaxDisplayNameLen+10)
	for i := range long {
		long[i] = 'é'
	}
	req.Len([]rune(NormalizeDisplayName(string(long))), MaxDisplayNameLen)
}

func TestRoleAndState(t *testing.T) {
	req := require.New(t)
	req.Equal(RoleInitiator, RoleForSize(1))
	req.Equal(RoleResponder, RoleForSize(2))
	req.Equal(RoleResponder, RoleForSize(3))

	req.Equal(RoomEmpty, StateForSize(0))
	req.Equal(RoomWaiting, StateForSize(1))
	req.Equal(RoomReady, StateForSize(2))
	req.Equal("ready", RoomReady.String())
}
