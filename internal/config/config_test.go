package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	req.NoError(err)
	req.Equal(8080, cfg.Port)
	req.Equal(2, cfg.MaxRoomMembers)
	req.Equal(25*time.Second, cfg.PingPeriod)
	req.Equal("drop", cfg.BackpressurePolicy)
	servers, err := cfg.WebRTCICEServers()
	req.NoError(err)
	req.Len(servers, 1)
	req.Equal([]string{"stun:stun.l.google.com:19302"}, servers[0].URLs)
}

func TestLoad_File(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	req.NoError(os.WriteFile(path, []byte(`
port: 9090
max_room_members: 0
backpressure_policy: kick
ice_servers:
  - urls: ["stun:stun.example.org:3478"]
  - urls: ["turn:turn.example.org:3478"]
    username: alice
    credential: secret
`), 0o600))

	cfg, err := Load(path)

	req.NoError(err)
	req.Equal(9090, cfg.Port)
	req.Zero(cfg.MaxRoomMembers)
	req.Equal("kick", cfg.BackpressurePolicy)
	servers, err := cfg.WebRTCICEServers()
	req.NoError(err)
	req.Len(servers, 2)
	req.Equal("alice", servers[1].Username)
	req.Equal("secret", servers[1].Credential)
}

func TestLoad_EnvOverride(t *testing.T) {
	req := require.New(t)
	t.Setenv("CALLSIGNAL_PORT", "7070")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	req.NoError(err)
	req.Equal(7070, cfg.Port)
}

func TestWebRTCICEServers_Invalid(t *testing.T) {
	req := require.New(t)

	cfg := &Config{ICEServers: []ICEServer{{URLs: []string{" "}}}}
	_, err := cfg.WebRTCICEServers()
	req.ErrorIs(err, ErrICEServerNoURLs)

	cfg = &Config{ICEServers: []ICEServer{{URLs: []string{"turn:t.example.org"}}}}
	_, err = cfg.WebRTCICEServers()
	req.Error(err)
}
