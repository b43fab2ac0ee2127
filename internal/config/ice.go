package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

// ICEServer is the config shape of one STUN/TURN server handed to clients.
type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

var ErrICEServerNoURLs = errors.New("ice server has no urls")

// WebRTCICEServers converts the configured servers to pion types.
func (c *Config) WebRTCICEServers() ([]webrtc.ICEServer, error) {
	out := make([]webrtc.ICEServer, 0, len(c.ICEServers))
	for i, s := range c.ICEServers {
		urls := make([]string, 0, len(s.URLs))
		for _, u := range s.URLs {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		if len(urls) == 0 {
			return nil, fmt.Errorf("ice_servers[%d]: %w", i, ErrICEServerNoURLs)
		}
		server := webrtc.ICEServer{URLs: urls, Username: strings.TrimSpace(s.Username)}
		if s.Credential != "" {
			server.Credential = s.Credential
		}
		for _, u := range urls {
			if strings.HasPrefix(u, "turn:") || strings.HasPrefix(u, "turns:") {
				if server.Username == "" || s.Credential == "" {
					return nil, fmt.Errorf("ice_servers[%d]: turn server requires username and credential", i)
				}
				break
			}
		}
		out = append(out, server)
	}
	return out, nil
}
