// Package rtc exposes the WebRTC configuration browser peers should use.
// The server never terminates peer connections itself.
package rtc

import (
	"fmt"

	"github.com/dkeye/WatchParty/internal/config"
	"github.com/pion/webrtc/v4"
)

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// ConfigFrom builds the client configuration from the server config,
// falling back to DefaultWebRTCConfig when no server is configured.
func ConfigFrom(cfg *config.Config) webrtc.Configuration {
	servers := make([]webrtc.ICEServer, 0, len(cfg.ICEServers))
	for _, s := range cfg.ICEServers {
		if len(s.URLs) == 0 {
			continue
		}
		srv := webrtc.ICEServer{URLs: s.URLs}
		if s.Username != "" {
			srv.Username = s.Username
			srv.Credential = s.Credential
			srv.CredentialType = webrtc.ICECredentialTypePassword
		}
		servers = append(servers, srv)
	}
	if len(servers) == 0 {
		return DefaultWebRTCConfig()
	}
	return webrtc.Configuration{ICEServers: servers}
}

// ClientICEServer is the browser RTCIceServer shape.
type ClientICEServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// ClientICEServers converts a pion configuration into what browsers accept
// as RTCConfiguration.iceServers.
func ClientICEServers(c webrtc.Configuration) []ClientICEServer {
	out := make([]ClientICEServer, 0, len(c.ICEServers))
	for _, s := range c.ICEServers {
		cs := ClientICEServer{URLs: s.URLs, Username: s.Username}
		if s.Username != "" {
			cs.Credential = fmt.Sprint(s.Credential)
		}
		out = append(out, cs)
	}
	return out
}
