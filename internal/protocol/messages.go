// Package protocol defines the JSON frames exchanged over the signal socket.
// Every frame is a flat object carrying a "type" discriminator.
package protocol

import (
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/goccy/go-json"
)

const (
	TypeJoinRoom       = "join-room"
	TypeRoomState      = "room-state"
	TypeMediaAvailable = "media-available"
	TypePeerJoined     = "peer-joined"
	TypePeerLeft       = "peer-left"

	TypePlay  = "play"
	TypePause = "pause"
	TypeSeek  = "seek"

	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice-candidate"

	TypePing   = "ping"
	TypePong   = "pong"
	TypeWhoAmI = "whoami"
	TypeError  = "error"
)

// Envelope is decoded first to route a frame.
type Envelope struct {
	Type string `json:"type" validate:"required"`
}

// JoinRoom is sent by a client to enter a room, optionally proposing media.
type JoinRoom struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId" validate:"required"`
	MediaData string `json:"mediaData,omitempty"`
	MediaURL  string `json:"mediaUrl,omitempty" validate:"omitempty,max=2048"`
}

// Playback carries play, pause and seek in both directions.
type Playback struct {
	Type     string   `json:"type"`
	RoomID   string   `json:"roomId" validate:"required"`
	Position *float64 `json:"position" validate:"required,gte=0"`
}

// Relay carries offer, answer and ice-candidate. Payload is never inspected.
type Relay struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

type RoomState struct {
	Type         string          `json:"type"`
	ConnectionID domain.ConnID   `json:"connectionId"`
	RoomID       domain.RoomID   `json:"roomId"`
	Position     float64         `json:"position"`
	Playing      bool            `json:"playing"`
	MediaData    string          `json:"mediaData,omitempty"`
	MediaURL     string          `json:"mediaUrl,omitempty"`
	Peers        []domain.ConnID `json:"peers"`
	Seq          uint64          `json:"seq"`
}

type MediaAvailable struct {
	Type      string        `json:"type"`
	RoomID    domain.RoomID `json:"roomId"`
	MediaData string        `json:"mediaData,omitempty"`
	MediaURL  string        `json:"mediaUrl,omitempty"`
}

// Peer is used for both peer-joined and peer-left.
type Peer struct {
	Type         string        `json:"type"`
	RoomID       domain.RoomID `json:"roomId"`
	ConnectionID domain.ConnID `json:"connectionId"`
}

type PlaybackEvent struct {
	Type     string        `json:"type"`
	RoomID   domain.RoomID `json:"roomId"`
	Position float64       `json:"position"`
	Seq      uint64        `json:"seq"`
	From     domain.ConnID `json:"from"`
}

type RelayEvent struct {
	Type    string          `json:"type"`
	RoomID  domain.RoomID   `json:"roomId"`
	Payload json.RawMessage `json:"payload"`
	From    domain.ConnID   `json:"from"`
}

type WhoAmI struct {
	Type         string        `json:"type"`
	ConnectionID domain.ConnID `json:"connectionId"`
	RoomID       domain.RoomID `json:"roomId,omitempty"`
}

type Error struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewError(msg string) Error { return Error{Type: TypeError, Error: msg} }

// IsRelay reports whether t is a negotiation message kind.
func IsRelay(t string) bool {
	return t == TypeOffer || t == TypeAnswer || t == TypeICECandidate
}

// PlaybackKind maps a frame type onto the playback state machine.
func PlaybackKind(t string) (domain.PlaybackEvent, bool) {
	ev := domain.PlaybackEvent(t)
	return ev, ev.Valid()
}
