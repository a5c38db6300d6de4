package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxRoomIDLen   = 64
	roomIDPrefix   = "room-"
	issuedIDSuffix = 12
)

var (
	ErrRoomIDEmpty   = errors.New("room id empty")
	ErrRoomIDTooLong = errors.New("room id too long")
)

// RoomID is an opaque, caller-chosen room token.
// Two sessions picking the same token end up in the same room.
type RoomID string

// ParseRoomID trims and checks a client supplied room token.
func ParseRoomID(raw string) (RoomID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", ErrRoomIDEmpty
	}
	if len(id) > MaxRoomIDLen {
		return "", ErrRoomIDTooLong
	}
	return RoomID(id), nil
}

// NewRoomID issues a random token in the same shape browser clients generate.
func NewRoomID() RoomID {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return RoomID(roomIDPrefix + raw[:issuedIDSuffix])
}
