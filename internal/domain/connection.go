// Package domain contains entities without transport, just meta-data and the
// playback state machine.
package domain

import "github.com/google/uuid"

// ConnID identifies one transport session. It is assigned by the server and
// never reused.
type ConnID string

func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}
