package core

import (
	"errors"

	"github.com/dkeye/WatchParty/internal/domain"
)

// ErrRoomClosed is returned by WithLock once the room has been dropped from
// its registry. Callers that still need the room must look it up again.
var ErrRoomClosed = errors.New("room closed")

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []domain.ConnID
}

func (p *PublishResult) merge(o PublishResult) {
	p.SendTo += o.SendTo
	p.Dropped = append(p.Dropped, o.Dropped...)
}

// RoomSnapshot is a read-only copy of a room for APIs and join replies.
type RoomSnapshot struct {
	ID       domain.RoomID        `json:"roomId"`
	Media    domain.MediaRef      `json:"media"`
	Playback domain.PlaybackState `json:"playback"`
	Seq      uint64               `json:"seq"`
	Members  []domain.ConnID      `json:"members"`
}

// Txn is the view of a room handed to WithLock callbacks. It is only valid
// inside the callback.
type Txn interface {
	ID() domain.RoomID

	Media() domain.MediaRef
	// SetMediaOnce stores ref unless the room already has media.
	// It reports whether ref became the room's media.
	SetMediaOnce(ref domain.MediaRef) bool

	Playback() domain.PlaybackState
	// SetPlayback replaces the playback state and returns the new sequence number.
	SetPlayback(st domain.PlaybackState) uint64
	Seq() uint64

	AddMember(ms MemberSession)
	RemoveMember(id domain.ConnID) bool
	HasMember(id domain.ConnID) bool
	MemberCount() int
	Members() []domain.ConnID

	// Broadcast sends f to every member except from.
	Broadcast(from domain.ConnID, f Frame) PublishResult
	// SendTo sends f to a single member.
	SendTo(to domain.ConnID, f Frame) PublishResult

	// Snapshot reads the current state without taking the lock again.
	Snapshot() RoomSnapshot
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	ID() domain.RoomID
	MemberCount() int
	Snapshot() RoomSnapshot

	// WithLock runs fn inside the room's critical section. Every
	// read-modify-broadcast on a room goes through here.
	WithLock(fn func(tx Txn)) (PublishResult, error)
	// Close marks the room as gone if it has no members.
	CloseIfEmpty() bool
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"client_count"`
}

// RoomManager is the process-wide room registry.
type RoomManager interface {
	GetOrCreate(id domain.RoomID) RoomService
	Get(id domain.RoomID) (RoomService, bool)
	// RemoveIfEmpty drops the room when it has no members left.
	RemoveIfEmpty(id domain.RoomID) bool
	List() []RoomInfo
}
