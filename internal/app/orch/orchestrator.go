package orch

import (
	"github.com/dkeye/WatchParty/internal/app"
	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator drives room membership, the negotiation relay and playback
// sync. All room mutations run inside RoomService.WithLock; policy actions
// that touch transports run after the lock is released.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Policy   app.Policy
}

func New(reg *app.Registry, rooms core.RoomManager, policy app.Policy) *Orchestrator {
	return &Orchestrator{Registry: reg, Rooms: rooms, Policy: policy}
}

// Snapshot returns the room's current state for read-only APIs.
func (o *Orchestrator) Snapshot(id domain.RoomID) (core.RoomSnapshot, bool) {
	room, ok := o.Rooms.Get(id)
	if !ok {
		return core.RoomSnapshot{}, false
	}
	return room.Snapshot(), true
}

func (o *Orchestrator) onPublished(roomID domain.RoomID, res core.PublishResult) {
	if o.Policy == nil || len(res.Dropped) == 0 {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(roomID, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("room", string(roomID)).Str("sid", string(slow)).Msg("kicking slow member")
			o.Registry.Cancel(slow)
		case app.NoAction:
		}
	}
}
