package orch

import (
	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Playback applies a play, pause or seek from sid to the room's
// authoritative state and fans it out to the other members. Events are
// applied in arrival order; there is no staleness check. A missing room is a
// no-op. It reports whether the event was applied.
func (o *Orchestrator) Playback(sid domain.ConnID, roomID domain.RoomID, ev domain.PlaybackEvent, pos float64) bool {
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		log.Debug().Str("module", "orch.playback").Str("room", string(roomID)).Str("event", string(ev)).Msg("no such room")
		return false
	}

	applied := false
	res, err := room.WithLock(func(tx core.Txn) {
		next, err := tx.Playback().Apply(ev, pos)
		if err != nil {
			log.Warn().Err(err).Str("module", "orch.playback").Str("sid", string(sid)).Msg("rejected event")
			return
		}
		seq := tx.SetPlayback(next)
		tx.Broadcast(sid, protocol.MustEncode(protocol.PlaybackEvent{
			Type:     string(ev),
			RoomID:   roomID,
			Position: pos,
			Seq:      seq,
			From:     sid,
		}))
		applied = true
	})
	if err != nil {
		return false
	}
	o.onPublished(roomID, res)
	return applied
}
