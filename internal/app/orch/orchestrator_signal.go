package orch

import (
	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Relay forwards an offer, answer or ice-candidate to every other member of
// roomID, tagged with the sender. The payload bytes are passed through
// untouched. Negotiation is defined for two peers only; with more members
// everyone but the sender still gets the frame. It returns the number of
// members the frame was queued for; zero means it was dropped.
func (o *Orchestrator) Relay(sid domain.ConnID, roomID domain.RoomID, kind string, payload []byte) int {
	if !protocol.IsRelay(kind) {
		return 0
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		log.Debug().Str("module", "orch.signal").Str("room", string(roomID)).Str("kind", kind).Msg("no such room, dropped")
		return 0
	}

	frame, err := protocol.Encode(protocol.RelayEvent{
		Type:    kind,
		RoomID:  roomID,
		Payload: json.RawMessage(payload),
		From:    sid,
	})
	if err != nil {
		log.Warn().Err(err).Str("module", "orch.signal").Str("sid", string(sid)).Msg("payload is not json, dropped")
		return 0
	}

	sent := 0
	res, err := room.WithLock(func(tx core.Txn) {
		if n := tx.MemberCount(); n > 2 {
			log.Debug().Str("module", "orch.signal").Str("room", string(roomID)).Int("members", n).Msg("relay in multi-party room")
		}
		sent = tx.Broadcast(sid, frame).SendTo
	})
	if err != nil {
		return 0
	}
	o.onPublished(roomID, res)
	return sent
}
