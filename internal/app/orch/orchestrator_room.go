package orch

import (
	"errors"
	"fmt"

	"github.com/dkeye/WatchParty/internal/app"
	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Join puts sid into roomID, creating the room on first use. The joiner
// always gets a room-state reply; the other members get media-available
// (when the join supplied the room's first media) and peer-joined.
func (o *Orchestrator) Join(sid domain.ConnID, roomID domain.RoomID, media domain.MediaRef) error {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return fmt.Errorf("join %s: %w", roomID, app.ErrUnknownSession)
	}
	if prev, ok := o.Registry.RoomOf(sid); ok && prev != roomID {
		o.leave(sid, prev)
		log.Info().Str("sid", string(sid)).Str("from_room", string(prev)).Msg("left previous room")
	}

	for {
		room := o.Rooms.GetOrCreate(roomID)
		res, err := room.WithLock(func(tx core.Txn) {
			if tx.SetMediaOnce(media) {
				m := tx.Media()
				tx.Broadcast(sid, protocol.MustEncode(protocol.MediaAvailable{
					Type:      protocol.TypeMediaAvailable,
					RoomID:    roomID,
					MediaData: m.Data,
					MediaURL:  m.URL,
				}))
			}

			rejoin := tx.HasMember(sid)
			tx.AddMember(sess)
			o.Registry.UpdateRoom(sid, roomID)
			if !rejoin {
				tx.Broadcast(sid, protocol.MustEncode(protocol.Peer{
					Type:         protocol.TypePeerJoined,
					RoomID:       roomID,
					ConnectionID: sid,
				}))
			}

			tx.SendTo(sid, protocol.MustEncode(roomState(sid, tx.Snapshot())))
		})
		if errors.Is(err, core.ErrRoomClosed) {
			// Lost the race with the last member leaving; the next GetOrCreate
			// builds a fresh room.
			continue
		}
		if err != nil {
			return fmt.Errorf("join %s: %w", roomID, err)
		}
		log.Info().Str("sid", string(sid)).Str("room", string(roomID)).Msg("added to room")
		o.onPublished(roomID, res)
		return nil
	}
}

// OnDisconnect is the only teardown path for a connection. Unknown
// connections are ignored.
func (o *Orchestrator) OnDisconnect(sid domain.ConnID) {
	if roomID, ok := o.Registry.RoomOf(sid); ok {
		o.leave(sid, roomID)
	}
	o.Registry.Unbind(sid)
}

func (o *Orchestrator) leave(sid domain.ConnID, roomID domain.RoomID) {
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		o.Registry.RemoveRoom(sid, roomID)
		return
	}

	var empty bool
	res, err := room.WithLock(func(tx core.Txn) {
		o.Registry.RemoveRoom(sid, roomID)
		if !tx.RemoveMember(sid) {
			return
		}
		tx.Broadcast(sid, protocol.MustEncode(protocol.Peer{
			Type:         protocol.TypePeerLeft,
			RoomID:       roomID,
			ConnectionID: sid,
		}))
		empty = tx.MemberCount() == 0
	})
	if err != nil {
		o.Registry.RemoveRoom(sid, roomID)
		return
	}
	o.onPublished(roomID, res)
	if empty {
		o.Rooms.RemoveIfEmpty(roomID)
	}
}

func roomState(sid domain.ConnID, snap core.RoomSnapshot) protocol.RoomState {
	peers := make([]domain.ConnID, 0, len(snap.Members))
	for _, id := range snap.Members {
		if id != sid {
			peers = append(peers, id)
		}
	}
	return protocol.RoomState{
		Type:         protocol.TypeRoomState,
		ConnectionID: sid,
		RoomID:       snap.ID,
		Position:     snap.Playback.Position,
		Playing:      snap.Playback.Playing,
		MediaData:    snap.Media.Data,
		MediaURL:     snap.Media.URL,
		Peers:        peers,
		Seq:          snap.Seq,
	}
}
