package core

import (
	"sort"
	"sync"

	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	id domain.RoomID

	mu       sync.Mutex
	members  map[domain.ConnID]MemberSession
	media    domain.MediaRef
	playback domain.PlaybackState
	seq      uint64
	closed   bool
}

func NewRoomService(id domain.RoomID) RoomService {
	return &roomImpl{
		id:      id,
		members: make(map[domain.ConnID]MemberSession),
	}
}

func (r *roomImpl) ID() domain.RoomID { return r.id }

func (r *roomImpl) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *roomImpl) Snapshot() RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *roomImpl) WithLock(fn func(tx Txn)) (PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return PublishResult{}, ErrRoomClosed
	}
	tx := &roomTxn{r: r}
	fn(tx)
	return tx.res, nil
}

func (r *roomImpl) CloseIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 {
		return false
	}
	r.closed = true
	return true
}

func (r *roomImpl) snapshotLocked() RoomSnapshot {
	ids := make([]domain.ConnID, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return RoomSnapshot{
		ID:       r.id,
		Media:    r.media,
		Playback: r.playback,
		Seq:      r.seq,
		Members:  ids,
	}
}

// roomTxn is the lock-holding view of roomImpl.
type roomTxn struct {
	r   *roomImpl
	res PublishResult
}

func (t *roomTxn) ID() domain.RoomID      { return t.r.id }
func (t *roomTxn) Media() domain.MediaRef { return t.r.media }

func (t *roomTxn) SetMediaOnce(ref domain.MediaRef) bool {
	if ref.IsZero() || !t.r.media.IsZero() {
		return false
	}
	t.r.media = ref
	log.Info().Str("module", "core.room").Str("room", string(t.r.id)).Bool("embedded", ref.Data != "").Msg("media set")
	return true
}

func (t *roomTxn) Playback() domain.PlaybackState { return t.r.playback }

func (t *roomTxn) SetPlayback(st domain.PlaybackState) uint64 {
	t.r.playback = st
	t.r.seq++
	return t.r.seq
}

func (t *roomTxn) Seq() uint64 { return t.r.seq }

func (t *roomTxn) AddMember(ms MemberSession) {
	t.r.members[ms.ID()] = ms
	log.Info().Str("module", "core.room").Str("room", string(t.r.id)).Str("sid", string(ms.ID())).Msg("member added")
}

func (t *roomTxn) RemoveMember(id domain.ConnID) bool {
	if _, ok := t.r.members[id]; !ok {
		return false
	}
	delete(t.r.members, id)
	log.Info().Str("module", "core.room").Str("room", string(t.r.id)).Str("sid", string(id)).Msg("member removed")
	return true
}

func (t *roomTxn) HasMember(id domain.ConnID) bool {
	_, ok := t.r.members[id]
	return ok
}

func (t *roomTxn) MemberCount() int { return len(t.r.members) }

func (t *roomTxn) Members() []domain.ConnID {
	return t.r.snapshotLocked().Members
}

func (t *roomTxn) Broadcast(from domain.ConnID, f Frame) PublishResult {
	res := PublishResult{}
	for sid, m := range t.r.members {
		if sid == from {
			continue
		}
		if err := m.Signal().TrySend(f); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(t.r.id)).Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	t.res.merge(res)
	return res
}

func (t *roomTxn) SendTo(to domain.ConnID, f Frame) PublishResult {
	res := PublishResult{}
	m, ok := t.r.members[to]
	if !ok {
		return res
	}
	if err := m.Signal().TrySend(f); err != nil {
		res.Dropped = append(res.Dropped, to)
	} else {
		res.SendTo++
	}
	t.res.merge(res)
	return res
}

func (t *roomTxn) Snapshot() RoomSnapshot { return t.r.snapshotLocked() }
