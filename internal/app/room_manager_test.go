package app

import (
	"testing"

	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSignal struct{}

func (nopSignal) TrySend(core.Frame) error { return nil }
func (nopSignal) Close()                   {}

func TestRoomManagerLifecycle(t *testing.T) {
	m := NewRoomManager()

	_, ok := m.Get("r")
	require.False(t, ok)

	room := m.GetOrCreate("r")
	assert.Same(t, room, m.GetOrCreate("r"))

	snap := room.Snapshot()
	assert.True(t, snap.Media.IsZero())
	assert.Equal(t, domain.PlaybackState{}, snap.Playback)

	_, err := room.WithLock(func(tx core.Txn) {
		tx.AddMember(core.NewMemberSession(domain.NewMember("a", ""), nopSignal{}))
	})
	require.NoError(t, err)
	assert.False(t, m.RemoveIfEmpty("r"), "occupied rooms stay")

	_, err = room.WithLock(func(tx core.Txn) { tx.RemoveMember("a") })
	require.NoError(t, err)
	assert.True(t, m.RemoveIfEmpty("r"))
	assert.False(t, m.RemoveIfEmpty("r"))

	_, ok = m.Get("r")
	assert.False(t, ok)
	assert.NotSame(t, room, m.GetOrCreate("r"))
}

func TestRoomManagerList(t *testing.T) {
	m := NewRoomManager()
	m.GetOrCreate("b")
	m.GetOrCreate("a")
	assert.Equal(t, []core.RoomInfo{{ID: "a"}, {ID: "b"}}, m.List())
}

func TestRoomManagerConcurrentGetOrCreate(t *testing.T) {
	m := NewRoomManager()
	got := make([]core.RoomService, 32)
	var wg conc.WaitGroup
	for i := range got {
		wg.Go(func() { got[i] = m.GetOrCreate("same") })
	}
	wg.Wait()
	for _, r := range got {
		assert.Same(t, got[0], r)
	}
}
