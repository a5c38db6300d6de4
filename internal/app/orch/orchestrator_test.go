package orch

import (
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/WatchParty/internal/app"
	"github.com/dkeye/WatchParty/internal/core"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/goccy/go-json"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	frames []map[string]any
	full   bool
	closed bool
}

func (r *recorder) TrySend(f core.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return errors.New("full")
	}
	var m map[string]any
	if err := json.Unmarshal(f, &m); err != nil {
		return err
	}
	r.frames = append(r.frames, m)
	return nil
}

func (r *recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *recorder) ofType(typ string) []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []map[string]any
	for _, f := range r.frames {
		if f["type"] == typ {
			out = append(out, f)
		}
	}
	return out
}

func (r *recorder) last(t *testing.T, typ string) map[string]any {
	t.Helper()
	fs := r.ofType(typ)
	require.NotEmpty(t, fs, "no %q frame", typ)
	return fs[len(fs)-1]
}

type harness struct {
	orch  *Orchestrator
	rooms *app.RoomManagerImpl
	reg   *app.Registry
}

func newHarness() *harness {
	reg := app.NewRegistry()
	rooms := app.NewRoomManager()
	return &harness{orch: New(reg, rooms, app.SimplePolicy{}), rooms: rooms, reg: reg}
}

func (h *harness) connect(id string) *recorder {
	rec := &recorder{}
	sid := domain.ConnID(id)
	h.reg.BindSignal(sid, core.NewMemberSession(domain.NewMember(sid, ""), rec), nil)
	return rec
}

func TestJoinCreatesRoom(t *testing.T) {
	h := newHarness()
	h.connect("A")

	_, ok := h.rooms.Get("r")
	require.False(t, ok)

	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{}))
	_, ok = h.rooms.Get("r")
	assert.True(t, ok)
}

func TestJoinUnknownSession(t *testing.T) {
	h := newHarness()
	err := h.orch.Join("ghost", "r", domain.MediaRef{})
	assert.ErrorIs(t, err, app.ErrUnknownSession)
	_, ok := h.rooms.Get("r")
	assert.False(t, ok)
}

func TestJoinSnapshotSentWithoutMedia(t *testing.T) {
	h := newHarness()
	a := h.connect("A")
	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{}))

	st := a.last(t, protocol.TypeRoomState)
	assert.Equal(t, 0.0, st["position"])
	assert.Equal(t, false, st["playing"])
	assert.NotContains(t, st, "mediaUrl")
	assert.NotContains(t, st, "mediaData")
	assert.Empty(t, st["peers"])
	assert.Equal(t, "A", st["connectionId"])
}

func TestMediaWriteOnce(t *testing.T) {
	h := newHarness()
	a := h.connect("A")
	b := h.connect("B")

	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{URL: "u1"}))
	require.NoError(t, h.orch.Join("B", "r", domain.MediaRef{URL: "u2"}))

	snap, ok := h.orch.Snapshot("r")
	require.True(t, ok)
	assert.Equal(t, "u1", snap.Media.URL)

	st := b.last(t, protocol.TypeRoomState)
	assert.Equal(t, "u1", st["mediaUrl"])
	assert.Empty(t, a.ofType(protocol.TypeMediaAvailable), "u2 must not be announced")
}

func TestMediaAvailableGoesToExistingMembers(t *testing.T) {
	h := newHarness()
	a := h.connect("A")
	b := h.connect("B")

	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{}))
	require.NoError(t, h.orch.Join("B", "r", domain.MediaRef{Data: "data:video/mp4;base64,AAAA"}))

	got := a.last(t, protocol.TypeMediaAvailable)
	assert.Equal(t, "data:video/mp4;base64,AAAA", got["mediaData"])
	assert.Empty(t, b.ofType(protocol.TypeMediaAvailable))
}

func TestPlayRelayedNotEchoed(t *testing.T) {
	h := newHarness()
	a := h.connect("A")
	b := h.connect("B")
	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{}))
	require.NoError(t, h.orch.Join("B", "r", domain.MediaRef{}))

	require.True(t, h.orch.Playback("A", "r", domain.EventPlay, 42.0))

	got := b.last(t, protocol.TypePlay)
	assert.Equal(t, 42.0, got["position"])
	assert.Equal(t, "A", got["from"])
	assert.Equal(t, 1.0, got["seq"])
	assert.Empty(t, a.ofType(protocol.TypePlay))

	snap, _ := h.orch.Snapshot("r")
	assert.Equal(t, domain.PlaybackState{Position: 42, Playing: true}, snap.Playback)
}

func TestSeekLastWriteWins(t *testing.T) {
	h := newHarness()
	h.connect("A")
	h.connect("B")
	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{}))
	require.NoError(t, h.orch.Join("B", "r", domain.MediaRef{}))

	h.orch.Playback("B", "r", domain.EventSeek, 120)
	h.orch.Playback("A", "r", domain.EventSeek, 15)

	snap, _ := h.orch.Snapshot("r")
	assert.Equal(t, 15.0, snap.Playback.Position)
	assert.False(t, snap.Playback.Playing)
	assert.Equal(t, uint64(2), snap.Seq)
}

func TestPlaybackUnknownRoomIsNoop(t *testing.T) {
	h := newHarness()
	h.connect("A")
	assert.False(t, h.orch.Playback("A", "nope", domain.EventPause, 1))
	_, ok := h.rooms.Get("nope")
	assert.False(t, ok)
}

func TestOfferRelayedWithProvenance(t *testing.T) {
	h := newHarness()
	a := h.connect("A")
	b := h.connect("B")
	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{}))
	require.NoError(t, h.orch.Join("B", "r", domain.MediaRef{}))

	payload := []byte(`{"type":"offer","sdp":"v=0"}`)
	assert.Equal(t, 1, h.orch.Relay("A", "r", protocol.TypeOffer, payload))

	got := b.last(t, protocol.TypeOffer)
	assert.Equal(t, "A", got["from"])
	assert.Equal(t, map[string]any{"type": "offer", "sdp": "v=0"}, got["payload"])
	assert.Empty(t, a.ofType(protocol.TypeOffer))
}

func TestRelayDropsWithoutPeers(t *testing.T) {
	h := newHarness()
	h.connect("A")
	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{}))

	assert.Equal(t, 0, h.orch.Relay("A", "r", protocol.TypeAnswer, []byte(`{}`)))
	assert.Equal(t, 0, h.orch.Relay("A", "missing", protocol.TypeAnswer, []byte(`{}`)))
	assert.Equal(t, 0, h.orch.Relay("A", "r", protocol.TypePlay, []byte(`{}`)))
	assert.Equal(t, 0, h.orch.Relay("A", "r", protocol.TypeOffer, []byte(`{not json`)))
}

func TestRelayMultiParty(t *testing.T) {
	h := newHarness()
	recs := map[string]*recorder{}
	for _, id := range []string{"A", "B", "C"} {
		recs[id] = h.connect(id)
		require.NoError(t, h.orch.Join(domain.ConnID(id), "r", domain.MediaRef{}))
	}
	assert.Equal(t, 2, h.orch.Relay("B", "r", protocol.TypeICECandidate, []byte(`{"candidate":"c"}`)))
	assert.Len(t, recs["A"].ofType(protocol.TypeICECandidate), 1)
	assert.Len(t, recs["C"].ofType(protocol.TypeICECandidate), 1)
	assert.Empty(t, recs["B"].ofType(protocol.TypeICECandidate))
}

func TestDisconnectDeletesEmptyRoom(t *testing.T) {
	h := newHarness()
	h.connect("A")
	b := h.connect("B")
	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{}))
	require.NoError(t, h.orch.Join("B", "r", domain.MediaRef{}))

	h.orch.OnDisconnect("A")
	assert.Equal(t, "A", b.last(t, protocol.TypePeerLeft)["connectionId"])
	_, ok := h.rooms.Get("r")
	assert.True(t, ok)

	h.orch.OnDisconnect("B")
	_, ok = h.rooms.Get("r")
	assert.False(t, ok)
	assert.Equal(t, 0, h.reg.Count())
}

func TestDisconnectUnknownIsNoop(t *testing.T) {
	h := newHarness()
	assert.NotPanics(t, func() { h.orch.OnDisconnect("ghost") })

	h.connect("A")
	h.orch.OnDisconnect("A")
	assert.Equal(t, 0, h.reg.Count())
}

func TestJoinOtherRoomLeavesPrevious(t *testing.T) {
	h := newHarness()
	h.connect("A")
	b := h.connect("B")
	require.NoError(t, h.orch.Join("A", "r1", domain.MediaRef{}))
	require.NoError(t, h.orch.Join("B", "r1", domain.MediaRef{}))

	require.NoError(t, h.orch.Join("A", "r2", domain.MediaRef{}))
	assert.Equal(t, "A", b.last(t, protocol.TypePeerLeft)["connectionId"])

	roomID, ok := h.reg.RoomOf("A")
	require.True(t, ok)
	assert.Equal(t, domain.RoomID("r2"), roomID)

	snap, _ := h.orch.Snapshot("r1")
	assert.Equal(t, []domain.ConnID{"B"}, snap.Members)
}

func TestRejoinSameRoomDoesNotAnnounceTwice(t *testing.T) {
	h := newHarness()
	a := h.connect("A")
	h.connect("B")
	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{}))
	require.NoError(t, h.orch.Join("B", "r", domain.MediaRef{}))
	require.NoError(t, h.orch.Join("B", "r", domain.MediaRef{}))

	assert.Len(t, a.ofType(protocol.TypePeerJoined), 1)
}

func TestSlowMemberIsKicked(t *testing.T) {
	h := newHarness()
	h.connect("A")
	b := h.connect("B")
	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{}))
	require.NoError(t, h.orch.Join("B", "r", domain.MediaRef{}))

	b.mu.Lock()
	b.full = true
	b.mu.Unlock()

	h.orch.Playback("A", "r", domain.EventSeek, 5)
	b.mu.Lock()
	defer b.mu.Unlock()
	assert.True(t, b.closed)
}

func TestLenientPolicyKeepsSlowMember(t *testing.T) {
	h := newHarness()
	h.orch.Policy = app.LenientPolicy{}
	h.connect("A")
	b := h.connect("B")
	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{}))
	require.NoError(t, h.orch.Join("B", "r", domain.MediaRef{}))

	b.mu.Lock()
	b.full = true
	b.mu.Unlock()

	assert.True(t, h.orch.Playback("A", "r", domain.EventPause, 3))
	b.mu.Lock()
	assert.False(t, b.closed)
	b.mu.Unlock()

	snap, ok := h.orch.Snapshot("r")
	require.True(t, ok)
	assert.Len(t, snap.Members, 2)
}

func TestPlaybackFromNonMemberStillApplies(t *testing.T) {
	h := newHarness()
	a := h.connect("A")
	h.connect("X")
	require.NoError(t, h.orch.Join("A", "r", domain.MediaRef{}))

	assert.True(t, h.orch.Playback("X", "r", domain.EventSeek, 42))
	assert.Equal(t, "X", a.last(t, "seek")["from"])

	snap, ok := h.orch.Snapshot("r")
	require.True(t, ok)
	assert.Equal(t, 42.0, snap.Playback.Position)
	assert.Equal(t, []domain.ConnID{"A"}, snap.Members)
}

func TestEndToEndScenario(t *testing.T) {
	h := newHarness()
	a := h.connect("A")
	b := h.connect("B")

	require.NoError(t, h.orch.Join("A", "r1", domain.MediaRef{URL: "http://x/video.mp4"}))
	stA := a.last(t, protocol.TypeRoomState)
	assert.Empty(t, stA["peers"])

	require.NoError(t, h.orch.Join("B", "r1", domain.MediaRef{}))
	stB := b.last(t, protocol.TypeRoomState)
	assert.Equal(t, 0.0, stB["position"])
	assert.Equal(t, false, stB["playing"])
	assert.Equal(t, "http://x/video.mp4", stB["mediaUrl"])
	assert.Equal(t, []any{"A"}, stB["peers"])
	assert.Equal(t, "B", a.last(t, protocol.TypePeerJoined)["connectionId"])

	h.orch.Playback("B", "r1", domain.EventPlay, 10.0)
	assert.Equal(t, 10.0, a.last(t, protocol.TypePlay)["position"])
	snap, _ := h.orch.Snapshot("r1")
	assert.Equal(t, domain.PlaybackState{Position: 10, Playing: true}, snap.Playback)

	h.orch.OnDisconnect("A")
	assert.Equal(t, "A", b.last(t, protocol.TypePeerLeft)["connectionId"])
	_, ok := h.rooms.Get("r1")
	assert.True(t, ok)

	h.orch.OnDisconnect("B")
	_, ok = h.rooms.Get("r1")
	assert.False(t, ok)
}

func TestConcurrentJoinLeave(t *testing.T) {
	h := newHarness()
	const n = 50
	for i := 0; i < n; i++ {
		h.connect(string(rune('a'+i%26)) + string(rune('0'+i/26)))
	}

	var wg conc.WaitGroup
	for i := 0; i < n; i++ {
		sid := domain.ConnID(string(rune('a'+i%26)) + string(rune('0'+i/26)))
		wg.Go(func() {
			_ = h.orch.Join(sid, "hot", domain.MediaRef{URL: string(sid)})
			h.orch.Playback(sid, "hot", domain.EventSeek, 1)
			h.orch.OnDisconnect(sid)
		})
	}
	wg.Wait()

	_, ok := h.rooms.Get("hot")
	assert.False(t, ok)
	assert.Equal(t, 0, h.reg.Count())
}
