package protocol

import (
	"strings"
	"testing"

	"github.com/dkeye/WatchParty/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeekType(t *testing.T) {
	typ, err := PeekType([]byte(`{"type":"seek","roomId":"r","position":1}`))
	require.NoError(t, err)
	assert.Equal(t, TypeSeek, typ)

	_, err = PeekType([]byte(`{"roomId":"r"}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = PeekType([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodePlayback(t *testing.T) {
	var p Playback
	require.NoError(t, Decode([]byte(`{"type":"play","roomId":"r","position":0}`), &p))
	require.NotNil(t, p.Position)
	assert.Equal(t, 0.0, *p.Position)

	cases := map[string]string{
		"missing position": `{"type":"play","roomId":"r"}`,
		"negative":         `{"type":"play","roomId":"r","position":-1}`,
		"missing room":     `{"type":"play","position":3}`,
		"wrong type":       `{"type":"play","roomId":"r","position":"3"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var p Playback
			assert.ErrorIs(t, Decode([]byte(raw), &p), ErrMalformed)
		})
	}
}

func TestDecodeRelayKeepsPayloadBytes(t *testing.T) {
	raw := `{"type":"offer","roomId":"r","payload":{"sdp":"v=0\r\n","type":"offer","x":[1,2]}}`
	var r Relay
	require.NoError(t, Decode([]byte(raw), &r))
	assert.JSONEq(t, `{"sdp":"v=0\r\n","type":"offer","x":[1,2]}`, string(r.Payload))

	var missing Relay
	assert.ErrorIs(t, Decode([]byte(`{"type":"offer","roomId":"r"}`), &missing), ErrMalformed)
}

func TestDecodeJoinRoom(t *testing.T) {
	var j JoinRoom
	require.NoError(t, Decode([]byte(`{"type":"join-room","roomId":"r1","mediaUrl":"http://x/video.mp4"}`), &j))
	assert.Equal(t, "r1", j.RoomID)
	assert.Equal(t, "http://x/video.mp4", j.MediaURL)

	assert.ErrorIs(t, Decode([]byte(`{"type":"join-room"}`), &JoinRoom{}), ErrMalformed)
}

func TestDecodeJoinRoomLeavesLengthToParse(t *testing.T) {
	padded := "  " + strings.Repeat("r", domain.MaxRoomIDLen) + "  "
	var j JoinRoom
	require.NoError(t, Decode([]byte(`{"type":"join-room","roomId":"`+padded+`"}`), &j))

	id, err := domain.ParseRoomID(j.RoomID)
	require.NoError(t, err)
	assert.Len(t, string(id), domain.MaxRoomIDLen)
}

func TestKinds(t *testing.T) {
	assert.True(t, IsRelay(TypeICECandidate))
	assert.False(t, IsRelay(TypePlay))

	ev, ok := PlaybackKind(TypePause)
	assert.True(t, ok)
	assert.EqualValues(t, "pause", ev)

	_, ok = PlaybackKind(TypeOffer)
	assert.False(t, ok)
}
