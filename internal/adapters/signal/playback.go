package signal

import (
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handlePlayback(
	sid domain.ConnID,
	ev domain.PlaybackEvent,
	data []byte,
) {
	var p protocol.Playback
	if err := protocol.Decode(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("event", string(ev)).Msg("bad playback payload")
		return
	}
	ctl.Orch.Playback(sid, domain.RoomID(p.RoomID), ev, *p.Position)
}
