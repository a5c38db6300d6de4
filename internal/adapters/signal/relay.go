package signal

import (
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/rs/zerolog/log"
)

// handleRelay forwards offer, answer and ice-candidate frames. Only the
// envelope is decoded; the payload stays opaque.
func (ctl *SignalWSController) handleRelay(
	sid domain.ConnID,
	kind string,
	data []byte,
) {
	var p protocol.Relay
	if err := protocol.Decode(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("kind", kind).Msg("bad relay payload")
		return
	}
	n := ctl.Orch.Relay(sid, domain.RoomID(p.RoomID), kind, p.Payload)
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("kind", kind).Int("sent_to", n).Msg("relayed")
}
