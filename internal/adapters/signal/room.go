package signal

import (
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(
	sid domain.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	if ctl.Limiter != nil && !ctl.Limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("join rate limited")
		ctl.sendJSON(conn, protocol.NewError("rate_limited"))
		return
	}

	var p protocol.JoinRoom
	if err := protocol.Decode(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	roomID, err := domain.ParseRoomID(p.RoomID)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad room id")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(roomID)).Msg("join")
	if err := ctl.Orch.Join(sid, roomID, domain.NewMediaRef(p.MediaData, p.MediaURL)); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join failed")
	}
}
