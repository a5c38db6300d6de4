package signal

import (
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/dkeye/WatchParty/internal/protocol"
)

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: protocol.TypePong,
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *SignalWSController) handleWhoAmI(
	sid domain.ConnID,
	conn *WsSignalConn,
) {
	resp := protocol.WhoAmI{
		Type:         protocol.TypeWhoAmI,
		ConnectionID: sid,
	}
	if roomID, ok := ctl.Orch.Registry.RoomOf(sid); ok {
		resp.RoomID = roomID
	}
	ctl.sendJSON(conn, resp)
}
