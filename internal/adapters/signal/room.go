package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/okutsen/chatline/internal/app"
	"github.com/okutsen/chatline/internal/domain"
)

type roomPayload struct {
	Room domain.RoomID `json:"roomId"`
}

func (ctl *WSController) handleJoinGroup(live *app.Conn, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad joinGroup payload")
		return
	}
	ctl.Hub.JoinRoom(live, p.Room)
}

func (ctl *WSController) handleLeaveGroup(live *app.Conn, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad leaveGroup payload")
		return
	}
	ctl.Hub.LeaveRoom(live, p.Room)
}
