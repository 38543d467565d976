package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/okutsen/chatline/internal/app"
	"github.com/okutsen/chatline/internal/core"
)

const writeWait = 5 * time.Second

func (ctl *WSController) writePump(ctx context.Context, c *wsConn) {
	ping := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *WSController) readPump(ctx context.Context, live *app.Conn, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(live.ID)).Msg("readPump closing")
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(live.ID)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", string(live.ID)).Msg("readPump read error")
				return
			}
			ctl.handleEvent(live, data)
		}
	}
}

// handleEvent dispatches one inbound envelope. A malformed payload is
// logged and dropped; the connection stays open.
func (ctl *WSController) handleEvent(live *app.Conn, data []byte) {
	var env core.Event
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Event {
	case core.EvJoinGroup:
		ctl.handleJoinGroup(live, env.Data)
	case core.EvLeaveGroup:
		ctl.handleLeaveGroup(live, env.Data)
	case core.EvCallUser:
		ctl.handleCallUser(live, env.Data)
	case core.EvAnswerCall:
		ctl.handleAnswerCall(live, env.Data)
	case core.EvCallDeclined:
		ctl.handleCallDeclined(live, env.Data)
	case core.EvCallEnded:
		ctl.handleCallEnded(live, env.Data)
	case core.EvICECandidate:
		ctl.handleCandidate(live, env.Data)
	default:
		log.Warn().Str("module", "signal").Str("event", env.Event).Msg("unknown event")
	}
}
