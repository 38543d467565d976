package app

import (
	"github.com/rs/zerolog/log"

	"github.com/okutsen/chatline/internal/core"
	"github.com/okutsen/chatline/internal/domain"
)

// Dispatcher is the push-only, best-effort delivery path. No acks, no
// retries, no queues: an offline target is a silent no-op and a failed
// send to one connection never blocks the rest.
type Dispatcher struct {
	registry *Registry
	rooms    *Rooms
	policy   Policy
}

func NewDispatcher(registry *Registry, rooms *Rooms, policy Policy) *Dispatcher {
	if policy == nil {
		policy = DropPolicy{}
	}
	return &Dispatcher{registry: registry, rooms: rooms, policy: policy}
}

// SendToUser delivers one event to the user's live connection, if any.
func (d *Dispatcher) SendToUser(user domain.UserID, event string, payload any) {
	conn, ok := d.registry.Lookup(user)
	if !ok {
		log.Debug().Str("module", "app.fanout").Str("user", string(user)).
			Str("event", event).Msg("target offline, dropped")
		return
	}
	d.deliver(conn, event, payload)
}

// SendToRoom delivers one event to every connection joined to room,
// except the optional excluded sender.
func (d *Dispatcher) SendToRoom(room domain.RoomID, event string, payload any, exclude core.ConnID) {
	frame, err := core.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.fanout").Str("event", event).Msg("encode failed")
		return
	}
	sent := 0
	for _, conn := range d.rooms.Members(room) {
		if conn.ID == exclude {
			continue
		}
		d.send(conn, frame)
		sent++
	}
	log.Debug().Str("module", "app.fanout").Str("room", string(room)).
		Str("event", event).Int("sent_to", sent).Msg("room fanout")
}

// BroadcastPresence pushes the current online-user list to every live
// connection. Presence is global, not per-room.
func (d *Dispatcher) BroadcastPresence() {
	online := d.registry.ListOnline()
	frame, err := core.Encode(core.EvOnlineUsers, online)
	if err != nil {
		log.Error().Err(err).Str("module", "app.fanout").Msg("encode presence failed")
		return
	}
	for _, conn := range d.registry.Snapshot() {
		d.send(conn, frame)
	}
}

func (d *Dispatcher) deliver(conn *Conn, event string, payload any) {
	frame, err := core.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.fanout").Str("event", event).Msg("encode failed")
		return
	}
	d.send(conn, frame)
}

func (d *Dispatcher) send(conn *Conn, frame core.Frame) {
	if err := conn.Signal.TrySend(frame); err == nil {
		return
	}
	switch d.policy.OnBackpressure(conn) {
	case KickConn:
		log.Warn().Str("module", "app.fanout").Str("conn", string(conn.ID)).Msg("kicking slow consumer")
		conn.Signal.Close()
	case DropFrame:
		log.Debug().Str("module", "app.fanout").Str("conn", string(conn.ID)).Msg("frame dropped")
	}
}
