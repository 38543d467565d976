package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/okutsen/chatline/internal/core"
	"github.com/okutsen/chatline/internal/domain"
)

// Hub drives the connection lifecycle and hands CRUD-side events to the
// fanout path. All live state lives in Registry, Rooms and Calls; the
// hub itself is stateless glue.
type Hub struct {
	Registry *Registry
	Rooms    *Rooms
	Dispatch *Dispatcher
	Calls    *Calls
	Dir      core.GroupDirectory
}

// NewHub builds the four live-state components with their cross-wiring.
func NewHub(dir core.GroupDirectory, policy Policy, callTimeout time.Duration) *Hub {
	registry := NewRegistry()
	rooms := NewRooms(dir)
	dispatch := NewDispatcher(registry, rooms, policy)
	calls := NewCalls(dispatch, callTimeout)
	return &Hub{Registry: registry, Rooms: rooms, Dispatch: dispatch, Calls: calls, Dir: dir}
}

// Connect registers a fresh connection, derives its room membership
// from group data and announces the new presence to everyone.
func (h *Hub) Connect(ctx context.Context, user domain.UserID, connID core.ConnID, sig core.SignalConnection) *Conn {
	conn := NewConn(connID, user, sig)
	h.Registry.Register(conn)
	h.Rooms.JoinAllGroups(ctx, conn)
	h.Dispatch.BroadcastPresence()
	log.Info().Str("module", "app.hub").Str("user", string(user)).
		Str("conn", string(connID)).Msg("connected")
	return conn
}

// Disconnect tears down one connection. Room membership always goes;
// presence and live calls only go when this connection is still the
// user's current one — a superseded connection closing late must not
// knock a freshly reconnected user offline.
func (h *Hub) Disconnect(conn *Conn) {
	h.Rooms.DropConn(conn.ID)
	if !h.Registry.Unregister(conn.User, conn.ID) {
		log.Info().Str("module", "app.hub").Str("conn", string(conn.ID)).
			Msg("stale disconnect, presence kept")
		return
	}
	h.Calls.DropUser(conn.User)
	h.Dispatch.BroadcastPresence()
	log.Info().Str("module", "app.hub").Str("user", string(conn.User)).
		Str("conn", string(conn.ID)).Msg("disconnected")
}

func (h *Hub) JoinRoom(conn *Conn, room domain.RoomID) {
	h.Rooms.Join(conn, room)
}

func (h *Hub) LeaveRoom(conn *Conn, room domain.RoomID) {
	h.Rooms.Leave(conn.ID, room)
}

// MessageSent pushes a persisted direct message to its receiver, if
// online. Unseen-count bookkeeping belongs to the CRUD layer.
func (h *Hub) MessageSent(msg *domain.Message) {
	h.Dispatch.SendToUser(msg.ReceiverID, core.EvNewMessage, msg)
}

// GroupMessageSent pushes a persisted group message to the group room,
// sender included — clients reconcile their own echo.
func (h *Hub) GroupMessageSent(msg *domain.Message) {
	h.Dispatch.SendToRoom(domain.RoomForGroup(msg.GroupID), core.EvNewGroupMessage, msg, "")
}

// GroupCreated joins every online member's connection to the new room
// and notifies each member individually.
func (h *Hub) GroupCreated(group *domain.Group) {
	room := domain.RoomForGroup(group.ID)
	for _, member := range group.Members {
		conn, ok := h.Registry.Lookup(member)
		if !ok {
			continue
		}
		h.Rooms.Join(conn, room)
		h.Dispatch.SendToUser(member, core.EvGroupCreated, group)
	}
}

// GroupUpdated re-syncs live room membership with the group's member
// list and notifies the current members. Connections of users who are
// no longer members leave the room; freshly added online members join.
// The authoritative directory is consulted so the room never drifts
// from persisted membership; if the lookup fails the just-persisted
// group doc serves as the fallback.
func (h *Hub) GroupUpdated(ctx context.Context, group *domain.Group) {
	members := group.Members
	if got, err := h.Dir.MembersOf(ctx, group.ID); err != nil {
		log.Error().Err(err).Str("module", "app.hub").Str("group", string(group.ID)).
			Msg("member lookup failed, using supplied group doc")
	} else {
		members = got
	}

	isMember := make(map[domain.UserID]bool, len(members))
	for _, m := range members {
		isMember[m] = true
	}

	room := domain.RoomForGroup(group.ID)
	for _, conn := range h.Rooms.Members(room) {
		if !isMember[conn.User] {
			h.Rooms.Leave(conn.ID, room)
		}
	}
	for _, member := range members {
		conn, ok := h.Registry.Lookup(member)
		if !ok {
			continue
		}
		h.Rooms.Join(conn, room)
		h.Dispatch.SendToUser(member, core.EvGroupUpdated, group)
	}
}

type groupDeleted struct {
	GroupID domain.GroupID `json:"groupId"`
}

// GroupDeleted notifies the former members and tears the room down.
func (h *Hub) GroupDeleted(id domain.GroupID, members []domain.UserID) {
	room := domain.RoomForGroup(id)
	for _, member := range members {
		h.Dispatch.SendToUser(member, core.EvGroupDeleted, groupDeleted{GroupID: id})
	}
	for _, conn := range h.Rooms.Members(room) {
		h.Rooms.Leave(conn.ID, room)
	}
}
