package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/okutsen/chatline/internal/core"
	"github.com/okutsen/chatline/internal/domain"
)

// Rooms owns group-room membership for live connections. It keeps two
// indexes, room -> connections and connection -> rooms, mutually
// consistent under one lock. A room exists exactly while at least one
// connection is joined to it.
type Rooms struct {
	mu     sync.RWMutex
	byRoom map[domain.RoomID]map[core.ConnID]*Conn
	byConn map[core.ConnID]map[domain.RoomID]struct{}

	dir core.GroupDirectory
}

func NewRooms(dir core.GroupDirectory) *Rooms {
	return &Rooms{
		byRoom: make(map[domain.RoomID]map[core.ConnID]*Conn),
		byConn: make(map[core.ConnID]map[domain.RoomID]struct{}),
		dir:    dir,
	}
}

// Join is idempotent.
func (r *Rooms) Join(conn *Conn, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.byRoom[room]
	if !ok {
		members = make(map[core.ConnID]*Conn)
		r.byRoom[room] = members
	}
	if _, joined := members[conn.ID]; joined {
		return
	}
	members[conn.ID] = conn
	rooms, ok := r.byConn[conn.ID]
	if !ok {
		rooms = make(map[domain.RoomID]struct{})
		r.byConn[conn.ID] = rooms
	}
	rooms[room] = struct{}{}
	log.Info().Str("module", "app.rooms").Str("conn", string(conn.ID)).
		Str("room", string(room)).Msg("joined room")
}

// Leave is idempotent.
func (r *Rooms) Leave(connID core.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(connID, room)
}

func (r *Rooms) leaveLocked(connID core.ConnID, room domain.RoomID) {
	members, ok := r.byRoom[room]
	if !ok {
		return
	}
	if _, joined := members[connID]; !joined {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.byRoom, room)
	}
	if rooms, ok := r.byConn[connID]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.byConn, connID)
		}
	}
	log.Info().Str("module", "app.rooms").Str("conn", string(connID)).
		Str("room", string(room)).Msg("left room")
}

// DropConn removes a connection from every room it joined.
func (r *Rooms) DropConn(connID core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room := range r.byConn[connID] {
		r.leaveLocked(connID, room)
	}
}

// Members returns a snapshot of the connections joined to room.
func (r *Rooms) Members(room domain.RoomID) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.byRoom[room]
	out := make([]*Conn, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

// RoomsOf returns a snapshot of the rooms a connection joined.
func (r *Rooms) RoomsOf(connID core.ConnID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(r.byConn[connID]))
	for room := range r.byConn[connID] {
		out = append(out, room)
	}
	return out
}

// JoinAllGroups subscribes conn to the room of every group its user
// belongs to, per the authoritative directory. A directory failure
// degrades to zero rooms joined; the user stays online for direct
// messages either way.
func (r *Rooms) JoinAllGroups(ctx context.Context, conn *Conn) {
	groups, err := r.dir.GroupsOf(ctx, conn.User)
	if err != nil {
		log.Error().Err(err).Str("module", "app.rooms").
			Str("user", string(conn.User)).Msg("group lookup failed, joining no rooms")
		return
	}
	for _, g := range groups {
		r.Join(conn, domain.RoomForGroup(g))
	}
}
