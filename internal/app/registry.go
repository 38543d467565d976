package app

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/okutsen/chatline/internal/core"
	"github.com/okutsen/chatline/internal/domain"
)

// Conn pairs a live transport session with the identity that owns it.
type Conn struct {
	ID        core.ConnID
	User      domain.UserID
	Signal    core.SignalConnection
	CreatedAt time.Time
}

func NewConn(id core.ConnID, user domain.UserID, sig core.SignalConnection) *Conn {
	return &Conn{ID: id, User: user, Signal: sig, CreatedAt: time.Now()}
}

// Registry owns the UserID -> live connection mapping. A user has at
// most one registered connection; registering again supersedes the old
// one without closing its transport.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.UserID]*Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.UserID]*Conn)}
}

// Register installs conn as the live connection for its user. Any prior
// connection is superseded: dropped from presence immediately, but its
// transport is left to close on its own.
func (r *Registry) Register(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.conns[conn.User]; ok {
		log.Info().Str("module", "app.registry").Str("user", string(conn.User)).
			Str("old_conn", string(old.ID)).Str("new_conn", string(conn.ID)).
			Msg("superseded connection")
	}
	r.conns[conn.User] = conn
}

// Unregister removes the mapping only if connID is still the current
// connection for the user. A stale close from a superseded connection
// must not evict its replacement.
func (r *Registry) Unregister(user domain.UserID, connID core.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.conns[user]
	if !ok || cur.ID != connID {
		return false
	}
	delete(r.conns, user)
	log.Info().Str("module", "app.registry").Str("user", string(user)).Msg("unregistered")
	return true
}

func (r *Registry) Lookup(user domain.UserID) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[user]
	return c, ok
}

// ListOnline returns a sorted snapshot of all users with a live connection.
func (r *Registry) ListOnline() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.UserID, 0, len(r.conns))
	for u := range r.conns {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Snapshot returns all live connections, for global fanout.
func (r *Registry) Snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}
