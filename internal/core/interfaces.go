package core

import (
	"context"

	"github.com/okutsen/chatline/internal/domain"
)

// Frame is a raw encoded payload ready for the wire.
type Frame []byte

// ConnID identifies one live transport session. A user keeps the same
// UserID across reconnects but gets a fresh ConnID every time.
type ConnID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// GroupDirectory is the authoritative group-membership collaborator.
// The live core derives room membership from it and never mutates it.
type GroupDirectory interface {
	GroupsOf(ctx context.Context, user domain.UserID) ([]domain.GroupID, error)
	MembersOf(ctx context.Context, group domain.GroupID) ([]domain.UserID, error)
}
