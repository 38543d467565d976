package app

import (
	"context"
	"errors"
	"testing"

	"github.com/okutsen/chatline/internal/domain"
)

func TestJoinAndLeaveAreIdempotent(t *testing.T) {
	rooms := NewRooms(&fakeDirectory{})
	conn, _ := newTestConn("alice", "c1")

	rooms.Join(conn, "group_g1")
	rooms.Join(conn, "group_g1")
	if got := rooms.Members("group_g1"); len(got) != 1 {
		t.Fatalf("double join duplicated membership: %v", got)
	}

	rooms.Leave(conn.ID, "group_g1")
	rooms.Leave(conn.ID, "group_g1")
	if got := rooms.Members("group_g1"); len(got) != 0 {
		t.Fatalf("expected empty room after leave, got %v", got)
	}
	if got := rooms.RoomsOf(conn.ID); len(got) != 0 {
		t.Fatalf("inverse index not cleaned up: %v", got)
	}
}

func TestDropConnRemovesAllMemberships(t *testing.T) {
	rooms := NewRooms(&fakeDirectory{})
	a, _ := newTestConn("alice", "c1")
	b, _ := newTestConn("bob", "c2")
	rooms.Join(a, "group_g1")
	rooms.Join(a, "group_g2")
	rooms.Join(b, "group_g1")

	rooms.DropConn(a.ID)

	if got := rooms.RoomsOf(a.ID); len(got) != 0 {
		t.Fatalf("expected no rooms for dropped conn, got %v", got)
	}
	members := rooms.Members("group_g1")
	if len(members) != 1 || members[0] != b {
		t.Fatalf("dropping one conn disturbed other memberships: %v", members)
	}
	if got := rooms.Members("group_g2"); len(got) != 0 {
		t.Fatalf("expected g2 room gone, got %v", got)
	}
}

func TestJoinAllGroupsFollowsDirectory(t *testing.T) {
	dir := &fakeDirectory{groups: map[domain.UserID][]domain.GroupID{
		"alice": {"g1", "g2"},
	}}
	rooms := NewRooms(dir)
	conn, _ := newTestConn("alice", "c1")

	rooms.JoinAllGroups(context.Background(), conn)

	for _, g := range dir.groups["alice"] {
		members := rooms.Members(domain.RoomForGroup(g))
		if len(members) != 1 || members[0] != conn {
			t.Fatalf("expected conn joined to %s, got %v", g, members)
		}
	}
}

func TestJoinAllGroupsDirectoryFailureJoinsNothing(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("db down")}
	rooms := NewRooms(dir)
	conn, _ := newTestConn("alice", "c1")

	rooms.JoinAllGroups(context.Background(), conn)

	if got := rooms.RoomsOf(conn.ID); len(got) != 0 {
		t.Fatalf("directory failure must degrade to zero rooms, got %v", got)
	}
}
