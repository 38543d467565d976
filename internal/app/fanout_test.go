package app

import (
	"testing"

	"github.com/okutsen/chatline/internal/core"
	"github.com/okutsen/chatline/internal/domain"
)

func newTestDispatcher(policy Policy) (*Dispatcher, *Registry, *Rooms) {
	registry := NewRegistry()
	rooms := NewRooms(&fakeDirectory{})
	return NewDispatcher(registry, rooms, policy), registry, rooms
}

func TestSendToUserDeliversEnvelope(t *testing.T) {
	d, registry, _ := newTestDispatcher(nil)
	conn, sig := newTestConn("alice", "c1")
	registry.Register(conn)

	d.SendToUser("alice", core.EvNewMessage, map[string]string{"text": "hi"})

	var got map[string]string
	sig.lastEvent(t, core.EvNewMessage, &got)
	if got["text"] != "hi" {
		t.Fatalf("payload mangled: %v", got)
	}
}

func TestSendToOfflineUserIsSilentNoop(t *testing.T) {
	d, _, _ := newTestDispatcher(nil)
	// Must not panic or error; the message is simply dropped.
	d.SendToUser("ghost", core.EvNewMessage, map[string]string{"text": "hi"})
}

func TestSendToRoomDeliversToMembersOnly(t *testing.T) {
	d, registry, rooms := newTestDispatcher(nil)
	a, aSig := newTestConn("alice", "c1")
	b, bSig := newTestConn("bob", "c2")
	c, cSig := newTestConn("carol", "c3")
	for _, conn := range []*Conn{a, b, c} {
		registry.Register(conn)
	}
	room := domain.RoomForGroup("g1")
	rooms.Join(a, room)
	rooms.Join(b, room)

	d.SendToRoom(room, core.EvNewGroupMessage, map[string]string{"text": "yo"}, "")

	if n := aSig.countEvent(t, core.EvNewGroupMessage); n != 1 {
		t.Fatalf("expected alice to get 1 message, got %d", n)
	}
	if n := bSig.countEvent(t, core.EvNewGroupMessage); n != 1 {
		t.Fatalf("expected bob to get 1 message, got %d", n)
	}
	if n := cSig.countEvent(t, core.EvNewGroupMessage); n != 0 {
		t.Fatalf("carol is not a member but got %d messages", n)
	}
}

func TestSendToRoomExcludesSender(t *testing.T) {
	d, registry, rooms := newTestDispatcher(nil)
	a, aSig := newTestConn("alice", "c1")
	b, bSig := newTestConn("bob", "c2")
	registry.Register(a)
	registry.Register(b)
	room := domain.RoomForGroup("g1")
	rooms.Join(a, room)
	rooms.Join(b, room)

	d.SendToRoom(room, core.EvNewGroupMessage, map[string]string{"text": "yo"}, a.ID)

	if n := aSig.countEvent(t, core.EvNewGroupMessage); n != 0 {
		t.Fatalf("excluded sender received %d messages", n)
	}
	if n := bSig.countEvent(t, core.EvNewGroupMessage); n != 1 {
		t.Fatalf("expected bob to get 1 message, got %d", n)
	}
}

func TestSendToRoomSurvivesOneSlowConsumer(t *testing.T) {
	d, registry, rooms := newTestDispatcher(DropPolicy{})
	a, aSig := newTestConn("alice", "c1")
	b, bSig := newTestConn("bob", "c2")
	registry.Register(a)
	registry.Register(b)
	room := domain.RoomForGroup("g1")
	rooms.Join(a, room)
	rooms.Join(b, room)
	aSig.full = true

	d.SendToRoom(room, core.EvNewGroupMessage, map[string]string{"text": "yo"}, "")

	if n := bSig.countEvent(t, core.EvNewGroupMessage); n != 1 {
		t.Fatalf("slow consumer blocked delivery to others, bob got %d", n)
	}
	if aSig.isClosed() {
		t.Fatal("drop policy must not close the slow consumer")
	}
}

func TestKickPolicyClosesSlowConsumer(t *testing.T) {
	d, registry, _ := newTestDispatcher(KickPolicy{})
	conn, sig := newTestConn("alice", "c1")
	registry.Register(conn)
	sig.full = true

	d.SendToUser("alice", core.EvNewMessage, map[string]string{"text": "hi"})

	if !sig.isClosed() {
		t.Fatal("kick policy must close the slow consumer")
	}
}

func TestBroadcastPresenceReachesEveryConnection(t *testing.T) {
	d, registry, _ := newTestDispatcher(nil)
	a, aSig := newTestConn("alice", "c1")
	b, bSig := newTestConn("bob", "c2")
	registry.Register(a)
	registry.Register(b)

	d.BroadcastPresence()

	for _, sig := range []*fakeSignal{aSig, bSig} {
		var online []domain.UserID
		sig.lastEvent(t, core.EvOnlineUsers, &online)
		if len(online) != 2 || online[0] != "alice" || online[1] != "bob" {
			t.Fatalf("expected sorted [alice bob], got %v", online)
		}
	}
}
