package signal

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/okutsen/chatline/internal/app"
	"github.com/okutsen/chatline/internal/config"
	"github.com/okutsen/chatline/internal/core"
	"github.com/okutsen/chatline/internal/domain"
)

type memSignal struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (m *memSignal) TrySend(f core.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, f)
	return nil
}

func (m *memSignal) Close() {}

func (m *memSignal) has(t *testing.T, event string) bool {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.frames {
		var ev core.Event
		if err := json.Unmarshal(f, &ev); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		if ev.Event == event {
			return true
		}
	}
	return false
}

type noGroups struct{}

func (noGroups) GroupsOf(context.Context, domain.UserID) ([]domain.GroupID, error) {
	return nil, nil
}

func (noGroups) MembersOf(context.Context, domain.GroupID) ([]domain.UserID, error) {
	return nil, nil
}

func newTestController() (*WSController, *app.Conn, *memSignal, *memSignal) {
	hub := app.NewHub(noGroups{}, app.DropPolicy{}, time.Hour)
	ctl := NewWSController(hub, &config.Config{ReadLimit: 32768, PingPeriod: 54 * time.Second})

	aliceSig := &memSignal{}
	alice := hub.Connect(context.Background(), "alice", "c1", aliceSig)
	bobSig := &memSignal{}
	hub.Connect(context.Background(), "bob", "c2", bobSig)
	return ctl, alice, aliceSig, bobSig
}

func TestDispatchJoinAndLeaveGroup(t *testing.T) {
	ctl, alice, _, _ := newTestController()

	ctl.handleEvent(alice, []byte(`{"event":"joinGroup","data":{"roomId":"group_g1"}}`))
	members := ctl.Hub.Rooms.Members("group_g1")
	if len(members) != 1 || members[0] != alice {
		t.Fatalf("joinGroup did not join the room: %v", members)
	}

	ctl.handleEvent(alice, []byte(`{"event":"leaveGroup","data":{"roomId":"group_g1"}}`))
	if members := ctl.Hub.Rooms.Members("group_g1"); len(members) != 0 {
		t.Fatalf("leaveGroup did not leave the room: %v", members)
	}
}

func TestDispatchCallFlow(t *testing.T) {
	ctl, alice, _, bobSig := newTestController()

	ctl.handleEvent(alice, []byte(`{"event":"call-user","data":{"to":"bob","offer":{"type":"offer","sdp":"v=0\r\n"},"caller":{"fullName":"Alice"}}}`))
	if !bobSig.has(t, core.EvIncomingCall) {
		t.Fatal("call-user did not ring the callee")
	}
	if _, ok := ctl.Hub.Calls.Session("alice"); !ok {
		t.Fatal("call-user did not create a session")
	}

	ctl.handleEvent(alice, []byte(`{"event":"ice-candidate","data":{"to":"bob","candidate":{"candidate":"candidate:1"}}}`))
	if !bobSig.has(t, core.EvICECandidate) {
		t.Fatal("ice-candidate was not relayed")
	}

	ctl.handleEvent(alice, []byte(`{"event":"call-ended","data":{"to":"bob"}}`))
	if _, ok := ctl.Hub.Calls.Session("alice"); ok {
		t.Fatal("call-ended did not destroy the session")
	}
	if !bobSig.has(t, core.EvCallEnded) {
		t.Fatal("call-ended was not relayed to the peer")
	}
}

func TestDispatchAbsorbsBadInput(t *testing.T) {
	ctl, alice, _, bobSig := newTestController()

	// None of these may panic or disturb state.
	ctl.handleEvent(alice, []byte(`not json`))
	ctl.handleEvent(alice, []byte(`{"event":"no-such-event","data":{}}`))
	ctl.handleEvent(alice, []byte(`{"event":"call-user","data":{"offer":17}}`))
	ctl.handleEvent(alice, []byte(`{"event":"joinGroup","data":{}}`))

	if _, ok := ctl.Hub.Calls.Session("alice"); ok {
		t.Fatal("malformed call-user created a session")
	}
	if bobSig.has(t, core.EvIncomingCall) {
		t.Fatal("malformed call-user rang the callee")
	}
}
