package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/okutsen/chatline/internal/core"
	"github.com/okutsen/chatline/internal/domain"
)

// fakeSignal records every frame pushed to it. Setting full simulates a
// saturated send buffer.
type fakeSignal struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
	full   bool
}

func (f *fakeSignal) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("connection closed")
	}
	if f.full {
		return errors.New("backpressure")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSignal) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSignal) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSignal) events(t *testing.T) []core.Event {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Event, 0, len(f.frames))
	for _, fr := range f.frames {
		var ev core.Event
		if err := json.Unmarshal(fr, &ev); err != nil {
			t.Fatalf("bad frame on wire: %v", err)
		}
		out = append(out, ev)
	}
	return out
}

func (f *fakeSignal) eventNames(t *testing.T) []string {
	t.Helper()
	evs := f.events(t)
	names := make([]string, len(evs))
	for i, ev := range evs {
		names[i] = ev.Event
	}
	return names
}

// lastEvent decodes the data of the most recent event with the given
// name into v, failing the test if none was delivered.
func (f *fakeSignal) lastEvent(t *testing.T, name string, v any) {
	t.Helper()
	evs := f.events(t)
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Event != name {
			continue
		}
		if v != nil {
			if err := json.Unmarshal(evs[i].Data, v); err != nil {
				t.Fatalf("decode %s data: %v", name, err)
			}
		}
		return
	}
	t.Fatalf("no %s event delivered, got %v", name, f.eventNames(t))
}

func (f *fakeSignal) countEvent(t *testing.T, name string) int {
	t.Helper()
	n := 0
	for _, ev := range f.events(t) {
		if ev.Event == name {
			n++
		}
	}
	return n
}

// fakeDirectory serves group membership from a map.
type fakeDirectory struct {
	groups map[domain.UserID][]domain.GroupID
	err    error
}

func (d *fakeDirectory) GroupsOf(_ context.Context, user domain.UserID) ([]domain.GroupID, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.groups[user], nil
}

func (d *fakeDirectory) MembersOf(_ context.Context, group domain.GroupID) ([]domain.UserID, error) {
	if d.err != nil {
		return nil, d.err
	}
	var out []domain.UserID
	found := false
	for user, gs := range d.groups {
		for _, g := range gs {
			if g == group {
				found = true
				out = append(out, user)
			}
		}
	}
	if !found {
		return nil, errors.New("unknown group")
	}
	return out, nil
}

func newTestConn(user domain.UserID, id core.ConnID) (*Conn, *fakeSignal) {
	sig := &fakeSignal{}
	return NewConn(id, user, sig), sig
}
