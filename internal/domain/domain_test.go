package domain

import (
	"strings"
	"testing"
)

func TestRoomForGroup(t *testing.T) {
	if got := RoomForGroup("abc123"); got != "group_abc123" {
		t.Fatalf("room derivation changed the wire contract: %q", got)
	}
}

func TestNewGroupIncludesAdminOnce(t *testing.T) {
	g, err := NewGroup("team", "desc", "admin", []UserID{"a", "b", "admin", "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Members) != 3 {
		t.Fatalf("expected deduped members [a b admin], got %v", g.Members)
	}
	if !g.HasMember("admin") {
		t.Fatal("admin must always be a member")
	}
}

func TestNewGroupValidation(t *testing.T) {
	if _, err := NewGroup("", "", "admin", nil); err != ErrGroupNameEmpty {
		t.Fatalf("expected ErrGroupNameEmpty, got %v", err)
	}
	long := strings.Repeat("x", MaxGroupNameLen+1)
	if _, err := NewGroup(long, "", "admin", nil); err != ErrGroupNameTooLong {
		t.Fatalf("expected ErrGroupNameTooLong, got %v", err)
	}
}

func TestNewUserValidation(t *testing.T) {
	if _, err := NewUser("", "a@b.c", "hash"); err != ErrFullNameEmpty {
		t.Fatalf("expected ErrFullNameEmpty, got %v", err)
	}
	if _, err := NewUser("Alice", "", "hash"); err != ErrEmailEmpty {
		t.Fatalf("expected ErrEmailEmpty, got %v", err)
	}
	u, err := NewUser("Alice", "a@b.c", "hash")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID == "" {
		t.Fatal("expected generated user id")
	}
}
