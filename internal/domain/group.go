package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const MaxGroupNameLen = 64

var (
	ErrGroupNameEmpty   = errors.New("group name empty")
	ErrGroupNameTooLong = errors.New("group name too long")
	ErrNoMembers        = errors.New("group needs at least one member")
)

type GroupID string

type Group struct {
	ID          GroupID   `json:"_id" bson:"_id"`
	GroupName   string    `json:"groupName" bson:"group_name"`
	Description string    `json:"description" bson:"description"`
	GroupImage  string    `json:"groupImage" bson:"group_image"`
	Admin       UserID    `json:"admin" bson:"admin"`
	Members     []UserID  `json:"members" bson:"members"`
	LastMessage MessageID `json:"lastMessage,omitempty" bson:"last_message,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// NewGroup builds a group with the admin always included in the member set.
func NewGroup(name, description string, admin UserID, members []UserID) (*Group, error) {
	if name == "" {
		return nil, ErrGroupNameEmpty
	}
	if len(name) > MaxGroupNameLen {
		return nil, ErrGroupNameTooLong
	}
	unique := make([]UserID, 0, len(members)+1)
	seen := make(map[UserID]bool, len(members)+1)
	for _, m := range append(members, admin) {
		if seen[m] {
			continue
		}
		seen[m] = true
		unique = append(unique, m)
	}
	now := time.Now().UTC()
	return &Group{
		ID:          GroupID(uuid.NewString()),
		GroupName:   name,
		Description: description,
		Admin:       admin,
		Members:     unique,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (g *Group) HasMember(u UserID) bool {
	for _, m := range g.Members {
		if m == u {
			return true
		}
	}
	return false
}
