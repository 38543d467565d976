// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	MaxFullNameLen = 64
	MinPasswordLen = 6
)

var (
	ErrFullNameEmpty   = errors.New("full name empty")
	ErrFullNameTooLong = errors.New("full name too long")
	ErrEmailEmpty      = errors.New("email empty")
	ErrPasswordTooWeak = errors.New("password too short")
)

type UserID string

type User struct {
	ID         UserID    `json:"_id" bson:"_id"`
	FullName   string    `json:"fullName" bson:"full_name"`
	Email      string    `json:"email" bson:"email"`
	Password   string    `json:"-" bson:"password"`
	ProfilePic string    `json:"profilePic" bson:"profile_pic"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
// Password must already be hashed by the caller.
func NewUser(fullName, email, passwordHash string) (*User, error) {
	if fullName == "" {
		return nil, ErrFullNameEmpty
	}
	if len(fullName) > MaxFullNameLen {
		return nil, ErrFullNameTooLong
	}
	if email == "" {
		return nil, ErrEmailEmpty
	}
	now := time.Now().UTC()
	return &User{
		ID:        UserID(uuid.NewString()),
		FullName:  fullName,
		Email:     email,
		Password:  passwordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
