package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageID string

// Message is either direct (ReceiverID set) or a group message (GroupID set),
// never both.
type Message struct {
	ID         MessageID `json:"_id" bson:"_id"`
	SenderID   UserID    `json:"senderId" bson:"sender_id"`
	ReceiverID UserID    `json:"receiverId,omitempty" bson:"receiver_id,omitempty"`
	GroupID    GroupID   `json:"groupId,omitempty" bson:"group_id,omitempty"`
	Text       string    `json:"text" bson:"text"`
	Image      string    `json:"image,omitempty" bson:"image,omitempty"`
	Seen       bool      `json:"seen" bson:"seen"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

func NewDirectMessage(sender, receiver UserID, text, image string) *Message {
	return &Message{
		ID:         MessageID(uuid.NewString()),
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		Image:      image,
		CreatedAt:  time.Now().UTC(),
	}
}

func NewGroupMessage(sender UserID, group GroupID, text, image string) *Message {
	return &Message{
		ID:        MessageID(uuid.NewString()),
		SenderID:  sender,
		GroupID:   group,
		Text:      text,
		Image:     image,
		CreatedAt: time.Now().UTC(),
	}
}
