package domain

import (
	"time"

	"github.com/google/uuid"
)

// Creator is a content-provider persona users can chat with or buy
// itineraries from.
type Creator struct {
	ID           uuid.UUID
	Name         string
	Handle       string
	AvatarURL    string
	Bio          string
	Specialties  []string
	IsOnline     bool
	ResponseTime string
	CreatedAt    time.Time
}

// Conversation is a message thread between a user and a creator.
type Conversation struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	CreatorID     uuid.UUID
	LastMessageAt time.Time
	CreatedAt     time.Time
}

// SenderKind tags who wrote a message.
type SenderKind string

const (
	SenderUser    SenderKind = "user"
	SenderCreator SenderKind = "creator"
)

// Message belongs to one conversation. Threads are read oldest first.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Sender         SenderKind
	Content        string
	IsRead         bool
	CreatedAt      time.Time
}

// ConversationSummary is a conversation as shown in the inbox: its creator,
// the latest message, and the number of unread creator messages.
// LastMessage is nil for a conversation with no messages yet.
type ConversationSummary struct {
	Conversation Conversation
	Creator      Creator
	LastMessage  *Message
	UnreadCount  int
}

// Thread is the state returned after sending a message: the refreshed
// message list and the refreshed inbox.
type Thread struct {
	Messages      []Message
	Conversations []ConversationSummary
}
