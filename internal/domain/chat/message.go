package chat

import (
	"context"
	"errors"
	"time"

	domainuser "homeseek/internal/domain/user"
)

var (
	ErrEmptyText       = errors.New("chat: message text is required")
	ErrMessageNotFound = errors.New("chat: message not found")
)

type MessageID string

// Message is one entry of the append-only conversation log. ReadAt is the
// only mutable field and transitions once, from nil to a timestamp.
type Message struct {
	ID             MessageID
	ConversationID ConversationID
	Sender         domainuser.ID
	Text           string
	ReadAt         *time.Time
	CreatedAt      time.Time
}

func (m *Message) Read() bool {
	return m.ReadAt != nil
}

// UnreadCount is the per-conversation badge value for one user.
type UnreadCount struct {
	ConversationID ConversationID
	Unread         int64
}

// ReadReceipt reports how many messages a MarkRead call touched.
type ReadReceipt struct {
	Matched  int64
	Modified int64
}

type MessageRepository interface {
	// Append persists a new message and fills in its generated ID.
	Append(ctx context.Context, message *Message) error
	// History returns all messages of a conversation in createdAt order,
	// oldest first.
	History(ctx context.Context, id ConversationID) ([]*Message, error)
	// MarkRead stamps every unread message in the conversation that was
	// not sent by reader. Repeated calls are no-ops.
	MarkRead(ctx context.Context, id ConversationID, reader domainuser.ID, at time.Time) (ReadReceipt, error)
	// UnreadCounts groups unread messages addressed to reader by
	// conversation.
	UnreadCounts(ctx context.Context, reader domainuser.ID) ([]UnreadCount, error)
}
