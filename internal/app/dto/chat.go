package dto

import (
	"time"

	domainchat "homeseek/internal/domain/chat"
)

type StartConversationRequest struct {
	ListingID string `json:"listingId"`
}

type StartConversationResponse struct {
	Success        bool        `json:"success"`
	ConversationID string      `json:"conversationId"`
	Seller         *PeerWithID `json:"seller"`
}

// PeerWithID is the public slice of a counterpart's profile.
type PeerWithID struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ConversationPreview struct {
	ID          string      `json:"_id"`
	ListingID   string      `json:"listingId"`
	LastMessage string      `json:"lastMessage"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Peer        *PeerWithID `json:"peer"`
}

type ConversationList struct {
	Success bool                  `json:"success"`
	Items   []ConversationPreview `json:"items"`
}

type Message struct {
	ID             string     `json:"_id"`
	ConversationID string     `json:"conversationId"`
	Sender         string     `json:"sender"`
	Text           string     `json:"text"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type MessageList struct {
	Success bool      `json:"success"`
	Items   []Message `json:"items"`
}

type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
}

type SendMessageResponse struct {
	Success bool    `json:"success"`
	Message Message `json:"message"`
}

type MarkReadRequest struct {
	ConversationID string `json:"conversationId"`
}

type MarkReadResponse struct {
	Success  bool  `json:"success"`
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

type PendingConversation struct {
	ConversationID string `json:"conversationId"`
	Unread         int64  `json:"unread"`
}

type PendingList struct {
	Success bool                  `json:"success"`
	Items   []PendingConversation `json:"items"`
}

func MapMessage(message *domainchat.Message) Message {
	return Message{
		ID:             string(message.ID),
		ConversationID: string(message.ConversationID),
		Sender:         string(message.Sender),
		Text:           message.Text,
		ReadAt:         message.ReadAt,
		CreatedAt:      message.CreatedAt,
	}
}

func MapMessages(messages []*domainchat.Message) []Message {
	items := make([]Message, 0, len(messages))
	for _, message := range messages {
		items = append(items, MapMessage(message))
	}
	return items
}

func MapInbox(entries []domainchat.InboxEntry) []ConversationPreview {
	items := make([]ConversationPreview, 0, len(entries))
	for _, entry := range entries {
		preview := ConversationPreview{
			ID:          string(entry.ConversationID),
			ListingID:   string(entry.ListingID),
			LastMessage: entry.LastMessage,
			UpdatedAt:   entry.UpdatedAt,
		}
		if entry.Peer != nil {
			preview.Peer = &PeerWithID{
				ID:       string(entry.Peer.ID),
				Username: entry.Peer.Username,
				Email:    entry.Peer.Email,
			}
		}
		items = append(items, preview)
	}
	return items
}

func MapPending(counts []domainchat.UnreadCount) []PendingConversation {
	items := make([]PendingConversation, 0, len(counts))
	for _, count := range counts {
		items = append(items, PendingConversation{
			ConversationID: string(count.ConversationID),
			Unread:         count.Unread,
		})
	}
	return items
}
