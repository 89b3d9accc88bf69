package chat

import (
	"context"
	"errors"
	"time"

	"homeseek/internal/domain/listings"
	domainuser "homeseek/internal/domain/user"
)

var (
	ErrInvalidConversationID = errors.New("chat: invalid conversation id")
	ErrInvalidListingID      = errors.New("chat: invalid listing id")
	ErrInvalidParticipant    = errors.New("chat: invalid participant id")
	ErrConversationNotFound  = errors.New("chat: conversation not found")
	ErrConversationExists    = errors.New("chat: conversation already exists")
	ErrNotParticipant        = errors.New("chat: not a conversation participant")
	ErrSelfConversation      = errors.New("chat: cannot start a conversation with yourself")
)

type ConversationID string

// Conversation is the unique thread between two users about one listing.
// Participants are always stored in canonical order so the unordered pair
// {A,B} maps to exactly one record per listing.
type Conversation struct {
	ID           ConversationID
	ListingID    listings.ListingID
	Participants [2]domainuser.ID
	LastMessage  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Participant reports whether id is one of the two conversation members.
func (c *Conversation) Participant(id domainuser.ID) bool {
	return c.Participants[0] == id || c.Participants[1] == id
}

// Peer returns the participant that is not me.
func (c *Conversation) Peer(me domainuser.ID) domainuser.ID {
	if c.Participants[0] == me {
		return c.Participants[1]
	}
	return c.Participants[0]
}

// CanonicalPair orders two participant identities lexicographically. Every
// uniqueness-dependent read and write goes through this normalization, never
// through an implicit storage hook.
func CanonicalPair(a, b domainuser.ID) [2]domainuser.ID {
	if string(a) > string(b) {
		return [2]domainuser.ID{b, a}
	}
	return [2]domainuser.ID{a, b}
}

// ValidID checks the 24-char hex object-id format used for all chat
// identifiers. Malformed ids are rejected at the operation boundary.
func ValidID(id string) bool {
	if len(id) != 24 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// InboxEntry is a conversation preview derived from the message log, not
// from the cached LastMessage field.
type InboxEntry struct {
	ConversationID ConversationID
	ListingID      listings.ListingID
	LastMessage    string
	UpdatedAt      time.Time
	Peer           *domainuser.PublicProfile
}

type ConversationRepository interface {
	// Create persists a new conversation and fills in its generated ID.
	// Returns ErrConversationExists when the (listing, pair) key is taken.
	Create(ctx context.Context, conversation *Conversation) error
	ByID(ctx context.Context, id ConversationID) (*Conversation, error)
	// ByKey looks up the conversation for a listing and a canonical pair.
	ByKey(ctx context.Context, listingID listings.ListingID, pair [2]domainuser.ID) (*Conversation, error)
	// Inbox derives previews for every conversation the user belongs to
	// that has at least one message, newest activity first.
	Inbox(ctx context.Context, userID domainuser.ID) ([]InboxEntry, error)
	// UpdateLastMessage refreshes the denormalized preview cache.
	UpdateLastMessage(ctx context.Context, id ConversationID, text string, at time.Time) error
}
