package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainchat "homeseek/internal/domain/chat"
	domainlistings "homeseek/internal/domain/listings"
	domainuser "homeseek/internal/domain/user"
)

// Service implements the conversation directory and message log operations
// on top of the repository contracts. The HTTP and websocket layers are thin
// adapters over it.
type Service struct {
	Conversations domainchat.ConversationRepository
	Messages      domainchat.MessageRepository
	Users         domainuser.Repository
	Listings      domainlistings.Repository
	Logger        *slog.Logger
}

// StartResult is the outcome of a get-or-create contact attempt.
type StartResult struct {
	Conversation *domainchat.Conversation
	Seller       *domainuser.PublicProfile
}

// GetOrCreate resolves the listing's owner as the counterparty and returns
// the single conversation for (listing, {caller, owner}), creating it on
// first contact. The seller is always resolved server-side from the listing,
// never taken from the client. Owners cannot open a thread on their own
// listing: the counterparty is derived from the listing, so a seller-side
// call has no buyer to pair with — sellers reach existing threads through
// the inbox instead.
func (s *Service) GetOrCreate(ctx context.Context, caller domainuser.ID, listingID string) (*StartResult, error) {
	if !domainchat.ValidID(listingID) {
		return nil, domainchat.ErrInvalidListingID
	}
	listing, err := s.Listings.ByID(ctx, domainlistings.ListingID(listingID))
	if err != nil {
		return nil, err
	}
	owner := listing.Owner
	if strings.TrimSpace(string(owner)) == "" {
		return nil, domainlistings.ErrNotFound
	}
	if !domainchat.ValidID(string(owner)) {
		return nil, domainchat.ErrInvalidParticipant
	}
	if caller == owner {
		return nil, domainchat.ErrSelfConversation
	}

	pair := domainchat.CanonicalPair(caller, owner)
	conversation, err := s.Conversations.ByKey(ctx, listing.ID, pair)
	if errors.Is(err, domainchat.ErrConversationNotFound) {
		conversation, err = s.createConversation(ctx, listing.ID, pair)
	}
	if err != nil {
		return nil, err
	}

	seller, err := s.publicProfile(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &StartResult{Conversation: conversation, Seller: seller}, nil
}

// createConversation races concurrent first-contact attempts against the
// storage uniqueness constraint. The loser re-reads the surviving record
// instead of surfacing the conflict.
func (s *Service) createConversation(ctx context.Context, listingID domainlistings.ListingID, pair [2]domainuser.ID) (*domainchat.Conversation, error) {
	now := time.Now()
	conversation := &domainchat.Conversation{
		ListingID:    listingID,
		Participants: pair,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.Conversations.Create(ctx, conversation)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, domainchat.ErrConversationExists) {
		return nil, err
	}
	return s.Conversations.ByKey(ctx, listingID, pair)
}

// Inbox lists conversation previews for the caller, derived from the message
// log: conversations without messages stay invisible, the preview reflects
// the true latest message, newest activity first.
func (s *Service) Inbox(ctx context.Context, caller domainuser.ID) ([]domainchat.InboxEntry, error) {
	return s.Conversations.Inbox(ctx, caller)
}

// Send appends a message to the conversation log and refreshes the preview
// cache. The cache update is best-effort: the inbox aggregator recomputes
// truth from the log, so a lagging cache never loses data.
func (s *Service) Send(ctx context.Context, caller domainuser.ID, conversationID, text string) (*domainchat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domainchat.ErrEmptyText
	}
	conversation, err := s.authorizedConversation(ctx, caller, conversationID)
	if err != nil {
		return nil, err
	}

	message := &domainchat.Message{
		ConversationID: conversation.ID,
		Sender:         caller,
		Text:           text,
		CreatedAt:      time.Now(),
	}
	if err := s.Messages.Append(ctx, message); err != nil {
		return nil, err
	}
	if err := s.Conversations.UpdateLastMessage(ctx, conversation.ID, message.Text, message.CreatedAt); err != nil && s.Logger != nil {
		s.Logger.Warn("last message cache update failed", "conversation_id", conversation.ID, "error", err)
	}
	return message, nil
}

// History returns the authoritative message order for a conversation,
// oldest first.
func (s *Service) History(ctx context.Context, caller domainuser.ID, conversationID string) ([]*domainchat.Message, error) {
	conversation, err := s.authorizedConversation(ctx, caller, conversationID)
	if err != nil {
		return nil, err
	}
	return s.Messages.History(ctx, conversation.ID)
}

// MarkRead stamps every message not authored by the caller as read.
// Idempotent; returns matched/modified counts for observability.
func (s *Service) MarkRead(ctx context.Context, caller domainuser.ID, conversationID string) (domainchat.ReadReceipt, error) {
	conversation, err := s.authorizedConversation(ctx, caller, conversationID)
	if err != nil {
		return domainchat.ReadReceipt{}, err
	}
	return s.Messages.MarkRead(ctx, conversation.ID, caller, time.Now())
}

// PendingCounts returns per-conversation unread badge values for the caller.
func (s *Service) PendingCounts(ctx context.Context, caller domainuser.ID) ([]domainchat.UnreadCount, error) {
	return s.Messages.UnreadCounts(ctx, caller)
}

// Participants resolves the member pair of a conversation, used by the
// realtime fan-out to address personal channels.
func (s *Service) Participants(ctx context.Context, conversationID string) ([2]domainuser.ID, error) {
	if !domainchat.ValidID(conversationID) {
		return [2]domainuser.ID{}, domainchat.ErrInvalidConversationID
	}
	conversation, err := s.Conversations.ByID(ctx, domainchat.ConversationID(conversationID))
	if err != nil {
		return [2]domainuser.ID{}, err
	}
	return conversation.Participants, nil
}

func (s *Service) authorizedConversation(ctx context.Context, caller domainuser.ID, conversationID string) (*domainchat.Conversation, error) {
	if !domainchat.ValidID(conversationID) {
		return nil, domainchat.ErrInvalidConversationID
	}
	conversation, err := s.Conversations.ByID(ctx, domainchat.ConversationID(conversationID))
	if err != nil {
		return nil, err
	}
	if !conversation.Participant(caller) {
		return nil, domainchat.ErrNotParticipant
	}
	return conversation, nil
}

func (s *Service) publicProfile(ctx context.Context, id domainuser.ID) (*domainuser.PublicProfile, error) {
	peer, err := s.Users.ByID(ctx, id)
	if errors.Is(err, domainuser.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	profile := peer.Public()
	return &profile, nil
}
