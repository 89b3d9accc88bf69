package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	domainchat "homeseek/internal/domain/chat"
	domainlistings "homeseek/internal/domain/listings"
	domainuser "homeseek/internal/domain/user"
)

// ChatStore keeps conversations and their message logs in memory. It backs
// the messaging core in tests and derives inbox previews and unread counts
// from the log the same way the document-store pipelines do.
type ChatStore struct {
	mu            sync.RWMutex
	conversations map[domainchat.ConversationID]*domainchat.Conversation
	messages      map[domainchat.ConversationID][]*domainchat.Message
	users         *UserRepository
}

func NewChatStore(users *UserRepository) *ChatStore {
	return &ChatStore{
		conversations: make(map[domainchat.ConversationID]*domainchat.Conversation),
		messages:      make(map[domainchat.ConversationID][]*domainchat.Message),
		users:         users,
	}
}

func (s *ChatStore) Create(ctx context.Context, conversation *domainchat.Conversation) error {
	if conversation == nil {
		return errors.New("memory: conversation is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.conversations {
		if existing.ListingID == conversation.ListingID && existing.Participants == conversation.Participants {
			return domainchat.ErrConversationExists
		}
	}
	if conversation.ID == "" {
		conversation.ID = domainchat.ConversationID(primitive.NewObjectID().Hex())
	}
	s.conversations[conversation.ID] = cloneConversation(conversation)
	return nil
}

func (s *ChatStore) ByID(ctx context.Context, id domainchat.ConversationID) (*domainchat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if conversation, ok := s.conversations[id]; ok {
		return cloneConversation(conversation), nil
	}
	return nil, domainchat.ErrConversationNotFound
}

func (s *ChatStore) ByKey(ctx context.Context, listingID domainlistings.ListingID, pair [2]domainuser.ID) (*domainchat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, conversation := range s.conversations {
		if conversation.ListingID == listingID && conversation.Participants == pair {
			return cloneConversation(conversation), nil
		}
	}
	return nil, domainchat.ErrConversationNotFound
}

func (s *ChatStore) UpdateLastMessage(ctx context.Context, id domainchat.ConversationID, text string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conversation, ok := s.conversations[id]
	if !ok {
		return domainchat.ErrConversationNotFound
	}
	conversation.LastMessage = text
	conversation.UpdatedAt = at
	return nil
}

// Inbox recomputes previews from the message log; the LastMessage cache on
// the conversation record is ignored here.
func (s *ChatStore) Inbox(ctx context.Context, userID domainuser.ID) ([]domainchat.InboxEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []domainchat.InboxEntry
	for id, conversation := range s.conversations {
		if !conversation.Participant(userID) {
			continue
		}
		latest := latestMessage(s.messages[id])
		if latest == nil {
			continue
		}
		entry := domainchat.InboxEntry{
			ConversationID: id,
			ListingID:      conversation.ListingID,
			LastMessage:    latest.Text,
			UpdatedAt:      latest.CreatedAt,
		}
		if s.users != nil {
			if peer, err := s.users.ByID(ctx, conversation.Peer(userID)); err == nil {
				profile := peer.Public()
				entry.Peer = &profile
			}
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].UpdatedAt.After(entries[j].UpdatedAt) })
	return entries, nil
}

func (s *ChatStore) Append(ctx context.Context, message *domainchat.Message) error {
	if message == nil {
		return errors.New("memory: message is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[message.ConversationID]; !ok {
		return domainchat.ErrConversationNotFound
	}
	if message.ID == "" {
		message.ID = domainchat.MessageID(primitive.NewObjectID().Hex())
	}
	s.messages[message.ConversationID] = append(s.messages[message.ConversationID], cloneMessage(message))
	return nil
}

func (s *ChatStore) History(ctx context.Context, id domainchat.ConversationID) ([]*domainchat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.messages[id]
	result := make([]*domainchat.Message, 0, len(log))
	for _, message := range log {
		result = append(result, cloneMessage(message))
	}
	// Appended in insertion order; stable sort keeps that order for
	// createdAt ties, matching store natural order.
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *ChatStore) MarkRead(ctx context.Context, id domainchat.ConversationID, reader domainuser.ID, at time.Time) (domainchat.ReadReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var receipt domainchat.ReadReceipt
	for _, message := range s.messages[id] {
		if message.Sender == reader || message.ReadAt != nil {
			continue
		}
		stamp := at
		message.ReadAt = &stamp
		receipt.Matched++
		receipt.Modified++
	}
	return receipt, nil
}

func (s *ChatStore) UnreadCounts(ctx context.Context, reader domainuser.ID) ([]domainchat.UnreadCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var counts []domainchat.UnreadCount
	for id, conversation := range s.conversations {
		if !conversation.Participant(reader) {
			continue
		}
		var unread int64
		for _, message := range s.messages[id] {
			if message.Sender != reader && message.ReadAt == nil {
				unread++
			}
		}
		if unread > 0 {
			counts = append(counts, domainchat.UnreadCount{ConversationID: id, Unread: unread})
		}
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Unread > counts[j].Unread })
	return counts, nil
}

func latestMessage(log []*domainchat.Message) *domainchat.Message {
	var latest *domainchat.Message
	for _, message := range log {
		if latest == nil || !message.CreatedAt.Before(latest.CreatedAt) {
			latest = message
		}
	}
	return latest
}

func cloneConversation(c *domainchat.Conversation) *domainchat.Conversation {
	if c == nil {
		return nil
	}
	copyConversation := *c
	return &copyConversation
}

func cloneMessage(m *domainchat.Message) *domainchat.Message {
	if m == nil {
		return nil
	}
	copyMessage := *m
	if m.ReadAt != nil {
		stamp := *m.ReadAt
		copyMessage.ReadAt = &stamp
	}
	return &copyMessage
}

var _ domainchat.ConversationRepository = (*ChatStore)(nil)
var _ domainchat.MessageRepository = (*ChatStore)(nil)
