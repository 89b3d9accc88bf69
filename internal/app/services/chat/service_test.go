package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	domainchat "homeseek/internal/domain/chat"
	domainlistings "homeseek/internal/domain/listings"
	domainuser "homeseek/internal/domain/user"
	"homeseek/internal/infra/storage/memory"
)

type fixture struct {
	service  *Service
	users    *memory.UserRepository
	listings *memory.ListingRepository
	store    *memory.ChatStore

	buyer   domainuser.ID
	seller  domainuser.ID
	listing domainlistings.ListingID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	listingRepo := memory.NewListingRepository()
	store := memory.NewChatStore(users)

	buyer := newUser(t, users, "ana", "ana@example.com")
	seller := newUser(t, users, "bob", "bob@example.com")

	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:           domainlistings.ListingID(primitive.NewObjectID().Hex()),
		Owner:        seller,
		Name:         "Sunny loft",
		Type:         domainlistings.TypeRent,
		RegularPrice: 1200,
	})
	require.NoError(t, err)
	require.NoError(t, listingRepo.Save(ctx, listing))

	return &fixture{
		service: &Service{
			Conversations: store,
			Messages:      store,
			Users:         users,
			Listings:      listingRepo,
		},
		users:    users,
		listings: listingRepo,
		store:    store,
		buyer:    buyer,
		seller:   seller,
		listing:  listing.ID,
	}
}

func newUser(t *testing.T, users *memory.UserRepository, name, email string) domainuser.ID {
	t.Helper()
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(primitive.NewObjectID().Hex()),
		Username:     name,
		Email:        email,
		PasswordHash: "x",
	})
	require.NoError(t, err)
	require.NoError(t, users.Save(context.Background(), user))
	return user.ID
}

func TestGetOrCreateCanonicalization(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)
	again, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)

	assert.Equal(t, first.Conversation.ID, again.Conversation.ID)
	assert.Equal(t, domainchat.CanonicalPair(fx.buyer, fx.seller), first.Conversation.Participants)
	assert.Equal(t, domainchat.CanonicalPair(fx.seller, fx.buyer), first.Conversation.Participants)
	require.NotNil(t, first.Seller)
	assert.Equal(t, fx.seller, first.Seller.ID)
	assert.Equal(t, "bob", first.Seller.Username)
}

func TestGetOrCreateRejectsListingOwner(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	// The counterparty is derived from the listing, so the owner has nobody
	// to pair with. No degenerate {owner, owner} record may appear.
	_, err := fx.service.GetOrCreate(ctx, fx.seller, string(fx.listing))
	assert.ErrorIs(t, err, domainchat.ErrSelfConversation)

	started, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)
	_, err = fx.service.GetOrCreate(ctx, fx.seller, string(fx.listing))
	assert.ErrorIs(t, err, domainchat.ErrSelfConversation)

	// The real thread is untouched and still unique.
	again, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)
	assert.Equal(t, started.Conversation.ID, again.Conversation.ID)
}

func TestGetOrCreateConcurrent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	const attempts = 16
	ids := make([]domainchat.ConversationID, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			result, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
			require.NoError(t, err)
			ids[slot] = result.Conversation.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestGetOrCreateRejections(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.service.GetOrCreate(ctx, fx.buyer, "nonsense")
	assert.ErrorIs(t, err, domainchat.ErrInvalidListingID)

	_, err = fx.service.GetOrCreate(ctx, fx.buyer, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domainlistings.ErrNotFound)
}

func TestSendAndHistoryOrdering(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	result, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)
	conversationID := string(result.Conversation.ID)

	first, err := fx.service.Send(ctx, fx.buyer, conversationID, "  Hi  ")
	require.NoError(t, err)
	assert.Equal(t, "Hi", first.Text)
	assert.NotEmpty(t, first.ID)

	second, err := fx.service.Send(ctx, fx.seller, conversationID, "Hello")
	require.NoError(t, err)

	history, err := fx.service.History(ctx, fx.buyer, conversationID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, second.ID, history[1].ID)
	assert.False(t, history[1].CreatedAt.Before(history[0].CreatedAt))

	// Stable across repeated calls without new writes.
	again, err := fx.service.History(ctx, fx.buyer, conversationID)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, history[0].ID, again[0].ID)
	assert.Equal(t, history[1].ID, again[1].ID)
}

func TestSendValidation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	result, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)
	conversationID := string(result.Conversation.ID)

	_, err = fx.service.Send(ctx, fx.buyer, conversationID, "   ")
	assert.ErrorIs(t, err, domainchat.ErrEmptyText)
	history, err := fx.service.History(ctx, fx.buyer, conversationID)
	require.NoError(t, err)
	assert.Empty(t, history, "rejected send must not persist anything")

	_, err = fx.service.Send(ctx, fx.buyer, "bad-id", "hi")
	assert.ErrorIs(t, err, domainchat.ErrInvalidConversationID)

	_, err = fx.service.Send(ctx, fx.buyer, primitive.NewObjectID().Hex(), "hi")
	assert.ErrorIs(t, err, domainchat.ErrConversationNotFound)

	outsider := newUser(t, fx.users, "eve", "eve@example.com")
	_, err = fx.service.Send(ctx, outsider, conversationID, "hi")
	assert.ErrorIs(t, err, domainchat.ErrNotParticipant)
	_, err = fx.service.History(ctx, outsider, conversationID)
	assert.ErrorIs(t, err, domainchat.ErrNotParticipant)
}

func TestMarkReadIdempotent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	result, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)
	conversationID := string(result.Conversation.ID)

	_, err = fx.service.Send(ctx, fx.buyer, conversationID, "one")
	require.NoError(t, err)
	_, err = fx.service.Send(ctx, fx.buyer, conversationID, "two")
	require.NoError(t, err)
	_, err = fx.service.Send(ctx, fx.seller, conversationID, "reply")
	require.NoError(t, err)

	receipt, err := fx.service.MarkRead(ctx, fx.seller, conversationID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), receipt.Matched)
	assert.Equal(t, int64(2), receipt.Modified)

	history, err := fx.service.History(ctx, fx.seller, conversationID)
	require.NoError(t, err)
	for _, message := range history {
		if message.Sender == fx.buyer {
			assert.NotNil(t, message.ReadAt)
		} else {
			assert.Nil(t, message.ReadAt, "own messages are untouched")
		}
	}

	again, err := fx.service.MarkRead(ctx, fx.seller, conversationID)
	require.NoError(t, err)
	assert.Zero(t, again.Matched)
	assert.Zero(t, again.Modified)
}

func TestPendingCounts(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	result, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)
	conversationID := string(result.Conversation.ID)

	counts, err := fx.service.PendingCounts(ctx, fx.seller)
	require.NoError(t, err)
	assert.Empty(t, counts)

	_, err = fx.service.Send(ctx, fx.buyer, conversationID, "one")
	require.NoError(t, err)
	_, err = fx.service.Send(ctx, fx.buyer, conversationID, "two")
	require.NoError(t, err)

	counts, err = fx.service.PendingCounts(ctx, fx.seller)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, result.Conversation.ID, counts[0].ConversationID)
	assert.Equal(t, int64(2), counts[0].Unread)

	// The sender has nothing pending from their own messages.
	counts, err = fx.service.PendingCounts(ctx, fx.buyer)
	require.NoError(t, err)
	assert.Empty(t, counts)

	_, err = fx.service.MarkRead(ctx, fx.seller, conversationID)
	require.NoError(t, err)
	counts, err = fx.service.PendingCounts(ctx, fx.seller)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestInboxHidesEmptyConversations(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	result, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)

	inbox, err := fx.service.Inbox(ctx, fx.buyer)
	require.NoError(t, err)
	assert.Empty(t, inbox, "conversations without messages stay invisible")

	sent, err := fx.service.Send(ctx, fx.buyer, string(result.Conversation.ID), "Hi")
	require.NoError(t, err)

	inbox, err = fx.service.Inbox(ctx, fx.buyer)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, result.Conversation.ID, inbox[0].ConversationID)
	assert.Equal(t, "Hi", inbox[0].LastMessage)
	assert.Equal(t, sent.CreatedAt, inbox[0].UpdatedAt)
	require.NotNil(t, inbox[0].Peer)
	assert.Equal(t, fx.seller, inbox[0].Peer.ID)
}

func TestInboxDerivesFromLogNotCache(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	result, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)
	conversationID := string(result.Conversation.ID)

	_, err = fx.service.Send(ctx, fx.buyer, conversationID, "first")
	require.NoError(t, err)
	latest, err := fx.service.Send(ctx, fx.seller, conversationID, "second")
	require.NoError(t, err)

	// Poison the cache: the aggregator must still report the true tail.
	require.NoError(t, fx.store.UpdateLastMessage(ctx, result.Conversation.ID, "stale", time.Now().Add(-time.Hour)))

	inbox, err := fx.service.Inbox(ctx, fx.buyer)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "second", inbox[0].LastMessage)
	assert.Equal(t, latest.CreatedAt, inbox[0].UpdatedAt)
}

func TestInboxOrderedByLatestActivity(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	second, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:           domainlistings.ListingID(primitive.NewObjectID().Hex()),
		Owner:        fx.seller,
		Name:         "City flat",
		Type:         domainlistings.TypeSale,
		RegularPrice: 90000,
	})
	require.NoError(t, err)
	require.NoError(t, fx.listings.Save(ctx, second))

	one, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)
	two, err := fx.service.GetOrCreate(ctx, fx.buyer, string(second.ID))
	require.NoError(t, err)
	assert.NotEqual(t, one.Conversation.ID, two.Conversation.ID)

	_, err = fx.service.Send(ctx, fx.buyer, string(one.Conversation.ID), "old")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = fx.service.Send(ctx, fx.buyer, string(two.Conversation.ID), "new")
	require.NoError(t, err)

	inbox, err := fx.service.Inbox(ctx, fx.buyer)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, two.Conversation.ID, inbox[0].ConversationID)
	assert.Equal(t, one.Conversation.ID, inbox[1].ConversationID)
}

func TestBuyerSellerScenario(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	started, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)
	require.NotNil(t, started.Seller)
	assert.Equal(t, fx.seller, started.Seller.ID)
	conversationID := string(started.Conversation.ID)

	m1, err := fx.service.Send(ctx, fx.buyer, conversationID, "Hi")
	require.NoError(t, err)

	history, err := fx.service.History(ctx, fx.seller, conversationID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, m1.ID, history[0].ID)
	assert.Nil(t, history[0].ReadAt)

	_, err = fx.service.MarkRead(ctx, fx.seller, conversationID)
	require.NoError(t, err)
	history, err = fx.service.History(ctx, fx.seller, conversationID)
	require.NoError(t, err)
	assert.NotNil(t, history[0].ReadAt)

	counts, err := fx.service.PendingCounts(ctx, fx.seller)
	require.NoError(t, err)
	assert.Empty(t, counts)

	inbox, err := fx.service.Inbox(ctx, fx.buyer)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Hi", inbox[0].LastMessage)
	require.NotNil(t, inbox[0].Peer)
	assert.Equal(t, fx.seller, inbox[0].Peer.ID)
}

func TestParticipants(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	result, err := fx.service.GetOrCreate(ctx, fx.buyer, string(fx.listing))
	require.NoError(t, err)

	pair, err := fx.service.Participants(ctx, string(result.Conversation.ID))
	require.NoError(t, err)
	assert.Equal(t, domainchat.CanonicalPair(fx.buyer, fx.seller), pair)

	_, err = fx.service.Participants(ctx, "oops")
	assert.ErrorIs(t, err, domainchat.ErrInvalidConversationID)
}
