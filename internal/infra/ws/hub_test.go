package ws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainchat "homeseek/internal/domain/chat"
	domainuser "homeseek/internal/domain/user"
)

type stubResolver struct {
	participants [2]domainuser.ID
	err          error
	calls        int
}

func (s *stubResolver) Participants(context.Context, string) ([2]domainuser.ID, error) {
	s.calls++
	return s.participants, s.err
}

func attach(hub *Hub, userID string) *Client {
	client := &Client{
		hub:    hub,
		userID: domainuser.ID(userID),
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
	}
	hub.register(client)
	hub.join(PersonalRoom(userID), client)
	return client
}

func takeFrame(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case frame := <-c.send:
		var envelope Envelope
		require.NoError(t, json.Unmarshal(frame, &envelope))
		return envelope
	default:
		t.Fatal("expected a pending frame")
		return Envelope{}
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case <-c.send:
		t.Fatal("unexpected frame")
	default:
	}
}

func sendEvent(t *testing.T, hub *Hub, from *Client, conversationID string, payload MessagePayload) {
	t.Helper()
	data, err := json.Marshal(sendPayload{ConversationID: conversationID, Message: payload})
	require.NoError(t, err)
	err = hub.handleEvent(context.Background(), from, Envelope{Event: EventSend, Data: data})
	require.NoError(t, err)
}

const (
	convID   = "aaaaaaaaaaaaaaaaaaaaaaaa"
	senderID = "bbbbbbbbbbbbbbbbbbbbbbbb"
	peerID   = "cccccccccccccccccccccccc"
	otherID  = "dddddddddddddddddddddddd"
	msgID    = "eeeeeeeeeeeeeeeeeeeeeeee"
)

func validMessage() MessagePayload {
	return MessagePayload{ID: msgID, Sender: senderID, Text: "hello", CreatedAt: time.Now()}
}

func TestFanOutToConversationRoom(t *testing.T) {
	resolver := &stubResolver{participants: domainchat.CanonicalPair(senderID, peerID)}
	hub := NewHub(resolver, nil)

	sender := attach(hub, senderID)
	peer := attach(hub, peerID)
	outsider := attach(hub, otherID)
	hub.join(convID, sender)
	hub.join(convID, peer)

	sendEvent(t, hub, sender, convID, validMessage())

	// Room broadcast reaches the peer but never echoes to the sender.
	envelope := takeFrame(t, peer)
	assert.Equal(t, EventMessage, envelope.Event)
	var delivered deliverPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &delivered))
	assert.Equal(t, convID, delivered.ConversationID)
	assert.Equal(t, "hello", delivered.Message.Text)

	// Both participants get the inbox notification, the sender included.
	inboxToPeer := takeFrame(t, peer)
	assert.Equal(t, EventInbox, inboxToPeer.Event)
	inboxToSender := takeFrame(t, sender)
	assert.Equal(t, EventInbox, inboxToSender.Event)

	assertNoFrame(t, sender)
	assertNoFrame(t, outsider)
}

func TestFanOutSurvivesResolverFailure(t *testing.T) {
	resolver := &stubResolver{err: errors.New("boom")}
	hub := NewHub(resolver, nil)

	sender := attach(hub, senderID)
	peer := attach(hub, peerID)
	hub.join(convID, sender)
	hub.join(convID, peer)

	sendEvent(t, hub, sender, convID, validMessage())

	// The room broadcast still happened; only the inbox half was lost.
	envelope := takeFrame(t, peer)
	assert.Equal(t, EventMessage, envelope.Event)
	assertNoFrame(t, peer)
	assertNoFrame(t, sender)
}

func TestSendValidation(t *testing.T) {
	resolver := &stubResolver{participants: domainchat.CanonicalPair(senderID, peerID)}
	hub := NewHub(resolver, nil)
	sender := attach(hub, senderID)
	hub.join(convID, sender)

	cases := map[string]sendPayload{
		"bad conversation id": {ConversationID: "nope", Message: validMessage()},
		"bad message id":      {ConversationID: convID, Message: MessagePayload{ID: "x", Sender: senderID, Text: "hi", CreatedAt: time.Now()}},
		"blank text":          {ConversationID: convID, Message: MessagePayload{ID: msgID, Sender: senderID, Text: "   ", CreatedAt: time.Now()}},
		"zero timestamp":      {ConversationID: convID, Message: MessagePayload{ID: msgID, Sender: senderID, Text: "hi"}},
	}
	for name, payload := range cases {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		err = hub.handleEvent(context.Background(), sender, Envelope{Event: EventSend, Data: data})
		assert.ErrorIs(t, err, ErrInvalidPayload, name)
	}
	assert.Zero(t, resolver.calls, "rejected frames must not trigger lookups")
}

func joinEvent(t *testing.T, hub *Hub, from *Client, room string) error {
	t.Helper()
	data, err := json.Marshal(joinPayload{ConversationID: room})
	require.NoError(t, err)
	return hub.handleEvent(context.Background(), from, Envelope{Event: EventJoin, Data: data})
}

func TestJoinRequiresMembership(t *testing.T) {
	resolver := &stubResolver{participants: domainchat.CanonicalPair(senderID, peerID)}
	hub := NewHub(resolver, nil)
	peer := attach(hub, peerID)
	outsider := attach(hub, otherID)

	require.NoError(t, joinEvent(t, hub, peer, convID))
	assert.ErrorIs(t, joinEvent(t, hub, outsider, convID), domainchat.ErrNotParticipant)

	hub.broadcast(convID, []byte(`{"event":"message:new","data":{}}`), nil)
	takeFrame(t, peer)
	assertNoFrame(t, outsider)
}

func TestJoinRejectsPersonalRooms(t *testing.T) {
	resolver := &stubResolver{participants: domainchat.CanonicalPair(senderID, peerID)}
	hub := NewHub(resolver, nil)
	eavesdropper := attach(hub, otherID)

	// user:<id> rooms are not joinable through frames: a client must never
	// be able to subscribe to someone else's notification channel.
	assert.ErrorIs(t, joinEvent(t, hub, eavesdropper, PersonalRoom(peerID)), ErrInvalidPayload)
	assert.Zero(t, resolver.calls)

	hub.broadcast(PersonalRoom(peerID), []byte(`{"event":"inbox:new","data":{}}`), nil)
	assertNoFrame(t, eavesdropper)
}

func TestSendBindsAuthenticatedSender(t *testing.T) {
	resolver := &stubResolver{participants: domainchat.CanonicalPair(senderID, peerID)}
	hub := NewHub(resolver, nil)
	imposter := attach(hub, otherID)
	peer := attach(hub, peerID)
	hub.join(convID, imposter)
	hub.join(convID, peer)

	// The frame claims senderID but the socket belongs to otherID.
	data, err := json.Marshal(sendPayload{ConversationID: convID, Message: validMessage()})
	require.NoError(t, err)
	err = hub.handleEvent(context.Background(), imposter, Envelope{Event: EventSend, Data: data})
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assertNoFrame(t, peer)
}

func TestUnknownEventIgnored(t *testing.T) {
	hub := NewHub(&stubResolver{}, nil)
	client := attach(hub, senderID)

	err := hub.handleEvent(context.Background(), client, Envelope{Event: "typing", Data: []byte(`{}`)})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestIdentifyBindsAuthenticatedUser(t *testing.T) {
	hub := NewHub(&stubResolver{}, nil)
	client := &Client{
		hub:    hub,
		userID: domainuser.ID(senderID),
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
	}
	hub.register(client)

	// The claimed id in the frame is ignored in favor of the verified one.
	data, err := json.Marshal(identifyPayload{UserID: otherID})
	require.NoError(t, err)
	require.NoError(t, hub.handleEvent(context.Background(), client, Envelope{Event: EventIdentify, Data: data}))

	hub.broadcast(PersonalRoom(senderID), []byte(`{"event":"inbox:new","data":{}}`), nil)
	takeFrame(t, client)
	hub.broadcast(PersonalRoom(otherID), []byte(`{"event":"inbox:new","data":{}}`), nil)
	assertNoFrame(t, client)
}

func TestUnregisterLeavesRooms(t *testing.T) {
	hub := NewHub(&stubResolver{}, nil)
	client := attach(hub, senderID)
	hub.join(convID, client)

	hub.unregister(client)

	hub.broadcast(convID, []byte(`{}`), nil)
	_, open := <-client.send
	assert.False(t, open, "send channel is closed on unregister")
}

func TestDeliverSkipsOwnEvents(t *testing.T) {
	hub := NewHub(&stubResolver{}, nil)
	client := attach(hub, senderID)
	hub.join(convID, client)

	hub.Deliver(RelayEvent{Origin: hub.InstanceID(), Room: convID, Payload: []byte(`{}`)})
	assertNoFrame(t, client)

	hub.Deliver(RelayEvent{Origin: "elsewhere", Room: convID, Payload: []byte(`{"event":"message:new","data":{}}`)})
	takeFrame(t, client)
}
