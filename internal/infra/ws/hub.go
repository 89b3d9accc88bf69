package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainchat "homeseek/internal/domain/chat"
	domainuser "homeseek/internal/domain/user"
)

// ParticipantResolver looks up the two members of a conversation so
// notifications can reach users who do not have the thread open.
type ParticipantResolver interface {
	Participants(ctx context.Context, conversationID string) ([2]domainuser.ID, error)
}

// Bus relays room events between server instances. A nil Bus keeps fan-out
// local to this process.
type Bus interface {
	Publish(ctx context.Context, event RelayEvent) error
}

// RelayEvent is a broadcast addressed to one room, stamped with the
// originating instance so it is not replayed onto its own sockets.
type RelayEvent struct {
	Origin  string          `json:"origin"`
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload"`
}

// Hub tracks connected clients and their room subscriptions. Delivery is
// best-effort: a slow client drops frames instead of blocking the hub, and
// lookup failures during fan-out are logged and swallowed.
type Hub struct {
	instanceID string
	resolver   ParticipantResolver
	logger     *slog.Logger
	bus        Bus

	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
}

func NewHub(resolver ParticipantResolver, logger *slog.Logger) *Hub {
	return &Hub{
		instanceID: uuid.NewString(),
		resolver:   resolver,
		logger:     logger,
		rooms:      make(map[string]map[*Client]struct{}),
		clients:    make(map[*Client]struct{}),
	}
}

// SetBus attaches the cross-instance relay. Call before serving traffic.
func (h *Hub) SetBus(bus Bus) {
	h.bus = bus
}

func (h *Hub) InstanceID() string {
	return h.instanceID
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		for room := range c.rooms {
			h.leaveRoomLocked(room, c)
		}
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) join(room string, c *Client) {
	h.mu.Lock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) leaveRoomLocked(room string, c *Client) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// broadcast writes frame to every member of room except skip. Frames to
// clients with a full send buffer are dropped.
func (h *Hub) broadcast(room string, frame []byte, skip *Client) {
	h.mu.RLock()
	members := h.rooms[room]
	targets := make([]*Client, 0, len(members))
	for member := range members {
		if member == skip {
			continue
		}
		targets = append(targets, member)
	}
	h.mu.RUnlock()

	for _, target := range targets {
		select {
		case target.send <- frame:
		default:
		}
	}
}

// handleEvent dispatches one inbound frame from a client.
func (h *Hub) handleEvent(ctx context.Context, c *Client, envelope Envelope) error {
	switch envelope.Event {
	case EventIdentify:
		var payload identifyPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.UserID == "" {
			return ErrInvalidPayload
		}
		// The subscription is bound to the authenticated user, not to
		// whatever id the frame claims.
		h.join(PersonalRoom(string(c.userID)), c)
		return nil
	case EventJoin:
		var payload joinPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return ErrInvalidPayload
		}
		// Only conversation ids name joinable rooms. Personal user:<id>
		// rooms are assigned at connect time and can never be claimed
		// through a frame, or any client could tap another user's
		// notifications.
		if !domainchat.ValidID(payload.ConversationID) {
			return ErrInvalidPayload
		}
		participants, err := h.resolver.Participants(ctx, payload.ConversationID)
		if err != nil {
			return err
		}
		if c.userID != participants[0] && c.userID != participants[1] {
			return domainchat.ErrNotParticipant
		}
		h.join(payload.ConversationID, c)
		return nil
	case EventSend:
		var payload sendPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return ErrInvalidPayload
		}
		if err := payload.validate(); err != nil {
			return err
		}
		// Like identify, the sender identity comes from the socket's
		// credential: frames claiming someone else are dropped.
		if payload.Message.Sender != string(c.userID) {
			return ErrInvalidPayload
		}
		h.fanOut(ctx, c, payload)
		return nil
	default:
		return ErrUnknownEvent
	}
}

// fanOut pushes the already-persisted message to the conversation room
// (minus the sending socket) and a notification to every participant's
// personal room. Any failure here is logged and swallowed so the
// connection survives; the persisted log remains the ground truth.
func (h *Hub) fanOut(ctx context.Context, sender *Client, payload sendPayload) {
	frame, err := encodeEnvelope(EventMessage, deliverPayload(payload))
	if err != nil {
		h.warn("encode message event failed", err)
		return
	}
	h.broadcast(payload.ConversationID, frame, sender)
	h.relay(ctx, payload.ConversationID, frame)

	participants, err := h.resolver.Participants(ctx, payload.ConversationID)
	if err != nil {
		h.warn("participant lookup failed during fan-out", err)
		return
	}
	inboxFrame, err := encodeEnvelope(EventInbox, deliverPayload(payload))
	if err != nil {
		h.warn("encode inbox event failed", err)
		return
	}
	for _, participant := range participants {
		room := PersonalRoom(string(participant))
		h.broadcast(room, inboxFrame, nil)
		h.relay(ctx, room, inboxFrame)
	}
}

// Deliver replays a relayed event from another instance onto local rooms.
func (h *Hub) Deliver(event RelayEvent) {
	if event.Origin == h.instanceID {
		return
	}
	h.broadcast(event.Room, event.Payload, nil)
}

func (h *Hub) relay(ctx context.Context, room string, frame []byte) {
	if h.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := h.bus.Publish(ctx, RelayEvent{Origin: h.instanceID, Room: room, Payload: frame})
	if err != nil {
		h.warn("relay publish failed", err)
	}
}

func (h *Hub) warn(msg string, err error) {
	if h.logger != nil {
		h.logger.Warn(msg, "error", err)
	}
}
