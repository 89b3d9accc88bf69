package ws

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	domainchat "homeseek/internal/domain/chat"
)

// Channel event names. The client-to-server half mirrors what the frontend
// emits; the server-to-client half is what connected views consume.
const (
	EventIdentify = "identify"
	EventJoin     = "join"
	EventSend     = "message:send"
	EventMessage  = "message:new"
	EventInbox    = "inbox:new"
)

var (
	ErrUnknownEvent   = errors.New("ws: unknown event")
	ErrInvalidPayload = errors.New("ws: invalid event payload")
)

// Envelope is the tagged frame exchanged on the wire. Data is decoded per
// event, never passed through as a free-form object.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func encodeEnvelope(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

type identifyPayload struct {
	UserID string `json:"userId"`
}

type joinPayload struct {
	ConversationID string `json:"conversationId"`
}

// MessagePayload is the validated message schema carried by message:send,
// message:new and inbox:new.
type MessagePayload struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type sendPayload struct {
	ConversationID string         `json:"conversationId"`
	Message        MessagePayload `json:"message"`
}

type deliverPayload struct {
	ConversationID string         `json:"conversationId"`
	Message        MessagePayload `json:"message"`
}

func (p *sendPayload) validate() error {
	if !domainchat.ValidID(p.ConversationID) {
		return ErrInvalidPayload
	}
	if !domainchat.ValidID(p.Message.ID) || !domainchat.ValidID(p.Message.Sender) {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(p.Message.Text) == "" {
		return ErrInvalidPayload
	}
	if p.Message.CreatedAt.IsZero() {
		return ErrInvalidPayload
	}
	return nil
}

// PersonalRoom names the per-user notification room.
func PersonalRoom(userID string) string {
	return "user:" + userID
}
