package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"

	"homeseek/internal/infra/ws"
)

// Relay bridges the websocket hub across server instances: locally published
// room events go out on one topic and remote instances replay them onto
// their own sockets.
type Relay struct {
	producer *Producer
	hub      *ws.Hub
	topic    string
	logger   *slog.Logger
}

func NewRelay(producer *Producer, hub *ws.Hub, topic string, logger *slog.Logger) *Relay {
	return &Relay{producer: producer, hub: hub, topic: topic, logger: logger}
}

var (
	_ ws.Bus         = (*Relay)(nil)
	_ MessageHandler = (*Relay)(nil)
)

// Publish sends a room event keyed by room, so per-room ordering is
// preserved within a partition.
func (r *Relay) Publish(ctx context.Context, event ws.RelayEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.producer.Publish(ctx, r.topic, event.Room, payload)
}

// Handle replays one consumed event onto the local hub. Undecodable records
// are logged and acknowledged; retrying them cannot succeed.
func (r *Relay) Handle(_ context.Context, msg *sarama.ConsumerMessage) error {
	var event ws.RelayEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		if r.logger != nil {
			r.logger.Warn("dropping malformed relay record", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
		return nil
	}
	r.hub.Deliver(event)
	return nil
}
