package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geostore/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own connection. durable names
// the JetStream consumer so restarts resume where they left off.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// DecodeEvent parses a feature event message body.
func DecodeEvent(data []byte) (*domain.FeatureEvent, error) {
	var event domain.FeatureEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode feature event: %w", err)
	}
	if event.FeatureID == "" || event.Kind == "" {
		return nil, fmt.Errorf("decode feature event: missing kind or feature_id")
	}
	return &event, nil
}

// SubscribeFeatureEvents delivers every feature event to handler. Messages
// the handler rejects are redelivered up to three times.
func (s *Subscriber) SubscribeFeatureEvents(ctx context.Context, handler func(ctx context.Context, event *domain.FeatureEvent) error) error {
	sub, err := s.js.Subscribe(SubjectAll, func(msg *nats.Msg) {
		event, err := DecodeEvent(msg.Data)
		if err != nil {
			// Malformed payloads never become valid; drop them.
			_ = msg.Term()
			return
		}
		if err := handler(ctx, event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(s.durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
		nats.DeliverAll(),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
