package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geostore/internal/core/domain"
)

const (
	// StreamName is the JetStream stream holding feature events.
	StreamName = "FEATURES"
	// SubjectAll matches every feature event subject.
	SubjectAll = "geostore.feature.>"
)

// Subject returns the subject an event is published on:
// geostore.feature.<kind>.<feature id>.
func Subject(event *domain.FeatureEvent) string {
	return "geostore.feature." + string(event.Kind) + "." + subjectToken(event.FeatureID)
}

// FilterSubject builds a subscription subject for one kind and feature.
// An empty kind or feature ID matches any.
func FilterSubject(kind domain.FeatureEventKind, featureID string) string {
	k, id := string(kind), "*"
	if k == "" {
		k = "*"
	}
	if featureID != "" {
		id = subjectToken(featureID)
	}
	return "geostore.feature." + k + "." + id
}

var tokenReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

func subjectToken(s string) string { return tokenReplacer.Replace(s) }

// StreamConfig is the stream the publisher ensures on connect.
func StreamConfig() nats.StreamConfig {
	return nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectAll},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := StreamConfig()
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishFeatureEvent publishes event as JSON. The message ID deduplicates
// retries within the stream's duplicate window.
func (p *Publisher) PublishFeatureEvent(ctx context.Context, event *domain.FeatureEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msgID := fmt.Sprintf("%s-%s-%d", event.Kind, event.FeatureID, event.OccurredAt.UnixNano())
	_, err = p.js.Publish(Subject(event), data, nats.Context(ctx), nats.MsgId(msgID))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("geostore"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
