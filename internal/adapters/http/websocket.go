package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/geostore/internal/adapters/nats"
	"github.com/samirrijal/geostore/internal/core/domain"
	"github.com/samirrijal/geostore/internal/pkg/metrics"
)

// wsMessage is sent by clients to change what they receive.
type wsMessage struct {
	Action    string `json:"action"`     // "subscribe" | "unsubscribe"
	Channel   string `json:"channel"`    // "all" | "created" | "deleted"
	FeatureID string `json:"feature_id"` // optional, "" = every feature
}

// wsSubject maps a client message onto a NATS subject.
func wsSubject(m wsMessage) (string, bool) {
	var kind domain.FeatureEventKind
	switch m.Channel {
	case "", "all":
	case "created":
		kind = domain.FeatureCreated
	case "deleted":
		kind = domain.FeatureDeleted
	default:
		return "", false
	}
	if kind == "" && m.FeatureID == "" {
		return natsadapter.SubjectAll, true
	}
	return natsadapter.FilterSubject(kind, m.FeatureID), true
}

// WebSocketHandler relays feature events from NATS to WebSocket clients.
// Every client starts subscribed to all events and may narrow or widen with
// {"action":"subscribe","channel":"created","feature_id":"..."}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remote := c.RemoteAddr().String()
		if nc == nil {
			_ = c.WriteJSON(map[string]string{"error": "event stream unavailable"})
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		slog.Info("ws client connected", "remote", remote)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription)

		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		sub, err := nc.Subscribe(natsadapter.SubjectAll, relay)
		if err != nil {
			slog.Error("ws default subscribe", "remote", remote, "error", err)
			return
		}
		subs[natsadapter.SubjectAll] = sub

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			subject, ok := wsSubject(m)
			if !ok {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				s, exists := subs[subject]
				if !exists {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
					continue
				}
				_ = s.Unsubscribe()
				delete(subs, subject)
				_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remote)
	}
}
