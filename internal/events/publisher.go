// Package events publishes classified failures to NATS so external tooling
// can observe error activity across imageforge runs.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/imageforge/internal/classify"
	"git.home.luguber.info/inful/imageforge/internal/errors"
)

const publishTimeout = 5 * time.Second

// ErrorEvent is the wire form of a classified failure.
type ErrorEvent struct {
	SessionID   string         `json:"session_id"`
	Kind        string         `json:"kind"`
	Severity    string         `json:"severity"`
	Message     string         `json:"message"`
	Code        string         `json:"code,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Details     map[string]any `json:"details,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Recoverable bool           `json:"recoverable"`
	Strategy    string         `json:"strategy"`
}

// Publisher emits error events. Implementations must not propagate publish
// failures to the caller; error handling side channels stay best-effort.
type Publisher interface {
	PublishError(sessionID string, rec *errors.ErrorRecord, d classify.Decision)
	Close()
}

// NoopPublisher is the default when event publishing is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishError(string, *errors.ErrorRecord, classify.Decision) {}
func (NoopPublisher) Close()                                                      {}

// NATSPublisher publishes error events to a JetStream subject.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	logger  *slog.Logger
}

// NewNATSPublisher connects to the given NATS URL.
func NewNATSPublisher(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	if url == "" || subject == "" {
		return nil, fmt.Errorf("nats url and subject are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	logger.Info("NATS error event publisher initialized", "url", url, "subject", subject)

	return &NATSPublisher{conn: conn, js: js, subject: subject, logger: logger}, nil
}

// PublishError emits one classified failure. Publish problems are logged and
// swallowed; a broken event channel must never mask the original failure.
func (p *NATSPublisher) PublishError(sessionID string, rec *errors.ErrorRecord, d classify.Decision) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	event := ErrorEvent{
		SessionID:   sessionID,
		Kind:        string(d.Kind),
		Severity:    string(d.Severity),
		Message:     rec.Message,
		Code:        rec.Code,
		Timestamp:   rec.Timestamp,
		Details:     rec.Details,
		Suggestions: rec.Suggestions,
		Recoverable: d.Recoverable,
		Strategy:    string(d.Strategy),
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to marshal error event", "error", err)
		return
	}

	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		p.logger.Warn("failed to publish error event", "subject", p.subject, "error", err)
		return
	}

	p.logger.Debug("published error event", "kind", event.Kind, "session", sessionID)
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
