package events

import (
	"encoding/json"
	"testing"
	"time"

	"git.home.luguber.info/inful/imageforge/internal/classify"
	"git.home.luguber.info/inful/imageforge/internal/errors"
)

func TestErrorEventWireForm(t *testing.T) {
	rec := errors.New(errors.KindRegistry, errors.SeverityMedium, "push rejected").
		WithDetail(errors.DetailStatusCode, 429).
		WithCode("REG_RATE_LIMIT")
	d := classify.Decision{
		Kind: errors.KindRegistry, Severity: errors.SeverityMedium,
		Recoverable: true, Strategy: classify.StrategyExponential,
	}

	event := ErrorEvent{
		SessionID:   "s-1",
		Kind:        string(d.Kind),
		Severity:    string(d.Severity),
		Message:     rec.Message,
		Code:        rec.Code,
		Timestamp:   rec.Timestamp,
		Details:     rec.Details,
		Recoverable: d.Recoverable,
		Strategy:    string(d.Strategy),
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["kind"] != "registry" || got["severity"] != "medium" {
		t.Errorf("kind/severity = %v/%v", got["kind"], got["severity"])
	}
	if got["strategy"] != "retry_with_exponential_backoff" {
		t.Errorf("strategy = %v", got["strategy"])
	}
	if got["recoverable"] != true {
		t.Errorf("recoverable = %v", got["recoverable"])
	}
	if _, ok := got["suggestions"]; ok {
		t.Error("empty suggestions should be omitted")
	}
}

func TestNewNATSPublisherRequiresConfig(t *testing.T) {
	if _, err := NewNATSPublisher("", "errors", nil); err == nil {
		t.Error("expected error for missing url")
	}
	if _, err := NewNATSPublisher("nats://localhost:4222", "", nil); err == nil {
		t.Error("expected error for missing subject")
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	rec := errors.New(errors.KindNetwork, errors.SeverityLow, "x")
	rec.Timestamp = time.Now()
	p.PublishError("s", rec, classify.Decision{})
	p.Close()
}
