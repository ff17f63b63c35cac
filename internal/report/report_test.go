package report

import (
	"strings"
	"testing"
	"time"

	"git.home.luguber.info/inful/imageforge/internal/classify"
	"git.home.luguber.info/inful/imageforge/internal/errors"
)

func sampleRecord() *errors.ErrorRecord {
	return errors.New(errors.KindRegistry, errors.SeverityMedium, "push rejected with 429").
		WithDetail(errors.DetailOperation, "push").
		WithDetail(errors.DetailRegistry, "registry.example.com").
		WithDetail(errors.DetailStatusCode, 429).
		WithSuggestions("Wait for the rate limit window to pass", "Authenticate to raise the limit")
}

func TestFormatUserFriendly(t *testing.T) {
	f := NewFormatter(true)
	d := classify.Decision{
		Kind: errors.KindRegistry, Severity: errors.SeverityMedium,
		Recoverable: true, Retryable: true,
		Strategy: classify.StrategyExponential, MaxRetries: 3, RetryDelay: 5 * time.Second,
		UserAction: "Verify registry credentials and availability.",
	}

	out := f.Format(sampleRecord(), d)

	for _, want := range []string{
		"[REGISTRY/MEDIUM]",
		"The container registry rejected the request.",
		"detail: push rejected with 429",
		"context: operation=push registry=registry.example.com status=429",
		"action required: Verify registry credentials",
		"1. Wait for the rate limit window to pass",
		"2. Authenticate to raise the limit",
		"retry: up to 3 attempts, 5s delay",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFormatRawMessage(t *testing.T) {
	f := NewFormatter(false)
	d := classify.Decision{Kind: errors.KindRegistry, Severity: errors.SeverityMedium}

	out := f.Format(sampleRecord(), d)

	if !strings.Contains(out, "push rejected with 429") {
		t.Errorf("raw mode should lead with the record message:\n%s", out)
	}
	if strings.Contains(out, "The container registry rejected the request.") {
		t.Errorf("raw mode must not use the friendly sentence:\n%s", out)
	}
}

func TestFormatNonRecoverableOmitsRetry(t *testing.T) {
	f := NewFormatter(true)
	rec := errors.New(errors.KindSecurity, errors.SeverityHigh, "vulnerability in base image")
	d := classify.Decision{Kind: errors.KindSecurity, Severity: errors.SeverityHigh}

	out := f.Format(rec, d)
	if strings.Contains(out, "retry:") {
		t.Errorf("non-recoverable report must not mention retries:\n%s", out)
	}
	if strings.Contains(out, "context:") {
		t.Errorf("report without details must omit the context line:\n%s", out)
	}
}
