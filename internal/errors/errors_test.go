package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestErrorRecord_Error(t *testing.T) {
	tests := []struct {
		name     string
		rec      *ErrorRecord
		expected string
	}{
		{
			name:     "record without cause",
			rec:      New(KindConfigLoad, SeverityHigh, "configuration invalid"),
			expected: "config_load (high): configuration invalid",
		},
		{
			name:     "record with cause",
			rec:      Wrap(fmt.Errorf("file not found"), KindConfigLoad, SeverityHigh, "failed to load configuration"),
			expected: "config_load (high): failed to load configuration: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.rec.Error(); got != test.expected {
				t.Errorf("Error() = %q, want %q", got, test.expected)
			}
		})
	}
}

func TestSeverityEscalate(t *testing.T) {
	tests := []struct {
		in   Severity
		want Severity
	}{
		{SeverityLow, SeverityMedium},
		{SeverityMedium, SeverityHigh},
		{SeverityHigh, SeverityCritical},
		{SeverityCritical, SeverityCritical},
	}
	for _, test := range tests {
		if got := test.in.Escalate(); got != test.want {
			t.Errorf("Escalate(%s) = %s, want %s", test.in, got, test.want)
		}
	}
}

func TestNormalize_PreClassified(t *testing.T) {
	rec := New(KindNetwork, SeverityMedium, "connection reset").
		WithDetail(DetailOperation, "push")

	normalized := Normalize(rec, map[string]string{"ignored": "yes"})
	if normalized != rec {
		t.Fatal("Normalize should return a pre-classified record as-is")
	}
	if _, ok := normalized.Details["ignored"]; ok {
		t.Error("Normalize must not merge context into a pre-classified record")
	}
}

func TestNormalize_WrappedRecord(t *testing.T) {
	inner := New(KindRegistry, SeverityHigh, "unauthorized")
	wrapped := fmt.Errorf("push failed: %w", inner)

	normalized := Normalize(wrapped, nil)
	if normalized != inner {
		t.Fatal("Normalize should unwrap to the inner ErrorRecord")
	}
}

func TestNormalize_PlainError(t *testing.T) {
	cause := fmt.Errorf("something broke")
	rec := Normalize(cause, map[string]string{"operation": "build"})

	if rec.Kind != KindUnknown {
		t.Errorf("Kind = %s, want %s", rec.Kind, KindUnknown)
	}
	if rec.Severity != SeverityMedium {
		t.Errorf("Severity = %s, want %s", rec.Severity, SeverityMedium)
	}
	if rec.Details[DetailOriginalError] != "something broke" {
		t.Errorf("Details[original_error] = %v", rec.Details[DetailOriginalError])
	}
	if rec.Details["operation"] != "build" {
		t.Errorf("Details[operation] = %v, want build", rec.Details["operation"])
	}
	if !stderrors.Is(rec, cause) {
		t.Error("normalized record should wrap the original cause")
	}
}

func TestNormalize_Nil(t *testing.T) {
	if rec := Normalize(nil, nil); rec != nil {
		t.Fatalf("Normalize(nil) = %v, want nil", rec)
	}
}

func TestIdentityKey(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := &ErrorRecord{Kind: KindNetwork, Message: "timeout", Timestamp: ts}
	b := &ErrorRecord{Kind: KindNetwork, Message: "timeout", Timestamp: ts}
	c := &ErrorRecord{Kind: KindNetwork, Message: "timeout", Timestamp: ts.Add(time.Nanosecond)}

	if a.IdentityKey() != b.IdentityKey() {
		t.Error("identical (kind, message, timestamp) must yield identical identity keys")
	}
	if a.IdentityKey() == c.IdentityKey() {
		t.Error("different timestamps must yield distinct identity keys")
	}
}

func TestIsKindAndGetKind(t *testing.T) {
	netErr := New(KindNetwork, SeverityMedium, "timeout")
	plain := fmt.Errorf("plain")

	if !IsKind(netErr, KindNetwork) {
		t.Error("IsKind should match the record kind")
	}
	if IsKind(netErr, KindDocker) {
		t.Error("IsKind should not match a different kind")
	}
	if IsKind(plain, KindNetwork) {
		t.Error("IsKind on a plain error should be false")
	}
	if got := GetKind(plain); got != KindUnknown {
		t.Errorf("GetKind(plain) = %s, want %s", got, KindUnknown)
	}
}

func TestDetailAccessors(t *testing.T) {
	rec := New(KindRegistry, SeverityMedium, "push failed").
		WithDetail(DetailStatusCode, float64(503)).
		WithDetail(DetailRegistry, "registry.example.com")

	if code, ok := rec.DetailInt(DetailStatusCode); !ok || code != 503 {
		t.Errorf("DetailInt(status_code) = %d, %v; want 503, true", code, ok)
	}
	if reg, ok := rec.DetailString(DetailRegistry); !ok || reg != "registry.example.com" {
		t.Errorf("DetailString(registry) = %q, %v", reg, ok)
	}
	if _, ok := rec.DetailInt("missing"); ok {
		t.Error("DetailInt on a missing key should report false")
	}
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", fmt.Errorf("boom"), 1},
		{"validation", New(KindValidation, SeverityMedium, "bad field"), 2},
		{"config", New(KindConfigLoad, SeverityHigh, "missing file"), 7},
		{"network", New(KindNetwork, SeverityMedium, "timeout"), 8},
		{"security", New(KindSecurity, SeverityHigh, "vulnerable base image"), 9},
		{"build", New(KindBuild, SeverityHigh, "stage failed"), 11},
		{"test", New(KindTest, SeverityMedium, "healthcheck failed"), 12},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(test.err); got != test.want {
				t.Errorf("ExitCodeFor() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	rec := New(KindRegistry, SeverityMedium, "push rejected")
	if got := adapter.FormatError(rec); got != "registry: push rejected" {
		t.Errorf("FormatError() = %q", got)
	}

	cfg := New(KindConfigLoad, SeverityHigh, "missing file")
	if got := adapter.FormatError(cfg); got != "missing file" {
		t.Errorf("FormatError(config) = %q", got)
	}

	verbose := NewCLIErrorAdapter(true, nil)
	if got := verbose.FormatError(rec); got != rec.Error() {
		t.Errorf("verbose FormatError() = %q, want %q", got, rec.Error())
	}
}
