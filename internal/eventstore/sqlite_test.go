package eventstore

import (
	"testing"
	"time"

	"git.home.luguber.info/inful/imageforge/internal/errors"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndGetBySession(t *testing.T) {
	store := testStore(t)
	ctx := t.Context()

	rec := errors.New(errors.KindRegistry, errors.SeverityMedium, "push rejected").
		WithDetail(errors.DetailStatusCode, 429).
		WithSuggestions("Wait and retry").
		WithCode("REG_RATE_LIMIT")

	if err := store.Append(ctx, "session-1", rec); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	got, err := store.GetBySession(ctx, "session-1")
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}

	e := got[0]
	if e.Kind != errors.KindRegistry || e.Severity != errors.SeverityMedium {
		t.Errorf("kind/severity = %s/%s", e.Kind, e.Severity)
	}
	if e.Message != "push rejected" || e.Code != "REG_RATE_LIMIT" {
		t.Errorf("message/code = %q/%q", e.Message, e.Code)
	}
	// JSON round-trips numbers as float64.
	if v, ok := e.Details[errors.DetailStatusCode].(float64); !ok || v != 429 {
		t.Errorf("details status_code = %v", e.Details[errors.DetailStatusCode])
	}
	if len(e.Suggestions) != 1 || e.Suggestions[0] != "Wait and retry" {
		t.Errorf("suggestions = %v", e.Suggestions)
	}
}

func TestGetRecentOrderAndLimit(t *testing.T) {
	store := testStore(t)
	ctx := t.Context()

	for i, msg := range []string{"first", "second", "third"} {
		rec := errors.New(errors.KindNetwork, errors.SeverityMedium, msg)
		rec.Timestamp = time.Now().Add(time.Duration(i) * time.Second)
		if err := store.Append(ctx, "s", rec); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
	}

	got, err := store.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Message != "third" || got[1].Message != "second" {
		t.Errorf("order = %q, %q; want newest first", got[0].Message, got[1].Message)
	}
}

func TestGetByKind(t *testing.T) {
	store := testStore(t)
	ctx := t.Context()

	_ = store.Append(ctx, "s", errors.New(errors.KindNetwork, errors.SeverityMedium, "timeout"))
	_ = store.Append(ctx, "s", errors.New(errors.KindBuild, errors.SeverityMedium, "stage failed"))
	_ = store.Append(ctx, "s", errors.New(errors.KindNetwork, errors.SeverityHigh, "unreachable"))

	got, err := store.GetByKind(ctx, errors.KindNetwork)
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 network records, got %d", len(got))
	}
	if got[0].Message != "timeout" || got[1].Message != "unreachable" {
		t.Errorf("order = %q, %q; want oldest first", got[0].Message, got[1].Message)
	}
}

func TestStats(t *testing.T) {
	store := testStore(t)
	ctx := t.Context()

	_ = store.Append(ctx, "s", errors.New(errors.KindNetwork, errors.SeverityMedium, "a"))
	_ = store.Append(ctx, "s", errors.New(errors.KindNetwork, errors.SeverityHigh, "b"))
	_ = store.Append(ctx, "s", errors.New(errors.KindSecurity, errors.SeverityHigh, "c"))

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("failed to query stats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.ByKind[errors.KindNetwork] != 2 {
		t.Errorf("ByKind[network] = %d, want 2", stats.ByKind[errors.KindNetwork])
	}
	if stats.BySeverity[errors.SeverityHigh] != 2 {
		t.Errorf("BySeverity[high] = %d, want 2", stats.BySeverity[errors.SeverityHigh])
	}
}

func TestPrune(t *testing.T) {
	store := testStore(t)
	ctx := t.Context()
	now := time.Now()

	old := errors.New(errors.KindNetwork, errors.SeverityMedium, "old")
	old.Timestamp = now.Add(-48 * time.Hour)
	fresh := errors.New(errors.KindNetwork, errors.SeverityMedium, "fresh")
	fresh.Timestamp = now

	_ = store.Append(ctx, "s", old)
	_ = store.Append(ctx, "s", fresh)

	removed, err := store.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("failed to prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	got, _ := store.GetRecent(ctx, 10)
	if len(got) != 1 || got[0].Message != "fresh" {
		t.Errorf("remaining = %v", got)
	}
}
