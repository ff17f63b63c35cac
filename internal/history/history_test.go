package history

import (
	"fmt"
	"testing"
	"time"

	"git.home.luguber.info/inful/imageforge/internal/errors"
)

func recordAt(kind errors.Kind, msg string, ts time.Time) *errors.ErrorRecord {
	return &errors.ErrorRecord{
		Kind:      kind,
		Severity:  errors.SeverityMedium,
		Message:   msg,
		Timestamp: ts,
	}
}

func TestStoreBoundAndFIFO(t *testing.T) {
	s := NewStore(5)
	now := time.Now()

	for i := 0; i < 8; i++ {
		s.Append(recordAt(errors.KindNetwork, fmt.Sprintf("err-%d", i), now))
	}

	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}

	snap := s.Snapshot()
	// Oldest three evicted; the newest five remain in original order.
	for i, rec := range snap {
		want := fmt.Sprintf("err-%d", i+3)
		if rec.Message != want {
			t.Errorf("snapshot[%d].Message = %q, want %q", i, rec.Message, want)
		}
	}
}

func TestStoreDefaultBound(t *testing.T) {
	s := NewStore(0)
	now := time.Now()
	for i := 0; i < DefaultMaxEntries+10; i++ {
		s.Append(recordAt(errors.KindBuild, "x", now))
	}
	if s.Len() != DefaultMaxEntries {
		t.Fatalf("Len() = %d, want %d", s.Len(), DefaultMaxEntries)
	}
}

func TestRecentByKind(t *testing.T) {
	s := NewStore(10)
	now := time.Now()

	s.Append(recordAt(errors.KindNetwork, "old", now.Add(-2*time.Minute)))
	s.Append(recordAt(errors.KindNetwork, "fresh-1", now.Add(-30*time.Second)))
	s.Append(recordAt(errors.KindDocker, "other kind", now.Add(-10*time.Second)))
	s.Append(recordAt(errors.KindNetwork, "fresh-2", now.Add(-5*time.Second)))

	got := s.RecentByKind(errors.KindNetwork, 60*time.Second, now)
	if len(got) != 2 {
		t.Fatalf("RecentByKind returned %d records, want 2", len(got))
	}
	if got[0].Message != "fresh-1" || got[1].Message != "fresh-2" {
		t.Errorf("RecentByKind order = %q, %q", got[0].Message, got[1].Message)
	}
}

func TestLastKinds(t *testing.T) {
	s := NewStore(10)
	now := time.Now()
	for _, k := range []errors.Kind{errors.KindNetwork, errors.KindDocker, errors.KindRegistry} {
		s.Append(recordAt(k, "m", now))
	}

	got := s.LastKinds(2)
	if len(got) != 2 || got[0] != errors.KindDocker || got[1] != errors.KindRegistry {
		t.Errorf("LastKinds(2) = %v", got)
	}

	// Asking for more than stored returns everything.
	if got := s.LastKinds(10); len(got) != 3 {
		t.Errorf("LastKinds(10) returned %d kinds, want 3", len(got))
	}
}

func TestCountSince(t *testing.T) {
	s := NewStore(10)
	now := time.Now()
	s.Append(recordAt(errors.KindNetwork, "old", now.Add(-90*time.Second)))
	s.Append(recordAt(errors.KindNetwork, "new", now.Add(-10*time.Second)))

	if got := s.CountSince(60*time.Second, now); got != 1 {
		t.Errorf("CountSince = %d, want 1", got)
	}
}

func TestStats(t *testing.T) {
	s := NewStore(10)
	now := time.Now()
	s.Append(&errors.ErrorRecord{Kind: errors.KindNetwork, Severity: errors.SeverityMedium, Timestamp: now})
	s.Append(&errors.ErrorRecord{Kind: errors.KindNetwork, Severity: errors.SeverityHigh, Timestamp: now})
	s.Append(&errors.ErrorRecord{Kind: errors.KindSecurity, Severity: errors.SeverityHigh, Timestamp: now.Add(-2 * time.Minute)})

	stats := s.Stats()
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.ByKind[errors.KindNetwork] != 2 {
		t.Errorf("ByKind[network] = %d, want 2", stats.ByKind[errors.KindNetwork])
	}
	if stats.BySeverity[errors.SeverityHigh] != 2 {
		t.Errorf("BySeverity[high] = %d, want 2", stats.BySeverity[errors.SeverityHigh])
	}
	if stats.RecentCount != 2 {
		t.Errorf("RecentCount = %d, want 2", stats.RecentCount)
	}
}

func TestClear(t *testing.T) {
	s := NewStore(5)
	s.Append(recordAt(errors.KindBuild, "m", time.Now()))
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", s.Len())
	}
}
