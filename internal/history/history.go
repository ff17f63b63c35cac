// Package history keeps a bounded, time-ordered log of error records for
// correlation analysis and aggregate statistics.
package history

import (
	"time"

	"git.home.luguber.info/inful/imageforge/internal/errors"
)

// DefaultMaxEntries bounds the store when no explicit limit is configured.
const DefaultMaxEntries = 100

// recentWindow is the trailing period counted as "recent" in statistics.
const recentWindow = 60 * time.Second

// Store is an append-only log with FIFO eviction at the configured bound.
//
// Store is not safe for concurrent use. The CLI issues handle calls
// sequentially; a concurrent caller must synchronize externally.
type Store struct {
	records []*errors.ErrorRecord
	max     int
}

// NewStore creates a store bounded to max entries; max <= 0 falls back to
// DefaultMaxEntries.
func NewStore(max int) *Store {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Store{
		records: make([]*errors.ErrorRecord, 0, max),
		max:     max,
	}
}

// Append adds a record, evicting the oldest entry when the bound is exceeded.
func (s *Store) Append(rec *errors.ErrorRecord) {
	if rec == nil {
		return
	}
	s.records = append(s.records, rec)
	if len(s.records) > s.max {
		// FIFO eviction; shift rather than reslice so the backing array
		// does not pin evicted records.
		copy(s.records, s.records[1:])
		s.records[len(s.records)-1] = nil
		s.records = s.records[:len(s.records)-1]
	}
}

// Len returns the current number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Snapshot returns the records in insertion order. The returned slice is a
// copy; the records themselves are shared and must not be mutated.
func (s *Store) Snapshot() []*errors.ErrorRecord {
	out := make([]*errors.ErrorRecord, len(s.records))
	copy(out, s.records)
	return out
}

// RecentByKind returns records of the given kind whose timestamp falls within
// the trailing window ending at now.
func (s *Store) RecentByKind(kind errors.Kind, window time.Duration, now time.Time) []*errors.ErrorRecord {
	cutoff := now.Add(-window)
	var out []*errors.ErrorRecord
	for _, rec := range s.records {
		if rec.Kind == kind && !rec.Timestamp.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out
}

// LastKinds returns the kinds of the most recent n records, oldest first.
func (s *Store) LastKinds(n int) []errors.Kind {
	if n > len(s.records) {
		n = len(s.records)
	}
	out := make([]errors.Kind, 0, n)
	for _, rec := range s.records[len(s.records)-n:] {
		out = append(out, rec.Kind)
	}
	return out
}

// CountSince returns the number of records within the trailing window ending
// at now.
func (s *Store) CountSince(window time.Duration, now time.Time) int {
	cutoff := now.Add(-window)
	count := 0
	for _, rec := range s.records {
		if !rec.Timestamp.Before(cutoff) {
			count++
		}
	}
	return count
}

// Clear empties the store.
func (s *Store) Clear() {
	s.records = s.records[:0]
}

// Statistics aggregates the stored records.
type Statistics struct {
	Total       int                     `json:"total"`
	ByKind      map[errors.Kind]int     `json:"by_kind"`
	BySeverity  map[errors.Severity]int `json:"by_severity"`
	RecentCount int                     `json:"recent_count"`
}

// Stats computes aggregate counts by kind and severity, plus the count of
// records within the trailing 60-second window.
func (s *Store) Stats() Statistics {
	stats := Statistics{
		ByKind:     make(map[errors.Kind]int),
		BySeverity: make(map[errors.Severity]int),
	}
	now := time.Now()
	cutoff := now.Add(-recentWindow)
	for _, rec := range s.records {
		stats.Total++
		stats.ByKind[rec.Kind]++
		stats.BySeverity[rec.Severity]++
		if !rec.Timestamp.Before(cutoff) {
			stats.RecentCount++
		}
	}
	return stats
}
