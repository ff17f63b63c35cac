// Package eventstore persists classified failures across runs so the errors
// command can report on past sessions.
package eventstore

import (
	"context"
	"time"

	"git.home.luguber.info/inful/imageforge/internal/errors"
)

// StoredError is one persisted failure row.
type StoredError struct {
	ID          int64
	SessionID   string
	Kind        errors.Kind
	Severity    errors.Severity
	Message     string
	Code        string
	Timestamp   time.Time
	Details     map[string]any
	Suggestions []string
}

// Stats aggregates stored failures.
type Stats struct {
	Total      int
	ByKind     map[errors.Kind]int
	BySeverity map[errors.Severity]int
}

// Store defines the interface for persisting and querying failures.
type Store interface {
	// Append persists one record under the given session.
	Append(ctx context.Context, sessionID string, rec *errors.ErrorRecord) error

	// GetRecent returns the newest records, newest first, up to limit.
	GetRecent(ctx context.Context, limit int) ([]StoredError, error)

	// GetByKind returns all records of one kind, oldest first.
	GetByKind(ctx context.Context, kind errors.Kind) ([]StoredError, error)

	// GetBySession returns all records for one session, oldest first.
	GetBySession(ctx context.Context, sessionID string) ([]StoredError, error)

	// Stats aggregates counts by kind and severity.
	Stats(ctx context.Context) (Stats, error)

	// Prune deletes records older than the cutoff, returning the count removed.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)

	// Close closes the store and releases resources.
	Close() error
}
