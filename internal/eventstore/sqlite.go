package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/imageforge/internal/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-backed store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS error_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL,
		code TEXT,
		timestamp INTEGER NOT NULL,
		details TEXT,
		suggestions TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_session_id ON error_events(session_id);
	CREATE INDEX IF NOT EXISTS idx_kind ON error_events(kind);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON error_events(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append persists one record under the given session.
func (s *SQLiteStore) Append(ctx context.Context, sessionID string, rec *errors.ErrorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var detailsJSON []byte
	if len(rec.Details) > 0 {
		var err error
		detailsJSON, err = json.Marshal(rec.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
	}
	var suggestionsJSON []byte
	if len(rec.Suggestions) > 0 {
		var err error
		suggestionsJSON, err = json.Marshal(rec.Suggestions)
		if err != nil {
			return fmt.Errorf("marshal suggestions: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO error_events (session_id, kind, severity, message, code, timestamp, details, suggestions) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		sessionID, string(rec.Kind), string(rec.Severity), rec.Message, rec.Code, rec.Timestamp.Unix(), detailsJSON, suggestionsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert error event: %w", err)
	}
	return nil
}

// GetRecent returns the newest records, newest first, up to limit.
func (s *SQLiteStore) GetRecent(ctx context.Context, limit int) ([]StoredError, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, session_id, kind, severity, message, code, timestamp, details, suggestions FROM error_events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query error events: %w", err)
	}
	defer rows.Close()

	return s.scanRows(rows)
}

// GetByKind returns all records of one kind, oldest first.
func (s *SQLiteStore) GetByKind(ctx context.Context, kind errors.Kind) ([]StoredError, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, session_id, kind, severity, message, code, timestamp, details, suggestions FROM error_events WHERE kind = ? ORDER BY id",
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("query error events: %w", err)
	}
	defer rows.Close()

	return s.scanRows(rows)
}

// GetBySession returns all records for one session, oldest first.
func (s *SQLiteStore) GetBySession(ctx context.Context, sessionID string) ([]StoredError, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, session_id, kind, severity, message, code, timestamp, details, suggestions FROM error_events WHERE session_id = ? ORDER BY id",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query error events: %w", err)
	}
	defer rows.Close()

	return s.scanRows(rows)
}

// Stats aggregates counts by kind and severity.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		ByKind:     make(map[errors.Kind]int),
		BySeverity: make(map[errors.Severity]int),
	}

	rows, err := s.db.QueryContext(ctx, "SELECT kind, severity, COUNT(*) FROM error_events GROUP BY kind, severity")
	if err != nil {
		return stats, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, severity string
		var count int
		if err := rows.Scan(&kind, &severity, &count); err != nil {
			return stats, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += count
		stats.ByKind[errors.Kind(kind)] += count
		stats.BySeverity[errors.Severity(severity)] += count
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterate rows: %w", err)
	}
	return stats, nil
}

// Prune deletes records older than the cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM error_events WHERE timestamp < ?", olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune error events: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) scanRows(rows *sql.Rows) ([]StoredError, error) {
	var out []StoredError
	for rows.Next() {
		var e StoredError
		var kind, severity string
		var code sql.NullString
		var timestampUnix int64
		var detailsJSON, suggestionsJSON []byte

		err := rows.Scan(&e.ID, &e.SessionID, &kind, &severity, &e.Message, &code, &timestampUnix, &detailsJSON, &suggestionsJSON)
		if err != nil {
			return nil, fmt.Errorf("scan error event: %w", err)
		}

		e.Kind = errors.Kind(kind)
		e.Severity = errors.Severity(severity)
		e.Code = code.String
		e.Timestamp = time.Unix(timestampUnix, 0)

		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &e.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}
		if len(suggestionsJSON) > 0 {
			if err := json.Unmarshal(suggestionsJSON, &e.Suggestions); err != nil {
				return nil, fmt.Errorf("unmarshal suggestions: %w", err)
			}
		}

		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
