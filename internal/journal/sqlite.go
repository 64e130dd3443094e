package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
)

// SQLite implements Journal on an SQLite database file.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens or creates the journal at path. Use ":memory:" for tests.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryJournal, "open journal").
			WithContext("path", path).
			Build()
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryJournal, "initialize journal schema").
			WithContext("path", path).
			Build()
	}
	return s, nil
}

func (s *SQLite) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		build TEXT NOT NULL,
		cause TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT,
		partials TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_build ON builds(build);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Record stores e, assigning an id when it has none, and returns the id.
func (s *SQLite) Record(ctx context.Context, e Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	partials, err := json.Marshal(e.Partials)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryJournal, "encode partials").Build()
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO builds (id, build, cause, started_at, duration_ns, outcome, error, partials) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.Build, e.Trigger, e.StartedAt.UnixNano(), int64(e.Duration), e.Outcome, e.Error, string(partials),
	)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryJournal, "insert build").
			WithContext("build", e.Build).
			Build()
	}
	return e.ID, nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build, cause, started_at, duration_ns, outcome, error, partials FROM builds ORDER BY seq DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryJournal, "query builds").Build()
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			startedAt int64
			duration  int64
			errText   sql.NullString
			partials  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Build, &e.Trigger, &startedAt, &duration, &e.Outcome, &errText, &partials); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryJournal, "scan build").Build()
		}
		e.StartedAt = time.Unix(0, startedAt)
		e.Duration = time.Duration(duration)
		e.Error = errText.String
		if partials.Valid && partials.String != "" {
			if err := json.Unmarshal([]byte(partials.String), &e.Partials); err != nil {
				return nil, ferrors.WrapError(err, ferrors.CategoryJournal, "decode partials").Build()
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryJournal, "iterate builds").Build()
	}
	return entries, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Open returns a SQLite journal for path, or Noop when path is empty.
func Open(ctx context.Context, path string) (Journal, error) {
	if path == "" {
		return Noop{}, nil
	}
	return OpenSQLite(ctx, path)
}
