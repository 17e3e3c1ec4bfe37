// Package journal keeps an sqlite audit trail of realm invocations.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alexisbeaulieu97/realmctl/internal/logger"
	"github.com/alexisbeaulieu97/realmctl/internal/realm"
)

// Entry is one recorded invocation. Secrets are never stored.
type Entry struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Action        string    `json:"action"`
	Realm         string    `json:"realm,omitempty"`
	Flags         string    `json:"flags,omitempty"`
	RC            int       `json:"rc"`
	Success       bool      `json:"success"`
	Changed       bool      `json:"changed"`
	Skipped       bool      `json:"skipped"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Journal implements realm.Recorder on top of sqlite.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

var _ realm.Recorder = (*Journal)(nil)

// New opens (creating if needed) the journal database at path.
func New(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	j := &Journal{db: db, now: time.Now}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}

	return j, nil
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS invocations (
		id TEXT PRIMARY KEY,
		correlation_id TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		realm TEXT NOT NULL DEFAULT '',
		flags TEXT NOT NULL DEFAULT '',
		rc INTEGER NOT NULL,
		success INTEGER NOT NULL,
		changed INTEGER NOT NULL,
		skipped INTEGER NOT NULL DEFAULT 0,
		message TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_invocations_created ON invocations(created_at);
	CREATE INDEX IF NOT EXISTS idx_invocations_correlation ON invocations(correlation_id);
	`

	_, err := j.db.Exec(schema)
	return err
}

// Record stores out. Flags are the display form, so one-time passwords are masked.
func (j *Journal) Record(ctx context.Context, out *realm.Outcome) error {
	if out == nil {
		return nil
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO invocations (id, correlation_id, action, realm, flags, rc, success, changed, skipped, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(),
		logger.CorrelationID(ctx),
		string(out.Action),
		out.Realm,
		strings.Join(out.Flags, " "),
		out.RC,
		out.Success,
		out.Changed,
		out.Skipped,
		out.Message,
		j.now().UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record invocation: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit returns all.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, correlation_id, action, realm, flags, rc, success, changed, skipped, message, created_at
		FROM invocations
		ORDER BY created_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.CorrelationID, &e.Action, &e.Realm, &e.Flags, &e.RC,
			&e.Success, &e.Changed, &e.Skipped, &e.Message, &created); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		e.CreatedAt = time.Unix(0, created).UTC()
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invocations: %w", err)
	}

	return entries, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}
