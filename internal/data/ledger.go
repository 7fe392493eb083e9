package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger implements the processed-event set on SQLite with an in-memory
// mirror. The table is the durable truth; the mirror exists so that
// Seen, called once per observed event per tick, never touches the
// database. Ids are never evicted.
type Ledger struct {
	db *sql.DB

	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewLedger opens the ledger database and loads the full processed set.
// An absent database starts empty, so a first run processes the current
// backlog once.
func NewLedger(dbPath string) (*Ledger, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS processed (
			event_id TEXT PRIMARY KEY,
			marked_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create processed table: %w", err)
	}

	l := &Ledger{db: db, seen: make(map[string]struct{})}
	if err := l.load(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) load() error {
	rows, err := l.db.Query(`SELECT event_id FROM processed`)
	if err != nil {
		return fmt.Errorf("failed to load processed set: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan event id: %w", err)
		}
		l.seen[id] = struct{}{}
	}
	return rows.Err()
}

// Close closes the ledger database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Seen reports whether the id has already been processed.
func (l *Ledger) Seen(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[id]
	return ok
}

// Mark durably records the id as processed. Marking an already-marked
// id is a no-op. The mirror is updated only after the insert succeeded,
// so a failed mark leaves the event unprocessed for the next poll.
func (l *Ledger) Mark(ctx context.Context, id string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO processed (event_id, marked_at) VALUES (?, ?)
	`, id, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to mark event: %w", err)
	}

	l.mu.Lock()
	l.seen[id] = struct{}{}
	l.mu.Unlock()
	return nil
}

// Size returns the number of processed ids, for startup logging.
func (l *Ledger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seen)
}
