package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/roomscribe/roomscribe/internal/biz/domain"

	_ "modernc.org/sqlite"
)

// Store implements the MessageStore repository on SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the message database.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			external_id TEXT UNIQUE NOT NULL,
			author TEXT NOT NULL,
			message TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			visible INTEGER NOT NULL DEFAULT 1
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create messages table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			message_count INTEGER NOT NULL DEFAULT 0,
			first_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
			tracking_enabled INTEGER NOT NULL DEFAULT 1
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_messages_author ON messages(author)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertIfAbsent stores a message unless external_id already exists.
// The duplicate case returns (0, false, nil): it is the second
// idempotency barrier, not an error.
func (s *Store) InsertIfAbsent(ctx context.Context, externalID, author, text string, visible bool) (int64, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO messages (external_id, author, message, visible)
		VALUES (?, ?, ?, ?)
	`, externalID, author, text, boolToInt(visible))
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert message: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return 0, false, nil
	}

	rowID, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read insert id: %w", err)
	}
	return rowID, true, nil
}

// RecordActivity upserts the author's stat row.
func (s *Store) RecordActivity(ctx context.Context, author string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, message_count, last_seen)
		VALUES (?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(username) DO UPDATE SET
			message_count = message_count + 1,
			last_seen = CURRENT_TIMESTAMP
	`, author)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// GetTracking returns the author's preference, true for unknown authors.
func (s *Store) GetTracking(ctx context.Context, author string) (bool, error) {
	var enabled int
	err := s.db.QueryRowContext(ctx, `
		SELECT tracking_enabled FROM users WHERE username = ?
	`, author).Scan(&enabled)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query tracking: %w", err)
	}
	return enabled == 1, nil
}

// SetTracking flips or creates the preference row without touching the
// message count.
func (s *Store) SetTracking(ctx context.Context, author string, enabled bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, message_count, tracking_enabled)
		VALUES (?, 0, ?)
		ON CONFLICT(username) DO UPDATE SET
			tracking_enabled = excluded.tracking_enabled
	`, author, boolToInt(enabled))
	if err != nil {
		return fmt.Errorf("failed to set tracking: %w", err)
	}
	return nil
}

// TotalVisibleCount counts visible messages.
func (s *Store) TotalVisibleCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE visible = 1
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// TopUsers returns the leaderboard, highest count first.
func (s *Store) TopUsers(ctx context.Context, limit int) ([]domain.UserStat, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT username, message_count, first_seen, last_seen, tracking_enabled
		FROM users
		ORDER BY message_count DESC, username ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top users: %w", err)
	}
	defer rows.Close()

	return scanUserStats(rows)
}

// HourlyStats buckets visible messages per hour since the given time.
func (s *Store) HourlyStats(ctx context.Context, since time.Time) ([]domain.HourBucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m-%d %H:00:00', timestamp) AS hour, COUNT(*) AS count
		FROM messages
		WHERE visible = 1 AND timestamp >= ?
		GROUP BY hour
		ORDER BY hour
	`, since.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly stats: %w", err)
	}
	defer rows.Close()

	var buckets []domain.HourBucket
	for rows.Next() {
		var hour string
		var count int64
		if err := rows.Scan(&hour, &count); err != nil {
			return nil, fmt.Errorf("failed to scan hourly bucket: %w", err)
		}
		buckets = append(buckets, domain.HourBucket{Hour: parseSQLiteTime(hour), Count: count})
	}
	return buckets, rows.Err()
}

// DailyStats returns per-day visible counts with a running total.
func (s *Store) DailyStats(ctx context.Context) ([]domain.DayBucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			DATE(timestamp) AS date,
			COUNT(*) AS daily_count,
			SUM(COUNT(*)) OVER (ORDER BY DATE(timestamp)) AS cumulative_count
		FROM messages
		WHERE visible = 1
		GROUP BY DATE(timestamp)
		ORDER BY date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var buckets []domain.DayBucket
	for rows.Next() {
		var b domain.DayBucket
		if err := rows.Scan(&b.Date, &b.Count, &b.Cumulative); err != nil {
			return nil, fmt.Errorf("failed to scan daily bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// SearchMessages returns visible messages matching the filter, newest
// first.
func (s *Store) SearchMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error) {
	query := `
		SELECT id, external_id, author, message, timestamp, visible
		FROM messages
		WHERE visible = 1`
	var params []interface{}

	if filter.Text != "" {
		query += ` AND message LIKE ?`
		params = append(params, "%"+filter.Text+"%")
	}
	if filter.Author != "" {
		query += ` AND author LIKE ?`
		params = append(params, "%"+filter.Author+"%")
	}
	if !filter.Start.IsZero() {
		query += ` AND timestamp >= ?`
		params = append(params, filter.Start.UTC().Format(sqliteTimeLayout))
	}
	if !filter.End.IsZero() {
		query += ` AND timestamp <= ?`
		params = append(params, filter.End.UTC().Format(sqliteTimeLayout))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	params = append(params, limit)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// UntrackedUsers lists authors who opted out.
func (s *Store) UntrackedUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username FROM users WHERE tracking_enabled = 0 ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query untracked users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		users = append(users, name)
	}
	return users, rows.Err()
}

// AllVisibleMessages returns the full visible transcript, oldest first.
func (s *Store) AllVisibleMessages(ctx context.Context) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, external_id, author, message, timestamp, visible
		FROM messages
		WHERE visible = 1
		ORDER BY timestamp ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

const sqliteTimeLayout = "2006-01-02 15:04:05"

func parseSQLiteTime(s string) time.Time {
	t, err := time.ParseInLocation(sqliteTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanMessages(rows *sql.Rows) ([]domain.Message, error) {
	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var ts string
		var visible int
		if err := rows.Scan(&m.ID, &m.ExternalID, &m.Author, &m.Text, &ts, &visible); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Timestamp = parseSQLiteTime(ts)
		m.Visible = visible == 1
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func scanUserStats(rows *sql.Rows) ([]domain.UserStat, error) {
	var stats []domain.UserStat
	for rows.Next() {
		var u domain.UserStat
		var firstSeen, lastSeen string
		var tracking int
		if err := rows.Scan(&u.Author, &u.MessageCount, &firstSeen, &lastSeen, &tracking); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.FirstSeen = parseSQLiteTime(firstSeen)
		u.LastSeen = parseSQLiteTime(lastSeen)
		u.TrackingEnabled = tracking == 1
		stats = append(stats, u)
	}
	return stats, rows.Err()
}
