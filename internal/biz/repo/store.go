package repo

import (
	"context"
	"time"

	"github.com/roomscribe/roomscribe/internal/biz/domain"
)

// MessageStore is the durable record of accepted messages and per-user
// aggregates.
type MessageStore interface {
	// InsertIfAbsent stores a message unless its external id already
	// exists. The duplicate case is a successful no-op, not an error:
	// inserted is false and the caller must skip RecordActivity.
	InsertIfAbsent(ctx context.Context, externalID, author, text string, visible bool) (rowID int64, inserted bool, err error)

	// RecordActivity upserts the author's stat row: insert with count 1
	// or increment, updating last_seen either way.
	RecordActivity(ctx context.Context, author string) error

	// GetTracking returns the author's tracking preference, defaulting
	// to true for unknown authors.
	GetTracking(ctx context.Context, author string) (bool, error)

	// SetTracking flips or creates the preference row without touching
	// the message count.
	SetTracking(ctx context.Context, author string, enabled bool) error

	// Read-only aggregates, used by the reporting layer.
	TotalVisibleCount(ctx context.Context) (int64, error)
	TopUsers(ctx context.Context, limit int) ([]domain.UserStat, error)
	HourlyStats(ctx context.Context, since time.Time) ([]domain.HourBucket, error)
	DailyStats(ctx context.Context) ([]domain.DayBucket, error)
	SearchMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error)
	UntrackedUsers(ctx context.Context) ([]string, error)
	AllVisibleMessages(ctx context.Context) ([]domain.Message, error)
}
