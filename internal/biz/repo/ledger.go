package repo

import "context"

// Ledger is the persisted set of already-processed external event ids.
// It exists purely for idempotency: ids enter at most once and are never
// evicted. Mark is idempotent and must be durable before the polling
// loop treats the event as handled; when durability fails the event is
// retried on the next poll, with the message store's unique constraint
// acting as the second idempotency barrier.
type Ledger interface {
	Seen(id string) bool
	Mark(ctx context.Context, id string) error
}
