package repo

import "context"

// Assistant is the long-lived automated-response session. Ask blocks for
// the duration of one full exchange and may fail; the session holds at
// most one in-flight exchange, which the ask queue enforces.
type Assistant interface {
	Ready() bool
	Ask(ctx context.Context, question string) (string, error)
}
