package domain

import "time"

// UserStat is the per-author aggregate row, upserted on every accepted
// message. TrackingEnabled is mutated only by the opt-in/opt-out commands
// and defaults to true for authors that have never issued one.
type UserStat struct {
	Author          string
	MessageCount    int64
	FirstSeen       time.Time
	LastSeen        time.Time
	TrackingEnabled bool
}
