package domain

import "time"

// Message is a durably stored chat message. Rows are created once and
// never mutated; Visible reflects the author's tracking preference at
// ingestion time and is not updated retroactively.
type Message struct {
	ID         int64
	ExternalID string
	Author     string
	Text       string
	Timestamp  time.Time
	Visible    bool
}

// MessageFilter narrows a message search. Zero values mean "no filter".
type MessageFilter struct {
	Text   string
	Author string
	Start  time.Time
	End    time.Time
	Limit  int
}

// HourBucket is one hour of message volume.
type HourBucket struct {
	Hour  time.Time
	Count int64
}

// DayBucket is one day of message volume plus the running total.
type DayBucket struct {
	Date       string
	Count      int64
	Cumulative int64
}
