package domain

// Event is one raw message observed on the external surface.
// The surface gives no delivery guarantee: the same ExternalID may be
// re-observed across polls, so events are ephemeral until the pipeline
// accepts them.
type Event struct {
	ExternalID string
	Author     string
	Text       string
}

// Valid reports whether the event carries everything the pipeline needs.
// Malformed events are dropped without entering the ledger, so a later
// well-formed repeat of the same id can still be processed.
func (e Event) Valid() bool {
	return e.ExternalID != "" && e.Author != "" && e.Text != ""
}
