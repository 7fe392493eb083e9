package usecase

import (
	"context"
	"fmt"

	"github.com/roomscribe/roomscribe/internal/biz/domain"
	"github.com/roomscribe/roomscribe/internal/biz/repo"
)

// IngestStatus describes what happened to one event.
type IngestStatus int

const (
	// IngestDropped means the event was malformed and discarded without
	// entering the ledger.
	IngestDropped IngestStatus = iota

	// IngestSkipped means the ledger already contained the event id.
	IngestSkipped

	// IngestAccepted means the event passed the full pipeline: commands
	// applied, message stored (or confirmed already stored), ledger
	// marked.
	IngestAccepted
)

// IngestResult reports the outcome of processing one event.
type IngestResult struct {
	Status IngestStatus
	Intent domain.Intent

	// Inserted is true when the store accepted a fresh row. It is false
	// for the duplicate-key case, where the row already existed from an
	// earlier run whose ledger mark did not persist.
	Inserted bool

	// Visible is the tracking preference applied to the stored row.
	Visible bool
}

// IngestUsecase runs one event through the dedup gate, the command
// interpreter and the message store. It owns no goroutines: the polling
// loop calls it sequentially, which keeps per-tick ordering
// deterministic.
type IngestUsecase struct {
	ledger   repo.Ledger
	store    repo.MessageStore
	botAlias string
}

// NewIngestUsecase creates the ingestion pipeline.
func NewIngestUsecase(ledger repo.Ledger, store repo.MessageStore, botAlias string) *IngestUsecase {
	return &IngestUsecase{
		ledger:   ledger,
		store:    store,
		botAlias: botAlias,
	}
}

// ProcessEvent handles a single raw event. A non-nil error means a
// persistence write failed before the ledger mark: the event stays
// unmarked and the next poll retries it, with the store's unique
// constraint suppressing any double count.
//
// The tracking flip of an opt command applies to the triggering message
// itself: "/dt" is stored with visible=false, "/at" with visible=true.
func (uc *IngestUsecase) ProcessEvent(ctx context.Context, ev domain.Event) (*IngestResult, error) {
	if !ev.Valid() {
		return &IngestResult{Status: IngestDropped}, nil
	}

	if uc.ledger.Seen(ev.ExternalID) {
		return &IngestResult{Status: IngestSkipped}, nil
	}

	intent := Classify(ev.Text, uc.botAlias)

	switch intent.Kind {
	case domain.IntentOptOut:
		if err := uc.store.SetTracking(ctx, ev.Author, false); err != nil {
			return nil, fmt.Errorf("set tracking off for %s: %w", ev.Author, err)
		}
	case domain.IntentOptIn:
		if err := uc.store.SetTracking(ctx, ev.Author, true); err != nil {
			return nil, fmt.Errorf("set tracking on for %s: %w", ev.Author, err)
		}
	}

	visible, err := uc.store.GetTracking(ctx, ev.Author)
	if err != nil {
		return nil, fmt.Errorf("get tracking for %s: %w", ev.Author, err)
	}

	_, inserted, err := uc.store.InsertIfAbsent(ctx, ev.ExternalID, ev.Author, ev.Text, visible)
	if err != nil {
		return nil, fmt.Errorf("insert message %s: %w", ev.ExternalID, err)
	}

	if inserted {
		if err := uc.store.RecordActivity(ctx, ev.Author); err != nil {
			return nil, fmt.Errorf("record activity for %s: %w", ev.Author, err)
		}
	}

	if err := uc.ledger.Mark(ctx, ev.ExternalID); err != nil {
		return nil, fmt.Errorf("mark %s: %w", ev.ExternalID, err)
	}

	return &IngestResult{
		Status:   IngestAccepted,
		Intent:   intent,
		Inserted: inserted,
		Visible:  visible,
	}, nil
}
