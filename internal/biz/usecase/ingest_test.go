package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roomscribe/roomscribe/internal/biz/domain"
)

// Mock implementations

type mockLedger struct {
	seen    map[string]bool
	markErr error
}

func newMockLedger() *mockLedger {
	return &mockLedger{seen: make(map[string]bool)}
}

func (m *mockLedger) Seen(id string) bool {
	return m.seen[id]
}

func (m *mockLedger) Mark(ctx context.Context, id string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.seen[id] = true
	return nil
}

type storedMessage struct {
	author  string
	text    string
	visible bool
}

type mockStore struct {
	messages  map[string]storedMessage // keyed by external id
	counts    map[string]int64
	tracking  map[string]bool
	insertErr error
	recordErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		messages: make(map[string]storedMessage),
		counts:   make(map[string]int64),
		tracking: make(map[string]bool),
	}
}

func (m *mockStore) InsertIfAbsent(ctx context.Context, externalID, author, text string, visible bool) (int64, bool, error) {
	if m.insertErr != nil {
		return 0, false, m.insertErr
	}
	if _, exists := m.messages[externalID]; exists {
		return 0, false, nil
	}
	m.messages[externalID] = storedMessage{author: author, text: text, visible: visible}
	return int64(len(m.messages)), true, nil
}

func (m *mockStore) RecordActivity(ctx context.Context, author string) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.counts[author]++
	return nil
}

func (m *mockStore) GetTracking(ctx context.Context, author string) (bool, error) {
	if enabled, ok := m.tracking[author]; ok {
		return enabled, nil
	}
	return true, nil
}

func (m *mockStore) SetTracking(ctx context.Context, author string, enabled bool) error {
	m.tracking[author] = enabled
	return nil
}

func (m *mockStore) TotalVisibleCount(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockStore) TopUsers(ctx context.Context, limit int) ([]domain.UserStat, error) {
	return nil, nil
}

func (m *mockStore) HourlyStats(ctx context.Context, since time.Time) ([]domain.HourBucket, error) {
	return nil, nil
}

func (m *mockStore) DailyStats(ctx context.Context) ([]domain.DayBucket, error) { return nil, nil }

func (m *mockStore) SearchMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error) {
	return nil, nil
}

func (m *mockStore) UntrackedUsers(ctx context.Context) ([]string, error) { return nil, nil }

func (m *mockStore) AllVisibleMessages(ctx context.Context) ([]domain.Message, error) {
	return nil, nil
}

// Tests

func TestProcessEventIdempotent(t *testing.T) {
	ledger := newMockLedger()
	store := newMockStore()
	uc := NewIngestUsecase(ledger, store, "scribe")

	ev := domain.Event{ExternalID: "a1", Author: "bob", Text: "hello"}

	res, err := uc.ProcessEvent(context.Background(), ev)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if res.Status != IngestAccepted || !res.Inserted {
		t.Fatalf("first pass: status=%v inserted=%v, want accepted+inserted", res.Status, res.Inserted)
	}

	// Same event re-observed in a later poll.
	res, err = uc.ProcessEvent(context.Background(), ev)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if res.Status != IngestSkipped {
		t.Errorf("second pass status = %v, want skipped", res.Status)
	}
	if len(store.messages) != 1 {
		t.Errorf("stored %d messages, want 1", len(store.messages))
	}
	if store.counts["bob"] != 1 {
		t.Errorf("bob count = %d, want 1", store.counts["bob"])
	}
}

func TestProcessEventDuplicateRowSuppressesCount(t *testing.T) {
	// Storage succeeded on a previous run but the ledger mark did not
	// persist: the store's duplicate rejection must suppress the second
	// RecordActivity call.
	ledger := newMockLedger()
	store := newMockStore()
	store.messages["a1"] = storedMessage{author: "bob", text: "hello", visible: true}
	store.counts["bob"] = 1

	uc := NewIngestUsecase(ledger, store, "scribe")
	res, err := uc.ProcessEvent(context.Background(), domain.Event{ExternalID: "a1", Author: "bob", Text: "hello"})
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}
	if res.Status != IngestAccepted {
		t.Fatalf("status = %v, want accepted", res.Status)
	}
	if res.Inserted {
		t.Error("Inserted = true for duplicate row")
	}
	if store.counts["bob"] != 1 {
		t.Errorf("bob count = %d, want 1 (no double count)", store.counts["bob"])
	}
	if !ledger.seen["a1"] {
		t.Error("ledger not marked after duplicate recovery")
	}
}

func TestProcessEventOptOutFlipThenApply(t *testing.T) {
	ledger := newMockLedger()
	store := newMockStore()
	uc := NewIngestUsecase(ledger, store, "scribe")

	res, err := uc.ProcessEvent(context.Background(), domain.Event{ExternalID: "a2", Author: "bob", Text: "/dt"})
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}
	if res.Intent.Kind != domain.IntentOptOut {
		t.Fatalf("intent = %v, want opt-out", res.Intent.Kind)
	}
	// The flip applies to the triggering message itself.
	if stored := store.messages["a2"]; stored.visible {
		t.Error("/dt message stored visible, want hidden")
	}
	if enabled, _ := store.GetTracking(context.Background(), "bob"); enabled {
		t.Error("tracking still enabled after /dt")
	}

	// Subsequent message stays hidden.
	res, _ = uc.ProcessEvent(context.Background(), domain.Event{ExternalID: "a3", Author: "bob", Text: "hi"})
	if stored := store.messages["a3"]; stored.visible {
		t.Error("message after /dt stored visible")
	}
	if store.counts["bob"] != 2 {
		t.Errorf("bob count = %d, want 2 (hidden rows still counted)", store.counts["bob"])
	}

	// /at restores tracking and is itself stored visible.
	res, _ = uc.ProcessEvent(context.Background(), domain.Event{ExternalID: "a4", Author: "bob", Text: "/at"})
	if stored := store.messages["a4"]; !stored.visible {
		t.Error("/at message stored hidden, want visible")
	}
	_ = res
}

func TestProcessEventMalformedDropped(t *testing.T) {
	ledger := newMockLedger()
	store := newMockStore()
	uc := NewIngestUsecase(ledger, store, "scribe")

	for _, ev := range []domain.Event{
		{Author: "bob", Text: "hi"},
		{ExternalID: "x1", Text: "hi"},
		{ExternalID: "x2", Author: "bob"},
	} {
		res, err := uc.ProcessEvent(context.Background(), ev)
		if err != nil {
			t.Fatalf("ProcessEvent(%+v): %v", ev, err)
		}
		if res.Status != IngestDropped {
			t.Errorf("ProcessEvent(%+v) status = %v, want dropped", ev, res.Status)
		}
	}
	if len(ledger.seen) != 0 {
		t.Error("malformed events entered the ledger")
	}
	if len(store.messages) != 0 {
		t.Error("malformed events were stored")
	}
}

func TestProcessEventStoreFailureLeavesUnmarked(t *testing.T) {
	ledger := newMockLedger()
	store := newMockStore()
	store.insertErr = errors.New("disk full")
	uc := NewIngestUsecase(ledger, store, "scribe")

	ev := domain.Event{ExternalID: "a5", Author: "bob", Text: "hello"}
	if _, err := uc.ProcessEvent(context.Background(), ev); err == nil {
		t.Fatal("expected error from failing store")
	}
	if ledger.seen["a5"] {
		t.Error("event marked despite store failure")
	}

	// Next tick retries and succeeds.
	store.insertErr = nil
	res, err := uc.ProcessEvent(context.Background(), ev)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Status != IngestAccepted || !res.Inserted {
		t.Errorf("retry: status=%v inserted=%v, want accepted+inserted", res.Status, res.Inserted)
	}
}

func TestProcessEventMarkFailureRetried(t *testing.T) {
	ledger := newMockLedger()
	ledger.markErr = errors.New("ledger io")
	store := newMockStore()
	uc := NewIngestUsecase(ledger, store, "scribe")

	ev := domain.Event{ExternalID: "a6", Author: "bob", Text: "hello"}
	if _, err := uc.ProcessEvent(context.Background(), ev); err == nil {
		t.Fatal("expected error from failing ledger")
	}

	// Retry: row exists already, count must not double, mark succeeds.
	ledger.markErr = nil
	res, err := uc.ProcessEvent(context.Background(), ev)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Inserted {
		t.Error("retry inserted a second row")
	}
	if store.counts["bob"] != 1 {
		t.Errorf("bob count = %d, want 1", store.counts["bob"])
	}
	if !ledger.seen["a6"] {
		t.Error("ledger not marked on retry")
	}
}
