package data

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roomscribe/roomscribe/internal/biz/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInsertIfAbsent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rowID, inserted, err := store.InsertIfAbsent(ctx, "m1", "bob", "hello", true)
	if err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}
	if !inserted || rowID == 0 {
		t.Fatalf("first insert: inserted=%v rowID=%d", inserted, rowID)
	}

	_, inserted, err = store.InsertIfAbsent(ctx, "m1", "bob", "hello", true)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted {
		t.Error("duplicate external_id reported as inserted")
	}

	count, err := store.TotalVisibleCount(ctx)
	if err != nil {
		t.Fatalf("TotalVisibleCount: %v", err)
	}
	if count != 1 {
		t.Errorf("visible count = %d, want 1", count)
	}
}

func TestRecordActivityUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.RecordActivity(ctx, "bob"); err != nil {
			t.Fatalf("RecordActivity: %v", err)
		}
	}
	if err := store.RecordActivity(ctx, "alice"); err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}

	top, err := store.TopUsers(ctx, 10)
	if err != nil {
		t.Fatalf("TopUsers: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("got %d users, want 2", len(top))
	}
	if top[0].Author != "bob" || top[0].MessageCount != 3 {
		t.Errorf("top user = %s/%d, want bob/3", top[0].Author, top[0].MessageCount)
	}
	if top[1].Author != "alice" || top[1].MessageCount != 1 {
		t.Errorf("second user = %s/%d, want alice/1", top[1].Author, top[1].MessageCount)
	}
	if !top[0].TrackingEnabled {
		t.Error("tracking not enabled by default")
	}
}

func TestTrackingPreference(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Unknown authors default to tracked.
	enabled, err := store.GetTracking(ctx, "ghost")
	if err != nil {
		t.Fatalf("GetTracking: %v", err)
	}
	if !enabled {
		t.Error("unknown author not tracked by default")
	}

	if err := store.SetTracking(ctx, "bob", false); err != nil {
		t.Fatalf("SetTracking: %v", err)
	}
	enabled, _ = store.GetTracking(ctx, "bob")
	if enabled {
		t.Error("tracking still enabled after SetTracking(false)")
	}

	// Flipping the preference must not touch the count.
	if err := store.RecordActivity(ctx, "bob"); err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}
	if err := store.SetTracking(ctx, "bob", true); err != nil {
		t.Fatalf("SetTracking: %v", err)
	}
	top, _ := store.TopUsers(ctx, 1)
	if len(top) != 1 || top[0].MessageCount != 1 {
		t.Errorf("message_count disturbed by SetTracking: %+v", top)
	}

	untracked, err := store.UntrackedUsers(ctx)
	if err != nil {
		t.Fatalf("UntrackedUsers: %v", err)
	}
	if len(untracked) != 0 {
		t.Errorf("untracked = %v, want empty", untracked)
	}

	store.SetTracking(ctx, "carol", false)
	untracked, _ = store.UntrackedUsers(ctx)
	if len(untracked) != 1 || untracked[0] != "carol" {
		t.Errorf("untracked = %v, want [carol]", untracked)
	}
}

func TestLeaderboardMatchesVisibleRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// All-visible workload: per-user counters must equal a direct count
	// of visible rows.
	messages := []struct{ id, author string }{
		{"m1", "bob"}, {"m2", "bob"}, {"m3", "alice"}, {"m4", "bob"}, {"m5", "alice"},
	}
	for _, m := range messages {
		_, inserted, err := store.InsertIfAbsent(ctx, m.id, m.author, "text", true)
		if err != nil || !inserted {
			t.Fatalf("insert %s: inserted=%v err=%v", m.id, inserted, err)
		}
		if err := store.RecordActivity(ctx, m.author); err != nil {
			t.Fatalf("RecordActivity: %v", err)
		}
	}

	top, err := store.TopUsers(ctx, 10)
	if err != nil {
		t.Fatalf("TopUsers: %v", err)
	}
	for _, u := range top {
		rows, err := store.SearchMessages(ctx, domain.MessageFilter{Author: u.Author})
		if err != nil {
			t.Fatalf("SearchMessages: %v", err)
		}
		if int64(len(rows)) != u.MessageCount {
			t.Errorf("%s: counter=%d, visible rows=%d", u.Author, u.MessageCount, len(rows))
		}
	}
}

func TestSearchMessagesFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.InsertIfAbsent(ctx, "m1", "bob", "hello world", true)
	store.InsertIfAbsent(ctx, "m2", "alice", "goodbye world", true)
	store.InsertIfAbsent(ctx, "m3", "bob", "hidden words", false)

	rows, err := store.SearchMessages(ctx, domain.MessageFilter{Text: "world"})
	if err != nil {
		t.Fatalf("SearchMessages: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("text filter returned %d rows, want 2", len(rows))
	}

	rows, _ = store.SearchMessages(ctx, domain.MessageFilter{Author: "bob"})
	if len(rows) != 1 {
		t.Errorf("author filter returned %d rows, want 1 (hidden row excluded)", len(rows))
	}

	rows, _ = store.SearchMessages(ctx, domain.MessageFilter{Text: "hidden"})
	if len(rows) != 0 {
		t.Error("search returned an invisible row")
	}
}

func TestDailyStatsCumulative(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.InsertIfAbsent(ctx, "m1", "bob", "a", true)
	store.InsertIfAbsent(ctx, "m2", "bob", "b", true)
	store.InsertIfAbsent(ctx, "m3", "bob", "c", false)

	days, err := store.DailyStats(ctx)
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("got %d day buckets, want 1", len(days))
	}
	if days[0].Count != 2 || days[0].Cumulative != 2 {
		t.Errorf("day bucket = %+v, want count=2 cumulative=2", days[0])
	}
}

func TestAllVisibleMessagesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.InsertIfAbsent(ctx, "m1", "bob", "first", true)
	store.InsertIfAbsent(ctx, "m2", "alice", "second", true)

	all, err := store.AllVisibleMessages(ctx)
	if err != nil {
		t.Fatalf("AllVisibleMessages: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d messages, want 2", len(all))
	}
	if all[0].Text != "first" || all[1].Text != "second" {
		t.Errorf("messages out of order: %q, %q", all[0].Text, all[1].Text)
	}
}
