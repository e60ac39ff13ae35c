package redis

import (
	"context"
	"testing"
	"time"

	"github.com/shelfmark/shelfmark/internal/domain"
)

func nextSnapshot(t *testing.T, sub *Subscription) []*domain.Bookmark {
	t.Helper()
	select {
	case snap := <-sub.Snapshots:
		return snap
	case err := <-sub.Errs:
		t.Fatalf("subscription error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

func TestWatchDeliversSnapshotPerMutation(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	sub, err := store.Watch(ctx, "u1")
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer sub.Unsubscribe()

	// Initial snapshot: empty collection.
	if snap := nextSnapshot(t, sub); len(snap) != 0 {
		t.Fatalf("initial snapshot has %d entries, want 0", len(snap))
	}

	// Create.
	if err := store.Create(ctx, "u1", testRecord("b1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if snap := nextSnapshot(t, sub); len(snap) != 1 || snap[0].BookID != "b1" {
		t.Fatalf("snapshot after create = %+v", snap)
	}

	// Update.
	if err := store.UpdateFields(ctx, "u1", "b1", map[string]interface{}{FieldMemo: "note"}); err != nil {
		t.Fatalf("UpdateFields() error = %v", err)
	}
	if snap := nextSnapshot(t, sub); len(snap) != 1 || snap[0].Memo != "note" {
		t.Fatalf("snapshot after update = %+v", snap)
	}

	// Delete.
	if err := store.Delete(ctx, "u1", "b1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if snap := nextSnapshot(t, sub); len(snap) != 0 {
		t.Fatalf("snapshot after delete has %d entries, want 0", len(snap))
	}
}

func TestWatchScopedPerUser(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	sub, err := store.Watch(ctx, "u1")
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer sub.Unsubscribe()
	nextSnapshot(t, sub) // initial

	// Another user's mutation must not produce a snapshot for u1.
	if err := store.Create(ctx, "u2", testRecord("b9")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	select {
	case snap := <-sub.Snapshots:
		t.Fatalf("unexpected snapshot for u1: %+v", snap)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	store, _ := setupTestStore(t)

	sub, err := store.Watch(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	nextSnapshot(t, sub)

	sub.Unsubscribe()
	sub.Unsubscribe() // must not panic

	// Channel closes once the delivery goroutine winds down.
	select {
	case _, ok := <-sub.Snapshots:
		if ok {
			t.Error("received snapshot after Unsubscribe")
		}
	case <-time.After(2 * time.Second):
		t.Error("snapshot channel not closed after Unsubscribe")
	}
}
