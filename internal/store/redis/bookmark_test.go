package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/shelfmark/shelfmark/internal/domain"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func testRecord(bookID string) *domain.Bookmark {
	return domain.NewBookmark(&domain.Book{
		ID:           bookID,
		Title:        "The Go Programming Language",
		Authors:      []string{"Alan Donovan", "Brian Kernighan"},
		ThumbnailURL: "http://books.google.com/cover.jpg",
		Publisher:    "Addison-Wesley",
	})
}

func TestCreateAndGet(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "u1", testRecord("b1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Get(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil, want record")
	}
	if got.Title != "The Go Programming Language" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Authors != "Alan Donovan, Brian Kernighan" {
		t.Errorf("Authors = %q", got.Authors)
	}
	if got.ThumbnailURL != "https://books.google.com/cover.jpg" {
		t.Errorf("ThumbnailURL = %q, want https-normalized", got.ThumbnailURL)
	}
	if got.Status != domain.StatusTodo {
		t.Errorf("Status = %q, want todo", got.Status)
	}
	if got.Memo != "" {
		t.Errorf("Memo = %q, want empty", got.Memo)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not assigned")
	}
}

func TestGetMissingIsNotAnError(t *testing.T) {
	store, _ := setupTestStore(t)

	got, err := store.Get(context.Background(), "u1", "nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil", got)
	}
}

func TestDeleteRemovesDocumentAndIndex(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "u1", testRecord("b1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Delete(ctx, "u1", "b1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	exists, err := store.Exists(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("document still exists after Delete")
	}
	// Hard delete: the key must be fully absent, not emptied.
	if mr.Exists(BookmarkKey("u1", "b1")) {
		t.Error("redis key still present after Delete")
	}
	list, err := store.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List() returned %d entries after Delete", len(list))
	}
}

func TestCreatePreservesCreatedAtOnLingeringDocument(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "u1", testRecord("b1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	first, err := store.Get(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	// Merge-create over the still-existing document.
	time.Sleep(5 * time.Millisecond)
	if err := store.Create(ctx, "u1", testRecord("b1")); err != nil {
		t.Fatalf("second Create() error = %v", err)
	}
	second, err := store.Get(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt overwritten: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("UpdatedAt not refreshed: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestUpdateFieldsRefreshesUpdatedAt(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "u1", testRecord("b1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	before, _ := store.Get(ctx, "u1", "b1")

	time.Sleep(5 * time.Millisecond)
	err := store.UpdateFields(ctx, "u1", "b1", map[string]interface{}{FieldMemo: "halfway"})
	if err != nil {
		t.Fatalf("UpdateFields() error = %v", err)
	}

	after, _ := store.Get(ctx, "u1", "b1")
	if after.Memo != "halfway" {
		t.Errorf("Memo = %q", after.Memo)
	}
	if after.Status != domain.StatusTodo {
		t.Errorf("Status clobbered by memo update: %q", after.Status)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt not refreshed: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("CreatedAt changed on update")
	}
}

func TestListOrderedByUpdatedAtDesc(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"b1", "b2", "b3"} {
		if err := store.Create(ctx, "u1", testRecord(id)); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Touch b1 so it moves to the front.
	if err := store.UpdateFields(ctx, "u1", "b1", map[string]interface{}{FieldStatus: "reading"}); err != nil {
		t.Fatalf("UpdateFields() error = %v", err)
	}

	list, err := store.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"b1", "b3", "b2"}
	if len(list) != len(want) {
		t.Fatalf("List() returned %d entries, want %d", len(list), len(want))
	}
	for i, rec := range list {
		if rec.BookID != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, rec.BookID, want[i])
		}
	}
}

func TestListScopedPerUser(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "u1", testRecord("b1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create(ctx, "u2", testRecord("b2")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list, err := store.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].BookID != "b1" {
		t.Errorf("List(u1) = %+v, want only b1", list)
	}
}

func TestRepairIndexes(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "u1", testRecord("b1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create(ctx, "u1", testRecord("b2")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Simulate a client that died mid-toggle: document gone, index entry left.
	mr.Del(BookmarkKey("u1", "b1"))
	// And the reverse: document present, index entry missing.
	if _, err := store.client.ZRem(ctx, BookmarkIndexKey("u1"), "b2").Result(); err != nil {
		t.Fatalf("ZRem() error = %v", err)
	}

	stats, err := store.RepairIndexes(ctx)
	if err != nil {
		t.Fatalf("RepairIndexes() error = %v", err)
	}
	if stats.Removed != 1 {
		t.Errorf("Removed = %d, want 1", stats.Removed)
	}
	if stats.Indexed != 1 {
		t.Errorf("Indexed = %d, want 1", stats.Indexed)
	}

	list, err := store.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].BookID != "b2" {
		t.Errorf("List() after repair = %+v, want only b2", list)
	}
}

func TestSearchCacheRoundTrip(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	books := []*domain.Book{{ID: "b1", Title: "Dune"}}
	if err := store.CacheSearch(ctx, "dune", books, time.Minute); err != nil {
		t.Fatalf("CacheSearch() error = %v", err)
	}

	got, err := store.GetCachedSearch(ctx, "dune")
	if err != nil {
		t.Fatalf("GetCachedSearch() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "b1" {
		t.Errorf("GetCachedSearch() = %+v", got)
	}

	// TTL expiry is a cache miss, not an error.
	mr.FastForward(2 * time.Minute)
	got, err = store.GetCachedSearch(ctx, "dune")
	if err != nil {
		t.Fatalf("GetCachedSearch() after expiry error = %v", err)
	}
	if got != nil {
		t.Errorf("GetCachedSearch() after expiry = %+v, want nil", got)
	}
}
