package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/shelfmark/shelfmark/internal/domain"
	"github.com/shelfmark/shelfmark/internal/logger"
	redisstore "github.com/shelfmark/shelfmark/internal/store/redis"
)

func setupBookmarks(t *testing.T) *Bookmarks {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBookmarks(redisstore.NewStore(client), logger.Nop())
}

func testBook(id string) *domain.Book {
	return &domain.Book{
		ID:        id,
		Title:     "Snow Country",
		Authors:   []string{"Yasunari Kawabata"},
		Publisher: "Vintage",
	}
}

func TestToggleParity(t *testing.T) {
	svc := setupBookmarks(t)
	ctx := context.Background()
	book := testBook("b1")

	bookmarked, err := svc.IsBookmarked(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("IsBookmarked() error = %v", err)
	}
	if bookmarked {
		t.Fatal("bookmarked before any toggle")
	}

	// Odd number of toggles -> bookmarked, even -> not.
	for i := 1; i <= 4; i++ {
		state, err := svc.Toggle(ctx, "u1", book)
		if err != nil {
			t.Fatalf("Toggle() #%d error = %v", i, err)
		}
		want := i%2 == 1
		if state != want {
			t.Errorf("Toggle() #%d = %v, want %v", i, state, want)
		}
		got, err := svc.IsBookmarked(ctx, "u1", "b1")
		if err != nil {
			t.Fatalf("IsBookmarked() error = %v", err)
		}
		if got != want {
			t.Errorf("IsBookmarked() after toggle #%d = %v, want %v", i, got, want)
		}
	}
}

func TestMemoRequiresBookmark(t *testing.T) {
	svc := setupBookmarks(t)
	ctx := context.Background()

	err := svc.SaveMemo(ctx, "u1", "b1", "note")
	if !errors.Is(err, domain.ErrBookmarkRequired) {
		t.Fatalf("SaveMemo() without bookmark error = %v, want ErrBookmarkRequired", err)
	}

	if _, err := svc.Toggle(ctx, "u1", testBook("b1")); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if err := svc.SaveMemo(ctx, "u1", "b1", "note"); err != nil {
		t.Fatalf("SaveMemo() after bookmark error = %v", err)
	}

	memo, err := svc.Memo(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("Memo() error = %v", err)
	}
	if memo != "note" {
		t.Errorf("Memo() = %q, want %q", memo, "note")
	}
}

func TestMemoOfUnbookmarkedIsEmpty(t *testing.T) {
	svc := setupBookmarks(t)

	memo, err := svc.Memo(context.Background(), "u1", "b1")
	if err != nil {
		t.Fatalf("Memo() error = %v", err)
	}
	if memo != "" {
		t.Errorf("Memo() = %q, want empty", memo)
	}
}

func TestSetStatusValidation(t *testing.T) {
	svc := setupBookmarks(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		bookmarked bool
		status     domain.Status
		wantErr    error
	}{
		{name: "invalid status without bookmark", status: "finished", wantErr: domain.ErrInvalidStatus},
		{name: "invalid status with bookmark", bookmarked: true, status: "finished", wantErr: domain.ErrInvalidStatus},
		{name: "valid status without bookmark", status: domain.StatusReading, wantErr: domain.ErrBookmarkRequired},
		{name: "valid status with bookmark", bookmarked: true, status: domain.StatusReading},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookID := "b-" + tt.name
			if tt.bookmarked {
				if _, err := svc.Toggle(ctx, "u1", testBook(bookID)); err != nil {
					t.Fatalf("Toggle() error = %v", err)
				}
			}
			err := svc.SetStatus(ctx, "u1", bookID, tt.status)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SetStatus() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetStatus() error = %v", err)
			}
			st, err := svc.Status(ctx, "u1", bookID)
			if err != nil {
				t.Fatalf("Status() error = %v", err)
			}
			if st == nil || *st != tt.status {
				t.Errorf("Status() = %v, want %v", st, tt.status)
			}
		})
	}
}

func TestStatusOfUnbookmarkedIsNil(t *testing.T) {
	svc := setupBookmarks(t)
	ctx := context.Background()

	st, err := svc.Status(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st != nil {
		t.Errorf("Status() = %v, want nil", *st)
	}

	if _, err := svc.Toggle(ctx, "u1", testBook("b1")); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	st, err = svc.Status(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st == nil || *st != domain.StatusTodo {
		t.Errorf("Status() of fresh bookmark = %v, want todo", st)
	}
}

// Unbookmark is a hard delete: re-bookmarking starts from defaults, prior
// annotations are not restored.
func TestRebookmarkResetsAnnotations(t *testing.T) {
	svc := setupBookmarks(t)
	ctx := context.Background()
	book := testBook("b1")

	if _, err := svc.Toggle(ctx, "u1", book); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if err := svc.SetStatus(ctx, "u1", "b1", domain.StatusReading); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if err := svc.SaveMemo(ctx, "u1", "b1", "halfway"); err != nil {
		t.Fatalf("SaveMemo() error = %v", err)
	}

	// Unbookmark, then re-bookmark.
	if state, err := svc.Toggle(ctx, "u1", book); err != nil || state {
		t.Fatalf("Toggle() = (%v, %v), want unbookmarked", state, err)
	}
	if state, err := svc.Toggle(ctx, "u1", book); err != nil || !state {
		t.Fatalf("Toggle() = (%v, %v), want bookmarked", state, err)
	}

	st, err := svc.Status(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st == nil || *st != domain.StatusTodo {
		t.Errorf("Status() after re-bookmark = %v, want todo", st)
	}
	memo, err := svc.Memo(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("Memo() error = %v", err)
	}
	if memo != "" {
		t.Errorf("Memo() after re-bookmark = %q, want empty", memo)
	}
}

func TestUnauthenticatedWrites(t *testing.T) {
	svc := setupBookmarks(t)
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, "", testBook("b1")); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("Toggle() error = %v, want ErrUnauthenticated", err)
	}
	if err := svc.SaveMemo(ctx, "", "b1", "x"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("SaveMemo() error = %v, want ErrUnauthenticated", err)
	}
	if err := svc.SetStatus(ctx, "", "b1", domain.StatusDone); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("SetStatus() error = %v, want ErrUnauthenticated", err)
	}
}

// Toggle is read-then-write, not a compare-and-swap. Concurrent toggles may
// land on either final state, but every individual store command is atomic,
// so the record must be either fully present or fully absent.
func TestConcurrentTogglesStayConsistent(t *testing.T) {
	svc := setupBookmarks(t)
	ctx := context.Background()
	book := testBook("b1")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Toggle(ctx, "u1", book)
		}()
	}
	wg.Wait()

	exists, err := svc.IsBookmarked(ctx, "u1", "b1")
	if err != nil {
		t.Fatalf("IsBookmarked() error = %v", err)
	}
	list, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if exists {
		if len(list) != 1 {
			t.Fatalf("bookmarked but List() has %d entries", len(list))
		}
		rec := list[0]
		if rec.BookID != "b1" || rec.Title == "" || !rec.Status.Valid() {
			t.Errorf("partial record after concurrent toggles: %+v", rec)
		}
	} else if len(list) != 0 {
		t.Fatalf("not bookmarked but List() has %d entries", len(list))
	}
}
