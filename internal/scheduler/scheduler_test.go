package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/shelfmark/shelfmark/internal/index"
	"github.com/shelfmark/shelfmark/internal/logger"
	redisstore "github.com/shelfmark/shelfmark/internal/store/redis"
)

func writeFeaturedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "featured.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFeaturedReloadSwapsIndex(t *testing.T) {
	path := writeFeaturedFile(t, `shelves:
  - name: Staff Picks
    books:
      - id: b1
        title: Dune
`)
	idx := index.NewFeaturedIndex()
	fr := NewFeaturedReloader(path, idx, logger.Nop(), time.Hour, make(chan struct{}))

	if err := fr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if idx.Count() != 1 {
		t.Errorf("index Count() = %d, want 1", idx.Count())
	}
}

func TestFeaturedReloadKeepsIndexOnBadFile(t *testing.T) {
	path := writeFeaturedFile(t, `shelves:
  - name: Staff Picks
    books:
      - id: b1
        title: Dune
`)
	idx := index.NewFeaturedIndex()
	fr := NewFeaturedReloader(path, idx, logger.Nop(), time.Hour, make(chan struct{}))
	if err := fr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if err := os.WriteFile(path, []byte(":::not yaml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := fr.Reload(context.Background()); err == nil {
		t.Fatal("Reload() error = nil, want parse error")
	}
	// Last good shelves stay served.
	if idx.Count() != 1 {
		t.Errorf("index Count() = %d after failed reload, want 1", idx.Count())
	}
}

func TestManualTriggerReloads(t *testing.T) {
	path := writeFeaturedFile(t, `shelves:
  - name: Staff Picks
    books:
      - id: b1
        title: Dune
`)
	idx := index.NewFeaturedIndex()
	trigger := make(chan struct{}, 1)
	fr := NewFeaturedReloader(path, idx, logger.Nop(), time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := fr.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer fr.Stop()
	first := idx.LastReload()

	trigger <- struct{}{}

	deadline := time.After(2 * time.Second)
	for {
		if idx.LastReload().After(first) {
			return
		}
		select {
		case <-deadline:
			t.Fatal("manual trigger did not cause a reload")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestIndexRepairerRepairsDrift(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := redisstore.NewStore(client)

	// Dangling index member with no backing document.
	key := redisstore.BookmarkIndexKey("u1")
	if err := client.ZAdd(context.Background(), key, redis.Z{Score: 1, Member: "ghost"}).Err(); err != nil {
		t.Fatal(err)
	}

	ir := NewIndexRepairer(store, logger.Nop(), time.Hour)
	if err := ir.Repair(context.Background()); err != nil {
		t.Fatalf("Repair() error = %v", err)
	}

	n, err := client.ZCard(context.Background(), key).Result()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("index still has %d members, want 0", n)
	}
}
