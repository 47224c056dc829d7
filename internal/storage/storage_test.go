package storage

import (
	"errors"
	"testing"

	"github.com/samvad-hq/samvad-news-pager/internal/domain"
)

func openTestStore(t *testing.T, typ string) Store {
	t.Helper()
	path := ""
	if typ == "bbolt" {
		path = t.TempDir() + "/feed.db"
	}
	store, err := NewStore(typ, path, Options{})
	if err != nil {
		t.Fatalf("NewStore %s: %v", typ, err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedPage(t *testing.T, store Store, page int, ids ...string) {
	t.Helper()
	arts := make([]domain.Article, 0, len(ids))
	keys := make([]domain.RemoteKey, 0, len(ids))
	for _, id := range ids {
		arts = append(arts, domain.Article{ID: id, Title: "t-" + id, URL: "https://example.com/" + id})
		keys = append(keys, domain.RemoteKey{ArticleID: id})
	}
	err := store.Update(func(tx WriteTx) error {
		if err := tx.InsertArticles(page, arts); err != nil {
			return err
		}
		return tx.InsertRemoteKeys(keys)
	})
	if err != nil {
		t.Fatalf("seed page %d: %v", page, err)
	}
}

func TestStorePreservesPageOrder(t *testing.T) {
	for _, typ := range []string{"memory", "bbolt"} {
		t.Run(typ, func(t *testing.T) {
			store := openTestStore(t, typ)

			// Insert out of order; reads must come back in page order.
			seedPage(t, store, 2, "c", "d")
			seedPage(t, store, 1, "a", "b")

			pages, err := store.Pages()
			if err != nil {
				t.Fatalf("Pages: %v", err)
			}
			if len(pages) != 2 || pages[0].Number != 1 || pages[1].Number != 2 {
				t.Fatalf("unexpected page layout: %+v", pages)
			}

			arts, err := store.Articles()
			if err != nil {
				t.Fatalf("Articles: %v", err)
			}
			got := make([]string, 0, len(arts))
			for _, a := range arts {
				got = append(got, a.ID)
			}
			want := []string{"a", "b", "c", "d"}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("feed order = %v, want %v", got, want)
				}
			}
		})
	}
}

func TestStoreRemoteKeyRoundTrip(t *testing.T) {
	for _, typ := range []string{"memory", "bbolt"} {
		t.Run(typ, func(t *testing.T) {
			store := openTestStore(t, typ)

			prev, next := 1, 3
			err := store.Update(func(tx WriteTx) error {
				return tx.InsertRemoteKeys([]domain.RemoteKey{
					{ArticleID: "a1", PrevPage: &prev, NextPage: &next},
					{ArticleID: "a2"},
				})
			})
			if err != nil {
				t.Fatalf("Update: %v", err)
			}

			key, err := store.RemoteKey("a1")
			if err != nil {
				t.Fatalf("RemoteKey: %v", err)
			}
			if key == nil || key.PrevPage == nil || *key.PrevPage != 1 || key.NextPage == nil || *key.NextPage != 3 {
				t.Fatalf("unexpected key a1: %+v", key)
			}

			key, err = store.RemoteKey("a2")
			if err != nil {
				t.Fatalf("RemoteKey: %v", err)
			}
			if key == nil || key.PrevPage != nil || key.NextPage != nil {
				t.Fatalf("unexpected key a2: %+v", key)
			}

			key, err = store.RemoteKey("missing")
			if err != nil {
				t.Fatalf("RemoteKey: %v", err)
			}
			if key != nil {
				t.Fatalf("expected nil for missing key, got %+v", key)
			}
		})
	}
}

func TestStoreUpdateRollsBackOnError(t *testing.T) {
	for _, typ := range []string{"memory", "bbolt"} {
		t.Run(typ, func(t *testing.T) {
			store := openTestStore(t, typ)
			seedPage(t, store, 1, "a")

			boom := errors.New("boom")
			err := store.Update(func(tx WriteTx) error {
				if err := tx.ClearArticles(); err != nil {
					return err
				}
				if err := tx.InsertArticles(2, []domain.Article{{ID: "b"}}); err != nil {
					return err
				}
				return boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("expected injected error, got %v", err)
			}

			arts, keys, err := store.Counts()
			if err != nil {
				t.Fatalf("Counts: %v", err)
			}
			if arts != 1 || keys != 1 {
				t.Fatalf("rollback failed, counts %d/%d", arts, keys)
			}
			if got, _ := store.Articles(); len(got) != 1 || got[0].ID != "a" {
				t.Fatalf("rollback failed, articles %+v", got)
			}
		})
	}
}

func TestStoreClearBothBuckets(t *testing.T) {
	for _, typ := range []string{"memory", "bbolt"} {
		t.Run(typ, func(t *testing.T) {
			store := openTestStore(t, typ)
			seedPage(t, store, 1, "a", "b")

			err := store.Update(func(tx WriteTx) error {
				if err := tx.ClearRemoteKeys(); err != nil {
					return err
				}
				return tx.ClearArticles()
			})
			if err != nil {
				t.Fatalf("Update: %v", err)
			}

			arts, keys, err := store.Counts()
			if err != nil {
				t.Fatalf("Counts: %v", err)
			}
			if arts != 0 || keys != 0 {
				t.Fatalf("clear left data behind: %d/%d", arts, keys)
			}
		})
	}
}

func TestStoreReinsertedArticleKeepsOneRow(t *testing.T) {
	for _, typ := range []string{"memory", "bbolt"} {
		t.Run(typ, func(t *testing.T) {
			store := openTestStore(t, typ)

			// The remote repeated "b" on page 2 after the feed shifted.
			seedPage(t, store, 1, "a", "b")
			seedPage(t, store, 2, "b", "c")

			arts, keys, err := store.Counts()
			if err != nil {
				t.Fatalf("Counts: %v", err)
			}
			if arts != keys {
				t.Fatalf("article rows diverged from remote keys: %d/%d", arts, keys)
			}
			if arts != 3 {
				t.Fatalf("expected 3 distinct articles, got %d", arts)
			}

			got, err := store.Articles()
			if err != nil {
				t.Fatalf("Articles: %v", err)
			}
			ids := make([]string, 0, len(got))
			for _, a := range got {
				ids = append(ids, a.ID)
			}
			// The later position wins.
			want := []string{"a", "b", "c"}
			if len(ids) != len(want) {
				t.Fatalf("feed = %v, want %v", ids, want)
			}
			for i := range want {
				if ids[i] != want[i] {
					t.Fatalf("feed = %v, want %v", ids, want)
				}
			}
		})
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported storage type")
	}
	if _, err := NewStore("bbolt", "", Options{}); err == nil {
		t.Fatalf("expected error for bbolt without a path")
	}
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/feed.db"

	store, err := NewStore("bbolt", path, Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	seedPage(t, store, 1, "a")
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewStore("bbolt", path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	arts, keys, err := reopened.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if arts != 1 || keys != 1 {
		t.Fatalf("data lost across reopen: %d/%d", arts, keys)
	}
}
