package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samvad-hq/samvad-news-pager/internal/domain"
)

// memoryStore implements Store in process memory. Used for tests and for
// running without a cache file; Update keeps bbolt's all-or-nothing
// semantics by staging mutations and committing only on success.
type memoryStore struct {
	mu    sync.RWMutex
	pages map[int][]domain.Article
	keys  map[string]domain.RemoteKey
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		pages: make(map[int][]domain.Article),
		keys:  make(map[string]domain.RemoteKey),
	}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Pages() ([]domain.CachedPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	numbers := make([]int, 0, len(m.pages))
	for n := range m.pages {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	out := make([]domain.CachedPage, 0, len(numbers))
	for _, n := range numbers {
		arts := make([]domain.Article, len(m.pages[n]))
		copy(arts, m.pages[n])
		out = append(out, domain.CachedPage{Number: n, Articles: arts})
	}
	return out, nil
}

func (m *memoryStore) Articles() ([]domain.Article, error) {
	pages, err := m.Pages()
	if err != nil {
		return nil, err
	}
	var out []domain.Article
	for _, p := range pages {
		out = append(out, p.Articles...)
	}
	return out, nil
}

func (m *memoryStore) RemoteKey(articleID string) (*domain.RemoteKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key, ok := m.keys[articleID]
	if !ok {
		return nil, nil
	}
	cp := key
	return &cp, nil
}

func (m *memoryStore) Counts() (int, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	articles := 0
	for _, arts := range m.pages {
		articles += len(arts)
	}
	return articles, len(m.keys), nil
}

func (m *memoryStore) Update(fn func(tx WriteTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := &memoryWriteTx{
		pages: clonePages(m.pages),
		keys:  cloneKeys(m.keys),
	}
	if err := fn(staged); err != nil {
		return err
	}
	m.pages = staged.pages
	m.keys = staged.keys
	return nil
}

// memoryWriteTx mutates staged copies; the store adopts them on commit.
type memoryWriteTx struct {
	pages map[int][]domain.Article
	keys  map[string]domain.RemoteKey
}

func (t *memoryWriteTx) ClearArticles() error {
	t.pages = make(map[int][]domain.Article)
	return nil
}

func (t *memoryWriteTx) ClearRemoteKeys() error {
	t.keys = make(map[string]domain.RemoteKey)
	return nil
}

func (t *memoryWriteTx) InsertArticles(page int, articles []domain.Article) error {
	if page < 0 {
		return fmt.Errorf("negative page number %d", page)
	}
	for _, art := range articles {
		t.removeArticle(art.ID)
		t.pages[page] = append(t.pages[page], art)
	}
	return nil
}

// removeArticle drops any staged row with the given id so re-inserted
// articles keep a single position, matching the bbolt backend.
func (t *memoryWriteTx) removeArticle(id string) {
	for n, arts := range t.pages {
		for i, art := range arts {
			if art.ID != id {
				continue
			}
			t.pages[n] = append(arts[:i:i], arts[i+1:]...)
			if len(t.pages[n]) == 0 {
				delete(t.pages, n)
			}
			return
		}
	}
}

func (t *memoryWriteTx) InsertRemoteKeys(keys []domain.RemoteKey) error {
	for _, key := range keys {
		if key.ArticleID == "" {
			return fmt.Errorf("remote key with empty article id")
		}
		t.keys[key.ArticleID] = key
	}
	return nil
}

func clonePages(src map[int][]domain.Article) map[int][]domain.Article {
	out := make(map[int][]domain.Article, len(src))
	for n, arts := range src {
		cp := make([]domain.Article, len(arts))
		copy(cp, arts)
		out[n] = cp
	}
	return out
}

func cloneKeys(src map[string]domain.RemoteKey) map[string]domain.RemoteKey {
	out := make(map[string]domain.RemoteKey, len(src))
	for id, key := range src {
		out[id] = key
	}
	return out
}
