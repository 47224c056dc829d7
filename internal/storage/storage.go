package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-news-pager/internal/domain"
)

// Package storage provides the local paged-feed cache: articles plus the
// remote pagination keys that describe where each cached page sits in the
// remote sequence.

// Store is the local cache surface the pager relies on. Reads may observe
// the cache at any time; all writes go through Update, which is atomic:
// readers never see a partially applied page.
type Store interface {
	// Pages returns cached pages ordered by remote page number, with
	// articles in insertion order.
	Pages() ([]domain.CachedPage, error)
	// Articles returns all cached articles in page/insertion order.
	Articles() ([]domain.Article, error)
	// RemoteKey returns the pagination key for the given article id, or
	// nil when no key is stored.
	RemoteKey(articleID string) (*domain.RemoteKey, error)
	// Counts reports the number of cached articles and remote keys.
	Counts() (articles, keys int, err error)
	// Update runs fn inside a single write transaction. If fn returns an
	// error the transaction is rolled back and nothing is persisted.
	Update(fn func(tx WriteTx) error) error
	Close() error
}

// WriteTx is the mutation surface available inside an Update transaction.
// The cache holds at most one row per article id: inserting an article
// whose id is already cached replaces the earlier row, so the latest
// position wins and article rows stay one-to-one with remote keys.
type WriteTx interface {
	ClearArticles() error
	ClearRemoteKeys() error
	InsertArticles(page int, articles []domain.Article) error
	InsertRemoteKeys(keys []domain.RemoteKey) error
}

// Options controls open characteristics for concrete store implementations.
type Options struct {
	OpenTimeout time.Duration
}

const defaultOpenTimeout = time.Second

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "memory":
		return newMemoryStore(), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = defaultOpenTimeout
	}
	return opts
}
