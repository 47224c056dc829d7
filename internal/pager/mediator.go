package pager

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-news-pager/internal/domain"
	"github.com/samvad-hq/samvad-news-pager/internal/logger"
	"github.com/samvad-hq/samvad-news-pager/internal/storage"
	"github.com/samvad-hq/samvad-news-pager/pkg/newsapi"
)

// StartPage is the first remote page number.
const StartPage = 1

// ErrInconsistentState signals that the caller's paging state references
// items the local cache has no remote key for. The cache is corrupted for
// this feed; the load cannot proceed.
var ErrInconsistentState = errors.New("paging state inconsistent with local cache")

// Mediator bridges the local paged cache and the remote headlines API.
// Given a load request it resolves the remote page to fetch, fetches it,
// and persists articles together with their remote keys in one
// transaction. The caller guarantees at most one in-flight Load per
// mediator; the mediator keeps no state of its own between calls.
type Mediator struct {
	source    RemoteSource
	store     storage.Store
	query     newsapi.Query
	pageSize  int
	sanitizer ArticleSanitizer
	log       logger.Logger
}

// NewMediator wires a mediator for one fixed feed (country/category pair).
// sanitizer may be nil to persist articles as fetched.
func NewMediator(source RemoteSource, store storage.Store, query newsapi.Query, pageSize int, sanitizer ArticleSanitizer, log logger.Logger) (*Mediator, error) {
	if source == nil {
		return nil, fmt.Errorf("remote source must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store must not be nil")
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Mediator{
		source:    source,
		store:     store,
		query:     query,
		pageSize:  pageSize,
		sanitizer: sanitizer,
		log:       log,
	}, nil
}

// Load performs one page load. Transport and protocol failures are
// returned wrapped for the caller's retry policy; a missing expected
// remote key surfaces as ErrInconsistentState. On success articles and
// their keys are visible together or not at all.
func (m *Mediator) Load(ctx context.Context, req LoadRequest) (LoadResult, error) {
	page, done, err := m.resolvePage(req)
	if err != nil {
		return LoadResult{}, err
	}
	if done {
		// Prepend hit the first page already; nothing to fetch or write.
		return LoadResult{EndOfPagination: true}, nil
	}

	articles, err := m.source.FetchPage(ctx, m.query, page, m.pageSize)
	if err != nil {
		return LoadResult{}, fmt.Errorf("fetch page %d: %w", page, err)
	}

	end := len(articles) == 0
	if m.sanitizer != nil {
		articles = m.sanitizer.Sanitize(articles)
	}
	tagged := m.tag(articles)
	keys := buildRemoteKeys(tagged, page, end)

	err = m.store.Update(func(tx storage.WriteTx) error {
		if req.Direction == Refresh {
			if err := tx.ClearRemoteKeys(); err != nil {
				return err
			}
			if err := tx.ClearArticles(); err != nil {
				return err
			}
		}
		if err := tx.InsertArticles(page, tagged); err != nil {
			return err
		}
		return tx.InsertRemoteKeys(keys)
	})
	if err != nil {
		return LoadResult{}, fmt.Errorf("persist page %d: %w", page, err)
	}

	m.log.InfoObj("page load completed", "load_result", map[string]any{
		"direction":    req.Direction.String(),
		"page":         page,
		"articles":     len(tagged),
		"end_of_pages": end,
		"country":      m.query.Country,
		"category":     m.query.Category,
	})
	return LoadResult{EndOfPagination: end}, nil
}

// resolvePage maps the request onto a remote page number. done is set by
// prepend when the first page is already loaded.
func (m *Mediator) resolvePage(req LoadRequest) (page int, done bool, err error) {
	switch req.Direction {
	case Refresh:
		id, ok := req.State.ClosestToAnchor()
		if !ok {
			return StartPage, false, nil
		}
		key, err := m.store.RemoteKey(id)
		if err != nil {
			return 0, false, fmt.Errorf("lookup anchor remote key: %w", err)
		}
		if key == nil || key.NextPage == nil {
			return StartPage, false, nil
		}
		return *key.NextPage - 1, false, nil

	case Prepend:
		id, ok := req.State.FirstItemID()
		if !ok {
			return 0, false, fmt.Errorf("prepend with no loaded items: %w", ErrInconsistentState)
		}
		key, err := m.store.RemoteKey(id)
		if err != nil {
			return 0, false, fmt.Errorf("lookup first-item remote key: %w", err)
		}
		if key == nil {
			return 0, false, fmt.Errorf("first item %s has no remote key: %w", id, ErrInconsistentState)
		}
		if key.PrevPage == nil {
			return 0, true, nil
		}
		return *key.PrevPage, false, nil

	case Append:
		id, ok := req.State.LastItemID()
		if !ok {
			return 0, false, fmt.Errorf("append with no loaded items: %w", ErrInconsistentState)
		}
		key, err := m.store.RemoteKey(id)
		if err != nil {
			return 0, false, fmt.Errorf("lookup last-item remote key: %w", err)
		}
		if key == nil || key.NextPage == nil {
			return 0, false, fmt.Errorf("last item %s has no next-page key: %w", id, ErrInconsistentState)
		}
		return *key.NextPage, false, nil

	default:
		return 0, false, fmt.Errorf("unknown load direction %d", req.Direction)
	}
}

// tag stamps the mediator's fixed feed filters onto fetched articles.
// The remote delivers articles untagged; tags are local metadata only and
// never feed back into the remote page key.
func (m *Mediator) tag(articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	for i, art := range articles {
		art.Country = m.query.Country
		art.Category = m.query.Category
		out[i] = art
	}
	return out
}

// buildRemoteKeys computes one remote key per article for the fetched page.
func buildRemoteKeys(articles []domain.Article, page int, end bool) []domain.RemoteKey {
	var prev, next *int
	if page != StartPage {
		p := page - 1
		prev = &p
	}
	if !end {
		n := page + 1
		next = &n
	}

	keys := make([]domain.RemoteKey, 0, len(articles))
	for _, art := range articles {
		keys = append(keys, domain.RemoteKey{ArticleID: art.ID, PrevPage: prev, NextPage: next})
	}
	return keys
}
