package newsapi

import (
	"context"

	"github.com/samvad-hq/samvad-news-pager/internal/domain"
	"github.com/samvad-hq/samvad-news-pager/pkg/httpclient"
)

// Query fixes the feed a source serves. The values are request filters
// only; tagging cached articles with them is the mediator's job.
type Query struct {
	Country  string
	Category string
}

// Source fetches one remote page of headlines. An empty result means the
// remote has no further pages.
type Source interface {
	FetchPage(ctx context.Context, q Query, page, pageSize int) ([]domain.Article, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within newsapi.
type HTTPClient = httpclient.Client
