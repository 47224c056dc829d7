package pager

import (
	"github.com/samvad-hq/samvad-news-pager/internal/domain"
	"github.com/samvad-hq/samvad-news-pager/pkg/newsapi"
)

// RemoteSource aliases the newsapi source contract for clarity within pager.
type RemoteSource = newsapi.Source

// ArticleSanitizer cleans fetched articles before they are persisted.
// Implementations must never drop or reorder articles.
type ArticleSanitizer interface {
	Sanitize(articles []domain.Article) []domain.Article
}
