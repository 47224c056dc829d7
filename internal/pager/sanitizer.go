package pager

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/samvad-news-pager/internal/domain"
)

// HTMLSanitizer strips markup from article text fields. Headline feeds
// routinely embed tags and entities in titles and descriptions; cached
// copy should be plain text. Identity fields are never touched.
type HTMLSanitizer struct{}

// NewHTMLSanitizer constructs a sanitizer.
func NewHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{}
}

// Sanitize returns a cleaned copy of the given articles.
func (s *HTMLSanitizer) Sanitize(articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	for i, art := range articles {
		art.Title = stripMarkup(art.Title)
		art.Description = stripMarkup(art.Description)
		out[i] = art
	}
	return out
}

// stripMarkup renders raw text from an HTML fragment. Parsing failures
// degrade to the original text; sanitizing never fails a load.
func stripMarkup(raw string) string {
	if raw == "" {
		return raw
	}
	if !strings.ContainsAny(raw, "<&") {
		return collapseWhitespace(raw)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapseWhitespace(raw)
	}
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
