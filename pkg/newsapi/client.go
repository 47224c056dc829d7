package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-news-pager/internal/domain"
	"github.com/samvad-hq/samvad-news-pager/pkg/httpclient"
)

const (
	headlinesPath  = "/v2/top-headlines"
	defaultTimeout = 15 * time.Second
)

// Client implements Source against a NewsAPI-compatible endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPClient
}

// NewClient builds a headlines client. A nil http client falls back to the
// default resty client.
func NewClient(baseURL, apiKey string, client HTTPClient) *Client {
	if client == nil {
		client = httpclient.NewRestyClient(defaultTimeout)
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client:  client,
	}
}

// headlinesResponse mirrors the top-headlines payload.
type headlinesResponse struct {
	Status       string            `json:"status"`
	Code         string            `json:"code"`
	Message      string            `json:"message"`
	TotalResults int               `json:"totalResults"`
	Articles     []headlineArticle `json:"articles"`
}

type headlineArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

// FetchPage retrieves one page of headlines for the given query.
func (c *Client) FetchPage(ctx context.Context, q Query, page, pageSize int) ([]domain.Article, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("pageSize must be >= 1, got %d", pageSize)
	}

	query := map[string]string{
		"page":     strconv.Itoa(page),
		"pageSize": strconv.Itoa(pageSize),
	}
	if country := strings.TrimSpace(q.Country); country != "" {
		query["country"] = country
	}
	if category := strings.TrimSpace(q.Category); category != "" {
		query["category"] = category
	}

	headers := map[string]string{"X-Api-Key": c.apiKey}

	resp, err := c.client.Get(ctx, c.baseURL+headlinesPath, headers, query)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines page %d: %w", page, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("headlines returned status %d body: %s", resp.StatusCode(), responseSnippet(body))
	}

	var payload headlinesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode headlines response: %w", err)
	}
	if !strings.EqualFold(payload.Status, "ok") {
		return nil, fmt.Errorf("headlines api error %s: %s", payload.Code, payload.Message)
	}

	return buildArticles(payload.Articles), nil
}

// buildArticles converts wire entries to domain articles, dropping entries
// without a URL since the URL is the identity source.
func buildArticles(entries []headlineArticle) []domain.Article {
	articles := make([]domain.Article, 0, len(entries))
	for _, entry := range entries {
		url := strings.TrimSpace(entry.URL)
		if url == "" {
			continue
		}
		articles = append(articles, domain.Article{
			ID:          hashURL(url),
			Title:       strings.TrimSpace(entry.Title),
			URL:         url,
			Description: strings.TrimSpace(entry.Description),
			ImageURL:    strings.TrimSpace(entry.URLToImage),
			Source:      strings.TrimSpace(entry.Source.Name),
			Author:      strings.TrimSpace(entry.Author),
			PublishedAt: parsePublishedAt(entry.PublishedAt),
		})
	}
	return articles
}

// parsePublishedAt accepts the RFC3339 timestamps the API emits; anything
// else yields a zero time rather than failing the page.
func parsePublishedAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
