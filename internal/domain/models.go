package domain

import "time"

// Domain contains core models shared across the pager.

// Article is one entry of the locally cached paged feed. Country and
// Category are assigned by the mediator when the article is persisted;
// the remote API delivers articles untagged.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Source      string    `json:"source"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"published_at"`
	Country     string    `json:"country"`
	Category    string    `json:"category"`
}

// RemoteKey records, per cached article, which remote pages surround the
// page the article came from. PrevPage is nil for the first page;
// NextPage is nil once pagination is exhausted. Exactly one RemoteKey
// exists per cached article, written in the same transaction.
type RemoteKey struct {
	ArticleID string `json:"article_id"`
	PrevPage  *int   `json:"prev_page"`
	NextPage  *int   `json:"next_page"`
}

// CachedPage groups cached articles by the remote page they were fetched
// from, in insertion order.
type CachedPage struct {
	Number   int
	Articles []Article
}
