package notify

import "time"

// Event describes one committed page load of a feed. Interested systems
// (cache warmers, UI invalidation hooks, monitoring) subscribe via
// configured notifiers.
type Event struct {
	Feed       string    `json:"feed"`
	Direction  string    `json:"direction"`
	Page       int       `json:"page"`
	Articles   int       `json:"articles"`
	EndOfPages bool      `json:"end_of_pages"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent constructs an Event for the given feed and load outcome.
func NewEvent(feed, direction string, page, articles int, endOfPages bool) Event {
	return Event{
		Feed:       feed,
		Direction:  direction,
		Page:       page,
		Articles:   articles,
		EndOfPages: endOfPages,
		OccurredAt: time.Now().UTC(),
	}
}
