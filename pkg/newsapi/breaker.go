package newsapi

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/samvad-hq/samvad-news-pager/internal/domain"
	"github.com/samvad-hq/samvad-news-pager/internal/logger"
)

// BreakerSource wraps a Source with a circuit breaker so a flapping remote
// fails fast instead of tying up every load. The mediator itself never
// retries; tripping and recovery stay a transport concern.
type BreakerSource struct {
	src Source
	cb  *gobreaker.CircuitBreaker
}

// NewBreakerSource builds a breaker around src. The breaker trips after
// three consecutive failures and probes again after the timeout.
func NewBreakerSource(name string, src Source) *BreakerSource {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WarnObj("news source breaker state changed", "breaker_state", map[string]any{
				"name": name,
				"from": from.String(),
				"to":   to.String(),
			})
		},
	}

	return &BreakerSource{
		src: src,
		cb:  gobreaker.NewCircuitBreaker(settings),
	}
}

// FetchPage delegates through the breaker.
func (b *BreakerSource) FetchPage(ctx context.Context, q Query, page, pageSize int) ([]domain.Article, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.src.FetchPage(ctx, q, page, pageSize)
	})
	if err != nil {
		return nil, err
	}
	articles, _ := res.([]domain.Article)
	return articles, nil
}
