package newsapi

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"

	"github.com/samvad-hq/samvad-news-pager/internal/domain"
)

// flakySource fails until healed and counts calls.
type flakySource struct {
	err   error
	calls int
}

func (f *flakySource) FetchPage(context.Context, Query, int, int) ([]domain.Article, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Article{{ID: "a1"}}, nil
}

func TestBreakerPassesThroughOnSuccess(t *testing.T) {
	src := &flakySource{}
	b := NewBreakerSource("test-feed", src)

	articles, err := b.FetchPage(context.Background(), Query{}, 1, 10)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	src := &flakySource{err: errors.New("remote down")}
	b := NewBreakerSource("test-feed", src)

	for i := 0; i < 3; i++ {
		if _, err := b.FetchPage(context.Background(), Query{}, 1, 10); err == nil {
			t.Fatalf("expected failure on call %d", i+1)
		}
	}

	_, err := b.FetchPage(context.Background(), Query{}, 1, 10)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if src.calls != 3 {
		t.Fatalf("open breaker must not hit the source, saw %d calls", src.calls)
	}
}
