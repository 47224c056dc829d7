package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-news-pager/internal/config"
	"github.com/samvad-hq/samvad-news-pager/internal/logger"
	"github.com/samvad-hq/samvad-news-pager/internal/pager"
	"github.com/samvad-hq/samvad-news-pager/internal/storage"
	"github.com/samvad-hq/samvad-news-pager/pkg/httpclient"
	"github.com/samvad-hq/samvad-news-pager/pkg/newsapi"
	"github.com/samvad-hq/samvad-news-pager/pkg/notify"
)

// Pager represents the feed pager runtime. It owns one mediator for the
// configured feed and keeps the local cache warm: a refresh followed by
// appends up to the prefetch budget, repeated on a timer. Committed loads
// are announced through the notifier fanout.
type Pager struct {
	cfg             *config.Config
	mediator        *pager.Mediator
	store           storage.Store
	fanout          *notify.Fanout
	feed            string
	refreshInterval time.Duration
	prefetchPages   int
	log             logger.Logger
}

// NewPager builds a pager runtime from config.
func NewPager(ctx context.Context, cfg *config.Config, log logger.Logger) (*Pager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.BBoltPath,
	})

	feed := cfg.Country + "/" + cfg.Category
	client := newsapi.NewClient(cfg.APIBaseURL, cfg.APIKey, httpclient.NewRestyClient(cfg.APITimeout))
	source := newsapi.NewBreakerSource(feed, client)

	var sanitizer pager.ArticleSanitizer
	if cfg.SanitizeHTML {
		sanitizer = pager.NewHTMLSanitizer()
	}

	query := newsapi.Query{Country: cfg.Country, Category: cfg.Category}
	mediator, err := pager.NewMediator(source, store, query, cfg.PageSize, sanitizer, log)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init mediator: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg.NotifiersFile, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Pager{
		cfg:             cfg,
		mediator:        mediator,
		store:           store,
		fanout:          fanout,
		feed:            feed,
		refreshInterval: cfg.RefreshInterval,
		prefetchPages:   cfg.PrefetchPages,
		log:             log,
	}, nil
}

// buildFanout loads the notifier registry and instantiates enabled sinks.
// An empty notifiers file path runs the pager without notifications.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*notify.Fanout, error) {
	if path == "" {
		return notify.NewFanout(nil), nil
	}

	reg, err := notify.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load notifiers registry: %w", err)
	}

	enabled := reg.Enabled()
	notifiers, err := notify.BuildAll(ctx, notify.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, cfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   cfg.ID,
			"type": cfg.Type,
		})
	}
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})

	return notify.NewFanout(notifiers), nil
}

// Run starts the refresh loop until the context is cancelled.
func (p *Pager) Run(ctx context.Context) error {
	if p == nil || p.mediator == nil {
		return fmt.Errorf("pager is not initialized")
	}
	defer p.closeStore()
	defer p.closeFanout()

	p.log.InfoObj("pager loop starting", "pager_state", map[string]any{
		"feed":             p.feed,
		"page_size":        p.cfg.PageSize,
		"prefetch_pages":   p.prefetchPages,
		"notifiers_count":  p.fanout.Size(),
		"refresh_interval": p.refreshInterval.String(),
	})

	if err := p.runOnce(ctx); err != nil {
		p.log.ErrorObj("initial feed fill failed", "error", err)
	}

	ticker := time.NewTicker(p.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoObj("pager loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := p.runOnce(ctx); err != nil {
				p.log.ErrorObj("scheduled feed fill failed", "error", err)
			}
		}
	}
}

// runOnce performs a single refresh-and-fill pass.
func (p *Pager) runOnce(ctx context.Context) error {
	start := time.Now()
	p.log.InfoObj("feed fill started", "fill_meta", map[string]any{
		"feed":       p.feed,
		"started_at": start.UTC(),
	})

	loaded, err := p.fillOnce(ctx)
	if err != nil {
		return err
	}

	p.log.InfoObj("feed fill completed", "fill_meta", map[string]any{
		"feed":         p.feed,
		"pages_loaded": loaded,
		"elapsed_ms":   time.Since(start).Milliseconds(),
	})
	return nil
}

// fillOnce refreshes the feed then appends until end of pagination or the
// prefetch budget is spent. The runtime acts as the mediator's caller:
// between loads it rebuilds the paging state from what the store holds.
func (p *Pager) fillOnce(ctx context.Context) (int, error) {
	res, err := p.load(ctx, pager.Refresh)
	if err != nil {
		return 0, err
	}
	loaded := 1

	for !res.EndOfPagination && loaded < p.prefetchPages {
		res, err = p.load(ctx, pager.Append)
		if err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

// load issues one mediator load for the current cache state and announces
// the outcome.
func (p *Pager) load(ctx context.Context, dir pager.Direction) (pager.LoadResult, error) {
	state, err := p.currentState()
	if err != nil {
		return pager.LoadResult{}, err
	}

	res, err := p.mediator.Load(ctx, pager.LoadRequest{Direction: dir, State: state})
	if err != nil {
		return pager.LoadResult{}, err
	}

	articles, _, err := p.store.Counts()
	if err != nil {
		return res, err
	}
	page := lastLoadedPage(state, dir)
	evt := notify.NewEvent(p.feed, dir.String(), page, articles, res.EndOfPagination)
	if _, err := p.fanout.Notify(ctx, evt); err != nil {
		p.log.WarnObj("feed event delivery incomplete", "notify_error", err.Error())
	}
	return res, nil
}

// currentState snapshots the cache as a paging state. The runtime has no
// user scroll position, so the anchor stays unset and refreshes restart
// from the first page.
func (p *Pager) currentState() (pager.PagingState, error) {
	pages, err := p.store.Pages()
	if err != nil {
		return pager.PagingState{}, fmt.Errorf("read cached pages: %w", err)
	}
	return pager.StateFromPages(pages, nil, p.cfg.PageSize), nil
}

// lastLoadedPage reports which remote page the load targeted, for event
// payloads only.
func lastLoadedPage(state pager.PagingState, dir pager.Direction) int {
	if dir == pager.Refresh || len(state.Pages) == 0 {
		return pager.StartPage
	}
	return state.Pages[len(state.Pages)-1].Number + 1
}

// closeFanout releases notifiers holding external connections.
func (p *Pager) closeFanout() {
	if p == nil || p.fanout == nil {
		return
	}
	if err := p.fanout.Close(); err != nil {
		p.log.ErrorObj("notifier shutdown failed", "error", err)
	}
}

// closeStore safely closes the storage backend, logging any errors encountered.
func (p *Pager) closeStore() {
	if p == nil || p.store == nil {
		return
	}
	if err := p.store.Close(); err != nil {
		p.log.ErrorObj("storage close failed", "error", err)
	}
}
