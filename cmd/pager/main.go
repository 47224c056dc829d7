package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-news-pager/internal/app"
	"github.com/samvad-hq/samvad-news-pager/internal/config"
	"github.com/samvad-hq/samvad-news-pager/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pager start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	// The api key stays out of the logs.
	logger.InfoObj("pager starting", "config", map[string]any{
		"app_name":         cfg.AppName,
		"app_env":          cfg.Env,
		"country":          cfg.Country,
		"category":         cfg.Category,
		"page_size":        cfg.PageSize,
		"prefetch_pages":   cfg.PrefetchPages,
		"refresh_interval": cfg.RefreshInterval.String(),
		"storage_type":     cfg.StorageType,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pager, err := app.NewPager(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize pager", "error", err)
		return err
	}

	if err := pager.Run(ctx); err != nil {
		return fmt.Errorf("pager run: %w", err)
	}

	return nil
}
