package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIBaseURL        string        `mapstructure:"api_base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Country           string        `mapstructure:"country"`
	Category          string        `mapstructure:"category"`
	PageSize          int           `mapstructure:"page_size"`
	PrefetchPages     int           `mapstructure:"prefetch_pages"`
	RefreshSeconds    int64         `mapstructure:"refresh_interval"`
	RefreshInterval   time.Duration `mapstructure:"-"`
	APITimeoutSeconds int64         `mapstructure:"api_timeout_seconds"`
	APITimeout        time.Duration `mapstructure:"-"`

	StorageType   string `mapstructure:"storage_type"`
	BBoltPath     string `mapstructure:"bbolt_path"`
	NotifiersFile string `mapstructure:"notifiers_file"`
	SanitizeHTML  bool   `mapstructure:"sanitize_html"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-news-pager")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_base_url", "https://newsapi.org")
	v.SetDefault("api_key", "")
	v.SetDefault("country", "us")
	v.SetDefault("category", "general")
	v.SetDefault("page_size", 20)
	v.SetDefault("prefetch_pages", 3)
	v.SetDefault("refresh_interval", 900) // seconds
	v.SetDefault("api_timeout_seconds", 15)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/feed.db")
	v.SetDefault("notifiers_file", "./configs/notifiers.yaml")
	v.SetDefault("sanitize_html", true)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api_key is required")
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("invalid page_size (must be positive)")
	}
	if cfg.PrefetchPages <= 0 {
		return nil, fmt.Errorf("invalid prefetch_pages (must be positive)")
	}
	if cfg.RefreshSeconds <= 0 {
		return nil, fmt.Errorf("invalid refresh_interval (must be positive seconds)")
	}
	if cfg.APITimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid api_timeout_seconds (must be positive seconds)")
	}
	cfg.RefreshInterval = time.Duration(cfg.RefreshSeconds) * time.Second
	cfg.APITimeout = time.Duration(cfg.APITimeoutSeconds) * time.Second

	return &cfg, nil
}
