package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds client configuration.
type Config struct {
	BaseURL          string        `koanf:"base_url"`
	ListingPath      string        `koanf:"listing_path"`
	ScorecardPath    string        `koanf:"scorecard_path"`
	CommentaryPath   string        `koanf:"commentary_path"`
	TickRate         time.Duration `koanf:"tick_rate"`
	MatchID          int           `koanf:"match_id"` // 0 follows every live match
	Parallelism      int           `koanf:"parallelism"`
	Timeout          time.Duration `koanf:"timeout"`
	MaxRetries       int           `koanf:"max_retries"`
	RetryBackoff     time.Duration `koanf:"retry_backoff"`
	RetryBackoffMax  time.Duration `koanf:"retry_backoff_max"`
	UserAgent        string        `koanf:"user_agent"`
	RespectRobotsTxt bool          `koanf:"respect_robots_txt"`

	OutputFile         string `koanf:"output_file"`   // empty disables recording
	OutputFormat       string `koanf:"output_format"` // csv, json, or dual
	BatchSize          int    `koanf:"batch_size"`
	PipelineBufferSize int    `koanf:"pipeline_buffer_size"`
	DedupeMaxSize      int    `koanf:"dedupe_max_size"`

	MetricsAddr string `koanf:"metrics_addr"`
	Verbose     bool   `koanf:"verbose"`
}

// DefaultConfig returns defaults that target the public site.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "https://www.cricbuzz.com",
		ListingPath:        "/",
		ScorecardPath:      "/api/html/cricket-scorecard/",
		CommentaryPath:     "/api/cricket-match/commentary/",
		TickRate:           10 * time.Second,
		MatchID:            0,
		Parallelism:        4,
		Timeout:            10 * time.Second,
		MaxRetries:         2,
		RetryBackoff:       200 * time.Millisecond,
		RetryBackoffMax:    2 * time.Second,
		UserAgent:          "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		RespectRobotsTxt:   false,
		OutputFile:         "",
		OutputFormat:       "csv",
		BatchSize:          16,
		PipelineBufferSize: 64,
		DedupeMaxSize:      256,
		MetricsAddr:        "",
		Verbose:            false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.ScorecardPath == "" {
		return fmt.Errorf("scorecard path cannot be empty")
	}
	if c.CommentaryPath == "" {
		return fmt.Errorf("commentary path cannot be empty")
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive")
	}
	if c.MatchID < 0 {
		return fmt.Errorf("match id cannot be negative")
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.OutputFile != "" {
		if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
			return fmt.Errorf("output format must be csv, json, or dual")
		}
		if c.BatchSize <= 0 {
			return fmt.Errorf("batch size must be positive")
		}
		if c.PipelineBufferSize <= 0 {
			return fmt.Errorf("pipeline buffer size must be positive")
		}
		if c.DedupeMaxSize <= 0 {
			return fmt.Errorf("dedupe max size must be positive")
		}
	}

	return nil
}

// ListingURL is the page listing the current matches.
func (c *Config) ListingURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.ListingPath
}

// ScorecardURL is the HTML scorecard of a match.
func (c *Config) ScorecardURL(matchID string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.ScorecardPath + matchID
}

// CommentaryURL is the JSON commentary feed of a match.
func (c *Config) CommentaryURL(matchID string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.CommentaryPath + matchID
}
