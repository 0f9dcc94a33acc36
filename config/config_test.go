package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "negative parallelism",
			mutate: func(cfg *Config) {
				cfg.Parallelism = -1
			},
			wantErr: "parallelism",
		},
		{
			name: "zero tick rate",
			mutate: func(cfg *Config) {
				cfg.TickRate = 0
			},
			wantErr: "tick rate",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative match id",
			mutate: func(cfg *Config) {
				cfg.MatchID = -3
			},
			wantErr: "match id",
		},
		{
			name: "backoff above max",
			mutate: func(cfg *Config) {
				cfg.RetryBackoff = 5 * time.Second
				cfg.RetryBackoffMax = time.Second
			},
			wantErr: "retry backoff",
		},
		{
			name: "unknown output format",
			mutate: func(cfg *Config) {
				cfg.OutputFile = "out/scores.csv"
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
		{
			name: "empty scorecard path",
			mutate: func(cfg *Config) {
				cfg.ScorecardPath = ""
			},
			wantErr: "scorecard path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestOutputFormatIgnoredWhenRecordingDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputFile = ""
	cfg.OutputFormat = "xml"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("output format should not matter without output file, got %v", err)
	}
}

func TestURLBuilders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://example.test/"

	if got, want := cfg.ListingURL(), "http://example.test/"; got != want {
		t.Fatalf("ListingURL() = %q, want %q", got, want)
	}
	if got, want := cfg.ScorecardURL("33238"), "http://example.test/api/html/cricket-scorecard/33238"; got != want {
		t.Fatalf("ScorecardURL() = %q, want %q", got, want)
	}
	if got, want := cfg.CommentaryURL("33238"), "http://example.test/api/cricket-match/commentary/33238"; got != want {
		t.Fatalf("CommentaryURL() = %q, want %q", got, want)
	}
}
