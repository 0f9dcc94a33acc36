package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-cricket-live/app"
	"github.com/aluiziolira/go-cricket-live/config"
	"github.com/aluiziolira/go-cricket-live/dashboard"
	"github.com/aluiziolira/go-cricket-live/models"
	"github.com/aluiziolira/go-cricket-live/pipeline"
	"github.com/aluiziolira/go-cricket-live/scraper"
)

const clearScreen = "\033[H\033[2J"

// cliFlags holds the command line values that override the loaded config.
type cliFlags struct {
	configPath    string
	tickRate      time.Duration
	matchID       int
	parallelism   int
	maxRetries    int
	timeout       time.Duration
	respectRobots bool
	baseURL       string
	outputFile    string
	outputFormat  string
	metricsAddr   string
	verbose       bool
}

// registerFlags binds every flag to f. The short forms -t and -m share the
// variables of -tick-rate and -match-id.
func registerFlags(fs *flag.FlagSet, defaults *config.Config) *cliFlags {
	f := &cliFlags{}
	fs.StringVar(&f.configPath, "config", os.Getenv("CRICKET_CONFIG"), "YAML config file")
	fs.DurationVar(&f.tickRate, "tick-rate", defaults.TickRate, "Match details refresh rate")
	fs.DurationVar(&f.tickRate, "t", defaults.TickRate, "Shorthand for -tick-rate")
	fs.IntVar(&f.matchID, "match-id", defaults.MatchID, "ID of the match to follow live (0 follows all live matches)")
	fs.IntVar(&f.matchID, "m", defaults.MatchID, "Shorthand for -match-id")
	fs.IntVar(&f.parallelism, "parallel", defaults.Parallelism, "Number of matches fetched concurrently")
	fs.IntVar(&f.maxRetries, "max-retries", defaults.MaxRetries, "Maximum retry attempts per request")
	fs.DurationVar(&f.timeout, "timeout", defaults.Timeout, "HTTP request timeout")
	fs.BoolVar(&f.respectRobots, "respect-robots", defaults.RespectRobotsTxt, "Respect robots.txt directives")
	fs.StringVar(&f.baseURL, "base-url", defaults.BaseURL, "Base URL of the scores site")
	fs.StringVar(&f.outputFile, "output", defaults.OutputFile, "Record snapshots to this file (empty disables recording)")
	fs.StringVar(&f.outputFormat, "format", defaults.OutputFormat, "Output format: csv, json, or dual")
	fs.StringVar(&f.metricsAddr, "metrics-addr", defaults.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	fs.BoolVar(&f.verbose, "v", defaults.Verbose, "Enable verbose logging")
	return f
}

// apply copies the flags given on the command line onto cfg; they win over
// file and environment.
func (f *cliFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "tick-rate", "t":
			cfg.TickRate = f.tickRate
		case "match-id", "m":
			cfg.MatchID = f.matchID
		case "parallel":
			cfg.Parallelism = f.parallelism
		case "max-retries":
			cfg.MaxRetries = f.maxRetries
		case "timeout":
			cfg.Timeout = f.timeout
		case "respect-robots":
			cfg.RespectRobotsTxt = f.respectRobots
		case "base-url":
			cfg.BaseURL = f.baseURL
		case "output":
			cfg.OutputFile = f.outputFile
		case "format":
			cfg.OutputFormat = strings.ToLower(f.outputFormat)
		case "metrics-addr":
			cfg.MetricsAddr = f.metricsAddr
		case "v":
			cfg.Verbose = f.verbose
		}
	})
}

func main() {
	flags := registerFlags(flag.CommandLine, config.DefaultConfig())
	flag.Parse()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	flags.apply(flag.CommandLine, cfg)

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("cricket", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := scraper.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("initialise client: %w", err)
	}

	if cfg.MetricsAddr != "" {
		metricsServer := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(client.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	opts := []app.Option{
		app.WithMatchID(cfg.MatchID),
		app.WithParallelism(cfg.Parallelism),
		app.WithMetrics(client.Metrics),
	}

	if cfg.OutputFile != "" {
		writer, err := createWriter(cfg.OutputFormat, cfg.OutputFile)
		if err != nil {
			return fmt.Errorf("create writer: %w", err)
		}
		p := pipeline.NewPipeline(ctx, writer, cfg)
		p.Start(1)
		if cfg.Verbose {
			p.StartMetricsReporting(time.Minute)
		}
		defer closeRecorder(p, writer)
		opts = append(opts, app.WithRecorder(p))
		slog.Info("recording snapshots",
			slog.String("file", cfg.OutputFile),
			slog.String("format", cfg.OutputFormat),
		)
	}

	a := app.New(client, opts...)
	if err := a.Load(ctx); err != nil {
		return err
	}

	matches := a.Matches()
	if len(matches) == 0 {
		fmt.Println(dashboard.NoLiveMatches)
		return nil
	}

	st := dashboard.NewState(len(matches))
	keys := readKeys(os.Stdin)
	ticker := time.NewTicker(cfg.TickRate)
	defer ticker.Stop()

	for {
		draw(os.Stdout, matches, st)

		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if quit := handleKey(key, st); quit {
				return nil
			}
		case <-ticker.C:
			result := a.Refresh(ctx)
			matches = a.Matches()
			st.UpdateOnTick(result.Removed, len(matches))
			if len(matches) == 0 {
				fmt.Fprint(os.Stdout, clearScreen)
				fmt.Println(dashboard.NoLiveMatches)
				return nil
			}
		}
	}
}

// handleKey applies one line of input to the view and reports whether the
// user asked to quit.
func handleKey(key string, st *dashboard.State) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "q", "quit":
		return true
	case "n", "l":
		st.NextTab()
	case "p", "h":
		st.PrevTab()
	case "j":
		st.ScrollDown()
	case "k":
		st.ScrollUp()
	}
	return false
}

// readKeys forwards stdin lines until it is closed.
func readKeys(r io.Reader) <-chan string {
	keys := make(chan string)
	go func() {
		defer close(keys)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			keys <- scanner.Text()
		}
	}()
	return keys
}

func draw(w io.Writer, matches []models.Match, st *dashboard.State) {
	if st.FocusedTab < len(matches) {
		st.ClampScroll(len(matches[st.FocusedTab].Scorecard))
	}
	fmt.Fprint(w, clearScreen)
	if err := dashboard.Render(w, matches, st); err != nil {
		slog.Error("render", slog.Any("error", err))
		return
	}
	fmt.Fprintln(w, "\nn/p: switch match  j/k: scroll innings  q: quit (then Enter)")
}

func closeRecorder(p *pipeline.Pipeline, writer pipeline.OutputWriter) {
	if err := p.Close(); err != nil {
		slog.Error("pipeline shutdown failed", slog.Any("error", err))
	}

	metrics := p.GetMetrics()
	slog.Info("recording finished",
		slog.Any("processed", metrics["processed_snapshots"]),
		slog.Any("skipped", metrics["validation_errors"]),
	)

	if err := writer.Validate(); err != nil {
		slog.Warn("output validation failed", slog.Any("error", err))
	}
	if err := writer.Close(); err != nil {
		slog.Error("close writer", slog.Any("error", err))
	}
}

func createWriter(format, filename string) (pipeline.OutputWriter, error) {
	switch format {
	case "json":
		return pipeline.NewJSONWriter(filename)
	case "csv":
		return pipeline.NewCSVWriter(filename)
	case "dual":
		return pipeline.NewDualWriter(filename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// newLogger writes to stderr so log lines stay out of the dashboard.
func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
