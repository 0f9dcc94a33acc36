package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-cricket-live/config"
)

// Request phases, used as metric labels.
const (
	PhaseListing    = "listing"
	PhaseScorecard  = "scorecard"
	PhaseCommentary = "commentary"
)

// Client fetches listing pages, scorecards and commentary feeds.
type Client struct {
	cfg       *config.Config
	collector *colly.Collector
	transport *fetchTransport
	retry     *retryPolicy
	Metrics   *Metrics
}

// NewClient builds a client configured from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	// Polling fetches the same URLs on every tick.
	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	transport := newFetchTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})
	collector.WithTransport(transport)

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Parallelism,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	metrics := NewMetrics()
	return &Client{
		cfg:       cfg,
		collector: collector,
		transport: transport,
		retry:     newRetryPolicy(cfg, metrics),
		Metrics:   metrics,
	}, nil
}

// WithTransport replaces the HTTP transport used for every fetch. Fetches
// still run under their own context.
func (c *Client) WithTransport(rt http.RoundTripper) {
	c.transport.setBase(rt)
}

// FetchListing returns the raw listing page.
func (c *Client) FetchListing(ctx context.Context) ([]byte, error) {
	return c.fetch(ctx, PhaseListing, c.cfg.ListingURL())
}

// FetchScorecard returns the raw scorecard page of a match.
func (c *Client) FetchScorecard(ctx context.Context, matchID string) ([]byte, error) {
	return c.fetch(ctx, PhaseScorecard, c.cfg.ScorecardURL(matchID))
}

// FetchCommentary returns the raw commentary feed of a match.
func (c *Client) FetchCommentary(ctx context.Context, matchID string) ([]byte, error) {
	return c.fetch(ctx, PhaseCommentary, c.cfg.CommentaryURL(matchID))
}

// CommentaryURL is the commentary feed address of a match.
func (c *Client) CommentaryURL(matchID string) string {
	return c.cfg.CommentaryURL(matchID)
}

// TotalRetries reports how many retries have been scheduled so far.
func (c *Client) TotalRetries() int {
	return c.retry.TotalRetries()
}

func (c *Client) fetch(ctx context.Context, phase, target string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	for attempt := 1; ; attempt++ {
		body, err := c.fetchOnce(ctx, phase, target)
		if err == nil {
			return body, nil
		}

		category := errorTypeLabel(err)
		c.Metrics.IncError(category)
		slog.Debug("request error",
			slog.String("phase", phase),
			slog.String("url", target),
			slog.String("category", category),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)

		delay, ok := c.retry.Next(ctx, attempt, err)
		if !ok {
			return nil, &FetchError{Phase: phase, URL: target, Err: err}
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &FetchError{Phase: phase, URL: target, Err: ctx.Err()}
		case <-timer.C:
		}
	}
}

func (c *Client) fetchOnce(ctx context.Context, phase, target string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fetchID, release := c.transport.bind(ctx)
	defer release()

	collector := c.collector.Clone()

	var (
		body       []byte
		statusCode int
		visitErr   error
	)
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set(fetchIDHeader, fetchID)
		c.Metrics.IncRequest(phase)
	})
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
		statusCode = r.StatusCode
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
		visitErr = err
	})

	start := time.Now()
	err := collector.Visit(target)
	c.Metrics.ObserveDuration(time.Since(start))

	if visitErr == nil {
		visitErr = err
	}
	if visitErr != nil {
		// An aborted request reports context.Canceled whatever ended the
		// fetch, so the fetch context decides between canceled and timeout.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, classifyError(fmt.Errorf("%w (%v)", ctxErr, visitErr), 0)
		}
		return nil, classifyError(visitErr, statusCode)
	}
	if statusCode >= http.StatusBadRequest {
		return nil, classifyError(fmt.Errorf("http status %d", statusCode), statusCode)
	}
	return body, nil
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		}
	}

	if err == nil {
		return nil
	}
	return err
}

// retryPolicy decides whether and when a failed fetch is attempted again.
type retryPolicy struct {
	cfg     *config.Config
	metrics *Metrics

	totalRetries int64
}

func newRetryPolicy(cfg *config.Config, metrics *Metrics) *retryPolicy {
	return &retryPolicy{
		cfg:     cfg,
		metrics: metrics,
	}
}

// Next returns the delay before retrying after the given failed attempt
// (1-based), or false when the fetch should give up.
func (rp *retryPolicy) Next(ctx context.Context, attempt int, err error) (time.Duration, bool) {
	if rp.cfg.MaxRetries == 0 || attempt > rp.cfg.MaxRetries {
		return 0, false
	}
	if ctx != nil && ctx.Err() != nil {
		return 0, false
	}
	if !retryable(err) {
		return 0, false
	}

	atomic.AddInt64(&rp.totalRetries, 1)
	rp.metrics.IncRetries()
	return rp.backoff(attempt), true
}

func (rp *retryPolicy) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := rp.cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := rp.cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

func (rp *retryPolicy) TotalRetries() int {
	return int(atomic.LoadInt64(&rp.totalRetries))
}

// retryable reports whether a failure may succeed on a later attempt.
// Missing and forbidden pages do not come back within a poll.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var notFound ErrNotFound
	if errors.As(err, &notFound) {
		return false
	}
	var forbidden ErrForbidden
	if errors.As(err, &forbidden) {
		return false
	}
	if errors.Is(err, colly.ErrForbiddenDomain) {
		return false
	}
	return true
}
