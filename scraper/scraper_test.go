package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/go-cricket-live/config"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://example.test/"
	cfg.Parallelism = 2
	cfg.MaxRetries = 0
	cfg.RetryBackoff = time.Millisecond
	cfg.RetryBackoffMax = 4 * time.Millisecond
	return cfg
}

func newTestClient(t *testing.T, cfg *config.Config, transport *httpmock.MockTransport) *Client {
	t.Helper()
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.WithTransport(transport)
	return c
}

func TestNewClientRejectsHostlessURL(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = "/relative"
	if _, err := NewClient(cfg); err == nil {
		t.Fatalf("expected error for base url without host")
	}
}

func TestRetryPolicyRespectsLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2
	rp := newRetryPolicy(cfg, NewMetrics())
	failure := errors.New("boom")

	if _, ok := rp.Next(context.Background(), 1, failure); !ok {
		t.Fatalf("first retry should be allowed")
	}
	if _, ok := rp.Next(context.Background(), 2, failure); !ok {
		t.Fatalf("second retry should be allowed")
	}
	if _, ok := rp.Next(context.Background(), 3, failure); ok {
		t.Fatalf("third retry should not be allowed")
	}
	if got := rp.TotalRetries(); got != 2 {
		t.Fatalf("total retries = %d, want 2", got)
	}
}

func TestRetryPolicySkipsPermanentFailures(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 3
	rp := newRetryPolicy(cfg, nil)

	tests := []struct {
		name string
		err  error
	}{
		{name: "not found", err: ErrNotFound{Err: errors.New("Not Found")}},
		{name: "forbidden", err: ErrForbidden{Err: errors.New("Forbidden")}},
		{name: "canceled", err: context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := rp.Next(context.Background(), 1, tt.err); ok {
				t.Fatalf("retry allowed for %v", tt.err)
			}
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := rp.Next(ctx, 1, errors.New("boom")); ok {
		t.Fatalf("retry allowed after cancellation")
	}
}

func TestRetryPolicyBackoffCapped(t *testing.T) {
	cfg := testConfig()
	cfg.RetryBackoff = 200 * time.Millisecond
	cfg.RetryBackoffMax = 500 * time.Millisecond
	rp := newRetryPolicy(cfg, nil)

	if got := rp.backoff(1); got != 200*time.Millisecond {
		t.Fatalf("backoff(1) = %v, want 200ms", got)
	}
	if got := rp.backoff(2); got != 400*time.Millisecond {
		t.Fatalf("backoff(2) = %v, want 400ms", got)
	}
	if got := rp.backoff(4); got != cfg.RetryBackoffMax {
		t.Fatalf("backoff(4) = %v, want %v", got, cfg.RetryBackoffMax)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   string
	}{
		{name: "nil", err: nil, statusCode: 0, expected: "unknown"},
		{name: "context timeout", err: context.DeadlineExceeded, statusCode: 0, expected: "timeout"},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, statusCode: 0, expected: "timeout"},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, statusCode: 0, expected: "connection"},
		{name: "forbidden", err: nil, statusCode: http.StatusForbidden, expected: "forbidden"},
		{name: "not found", err: nil, statusCode: http.StatusNotFound, expected: "not_found"},
		{name: "rate limited", err: nil, statusCode: http.StatusTooManyRequests, expected: "rate_limited"},
		{name: "canceled", err: context.Canceled, statusCode: 0, expected: "canceled"},
		{name: "other", err: errors.New("some other error"), statusCode: 0, expected: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorTypeLabel(classifyError(tt.err, tt.statusCode)); got != tt.expected {
				t.Fatalf("classifyError(%v, %d) = %q, want %q", tt.err, tt.statusCode, got, tt.expected)
			}
		})
	}
}

func TestFetchListing(t *testing.T) {
	cfg := testConfig()
	page := `<html><body><nav class="cb-mat-mnu"><a href="/live-cricket-scores/1">A vs B - Live</a></nav></body></html>`

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/", htmlResponder(page))

	c := newTestClient(t, cfg, transport)
	body, err := c.FetchListing(context.Background())
	if err != nil {
		t.Fatalf("fetch listing: %v", err)
	}
	if string(body) != page {
		t.Fatalf("body = %q, want %q", body, page)
	}
}

func TestFetchScorecardAndCommentaryURLs(t *testing.T) {
	cfg := testConfig()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/api/html/cricket-scorecard/33238",
		htmlResponder("<div id=\"innings_1\"></div>"))
	transport.RegisterResponder("GET", "http://example.test/api/cricket-match/commentary/33238",
		httpmock.NewStringResponder(http.StatusOK, `{"miniscore":{}}`))

	c := newTestClient(t, cfg, transport)

	scorecard, err := c.FetchScorecard(context.Background(), "33238")
	if err != nil {
		t.Fatalf("fetch scorecard: %v", err)
	}
	if string(scorecard) != "<div id=\"innings_1\"></div>" {
		t.Fatalf("unexpected scorecard body %q", scorecard)
	}

	commentary, err := c.FetchCommentary(context.Background(), "33238")
	if err != nil {
		t.Fatalf("fetch commentary: %v", err)
	}
	if string(commentary) != `{"miniscore":{}}` {
		t.Fatalf("unexpected commentary body %q", commentary)
	}
}

func TestFetchHTTPStatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{status: http.StatusTooManyRequests, expected: "rate_limited"},
		{status: http.StatusForbidden, expected: "forbidden"},
		{status: http.StatusNotFound, expected: "not_found"},
		{status: http.StatusInternalServerError, expected: "other"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			cfg := testConfig()
			transport := httpmock.NewMockTransport()
			transport.RegisterResponder("GET", "http://example.test/", httpmock.NewStringResponder(tt.status, ""))

			c := newTestClient(t, cfg, transport)
			_, err := c.FetchListing(context.Background())
			if err == nil {
				t.Fatalf("expected error for status %d", tt.status)
			}

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("error %T is not a *FetchError", err)
			}
			if fetchErr.Phase != PhaseListing {
				t.Fatalf("phase = %q, want %q", fetchErr.Phase, PhaseListing)
			}
			if got := ErrorType(err); got != tt.expected {
				t.Fatalf("error type = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2

	var calls int32
	responder := func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return httpmock.NewStringResponse(http.StatusServiceUnavailable, ""), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, "ok"), nil
	}

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/api/html/cricket-scorecard/7", responder)

	c := newTestClient(t, cfg, transport)
	body, err := c.FetchScorecard(context.Background(), "7")
	if err != nil {
		t.Fatalf("fetch scorecard: %v", err)
	}
	if string(body) != "ok" {
		t.Fatalf("body = %q, want ok", body)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
	if got := c.TotalRetries(); got != 2 {
		t.Fatalf("retries = %d, want 2", got)
	}
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 3

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/api/cricket-match/commentary/9",
		httpmock.NewStringResponder(http.StatusNotFound, ""))

	c := newTestClient(t, cfg, transport)
	if _, err := c.FetchCommentary(context.Background(), "9"); err == nil {
		t.Fatalf("expected error")
	}
	if got := transport.GetTotalCallCount(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
	if got := c.TotalRetries(); got != 0 {
		t.Fatalf("retries = %d, want 0", got)
	}
}

func TestFetchCanceledContext(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/", htmlResponder("<html></html>"))

	c := newTestClient(t, cfg, transport)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchListing(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := transport.GetTotalCallCount(); got != 0 {
		t.Fatalf("calls = %d, want 0", got)
	}
}

func TestFetchCanceledInFlight(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2

	started := make(chan struct{}, 1)
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/", slowResponder(started, 2*time.Second))

	c := newTestClient(t, cfg, transport)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	begin := time.Now()
	_, err := c.FetchListing(ctx)
	elapsed := time.Since(begin)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if elapsed > time.Second {
		t.Fatalf("fetch took %v after cancel", elapsed)
	}
	if got := c.TotalRetries(); got != 0 {
		t.Fatalf("retries = %d, want 0", got)
	}
}

func TestFetchDeadlineInFlight(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/", slowResponder(make(chan struct{}, 1), 2*time.Second))

	c := newTestClient(t, cfg, transport)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	begin := time.Now()
	_, err := c.FetchListing(ctx)
	elapsed := time.Since(begin)

	var timeout ErrTimeout
	if !errors.As(err, &timeout) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want timeout on the context deadline", err)
	}
	if got := ErrorType(err); got != "timeout" {
		t.Fatalf("error type = %q, want timeout", got)
	}
	if elapsed > time.Second {
		t.Fatalf("fetch ignored the deadline: took %v", elapsed)
	}
}

// slowResponder signals started and then answers after delay unless the
// request context ends first.
func slowResponder(started chan<- struct{}, delay time.Duration) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
			return httpmock.NewStringResponse(http.StatusOK, "<html></html>"), nil
		}
	}
}

func htmlResponder(body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(http.StatusOK, body)
	resp.Header.Set("Content-Type", "text/html")
	return httpmock.ResponderFromResponse(resp)
}
