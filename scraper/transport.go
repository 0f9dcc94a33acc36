package scraper

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
)

// fetchIDHeader tags an outgoing request with the fetch that issued it.
// It is removed before the request leaves the process.
const fetchIDHeader = "X-Cricket-Fetch"

// fetchTransport is installed once on the shared collector backend. Each
// fetch binds its context under a fresh id and tags its request with that
// id; RoundTrip then sends the request under a context that ends when
// either the fetch context or the request's own context ends.
type fetchTransport struct {
	mu       sync.RWMutex
	base     http.RoundTripper
	contexts map[string]context.Context
	seq      atomic.Uint64
}

func newFetchTransport(base http.RoundTripper) *fetchTransport {
	return &fetchTransport{
		base:     base,
		contexts: make(map[string]context.Context),
	}
}

func (t *fetchTransport) setBase(base http.RoundTripper) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.base = base
}

// bind registers ctx and returns the id to tag requests with, and a
// release func to call once the fetch is over.
func (t *fetchTransport) bind(ctx context.Context) (string, func()) {
	id := strconv.FormatUint(t.seq.Add(1), 10)

	t.mu.Lock()
	t.contexts[id] = ctx
	t.mu.Unlock()

	return id, func() {
		t.mu.Lock()
		delete(t.contexts, id)
		t.mu.Unlock()
	}
}

func (t *fetchTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get(fetchIDHeader)

	t.mu.RLock()
	base := t.base
	fetchCtx, bound := t.contexts[id]
	t.mu.RUnlock()

	if id == "" {
		return base.RoundTrip(req)
	}

	ctx, cancel := context.WithCancel(req.Context())
	stop := func() bool { return false }
	if bound {
		stop = context.AfterFunc(fetchCtx, cancel)
	}
	release := func() {
		stop()
		cancel()
	}

	out := req.Clone(ctx)
	out.Header.Del(fetchIDHeader)

	resp, err := base.RoundTrip(out)
	if err != nil {
		release()
		return nil, err
	}
	resp.Body = &releaseOnClose{ReadCloser: resp.Body, release: release}
	return resp, nil
}

// releaseOnClose keeps the request context alive until the body is closed.
type releaseOnClose struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (b *releaseOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}
