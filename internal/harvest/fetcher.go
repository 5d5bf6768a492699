package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/interfaces"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// HTTPFetcher retrieves index pages over HTTP with a browser user agent and
// bounded retry on transient failures.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	retries   uint64
	logger    *common.Logger
}

// NewHTTPFetcher creates a fetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration, logger *common.Logger) *HTTPFetcher {
	if logger == nil {
		logger = common.NewDefaultLogger()
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		retries:   2,
		logger:    logger,
	}
}

// Fetch retrieves the page body, retrying transient failures with exponential
// backoff.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", f.userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithMaxRetries(backoff.WithContext(backoff.NewExponentialBackOff(), ctx), f.retries)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

type cacheEntry struct {
	body    []byte
	fetched time.Time
}

// CachingFetcher wraps a fetcher with a per-URL TTL cache so repeated runs
// within the window do not re-download index pages.
type CachingFetcher struct {
	inner interfaces.PageFetcher
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachingFetcher wraps inner with a TTL cache. A non-positive ttl disables
// caching entirely.
func NewCachingFetcher(inner interfaces.PageFetcher, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.ttl <= 0 {
		return c.inner.Fetch(ctx, url)
	}

	c.mu.Lock()
	if entry, ok := c.entries[url]; ok && time.Since(entry.fetched) < c.ttl {
		c.mu.Unlock()
		return entry.body, nil
	}
	c.mu.Unlock()

	body, err := c.inner.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[url] = cacheEntry{body: body, fetched: time.Now()}
	c.mu.Unlock()
	return body, nil
}
