package corpus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Fetcher retrieves one source file by its catalog-relative path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// NewFetcher selects a fetcher from the corpus base: an http(s) URL gets an
// HTTP fetcher, anything else is treated as a local directory.
func NewFetcher(base string) Fetcher {
	if u, err := url.Parse(base); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return &HTTPFetcher{Base: strings.TrimRight(base, "/"), Client: http.DefaultClient}
	}
	return &DirFetcher{Dir: base}
}

// HTTPFetcher fetches source files relative to a base URL.
type HTTPFetcher struct {
	Base   string
	Client *http.Client
}

// Fetch implements Fetcher. A non-2xx status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Base+"/"+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status for %s: %s", path, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// DirFetcher reads source files from a local directory tree.
type DirFetcher struct {
	Dir string
}

// Fetch implements Fetcher.
func (f *DirFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.Dir, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// CachingFetcher memoizes successful fetches by path for the lifetime of the
// session. The cache is unbounded; corpus files are finite and the process
// is short-lived.
type CachingFetcher struct {
	inner Fetcher

	mu    sync.Mutex
	cache map[string][]byte
}

// NewCachingFetcher wraps inner with a session-lifetime cache.
func NewCachingFetcher(inner Fetcher) *CachingFetcher {
	return &CachingFetcher{inner: inner, cache: map[string][]byte{}}
}

// Fetch implements Fetcher. Failed fetches are not cached.
func (f *CachingFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	data, ok := f.cache[path]
	f.mu.Unlock()
	if ok {
		return data, nil
	}
	data, err := f.inner.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.cache[path] = data
	f.mu.Unlock()
	return data, nil
}
