package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Fetcher retrieves the raw bytes of a stored artifact by its reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// HTTPFetcher downloads artifacts from remote URLs with a per-request timeout.
type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPFetcher builds a fetcher. A zero timeout falls back to 15 seconds.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Fetch issues a GET for the given URL and returns the body bytes.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build artifact request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch artifact: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read artifact body: %w", err)
	}
	return data, nil
}

// RoutingFetcher dispatches remote URL references to an HTTP fetcher and
// everything else to a local one.
type RoutingFetcher struct {
	remote Fetcher
	local  Fetcher
}

// NewRoutingFetcher builds the dispatching fetcher.
func NewRoutingFetcher(remote, local Fetcher) *RoutingFetcher {
	return &RoutingFetcher{remote: remote, local: local}
}

// Fetch routes on the reference scheme.
func (f *RoutingFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return f.remote.Fetch(ctx, ref)
	}
	return f.local.Fetch(ctx, ref)
}

// LocalFetcher resolves artifact references against a LocalStorage base dir.
type LocalFetcher struct {
	store *LocalStorage
}

// NewLocalFetcher wraps an existing LocalStorage handle.
func NewLocalFetcher(store *LocalStorage) *LocalFetcher {
	return &LocalFetcher{store: store}
}

// Fetch reads a stored artifact from disk.
func (f *LocalFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.store.Path(ref))
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}
