package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thicketlab/thicket/pkg/cache"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultCacheTTL = 24 * time.Hour
	retryAttempts   = 3
)

// RemoteSource fetches over HTTP from a remote repository such as Maven
// Central or a Nexus public group. Responses, including 404s, are stored in
// a byte cache so repeated runs never re-hit the repository within the TTL.
type RemoteSource struct {
	name    string
	baseURL string
	client  *http.Client
	cache   cache.Cache
	ttl     time.Duration
}

// NewRemoteSource creates a remote source. A nil byteCache disables
// cross-run caching (the Repository still caches per-run). A ttl of 0 uses
// the 24h default.
func NewRemoteSource(name, baseURL string, byteCache cache.Cache, ttl time.Duration) *RemoteSource {
	if byteCache == nil {
		byteCache = cache.NewNullCache()
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RemoteSource{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		cache:   byteCache,
		ttl:     ttl,
	}
}

// Name returns the configured source name.
func (s *RemoteSource) Name() string { return s.name }

// Fetch retrieves the path, retrying transient failures with exponential
// backoff. 404 responses are cached as definitive negative entries.
func (s *RemoteSource) Fetch(ctx context.Context, path string) ([]byte, error) {
	key := s.name + ":" + path
	if entry, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		if entry.NotFound {
			return nil, ErrNotFound
		}
		return entry.Data, nil
	}

	data, err := s.get(ctx, s.baseURL+"/"+path)
	if errors.Is(err, ErrNotFound) {
		_ = s.cache.Set(ctx, key, cache.Entry{NotFound: true}, s.ttl)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, cache.Entry{Data: data}, s.ttl)
	return data, nil
}

func (s *RemoteSource) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	delay := time.Second
	for attempt := 0; attempt < retryAttempts; attempt++ {
		data, retryable, err := s.getOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
		if attempt < retryAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return nil, lastErr
}

func (s *RemoteSource) getOnce(ctx context.Context, url string) (data []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, fmt.Errorf("fetch %s: %w", url, err)
		}
		return data, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, ErrNotFound
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
}

var _ Source = (*RemoteSource)(nil)
