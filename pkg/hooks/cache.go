package hooks

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CachePurger clears the CDN cache after a publish.
type CachePurger struct {
	url    string
	client *http.Client
}

func NewCachePurger(url string, timeout time.Duration) *CachePurger {
	return &CachePurger{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *CachePurger) Configured() bool {
	return p.url != ""
}

func (p *CachePurger) Purge(ctx context.Context) error {
	if p.url == "" {
		return fmt.Errorf("cache purge URL is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build cache purge request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("cache purge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cache purge returned status %d", resp.StatusCode)
	}
	return nil
}
