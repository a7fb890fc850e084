// Package hooks holds the outbound HTTP collaborators a publication
// touches: the site build hook, the notification webhook, and the CDN
// cache purge endpoint. All of them surface errors to the caller and
// perform no retries of their own.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DeployClient triggers a static-site rebuild through a build hook URL.
type DeployClient struct {
	url    string
	client *http.Client
}

func NewDeployClient(url string, timeout time.Duration) *DeployClient {
	return &DeployClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a build hook URL was provided.
func (d *DeployClient) Configured() bool {
	return d.url != ""
}

type deployRequest struct {
	TriggerTitle  string `json:"trigger_title"`
	TriggerBranch string `json:"trigger_branch"`
}

type deployResponse struct {
	ID string `json:"id"`
}

// Trigger fires the build hook and returns the build id reported by the
// deploy provider, if any.
func (d *DeployClient) Trigger(ctx context.Context, message string) (string, error) {
	if d.url == "" {
		return "", fmt.Errorf("deploy hook URL is not configured")
	}

	body, err := json.Marshal(deployRequest{
		TriggerTitle:  message,
		TriggerBranch: "main",
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode deploy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build deploy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deploy hook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("deploy hook returned status %d", resp.StatusCode)
	}

	var parsed deployResponse
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read deploy response: %w", err)
	}
	// Some hook providers answer with an empty body; the trigger still counts.
	if len(data) > 0 {
		_ = json.Unmarshal(data, &parsed)
	}
	return parsed.ID, nil
}
