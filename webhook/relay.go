package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Relay forwards processed sessions to an n8n automation webhook.
type Relay struct {
	http    *http.Client
	url     string
	backoff time.Duration
}

// NewRelay creates a relay posting to url. An empty url gives a relay that
// reports itself disabled.
func NewRelay(url string, timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Relay{http: &http.Client{Timeout: timeout}, url: url, backoff: time.Second}
}

// Enabled reports whether a target URL is configured.
func (r *Relay) Enabled() bool { return r != nil && r.url != "" }

// Send posts payload as JSON and decodes a JSON reply when there is one.
func (r *Relay) Send(ctx context.Context, payload any) (json.RawMessage, error) {
	if !r.Enabled() {
		return nil, fmt.Errorf("webhook: relay URL is not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("webhook: encode relay payload: %w", err)
	}

	var reply []byte
	err = retry(ctx, 3, r.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := r.http.Do(req)
		if err != nil {
			return &retryableError{err}
		}
		defer resp.Body.Close()
		if err := checkStatus(resp.StatusCode); err != nil {
			return err
		}
		reply, err = io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("webhook: relay: %w", err)
	}
	if !json.Valid(reply) {
		// n8n answers plain text when the workflow has no response node
		quoted, _ := json.Marshal(string(reply))
		return quoted, nil
	}
	return reply, nil
}
