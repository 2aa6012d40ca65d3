package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTP is the shared client for all capability services. Outbound calls
// are bounded by a semaphore so a large meeting cannot overwhelm the
// external classification services.
type HTTP struct {
	c   *http.Client
	sem chan struct{}
}

func NewHTTP(timeout time.Duration, maxConcurrent int) *HTTP {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	return &HTTP{
		c:   &http.Client{Timeout: timeout},
		sem: make(chan struct{}, maxConcurrent),
	}
}

func (h *HTTP) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *HTTP) release() { <-h.sem }

// statusError carries the HTTP status so callers can classify transient
// failures (5xx, 429) separately from validation failures.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.status, e.body)
}

func (e *statusError) transient() bool {
	return e.status >= 500 || e.status == http.StatusTooManyRequests
}

// postJSON posts payload to url and decodes the JSON response into out.
func (h *HTTP) postJSON(ctx context.Context, url string, payload, out any) error {
	if err := h.acquire(ctx); err != nil {
		return err
	}
	defer h.release()

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &statusError{status: resp.StatusCode, body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
