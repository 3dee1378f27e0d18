// Package sidebetz delivers compiled hand reports to the analytics endpoint.
package sidebetz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultURL = "https://dev.sidebetz.ai/api/next-hand"

type Config struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

// Outcome describes one delivery attempt.
type Outcome struct {
	RequestID string
	Sent      bool
	Status    int
	Err       error
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *log.Logger
}

// New returns a client. A nil httpClient gets one with cfg.Timeout; a nil
// logger logs through the standard logger.
func New(cfg Config, httpClient *http.Client, logger *log.Logger) *Client {
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{cfg: cfg, http: httpClient, log: logger}
}

func (c *Client) Enabled() bool { return c.cfg.Enabled }
func (c *Client) URL() string   { return c.cfg.URL }

// Send posts the payload as JSON. It never fails the caller: a disabled
// client does nothing, and network errors or non-2xx answers are logged and
// reported in the Outcome.
func (c *Client) Send(ctx context.Context, payload any) Outcome {
	if !c.cfg.Enabled {
		return Outcome{}
	}
	out := Outcome{RequestID: uuid.NewString()}
	out.Status, out.Err = c.post(ctx, out.RequestID, payload)
	out.Sent = out.Err == nil
	if out.Err != nil {
		c.log.Printf("sidebetz: delivery to %s failed (request %s): %v", c.cfg.URL, out.RequestID, out.Err)
	} else {
		c.log.Printf("sidebetz: delivered to %s (request %s, status %d)", c.cfg.URL, out.RequestID, out.Status)
	}
	return out
}

func (c *Client) post(ctx context.Context, requestID string, payload any) (int, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode payload: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("sidebetz http %d: %s", resp.StatusCode, truncate(buf.String(), 800))
	}
	return resp.StatusCode, nil
}

// WriteFile stores the payload as indented JSON for inspection.
func WriteFile(path string, payload any) error {
	b, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
