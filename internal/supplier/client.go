// Package supplier is the client of the third-party hotel inventory API.
package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/config"
	"github.com/delonixservices/b2b-agent-sub001/pkg/metrics"
)

// ErrUnavailable matches every *Error with errors.Is.
var ErrUnavailable = errors.New("hotel supplier unavailable")

// Error is a failed supplier call.
type Error struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("supplier %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("supplier %s: %s", e.Op, e.Message)
}

func (e *Error) Is(target error) bool { return target == ErrUnavailable }

// API is the supplier surface used by the hotel and booking services.
type API interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
	Packages(ctx context.Context, req PackagesRequest) (*PackagesResult, error)
	BookingPolicy(ctx context.Context, req PolicyRequest) (*Policy, error)
	Prebook(ctx context.Context, req PrebookRequest) (*PrebookResult, error)
	Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error)
	Cancel(ctx context.Context, req CancelRequest) (*CancelResult, error)
}

// Client calls the supplier with JSON POSTs authenticated by an api-key header.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.SupplierConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{baseURL: cfg.BaseURL, apiKey: cfg.APIKey, http: &http.Client{Timeout: timeout}}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// maxBody caps how much of a supplier response is read.
const maxBody = 16 << 20

func (c *Client) post(ctx context.Context, op, path string, in, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.SupplierRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	}()

	if c.baseURL == "" {
		return &Error{Op: op, Message: "supplier base url not configured"}
	}
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &Error{Op: op, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: err.Error()}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: "malformed response"}
	}
	if env.Status != "success" {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Op: op, StatusCode: resp.StatusCode, Message: "malformed response data"}
		}
	}
	return nil
}

func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	var out SearchResult
	if err := c.post(ctx, "search", "/hotels/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Packages(ctx context.Context, req PackagesRequest) (*PackagesResult, error) {
	var out PackagesResult
	if err := c.post(ctx, "packages", "/hotels/packages", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BookingPolicy(ctx context.Context, req PolicyRequest) (*Policy, error) {
	var out Policy
	if err := c.post(ctx, "policy", "/bookings/policy", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Prebook(ctx context.Context, req PrebookRequest) (*PrebookResult, error) {
	var out PrebookResult
	if err := c.post(ctx, "prebook", "/bookings/prebook", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	var out ConfirmResult
	if err := c.post(ctx, "confirm", "/bookings/confirm", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Cancel(ctx context.Context, req CancelRequest) (*CancelResult, error) {
	var out CancelResult
	if err := c.post(ctx, "cancel", "/bookings/cancel", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping reports whether the supplier base URL answers at all. Any HTTP
// response counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c.baseURL == "" {
		return errors.New("supplier base url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
