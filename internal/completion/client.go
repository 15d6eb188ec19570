// Package completion sends a message list to a language model and returns
// the reply text.
package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kannou1/PFE/internal/config"
	"github.com/kannou1/PFE/internal/health"
	"github.com/kannou1/PFE/internal/telemetry"
	"github.com/kannou1/PFE/internal/types"
)

var (
	// ErrResponseShape is returned when a successful response carries no reply text.
	ErrResponseShape = errors.New("invalid response format from completion service")
	// ErrCircuitOpen is returned without a network call while the provider is
	// marked unhealthy.
	ErrCircuitOpen = errors.New("completion service temporarily unavailable")
)

// ValidationError rejects a message list before any network call.
type ValidationError struct {
	Index  int // -1 when the list itself is invalid
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return e.Reason
	}
	return fmt.Sprintf("message %d %s", e.Index, e.Reason)
}

// UpstreamError is a non-2xx answer from the completion service.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion API error: %d - %s", e.Status, e.Body)
}

const maxResponseBytes = 8 << 20

// Client sends one non-streaming completion per call. It does not retry.
type Client struct {
	cfg     config.CompletionConfig
	adapter Adapter
	http    *http.Client
	metrics *telemetry.Metrics
	health  *health.Tracker
}

// NewClient picks the adapter from cfg.Type; unknown types use the
// OpenAI-compatible adapter. metrics may be nil.
func NewClient(cfg config.CompletionConfig, metrics *telemetry.Metrics) *Client {
	var adapter Adapter
	switch cfg.Type {
	case "anthropic":
		adapter = NewAnthropicAdapter(cfg)
	default:
		adapter = NewOpenAIAdapter(cfg)
	}
	return &Client{
		cfg:     cfg,
		adapter: adapter,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		metrics: metrics,
	}
}

func (c *Client) Provider() string { return c.adapter.Name() }

// WithHealth gates calls on the completion circuit breaker of t.
func (c *Client) WithHealth(t *health.Tracker) *Client {
	c.health = t
	return c
}

// Validate checks a message list without sending it.
func Validate(messages []types.Message) error {
	if len(messages) == 0 {
		return &ValidationError{Index: -1, Reason: "messages must be a non-empty array"}
	}
	for i, m := range messages {
		if m.Role == "" || m.Content == "" {
			return &ValidationError{Index: i, Reason: "missing 'role' or 'content'"}
		}
	}
	return nil
}

// Complete returns the model's reply to messages.
func (c *Client) Complete(ctx context.Context, messages []types.Message) (string, error) {
	if err := Validate(messages); err != nil {
		return "", err
	}

	if !c.health.Allow(health.DependencyCompletion) {
		c.metrics.RecordCompletion(c.adapter.Name(), "circuit_open", 0)
		return "", ErrCircuitOpen
	}

	start := time.Now()
	reply, status, err := c.send(ctx, messages)
	elapsed := float64(time.Since(start).Milliseconds())
	c.recordHealth(ctx, status, err)

	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	c.metrics.RecordCompletion(c.adapter.Name(), label, elapsed)

	if err != nil {
		slog.Error("completion failed", "provider", c.adapter.Name(), "status", status, "duration_ms", elapsed, "error", err)
		return "", err
	}
	slog.Info("completion received", "provider", c.adapter.Name(), "model", c.cfg.Model, "duration_ms", elapsed)
	return reply, nil
}

// recordHealth counts transport failures, throttling and 5xx answers against
// the provider. Caller cancellations and other 4xx answers say nothing about
// it, so they only hand back the trial slot.
func (c *Client) recordHealth(ctx context.Context, status int, err error) {
	switch {
	case err == nil, errors.Is(err, ErrResponseShape):
		c.health.RecordSuccess(health.DependencyCompletion)
	case ctx.Err() != nil:
		c.health.Release(health.DependencyCompletion)
	case status == 0, status == http.StatusTooManyRequests, status >= 500:
		c.health.RecordFailure(health.DependencyCompletion)
	default:
		c.health.Release(health.DependencyCompletion)
	}
}

func (c *Client) send(ctx context.Context, messages []types.Message) (string, int, error) {
	req, err := c.adapter.BuildRequest(ctx, Request{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("send completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", resp.StatusCode, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	reply, err := c.adapter.ParseResponse(body)
	return reply, resp.StatusCode, err
}
