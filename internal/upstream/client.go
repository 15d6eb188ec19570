// Package upstream reads from the university-management backend and flattens
// its documents into the records the prompt is built from.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kannou1/PFE/internal/config"
	"github.com/kannou1/PFE/internal/health"
	"github.com/kannou1/PFE/internal/telemetry"
)

// Resource names used in errors, logs and metric labels.
const (
	ResourceProfile       = "profile"
	ResourceSchedule      = "schedule"
	ResourceExams         = "exams"
	ResourceGrades        = "grades"
	ResourceAttendance    = "attendance"
	ResourceCourses       = "courses"
	ResourceClasses       = "classes"
	ResourceTeachers      = "teachers"
	ResourceStudents      = "students"
	ResourceNotifications = "notifications"
	ResourceRequests      = "requests"
	ResourceAnnouncements = "announcements"
)

const maxBodyBytes = 16 << 20

// FetchError is returned by every failed backend call: transport failures,
// timeouts, non-2xx statuses and undecodable bodies.
type FetchError struct {
	Resource string
	Path     string
	Status   int // 0 when no response was received
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s (%s): status %d: %v", e.Resource, e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s (%s): %v", e.Resource, e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a FetchError for a 404 response.
func IsNotFound(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Status == http.StatusNotFound
}

// Client issues authenticated reads against the backend. The configuration is
// read on every call so base URL, caps and the schedule fallback follow
// reloads; timeouts and pooling are fixed when the http.Client is built.
type Client struct {
	cfg     func() config.BackendConfig
	http    *http.Client
	metrics *telemetry.Metrics
	health  *health.Tracker
}

// NewHTTPClient builds the bounded-timeout client used for backend calls.
func NewHTTPClient(cfg config.BackendConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConns,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

// NewClient creates a backend client. A nil httpClient gets NewHTTPClient
// built from the current configuration; metrics may be nil.
func NewClient(cfg func() config.BackendConfig, httpClient *http.Client, metrics *telemetry.Metrics) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg())
	}
	return &Client{cfg: cfg, http: httpClient, metrics: metrics}
}

// WithHealth reports each fetch outcome to t. Fetches are never gated: a
// failed fetch already degrades to an empty section.
func (c *Client) WithHealth(t *health.Tracker) *Client {
	c.health = t
	return c
}

func (c *Client) getJSON(ctx context.Context, resource, path, token string, dest any) error {
	start := time.Now()
	status, err := c.get(ctx, path, token, dest)
	elapsed := float64(time.Since(start).Milliseconds())

	if err != nil {
		c.metrics.RecordUpstreamFetch(resource, "error", elapsed)
		if ctx.Err() == nil && (status == 0 || status >= 500) {
			c.health.RecordFailure(health.DependencyBackend)
		}
		return &FetchError{Resource: resource, Path: path, Status: status, Err: err}
	}
	c.metrics.RecordUpstreamFetch(resource, "ok", elapsed)
	c.health.RecordSuccess(health.DependencyBackend)
	slog.Debug("upstream fetch", "resource", resource, "path", path, "duration_ms", elapsed)
	return nil
}

func (c *Client) get(ctx context.Context, path, token string, dest any) (int, error) {
	url := strings.TrimRight(c.cfg().BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBodyBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(body, 512))
		return resp.StatusCode, fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(body).Decode(dest); err != nil {
		return resp.StatusCode, fmt.Errorf("decode body: %w", err)
	}
	return resp.StatusCode, nil
}
