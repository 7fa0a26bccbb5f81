package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// Defaults for the submission deadline and the poll schedule. Together they
// bound total request latency: one submission timeout plus
// DefaultPollAttempts * DefaultPollInterval of polling.
const (
	DefaultSubmitTimeout = 30 * time.Second
	DefaultPollAttempts  = 60
	DefaultPollInterval  = 2 * time.Second
)

const (
	submitPath = "/v1/images/generations"
	maxLogBody = 512
)

// GenerationRequest is the client-facing request forwarded to the provider.
type GenerationRequest struct {
	Prompt      string
	AspectRatio string
}

// TaskHandle identifies one unit of asynchronous work on the provider.
type TaskHandle struct {
	TaskID string
}

// Result is the normalized outcome returned to callers. URL is empty when
// the provider reported success without an artifact.
type Result struct {
	URL string
}

// Submission is the classified outcome of a submission call. Exactly one of
// Task and Result is non-nil: Task means the caller must poll, Result means
// the provider answered synchronously.
type Submission struct {
	Task   *TaskHandle
	Result *Result
}

// Client talks to the image-generation provider. It holds no per-request
// state; a single Client is safe for concurrent use.
type Client struct {
	http          *resty.Client
	baseURL       string
	apiKey        string
	logger        *slog.Logger
	submitTimeout time.Duration
	pollAttempts  int
	pollInterval  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithSubmitTimeout overrides the submission deadline.
func WithSubmitTimeout(d time.Duration) Option {
	return func(c *Client) { c.submitTimeout = d }
}

// WithPollSchedule overrides the poll attempt budget and the fixed interval
// between attempts.
func WithPollSchedule(attempts int, interval time.Duration) Option {
	return func(c *Client) {
		c.pollAttempts = attempts
		c.pollInterval = interval
	}
}

// New creates a provider client. The credential may be empty; in that case
// every call fails fast with ErrMissingCredential.
func New(baseURL, apiKey string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		http:          resty.New(),
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		logger:        logger,
		submitTimeout: DefaultSubmitTimeout,
		pollAttempts:  DefaultPollAttempts,
		pollInterval:  DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit issues the generation request and classifies the immediate
// response. Validation and credential checks happen before any network
// call. The call is bounded by the submit timeout and aborted on expiry.
func (c *Client) Submit(ctx context.Context, req GenerationRequest) (*Submission, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrMissingPrompt
	}
	if c.apiKey == "" {
		return nil, ErrMissingCredential
	}

	body := map[string]string{"prompt": req.Prompt}
	if req.AspectRatio != "" {
		body["aspect_ratio"] = req.AspectRatio
	}

	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(body).
		Post(c.baseURL + submitPath)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			submissionsTotal.WithLabelValues("timeout").Inc()
			return nil, &SubmitTimeoutError{Timeout: c.submitTimeout}
		}
		submissionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("submit generation: %w", err)
	}

	raw := string(resp.Body())

	if resp.StatusCode() == http.StatusTooManyRequests {
		submissionsTotal.WithLabelValues("quota").Inc()
		return nil, &QuotaError{Body: raw}
	}
	if resp.IsError() {
		c.logger.Warn("provider rejected submission",
			"status", resp.StatusCode(),
			"body", truncate(raw, maxLogBody),
		)
		submissionsTotal.WithLabelValues("error").Inc()
		return nil, &ProviderError{StatusCode: resp.StatusCode(), Body: raw}
	}

	parsed := gjson.Parse(raw)
	if taskID := parsed.Get("task_id").String(); taskID != "" {
		submissionsTotal.WithLabelValues("async").Inc()
		return &Submission{Task: &TaskHandle{TaskID: taskID}}, nil
	}
	for _, field := range []string{"url", "image_url"} {
		if v := parsed.Get(field).String(); v != "" {
			submissionsTotal.WithLabelValues("sync").Inc()
			return &Submission{Result: &Result{URL: v}}, nil
		}
	}

	// 2xx with neither a task handle nor an embedded result. The provider
	// contract permits this; treat it as success with no artifact.
	submissionsTotal.WithLabelValues("sync").Inc()
	return &Submission{Result: &Result{}}, nil
}

// truncate caps s at n bytes for logging.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
