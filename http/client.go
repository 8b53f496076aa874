package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/go-cleanhttp"
)

// DefaultBaseURL is the production Pylon API endpoint.
const DefaultBaseURL = "https://api.usepylon.com"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the default number of retry attempts.
const DefaultMaxRetries = 3

// DefaultRetryWaitMin is the default initial wait between retries.
const DefaultRetryWaitMin = 1 * time.Second

// DefaultRetryWaitMax is the default cap on the wait between retries.
const DefaultRetryWaitMax = 30 * time.Second

// SleepFunc pauses for d or until ctx is done. Tests substitute a fake
// clock so retry timing can be asserted without real sleeping.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Client is the retrying JSON transport used by the Pylon client. Only
// GET requests are retried; writes go out exactly once.
type Client struct {
	client       *http.Client
	baseURL      string
	userAgent    string
	maxRetries   int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	jitter       bool
	logger       *slog.Logger
	sleep        SleepFunc

	// beforeRequest is called before each attempt (for auth headers, etc.)
	beforeRequest func(req *http.Request) error
}

// ClientConfig holds configuration for Client.
type ClientConfig struct {
	Client        *http.Client
	BaseURL       string
	UserAgent     string
	MaxRetries    int
	RetryWaitMin  time.Duration
	RetryWaitMax  time.Duration
	Jitter        bool
	Logger        *slog.Logger
	Sleep         SleepFunc
	BeforeRequest func(req *http.Request) error
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		client:        cfg.Client,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:     cfg.UserAgent,
		maxRetries:    cfg.MaxRetries,
		retryWaitMin:  cfg.RetryWaitMin,
		retryWaitMax:  cfg.RetryWaitMax,
		jitter:        cfg.Jitter,
		logger:        cfg.Logger,
		sleep:         cfg.Sleep,
		beforeRequest: cfg.BeforeRequest,
	}

	if c.client == nil {
		c.client = cleanhttp.DefaultPooledClient()
		c.client.Timeout = DefaultTimeout
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.retryWaitMin <= 0 {
		c.retryWaitMin = DefaultRetryWaitMin
	}
	if c.retryWaitMax <= 0 {
		c.retryWaitMax = DefaultRetryWaitMax
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.sleep == nil {
		c.sleep = Sleep
	}

	return c
}

// BaseURL returns the base URL the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CloseIdleConnections releases idle connections held by the underlying
// HTTP client.
func (c *Client) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}

// Pagination is the cursor block the API returns on list responses.
type Pagination struct {
	Cursor      *string `json:"cursor"`
	HasNextPage bool    `json:"has_next_page"`
}

// Response wraps an HTTP response with decoded envelope metadata.
type Response struct {
	*http.Response

	// Cursor is the opaque cursor for the next page, when the API reports one.
	Cursor string

	// HasNextPage reports whether more pages are available.
	HasNextPage bool

	// RequestID identifies the request for support escalation.
	RequestID string
}

// envelope is the standard Pylon response wrapper. Some endpoints return
// the entity bare, without the data key; decoding falls back to the whole
// body in that case.
type envelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
	RequestID  string          `json:"request_id"`
}

// Get performs a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Patch performs a PATCH request and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do executes an HTTP request against the API. GET requests are retried
// on transient network errors, 429 and 5xx responses, with exponential
// backoff; a Retry-After header overrides the computed delay. All other
// methods are sent exactly once.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) (*Response, error) {
	var bodyBytes []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyBytes = data
	}

	url := c.baseURL + path
	retryable := method == http.MethodGet

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryWaitMin
	bo.MaxInterval = c.retryWaitMax
	bo.Multiplier = 2
	if !c.jitter {
		bo.RandomizationFactor = 0
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		if c.beforeRequest != nil {
			if err := c.beforeRequest(req); err != nil {
				return nil, fmt.Errorf("prepare request: %w", err)
			}
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("pylon request failed: %w", err)
			if !retryable || attempt == c.maxRetries {
				return nil, lastErr
			}
			if err := c.waitBeforeRetry(ctx, method, path, attempt, bo.NextBackOff()); err != nil {
				return nil, err
			}
			continue
		}

		if retryable && retryStatus(resp.StatusCode) && attempt < c.maxRetries {
			delay := bo.NextBackOff()
			if hint := retryAfterHint(resp); hint > 0 {
				delay = hint
			}
			drainBody(resp)
			if err := c.waitBeforeRetry(ctx, method, path, attempt, delay); err != nil {
				return nil, err
			}
			continue
		}

		return c.handleResponse(resp, path, out)
	}

	return nil, lastErr
}

// handleResponse checks status and decodes the response envelope.
func (c *Client) handleResponse(resp *http.Response, path string, out any) (*Response, error) {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, parseError(resp, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	res := &Response{
		Response:  resp,
		RequestID: resp.Header.Get("X-Request-Id"),
	}
	if len(body) == 0 || resp.StatusCode == http.StatusNoContent {
		return res, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Data != nil {
		if env.RequestID != "" {
			res.RequestID = env.RequestID
		}
		if env.Pagination != nil {
			res.HasNextPage = env.Pagination.HasNextPage
			if env.Pagination.Cursor != nil {
				res.Cursor = *env.Pagination.Cursor
			}
		}
		if out != nil && !bytes.Equal(env.Data, []byte("null")) {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return nil, fmt.Errorf("decode pylon response: %w", err)
			}
		}
		return res, nil
	}

	// No data wrapper; decode the whole body.
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("decode pylon response: %w", err)
		}
	}

	return res, nil
}

// parseError parses an error response into the matching typed error.
func parseError(resp *http.Response, path string) error {
	body, _ := io.ReadAll(resp.Body)

	requestID := resp.Header.Get("X-Request-Id")

	var errResp struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	_ = json.Unmarshal(body, &errResp)

	message := errResp.Message
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &RateLimitError{
			RetryAfter: retryAfterHint(resp),
			Endpoint:   path,
			RequestID:  requestID,
		}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{
			StatusCode: resp.StatusCode,
			Message:    message,
			Errors:     errResp.Errors,
			Endpoint:   path,
			RequestID:  requestID,
		}
	default:
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    message,
			Endpoint:   path,
			RequestID:  requestID,
		}
	}
}

// waitBeforeRetry logs the upcoming retry and sleeps for delay.
func (c *Client) waitBeforeRetry(ctx context.Context, method, path string, attempt int, delay time.Duration) error {
	c.logger.Debug("retrying pylon request",
		"method", method,
		"path", path,
		"attempt", attempt+1,
		"delay", delay)
	return c.sleep(ctx, delay)
}

// retryStatus reports whether a status code warrants a retry.
func retryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// retryAfterHint parses the Retry-After header as integer seconds.
func retryAfterHint(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

// drainBody discards and closes a response body so the connection can be
// reused across retries.
func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
