package pylon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"reflect"

	"github.com/google/go-querystring/query"
	"github.com/hashicorp/go-cleanhttp"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/oauth2"

	pylonhttp "github.com/randalmurphal/pylon-go/http"
)

// Client provides access to the Pylon REST API.
type Client struct {
	cfg  *Config
	http *pylonhttp.Client

	logger      *slog.Logger
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	idempotency bool

	common service

	// Services for each API resource.
	Issues         *IssuesService
	Accounts       *AccountsService
	Contacts       *ContactsService
	Users          *UsersService
	Teams          *TeamsService
	Tags           *TagsService
	KnowledgeBases *KnowledgeBasesService
	AuditLogs      *AuditLogsService
}

// service is embedded in every resource service to share the client.
type service struct {
	client *Client
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for transport diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTokenSource authenticates requests with tokens minted by ts instead
// of the static API key.
func WithTokenSource(ts oauth2.TokenSource) ClientOption {
	return func(c *Client) {
		c.tokenSource = ts
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.cfg.UserAgent = ua
	}
}

// WithIdempotencyKeys adds a unique Idempotency-Key header to every write
// so retried callers cannot double-create resources.
func WithIdempotencyKeys() ClientOption {
	return func(c *Client) {
		c.idempotency = true
	}
}

// NewClient creates a new Pylon client. A nil cfg uses defaults; the API
// key falls back to the PYLON_API_KEY environment variable.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg = cfg.Clone()
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(EnvAPIKey)
	}

	c := &Client{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}

	if err := cfg.Validate(); err != nil {
		// A token source supplies credentials dynamically; the static
		// key is not required then.
		if !errors.Is(err, ErrConfigAPIKeyRequired) || c.tokenSource == nil {
			return nil, err
		}
	}

	httpClient := c.httpClient
	if httpClient == nil {
		transport := cleanhttp.DefaultPooledTransport()
		if cfg.HTTP.MaxIdleConns > 0 {
			transport.MaxIdleConns = cfg.HTTP.MaxIdleConns
			transport.MaxIdleConnsPerHost = cfg.HTTP.MaxIdleConns
		}
		if cfg.HTTP.IdleConnTimeout > 0 {
			transport.IdleConnTimeout = cfg.HTTP.IdleConnTimeout
		}

		httpClient = &http.Client{
			Transport: transport,
			Timeout:   cfg.HTTP.Timeout,
		}
		if httpClient.Timeout == 0 {
			httpClient.Timeout = pylonhttp.DefaultTimeout
		}
	}

	c.http = pylonhttp.NewClient(pylonhttp.ClientConfig{
		Client:        httpClient,
		BaseURL:       cfg.BaseURL,
		UserAgent:     cfg.UserAgent,
		MaxRetries:    cfg.Retry.MaxRetries,
		RetryWaitMin:  cfg.Retry.WaitMin,
		RetryWaitMax:  cfg.Retry.WaitMax,
		Jitter:        cfg.Retry.Jitter,
		Logger:        c.logger,
		BeforeRequest: c.prepareRequest,
	})

	c.common.client = c
	c.Issues = (*IssuesService)(&c.common)
	c.Accounts = (*AccountsService)(&c.common)
	c.Contacts = (*ContactsService)(&c.common)
	c.Users = (*UsersService)(&c.common)
	c.Teams = (*TeamsService)(&c.common)
	c.Tags = (*TagsService)(&c.common)
	c.KnowledgeBases = (*KnowledgeBasesService)(&c.common)
	c.AuditLogs = (*AuditLogsService)(&c.common)

	return c, nil
}

// BaseURL returns the API endpoint in use.
func (c *Client) BaseURL() string {
	return c.http.BaseURL()
}

// Close releases idle connections held by the transport.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// prepareRequest injects authentication and idempotency headers before
// every attempt.
func (c *Client) prepareRequest(req *http.Request) error {
	if c.tokenSource != nil {
		tok, err := c.tokenSource.Token()
		if err != nil {
			return fmt.Errorf("token source: %w", err)
		}
		tok.SetAuthHeader(req)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	if c.idempotency && req.Method != http.MethodGet {
		key, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("idempotency key: %w", err)
		}
		req.Header.Set("Idempotency-Key", key)
	}

	return nil
}

// addOptions encodes opts as URL query parameters on path.
func addOptions(path string, opts any) (string, error) {
	v := reflect.ValueOf(opts)
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return path, nil
	}

	u, err := url.Parse(path)
	if err != nil {
		return path, fmt.Errorf("parse path: %w", err)
	}

	qs, err := query.Values(opts)
	if err != nil {
		return path, fmt.Errorf("encode query: %w", err)
	}

	u.RawQuery = qs.Encode()
	return u.String(), nil
}

// Context key type for storing a Pylon client in a context.
type clientKey struct{}

// ClientFromContext extracts a Client from a context.
// Returns nil if no Client is present.
func ClientFromContext(ctx context.Context) *Client {
	if c, ok := ctx.Value(clientKey{}).(*Client); ok {
		return c
	}
	return nil
}

// ContextWithClient adds a Client to a context.
func ContextWithClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}
