package pylon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

// =============================================================================
// Test Helpers
// =============================================================================

// newTestClient creates a Client pointing to a test server.
func newTestClient(t *testing.T, handler http.Handler, opts ...ClientOption) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)

	client, err := NewClient(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}, opts...)
	if err != nil {
		server.Close()
		t.Fatalf("NewClient: %v", err)
	}

	return client, server
}

// writeData writes a single entity wrapped in the standard envelope.
func writeData(w http.ResponseWriter, data any) {
	json.NewEncoder(w).Encode(map[string]any{
		"data":       data,
		"request_id": "req_test",
	})
}

// writePage writes a list page wrapped in the standard envelope.
func writePage(w http.ResponseWriter, data any, cursor string, hasNext bool) {
	json.NewEncoder(w).Encode(map[string]any{
		"data": data,
		"pagination": map[string]any{
			"cursor":        cursor,
			"has_next_page": hasNext,
		},
		"request_id": "req_test",
	})
}

// =============================================================================
// Client Creation Tests
// =============================================================================

func TestNewClient(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		c, err := NewClient(&Config{APIKey: "key"})
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}
		if c.Issues == nil || c.Accounts == nil || c.Contacts == nil ||
			c.Users == nil || c.Teams == nil || c.Tags == nil ||
			c.KnowledgeBases == nil || c.AuditLogs == nil {
			t.Error("expected all services to be initialized")
		}
		if c.BaseURL() != DefaultBaseURL {
			t.Errorf("BaseURL = %q, want %q", c.BaseURL(), DefaultBaseURL)
		}
	})

	t.Run("missing API key", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		_, err := NewClient(&Config{})
		if err != ErrConfigAPIKeyRequired {
			t.Errorf("err = %v, want ErrConfigAPIKeyRequired", err)
		}
	})

	t.Run("API key from environment", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "env-key")
		c, err := NewClient(nil)
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}
		if c.cfg.APIKey != "env-key" {
			t.Errorf("APIKey = %q, want %q", c.cfg.APIKey, "env-key")
		}
	})

	t.Run("token source stands in for API key", func(t *testing.T) {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})
		_, err := NewClient(&Config{}, WithTokenSource(ts))
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}
	})

	t.Run("invalid base URL", func(t *testing.T) {
		_, err := NewClient(&Config{APIKey: "key", BaseURL: "api.usepylon.com"})
		if err != ErrConfigBaseURLInvalid {
			t.Errorf("err = %v, want ErrConfigBaseURLInvalid", err)
		}
	})

	t.Run("caller config is not retained", func(t *testing.T) {
		cfg := &Config{APIKey: "key"}
		c, err := NewClient(cfg)
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}

		cfg.APIKey = "changed"
		if c.cfg.APIKey != "key" {
			t.Errorf("APIKey = %q, want %q", c.cfg.APIKey, "key")
		}
	})
}

// =============================================================================
// Request Preparation Tests
// =============================================================================

func TestClientAuthHeaders(t *testing.T) {
	t.Run("bearer token from API key", func(t *testing.T) {
		var auth string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			writeData(w, &User{ID: "u1"})
		})

		client, server := newTestClient(t, handler)
		defer server.Close()

		if _, err := client.Users.Get(context.Background(), "u1"); err != nil {
			t.Fatalf("Get: %v", err)
		}
		if auth != "Bearer test-key" {
			t.Errorf("Authorization = %q, want %q", auth, "Bearer test-key")
		}
	})

	t.Run("token source wins over API key", func(t *testing.T) {
		var auth string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			writeData(w, &User{ID: "u1"})
		})

		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "minted"})
		client, server := newTestClient(t, handler, WithTokenSource(ts))
		defer server.Close()

		if _, err := client.Users.Get(context.Background(), "u1"); err != nil {
			t.Fatalf("Get: %v", err)
		}
		if auth != "Bearer minted" {
			t.Errorf("Authorization = %q, want %q", auth, "Bearer minted")
		}
	})

	t.Run("user agent", func(t *testing.T) {
		var ua string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.Header.Get("User-Agent")
			writeData(w, &User{ID: "u1"})
		})

		client, server := newTestClient(t, handler, WithUserAgent("syncd/2.1"))
		defer server.Close()

		if _, err := client.Users.Get(context.Background(), "u1"); err != nil {
			t.Fatalf("Get: %v", err)
		}
		if ua != "syncd/2.1" {
			t.Errorf("User-Agent = %q, want %q", ua, "syncd/2.1")
		}
	})
}

func TestClientIdempotencyKeys(t *testing.T) {
	t.Run("writes carry a key", func(t *testing.T) {
		var keys []string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			keys = append(keys, r.Header.Get("Idempotency-Key"))
			writeData(w, &Contact{ID: "c1"})
		})

		client, server := newTestClient(t, handler, WithIdempotencyKeys())
		defer server.Close()

		req := &CreateContactRequest{Name: "Ada", Email: "ada@example.com"}
		for range 2 {
			if _, err := client.Contacts.Create(context.Background(), req); err != nil {
				t.Fatalf("Create: %v", err)
			}
		}

		if len(keys) != 2 || keys[0] == "" || keys[1] == "" {
			t.Fatalf("keys = %v, want two non-empty keys", keys)
		}
		if keys[0] == keys[1] {
			t.Error("two writes shared an idempotency key")
		}
	})

	t.Run("reads carry no key", func(t *testing.T) {
		var key string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key = r.Header.Get("Idempotency-Key")
			writeData(w, &Contact{ID: "c1"})
		})

		client, server := newTestClient(t, handler, WithIdempotencyKeys())
		defer server.Close()

		if _, err := client.Contacts.Get(context.Background(), "c1"); err != nil {
			t.Fatalf("Get: %v", err)
		}
		if key != "" {
			t.Errorf("Idempotency-Key = %q, want empty on GET", key)
		}
	})

	t.Run("off by default", func(t *testing.T) {
		var key string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key = r.Header.Get("Idempotency-Key")
			writeData(w, &Contact{ID: "c1"})
		})

		client, server := newTestClient(t, handler)
		defer server.Close()

		req := &CreateContactRequest{Name: "Ada", Email: "ada@example.com"}
		if _, err := client.Contacts.Create(context.Background(), req); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if key != "" {
			t.Errorf("Idempotency-Key = %q, want empty without option", key)
		}
	})
}

// =============================================================================
// Context Helper Tests
// =============================================================================

func TestClientContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		client, err := NewClient(&Config{APIKey: "key"})
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}

		ctx := ContextWithClient(context.Background(), client)
		if got := ClientFromContext(ctx); got != client {
			t.Error("ClientFromContext returned a different client")
		}
	})

	t.Run("missing client", func(t *testing.T) {
		if got := ClientFromContext(context.Background()); got != nil {
			t.Errorf("ClientFromContext = %v, want nil", got)
		}
	})
}
