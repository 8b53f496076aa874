package testutil

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// Fake API Server
// =============================================================================

// apiEnvelope mirrors the response wrapper for decoding in assertions.
type apiEnvelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Cursor      string `json:"cursor"`
		HasNextPage bool   `json:"has_next_page"`
	} `json:"pagination"`
	RequestID string `json:"request_id"`
}

func TestServerRecordsRequests(t *testing.T) {
	s := NewServer(t)
	s.HandleData("GET /issues/{id}", map[string]string{"id": "i1"})

	resp, err := http.Get(s.URL + "/issues/i1?include=messages")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	reqs := s.Requests()
	if len(reqs) != 1 {
		t.Fatalf("recorded %d requests, want 1", len(reqs))
	}
	if reqs[0].Method != http.MethodGet || reqs[0].Path != "/issues/i1" {
		t.Errorf("recorded %s %s, want GET /issues/i1", reqs[0].Method, reqs[0].Path)
	}
	if got := reqs[0].Query.Get("include"); got != "messages" {
		t.Errorf("query include = %q, want %q", got, "messages")
	}
}

func TestServerRecordsBody(t *testing.T) {
	s := NewServer(t)
	s.HandleData("POST /issues/search", []map[string]string{})

	resp, err := http.Post(s.URL+"/issues/search", "application/json",
		strings.NewReader(`{"limit": 50, "cursor": "c1"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	last := s.LastRequest()
	if last == nil {
		t.Fatal("LastRequest returned nil")
	}

	var req struct {
		Limit  int    `json:"limit"`
		Cursor string `json:"cursor"`
	}
	last.JSON(t, &req)
	if req.Limit != 50 || req.Cursor != "c1" {
		t.Errorf("recorded body = %+v, want limit 50 cursor c1", req)
	}
}

func TestServerEnvelope(t *testing.T) {
	s := NewServer(t)
	s.HandleData("GET /accounts/{id}", map[string]string{"id": "acct_1", "name": "Globex"})

	resp, err := http.Get(s.URL + "/accounts/acct_1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-Id"); got == "" {
		t.Error("response missing X-Request-Id header")
	}

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.RequestID == "" {
		t.Error("envelope missing request_id")
	}
	if env.Pagination != nil {
		t.Error("single-resource envelope should not carry pagination")
	}

	var account map[string]string
	if err := json.Unmarshal(env.Data, &account); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if account["name"] != "Globex" {
		t.Errorf("data name = %q, want %q", account["name"], "Globex")
	}
}

func TestServerPagination(t *testing.T) {
	s := NewServer(t)
	s.Handle("GET /issues", func(w http.ResponseWriter, r *http.Request) {
		WritePage(w, []map[string]string{{"id": "i1"}}, "c1", true)
	})

	resp, err := http.Get(s.URL + "/issues")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Pagination == nil {
		t.Fatal("envelope missing pagination block")
	}
	if env.Pagination.Cursor != "c1" || !env.Pagination.HasNextPage {
		t.Errorf("pagination = %+v, want cursor c1 has_next_page true", env.Pagination)
	}
}

func TestServerError(t *testing.T) {
	s := NewServer(t)
	s.HandleError("GET /issues/{id}", http.StatusNotFound, "issue not found")

	resp, err := http.Get(s.URL + "/issues/missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Message != "issue not found" {
		t.Errorf("message = %q, want %q", body.Message, "issue not found")
	}
}

func TestServerFieldErrors(t *testing.T) {
	s := NewServer(t)
	s.Handle("POST /issues", func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusUnprocessableEntity, "validation failed",
			"title is required", "account_id is required")
	})

	resp, err := http.Post(s.URL+"/issues", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if len(body.Errors) != 2 {
		t.Errorf("errors count = %d, want 2", len(body.Errors))
	}
}

func TestServerUnregisteredRoute(t *testing.T) {
	s := NewServer(t)

	resp, err := http.Get(s.URL + "/nowhere")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	// The request is still recorded.
	if len(s.Requests()) != 1 {
		t.Errorf("recorded %d requests, want 1", len(s.Requests()))
	}
}

func TestServerReset(t *testing.T) {
	s := NewServer(t)
	s.HandleData("GET /tags", []string{})

	for range 2 {
		resp, err := http.Get(s.URL + "/tags")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
	}

	if len(s.Requests()) != 2 {
		t.Fatalf("recorded %d requests, want 2", len(s.Requests()))
	}

	s.Reset()
	if len(s.Requests()) != 0 {
		t.Errorf("recorded %d requests after Reset, want 0", len(s.Requests()))
	}
	if s.LastRequest() != nil {
		t.Error("LastRequest should be nil after Reset")
	}
}

// =============================================================================
// Fixtures
// =============================================================================

func TestLoadFixture(t *testing.T) {
	data := LoadFixture(t, "issue.json")

	if len(data) == 0 {
		t.Fatal("fixture is empty")
	}
	if !json.Valid(data) {
		t.Error("fixture is not valid JSON")
	}
}

func TestLoadJSONFixture(t *testing.T) {
	issue := LoadJSONFixture[struct {
		ID     string   `json:"id"`
		Number int      `json:"number"`
		Title  string   `json:"title"`
		Tags   []string `json:"tags"`
	}](t, "issue.json")

	if issue.ID != "i_8f2a" {
		t.Errorf("id = %q, want %q", issue.ID, "i_8f2a")
	}
	if issue.Number != 4021 {
		t.Errorf("number = %d, want 4021", issue.Number)
	}
	if len(issue.Tags) != 2 {
		t.Errorf("tags count = %d, want 2", len(issue.Tags))
	}
}

func TestTempFileString(t *testing.T) {
	content := "api_key: test-key\n"
	path := TempFileString(t, "pylon.yaml", content)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", string(data), content)
	}
}

// =============================================================================
// Contexts
// =============================================================================

func TestTestContext(t *testing.T) {
	ctx := TestContext(t)

	select {
	case <-ctx.Done():
		t.Error("context is already done")
	default:
	}
}

func TestTestContextWithTimeout(t *testing.T) {
	ctx := TestContextWithTimeout(t, 50*time.Millisecond)

	select {
	case <-ctx.Done():
		t.Error("context is already done")
	default:
	}

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("context should be done after timeout")
	}
}

func TestCancelableContext(t *testing.T) {
	ctx, cancel := CancelableContext(t)

	select {
	case <-ctx.Done():
		t.Error("context is already done")
	default:
	}

	cancel()

	select {
	case <-ctx.Done():
	default:
		t.Error("context should be done after cancel")
	}
}

func TestWithTestName(t *testing.T) {
	ctx := WithTestName(TestContext(t), t)

	if got := TestNameFromContext(ctx); got != t.Name() {
		t.Errorf("name = %q, want %q", got, t.Name())
	}

	if got := TestNameFromContext(TestContext(t)); got != "" {
		t.Errorf("name on untagged context = %q, want empty", got)
	}
}
