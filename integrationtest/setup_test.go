// Package integrationtest exercises the Pylon client end to end against a
// fake API: transport, filter grammar, webhooks, and portal identity working
// together the way a support integration would use them.
package integrationtest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	pylon "github.com/randalmurphal/pylon-go"
	"github.com/randalmurphal/pylon-go/testutil"
)

// newClient builds a client against the fake API. Retry waits are cut to
// milliseconds so retry paths can run without real backoff delays.
func newClient(t *testing.T, api *testutil.Server, opts ...pylon.ClientOption) *pylon.Client {
	t.Helper()

	client, err := pylon.NewClient(&pylon.Config{
		APIKey:  "test-key",
		BaseURL: api.URL,
		Retry: pylon.RetryConfig{
			MaxRetries: 3,
			WaitMin:    time.Millisecond,
			WaitMax:    5 * time.Millisecond,
		},
	}, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

// issueStore is a stateful fake issue backend. Handlers mutate it the way
// the real API would, so lifecycle flows can assert server-side state.
type issueStore struct {
	mu     sync.Mutex
	nextID int
	issues map[string]map[string]any
}

func newIssueStore() *issueStore {
	return &issueStore{issues: make(map[string]map[string]any)}
}

// add seeds an issue and returns its id.
func (st *issueStore) add(fields map[string]any) string {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.nextID++
	id := "i_" + strconv.Itoa(st.nextID)
	issue := map[string]any{"id": id, "state": "new"}
	for k, v := range fields {
		issue[k] = v
	}
	st.issues[id] = issue
	return id
}

// get returns a copy of the issue, or nil when absent.
func (st *issueStore) get(id string) map[string]any {
	st.mu.Lock()
	defer st.mu.Unlock()

	issue, ok := st.issues[id]
	if !ok {
		return nil
	}
	out := make(map[string]any, len(issue))
	for k, v := range issue {
		out[k] = v
	}
	return out
}

// patch applies fields onto the stored issue, materializing references
// the way the real API does.
func (st *issueStore) patch(id string, fields map[string]any) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	issue, ok := st.issues[id]
	if !ok {
		return false
	}
	for k, v := range fields {
		issue[k] = v
	}
	if assignee, ok := fields["assignee_id"].(string); ok {
		issue["assignee"] = map[string]any{"id": assignee}
	}
	return true
}

// mount registers the issue CRUD routes on the fake API.
func (st *issueStore) mount(api *testutil.Server) {
	api.Handle("GET /issues/{id}", func(w http.ResponseWriter, r *http.Request) {
		issue := st.get(r.PathValue("id"))
		if issue == nil {
			testutil.WriteError(w, http.StatusNotFound, "issue not found")
			return
		}
		testutil.WriteData(w, issue)
	})

	api.Handle("POST /issues", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			testutil.WriteError(w, http.StatusBadRequest, "malformed body")
			return
		}
		if title, _ := req["title"].(string); title == "" {
			testutil.WriteError(w, http.StatusUnprocessableEntity,
				"validation failed", "title is required")
			return
		}
		id := st.add(req)
		testutil.WriteData(w, st.get(id))
	})

	api.Handle("PATCH /issues/{id}", func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			testutil.WriteError(w, http.StatusBadRequest, "malformed body")
			return
		}
		id := r.PathValue("id")
		if !st.patch(id, fields) {
			testutil.WriteError(w, http.StatusNotFound, "issue not found")
			return
		}
		testutil.WriteData(w, st.get(id))
	})
}
