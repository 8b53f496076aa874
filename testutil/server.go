package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// requestID is stamped on every response the fake API writes.
const requestID = "req_testutil"

// Server is a fake Pylon API for tests. It records every request it
// receives and serves canned envelope responses, so client behavior can
// be asserted without touching the real API.
// The server shuts down when the test ends.
type Server struct {
	*httptest.Server

	mux *http.ServeMux

	mu       sync.Mutex
	requests []RecordedRequest
}

// RecordedRequest captures one request the fake API received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSON unmarshals the recorded request body into v.
func (r *RecordedRequest) JSON(t *testing.T, v any) {
	t.Helper()

	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decode recorded body for %s %s: %v", r.Method, r.Path, err)
	}
}

// NewServer starts a fake Pylon API. Register routes with Handle,
// HandleData, and HandleError before issuing requests.
func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{mux: http.NewServeMux()}
	s.Server = httptest.NewServer(http.HandlerFunc(s.record))
	t.Cleanup(s.Close)
	return s
}

// record captures the request, then dispatches to the registered handler
// with the body restored.
func (s *Server) record(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	s.mu.Unlock()

	s.mux.ServeHTTP(w, r)
}

// Handle registers a handler for a ServeMux pattern such as
// "GET /issues/{id}". Unmatched requests answer 404.
func (s *Server) Handle(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
}

// HandleData serves data inside the standard response envelope for every
// request matching pattern.
func (s *Server) HandleData(pattern string, data any) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		WriteData(w, data)
	})
}

// HandleError serves a Pylon error body with the given status for every
// request matching pattern.
func (s *Server) HandleError(pattern string, status int, message string) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, status, message)
	})
}

// Requests returns a snapshot of everything the server has received, in
// arrival order.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, or nil when none arrived.
func (s *Server) LastRequest() *RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return nil
	}
	last := s.requests[len(s.requests)-1]
	return &last
}

// Reset discards all recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// envelope mirrors the wrapper the Pylon API puts around response data.
type envelope struct {
	Data       any       `json:"data"`
	Pagination *pageInfo `json:"pagination,omitempty"`
	RequestID  string    `json:"request_id"`
}

type pageInfo struct {
	Cursor      string `json:"cursor"`
	HasNextPage bool   `json:"has_next_page"`
}

// WriteData writes data wrapped in the response envelope.
func WriteData(w http.ResponseWriter, data any) {
	writeEnvelope(w, envelope{Data: data, RequestID: requestID})
}

// WritePage writes data in the response envelope with a pagination block.
func WritePage(w http.ResponseWriter, data any, cursor string, hasNext bool) {
	writeEnvelope(w, envelope{
		Data:       data,
		Pagination: &pageInfo{Cursor: cursor, HasNextPage: hasNext},
		RequestID:  requestID,
	})
}

func writeEnvelope(w http.ResponseWriter, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-Id", env.RequestID)
	_ = json.NewEncoder(w).Encode(env)
}

// WriteError writes a Pylon error body with the given status code.
// Optional fieldErrors populate the per-field errors list that
// validation responses carry.
func WriteError(w http.ResponseWriter, status int, message string, fieldErrors ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-Id", requestID)
	w.WriteHeader(status)

	body := struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors,omitempty"`
	}{Message: message, Errors: fieldErrors}
	_ = json.NewEncoder(w).Encode(body)
}
