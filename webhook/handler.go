package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
)

// HandlerFunc processes a parsed webhook event.
type HandlerFunc func(ctx context.Context, event *Event) error

// Handler verifies, parses and dispatches webhook deliveries to
// registered handler functions. Register all handlers before serving;
// On and OnAny are not safe to call concurrently with Handle.
type Handler struct {
	verifier   *Verifier
	skipVerify bool
	logger     *slog.Logger
	handlers   map[EventType][]HandlerFunc
	catchAll   []HandlerFunc
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the logger used to report handler failures.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

// WithoutVerification disables signature checks. Intended for tests and
// for deployments that terminate verification elsewhere.
func WithoutVerification() HandlerOption {
	return func(h *Handler) { h.skipVerify = true }
}

// NewHandler creates a Handler that verifies deliveries with verifier.
func NewHandler(verifier *Verifier, opts ...HandlerOption) *Handler {
	h := &Handler{
		verifier: verifier,
		logger:   slog.Default(),
		handlers: make(map[EventType][]HandlerFunc),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// On registers fn for a specific event type. Multiple handlers for the
// same type run in registration order.
func (h *Handler) On(eventType EventType, fn HandlerFunc) {
	h.handlers[eventType] = append(h.handlers[eventType], fn)
}

// OnAny registers fn for every event type. Catch-all handlers run after
// the type-specific ones.
func (h *Handler) OnAny(fn HandlerFunc) {
	h.catchAll = append(h.catchAll, fn)
}

// EventTypes returns the event types with registered handlers, sorted.
func (h *Handler) EventTypes() []EventType {
	types := make([]EventType, 0, len(h.handlers))
	for t := range h.handlers {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Handle verifies and parses a delivery, then invokes the handlers
// registered for its event type followed by the catch-all handlers.
// Every handler runs even when an earlier one fails; failures are
// logged and the last error is returned alongside the parsed event.
func (h *Handler) Handle(ctx context.Context, payload []byte, header http.Header) (*Event, error) {
	if !h.skipVerify {
		if err := h.verifier.VerifyRequest(payload, header); err != nil {
			return nil, err
		}
	}

	event, err := ParseEvent(payload)
	if err != nil {
		return nil, err
	}

	var lastErr error
	run := func(fn HandlerFunc) {
		if err := fn(ctx, event); err != nil {
			h.logger.Warn("webhook handler failed",
				"event_type", event.Type,
				"issue_id", event.IssueID,
				"error", err)
			lastErr = err
		}
	}
	for _, fn := range h.handlers[event.Type] {
		run(fn)
	}
	for _, fn := range h.catchAll {
		run(fn)
	}

	return event, lastErr
}

// ServeHTTP adapts the handler to net/http. Verification failures
// answer 401, malformed or unknown payloads 400, handler errors 500.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read request body", http.StatusBadRequest)
		return
	}

	if _, err := h.Handle(r.Context(), payload, r.Header); err != nil {
		switch {
		case errors.Is(err, ErrMissingSignature),
			errors.Is(err, ErrInvalidSignature),
			errors.Is(err, ErrInvalidTimestamp),
			errors.Is(err, ErrTimestampOutOfRange):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrUnknownEvent):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}
