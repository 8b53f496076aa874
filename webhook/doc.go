// Package webhook verifies and dispatches Pylon webhook deliveries.
//
// # Verification
//
// Deliveries are signed with hex HMAC-SHA256 over "{timestamp}.{payload}",
// or over the payload alone when no timestamp header is sent. Verifier
// compares signatures in constant time and rejects timestamps that drift
// more than the tolerance in either direction:
//
//	v := webhook.NewVerifier(secret)
//	if err := v.VerifyRequest(payload, r.Header); err != nil {
//		// reject the delivery
//	}
//
// # Dispatch
//
// Handler routes parsed events to registered functions and can serve as
// an http.Handler directly:
//
//	h := webhook.NewHandler(v)
//	h.On(webhook.EventIssueNew, func(ctx context.Context, e *webhook.Event) error {
//		log.Printf("new issue #%d: %s", e.IssueNumber, e.IssueTitle)
//		return nil
//	})
//	http.Handle("/webhooks/pylon", h)
package webhook
