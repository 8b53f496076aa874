package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is how far a delivery timestamp may drift from the
// current time before the delivery is rejected.
const DefaultTolerance = 300 * time.Second

// Verification errors.
var (
	// ErrMissingSignature indicates no signature header was present.
	ErrMissingSignature = errors.New("missing webhook signature")

	// ErrInvalidSignature indicates the signature did not match the payload.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrInvalidTimestamp indicates the timestamp header was not unix seconds.
	ErrInvalidTimestamp = errors.New("invalid webhook timestamp")

	// ErrTimestampOutOfRange indicates the timestamp drifted beyond the
	// verifier's tolerance, in either direction.
	ErrTimestampOutOfRange = errors.New("webhook timestamp outside tolerance")
)

// Header names carrying the signature and timestamp, checked in order.
var (
	signatureHeaders = []string{"X-Pylon-Signature", "X-Signature"}
	timestampHeaders = []string{"X-Pylon-Timestamp", "X-Timestamp"}
)

// Verifier checks webhook delivery signatures and timestamp freshness.
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithTolerance overrides the timestamp drift tolerance.
func WithTolerance(d time.Duration) VerifierOption {
	return func(v *Verifier) { v.tolerance = d }
}

// WithNow overrides the verifier's clock. Intended for tests.
func WithNow(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier creates a Verifier for the given signing secret.
func NewVerifier(secret string, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		secret:    []byte(secret),
		tolerance: DefaultTolerance,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Sign computes the hex HMAC-SHA256 signature for a payload. When
// timestamp is non-empty the signed message is "{timestamp}.{payload}",
// otherwise the payload alone.
func (v *Verifier) Sign(payload []byte, timestamp string) string {
	mac := hmac.New(sha256.New, v.secret)
	if timestamp != "" {
		mac.Write([]byte(timestamp))
		mac.Write([]byte("."))
	}
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a delivery signature against the payload in constant
// time. A "sha256=" prefix on the received signature is tolerated. When
// timestamp is non-empty it must be unix seconds within the tolerance;
// both stale and future timestamps are rejected.
func (v *Verifier) Verify(payload []byte, signature, timestamp string) error {
	if signature == "" {
		return ErrMissingSignature
	}

	if timestamp != "" {
		if err := v.checkTimestamp(timestamp); err != nil {
			return err
		}
	}

	signature = strings.TrimPrefix(signature, "sha256=")
	expected := v.Sign(payload, timestamp)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}

	return nil
}

// VerifyRequest verifies a delivery using the signature and timestamp
// headers. Lookup is case-insensitive and accepts both the X-Pylon-
// prefixed and the bare header names.
func (v *Verifier) VerifyRequest(payload []byte, header http.Header) error {
	return v.Verify(payload, headerValue(header, signatureHeaders), headerValue(header, timestampHeaders))
}

func (v *Verifier) checkTimestamp(timestamp string) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimestamp, timestamp)
	}

	drift := v.now().Unix() - ts
	limit := int64(v.tolerance / time.Second)
	if drift > limit || drift < -limit {
		return fmt.Errorf("%w: drift %ds", ErrTimestampOutOfRange, drift)
	}

	return nil
}

// headerValue returns the first non-empty header among names.
func headerValue(header http.Header, names []string) string {
	for _, name := range names {
		if value := header.Get(name); value != "" {
			return value
		}
	}
	return ""
}
