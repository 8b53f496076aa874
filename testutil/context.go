package testutil

import (
	"context"
	"testing"
	"time"
)

// TestContext returns a context canceled when the test ends, so request
// goroutines started during the test cannot outlive it.
func TestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// TestContextWithTimeout returns a context with a timeout that is also
// canceled when the test ends. Use it to bound calls against a fake API
// handler that deliberately stalls.
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelableContext returns a context and its cancel function for tests
// that cancel mid-request. The context is canceled at test end regardless.
func CancelableContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx, cancel
}

// testNameKey is the context key WithTestName stores under.
type testNameKey struct{}

// WithTestName tags a context with the running test's name so fake API
// handlers can tell which test issued a request.
func WithTestName(ctx context.Context, t *testing.T) context.Context {
	return context.WithValue(ctx, testNameKey{}, t.Name())
}

// TestNameFromContext returns the test name stored by WithTestName, or
// the empty string.
func TestNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(testNameKey{}).(string)
	return name
}
