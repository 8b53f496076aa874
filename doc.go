// Package pylon provides a client for the Pylon support platform REST API.
//
// The root package holds the API client and its resource services. The
// rest is organized into subpackages by domain:
//
//   - filter: Composable filter expressions for the search endpoints
//   - webhook: Webhook signature verification and event dispatch
//   - identity: Customer identity hashes and signed portal tokens
//   - http: Retrying JSON transport and cursor pagination
//   - testutil: Test utilities and fixtures
//
// # Quick Start
//
//	import (
//	    "github.com/randalmurphal/pylon-go"
//	    "github.com/randalmurphal/pylon-go/filter"
//	)
//
//	// Create a client (API key from PYLON_API_KEY)
//	client, _ := pylon.NewClient(nil)
//
//	// Fetch one issue
//	issue, _ := client.Issues.Get(ctx, "issue-id")
//
//	// Stream issues matching a filter
//	it := client.Issues.Search(ctx, filter.Field("state").Eq("open"), nil)
//	for {
//	    issue, ok, err := it.Next(ctx)
//	    if err != nil || !ok {
//	        break
//	    }
//	    fmt.Println(issue.Title)
//	}
//
// See individual package documentation for detailed usage.
package pylon
