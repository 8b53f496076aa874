// Package filter builds Pylon search filters as immutable expression trees.
//
// Expressions start from a Field and combine with And, Or and Not:
//
//	f := filter.Field("state").Eq("open").And(
//		filter.Field("assignee_id").IsNull(),
//	)
//
// Every combinator returns a new expression and never mutates its
// operands, so sub-expressions can be shared between filters.
//
// Expressions marshal to the search grammar with encoding/json:
//
//	{"and": [
//	  {"field": "state", "operator": "eq", "value": "open"},
//	  {"field": "assignee_id", "operator": "is_null", "value": true}
//	]}
//
// Parse performs the reverse mapping, so stored filters round-trip
// losslessly.
package filter
