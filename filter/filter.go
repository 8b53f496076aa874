package filter

import (
	"encoding/json"
	"errors"
	"time"
)

// TimeFormat is the timestamp layout the filter grammar accepts.
const TimeFormat = "2006-01-02T15:04:05"

// Filter errors.
var (
	// ErrInvalid indicates a zero or malformed filter expression.
	ErrInvalid = errors.New("invalid filter expression")

	// ErrTooFewOperands indicates an and/or group with fewer than two operands.
	ErrTooFewOperands = errors.New("filter group requires at least 2 operands")

	// ErrUnknownOperator indicates an operator outside the filter grammar.
	ErrUnknownOperator = errors.New("unknown filter operator")
)

// Operator identifies a comparison in the filter grammar.
type Operator string

// Operators supported by the search endpoints.
const (
	OpEquals         Operator = "eq"
	OpNotEquals      Operator = "neq"
	OpIn             Operator = "in"
	OpNotIn          Operator = "not_in"
	OpGreaterThan    Operator = "gt"
	OpGreaterOrEqual Operator = "gte"
	OpLessThan       Operator = "lt"
	OpLessOrEqual    Operator = "lte"
	OpContains       Operator = "contains"
	OpStartsWith     Operator = "starts_with"
	OpEndsWith       Operator = "ends_with"
	OpIsNull         Operator = "is_null"
)

// validOperators is the set Parse accepts.
var validOperators = map[Operator]bool{
	OpEquals: true, OpNotEquals: true,
	OpIn: true, OpNotIn: true,
	OpGreaterThan: true, OpGreaterOrEqual: true,
	OpLessThan: true, OpLessOrEqual: true,
	OpContains: true, OpStartsWith: true, OpEndsWith: true,
	OpIsNull: true,
}

type exprKind int

const (
	kindInvalid exprKind = iota
	kindCondition
	kindAnd
	kindOr
	kindNot
)

// Expr is an immutable filter expression. Expressions are built from a
// Field and combined with And, Or and Not; combining never mutates the
// operands, so sub-expressions can be shared and reused freely.
//
// The zero Expr is invalid and fails to marshal.
type Expr struct {
	kind     exprKind
	field    string
	operator Operator
	value    any
	children []Expr
}

// Field starts a filter expression on the named field.
type Field string

func (f Field) condition(op Operator, value any) Expr {
	return Expr{kind: kindCondition, field: string(f), operator: op, value: value}
}

// Eq matches records where the field equals value.
func (f Field) Eq(value any) Expr { return f.condition(OpEquals, value) }

// Neq matches records where the field does not equal value.
func (f Field) Neq(value any) Expr { return f.condition(OpNotEquals, value) }

// In matches records where the field equals any of values.
func (f Field) In(values ...any) Expr { return f.condition(OpIn, values) }

// NotIn matches records where the field equals none of values.
func (f Field) NotIn(values ...any) Expr { return f.condition(OpNotIn, values) }

// Gt matches records where the field is greater than value.
func (f Field) Gt(value any) Expr { return f.condition(OpGreaterThan, value) }

// Gte matches records where the field is greater than or equal to value.
func (f Field) Gte(value any) Expr { return f.condition(OpGreaterOrEqual, value) }

// Lt matches records where the field is less than value.
func (f Field) Lt(value any) Expr { return f.condition(OpLessThan, value) }

// Lte matches records where the field is less than or equal to value.
func (f Field) Lte(value any) Expr { return f.condition(OpLessOrEqual, value) }

// Contains matches records where the field contains the substring.
func (f Field) Contains(substring string) Expr {
	return f.condition(OpContains, substring)
}

// StartsWith matches records where the field starts with the prefix.
func (f Field) StartsWith(prefix string) Expr {
	return f.condition(OpStartsWith, prefix)
}

// EndsWith matches records where the field ends with the suffix.
func (f Field) EndsWith(suffix string) Expr {
	return f.condition(OpEndsWith, suffix)
}

// IsNull matches records where the field has no value.
func (f Field) IsNull() Expr { return f.condition(OpIsNull, true) }

// IsNotNull matches records where the field has a value.
func (f Field) IsNotNull() Expr { return f.condition(OpIsNull, false) }

// After matches records where the field is after t.
func (f Field) After(t time.Time) Expr {
	return f.condition(OpGreaterThan, t.Format(TimeFormat))
}

// Before matches records where the field is before t.
func (f Field) Before(t time.Time) Expr {
	return f.condition(OpLessThan, t.Format(TimeFormat))
}

// Between matches records where the field falls within [start, end].
func (f Field) Between(start, end time.Time) Expr {
	return And(
		f.condition(OpGreaterOrEqual, start.Format(TimeFormat)),
		f.condition(OpLessOrEqual, end.Format(TimeFormat)),
	)
}

// And combines expressions so that every operand must match. The grammar
// requires at least two operands, which the signature enforces.
func And(first, second Expr, rest ...Expr) Expr {
	children := make([]Expr, 0, 2+len(rest))
	children = append(children, first, second)
	children = append(children, rest...)
	return Expr{kind: kindAnd, children: children}
}

// Or combines expressions so that at least one operand must match. The
// grammar requires at least two operands, which the signature enforces.
func Or(first, second Expr, rest ...Expr) Expr {
	children := make([]Expr, 0, 2+len(rest))
	children = append(children, first, second)
	children = append(children, rest...)
	return Expr{kind: kindOr, children: children}
}

// Not negates an expression.
func Not(expr Expr) Expr {
	return Expr{kind: kindNot, children: []Expr{expr}}
}

// And returns a new conjunction of e and the given expressions.
func (e Expr) And(other Expr, rest ...Expr) Expr {
	return And(e, other, rest...)
}

// Or returns a new disjunction of e and the given expressions.
func (e Expr) Or(other Expr, rest ...Expr) Expr {
	return Or(e, other, rest...)
}

// Not returns the negation of e.
func (e Expr) Not() Expr {
	return Not(e)
}

// IsZero reports whether e is the zero (invalid) expression.
func (e Expr) IsZero() bool {
	return e.kind == kindInvalid
}

// Wire forms of the grammar nodes.
type conditionNode struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

type andNode struct {
	And []Expr `json:"and"`
}

type orNode struct {
	Or []Expr `json:"or"`
}

type notNode struct {
	Not Expr `json:"not"`
}

// MarshalJSON serializes the expression to the wire grammar.
func (e Expr) MarshalJSON() ([]byte, error) {
	switch e.kind {
	case kindCondition:
		return json.Marshal(conditionNode{Field: e.field, Operator: e.operator, Value: e.value})
	case kindAnd:
		return json.Marshal(andNode{And: e.children})
	case kindOr:
		return json.Marshal(orNode{Or: e.children})
	case kindNot:
		return json.Marshal(notNode{Not: e.children[0]})
	default:
		return nil, ErrInvalid
	}
}

// String returns the JSON form of the expression, for logs and debugging.
func (e Expr) String() string {
	data, err := json.Marshal(e)
	if err != nil {
		return "<invalid filter>"
	}
	return string(data)
}
