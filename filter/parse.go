package filter

import (
	"encoding/json"
	"fmt"
)

// Parse decodes a filter expression from its wire form. It is the inverse
// of MarshalJSON: expressions survive a marshal/parse round trip
// structurally unchanged.
func Parse(data []byte) (Expr, error) {
	var node map[string]json.RawMessage
	if err := json.Unmarshal(data, &node); err != nil {
		return Expr{}, fmt.Errorf("parse filter: %w", err)
	}

	switch {
	case node["and"] != nil:
		children, err := parseGroup(node["and"])
		if err != nil {
			return Expr{}, err
		}
		return Expr{kind: kindAnd, children: children}, nil

	case node["or"] != nil:
		children, err := parseGroup(node["or"])
		if err != nil {
			return Expr{}, err
		}
		return Expr{kind: kindOr, children: children}, nil

	case node["not"] != nil:
		child, err := Parse(node["not"])
		if err != nil {
			return Expr{}, err
		}
		return Not(child), nil

	case node["field"] != nil:
		return parseCondition(data)

	default:
		return Expr{}, fmt.Errorf("parse filter: unrecognized node: %w", ErrInvalid)
	}
}

// parseGroup decodes the operand list of an and/or node.
func parseGroup(data json.RawMessage) ([]Expr, error) {
	var rawChildren []json.RawMessage
	if err := json.Unmarshal(data, &rawChildren); err != nil {
		return nil, fmt.Errorf("parse filter group: %w", err)
	}
	if len(rawChildren) < 2 {
		return nil, ErrTooFewOperands
	}

	children := make([]Expr, 0, len(rawChildren))
	for _, raw := range rawChildren {
		child, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// parseCondition decodes a leaf comparison node.
func parseCondition(data []byte) (Expr, error) {
	var cond conditionNode
	if err := json.Unmarshal(data, &cond); err != nil {
		return Expr{}, fmt.Errorf("parse filter condition: %w", err)
	}

	if cond.Field == "" {
		return Expr{}, fmt.Errorf("parse filter condition: empty field: %w", ErrInvalid)
	}
	if !validOperators[cond.Operator] {
		return Expr{}, fmt.Errorf("parse filter condition: %q: %w", cond.Operator, ErrUnknownOperator)
	}

	return Expr{
		kind:     kindCondition,
		field:    cond.Field,
		operator: cond.Operator,
		value:    cond.Value,
	}, nil
}
