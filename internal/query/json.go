package query

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/filtertree/internal/operator"
)

// wireNode is the interchange shape shared by conditions and groups.
// Type is the discriminant: "condition" or "group".
type wireNode struct {
	ID               string            `json:"id"`
	Type             Kind              `json:"type"`
	Field            string            `json:"field,omitempty"`
	Operator         operator.Operator `json:"operator,omitempty"`
	Value            any               `json:"value,omitempty"`
	CustomExpression string            `json:"customExpression,omitempty"`
	Logic            Logical           `json:"logic,omitempty"`
	Children         []json.RawMessage `json:"children,omitempty"`
}

// MarshalJSON encodes a condition with its "condition" discriminant.
func (c *Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID               string            `json:"id"`
		Type             Kind              `json:"type"`
		Field            string            `json:"field"`
		Operator         operator.Operator `json:"operator"`
		Value            any               `json:"value,omitempty"`
		CustomExpression string            `json:"customExpression,omitempty"`
	}{c.ID, KindCondition, c.Field, c.Operator, c.Value, c.CustomExpression})
}

// MarshalJSON encodes a group with its "group" discriminant. A nil children
// list encodes as [].
func (g *Group) MarshalJSON() ([]byte, error) {
	children := g.Children
	if children == nil {
		children = []Node{}
	}
	return json.Marshal(struct {
		ID       string  `json:"id"`
		Type     Kind    `json:"type"`
		Logic    Logical `json:"logic"`
		Children []Node  `json:"children"`
	}{g.ID, KindGroup, g.Logical, children})
}

// UnmarshalJSON decodes a group and its subtree.
func (g *Group) UnmarshalJSON(data []byte) error {
	n, err := UnmarshalNode(data)
	if err != nil {
		return err
	}
	decoded, ok := n.(*Group)
	if !ok {
		return fmt.Errorf("query: expected a group, got %q", n.Kind())
	}
	*g = *decoded
	return nil
}

// UnmarshalJSON decodes a condition.
func (c *Condition) UnmarshalJSON(data []byte) error {
	n, err := UnmarshalNode(data)
	if err != nil {
		return err
	}
	decoded, ok := n.(*Condition)
	if !ok {
		return fmt.Errorf("query: expected a condition, got %q", n.Kind())
	}
	*c = *decoded
	return nil
}

// UnmarshalNode decodes one node of either kind. Unknown operators and
// unknown discriminants are rejected.
func UnmarshalNode(data []byte) (Node, error) {
	return unmarshalNode(data, "$")
}

func unmarshalNode(data []byte, path string) (Node, error) {
	var w wireNode
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	switch w.Type {
	case KindCondition:
		return &Condition{
			ID:               w.ID,
			Field:            w.Field,
			Operator:         w.Operator,
			Value:            fromJSONValue(w.Value),
			CustomExpression: w.CustomExpression,
		}, nil
	case KindGroup:
		logical := w.Logic
		if logical == "" {
			logical = And
		}
		g := &Group{ID: w.ID, Logical: logical, Children: make([]Node, 0, len(w.Children))}
		for i, raw := range w.Children {
			child, err := unmarshalNode(raw, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			g.Children = append(g.Children, child)
		}
		return g, nil
	case "":
		return nil, fmt.Errorf("%s: missing node type", path)
	default:
		return nil, fmt.Errorf("%s: unknown node type %q", path, w.Type)
	}
}

// fromJSONValue turns json.Number into int64 when integral, float64 otherwise.
func fromJSONValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = fromJSONValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = fromJSONValue(elem)
		}
		return out
	}
	return v
}
