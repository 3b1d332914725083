package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/filtertree/internal/query"
)

// CurrentVersion is the envelope version written by this package.
const CurrentVersion = 1

var (
	// ErrMissingVersion is returned for payloads without a version field.
	ErrMissingVersion = errors.New("codec: payload has no version")
	// ErrUnsupportedVersion is returned for versions this package cannot read.
	ErrUnsupportedVersion = errors.New("codec: unsupported payload version")
	// ErrNotAGroup is returned when the payload's query is not a group.
	ErrNotAGroup = errors.New("codec: query root must be a group")
)

// Envelope is the versioned interchange document.
type Envelope struct {
	Version int          `json:"version" yaml:"version"`
	Query   *query.Group `json:"query" yaml:"query"`
}

type decodeOptions struct {
	allowUnversioned bool
}

// DecodeOption configures decoding.
type DecodeOption func(*decodeOptions)

// AllowUnversioned reads payloads without a version as version 1. A bare
// group document (no envelope) is accepted too.
func AllowUnversioned() DecodeOption {
	return func(o *decodeOptions) {
		o.allowUnversioned = true
	}
}

// EncodeJSON writes root in an indented versioned envelope.
func EncodeJSON(root *query.Group) ([]byte, error) {
	if root == nil {
		return nil, query.ErrNilRoot
	}
	data, err := json.MarshalIndent(Envelope{Version: CurrentVersion, Query: root}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeJSON reads a versioned JSON envelope.
func DecodeJSON(data []byte, opts ...DecodeOption) (*query.Group, error) {
	o := decodeOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	var env struct {
		Version *json.Number    `json:"version"`
		Query   json.RawMessage `json:"query"`
		Type    string          `json:"type"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	body := []byte(env.Query)
	switch {
	case env.Version == nil && !o.allowUnversioned:
		return nil, ErrMissingVersion
	case env.Version == nil:
		if len(body) == 0 && env.Type != "" {
			body = data
		}
	default:
		v, err := env.Version.Int64()
		if err != nil || v < 1 || v > CurrentVersion {
			return nil, fmt.Errorf("%w: %s (this build reads up to %d)", ErrUnsupportedVersion, env.Version, CurrentVersion)
		}
	}

	if len(body) == 0 || string(body) == "null" {
		return nil, fmt.Errorf("decode json: %w", query.ErrNilRoot)
	}
	n, err := query.UnmarshalNode(body)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	g, ok := n.(*query.Group)
	if !ok {
		return nil, ErrNotAGroup
	}
	return g, nil
}

// EncodeYAML writes root in a versioned YAML envelope.
func EncodeYAML(root *query.Group) ([]byte, error) {
	if root == nil {
		return nil, query.ErrNilRoot
	}
	doc := yamlEnvelope{Version: CurrentVersion, Query: toYAMLNode(root)}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeYAML reads a versioned YAML envelope. YAML is converted to JSON and
// decoded by DecodeJSON, so both formats share one set of rules.
func DecodeYAML(data []byte, opts ...DecodeOption) (*query.Group, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decode yaml: empty document")
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return DecodeJSON(js, opts...)
}

// Decode reads either format, treating a document whose first non-space
// byte is '{' as JSON and anything else as YAML.
func Decode(data []byte, opts ...DecodeOption) (*query.Group, error) {
	if IsJSON(data) {
		return DecodeJSON(data, opts...)
	}
	return DecodeYAML(data, opts...)
}

// IsJSON reports whether data looks like a JSON object or array.
func IsJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// yamlNode fixes the key order of encoded YAML.
type yamlNode struct {
	ID               string      `yaml:"id"`
	Type             query.Kind  `yaml:"type"`
	Field            string      `yaml:"field,omitempty"`
	Operator         string      `yaml:"operator,omitempty"`
	Value            any         `yaml:"value,omitempty"`
	CustomExpression string      `yaml:"customExpression,omitempty"`
	Logic            string      `yaml:"logic,omitempty"`
	Children         []*yamlNode `yaml:"children,omitempty"`
}

type yamlEnvelope struct {
	Version int       `yaml:"version"`
	Query   *yamlNode `yaml:"query"`
}

func toYAMLNode(n query.Node) *yamlNode {
	switch node := n.(type) {
	case *query.Condition:
		if node == nil {
			return nil
		}
		return &yamlNode{
			ID:               node.ID,
			Type:             query.KindCondition,
			Field:            node.Field,
			Operator:         string(node.Operator),
			Value:            node.Value,
			CustomExpression: node.CustomExpression,
		}
	case *query.Group:
		if node == nil {
			return nil
		}
		out := &yamlNode{ID: node.ID, Type: query.KindGroup, Logic: string(node.Logical)}
		out.Children = make([]*yamlNode, 0, len(node.Children))
		for _, child := range node.Children {
			if c := toYAMLNode(child); c != nil {
				out.Children = append(out.Children, c)
			}
		}
		return out
	}
	return nil
}
