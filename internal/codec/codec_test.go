package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/filtertree/internal/operator"
	"github.com/roach88/filtertree/internal/query"
)

func sampleTree() *query.Group {
	return &query.Group{ID: "root", Logical: query.And, Children: []query.Node{
		&query.Condition{ID: "c1", Field: "age", Operator: operator.GreaterOrEqual, Value: int64(18)},
		&query.Group{ID: "g1", Logical: query.Or, Children: []query.Node{
			&query.Condition{ID: "c2", Field: "name", Operator: operator.Contains, Value: "ann"},
			&query.Condition{ID: "c3", Field: "email", Operator: operator.IsNull},
		}},
		&query.Condition{ID: "c4", Field: "status", Operator: operator.InList, Value: []any{"active", "pending"}},
		&query.Condition{ID: "c5", Field: "score", Operator: operator.Equal, Value: int64(0)},
		&query.Condition{ID: "c6", Field: "age", Operator: operator.CustomExpression, CustomExpression: "${age} > 1"},
	}}
}

func TestJSON_RoundTrip(t *testing.T) {
	root := sampleTree()

	data, err := EncodeJSON(root)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"version\": 1,"))

	got, err := DecodeJSON(data)
	require.NoError(t, err)
	assert.True(t, query.Equal(root, got))
}

func TestYAML_RoundTrip(t *testing.T) {
	root := sampleTree()

	data, err := EncodeYAML(root)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "version: 1\nquery:\n"))

	got, err := DecodeYAML(data)
	require.NoError(t, err)
	assert.True(t, query.Equal(root, got))
}

func TestDecode_SniffsFormat(t *testing.T) {
	root := sampleTree()

	js, err := EncodeJSON(root)
	require.NoError(t, err)
	ym, err := EncodeYAML(root)
	require.NoError(t, err)

	for name, data := range map[string][]byte{"json": js, "yaml": ym} {
		t.Run(name, func(t *testing.T) {
			got, err := Decode(data)
			require.NoError(t, err)
			assert.True(t, query.Equal(root, got))
		})
	}
}

func TestDecodeJSON_Versions(t *testing.T) {
	const bare = `{"id":"r","type":"group","logic":"OR","children":[]}`

	t.Run("missing version", func(t *testing.T) {
		_, err := DecodeJSON([]byte(`{"query":` + bare + `}`))
		assert.ErrorIs(t, err, ErrMissingVersion)
	})

	t.Run("future version", func(t *testing.T) {
		_, err := DecodeJSON([]byte(`{"version":2,"query":` + bare + `}`))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("version zero", func(t *testing.T) {
		_, err := DecodeJSON([]byte(`{"version":0,"query":` + bare + `}`))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("unversioned envelope allowed", func(t *testing.T) {
		got, err := DecodeJSON([]byte(`{"query":`+bare+`}`), AllowUnversioned())
		require.NoError(t, err)
		assert.Equal(t, query.Or, got.Logical)
	})

	t.Run("bare group allowed", func(t *testing.T) {
		got, err := DecodeJSON([]byte(bare), AllowUnversioned())
		require.NoError(t, err)
		assert.Equal(t, "r", got.ID)
	})

	t.Run("bare group rejected by default", func(t *testing.T) {
		_, err := DecodeJSON([]byte(bare))
		assert.ErrorIs(t, err, ErrMissingVersion)
	})
}

func TestDecodeJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"null query", `{"version":1,"query":null}`},
		{"no query", `{"version":1}`},
		{"unknown node type", `{"version":1,"query":{"id":"r","type":"leaf"}}`},
		{"bad logic", `{"version":1,"query":{"id":"r","type":"group","logic":"XOR"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tt.data))
			assert.Error(t, err)
		})
	}

	_, err := DecodeJSON([]byte(`{"version":1,"query":{"id":"c","type":"condition","field":"a","operator":"="}}`))
	assert.ErrorIs(t, err, ErrNotAGroup)
}

func TestDecodeYAML_HandWritten(t *testing.T) {
	doc := `
version: 1
query:
  id: root
  type: group
  logic: and
  children:
    - id: c1
      type: condition
      field: joined
      operator: between
      value: [2020-01-01, 2023-12-31]
    - id: c2
      type: condition
      field: active
      operator: "="
      value: false
`
	got, err := DecodeYAML([]byte(doc))
	require.NoError(t, err)
	require.Len(t, got.Children, 2)

	between := got.Children[0].(*query.Condition)
	assert.Equal(t, operator.Between, between.Operator)
	assert.Equal(t, []any{"2020-01-01", "2023-12-31"}, between.Value)

	active := got.Children[1].(*query.Condition)
	assert.Equal(t, false, active.Value)
}

func TestEncode_NilRoot(t *testing.T) {
	_, err := EncodeJSON(nil)
	assert.ErrorIs(t, err, query.ErrNilRoot)
	_, err = EncodeYAML(nil)
	assert.ErrorIs(t, err, query.ErrNilRoot)
	_, err = MarshalCanonical(nil)
	assert.ErrorIs(t, err, query.ErrNilRoot)
}

func TestMarshalCanonical(t *testing.T) {
	root := &query.Group{ID: "g", Logical: query.And, Children: []query.Node{
		&query.Condition{ID: "c", Field: "name", Operator: operator.Equal, Value: "<b>&"},
	}}

	got, err := MarshalCanonical(root)
	require.NoError(t, err)
	assert.Equal(t,
		`{"children":[{"field":"name","id":"c","operator":"=","type":"condition","value":"<b>&"}],"id":"g","logic":"AND","type":"group"}`,
		string(got))

	noIDs, err := MarshalCanonical(root, IgnoreIDs())
	require.NoError(t, err)
	assert.Equal(t,
		`{"children":[{"field":"name","operator":"=","type":"condition","value":"<b>&"}],"logic":"AND","type":"group"}`,
		string(noIDs))
}

func TestMarshalCanonical_NormalizesUnicode(t *testing.T) {
	composed := &query.Group{ID: "g", Logical: query.And, Children: []query.Node{
		&query.Condition{ID: "c", Field: "city", Operator: operator.Equal, Value: "Troms\u00f8 caf\u00e9"},
	}}
	decomposed := &query.Group{ID: "g", Logical: query.And, Children: []query.Node{
		&query.Condition{ID: "c", Field: "city", Operator: operator.Equal, Value: "Troms\u00f8 cafe\u0301"},
	}}

	a, err := MarshalCanonical(composed)
	require.NoError(t, err)
	b, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(sampleTree())
	require.NoError(t, err)
	assert.Len(t, a, 64)

	again, err := Fingerprint(sampleTree())
	require.NoError(t, err)
	assert.Equal(t, a, again, "fingerprint must be stable")

	renamed := sampleTree()
	renamed.ID = "other"
	b, err := Fingerprint(renamed)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	withoutIDs, err := Fingerprint(sampleTree(), IgnoreIDs())
	require.NoError(t, err)
	renamedWithoutIDs, err := Fingerprint(renamed, IgnoreIDs())
	require.NoError(t, err)
	assert.Equal(t, withoutIDs, renamedWithoutIDs)

	changed := sampleTree()
	changed.Logical = query.Or
	c, err := Fingerprint(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestFingerprint_SurvivesRoundTrip(t *testing.T) {
	root := sampleTree()
	want, err := Fingerprint(root)
	require.NoError(t, err)

	data, err := EncodeYAML(root)
	require.NoError(t, err)
	decoded, err := DecodeYAML(data)
	require.NoError(t, err)

	got, err := Fingerprint(decoded)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLessUTF16(t *testing.T) {
	// U+1F600 sorts after U+FF5E by code point but before it in UTF-16.
	assert.True(t, lessUTF16("\U0001F600", "\uFF5E"))
	assert.True(t, lessUTF16("a", "b"))
	assert.True(t, lessUTF16("a", "ab"))
	assert.False(t, lessUTF16("b", "a"))
}

func TestCanonicalJSON(t *testing.T) {
	got, err := CanonicalJSON(map[string]any{
		"b":  []any{1, 2.5, nil, true},
		"a":  "x < y",
		"id": "kept",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x < y","b":[1,2.5,null,true],"id":"kept"}`, string(got))

	noIDs, err := CanonicalJSON(map[string]any{"id": 1, "nested": map[string]any{"id": 2, "z": 3}}, IgnoreIDs())
	require.NoError(t, err)
	assert.Equal(t, `{"nested":{"z":3}}`, string(noIDs))
}
