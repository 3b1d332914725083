package codec

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/filtertree/internal/query"
)

// DomainQuery separates query fingerprints from any other SHA-256 use.
// The version suffix leaves room for a future algorithm change.
const DomainQuery = "filtertree/query/v1"

type canonicalOptions struct {
	ignoreIDs bool
}

// CanonicalOption configures MarshalCanonical and Fingerprint.
type CanonicalOption func(*canonicalOptions)

// IgnoreIDs drops node ids, so trees that differ only in ids share a
// fingerprint.
func IgnoreIDs() CanonicalOption {
	return func(o *canonicalOptions) {
		o.ignoreIDs = true
	}
}

// MarshalCanonical returns the canonical JSON form of root (without the
// envelope). Equal trees always produce identical bytes.
func MarshalCanonical(root *query.Group, opts ...CanonicalOption) ([]byte, error) {
	if root == nil {
		return nil, query.ErrNilRoot
	}
	return CanonicalJSON(root, opts...)
}

// CanonicalJSON encodes any JSON-marshalable value canonically: object keys
// sorted by UTF-16 code units, strings NFC-normalized, no insignificant
// whitespace and no HTML escaping.
func CanonicalJSON(v any, opts ...CanonicalOption) ([]byte, error) {
	o := canonicalOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical: %w", err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("canonical: %w", err)
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, doc, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Fingerprint returns the hex SHA-256 of DomainQuery, a zero byte and the
// canonical form of root.
func Fingerprint(root *query.Group, opts ...CanonicalOption) (string, error) {
	canonical, err := MarshalCanonical(root, opts...)
	if err != nil {
		return "", err
	}
	return hashWithDomain(DomainQuery, canonical), nil
}

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func writeCanonical(buf *bytes.Buffer, v any, o canonicalOptions) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(val.String())
	case string:
		return writeCanonicalString(buf, val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem, o); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			if o.ignoreIDs && k == "id" {
				continue
			}
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return lessUTF16(keys[i], keys[j]) })

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k], o); err != nil {
				return fmt.Errorf("%q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("canonical: unsupported type %T", v)
	}
	return nil
}

// writeCanonicalString writes an NFC-normalized string without HTML
// escaping.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// lessUTF16 orders strings by UTF-16 code units.
func lessUTF16(a, b string) bool {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			return a16[i] < b16[i]
		}
	}
	return len(a16) < len(b16)
}
