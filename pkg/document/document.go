package document

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
)

// Reserved field names.
const (
	FieldID   = "_id"
	FieldType = "type"
	FieldIV   = "iv"
	FieldURL  = "url"
	FieldKey  = "key"
)

// PubSubType is the type of hosted publish/subscribe connection documents.
// Their key field is a public identifier and exempt from encryption.
const PubSubType = "pusher"

var secretField = regexp.MustCompile(`(?i)(token|key|secret|password)$`)

// Document is a mapping from field name to value. Values are scalars, nested
// documents or slices. A nested value of type Document is an encryptable
// sub-document; plain map[string]any values are opaque to the cipher.
type Document map[string]any

// IsSecretField reports whether a field name is secret-like.
func IsSecretField(name string) bool {
	return secretField.MatchString(name)
}

// ID returns the document identity as a string, or "" when absent.
func (d Document) ID() string {
	switch v := d[FieldID].(type) {
	case nil:
		return ""
	case string:
		return v
	case interface{ Hex() string }:
		return v.Hex()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Type returns the type attribute.
func (d Document) Type() string {
	return d.String(FieldType)
}

// IV returns the encoded initialization vector, or "" when absent.
func (d Document) IV() string {
	return d.String(FieldIV)
}

// String returns a string field, or "" when missing or not a string.
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// Sub returns a nested sub-document. Plain map values are converted.
func (d Document) Sub(field string) (Document, bool) {
	switch v := d[field].(type) {
	case Document:
		return v, true
	case map[string]any:
		return Document(v), true
	default:
		return nil, false
	}
}

// isExempt reports whether field is the public key of a pub/sub document.
func (d Document) isExempt(field string) bool {
	return field == FieldKey && d.Type() == PubSubType
}

// isProtected reports whether field is encrypted by the cipher.
func (d Document) isProtected(field string) bool {
	return IsSecretField(field) && !d.isExempt(field)
}

// Keys returns field names in lexicographic order.
func (d Document) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// Clone returns a deep copy. Nested documents, maps and slices are copied;
// other values are copied by assignment.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Document:
		return val.Clone()
	case map[string]any:
		if val == nil {
			return val
		}
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = cloneValue(item)
		}
		return m
	case []any:
		if val == nil {
			return val
		}
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = cloneValue(item)
		}
		return s
	case []Document:
		if val == nil {
			return val
		}
		s := make([]Document, len(val))
		for i, item := range val {
			s[i] = item.Clone()
		}
		return s
	case []string:
		return slices.Clone(val)
	case []byte:
		return slices.Clone(val)
	default:
		return v
	}
}
