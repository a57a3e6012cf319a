package gitlab3

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

// Fields is an ordered JSON object. Keys keep the order in which they were
// first set; decoding keeps the server's order.
type Fields struct {
	keys   []string
	values map[string]any
}

// NewFields creates an empty field set.
func NewFields() *Fields {
	return &Fields{values: map[string]any{}}
}

// FieldsOf builds a field set from alternating key/value pairs.
func FieldsOf(pairs ...any) *Fields {
	fields := NewFields()

	for i := 0; i+1 < len(pairs); i += 2 {
		fields.Set(fmt.Sprint(pairs[i]), pairs[i+1])
	}

	return fields
}

// Len returns the number of keys.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}

	return len(f.keys)
}

// Keys returns a copy of the keys in order.
func (f *Fields) Keys() []string {
	if f == nil {
		return nil
	}

	return append([]string(nil), f.keys...)
}

// Has reports whether key is present.
func (f *Fields) Has(key string) bool {
	if f == nil {
		return false
	}

	_, ok := f.values[key]

	return ok
}

// Get returns the value stored under key.
func (f *Fields) Get(key string) (any, bool) {
	if f == nil {
		return nil, false
	}

	value, ok := f.values[key]

	return value, ok
}

// Set stores value under key. New keys are appended.
func (f *Fields) Set(key string, value any) {
	if f.values == nil {
		f.values = map[string]any{}
	}

	if _, exists := f.values[key]; !exists {
		f.keys = append(f.keys, key)
	}

	f.values[key] = value
}

// Delete removes key.
func (f *Fields) Delete(key string) {
	if _, exists := f.values[key]; !exists {
		return
	}

	delete(f.values, key)

	for i, existing := range f.keys {
		if existing == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)

			break
		}
	}
}

// Clone returns a shallow copy.
func (f *Fields) Clone() *Fields {
	out := NewFields()

	for _, key := range f.Keys() {
		out.Set(key, f.values[key])
	}

	return out
}

// Map returns a plain map, recursively converting nested field sets.
func (f *Fields) Map() map[string]any {
	out := make(map[string]any, f.Len())

	for _, key := range f.Keys() {
		out[key] = plainValue(f.values[key])
	}

	return out
}

func plainValue(value any) any {
	switch typed := value.(type) {
	case *Fields:
		return typed.Map()
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = plainValue(item)
		}

		return out
	default:
		return value
	}
}

// Equal reports whether both sets hold the same keys in the same order with
// equal values. go-cmp uses it when comparing listing pages.
func (f *Fields) Equal(other *Fields) bool {
	if f.Len() != other.Len() {
		return false
	}

	for i, key := range f.Keys() {
		if other.keys[i] != key {
			return false
		}

		if !cmp.Equal(f.values[key], other.values[key]) {
			return false
		}
	}

	return true
}

// MarshalJSON writes the keys in order.
func (f *Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, key := range f.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", key, err)
		}

		encodedValue, err := json.Marshal(f.values[key])
		if err != nil {
			return nil, fmt.Errorf("encoding value of %q: %w", key, err)
		}

		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

var errNotAnObject = errors.New("not a JSON object")

// UnmarshalJSON decodes an object, keeping key order. Numbers decode as
// json.Number, nested objects as *Fields and arrays as []any.
func (f *Fields) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	value, err := decodeValue(decoder)
	if err != nil {
		return err
	}

	decoded, ok := value.(*Fields)
	if !ok {
		return errNotAnObject
	}

	f.keys = decoded.keys
	f.values = decoded.values

	return nil
}

// MarshalYAML renders the keys in order.
func (f *Fields) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, key := range f.Keys() {
		var valueNode yaml.Node

		err := valueNode.Encode(yamlValue(f.values[key]))
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", key, err)
		}

		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, &valueNode)
	}

	return node, nil
}

func yamlValue(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return i
		}

		if fl, err := typed.Float64(); err == nil {
			return fl
		}

		return typed.String()
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = yamlValue(item)
		}

		return out
	default:
		return value
	}
}

func decodeValue(decoder *json.Decoder) (any, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := token.(json.Delim)
	if !ok {
		return token, nil
	}

	switch delim {
	case '{':
		fields := NewFields()

		for decoder.More() {
			keyToken, err := decoder.Token()
			if err != nil {
				return nil, err
			}

			key, ok := keyToken.(string)
			if !ok {
				return nil, fmt.Errorf("%w: object key %v", errNotAnObject, keyToken)
			}

			value, err := decodeValue(decoder)
			if err != nil {
				return nil, err
			}

			fields.Set(key, value)
		}

		_, err = decoder.Token()

		return fields, err
	case '[':
		items := []any{}

		for decoder.More() {
			item, err := decodeValue(decoder)
			if err != nil {
				return nil, err
			}

			items = append(items, item)
		}

		_, err = decoder.Token()

		return items, err
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// DecodePayload decodes a response body. JSON bodies become *Fields, []any,
// json.Number, string, bool or nil. Bodies that are not a single JSON value
// are returned verbatim as a string.
func DecodePayload(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	value, err := decodeValue(decoder)
	if err != nil {
		return string(body), nil //nolint:nilerr // plain-text bodies are valid results
	}

	_, err = decoder.Token()
	if !errors.Is(err, io.EOF) {
		return string(body), nil
	}

	return value, nil
}
