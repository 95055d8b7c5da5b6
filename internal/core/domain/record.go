package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Fields is a flat mapping of field name to value.
// Values are restricted to string, []string or nil.
type Fields map[string]any

// Validate checks that every value has a permitted type.
func (f Fields) Validate() error {
	for _, name := range f.Names() {
		switch f[name].(type) {
		case nil, string, []string:
		default:
			return fmt.Errorf("%w: field %q has unsupported type %T", ErrInvalidInput, name, f[name])
		}
	}
	return nil
}

// Names returns the field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns the value of a string field, or "" if absent or not a string.
func (f Fields) String(name string) string {
	s, _ := f[name].(string)
	return s
}

// Strings returns the value of a field as a list.
// A string value is returned as a one-element list.
func (f Fields) Strings(name string) []string {
	switch v := f[name].(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// Clone returns a deep copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	dst := make(Fields, len(f))
	for k, v := range f {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		dst[k] = v
	}
	return dst
}

// UnmarshalJSON decodes an object, converting arrays to []string.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*f = nil
		return nil
	}
	out := make(Fields, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil, string:
			out[k] = val
		case []any:
			list := make([]string, 0, len(val))
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					return fmt.Errorf("%w: field %q has non-string element %T", ErrInvalidInput, k, item)
				}
				list = append(list, s)
			}
			out[k] = list
		default:
			return fmt.Errorf("%w: field %q has unsupported type %T", ErrInvalidInput, k, v)
		}
	}
	*f = out
	return nil
}

// NormalizedRecord is the converter's output for one raw document.
type NormalizedRecord struct {
	// Identifier is the stable key for upserts.
	// It is derived deterministically from the raw document.
	Identifier string

	// Fields holds the structured metadata.
	Fields Fields

	// ContextualText is a free-text summary used for search relevance.
	ContextualText string
}

// IndexEntry is a record as stored in an index collection.
// Entries with the same Collection and Key replace each other.
type IndexEntry struct {
	// Collection is the index or collection name.
	Collection string

	// Key is the upsert key.
	Key string

	// Fields holds the structured metadata.
	Fields Fields

	// ContextualText is the free-text summary.
	ContextualText string

	// IndexedAt is when the entry was last written.
	IndexedAt time.Time
}
