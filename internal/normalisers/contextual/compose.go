// Package contextual assembles the free-text summary that index backends
// use for search relevance. It reads structured fields but never changes them.
package contextual

import (
	"strings"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

// Composer builds contextual text from a prioritised field list.
type Composer struct {
	// Fields are read in order; their non-empty values are joined.
	Fields []string

	// Fallback is used when every prioritised field is empty.
	// It is matched case-insensitively against the record's field names.
	Fallback string
}

// Compose returns the contextual text for a record.
func (c Composer) Compose(fields domain.Fields) string {
	var parts []string
	for _, name := range c.Fields {
		if v := joined(fields, name); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ". ")
	}
	if c.Fallback == "" {
		return ""
	}
	return joined(fields, lookup(fields, c.Fallback))
}

func joined(fields domain.Fields, name string) string {
	var values []string
	for _, v := range fields.Strings(name) {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return strings.Join(values, ", ")
}

// lookup resolves name to the record's own spelling of the field.
func lookup(fields domain.Fields, name string) string {
	if _, ok := fields[name]; ok {
		return name
	}
	for _, candidate := range fields.Names() {
		if strings.EqualFold(candidate, name) {
			return candidate
		}
	}
	return name
}
