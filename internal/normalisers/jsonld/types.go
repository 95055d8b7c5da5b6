package jsonld

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OneOrMany decodes a property that is either a single value or a list.
type OneOrMany[T any] []T

// UnmarshalJSON accepts a JSON array or a single value.
func (m *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []T
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*m = list
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*m = OneOrMany[T]{one}
	return nil
}

// Thing is a named schema.org entity (Person, Organization, Language).
type Thing struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts an object or a bare string name.
func (t *Thing) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Thing{Name: s}
		return nil
	}
	type plain Thing
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Thing(p)
	return nil
}

// Place is a schema.org Place, optionally nested in a larger place.
type Place struct {
	Name             string `json:"name"`
	ContainedInPlace *Place `json:"containedInPlace"`
}

// UnmarshalJSON accepts an object or a bare string name.
func (p *Place) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Place{Name: s}
		return nil
	}
	type plain Place
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Place(v)
	return nil
}

// Distribution is a schema.org DataDownload.
type Distribution struct {
	ContentURL     string `json:"contentUrl"`
	EncodingFormat string `json:"encodingFormat"`
}

// Text decodes a property that is a string or an object carrying
// the string in "value", "@id", "url" or "name".
type Text string

// UnmarshalJSON accepts a string, number or object.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Text(n.String())
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("expected string or object: %w", err)
	}
	for _, key := range []string{"value", "@id", "url", "name"} {
		if raw, ok := obj[key]; ok {
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				*t = Text(s)
				return nil
			}
		}
	}
	return fmt.Errorf("object has no textual value")
}

// TextList decodes a list of strings or a comma-separated string.
type TextList []string

// UnmarshalJSON accepts an array of strings or a comma-separated string.
func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []Text
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(TextList, 0, len(items))
		for _, item := range items {
			if s := strings.TrimSpace(string(item)); s != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected string or list: %w", err)
	}
	var out TextList
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*l = out
	return nil
}
