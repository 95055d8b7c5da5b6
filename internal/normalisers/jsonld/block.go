package jsonld

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/titanous/json5"
)

// Selector matches the embedded metadata script.
const Selector = `script[type="application/ld+json"]`

var (
	// ErrNoBlock indicates the markup contains no JSON-LD script.
	ErrNoBlock = errors.New("no ld+json block")

	// ErrMalformed indicates the block is not a JSON object.
	ErrMalformed = errors.New("malformed ld+json block")

	// ErrMissing indicates a property is absent or null.
	ErrMissing = errors.New("missing property")
)

// Block is a decoded JSON-LD object keyed by property name.
// Values stay undecoded until a typed Decode call.
type Block map[string]json.RawMessage

// Extract locates the first JSON-LD script in markup and decodes it.
// Blocks that are not strict JSON are decoded as JSON5.
func Extract(markup []byte) (Block, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	script := doc.Find(Selector).First()
	if script.Length() == 0 {
		return nil, ErrNoBlock
	}

	return Parse([]byte(strings.TrimSpace(script.Text())))
}

// Parse decodes a JSON-LD document. A top-level array yields its first object.
func Parse(data []byte) (Block, error) {
	if len(data) == 0 {
		return nil, ErrMalformed
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var lenient any
		if err5 := json5.Unmarshal(data, &lenient); err5 != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if raw, err = json.Marshal(lenient); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return nil, ErrMalformed
		}
		raw = list[0]
	}

	var block Block
	if err := json.Unmarshal(raw, &block); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return block, nil
}

// Has reports whether a property is present and not null.
func (b Block) Has(key string) bool {
	v, ok := b[key]
	return ok && !isNull(v)
}

// Decode unmarshals a property into v.
// Returns ErrMissing if the property is absent or null.
func (b Block) Decode(key string, v any) error {
	if !b.Has(key) {
		return ErrMissing
	}
	return json.Unmarshal(b[key], v)
}

func isNull(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
