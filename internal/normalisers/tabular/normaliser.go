// Package tabular converts staged CSV rows into records.
package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-harvest/internal/normalisers/contextual"
)

// Ensure Normaliser implements the interface.
var _ driven.RecordConverter = (*Normaliser)(nil)

// RowField names the row in ParseErrors about the CSV payload itself.
const RowField = "row"

// DefaultComposer builds contextual text for notebook records.
var DefaultComposer = contextual.Composer{
	Fields:   []string{"name", "description", "file_name"},
	Fallback: "source_id",
}

// Normaliser handles header-plus-row CSV payloads.
type Normaliser struct {
	composer contextual.Composer
}

// New creates a tabular normaliser.
func New() *Normaliser {
	return &Normaliser{composer: DefaultComposer}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/csv"}
}

// Convert maps every column of the staged row onto a field.
// Empty cells become nil.
func (n *Normaliser) Convert(_ context.Context, raw *domain.RawDocument, idField string) (*domain.NormalizedRecord, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	header, row, err := ReadRow(raw.Content)
	if err != nil {
		return nil, &domain.ParseError{Identifier: raw.Identifier, Field: RowField, Err: err}
	}

	fields := make(domain.Fields, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		var v any
		if i < len(row) && row[i] != "" {
			v = row[i]
		}
		fields[col] = v
	}

	key := strings.TrimSpace(fields.String(idField))
	if key == "" {
		return nil, &domain.ParseError{Identifier: raw.Identifier, Field: idField}
	}

	return &domain.NormalizedRecord{
		Identifier:     key,
		Fields:         fields,
		ContextualText: n.composer.Compose(fields),
	}, nil
}

// ReadRow parses a header line followed by exactly one data row.
func ReadRow(data []byte) (header, row []string, err error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	r.FieldsPerRecord = -1

	header, err = r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("empty payload")
		}
		return nil, nil, err
	}
	row, err = r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("no data row")
		}
		return nil, nil, err
	}
	return header, row, nil
}

// WriteRow encodes a header and one data row as CSV.
func WriteRow(header, row []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.Write(row); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
