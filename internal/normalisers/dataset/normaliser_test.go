package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

const landingURL = "https://meta.icos-cp.eu/objects/abc123"

func page(jsonLD string) *domain.RawDocument {
	html := fmt.Sprintf(`<!DOCTYPE html><html><head><title>x</title>
<script type="application/ld+json">%s</script></head><body></body></html>`, jsonLD)
	return &domain.RawDocument{
		Identifier: landingURL,
		SourceURL:  landingURL,
		MIMEType:   "text/html",
		Content:    []byte(html),
	}
}

// block returns a complete dataset description with the given overrides
// substituted in. Keys mapped to "" are dropped.
func block(overrides map[string]string) string {
	props := []struct{ key, value string }{
		{"@type", `"Dataset"`},
		{"name", `"Atmospheric CO2 at Hyltemossa"`},
		{"description", `"Hourly CO2 mole fractions"`},
		{"identifier", `"https://hdl.handle.net/11676/abc123"`},
		{"license", `"https://creativecommons.org/licenses/by/4.0/"`},
		{"publisher", `{"@type":"Organization","name":"ICOS Carbon Portal"}`},
		{"creator", `{"@type":"Person","name":"Jane Doe"}`},
		{"spatialCoverage", `[{"@type":"Place","name":"Hyltemossa","containedInPlace":{"@type":"Country","name":"Sweden"}}]`},
		{"temporalCoverage", `"2017-01-01/2019-12-31"`},
		{"keywords", `["carbon dioxide","ICOS"]`},
		{"inLanguage", `{"@type":"Language","name":"English"}`},
		{"datePublished", `"2020-06-01"`},
		{"dateModified", `"2021-02-03"`},
		{"acquireLicensePage", `"https://data.icos-cp.eu/licence"`},
		{"distribution", `{"@type":"DataDownload","contentUrl":"https://data.icos-cp.eu/objects/abc123","encodingFormat":"text/csv"}`},
	}
	var parts []string
	for _, p := range props {
		value := p.value
		if v, ok := overrides[p.key]; ok {
			value = v
		}
		if value == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%q: %s", p.key, value))
	}
	return "{" + strings.Join(parts, ",\n") + "}"
}

func TestNormaliser_SupportedMIMETypes(t *testing.T) {
	n := New("ICOS")
	assert.Contains(t, n.SupportedMIMETypes(), "text/html")
}

func TestNormaliser_Convert_FullRecord(t *testing.T) {
	n := New("ICOS")

	rec, err := n.Convert(context.Background(), page(block(nil)), "identifier")
	require.NoError(t, err)

	want := domain.Fields{
		FieldResearchInfrastructure: "ICOS",
		FieldURL:                    landingURL,
		FieldAcquireLicensePage:     "https://data.icos-cp.eu/licence",
		FieldContact:                "Atmospheric CO2 at Hyltemossa",
		FieldContentInfo:            "Atmospheric CO2 at Hyltemossa",
		FieldCreator:                []string{"Jane Doe"},
		FieldDatePublished:          "2020-06-01",
		FieldDescription:            "Hourly CO2 mole fractions",
		FieldDistribution:           "https://data.icos-cp.eu/objects/abc123",
		FieldDistributionInfo:       "https://data.icos-cp.eu/objects/abc123",
		FieldIdentifier:             "https://hdl.handle.net/11676/abc123",
		FieldKeywords:               []string{"carbon dioxide", "ICOS"},
		FieldLanguage:               []string{"English"},
		FieldLicense:                "https://creativecommons.org/licenses/by/4.0/",
		FieldModificationDate:       "2021-02-03",
		FieldName:                   "Atmospheric CO2 at Hyltemossa",
		FieldPublisher:              "ICOS Carbon Portal",
		FieldSpatialCoverage:        "Sweden",
		FieldTemporalCoverage:       "2017-01-01/2019-12-31",
		FieldAbstract:               "",
	}
	if diff := cmp.Diff(want, rec.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "https://hdl.handle.net/11676/abc123", rec.Identifier)
	assert.NoError(t, rec.Fields.Validate())
	assert.Contains(t, rec.ContextualText, "carbon dioxide")
	assert.Contains(t, rec.ContextualText, "Atmospheric CO2 at Hyltemossa")
}

func TestNormaliser_Convert_Creator(t *testing.T) {
	tests := []struct {
		name    string
		creator string
		want    []string
	}{
		{
			name:    "single object wrapped",
			creator: `{"@type":"Person","name":"Jane Doe"}`,
			want:    []string{"Jane Doe"},
		},
		{
			name:    "list keeps source order",
			creator: `[{"name":"Alice"},{"name":"Bob"},{"name":"Carol"}]`,
			want:    []string{"Alice", "Bob", "Carol"},
		},
		{
			name:    "bare string",
			creator: `"ICOS ATC"`,
			want:    []string{"ICOS ATC"},
		},
	}

	n := New("ICOS")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := n.Convert(context.Background(), page(block(map[string]string{"creator": tt.creator})), "identifier")
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Fields[FieldCreator])
		})
	}
}

func TestNormaliser_Convert_SpatialCoverage(t *testing.T) {
	tests := []struct {
		name    string
		spatial string
		want    string
	}{
		{
			name:    "prefers containing place",
			spatial: `[{"name":"Hyltemossa","containedInPlace":{"name":"X"}}]`,
			want:    "X",
		},
		{
			name:    "own name without containing place",
			spatial: `[{"name":"Hyltemossa"}]`,
			want:    "Hyltemossa",
		},
		{
			name:    "first element only",
			spatial: `[{"name":"First"},{"name":"Second"}]`,
			want:    "First",
		},
		{
			name:    "single object",
			spatial: `{"name":"Lonely"}`,
			want:    "Lonely",
		},
	}

	n := New("ICOS")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := n.Convert(context.Background(), page(block(map[string]string{"spatialCoverage": tt.spatial})), "identifier")
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Fields[FieldSpatialCoverage])
		})
	}
}

func TestNormaliser_Convert_SpatialCoverageEmptyList(t *testing.T) {
	n := New("ICOS")

	_, err := n.Convert(context.Background(), page(block(map[string]string{"spatialCoverage": `[]`})), "identifier")

	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "spatialCoverage", pe.Field)
}

func TestNormaliser_Convert_UnnamedEntity(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"creator without name", "creator", `[{"@id":"https://orcid.org/0000-0001"},{"name":"Jane"}]`},
		{"single creator without name", "creator", `{"@type":"Person"}`},
		{"creator with blank name", "creator", `{"name":"  "}`},
		{"publisher without name", "publisher", `{"@type":"Organization","@id":"https://www.icos-cp.eu/"}`},
		{"language without name", "inLanguage", `[{"name":"English"},{"alternateName":"sv"}]`},
		{"place without name", "spatialCoverage", `[{"@type":"Place"}]`},
		{"containing place without name", "spatialCoverage", `[{"name":"Hyltemossa","containedInPlace":{"@type":"Country"}}]`},
	}

	n := New("ICOS")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Convert(context.Background(), page(block(map[string]string{tt.field: tt.value})), "identifier")
			require.Error(t, err)

			var pe *domain.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.field, pe.Field)
			assert.ErrorIs(t, err, errNoName)
		})
	}
}

func TestNormaliser_Convert_LanguageAlwaysList(t *testing.T) {
	n := New("ICOS")

	rec, err := n.Convert(context.Background(), page(block(map[string]string{
		"inLanguage": `[{"name":"English"},{"name":"Swedish"}]`,
	})), "identifier")
	require.NoError(t, err)
	assert.Equal(t, []string{"English", "Swedish"}, rec.Fields[FieldLanguage])

	rec, err = n.Convert(context.Background(), page(block(map[string]string{"inLanguage": `"English"`})), "identifier")
	require.NoError(t, err)
	assert.Equal(t, []string{"English"}, rec.Fields[FieldLanguage])
}

func TestNormaliser_Convert_MissingDistributionIsNull(t *testing.T) {
	n := New("ICOS")

	rec, err := n.Convert(context.Background(), page(block(map[string]string{"distribution": ""})), "identifier")
	require.NoError(t, err)

	v, ok := rec.Fields[FieldDistribution]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Nil(t, rec.Fields[FieldDistributionInfo])
}

func TestNormaliser_Convert_MissingRequiredField(t *testing.T) {
	required := []string{
		"name", "description", "identifier", "license", "publisher", "creator",
		"spatialCoverage", "temporalCoverage", "keywords", "inLanguage",
		"datePublished", "dateModified", "acquireLicensePage",
	}

	n := New("ICOS")
	for _, field := range required {
		t.Run(field, func(t *testing.T) {
			_, err := n.Convert(context.Background(), page(block(map[string]string{field: ""})), "identifier")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrParse)

			var pe *domain.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, field, pe.Field)
			assert.Equal(t, landingURL, pe.Identifier)
		})
	}
}

func TestNormaliser_Convert_NullFieldIsMissing(t *testing.T) {
	n := New("ICOS")

	_, err := n.Convert(context.Background(), page(block(map[string]string{"license": "null"})), "identifier")

	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "license", pe.Field)
}

func TestNormaliser_Convert_NoBlock(t *testing.T) {
	n := New("ICOS")
	raw := &domain.RawDocument{Identifier: landingURL, Content: []byte("<html><body>nothing</body></html>")}

	_, err := n.Convert(context.Background(), raw, "identifier")

	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, BlockField, pe.Field)
}

func TestNormaliser_Convert_LenientBlock(t *testing.T) {
	n := New("ICOS")
	// Trailing comma is tolerated by the JSON5 fallback.
	lenient := strings.TrimSuffix(block(nil), "}") + ",}"

	rec, err := n.Convert(context.Background(), page(lenient), "identifier")
	require.NoError(t, err)
	assert.Equal(t, "ICOS Carbon Portal", rec.Fields[FieldPublisher])
}

func TestNormaliser_Convert_CustomIDField(t *testing.T) {
	n := New("ICOS")

	rec, err := n.Convert(context.Background(), page(block(nil)), FieldURL)
	require.NoError(t, err)
	assert.Equal(t, landingURL, rec.Identifier)

	_, err = n.Convert(context.Background(), page(block(nil)), "doi")
	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "doi", pe.Field)
}

func TestNormaliser_Convert_Deterministic(t *testing.T) {
	n := New("ICOS")
	raw := page(block(map[string]string{"creator": `[{"name":"A"},{"name":"B"}]`}))

	first, err := n.Convert(context.Background(), raw, "identifier")
	require.NoError(t, err)
	second, err := n.Convert(context.Background(), raw, "identifier")
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second))
}

func TestNormaliser_Convert_NilRaw(t *testing.T) {
	n := New("ICOS")

	_, err := n.Convert(context.Background(), nil, "identifier")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
