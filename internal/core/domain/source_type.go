package domain

// SourceType describes a registered data source.
type SourceType struct {
	// ID is the unique identifier used in RunConfig.Source (e.g., "icos").
	ID string
	// Name is the human-readable display name.
	Name string
	// Description provides a brief explanation of the source.
	Description string
	// DocTypes lists the document types the source can produce.
	DocTypes []DocType
	// DefaultIDField is the record field suggested as the upsert key.
	DefaultIDField string
}

// Supports returns true if the source can produce the document type.
func (s *SourceType) Supports(docType DocType) bool {
	for _, d := range s.DocTypes {
		if d == docType {
			return true
		}
	}
	return false
}
