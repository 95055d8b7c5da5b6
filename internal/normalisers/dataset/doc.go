// Package dataset provides a RecordConverter for dataset landing pages.
// It reads the schema.org Dataset description embedded as JSON-LD and
// maps it onto the flat record schema used by the research-infrastructure
// collections, validating required properties as it goes.
package dataset
