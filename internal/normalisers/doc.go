// Package normalisers holds the RecordConverter implementations and the
// helpers they share. Each converter turns one staged raw document into a
// NormalizedRecord:
//
//   - dataset: dataset landing pages with embedded schema.org JSON-LD
//   - tabular: single CSV rows from notebook listings
//
// The jsonld and contextual packages are shared building blocks.
package normalisers
