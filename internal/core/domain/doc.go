// Package domain defines the core business entities for sercha-harvest.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentReference: An identifier produced by a listing query
//   - RawDocument: Opaque bytes fetched for one reference
//   - NormalizedRecord: A flat record produced by a converter
//   - IndexEntry: A record as stored in an index collection
//   - RunConfig: The enumerated configuration of one pipeline run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
