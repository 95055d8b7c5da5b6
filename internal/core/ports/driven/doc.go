// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentLister: Enumerates document references for a source
//   - RecordFetcher: Retrieves and stages one raw document
//   - RecordConverter: Parses one raw document into a normalised record
//   - Source: Bundles the three capabilities above for one data source
//   - SourceFactory: Creates sources from run configuration
//   - IndexWriter / Index: Upserts records into a collection
//   - StagingArea: Local storage for references and raw payloads
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - MetricsRecorder: Pipeline counters. Without it, no metrics are emitted.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
