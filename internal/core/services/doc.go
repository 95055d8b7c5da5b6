// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Pipeline drives runs; the SearchService, SourceRegistry and
// Watcher serve the CLI around it.
package services
