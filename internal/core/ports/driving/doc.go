// Package driving defines the ports the CLI uses to drive harvest runs,
// read the index back and inspect registered sources.
//
// Implementations live in internal/core/services.
package driving
