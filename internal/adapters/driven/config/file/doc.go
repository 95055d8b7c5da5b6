// Package file provides the TOML configuration store.
//
// The file holds process-wide settings (staging and data directories,
// index backend, HTTP client tuning) and the [[runs]] tables that
// enumerate pipeline runs.
package file
