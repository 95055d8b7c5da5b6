package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source, document type or backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRunInProgress indicates a run with the same name is already active.
	ErrRunInProgress = errors.New("run in progress")

	// Pipeline Errors.

	// ErrUpstreamQuery indicates the listing call failed. Fatal to a run.
	ErrUpstreamQuery = errors.New("upstream query failed")

	// ErrFetch indicates one document could not be retrieved.
	ErrFetch = errors.New("fetch failed")

	// ErrParse indicates a required field was missing or malformed.
	ErrParse = errors.New("parse failed")

	// ErrIndex indicates an index write was rejected.
	ErrIndex = errors.New("index write failed")
)

// UpstreamQueryError reports a failed listing query.
type UpstreamQueryError struct {
	// Source names the data source that was queried.
	Source string
	// Status is the HTTP status, or 0 when no response was received.
	Status int
	Err    error
}

func (e *UpstreamQueryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: listing %s: status %d: %v", ErrUpstreamQuery, e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: listing %s: %v", ErrUpstreamQuery, e.Source, e.Err)
}

func (e *UpstreamQueryError) Unwrap() error { return e.Err }

// Is matches ErrUpstreamQuery.
func (e *UpstreamQueryError) Is(target error) bool { return target == ErrUpstreamQuery }

// FetchError reports a document that could not be fetched.
type FetchError struct {
	Identifier string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrFetch, e.Identifier, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches ErrFetch.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ParseError reports a required field that was absent or malformed.
type ParseError struct {
	Identifier string
	Field      string
	Err        error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: missing field %q", ErrParse, e.Identifier, e.Field)
	}
	return fmt.Sprintf("%s: %s: field %q: %v", ErrParse, e.Identifier, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IndexError reports a rejected index write.
type IndexError struct {
	Key string
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrIndex, e.Key, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// Is matches ErrIndex.
func (e *IndexError) Is(target error) bool { return target == ErrIndex }
