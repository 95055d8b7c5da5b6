// Package sqlite provides a SQLite-backed index service.
//
// Entries live in a single table keyed by (collection, entry_key). Fields
// are stored as JSON; a lowercased search column concatenates every value
// and the contextual text so Search can match terms with LIKE.
package sqlite
