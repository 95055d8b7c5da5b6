// Package filesystem provides a StagingArea backed by a local directory.
//
// Layout:
//
//	<root>/<source>/<doc_type>/references.csv
//	<root>/<source>/<doc_type>/raw/<name><ext>
//
// where <name> is the sanitised last path segment of the identifier
// followed by a short SHA-256 prefix, so distinct identifiers never share
// a file and the same identifier always maps to the same file.
package filesystem
