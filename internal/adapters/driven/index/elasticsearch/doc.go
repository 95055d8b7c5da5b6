// Package elasticsearch provides an index service backed by an
// Elasticsearch cluster's document REST API.
//
// Each collection is an Elasticsearch index and each entry a document
// whose _id is the upsert key. PUT replaces the whole document, which
// gives last-write-wins upserts without partial merges.
package elasticsearch
