// Package web provides the HTTP plumbing shared by remote sources: a
// throttled resty client and a RecordFetcher that stages each response
// body under a deterministic path.
//
// Requests are never retried. A Retry-After header on a 429 or 503
// response pauses the requests that follow it.
package web
