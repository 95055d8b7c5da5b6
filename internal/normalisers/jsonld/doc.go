// Package jsonld locates and decodes the JSON-LD metadata block embedded in
// HTML landing pages, and provides typed value shapes for the schema.org
// properties that appear as either a single value or a list.
package jsonld
