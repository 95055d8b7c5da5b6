// Package icos implements the ICOS Carbon Portal dataset source.
//
// Data objects are listed with a single SPARQL query against the portal's
// endpoint. Each object's landing page is then fetched and its embedded
// schema.org description converted into a dataset record.
package icos
