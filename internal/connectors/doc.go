// Package connectors provides the data sources the pipeline harvests.
// Each source knows how to list, fetch and convert documents from one
// upstream (the ICOS Carbon Portal, Kaggle or GitHub notebook exports).
//
// Sources are registered with the Factory at startup.
package connectors
