package connectors

import (
	"github.com/custodia-labs/sercha-harvest/internal/connectors/icos"
	"github.com/custodia-labs/sercha-harvest/internal/connectors/notebook"
	"github.com/custodia-labs/sercha-harvest/internal/connectors/web"
	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
)

// Dependencies are the shared resources sources are built from.
type Dependencies struct {
	// Client is used by remote sources.
	Client *web.Client

	// Staging receives fetched payloads.
	Staging driven.StagingArea

	// ICOSOptions customise the ICOS source (e.g., endpoint overrides).
	ICOSOptions []icos.Option
}

// RegisterDefaults registers all built-in sources with the factory.
func RegisterDefaults(f *Factory, deps Dependencies) {
	f.Register(icos.Type, func(cfg domain.RunConfig) (driven.Source, error) {
		return icos.New(cfg, deps.Client, deps.Staging, deps.ICOSOptions...)
	})
	f.Register(notebook.KaggleType, notebookBuilder(notebook.KaggleType.ID, deps))
	f.Register(notebook.GitHubType, notebookBuilder(notebook.GitHubType.ID, deps))
}

func notebookBuilder(id string, deps Dependencies) driven.SourceBuilder {
	return func(cfg domain.RunConfig) (driven.Source, error) {
		return notebook.New(id, cfg, deps.Staging)
	}
}
