// Package index selects the index backend named in settings.
package index

import (
	"fmt"

	"github.com/custodia-labs/sercha-harvest/internal/adapters/driven/index/elasticsearch"
	"github.com/custodia-labs/sercha-harvest/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/sercha-harvest/internal/adapters/driven/index/sqlite"
	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
)

// Open returns the index for settings.IndexBackend.
// The caller must Close it.
func Open(settings domain.Settings) (driven.Index, error) {
	switch settings.IndexBackend {
	case domain.IndexBackendSQLite, "":
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite index: %w", err)
		}
		return store, nil
	case domain.IndexBackendElasticsearch:
		return elasticsearch.New(settings.ElasticsearchURL, settings.Timeout()), nil
	case domain.IndexBackendMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: index backend %q", domain.ErrUnsupportedType, settings.IndexBackend)
	}
}
