package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/storybook/internal/config"
	"github.com/listenupapp/storybook/internal/logger"
	"github.com/listenupapp/storybook/internal/search"
	"github.com/listenupapp/storybook/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.Open(search.Options{
		Path:   cfg.Data.SearchPath(),
		Logger: log.Component("search"),
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides the search service and wires it into the store
// so writes keep the index current.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSearchService(indexHandle.Index, storeHandle.Store, log.Component("search"))
	storeHandle.SetSearchIndexer(indexHandle.Index)

	return svc, nil
}

// SyncSearchIndex rebuilds the index in the background when it has drifted from the store.
func SyncSearchIndex(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	go func() {
		rebuilt, err := searchService.Sync(context.Background())
		if err != nil {
			log.Error("Search index sync failed", "error", err)
			return
		}
		if rebuilt {
			count, _ := searchService.DocumentCount()
			log.Info("Search index rebuilt", "documents", count)
		}
	}()
}
