// Package di wires the Storybook server together with samber/do.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/storybook/internal/config"
	"github.com/listenupapp/storybook/internal/di/providers"
	"github.com/listenupapp/storybook/internal/logger"
	"github.com/listenupapp/storybook/internal/service"
	"github.com/listenupapp/storybook/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSeed)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideBookService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services in dependency order and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.BookService](injector)

	// Seed after the index is wired so built-in books are searchable.
	_ = do.MustInvoke[*providers.SeedResult](injector)
	providers.SyncSearchIndex(injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
