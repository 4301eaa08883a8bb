package api

import (
	"context"

	"github.com/listenupapp/storybook/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Book   *service.BookService
	Search *service.SearchService // nil disables the search health check
}

// Pinger reports whether the database is reachable. *store.Store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}
