package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/storybook/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Searches titles, page text and captions. An empty query lists the newest books",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search parameters.
type SearchInput struct {
	Query string `query:"q" doc:"Search text"`
	Limit int    `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Maximum results"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.Result
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	res, err := s.services.Book.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, s.fail(err)
	}
	return &SearchOutput{Body: res}, nil
}
