package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/listenupapp/storybook/internal/logger"
	"github.com/listenupapp/storybook/internal/search"
)

// SearchService bridges the search index with the book store.
type SearchService struct {
	index  *search.Index
	store  BookStore
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, store BookStore, log *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger.OrDiscard(log),
	}
}

// Search runs a query against the index.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// DocumentCount returns the number of indexed books.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll drops the index contents and indexes every stored book.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}
	if err := s.index.Rebuild(ctx, books); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	s.logger.Info("full reindex complete", "books", len(books))
	return nil
}

// Sync reindexes when the index and the store disagree on the number of
// books, as after a mapping change or writes made while the index was closed.
// It reports whether a reindex ran.
func (s *SearchService) Sync(ctx context.Context) (bool, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return false, fmt.Errorf("list books: %w", err)
	}

	indexed, err := s.index.DocumentCount()
	if err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}
	if indexed == uint64(len(books)) {
		return false, nil
	}

	s.logger.Info("search index out of date", "indexed", indexed, "stored", len(books))
	if err := s.index.Rebuild(ctx, books); err != nil {
		return false, fmt.Errorf("rebuild index: %w", err)
	}
	return true, nil
}
