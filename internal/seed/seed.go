// Package seed fills an empty library with the built-in catalog of books.
package seed

import (
	"context"
	_ "embed"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/listenupapp/storybook/internal/domain"
)

//go:embed catalog.json
var catalogJSON []byte

// Store is the subset of the persistence layer the seeder needs.
type Store interface {
	CountBooks(ctx context.Context) (int, error)
	PutBooks(ctx context.Context, books []*domain.Book) error
}

// Catalog returns a fresh copy of the built-in books.
// Image fields hold asset paths relative to the deployed base path.
func Catalog() ([]*domain.Book, error) {
	var books []*domain.Book
	if err := json.Unmarshal(catalogJSON, &books); err != nil {
		return nil, fmt.Errorf("parse built-in catalog: %w", err)
	}
	return books, nil
}

// ResolveAssets returns a copy of book with every relative asset reference
// (cover and page images) prefixed by basePath. The input is not modified.
func ResolveAssets(book *domain.Book, basePath string) *domain.Book {
	out := book.Clone()
	out.CoverImage = resolveAsset(out.CoverImage, basePath)
	for i := range out.Pages {
		out.Pages[i].Image = resolveAsset(out.Pages[i].Image, basePath)
	}
	return out
}

// resolveAsset rewrites a relative asset path against basePath.
// Empty values, root-absolute paths, data URIs and absolute URLs pass through unchanged.
func resolveAsset(ref, basePath string) string {
	if ref == "" || strings.HasPrefix(ref, "/") {
		return ref
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		return ref
	}
	return normalizeBasePath(basePath) + ref
}

// normalizeBasePath guarantees a leading and trailing slash ("" -> "/").
func normalizeBasePath(basePath string) string {
	if !strings.HasPrefix(basePath, "/") && !strings.Contains(basePath, "://") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath
}

// Seeder inserts the built-in catalog into an empty store.
type Seeder struct {
	store    Store
	basePath string
	catalog  func() ([]*domain.Book, error)
	logger   *slog.Logger
}

// Option customizes a Seeder.
type Option func(*Seeder)

// WithCatalog replaces the built-in catalog source.
func WithCatalog(catalog func() ([]*domain.Book, error)) Option {
	return func(s *Seeder) {
		s.catalog = catalog
	}
}

// New creates a seeder that resolves assets against basePath.
func New(store Store, basePath string, logger *slog.Logger, opts ...Option) *Seeder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Seeder{
		store:    store,
		basePath: basePath,
		catalog:  Catalog,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSeeded inserts the whole catalog in one batch if and only if the store is empty.
// It returns the number of books inserted (zero when the store already had content).
// On failure nothing is inserted, so the next start tries again.
func (s *Seeder) EnsureSeeded(ctx context.Context) (int, error) {
	count, err := s.store.CountBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	if count > 0 {
		s.logger.Debug("library not empty, skipping seed", "books", count)
		return 0, nil
	}

	catalog, err := s.catalog()
	if err != nil {
		return 0, err
	}

	books := make([]*domain.Book, 0, len(catalog))
	for _, book := range catalog {
		books = append(books, ResolveAssets(book, s.basePath))
	}

	if err := s.store.PutBooks(ctx, books); err != nil {
		return 0, fmt.Errorf("insert built-in books: %w", err)
	}

	s.logger.Info("seeded built-in books", "count", len(books), "base_path", s.basePath)
	return len(books), nil
}
