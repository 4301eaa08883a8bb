package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/listenupapp/storybook/internal/domain"
	"github.com/listenupapp/storybook/internal/logger"
)

// mappingVersion changes whenever buildIndexMapping does; a mismatch triggers a rebuild on open.
const mappingVersion = "1"

// Index wraps a Bleve index of books. All methods are safe for concurrent use.
type Index struct {
	index    bleve.Index
	path     string
	inMemory bool
	logger   *slog.Logger
	mu       sync.RWMutex // Held exclusively while rebuilding
}

// Options configures the search index.
type Options struct {
	Path     string // Index directory, e.g. <data>/search.bleve
	InMemory bool   // Ignore Path and keep the index in memory
	Logger   *slog.Logger
}

// Open creates or opens the index. An on-disk index that is unreadable or was
// built with a different mapping is discarded and starts empty; callers compare
// DocumentCount with the store to decide whether to Rebuild.
func Open(opts Options) (*Index, error) {
	log := logger.OrDiscard(opts.Logger)

	if opts.InMemory {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &Index{index: index, inMemory: true, logger: log}, nil
	}

	versionPath := opts.Path + ".version"

	var index bleve.Index
	if _, err := os.Stat(opts.Path); err == nil {
		existing, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil || string(existing) != mappingVersion:
			log.Info("search mapping changed, recreating index",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
		default:
			index, err = bleve.Open(opts.Path)
			if err != nil {
				log.Warn("failed to open search index, recreating", "path", opts.Path, "error", err)
				index = nil
			}
		}
	}

	if index != nil {
		log.Info("opened search index", "path", opts.Path)
		return &Index{index: index, path: opts.Path, logger: log}, nil
	}

	index, err := create(opts.Path, versionPath)
	if err != nil {
		return nil, err
	}
	log.Info("created search index", "path", opts.Path, "mapping_version", mappingVersion)
	return &Index{index: index, path: opts.Path, logger: log}, nil
}

func create(path, versionPath string) (bleve.Index, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove old index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	index, err := bleve.New(path, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("write mapping version: %w", err)
	}
	return index, nil
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBook adds or replaces book in the index.
func (s *Index) IndexBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(book.ID, FromBook(book).ToMap())
}

// DeleteBook removes a book. Unknown ids are ignored.
func (s *Index) DeleteBook(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the number of indexed books.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index contents with books.
// Other operations block until it finishes.
func (s *Index) Rebuild(ctx context.Context, books []*domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.inMemory {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		index, err = create(s.path, s.path+".version")
	}
	if err != nil {
		return fmt.Errorf("recreate index: %w", err)
	}
	s.index = index

	const batchSize = 500
	for start := 0; start < len(books); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+batchSize, len(books))

		batch := s.index.NewBatch()
		for _, book := range books[start:end] {
			if err := batch.Index(book.ID, FromBook(book).ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", book.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}

	s.logger.Info("rebuilt search index", "books", len(books), "in_memory", s.inMemory)
	return nil
}
