// Package store provides durable local persistence of books on top of BadgerDB.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/storybook/internal/domain"
	domainerrors "github.com/listenupapp/storybook/internal/errors"
)

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on the search implementation.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// DeleteBook is a no-op.
func (NoopSearchIndexer) DeleteBook(context.Context, string) error { return nil }

// Options configures how the database is opened.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in memory. Used by tests and throwaway sessions.
	InMemory bool
	// Logger receives store lifecycle and sync messages. Nil discards.
	Logger *slog.Logger
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation.
	searchIndexer SearchIndexer

	// Books is the single collection of book records keyed by book ID.
	Books *Entity[domain.Book]
}

// New opens (or creates) the on-disk database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	return Open(Options{Path: path, Logger: logger})
}

// NewInMemory opens a database that lives only for the lifetime of the process.
func NewInMemory(logger *slog.Logger) (*Store, error) {
	return Open(Options{InMemory: true, Logger: logger})
}

// Open opens a database with the given options.
func Open(o Options) (*Store, error) {
	var opts badger.Options
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(o.Path)
		opts.SyncWrites = true       // A returned put is durable
		opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	}
	opts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domainerrors.Storage(err, "open badger db")
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Store{
		db:            db,
		logger:        logger,
		searchIndexer: NoopSearchIndexer{},
	}
	s.Books = NewEntity(s, bookPrefix, func(b *domain.Book) string { return b.ID })

	logger.Info("Badger database opened", "path", o.Path, "in_memory", o.InMemory)

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	s.logger.Info("Closing database connection")
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// The index is created after the store, since rebuilding it reads from the store.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	if indexer == nil {
		indexer = NoopSearchIndexer{}
	}
	s.searchIndexer = indexer
}

// Ping performs a cheap read to verify the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(bookPrefix))
		if err != nil && !domainerrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return domainerrors.Storage(err, "ping database")
	}
	return nil
}

// wrapStorage converts Badger failures into coded storage errors, leaving
// context and already-coded errors untouched.
func wrapStorage(err error, op string) error {
	if err == nil {
		return nil
	}
	if domainerrors.Is(err, context.Canceled) || domainerrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var coded *domainerrors.Error
	if domainerrors.As(err, &coded) {
		return err
	}
	return domainerrors.Storage(err, fmt.Sprintf("%s failed", op))
}
