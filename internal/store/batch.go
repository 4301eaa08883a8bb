package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/storybook/internal/domain"
)

// BatchWriter provides efficient bulk write operations using BadgerDB's WriteBatch.
// Used by library import, where books are independent and partial progress is acceptable.
type BatchWriter struct {
	store     *Store
	batch     *badger.WriteBatch
	pending   []*domain.Book
	maxSize   int
	written   int
	autoFlush bool
}

// NewBatchWriter creates a new batch writer that will auto-flush when maxSize is reached.
func (s *Store) NewBatchWriter(maxSize int) *BatchWriter {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &BatchWriter{
		store:     s,
		batch:     s.db.NewWriteBatch(),
		maxSize:   maxSize,
		autoFlush: true,
	}
}

// PutBook adds a book to the batch.
// If autoFlush is enabled and batch reaches maxSize, it will flush automatically.
func (b *BatchWriter) PutBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}

	if err := b.batch.Set([]byte(bookPrefix+book.ID), data); err != nil {
		return wrapStorage(err, "batch set book")
	}
	b.pending = append(b.pending, book)

	if b.autoFlush && len(b.pending) >= b.maxSize {
		if err := b.Flush(ctx); err != nil {
			return fmt.Errorf("auto flush: %w", err)
		}
	}

	return nil
}

// Flush commits all pending writes in the batch and indexes the flushed books.
func (b *BatchWriter) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}

	if err := b.batch.Flush(); err != nil {
		return wrapStorage(err, "flush batch")
	}

	for _, book := range b.pending {
		if err := b.store.searchIndexer.IndexBook(ctx, book); err != nil {
			b.store.logger.Warn("failed to index book", "id", book.ID, "error", err)
		}
	}

	b.store.logger.LogAttrs(ctx, slog.LevelInfo, "batch flushed",
		slog.Int("count", len(b.pending)),
	)

	b.written += len(b.pending)
	b.pending = b.pending[:0]
	b.batch = b.store.db.NewWriteBatch()

	return nil
}

// Cancel discards all pending writes in the batch.
func (b *BatchWriter) Cancel() {
	b.batch.Cancel()
	b.pending = b.pending[:0]
}

// Pending returns the number of books waiting in the current batch.
func (b *BatchWriter) Pending() int {
	return len(b.pending)
}

// Written returns the number of books committed so far.
func (b *BatchWriter) Written() int {
	return b.written
}
