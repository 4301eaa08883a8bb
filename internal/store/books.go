package store

import (
	"context"
	"log/slog"

	"github.com/listenupapp/storybook/internal/domain"
)

const bookPrefix = "book:"

// Book Operations

// ListBooks returns every stored book. Order is unspecified; callers sort as needed.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.Books.Collect(ctx)
}

// GetBook retrieves a book by ID. found is false when the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, bool, error) {
	return s.Books.Get(ctx, id)
}

// PutBook inserts or fully replaces the book stored at book.ID and returns the ID.
func (s *Store) PutBook(ctx context.Context, book *domain.Book) (string, error) {
	if err := s.Books.Put(ctx, book); err != nil {
		return "", err
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "book saved",
		slog.String("id", book.ID),
		slog.String("title", book.Title),
		slog.Int("pages", len(book.Pages)),
	)

	if err := s.searchIndexer.IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to index book", "id", book.ID, "error", err)
	}

	return book.ID, nil
}

// PutBooks writes all books in a single transaction.
func (s *Store) PutBooks(ctx context.Context, books []*domain.Book) error {
	if err := s.Books.PutAll(ctx, books); err != nil {
		return err
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "books saved", slog.Int("count", len(books)))

	for _, book := range books {
		if err := s.searchIndexer.IndexBook(ctx, book); err != nil {
			s.logger.Warn("failed to index book", "id", book.ID, "error", err)
		}
	}
	return nil
}

// DeleteBook removes a book. Deleting a missing book is a no-op.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	if err := s.Books.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "book deleted", slog.String("id", id))

	if err := s.searchIndexer.DeleteBook(ctx, id); err != nil {
		s.logger.Warn("failed to remove book from index", "id", id, "error", err)
	}
	return nil
}

// CountBooks returns the number of stored books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	return s.Books.Count(ctx)
}
