package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/listenupapp/storybook/internal/domain"
	domainerrors "github.com/listenupapp/storybook/internal/errors"
	"github.com/listenupapp/storybook/internal/id"
	"github.com/listenupapp/storybook/internal/logger"
	"github.com/listenupapp/storybook/internal/search"
	"github.com/listenupapp/storybook/internal/util"
	"github.com/listenupapp/storybook/internal/validation"
)

// BookStore is the persistence the book service needs.
// *store.Store satisfies it.
type BookStore interface {
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, bool, error)
	PutBook(ctx context.Context, book *domain.Book) (string, error)
	DeleteBook(ctx context.Context, id string) error
}

// Searcher runs library searches. *search.Index and *SearchService satisfy it.
type Searcher interface {
	Search(ctx context.Context, params search.Params) (*search.Result, error)
}

// BookService orchestrates book operations.
type BookService struct {
	store     BookStore
	searcher  Searcher // nil falls back to title matching
	validator *validation.Validator
	logger    *slog.Logger
	now       func() int64
}

// NewBookService creates a new book service. searcher may be nil.
func NewBookService(store BookStore, searcher Searcher, validator *validation.Validator, log *slog.Logger) *BookService {
	if validator == nil {
		validator = validation.New()
	}
	return &BookService{
		store:     store,
		searcher:  searcher,
		validator: validator,
		logger:    logger.OrDiscard(log),
		now:       domain.NowMillis,
	}
}

// Save validates the draft and stores it as a book.
//
// New drafts get a fresh book ID and the current time as CreatedAt; drafts of
// existing books keep both. Invalid drafts return a VALIDATION error and never
// reach the store. The draft only picks up the saved ID after the store accepts it.
func (s *BookService) Save(ctx context.Context, d *Draft) (*domain.Book, error) {
	in := d.Input()
	in.fillPageIDs(id.NewPageID)

	book, err := s.build(in, d.id, d.createdAt)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.PutBook(ctx, book); err != nil {
		return nil, fmt.Errorf("save book: %w", err)
	}

	d.id = book.ID
	d.createdAt = book.CreatedAt
	d.Title = book.Title
	d.Pages = in.Pages

	return book, nil
}

// Create stores a new book.
func (s *BookService) Create(ctx context.Context, in BookInput) (*domain.Book, error) {
	d := &Draft{Title: in.Title, CoverImage: in.CoverImage, Pages: in.Pages}
	return s.Save(ctx, d)
}

// Update fully replaces an existing book, keeping its ID and CreatedAt.
func (s *BookService) Update(ctx context.Context, bookID string, in BookInput) (*domain.Book, error) {
	existing, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}

	d := DraftFrom(existing)
	d.Title = in.Title
	d.CoverImage = in.CoverImage
	d.Pages = in.Pages
	return s.Save(ctx, d)
}

// List returns every book, most recently created first.
func (s *BookService) List(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	domain.SortByCreatedDesc(books)
	return books, nil
}

// Get returns a book or a NOT_FOUND error.
func (s *BookService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	book, found, err := s.Lookup(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	return book, nil
}

// Lookup returns a book and whether it exists. A missing book is not an error.
func (s *BookService) Lookup(ctx context.Context, bookID string) (*domain.Book, bool, error) {
	book, found, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, false, fmt.Errorf("get book: %w", err)
	}
	return book, found, nil
}

// Delete removes a book. Deleting a missing book succeeds.
func (s *BookService) Delete(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

// Search finds books matching query, best match first.
func (s *BookService) Search(ctx context.Context, query string, limit int) (*search.Result, error) {
	params := search.Params{Query: strings.TrimSpace(query), Limit: limit}

	if s.searcher != nil {
		res, err := s.searcher.Search(ctx, params)
		if err == nil {
			return res, nil
		}
		s.logger.Warn("search index failed, scanning titles", "query", params.Query, "error", err)
	}

	return s.scanTitles(ctx, params)
}

// scanTitles is the index-free search: case-insensitive title substring, newest first.
func (s *BookService) scanTitles(ctx context.Context, params search.Params) (*search.Result, error) {
	books, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = search.DefaultLimit
	}
	limit = min(limit, search.MaxLimit)
	needle := strings.ToLower(params.Query)

	res := &search.Result{Query: params.Query, Hits: []search.Hit{}}
	for _, b := range books {
		if needle != "" && !strings.Contains(strings.ToLower(b.Title), needle) {
			continue
		}
		res.Total++
		if len(res.Hits) < limit {
			res.Hits = append(res.Hits, search.Hit{
				ID:        b.ID,
				Title:     b.Title,
				PageCount: b.PageCount(),
				HasCover:  b.HasCover(),
				CreatedAt: b.CreatedAt,
			})
		}
	}
	return res, nil
}

func (s *BookService) build(in BookInput, bookID string, createdAt int64) (*domain.Book, error) {
	in = in.trimmed()
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}

	if bookID == "" {
		newID, err := id.NewBookID()
		if err != nil {
			return nil, domainerrors.Internal("generate book id").WithCause(err)
		}
		bookID = newID
	}
	if createdAt == 0 {
		createdAt = s.now()
	}

	return &domain.Book{
		ID:         bookID,
		Title:      util.NormalizeTitle(in.Title),
		CoverImage: in.CoverImage,
		Pages:      in.pages(),
		CreatedAt:  createdAt,
	}, nil
}
