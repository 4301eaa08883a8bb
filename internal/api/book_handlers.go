package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/storybook/internal/domain"
	"github.com/listenupapp/storybook/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns every book in the library, most recently created first",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with all of its pages",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Creates a book. Pages without an ID are given one",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Replace book",
		Description: "Replaces the title, cover and pages of an existing book",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Delete book",
		Description:   "Deletes a book. Deleting a missing book succeeds",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)
}

// BookSummary is a library listing entry.
type BookSummary struct {
	ID            string `json:"id" doc:"Book ID"`
	Title         string `json:"title" doc:"Book title"`
	CoverImage    string `json:"coverImage,omitempty" doc:"Cover image reference"`
	CoverBlurHash string `json:"coverBlurHash,omitempty" doc:"BlurHash placeholder for embedded covers"`
	PageCount     int    `json:"pageCount" doc:"Number of pages"`
	CreatedAt     int64  `json:"createdAt" doc:"Creation time in Unix milliseconds"`
}

// BookResponse is a full book.
type BookResponse struct {
	ID         string        `json:"id" doc:"Book ID"`
	Title      string        `json:"title" doc:"Book title"`
	CoverImage string        `json:"coverImage" doc:"Cover image reference, empty for none"`
	Pages      []domain.Page `json:"pages" doc:"Pages in reading order"`
	CreatedAt  int64         `json:"createdAt" doc:"Creation time in Unix milliseconds"`
}

// ListBooksResponse is the library listing.
type ListBooksResponse struct {
	Books []BookSummary `json:"books"`
	Total int           `json:"total"`
}

// ListBooksOutput wraps the listing for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookIDInput addresses a single book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// CreateBookInput is the request for creating a book.
type CreateBookInput struct {
	Body service.BookInput
}

// UpdateBookInput is the request for replacing a book.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.BookInput
}

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*ListBooksOutput, error) {
	books, err := s.services.Book.List(ctx)
	if err != nil {
		return nil, s.fail(err)
	}

	summaries := make([]BookSummary, len(books))
	for i, b := range books {
		summaries[i] = s.toSummary(b)
	}

	return &ListBooksOutput{
		Body: ListBooksResponse{Books: summaries, Total: len(summaries)},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Book.Get(ctx, input.ID)
	if err != nil {
		return nil, s.fail(err)
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	book, err := s.services.Book.Create(ctx, input.Body)
	if err != nil {
		return nil, s.fail(err)
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	book, err := s.services.Book.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, s.fail(err)
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	if err := s.services.Book.Delete(ctx, input.ID); err != nil {
		return nil, s.fail(err)
	}
	return nil, nil
}

func (s *Server) toSummary(b *domain.Book) BookSummary {
	return BookSummary{
		ID:            b.ID,
		Title:         b.Title,
		CoverImage:    b.CoverImage,
		CoverBlurHash: s.placeholders.Get(b.CoverImage),
		PageCount:     b.PageCount(),
		CreatedAt:     b.CreatedAt,
	}
}

func toBookResponse(b *domain.Book) BookResponse {
	pages := b.Pages
	if pages == nil {
		pages = []domain.Page{}
	}
	return BookResponse{
		ID:         b.ID,
		Title:      b.Title,
		CoverImage: b.CoverImage,
		Pages:      pages,
		CreatedAt:  b.CreatedAt,
	}
}
