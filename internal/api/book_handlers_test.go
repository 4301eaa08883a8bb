package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createBook(t *testing.T, body map[string]any) BookResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/books", body)
	require.Equal(t, http.StatusCreated, resp.Code, "create failed: %s", resp.Body.String())

	env := decodeEnvelope[BookResponse](t, resp)
	require.True(t, env.Success)
	return env.Data
}

func TestCreateBook(t *testing.T) {
	ts := setupTestServer(t)

	book := ts.createBook(t, map[string]any{
		"title": "  The Little   Cloud ",
		"pages": []map[string]any{
			{"content": "A small cloud drifted over the hills."},
			{"content": "", "image": "/images/rain.png", "caption": "Rain"},
		},
	})

	assert.True(t, strings.HasPrefix(book.ID, "book-"))
	assert.Equal(t, "The Little Cloud", book.Title)
	assert.Positive(t, book.CreatedAt)
	require.Len(t, book.Pages, 2)
	assert.NotEmpty(t, book.Pages[0].ID)
	assert.Equal(t, "Rain", book.Pages[1].Caption)
	assert.Empty(t, book.CoverImage)
}

func TestCreateBook_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{
			name:  "blank title",
			body:  map[string]any{"title": "   ", "pages": []map[string]any{{"content": "x"}}},
			field: "title",
		},
		{
			name:  "no pages",
			body:  map[string]any{"title": "Empty", "pages": []map[string]any{}},
			field: "pages",
		},
		{
			name:  "relative image",
			body:  map[string]any{"title": "Pictures", "coverImage": "cover.png", "pages": []map[string]any{{"content": "x"}}},
			field: "coverImage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t)

			resp := ts.api.Post("/api/v1/books", tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.Code)
			env := decodeEnvelope[any](t, resp)
			assert.False(t, env.Success)
			assert.Equal(t, "VALIDATION", env.Code)
			assert.Contains(t, env.Details, tt.field)

			list := decodeEnvelope[ListBooksResponse](t, ts.api.Get("/api/v1/books"))
			assert.Zero(t, list.Data.Total)
		})
	}
}

func TestCreateBook_MissingTitleField(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books", map[string]any{
		"pages": []map[string]any{{"content": "x"}},
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	env := decodeEnvelope[any](t, resp)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestGetBook(t *testing.T) {
	ts := setupTestServer(t)
	created := ts.createBook(t, map[string]any{
		"title": "Counting Stars",
		"pages": []map[string]any{{"id": "p1", "content": "One star"}},
	})

	resp := ts.api.Get("/api/v1/books/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[BookResponse](t, resp)
	assert.Equal(t, created, env.Data)
	assert.Equal(t, "p1", env.Data.Pages[0].ID)
}

func TestGetBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/book-missing")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decodeEnvelope[any](t, resp)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Contains(t, env.Message, "book-missing")
}

func TestListBooks_NewestFirstWithPlaceholders(t *testing.T) {
	ts := setupTestServer(t)

	first := ts.createBook(t, map[string]any{
		"title":      "First",
		"coverImage": pngDataURI(t),
		"pages":      []map[string]any{{"content": "a"}, {"content": "b"}},
	})
	second := ts.createBook(t, map[string]any{
		"title":      "Second",
		"coverImage": "/images/second.png",
		"pages":      []map[string]any{{"content": "a"}},
	})
	require.LessOrEqual(t, first.CreatedAt, second.CreatedAt)

	resp := ts.api.Get("/api/v1/books")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[ListBooksResponse](t, resp)
	require.Equal(t, 2, env.Data.Total)

	byID := map[string]BookSummary{}
	for _, b := range env.Data.Books {
		byID[b.ID] = b
	}
	assert.Equal(t, 2, byID[first.ID].PageCount)
	assert.NotEmpty(t, byID[first.ID].CoverBlurHash)
	assert.Empty(t, byID[second.ID].CoverBlurHash)
	assert.Equal(t, "/images/second.png", byID[second.ID].CoverImage)

	if first.CreatedAt < second.CreatedAt {
		assert.Equal(t, second.ID, env.Data.Books[0].ID)
	}
}

func TestUpdateBook(t *testing.T) {
	ts := setupTestServer(t)
	created := ts.createBook(t, map[string]any{
		"title": "Draft",
		"pages": []map[string]any{{"id": "p1", "content": "one"}},
	})

	resp := ts.api.Put("/api/v1/books/"+created.ID, map[string]any{
		"title": "Final",
		"pages": []map[string]any{
			{"id": "p2", "content": "two"},
			{"id": "p1", "content": "one, revised"},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[BookResponse](t, resp)
	assert.Equal(t, created.ID, env.Data.ID)
	assert.Equal(t, created.CreatedAt, env.Data.CreatedAt)
	assert.Equal(t, "Final", env.Data.Title)
	require.Len(t, env.Data.Pages, 2)
	assert.Equal(t, "p2", env.Data.Pages[0].ID)

	list := decodeEnvelope[ListBooksResponse](t, ts.api.Get("/api/v1/books"))
	assert.Equal(t, 1, list.Data.Total)
}

func TestUpdateBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/books/book-missing", map[string]any{
		"title": "Ghost",
		"pages": []map[string]any{{"content": "boo"}},
	})

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteBook(t *testing.T) {
	ts := setupTestServer(t)
	created := ts.createBook(t, map[string]any{
		"title": "Short Lived",
		"pages": []map[string]any{{"content": "bye"}},
	})

	resp := ts.api.Delete("/api/v1/books/" + created.ID)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Delete("/api/v1/books/" + created.ID)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/books/" + created.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSearch(t *testing.T) {
	ts := setupTestServer(t)
	cloud := ts.createBook(t, map[string]any{
		"title": "The Little Cloud",
		"pages": []map[string]any{{"content": "Rain fell on the meadow."}},
	})
	ts.createBook(t, map[string]any{
		"title": "Counting Stars",
		"pages": []map[string]any{{"content": "One star, two stars."}},
	})

	resp := ts.api.Get("/api/v1/search?q=meadow")
	require.Equal(t, http.StatusOK, resp.Code)

	type result struct {
		Total uint64 `json:"total"`
		Hits  []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"hits"`
	}
	env := decodeEnvelope[result](t, resp)
	require.Len(t, env.Data.Hits, 1)
	assert.Equal(t, cloud.ID, env.Data.Hits[0].ID)

	resp = ts.api.Get("/api/v1/search?limit=1")
	require.Equal(t, http.StatusOK, resp.Code)
	env = decodeEnvelope[result](t, resp)
	assert.Equal(t, uint64(2), env.Data.Total)
	assert.Len(t, env.Data.Hits, 1)
}

func TestSearch_LimitOutOfRange(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/search?limit=500")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	env := decodeEnvelope[any](t, resp)
	assert.Equal(t, "VALIDATION", env.Code)
}
