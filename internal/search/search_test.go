package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/storybook/internal/domain"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func sampleBooks() []*domain.Book {
	return []*domain.Book{
		{
			ID:        "book-cloud",
			Title:     "The Little Cloud",
			CreatedAt: 1000,
			Pages: []domain.Page{
				{ID: "1", Content: "A small cloud drifted over the hills."},
				{ID: "2", Image: "/images/rain.png", Caption: "Rain falls on the meadow"},
			},
		},
		{
			ID:         "book-stars",
			Title:      "Counting Stars",
			CoverImage: "/images/stars.png",
			CreatedAt:  3000,
			Pages: []domain.Page{
				{ID: "1", Content: "One star, two stars, three stars."},
			},
		},
		{
			ID:        "book-fox",
			Title:     "The Fox and the Kite",
			CreatedAt: 2000,
			Pages: []domain.Page{
				{ID: "1", Content: "The fox found a red kite in the meadow."},
			},
		},
	}
}

func indexAll(t *testing.T, index *Index, books []*domain.Book) {
	t.Helper()
	for _, b := range books {
		require.NoError(t, index.IndexBook(context.Background(), b))
	}
}

func hitIDs(r *Result) []string {
	ids := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.ID
	}
	return ids
}

func TestFromBook(t *testing.T) {
	doc := FromBook(sampleBooks()[0])

	assert.Equal(t, "book-cloud", doc.ID)
	assert.Equal(t, "The Little Cloud", doc.Title)
	assert.Equal(t, "A small cloud drifted over the hills.", doc.Text)
	assert.Equal(t, "Rain falls on the meadow", doc.Captions)
	assert.Equal(t, 2, doc.PageCount)
	assert.False(t, doc.HasCover)
	assert.Equal(t, int64(1000), doc.CreatedAt)

	m := doc.ToMap()
	assert.Equal(t, float64(2), m["page_count"])
	assert.Equal(t, "The Little Cloud", m["title"])
}

func TestOpen_InMemoryStartsEmpty(t *testing.T) {
	count, err := setupTestIndex(t).DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndexBook_ReplacesExisting(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()
	book := sampleBooks()[0]

	require.NoError(t, index.IndexBook(ctx, book))
	book.Title = "The Big Storm"
	require.NoError(t, index.IndexBook(ctx, book))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	res, err := index.Search(ctx, Params{Query: "storm"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "The Big Storm", res.Hits[0].Title)
}

func TestSearch_TitleBeatsBody(t *testing.T) {
	index := setupTestIndex(t)
	indexAll(t, index, sampleBooks())

	res, err := index.Search(context.Background(), Params{Query: "stars"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "book-stars", res.Hits[0].ID)
	assert.Equal(t, "Counting Stars", res.Hits[0].Title)
	assert.True(t, res.Hits[0].HasCover)
	assert.Equal(t, 1, res.Hits[0].PageCount)
}

func TestSearch_MatchesPageTextAndCaptions(t *testing.T) {
	index := setupTestIndex(t)
	indexAll(t, index, sampleBooks())

	res, err := index.Search(context.Background(), Params{Query: "meadow"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"book-cloud", "book-fox"}, hitIDs(res))
}

func TestSearch_FuzzyTitle(t *testing.T) {
	index := setupTestIndex(t)
	indexAll(t, index, sampleBooks())

	res, err := index.Search(context.Background(), Params{Query: "klite"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), "book-fox")
}

func TestSearch_EmptyQueryListsNewestFirst(t *testing.T) {
	index := setupTestIndex(t)
	indexAll(t, index, sampleBooks())

	res, err := index.Search(context.Background(), Params{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Total)
	assert.Equal(t, []string{"book-stars", "book-fox", "book-cloud"}, hitIDs(res))
}

func TestSearch_Pagination(t *testing.T) {
	index := setupTestIndex(t)
	indexAll(t, index, sampleBooks())

	res, err := index.Search(context.Background(), Params{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Total)
	assert.Equal(t, []string{"book-fox", "book-cloud"}, hitIDs(res))
}

func TestSearch_NoMatches(t *testing.T) {
	index := setupTestIndex(t)
	indexAll(t, index, sampleBooks())

	res, err := index.Search(context.Background(), Params{Query: "submarine"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.NotNil(t, res.Hits)
}

func TestDeleteBook(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()
	indexAll(t, index, sampleBooks())

	require.NoError(t, index.DeleteBook(ctx, "book-fox"))
	require.NoError(t, index.DeleteBook(ctx, "never-indexed"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestIndexBook_CanceledContext(t *testing.T) {
	index := setupTestIndex(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, index.IndexBook(ctx, sampleBooks()[0]), context.Canceled)
}

func TestRebuild(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()
	books := sampleBooks()

	require.NoError(t, index.IndexBook(ctx, &domain.Book{ID: "stale", Title: "Gone"}))
	require.NoError(t, index.Rebuild(ctx, books))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(books)), count)

	res, err := index.Search(ctx, Params{Query: "gone"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestOpen_OnDiskPersistsAndVersions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "search.bleve")
	ctx := context.Background()

	index, err := Open(Options{Path: path})
	require.NoError(t, err)
	indexAll(t, index, sampleBooks())
	require.NoError(t, index.Close())

	version, err := os.ReadFile(path + ".version")
	require.NoError(t, err)
	assert.Equal(t, mappingVersion, string(version))

	reopened, err := Open(Options{Path: path})
	require.NoError(t, err)
	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
	require.NoError(t, reopened.Close())

	// A stale mapping version discards the index.
	require.NoError(t, os.WriteFile(path+".version", []byte("0"), 0o644))
	fresh, err := Open(Options{Path: path})
	require.NoError(t, err)
	defer fresh.Close()

	count, err = fresh.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)

	res, err := fresh.Search(ctx, Params{})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}
