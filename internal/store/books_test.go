package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/storybook/internal/domain"
	domainerrors "github.com/listenupapp/storybook/internal/errors"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	store, err := NewInMemory(nil)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		_ = store.Close()
	}

	return store, cleanup
}

// Helper function to create a test book
func createTestBook(id string) *domain.Book {
	return &domain.Book{
		ID:         id,
		Title:      "Test Book " + id,
		CoverImage: "data:image/png;base64,iVBORw0KGgo=",
		Pages: []domain.Page{
			{ID: "p1", Content: "Once upon a time"},
			{ID: "p2", Content: "", Image: "data:image/png;base64,AAAA", Caption: "A castle"},
			{ID: "p3", Content: "The end"},
		},
		CreatedAt: 1700000000000,
	}
}

type recordingIndexer struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
	err     error
}

func (r *recordingIndexer) IndexBook(_ context.Context, book *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, book.ID)
	return r.err
}

func (r *recordingIndexer) DeleteBook(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return r.err
}

func TestPutBook_RoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := createTestBook("book-001")

	id, err := store.PutBook(ctx, book)
	require.NoError(t, err)
	assert.Equal(t, "book-001", id)

	retrieved, found, err := store.GetBook(ctx, "book-001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, book, retrieved)
}

func TestPutBook_PreservesPageOrder(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := createTestBook("book-001")
	pages := make([]domain.Page, 0, 50)
	for i := range 50 {
		pages = append(pages, domain.Page{ID: fmt.Sprintf("page-%02d", 49-i), Content: fmt.Sprint(i)})
	}
	book.Pages = pages

	_, err := store.PutBook(ctx, book)
	require.NoError(t, err)

	retrieved, found, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, pages, retrieved.Pages)
}

func TestPutBook_FullReplace(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := createTestBook("book-001")
	_, err := store.PutBook(ctx, book)
	require.NoError(t, err)

	edited := &domain.Book{
		ID:        "book-001",
		Title:     "Edited",
		Pages:     []domain.Page{{ID: "only", Content: "single page"}},
		CreatedAt: book.CreatedAt,
	}
	_, err = store.PutBook(ctx, edited)
	require.NoError(t, err)

	retrieved, found, err := store.GetBook(ctx, "book-001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, edited, retrieved)
	assert.Empty(t, retrieved.CoverImage)

	count, err := store.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPutBook_Idempotent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := createTestBook("book-001")

	_, err := store.PutBook(ctx, book)
	require.NoError(t, err)
	first, err := store.ListBooks(ctx)
	require.NoError(t, err)

	_, err = store.PutBook(ctx, book)
	require.NoError(t, err)
	second, err := store.ListBooks(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetBook_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	book, found, err := store.GetBook(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, book)
}

func TestDeleteBook(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	_, err := store.PutBook(ctx, createTestBook("book-001"))
	require.NoError(t, err)

	require.NoError(t, store.DeleteBook(ctx, "book-001"))

	_, found, err := store.GetBook(ctx, "book-001")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting again is a no-op
	require.NoError(t, store.DeleteBook(ctx, "book-001"))
	require.NoError(t, store.DeleteBook(ctx, "never-existed"))
}

func TestListBooks_And_Count(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	count, err := store.CountBooks(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	books, err := store.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	for i := range 5 {
		_, err := store.PutBook(ctx, createTestBook(fmt.Sprintf("book-%03d", i)))
		require.NoError(t, err)
	}

	count, err = store.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	books, err = store.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 5)
}

func TestPutBooks_SingleTransaction(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	books := []*domain.Book{createTestBook("a"), createTestBook("b"), createTestBook("c")}

	require.NoError(t, store.PutBooks(ctx, books))

	count, err := store.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStore_SearchIndexerSync(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	indexer := &recordingIndexer{}
	store.SetSearchIndexer(indexer)

	ctx := context.Background()
	_, err := store.PutBook(ctx, createTestBook("book-001"))
	require.NoError(t, err)
	require.NoError(t, store.DeleteBook(ctx, "book-001"))

	assert.Equal(t, []string{"book-001"}, indexer.indexed)
	assert.Equal(t, []string{"book-001"}, indexer.deleted)
}

func TestStore_IndexerFailureDoesNotFailWrite(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	store.SetSearchIndexer(&recordingIndexer{err: fmt.Errorf("index offline")})

	ctx := context.Background()
	_, err := store.PutBook(ctx, createTestBook("book-001"))
	require.NoError(t, err)

	_, found, err := store.GetBook(ctx, "book-001")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStore_ClosedDatabaseReturnsStorageError(t *testing.T) {
	store, err := NewInMemory(nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	ctx := context.Background()

	_, err = store.PutBook(ctx, createTestBook("book-001"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrStorage)

	_, _, err = store.GetBook(ctx, "book-001")
	assert.ErrorIs(t, err, domainerrors.ErrStorage)

	_, err = store.CountBooks(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrStorage)

	_, err = store.ListBooks(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrStorage)
}

func TestStore_CanceledContext(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.PutBook(ctx, createTestBook("book-001"))
	assert.ErrorIs(t, err, context.Canceled)

	_, _, err = store.GetBook(ctx, "book-001")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "storybook-store-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "db")
	ctx := context.Background()

	store, err := New(dbPath, nil)
	require.NoError(t, err)
	book := createTestBook("book-001")
	_, err = store.PutBook(ctx, book)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(dbPath, nil)
	require.NoError(t, err)
	defer reopened.Close()

	retrieved, found, err := reopened.GetBook(ctx, "book-001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, book, retrieved)
}

func TestBatchWriter_AutoFlush(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	indexer := &recordingIndexer{}
	store.SetSearchIndexer(indexer)

	ctx := context.Background()
	batch := store.NewBatchWriter(2)

	for i := range 5 {
		require.NoError(t, batch.PutBook(ctx, createTestBook(fmt.Sprintf("book-%d", i))))
	}
	assert.Equal(t, 1, batch.Pending())
	assert.Equal(t, 4, batch.Written())

	require.NoError(t, batch.Flush(ctx))
	assert.Equal(t, 0, batch.Pending())
	assert.Equal(t, 5, batch.Written())

	count, err := store.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Len(t, indexer.indexed, 5)
}

func TestPing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NoError(t, store.Ping(context.Background()))
}
