package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/storybook/internal/domain"
	domainerrors "github.com/listenupapp/storybook/internal/errors"
)

func pageIDs(d *Draft) []string {
	ids := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		ids[i] = p.ID
	}
	return ids
}

func TestDraft_AddPage(t *testing.T) {
	d := NewDraft()
	assert.True(t, d.IsNew())

	first := d.AddPage()
	second := d.AddPage()

	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, []string{first, second}, pageIDs(d))
	assert.Empty(t, d.Pages[0].Content)
}

func TestDraft_UpdatePage(t *testing.T) {
	d := NewDraft()
	pageID := d.AddPage()

	require.NoError(t, d.UpdatePage(pageID, FieldContent, "Hello"))
	require.NoError(t, d.UpdatePage(pageID, FieldImage, "/images/cat.png"))
	require.NoError(t, d.UpdatePage(pageID, FieldCaption, "A cat"))

	assert.Equal(t, PageInput{ID: pageID, Content: "Hello", Image: "/images/cat.png", Caption: "A cat"}, d.Pages[0])

	err := d.UpdatePage("missing", FieldContent, "x")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = d.UpdatePage(pageID, PageField("title"), "x")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestDraft_RemovePage(t *testing.T) {
	d := NewDraft()
	a, b, c := d.AddPage(), d.AddPage(), d.AddPage()

	d.RemovePage(b)
	assert.Equal(t, []string{a, c}, pageIDs(d))

	d.RemovePage("missing")
	assert.Equal(t, []string{a, c}, pageIDs(d))
}

func TestDraft_MovePage(t *testing.T) {
	tests := []struct {
		name  string
		move  int // index of page to move
		delta int
		want  []int
	}{
		{"down one", 0, 1, []int{1, 0, 2}},
		{"up one", 2, -1, []int{0, 2, 1}},
		{"clamped to end", 0, 10, []int{1, 2, 0}},
		{"clamped to start", 2, -10, []int{2, 0, 1}},
		{"no-op", 1, 0, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraft()
			ids := []string{d.AddPage(), d.AddPage(), d.AddPage()}

			require.NoError(t, d.MovePage(ids[tt.move], tt.delta))

			want := make([]string, len(tt.want))
			for i, idx := range tt.want {
				want[i] = ids[idx]
			}
			assert.Equal(t, want, pageIDs(d))
		})
	}

	d := NewDraft()
	assert.ErrorIs(t, d.MovePage("missing", 1), domainerrors.ErrNotFound)
}

func TestDraftFrom_CopiesBook(t *testing.T) {
	book := &domain.Book{
		ID:         "book-1",
		Title:      "Existing",
		CoverImage: "/images/cover.png",
		CreatedAt:  42,
		Pages:      []domain.Page{{ID: "p1", Content: "text"}},
	}

	d := DraftFrom(book)
	assert.Equal(t, "book-1", d.ID())
	assert.False(t, d.IsNew())
	assert.Equal(t, "Existing", d.Title)
	assert.Equal(t, "/images/cover.png", d.CoverImage)

	require.NoError(t, d.UpdatePage("p1", FieldContent, "changed"))
	assert.Equal(t, "text", book.Pages[0].Content)
}

func TestDraft_InputIsACopy(t *testing.T) {
	d := NewDraft()
	d.SetTitle("Title")
	pageID := d.AddPage()

	in := d.Input()
	in.Pages[0].Content = "mutated"

	assert.Equal(t, "Title", in.Title)
	assert.Equal(t, pageID, in.Pages[0].ID)
	assert.Empty(t, d.Pages[0].Content)
}
