package service

import (
	"slices"

	"github.com/listenupapp/storybook/internal/domain"
	domainerrors "github.com/listenupapp/storybook/internal/errors"
	"github.com/listenupapp/storybook/internal/id"
)

// PageField names an editable page field.
type PageField string

// Editable page fields.
const (
	FieldContent PageField = "content"
	FieldImage   PageField = "image"
	FieldCaption PageField = "caption"
)

// Draft is the in-progress state of a book editor. Nothing is stored until
// it is passed to BookService.Save.
type Draft struct {
	id        string // Empty until the first successful save
	createdAt int64

	Title      string
	CoverImage string
	Pages      []PageInput
}

// NewDraft starts an empty draft for a new book.
func NewDraft() *Draft {
	return &Draft{}
}

// DraftFrom starts a draft editing an existing book.
func DraftFrom(book *domain.Book) *Draft {
	in := InputFromBook(book)
	return &Draft{
		id:         book.ID,
		createdAt:  book.CreatedAt,
		Title:      in.Title,
		CoverImage: in.CoverImage,
		Pages:      in.Pages,
	}
}

// ID returns the ID of the book being edited, or "" for a book never saved.
func (d *Draft) ID() string {
	return d.id
}

// IsNew reports whether saving creates a book.
func (d *Draft) IsNew() bool {
	return d.id == ""
}

// SetTitle sets the title.
func (d *Draft) SetTitle(title string) {
	d.Title = title
}

// SetCover sets the cover image. An empty value removes the cover.
func (d *Draft) SetCover(image string) {
	d.CoverImage = image
}

// AddPage appends a blank page and returns its ID.
func (d *Draft) AddPage() string {
	p := PageInput{ID: id.NewPageID()}
	d.Pages = append(d.Pages, p)
	return p.ID
}

// UpdatePage sets one field of a page.
func (d *Draft) UpdatePage(pageID string, field PageField, value string) error {
	i := d.indexOf(pageID)
	if i < 0 {
		return domainerrors.NotFoundf("page %s not found", pageID)
	}

	switch field {
	case FieldContent:
		d.Pages[i].Content = value
	case FieldImage:
		d.Pages[i].Image = value
	case FieldCaption:
		d.Pages[i].Caption = value
	default:
		return domainerrors.Validationf("unknown page field %q", field)
	}
	return nil
}

// RemovePage deletes a page. Removing an absent page does nothing.
func (d *Draft) RemovePage(pageID string) {
	d.Pages = slices.DeleteFunc(d.Pages, func(p PageInput) bool {
		return p.ID == pageID
	})
}

// MovePage shifts a page by delta positions, clamped to the ends.
func (d *Draft) MovePage(pageID string, delta int) error {
	from := d.indexOf(pageID)
	if from < 0 {
		return domainerrors.NotFoundf("page %s not found", pageID)
	}

	to := max(0, min(len(d.Pages)-1, from+delta))
	if to == from {
		return nil
	}

	p := d.Pages[from]
	d.Pages = slices.Delete(d.Pages, from, from+1)
	d.Pages = slices.Insert(d.Pages, to, p)
	return nil
}

// Input returns a copy of the draft's editable state.
func (d *Draft) Input() BookInput {
	return BookInput{
		Title:      d.Title,
		CoverImage: d.CoverImage,
		Pages:      slices.Clone(d.Pages),
	}
}

func (d *Draft) indexOf(pageID string) int {
	return slices.IndexFunc(d.Pages, func(p PageInput) bool {
		return p.ID == pageID
	})
}
