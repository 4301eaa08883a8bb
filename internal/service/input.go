// Package service holds the editing and library operations shared by the HTTP API and the CLI.
package service

import (
	"strings"

	"github.com/listenupapp/storybook/internal/domain"
)

// MaxTitleLength bounds book titles.
const MaxTitleLength = 200

// PageInput is one page as submitted by an editor.
type PageInput struct {
	ID      string `json:"id,omitempty" doc:"Page ID, generated when empty"`
	Content string `json:"content" required:"false" doc:"Page text"`
	Image   string `json:"image,omitempty" validate:"imageref" doc:"Data URI, root-relative path, or http(s) URL"`
	Caption string `json:"caption,omitempty" doc:"Shown alongside the image"`
}

// BookInput is the full editable state of a book. A save replaces the whole book.
type BookInput struct {
	Title      string      `json:"title" validate:"notblank,max=200" doc:"Book title"`
	CoverImage string      `json:"coverImage,omitempty" validate:"imageref" doc:"Cover image, empty for none"`
	Pages      []PageInput `json:"pages" validate:"min=1,unique=ID,dive" doc:"Pages in reading order"`
}

// InputFromBook returns the editable state of a stored book.
func InputFromBook(book *domain.Book) BookInput {
	in := BookInput{
		Title:      book.Title,
		CoverImage: book.CoverImage,
		Pages:      make([]PageInput, len(book.Pages)),
	}
	for i, p := range book.Pages {
		in.Pages[i] = PageInput(p)
	}
	return in
}

// trimmed returns a copy with surrounding whitespace removed from image references,
// so they are validated exactly as they will be stored.
func (in BookInput) trimmed() BookInput {
	out := in
	out.CoverImage = strings.TrimSpace(in.CoverImage)
	out.Pages = make([]PageInput, len(in.Pages))
	for i, p := range in.Pages {
		p.Image = strings.TrimSpace(p.Image)
		out.Pages[i] = p
	}
	return out
}

// pages converts page inputs. Captions on pages without an image are kept.
func (in *BookInput) pages() []domain.Page {
	pages := make([]domain.Page, len(in.Pages))
	for i, p := range in.Pages {
		pages[i] = domain.Page(p)
	}
	return pages
}

// fillPageIDs gives every page without an ID a fresh one.
func (in *BookInput) fillPageIDs(newID func() string) {
	for i := range in.Pages {
		if strings.TrimSpace(in.Pages[i].ID) == "" {
			in.Pages[i].ID = newID()
		}
	}
}
