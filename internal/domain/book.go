// Package domain contains the core entities of the storybook library: books and their pages.
package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// narrationSeparator joins page content and caption when both are read aloud.
const narrationSeparator = ". "

// Page is one unit of reading content within a book.
type Page struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`   // Embedded image (data URI) or asset path
	Caption string `json:"caption,omitempty"` // Only shown alongside an image
}

// Book is a persisted illustrated book. Pages are kept in reading order.
type Book struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	CoverImage string `json:"coverImage"` // Empty means no cover
	Pages      []Page `json:"pages"`
	CreatedAt  int64  `json:"createdAt"` // Unix millis, fixed at first creation
}

// HasImage reports whether the page carries an illustration.
func (p *Page) HasImage() bool {
	return p.Image != ""
}

// NarrationText returns the text read aloud for this page.
//
// Content comes first, followed by the caption when both are present.
// A page with only a caption narrates the caption. A page with neither
// returns the empty string and is not narrated.
func (p *Page) NarrationText() string {
	content := strings.TrimSpace(p.Content)
	caption := strings.TrimSpace(p.Caption)

	switch {
	case content != "" && caption != "":
		return content + narrationSeparator + caption
	case content != "":
		return content
	default:
		return caption
	}
}

// PageCount returns the number of pages in the book.
func (b *Book) PageCount() int {
	return len(b.Pages)
}

// HasCover reports whether the book has a cover image.
func (b *Book) HasCover() bool {
	return b.CoverImage != ""
}

// Created returns CreatedAt as a time.Time.
func (b *Book) Created() time.Time {
	return time.UnixMilli(b.CreatedAt)
}

// PageByID finds a page by its ID. Returns -1 and nil if absent.
func (b *Book) PageByID(id string) (int, *Page) {
	for i := range b.Pages {
		if b.Pages[i].ID == id {
			return i, &b.Pages[i]
		}
	}
	return -1, nil
}

// Clone returns a deep copy of the book.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	c := *b
	if b.Pages != nil {
		c.Pages = slices.Clone(b.Pages)
	}
	return &c
}

// NowMillis returns the current time as Unix milliseconds, the CreatedAt unit.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// SortByCreatedDesc orders books most-recent-first. Ties keep their relative order.
func SortByCreatedDesc(books []*Book) {
	slices.SortStableFunc(books, func(a, b *Book) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
}
