// Package search provides full-text search over the library using Bleve.
package search

import (
	"strings"

	"github.com/listenupapp/storybook/internal/domain"
)

// BookDocument is the flattened, searchable form of a book.
type BookDocument struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Text      string `json:"text"`     // All page content in reading order
	Captions  string `json:"captions"` // All image captions
	PageCount int    `json:"page_count"`
	HasCover  bool   `json:"has_cover"`
	CreatedAt int64  `json:"created_at"`
}

// FromBook builds the document for book.
func FromBook(book *domain.Book) *BookDocument {
	var text, captions []string
	for i := range book.Pages {
		p := &book.Pages[i]
		if c := strings.TrimSpace(p.Content); c != "" {
			text = append(text, c)
		}
		if c := strings.TrimSpace(p.Caption); c != "" {
			captions = append(captions, c)
		}
	}

	return &BookDocument{
		ID:        book.ID,
		Title:     book.Title,
		Text:      strings.Join(text, "\n"),
		Captions:  strings.Join(captions, "\n"),
		PageCount: len(book.Pages),
		HasCover:  book.HasCover(),
		CreatedAt: book.CreatedAt,
	}
}

// ToMap converts the document to the field names used by the mapping.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"text":       d.Text,
		"captions":   d.Captions,
		"page_count": float64(d.PageCount),
		"has_cover":  d.HasCover,
		"created_at": float64(d.CreatedAt),
	}
}
