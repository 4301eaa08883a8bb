// Package id generates identifiers for books and pages.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// BookPrefix prefixes every generated book identifier.
const BookPrefix = "book"

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "book-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewBookID returns a fresh book identifier.
func NewBookID() (string, error) {
	return Generate(BookPrefix)
}

// NewPageID returns a fresh page identifier.
// Page IDs only need to be unique within their book; a random UUID never repeats in practice.
func NewPageID() string {
	return uuid.NewString()
}
