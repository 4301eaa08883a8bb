package images

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/bbrks/go-blurhash"
	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
)

// blurHashSize is the thumbnail edge used before hashing; BlurHash output barely changes above it.
const blurHashSize = 64

// BlurHash computes a 4x3 component BlurHash for an image data URI.
func BlurHash(dataURI string) (string, error) {
	img, err := decodeImage(dataURI)
	if err != nil {
		return "", err
	}
	return blurHashImage(img)
}

func blurHashImage(img image.Image) (string, error) {
	b := img.Bounds()
	if b.Dx() > blurHashSize || b.Dy() > blurHashSize {
		img = imaging.Fit(img, blurHashSize, blurHashSize, imaging.Box)
	}

	hash, err := blurhash.Encode(4, 3, img)
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// Placeholders memoizes cover BlurHashes by image content.
// Only embedded (data URI) images are hashed; other references yield "".
type Placeholders struct {
	mu      sync.RWMutex
	entries map[uint64]string
}

// NewPlaceholders creates an empty cache.
func NewPlaceholders() *Placeholders {
	return &Placeholders{entries: make(map[uint64]string)}
}

// Get returns the BlurHash for cover, computing it on first use.
// Undecodable images are cached as "" so they are not retried.
func (p *Placeholders) Get(cover string) string {
	if !strings.HasPrefix(cover, "data:image/") {
		return ""
	}
	key := xxhash.Sum64String(cover)

	p.mu.RLock()
	hash, ok := p.entries[key]
	p.mu.RUnlock()
	if ok {
		return hash
	}

	hash, err := BlurHash(cover)
	if err != nil {
		hash = ""
	}

	p.mu.Lock()
	p.entries[key] = hash
	p.mu.Unlock()
	return hash
}

// Len reports the number of cached entries.
func (p *Placeholders) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
