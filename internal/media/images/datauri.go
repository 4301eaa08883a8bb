// Package images turns uploaded pictures into embeddable data URIs and computes cover placeholders.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/vincent-petithory/dataurl"
	_ "golang.org/x/image/webp" // Register WebP decoder

	domainerrors "github.com/listenupapp/storybook/internal/errors"
)

const (
	// DefaultMaxDimension bounds the longest side of an embedded image.
	DefaultMaxDimension = 1600

	// MaxUploadBytes is the largest source image accepted.
	MaxUploadBytes = 10 << 20

	// MaxSourcePixels caps width*height of a source image, checked from the
	// header before any pixel data is decoded.
	MaxSourcePixels = 40_000_000

	jpegQuality = 85
)

// supported maps accepted MIME types to the format used when re-encoding.
// WebP has no encoder here, so downscaled WebP becomes PNG.
var supported = map[string]imaging.Format{
	"image/png":  imaging.PNG,
	"image/jpeg": imaging.JPEG,
	"image/gif":  imaging.GIF,
	"image/webp": imaging.PNG,
}

// Encoded is an image ready to embed in a book.
type Encoded struct {
	DataURI  string `json:"dataUri"`
	MimeType string `json:"mimeType"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Resized  bool   `json:"resized"`
}

// Encoder converts raw image bytes to data URIs.
type Encoder struct {
	maxDimension int
}

// NewEncoder creates an encoder that downsizes images larger than maxDimension on either side.
// Zero or less means DefaultMaxDimension.
func NewEncoder(maxDimension int) *Encoder {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Encoder{maxDimension: maxDimension}
}

// Encode validates data as a supported image and returns it as a base64 data URI.
// Images within bounds keep their original bytes; larger ones are scaled down
// with Lanczos resampling and re-encoded.
func (e *Encoder) Encode(data []byte) (*Encoded, error) {
	if len(data) == 0 {
		return nil, domainerrors.Validation("image is empty")
	}
	if len(data) > MaxUploadBytes {
		return nil, domainerrors.Validationf("image exceeds %d bytes", MaxUploadBytes)
	}

	mediaType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	format, ok := supported[mediaType]
	if !ok {
		return nil, domainerrors.Validationf("unsupported image type %q", mediaType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domainerrors.Validation("image could not be decoded").WithCause(err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, domainerrors.Validationf("image dimensions %dx%d exceed %d pixels", cfg.Width, cfg.Height, MaxSourcePixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, domainerrors.Validation("image could not be decoded").WithCause(err)
	}

	bounds := img.Bounds()
	out := &Encoded{
		MimeType: mediaType,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}

	if out.Width <= e.maxDimension && out.Height <= e.maxDimension {
		out.DataURI = dataurl.New(data, mediaType).String()
		return out, nil
	}

	resized := imaging.Fit(img, e.maxDimension, e.maxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode resized image: %w", err)
	}

	if format == imaging.PNG {
		out.MimeType = "image/png"
	}
	rb := resized.Bounds()
	out.Width, out.Height, out.Resized = rb.Dx(), rb.Dy(), true
	out.DataURI = dataurl.New(buf.Bytes(), out.MimeType).String()
	return out, nil
}

// EncodeDataURI is Encode returning only the URI.
func (e *Encoder) EncodeDataURI(data []byte) (string, error) {
	enc, err := e.Encode(data)
	if err != nil {
		return "", err
	}
	return enc.DataURI, nil
}

// DecodeDataURI returns the payload and media type of an image data URI.
func DecodeDataURI(s string) ([]byte, string, error) {
	du, err := dataurl.DecodeString(s)
	if err != nil {
		return nil, "", domainerrors.Validation("malformed data URI").WithCause(err)
	}
	if du.Type != "image" {
		return nil, "", domainerrors.Validationf("data URI is %s, not an image", du.ContentType())
	}
	return du.Data, du.ContentType(), nil
}

// decodeImage decodes the picture inside an image data URI.
func decodeImage(dataURI string) (image.Image, error) {
	data, _, err := DecodeDataURI(dataURI)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
