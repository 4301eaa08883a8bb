package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/storybook/internal/media/images"
)

func (s *Server) registerImageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "encodeImage",
		Method:       http.MethodPost,
		Path:         "/api/v1/images",
		Summary:      "Encode image",
		Description:  "Converts an uploaded image to a data URI suitable for a cover or page, downscaling large images",
		Tags:         []string{"Images"},
		MaxBodyBytes: images.MaxUploadBytes,
		Middlewares:  huma.Middlewares{s.rateLimited(s.uploadLimiter)},
	}, s.handleEncodeImage)
}

// EncodeImageInput is a raw image upload.
type EncodeImageInput struct {
	ContentType string `header:"Content-Type" doc:"Image content type, informational only"`
	RawBody     []byte
}

// ImageResponse is an embeddable image.
type ImageResponse struct {
	images.Encoded
	BlurHash string `json:"blurHash,omitempty" doc:"BlurHash placeholder"`
}

// ImageOutput wraps the encoded image for Huma.
type ImageOutput struct {
	Body ImageResponse
}

func (s *Server) handleEncodeImage(ctx context.Context, input *EncodeImageInput) (*ImageOutput, error) {
	encoded, err := s.encoder.Encode(input.RawBody)
	if err != nil {
		s.logger.Debug("image rejected",
			"content_type", input.ContentType,
			"body_size", len(input.RawBody),
			"error", err,
		)
		return nil, s.fail(err)
	}

	s.logger.Info("image encoded",
		"mime_type", encoded.MimeType,
		"width", encoded.Width,
		"height", encoded.Height,
		"resized", encoded.Resized,
	)

	return &ImageOutput{
		Body: ImageResponse{
			Encoded:  *encoded,
			BlurHash: s.placeholders.Get(encoded.DataURI),
		},
	}, nil
}
