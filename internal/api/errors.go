package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/storybook/internal/errors"
	"github.com/listenupapp/storybook/internal/http/response"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				msg := domainErr.Message
				// Internal causes stay in the logs.
				if domainErr.Code == domainerrors.CodeStorage || domainErr.Code == domainerrors.CodeInternal {
					msg = http.StatusText(domainErr.HTTPStatus())
				}
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: msg,
					Details: domainErr.Details,
				}
			}
		}

		// Huma's own request validation reports one error per field.
		if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
			if details := fieldDetails(errs); len(details) > 0 {
				return &APIError{
					status:  http.StatusBadRequest,
					Code:    string(domainerrors.CodeValidation),
					Message: message,
					Details: details,
				}
			}
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
	}
}

// fail converts a service error into a huma status error carrying the domain
// code and status. Server-side failures are logged with their cause.
func (s *Server) fail(err error) error {
	var se huma.StatusError
	if !errors.As(err, &se) {
		se = huma.NewError(http.StatusInternalServerError, "internal server error", err)
	}
	if se.GetStatus() >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	return se
}

// fieldDetails collects huma's per-field errors keyed by location, "body.title" -> "title".
func fieldDetails(errs []error) map[string]string {
	details := make(map[string]string)
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			continue
		}
		loc := strings.TrimPrefix(detail.Location, "body.")
		details[loc] = detail.Message
	}
	return details
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimit)
	default:
		return string(domainerrors.CodeInternal)
	}
}

// EnvelopeTransformer wraps every typed response body in the response envelope.
// Errors are flattened into the envelope next to the success flag.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return response.Fail(apiErr.Code, apiErr.Message, apiErr.Details), nil
	}
	return response.Ok(v), nil
}
