// Package validation checks editor input with validator/v10 and reports failures as domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/listenupapp/storybook/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the storybook tags registered:
//
//	notblank  string has a non-whitespace character
//	imageref  empty, a data:image URI, a root-relative path, or an http(s) URL
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "":
			return fld.Name
		case "-":
			return ""
		default:
			return name
		}
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("imageref", func(fl validator.FieldLevel) bool {
		return IsImageRef(fl.Field().String())
	})

	return &Validator{v: v}
}

// IsImageRef reports whether s is acceptable as a cover or page image.
func IsImageRef(s string) bool {
	switch {
	case s == "":
		return true
	case strings.HasPrefix(s, "data:image/"):
		return true
	case strings.HasPrefix(s, "/"):
		return true
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"):
		return true
	default:
		return false
	}
}

// Validate validates a struct. Failures come back as a VALIDATION domain error
// whose details map field paths (pages[1].content) to messages.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[fieldPath(e)] = friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func friendlyMessage(e validator.FieldError) string {
	collection := e.Kind() == reflect.Slice || e.Kind() == reflect.Map || e.Kind() == reflect.Array

	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		if collection {
			return fmt.Sprintf("must have at least %s item(s)", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if collection {
			return fmt.Sprintf("must not have more than %s items", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "imageref":
		return "must be an embedded image, a path, or an http(s) URL"
	case "unique":
		return "must not contain duplicates"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
