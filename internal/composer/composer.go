// Package composer orchestrates the multi-step create/update flows for
// bundles and promotions: field validation, optional image upload, the row
// upsert and the replacement of the linked-product set.
package composer

import (
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ErrNotFound is returned when the targeted row does not exist.
var ErrNotFound = errors.New("not found")

// ImageUpload is a pending image file selected by the caller.
type ImageUpload struct {
	Reader   io.Reader
	Filename string
}

// ValidationErrors maps field names to human-readable messages. It is
// returned before any store call is made, never thrown mid-flight.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, field+" "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// tagPattern is the routing-key shape: lowercase alphanumerics and hyphens.
var tagPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("promotag", func(fl validator.FieldLevel) bool {
		return tagPattern.MatchString(fl.Field().String())
	})
	return v
}

// checkStruct runs validator tags over in and flattens the result into a
// field-keyed map.
func checkStruct(in interface{}) ValidationErrors {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	out := ValidationErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}

	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out[fieldKey(fe.Field())] = "is required"
		case "gt":
			out[fieldKey(fe.Field())] = "must be a positive number"
		case "promotag":
			out[fieldKey(fe.Field())] = "must contain only lowercase letters, numbers and hyphens"
		default:
			out[fieldKey(fe.Field())] = "is invalid"
		}
	}
	return out
}

// fieldKey lowers the first rune so map keys line up with the JSON names.
func fieldKey(field string) string {
	if field == "" {
		return field
	}
	r := []rune(field)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
