// Package errors turns Go errors into low-cardinality class names for
// metric and notification tagging.
package errors

import (
	goerrors "errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/talentwire/autoapply/internal/hh"

	apperrors "github.com/talentwire/autoapply/internal/errors"
)

// Classify returns a normalized class name for err. Application errors map
// to their code, upstream API errors to their HTTP status, and anything else
// to the innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *hh.APIError
	if goerrors.As(err, &apiErr) {
		return "api_" + strconv.Itoa(apiErr.StatusCode)
	}
	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) {
		return string(appErr.Code)
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
