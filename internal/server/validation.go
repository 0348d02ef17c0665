package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validationError converts validator output into an ErrValidation naming the
// first failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ErrValidation{Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "oneof":
		return &ErrValidation{Field: field, Message: fmt.Sprintf("must be one of %s", fe.Param())}
	case "required":
		return &ErrValidation{Field: field, Message: "is required"}
	case "url":
		return &ErrValidation{Field: field, Message: "must be a valid URL"}
	case "max":
		return &ErrValidation{Field: field, Message: fmt.Sprintf("must be at most %s characters", fe.Param())}
	default:
		return &ErrValidation{Field: field, Message: fmt.Sprintf("failed on %s", fe.Tag())}
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
