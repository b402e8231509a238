// backend/shared/go-dtos/error_dtos.go
package dtos

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrorDetail is a shared DTO for structured validation error responses.
type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// NewValidationErrorDetails flattens validator errors into response details.
// Non-validator errors yield nil.
func NewValidationErrorDetails(err error) []ValidationErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]ValidationErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Field() + " failed on " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out = append(out, ValidationErrorDetail{
			Field:   fe.Field(),
			Message: msg,
			Code:    strings.ToLower(fe.Tag()),
		})
	}
	return out
}
