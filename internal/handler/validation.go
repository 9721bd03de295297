package handler

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"lms-backend/pkg/apierror"
)

var requestValidator = validator.New()

// decodeAndValidate rejects malformed bodies, unknown fields, and schema
// violations before any business logic runs.
func decodeAndValidate(body io.Reader, dst any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return apierror.BadRequest("Invalid JSON body")
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apierror.BadRequest("Invalid JSON body")
	}

	if err := requestValidator.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			first := validationErrors[0]
			field := strings.ToLower(first.Field())
			switch first.Tag() {
			case "required":
				return apierror.BadRequest("Please enter the " + field)
			case "email":
				return apierror.BadRequest("Please enter a valid email")
			case "min":
				return apierror.BadRequest("The " + field + " is too short")
			case "len", "numeric":
				return apierror.BadRequest("Invalid " + field)
			case "oneof":
				return apierror.BadRequest("Invalid " + field + " value")
			default:
				return apierror.BadRequest("Invalid " + field)
			}
		}

		return apierror.BadRequest("Invalid request payload")
	}

	return nil
}
