// Package response defines the JSON error envelope returned by the services.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vadimbarashkov/shorturls/internal/entity"
)

const StatusError = "error"

// Error kinds reported in the "error" field of the envelope.
const (
	KindInvalidInput       = "invalid_input"
	KindShortCodeCollision = "shortcode_collision"
	KindNotFound           = "not_found"
	KindExpired            = "expired"
	KindMethodNotAllowed   = "method_not_allowed"
	KindInternal           = "internal"
)

// Detail describes a rejected input field.
type Detail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Response struct {
	Status  string   `json:"status"`
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []Detail `json:"details,omitempty"`
}

var (
	EmptyRequestBodyResponse = Response{
		Status:  StatusError,
		Error:   KindInvalidInput,
		Message: "request body is empty",
	}

	InvalidRequestBodyResponse = Response{
		Status:  StatusError,
		Error:   KindInvalidInput,
		Message: "request body is not valid JSON",
	}

	ResourceNotFoundResponse = Response{
		Status:  StatusError,
		Error:   KindNotFound,
		Message: "the requested resource was not found",
	}

	MethodNotAllowedResponse = Response{
		Status:  StatusError,
		Error:   KindMethodNotAllowed,
		Message: "method not allowed",
	}

	InternalErrorResponse = Response{
		Status:  StatusError,
		Error:   KindInternal,
		Message: "an internal server error occurred",
	}
)

func Error(kind, msg string, details ...Detail) Response {
	return Response{
		Status:  StatusError,
		Error:   kind,
		Message: msg,
		Details: details,
	}
}

// MessageForTag returns a user-friendly message for a failed validation tag.
func MessageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "must be a valid absolute URL"
	case "alphanum":
		return "must contain only letters and digits"
	case "min":
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		return fmt.Sprintf("must be at most %s", param)
	case "oneof":
		return fmt.Sprintf("must be one of: %s", param)
	default:
		return "invalid value"
	}
}

// FieldDetails converts rejected entity fields to envelope details.
func FieldDetails(fields []entity.FieldError) []Detail {
	details := make([]Detail, 0, len(fields))
	for _, f := range fields {
		details = append(details, Detail{
			Field:   f.Field,
			Message: MessageForTag(f.Tag, f.Param),
		})
	}
	return details
}

// FromDecodeError maps a request body decoding error to an envelope.
func FromDecodeError(err error) Response {
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, io.EOF):
		return EmptyRequestBodyResponse
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return Error(KindInvalidInput, "request body has invalid field types", Detail{
			Field:   typeErr.Field,
			Message: MessageForType(typeErr.Type.Kind().String()),
		})
	default:
		return InvalidRequestBodyResponse
	}
}

// MessageForType returns a user-friendly message for a mistyped field.
func MessageForType(kind string) string {
	switch kind {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return "must be an integer"
	case "float32", "float64":
		return "must be a number"
	case "bool":
		return "must be a boolean"
	case "string":
		return "must be a string"
	default:
		return "has an invalid type"
	}
}
