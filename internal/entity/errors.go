package entity

import "strings"

// FieldError describes why a single input field was rejected.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// ValidationError is returned when input fails validation. It wraps ErrInvalidInput.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}

	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}

	return ErrInvalidInput.Error() + ": " + strings.Join(names, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
