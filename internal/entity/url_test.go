package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestURL_IsExpired(t *testing.T) {
	expiresAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	url := URL{ExpiresAt: expiresAt}

	assert.False(t, url.IsExpired(expiresAt.Add(-time.Second)))
	assert.False(t, url.IsExpired(expiresAt))
	assert.True(t, url.IsExpired(expiresAt.Add(time.Nanosecond)))
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "url", Tag: "url"},
		{Field: "validity", Tag: "min", Param: "1"},
	}}

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "invalid input: url, validity", err.Error())

	var validationErr *ValidationError
	assert.True(t, errors.As(error(err), &validationErr))
	assert.Len(t, validationErr.Fields, 2)

	assert.Equal(t, "invalid input", (&ValidationError{}).Error())
}
