package dtos

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	LeaseID string `json:"leaseId" validate:"required,uuid"`
	Day     int    `json:"day" validate:"min=1,max=31"`
}

func TestNewValidationErrorDetails(t *testing.T) {
	v := validator.New()
	err := v.Struct(sample{Day: 40})
	require.Error(t, err)

	details := NewValidationErrorDetails(err)
	require.Len(t, details, 2)
	assert.Equal(t, "LeaseID", details[0].Field)
	assert.Equal(t, "required", details[0].Code)
	assert.Equal(t, "Day", details[1].Field)
	assert.Equal(t, "max", details[1].Code)
	assert.Contains(t, details[1].Message, "max=31")

	assert.Nil(t, NewValidationErrorDetails(errors.New("plain")))
}
