package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"reschedule-service/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	wrapped := fmt.Errorf("service.Accept: %w", response.ErrInvalidState)
	assert.Equal(t, response.ErrInvalidState.Error(), response.Message(wrapped, "fallback"))

	v := fmt.Errorf("service.ReplaceAvailabilityRules: %w", response.Validation("rule %d: bad timezone", 2))
	assert.True(t, errors.Is(v, response.ErrValidation))
	assert.Equal(t, "rule 2: bad timezone", response.Message(v, "fallback"))

	internal := fmt.Errorf("storage.postgres.GetBooking: connection refused")
	assert.Equal(t, "fallback", response.Message(internal, "fallback"))

	status, code := response.FromError(internal)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, response.FAILED_REQUEST, code)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Day  int    `validate:"min=0,max=6"`
		Type string `validate:"required,oneof=vacation sick other"`
	}

	err := validator.New().Struct(payload{Day: 7})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	resp := response.ValidationError(verrs)
	assert.Equal(t, string(response.VALIDATION_FAILED), resp.Code)
	assert.Contains(t, resp.Message, "field 'Day' must be at most 6")
	assert.Contains(t, resp.Message, "field 'Type' is required")
}
