package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrors(t *testing.T) {
	var v ValidationErrors
	require.NoError(t, v.Err())

	v.Required("foodName", "  ")
	v.Required("description", "fresh")
	v.Add("quantity", "quantity must be a non-negative integer")

	err := v.Err()
	require.Error(t, err)

	var got ValidationErrors
	require.True(t, errors.As(err, &got))
	assert.Len(t, got, 2)
	assert.Equal(t, "foodName", got[0].Field)
	assert.Contains(t, err.Error(), "foodName is required")
}

func TestRespondValidation(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondValidation(rr, ValidationErrors{{Field: "foodName", Message: "foodName is required"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, CodeValidationFailed, body.Code)
	assert.Len(t, body.Errors, 1)
}
