package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("place order: %w", NewInternal("Failed to create order", cause))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to create order: connection reset", appErr.Error())
}

func TestStatusOf(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"bad request":  {NewBadRequest("Cart is empty"), http.StatusBadRequest},
		"unauthorized": {NewUnauthorized("nope"), http.StatusUnauthorized},
		"forbidden":    {NewForbidden("inactive"), http.StatusForbidden},
		"not found":    {NewNotFound("missing"), http.StatusNotFound},
		"conflict":     {NewConflict("exists"), http.StatusConflict},
		"plain error":  {errors.New("boom"), http.StatusInternalServerError},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}
