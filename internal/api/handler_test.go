package api

import (
	"fmt"
	"net/http"
	"testing"

	"marketplace-service/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrInvalidArgument, http.StatusBadRequest},
		{service.ErrInsufficientStock, http.StatusConflict},
		{service.ErrInvalidTransition, http.StatusConflict},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, statusForError(tc.err), "%v", tc.err)
		// Wrapped engine errors map the same way.
		assert.Equal(t, tc.code, statusForError(fmt.Errorf("order 7: %w", tc.err)))
	}
}
