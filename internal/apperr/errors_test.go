package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"tracker-service/internal/apperr"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.Unauthenticated, http.StatusUnauthorized},
		{apperr.Forbidden, http.StatusForbidden},
		{apperr.NotFound, http.StatusNotFound},
		{apperr.Validation, http.StatusBadRequest},
		{apperr.QuotaExceeded, http.StatusForbidden},
		{apperr.Conflict, http.StatusConflict},
		{apperr.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.NotFound, apperr.KindOf(apperr.New(apperr.NotFound, "tenant not found")))
	assert.Equal(t, apperr.Internal, apperr.KindOf(errors.New("pq: connection refused")))

	wrapped := fmt.Errorf("loading user: %w", apperr.New(apperr.Forbidden, "insufficient role"))
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(wrapped))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "invalid credentials", apperr.MessageOf(apperr.New(apperr.Unauthenticated, "invalid credentials")))
	assert.Equal(t, "internal server error", apperr.MessageOf(errors.New("dial tcp: timeout")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := apperr.Wrap(apperr.Conflict, "subdomain already registered", cause)

	assert.True(t, apperr.Is(err, apperr.Conflict))
	assert.False(t, apperr.Is(err, apperr.Validation))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "conflict")
	assert.Contains(t, err.Error(), "subdomain already registered")
}
