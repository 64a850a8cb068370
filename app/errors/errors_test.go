package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", NotFound("missing", nil), http.StatusNotFound},
		{"invalid input", InvalidInput("bad", nil), http.StatusBadRequest},
		{"missing cookie", Unauthenticated("no token", nil), http.StatusUnauthorized},
		{"bad token", InvalidCredentials("bad token", nil), http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours", nil), http.StatusForbidden},
		{"conflict", Conflict("full", nil), http.StatusConflict},
		{"unavailable", Unavailable("down", nil), http.StatusServiceUnavailable},
		{"internal", Internal("boom", errors.New("disk")), http.StatusInternalServerError},
		{"plain error", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", Forbidden("inner", nil)), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestDomainError(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("store failure", cause)

	assert.Equal(t, "INTERNAL: store failure: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.NotEmpty(t, err.StackTrace())
	assert.True(t, Is(err, ErrTypeInternal))
	assert.False(t, Is(err, ErrTypeNotFound))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "store failure", PublicMessage(Internal("store failure", errors.New("secret dsn"))))
	assert.Equal(t, "invalid post: title is required", PublicMessage(InvalidInput("invalid post", errors.New("title is required"))))
	assert.Equal(t, "forbidden access", PublicMessage(Forbidden("forbidden access", nil)))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("raw")))
}
