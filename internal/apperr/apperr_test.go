package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(KindNotFound, "conversations.Get", "conversation not found"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, errors.Is(err, NotFound))
	assert.False(t, errors.Is(err, Validation))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.Equal(t, "conversation not found", MessageOf(err))
}

func TestInternalErrorsAreHidden(t *testing.T) {
	err := errors.New("database exploded")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.Equal(t, "internal server error", MessageOf(err))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(KindProviderCallFailure, "op", nil))
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindProviderNotFound, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindAllProvidersExhausted, http.StatusBadGateway},
	}
	for _, tt := range tests {
		if got := HTTPStatus(New(tt.kind, "", "")); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
