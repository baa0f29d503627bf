package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		predicate func(error) bool
	}{
		{"validation", NewValidationError("bad_input", "bad input"), IsValidation},
		{"authentication", NewAuthError("bad_key", "bad key"), IsAuth},
		{"provider", NewProviderError(502, "upstream down"), IsProvider},
		{"parse", NewParseError("not json"), IsParse},
		{"no_active_provider", &Error{Type: ErrTypeNoActiveProvider}, IsNoActiveProvider},
		{"not_registered", &Error{Type: ErrTypeNotRegistered}, IsNotRegistered},
		{"unsupported_provider", &Error{Type: ErrTypeUnsupportedProvider}, IsUnsupportedProvider},
		{"multimodal_unsupported", &Error{Type: ErrTypeMultimodalUnsupported}, IsMultimodalUnsupported},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.predicate(tc.err))
			assert.False(t, tc.predicate(errors.New("plain error")))
		})
	}
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("dispatch failed: %w", NewProviderError(500, "boom"))
	assert.True(t, IsProvider(wrapped))
	assert.False(t, IsValidation(wrapped))
}

func TestProviderErrorCarriesStatus(t *testing.T) {
	err := NewProviderError(429, "rate limited")
	assert.Equal(t, 429, err.StatusCode)
	assert.Equal(t, "rate limited", err.Error())
}
