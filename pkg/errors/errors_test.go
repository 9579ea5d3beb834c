package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromResponseUsesBackendMessage(t *testing.T) {
	err := FromResponse(http.StatusBadRequest, []byte(`{"error":"insufficient_balance","message":"not enough coins"}`))
	require.NotNil(t, err)
	assert.Equal(t, "not enough coins", err.Message)
	assert.Equal(t, "insufficient_balance", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
}

func TestFromResponseErrorFieldOnly(t *testing.T) {
	err := FromResponse(http.StatusBadRequest, []byte(`{"error":"insufficient_balance"}`))
	assert.Equal(t, "insufficient_balance", err.Message)
}

func TestFromResponseMalformedBodyFallsBack(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte(""),
		[]byte("<html>bad gateway</html>"),
		[]byte(`{"error":`),
	}
	for _, body := range cases {
		err := FromResponse(http.StatusBadGateway, body)
		assert.Equal(t, FallbackMessage, err.Message)
		assert.Equal(t, http.StatusBadGateway, err.Status)
	}
}

func TestFromErrorPassesThroughTypedErrors(t *testing.T) {
	orig := Clone(ErrTimeout, "")
	got := FromError(fmt.Errorf("fetch balance: %w", orig))
	assert.Equal(t, ErrTimeout.Code, got.Code)
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(Clone(ErrTimeout, "")))
	assert.False(t, IsTimeout(Clone(ErrNetwork, "")))
	assert.False(t, IsTimeout(nil))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(FromResponse(http.StatusNotFound, nil)))
	assert.True(t, IsClientError(ErrValidation))
	assert.False(t, IsClientError(FromResponse(http.StatusInternalServerError, nil)))
	assert.False(t, IsClientError(ErrTimeout))
}
