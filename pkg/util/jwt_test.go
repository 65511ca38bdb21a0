package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "test-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, "test-secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	newReq := func(auth string) *http.Request {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		if auth != "" {
			r.Header.Set("Authorization", auth)
		}
		return r
	}

	assert.Equal(t, "abc", ExtractToken(newReq("Bearer abc")))
	assert.Equal(t, "abc", ExtractToken(newReq("bearer abc")))
	assert.Equal(t, "", ExtractToken(newReq("")))
	assert.Equal(t, "", ExtractToken(newReq("Basic abc")))
	assert.Equal(t, "", ExtractToken(newReq("Bearer")))
}
