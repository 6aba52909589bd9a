package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken("s3cret", "u1", "MEMBER", 15*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), at.Exp, 5*time.Second)

	tok, err := jwt.Parse(at.Token, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "u1", claims["sub"])
	assert.Equal(t, "MEMBER", claims["role"])
	assert.Equal(t, "HS256", tok.Method.Alg())
}

func TestNewAccessTokenRejectsEmptyInputs(t *testing.T) {
	_, err := NewAccessToken("", "u1", "MEMBER", time.Minute)
	assert.Error(t, err)
	_, err = NewAccessToken("s", "", "MEMBER", time.Minute)
	assert.Error(t, err)
}
