package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	require.NoError(t, Configure("test-secret", "reaction-game"))

	raw, err := IssueAccessToken(42, time.Minute)
	require.NoError(t, err)

	id, err := ParseAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	require.NoError(t, Configure("test-secret", "reaction-game"))

	raw, err := IssueAccessToken(7, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	require.NoError(t, Configure("other-secret", "reaction-game"))
	raw, err := IssueAccessToken(7, time.Minute)
	require.NoError(t, err)

	require.NoError(t, Configure("test-secret", "reaction-game"))
	_, err = ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNonNumericSubject(t *testing.T) {
	require.NoError(t, Configure("test-secret", "reaction-game"))

	claims := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "reaction-game",
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
