package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("alice", secret, time.Hour)
	require.NoError(t, err)

	uid, err := GetUserIDFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "alice", uid)
}

func TestGenerateToken_NoExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := GenerateToken("bob", secret, 0)
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) { return secret, nil })
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.Equal(t, "bob", claims.Subject)
}

func TestGenerateToken_EmptyUser(t *testing.T) {
	t.Parallel()

	_, err := GenerateToken("", []byte("k"), time.Hour)
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		UserID:           "u1",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, []byte("wrong-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserIDFromToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := GetUserIDFromToken("not-a-jwt", []byte("k"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserIDFromToken_WrongAlgorithm(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: "u3"}).SignedString(secret)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserIDFromToken_MissingUser(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString(secret)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	assert.ErrorIs(t, err, ErrNoUser)
}
