// Package auth issues and checks the bearer tokens snip clients present when
// pushing. A token is an HS256 JWT carrying the user id.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrNoUser       = errors.New("token carries no user")
)

// Claims holds the registered claims plus the pushing user.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// GenerateToken signs a token for userID. A non-positive validity issues a
// token without expiry.
func GenerateToken(userID string, secretKey []byte, validity time.Duration) (string, error) {
	if userID == "" {
		return "", ErrNoUser
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Subject:  userID,
		},
		UserID: userID,
	}
	if validity > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(validity))
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// GetUserIDFromToken validates tokenString and returns its user id.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.UserID == "" {
		return "", ErrNoUser
	}

	return claims.UserID, nil
}
