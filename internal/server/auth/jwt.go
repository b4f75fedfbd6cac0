// Package auth issues and verifies the signed session tokens the portal
// hands out after a successful auto-login or password change.
package auth

import (
	"errors"
	"time"

	"github.com/fairmanage/tenantportal/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the registered JWT claims plus the account the session
// belongs to.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string
}

// GenerateSessionToken signs a session token for the given account using
// HS256. Each token gets a unique jti so sessions can be told apart even
// when issued within the same second.
func GenerateSessionToken(accountID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		AccountID: accountID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// AccountIDFromToken verifies the token signature and expiry and returns
// the account it was issued for. Expired tokens map to
// common.ErrTokenExpired, everything else to common.ErrInvalidToken.
func AccountIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.AccountID, nil
}
