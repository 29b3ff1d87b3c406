// Package auth issues and verifies the vault's access tokens and hashes
// passwords.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/dmitrijs2005/divvault/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed token payload: the standard claims plus the
// caller's identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string      `json:"id"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	Divisions []string    `json:"divisions"`
}

// Identity returns the typed identity carried by the claims.
func (c *Claims) Identity() models.Identity {
	return models.Identity{
		UserID:    c.UserID,
		Username:  c.Username,
		Role:      c.Role,
		Divisions: c.Divisions,
	}
}

// GenerateToken signs an HS256 token for user valid for validityDuration.
func GenerateToken(user *models.User, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		Divisions: user.DivisionIDs(),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString and returns the identity it carries.
// Expired tokens yield common.ErrTokenExpired, everything else that fails
// verification yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (models.Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, common.ErrTokenExpired
		}
		return models.Identity{}, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return models.Identity{}, common.ErrInvalidToken
	}

	return claims.Identity(), nil
}
