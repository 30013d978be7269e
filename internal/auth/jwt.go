// Package auth issues and verifies the stateless session tokens used by the
// back-office. A token is a bearer credential carrying the user id plus the
// role and profile fields the layout chrome needs; the server never stores
// sessions, it only verifies and re-issues.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/common"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
)

// SessionClaims is the payload of a session token. Role and the profile
// fields are snapshots taken at issue time; an explicit refresh re-reads the
// user row and re-issues the token, which is the only way role changes reach
// an existing session.
type SessionClaims struct {
	jwt.RegisteredClaims
	Role  models.Role `json:"role"`
	Name  string      `json:"name,omitempty"`
	Email string      `json:"email,omitempty"`
	Image string      `json:"image,omitempty"`
}

// IssueSessionToken mints an HS256 token for the user with an absolute
// expiry of validity from now.
func IssueSessionToken(user *models.User, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Role:  user.Role,
		Name:  user.Name,
		Email: user.Email,
	}
	if user.Image != nil {
		claims.Image = *user.Image
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseSessionToken verifies the signature and expiry of a session token
// and returns its claims. Expired tokens yield common.ErrTokenExpired, any
// other failure common.ErrInvalidToken.
func ParseSessionToken(tokenString string, secret []byte) (*SessionClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))

	claims := &SessionClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
