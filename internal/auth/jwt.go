package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/princekumar9234/DarkBot/internal/core"
)

// SessionTTL is how long an issued session token stays valid. Logout only
// clears the client-held cookie; there is no server-side revocation list, so
// a leaked token remains usable until this window elapses.
const SessionTTL = 7 * 24 * time.Hour

// Claims carries the authenticated user id alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenManager issues and verifies signed session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &TokenManager{secret: secret, ttl: ttl}
}

// Issue signs a bearer token for the given user id.
func (tm *TokenManager) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
		UserID: userID,
	})
	return token.SignedString(tm.secret)
}

// Verify parses the token and returns the user id it was issued for.
// Expired tokens fail with core.ErrTokenExpired, everything else with
// core.ErrInvalidToken.
func (tm *TokenManager) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, core.ErrInvalidToken
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", core.ErrTokenExpired
		}
		return "", core.ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return "", core.ErrInvalidToken
	}
	return claims.UserID, nil
}
