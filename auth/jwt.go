package auth

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// Gateway tokens are short identifiers for a stored session, not the
// upstream CRM token. A 7-day exp lets abandoned sessions age out of
// the store.
const tokenLifetime = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

// GenerateToken mints a session token for the given role and returns
// the token string together with the new session id embedded in it.
func GenerateToken(secret, role string) (string, string, error) {
	sessionID := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sessionId": sessionID,
		"role":      role,
		"exp":       time.Now().Add(tokenLifetime).Unix(),
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}

	return tokenString, sessionID, nil
}

// ParseToken verifies the signature and expiry and returns the session
// id and role.
func ParseToken(secret, tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}
	sessionID, _ := claims["sessionId"].(string)
	role, _ := claims["role"].(string)
	if sessionID == "" || role == "" {
		return "", "", ErrInvalidToken
	}
	return sessionID, role, nil
}
