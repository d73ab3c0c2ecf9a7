package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// IssueOwnerToken signs a short-lived HS256 token that lets its holder send
// control messages (reset, add balls, retune) for one session. Viewers do
// not need one; frames are readable by anyone with the session token.
func IssueOwnerToken(sessionToken, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"session": sessionToken,
		"role":    "owner",
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyOwnerToken checks the signature and that the token grants ownership
// of the given session.
func VerifyOwnerToken(tokenString, sessionToken, secret string) error {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return fmt.Errorf("invalid owner token: %w", err)
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid owner token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("invalid owner token claims")
	}
	if claims["session"] != sessionToken {
		return fmt.Errorf("owner token is for a different session")
	}
	if claims["role"] != "owner" {
		return fmt.Errorf("token does not grant ownership")
	}
	return nil
}
