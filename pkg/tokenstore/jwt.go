package tokenstore

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessExpiry reads the exp claim from a stored access token without
// verifying the signature. The server remains the authority; the claim is
// only used to report expiry to callers.
func AccessExpiry(access string) (time.Time, error) {
	if access == "" {
		return time.Time{}, fmt.Errorf("empty access token")
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(access, claims); err != nil {
		return time.Time{}, fmt.Errorf("parsing access token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("access token has no exp claim")
	}
	return exp.Time, nil
}

// AccessExpired reports whether the token's exp claim is in the past.
// Tokens without a readable exp claim are treated as unexpired; the 401
// refresh path remains the source of truth.
func AccessExpired(access string, now time.Time) bool {
	exp, err := AccessExpiry(access)
	if err != nil {
		return false
	}
	return exp.Before(now)
}
