// Package token decodes access tokens client-side, without signature
// verification. The backend is authoritative for validity; the decoded
// claims serve expiry hints and logging only.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Info is the client-side view of an access token's claims.
type Info struct {
	Subject   string    // Users unique ID
	Email     string    // User's email address
	Role      string    // Role assigned to the user
	IssuedAt  time.Time // Issued at time
	ExpiresAt time.Time // Expiration (zero if the token carries no exp claim)
}

// Inspect parses the raw JWT without verifying its signature and extracts
// the claims the client cares about.
func Inspect(raw string) (*Info, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty token")
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims")
	}

	info := &Info{}
	info.Subject, _ = claims["sub"].(string)
	info.Email, _ = claims["email"].(string)
	info.Role, _ = claims["role"].(string)

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}

	return info, nil
}

// Expired reports whether the token is expired at now. Tokens without an
// exp claim never report expired. skew widens the window to tolerate clock
// drift between client and backend.
func (i *Info) Expired(now time.Time, skew time.Duration) bool {
	if i.ExpiresAt.IsZero() {
		return false
	}
	return now.After(i.ExpiresAt.Add(skew))
}
