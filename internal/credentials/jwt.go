package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the backend puts into access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// TokenInfo is what can be learned from a token without the signing key.
type TokenInfo struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token expiry is known and has passed.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// InspectToken decodes the claims of a JWT without verifying its signature.
// The signing key belongs to the backend, so the result is only a hint; the
// identity endpoint stays the authority. ok is false for opaque tokens.
func InspectToken(token string) (info TokenInfo, ok bool) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, false
	}

	info.UserID = claims.UserID
	if info.UserID == "" {
		info.UserID = claims.Subject
	}
	info.Role = claims.Role
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}

	return info, true
}
