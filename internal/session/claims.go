package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the slice of the access token payload the client reads. The
// signature is never verified here. Authority stays server-side, the
// client only uses exp and user_id for UX decisions.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// DefaultSkew is how close to expiry an access token may get before the
// client refreshes it proactively.
const DefaultSkew = 10 * time.Second

// Decode parses a three-part token without verifying its signature.
// Malformed input yields nil rather than an error.
func Decode(token string) *Claims {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// IsExpiringSoon reports whether the token needs a refresh: no payload, no
// expiry, or an expiry within the skew window.
func IsExpiringSoon(claims *Claims, skew time.Duration) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return !claims.ExpiresAt.Time.After(time.Now().Add(skew))
}
