package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether a persisted access token is a JWT whose
// expiry has already passed. Opaque tokens, unparsable tokens and JWTs
// without an exp claim all count as not expired: the check only discards
// sessions that are provably dead, the backend remains the authority on
// everything else.
func tokenExpired(raw string, now time.Time) bool {
	if raw == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return false
	}
	return expiry.Before(now)
}
