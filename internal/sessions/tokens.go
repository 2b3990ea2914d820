// internal/sessions/tokens.go
package sessions

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/charted-dev/charted/internal/common"
)

// claims is the JWT payload both the access and refresh token carry,
// grounded on the teacher's internal/auth.JWTClaims shape but widened to
// the session_id/user_id pair this spec's bearer scheme requires, and
// signed HMAC-SHA-512 rather than the teacher's HS256.
type claims struct {
	SessionID string `json:"session_id"`
	UserID    uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

func signToken(secret []byte, sessionID string, userID uint64, now time.Time, ttl time.Duration) (string, error) {
	c := claims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, c)
	return token.SignedString(secret)
}

// parseToken validates signature and expiry and extracts the claims the
// bearer scheme needs. Expired signatures map to SessionExpired; a valid
// token missing session_id or user_id maps to InvalidJwtClaim; anything
// else wrong with the token maps to InvalidSessionToken, per spec.md §4.9.
func parseToken(secret []byte, tokenString string) (sessionID string, userID uint64, err error) {
	parsed, parseErr := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})

	if parseErr != nil {
		if errors.Is(parseErr, jwt.ErrTokenExpired) {
			return "", 0, common.NewError(common.CodeSessionExpired, "session token has expired")
		}
		return "", 0, common.NewError(common.CodeInvalidSessionToken, "malformed session token")
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return "", 0, common.NewError(common.CodeInvalidSessionToken, "malformed session token")
	}
	if c.SessionID == "" || c.UserID == 0 {
		return "", 0, common.NewError(common.CodeInvalidJwtClaim, "session token is missing required claims")
	}

	return c.SessionID, c.UserID, nil
}
