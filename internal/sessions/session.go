// internal/sessions/session.go
package sessions

import (
	"encoding/json"
	"time"
)

// Session is the ephemeral auth artifact the manager owns: never persisted
// in the relational store, living only in the key-value session store for
// the lifetime of its refresh token.
type Session struct {
	UUID         string `json:"uuid"`
	UserID       uint64 `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Session) encode() ([]byte, error) {
	return json.Marshal(s)
}

func decodeSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

const (
	// AccessTokenTTL is the lifetime of a freshly minted access token.
	AccessTokenTTL = 2 * 24 * time.Hour
	// RefreshTokenTTL is the lifetime of a freshly minted refresh token, and
	// therefore of the session record itself.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// Issuer is the JWT `iss` claim stamped on every token this process mints.
	Issuer = "Noelware/charted-server"
)
