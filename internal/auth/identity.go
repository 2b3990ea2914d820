// internal/auth/identity.go
package auth

import (
	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/repository"
	"github.com/charted-dev/charted/internal/sessions"
)

// Identity is what a successful gate evaluation attaches to the request
// context: the resolved user, the session record when the credential was a
// bearer token (nil otherwise), and the key's scope bitfield when the
// credential was an ApiKey (nil otherwise).
type Identity struct {
	User    repository.User
	Session *sessions.Session
	Scopes  *common.ApiKeyScope
}
