// internal/apikeys/generator.go
package apikeys

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenPrefix marks a token as a charted API key when seen in a log,
// credential scanner, or support ticket.
const tokenPrefix = "chp_"

// Generator mints the opaque bearer tokens repository.ApiKey stores hashed
// (sha256, see internal/auth.Gate.authenticateApiKey) - the raw value is
// handed to the caller exactly once, at creation time, and never stored.
type Generator struct{}

func NewGenerator() Generator { return Generator{} }

// Generate returns a new random token. 32 bytes of entropy, base64url
// encoded, prefixed so it is recognizable as belonging to this service.
func (Generator) Generate() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate api key token: %w", err)
	}
	return tokenPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}
