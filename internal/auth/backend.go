// internal/auth/backend.go
package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// PasswordBackend verifies a candidate password against a stored hash.
// Local bcrypt is the only backend this repository implements; the
// interface leaves room for an LDAP backend a future version could add,
// without a stub standing in for one nothing here calls.
type PasswordBackend interface {
	Verify(ctx context.Context, hash, candidate string) (bool, error)
}

// LocalBackend verifies against bcrypt hashes, grounded on the teacher's
// internal/auth.AuthService.ValidatePassword.
type LocalBackend struct{}

func (LocalBackend) Verify(_ context.Context, hash, candidate string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HashPassword hashes a plaintext password for storage, the write-side
// counterpart LocalBackend.Verify checks against.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
