package auth

import (
	"crypto/subtle"
	"errors"
)

// ErrInvalidCredentials is returned for any failed authentication attempt.
// The reason is deliberately not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Identity is an authenticated principal and what it may do.
type Identity struct {
	Subject      string
	Capabilities []string
}

// Can reports whether the identity holds a capability.
func (id *Identity) Can(capability string) bool {
	for _, c := range id.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Capabilities granted to the admin identity.
const (
	CapCatalogAdmin = "catalog:admin"
	CapChainAdmin   = "chain:admin"
)

// Authenticator checks credentials and produces an identity.
type Authenticator interface {
	Authenticate(username, password string) (*Identity, error)
}

// AdminSecret authenticates a single admin principal against a shared
// secret. The username is accepted as-is and only echoed back as the
// subject; the password carries the authority.
type AdminSecret struct {
	secret []byte
}

func NewAdminSecret(secret string) *AdminSecret {
	return &AdminSecret{secret: []byte(secret)}
}

func (a *AdminSecret) Authenticate(username, password string) (*Identity, error) {
	if len(a.secret) == 0 {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(password), a.secret) != 1 {
		return nil, ErrInvalidCredentials
	}
	if username == "" {
		username = "admin"
	}
	return &Identity{
		Subject:      username,
		Capabilities: []string{CapCatalogAdmin, CapChainAdmin},
	}, nil
}
