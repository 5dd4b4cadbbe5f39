package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned if the vendor rejected the credentials
	ErrUnauthorized = errors.New("vendor rejected credentials")

	// ErrSessionExpired is returned if the vendor doesn't know the session anymore
	ErrSessionExpired = errors.New("vendor session expired")
)

// Key identifies the configuration a vendor session was created with. Sessions are only
// shared between requests with the same key.
type Key struct {
	Endpoint string
	Tenant   string
	User     string

	// digest of the password, a request with other credentials must not reuse the session
	secret [sha256.Size]byte
}

// NewKey creates the key for the passed configuration tuple
func NewKey(endpoint, tenant, user, password string) Key {
	return Key{
		Endpoint: endpoint,
		Tenant:   tenant,
		User:     user,
		secret:   sha256.Sum256([]byte(password)),
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s@%s", k.Tenant, k.User, k.Endpoint)
}

// Session is a logged in session against the vendor API
type Session interface {
	// ID returns the vendor session id
	ID() string

	// Ping checks if the session is still usable
	Ping(ctx context.Context) error

	// Query executes a request within the session and returns the raw response
	Query(ctx context.Context, payload []byte) ([]byte, error)

	// Close logs out from the vendor
	Close(ctx context.Context) error
}

// Dialer creates new vendor sessions
type Dialer interface {
	Dial(ctx context.Context, key Key, password string) (Session, error)
}
