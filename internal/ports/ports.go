package ports

// Package ports defines interfaces (hexagonal ports) for the collaborators the
// session core consumes. Implementations live in internal/adapters;
// orchestration in internal/service.

import (
	"context"

	domainsession "github.com/escolaweb/portal-core/internal/domain/session"
)

// Credentials carries the login form input.
type Credentials struct {
	Identifier string
	Secret     string
}

// TokenPair is the opaque token pair issued by the backend on login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthAPI is the REST backend surface the session core depends on.
type AuthAPI interface {
	// Login exchanges credentials for a token pair. Failures carry the
	// server-provided message when one exists.
	Login(ctx context.Context, creds Credentials) (TokenPair, error)

	// FetchCurrentUser returns the profile for the bearer of accessToken.
	FetchCurrentUser(ctx context.Context, accessToken string) (domainsession.UserProfile, error)

	// ToggleServerDarkMode flips the account-level dark-mode flag and
	// returns the new value.
	ToggleServerDarkMode(ctx context.Context, accessToken string) (bool, error)
}

// KeyValue is persisted string storage shared process-wide. Implementations
// must treat Delete of a missing key as a no-op.
type KeyValue interface {
	// Get returns ErrKeyNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ErrKeyNotFound is returned by KeyValue.Get for absent keys.
type keyNotFoundError struct{}

func (keyNotFoundError) Error() string { return "key not found" }

var ErrKeyNotFound error = keyNotFoundError{}

// Navigator is the navigation side-channel. Replace controls whether the
// current history entry is replaced instead of pushed.
type Navigator interface {
	GoTo(path string, replace bool)
}

// NotifyKind classifies a user-facing notification.
type NotifyKind string

const (
	NotifySuccess NotifyKind = "success"
	NotifyError   NotifyKind = "error"
)

// Notifier is the fire-and-forget notification side-channel. It never
// affects control flow.
type Notifier interface {
	Notify(kind NotifyKind, message string)
}

// SchemeDetector exposes the platform's ambient color-scheme preference,
// used only when no persisted theme preference exists.
type SchemeDetector interface {
	PrefersDark() bool
}
