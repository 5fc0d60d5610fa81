package portalapi

// Package portalapi contains simple hand-written test doubles for the session
// core's ports. These are lightweight and suitable for unit tests without
// codegen.

import (
	"context"
	"sync"

	domainsession "github.com/escolaweb/portal-core/internal/domain/session"
	"github.com/escolaweb/portal-core/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthAPI        = (*MockAuthAPI)(nil)
	_ ports.Navigator      = (*RecordingNavigator)(nil)
	_ ports.Notifier       = (*RecordingNotifier)(nil)
	_ ports.SchemeDetector = (StaticScheme)(false)
)

// MockAuthAPI simulates the backend with overridable behavior and call
// counters for asserting which round trips happened.
type MockAuthAPI struct {
	LoginFunc    func(ctx context.Context, creds ports.Credentials) (ports.TokenPair, error)
	FetchFunc    func(ctx context.Context, accessToken string) (domainsession.UserProfile, error)
	ToggleFunc   func(ctx context.Context, accessToken string) (bool, error)

	mu          sync.Mutex
	LoginCalls  int
	FetchCalls  int
	ToggleCalls int
}

// DefaultProfile is the profile returned when FetchFunc is not set.
func DefaultProfile() domainsession.UserProfile {
	return domainsession.UserProfile{
		ID:         "user-1",
		Name:       "Test User",
		Username:   "test.user",
		Role:       domainsession.RoleStudent,
		SchoolName: "Escola Modelo",
	}
}

func (m *MockAuthAPI) Login(ctx context.Context, creds ports.Credentials) (ports.TokenPair, error) {
	m.mu.Lock()
	m.LoginCalls++
	m.mu.Unlock()
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return ports.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}, nil
}

func (m *MockAuthAPI) FetchCurrentUser(ctx context.Context, accessToken string) (domainsession.UserProfile, error) {
	m.mu.Lock()
	m.FetchCalls++
	m.mu.Unlock()
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, accessToken)
	}
	return DefaultProfile(), nil
}

func (m *MockAuthAPI) ToggleServerDarkMode(ctx context.Context, accessToken string) (bool, error) {
	m.mu.Lock()
	m.ToggleCalls++
	m.mu.Unlock()
	if m.ToggleFunc != nil {
		return m.ToggleFunc(ctx, accessToken)
	}
	return true, nil
}

// NavCall records one navigation side effect.
type NavCall struct {
	Path    string
	Replace bool
}

// RecordingNavigator captures navigation calls for assertions.
type RecordingNavigator struct {
	mu    sync.Mutex
	Calls []NavCall
}

func (n *RecordingNavigator) GoTo(path string, replace bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Calls = append(n.Calls, NavCall{Path: path, Replace: replace})
}

// Last returns the most recent navigation, if any.
func (n *RecordingNavigator) Last() (NavCall, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Calls) == 0 {
		return NavCall{}, false
	}
	return n.Calls[len(n.Calls)-1], true
}

// Notification records one notification side effect.
type Notification struct {
	Kind    ports.NotifyKind
	Message string
}

// RecordingNotifier captures notifications for assertions.
type RecordingNotifier struct {
	mu     sync.Mutex
	Events []Notification
}

func (n *RecordingNotifier) Notify(kind ports.NotifyKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, Notification{Kind: kind, Message: message})
}

// Last returns the most recent notification, if any.
func (n *RecordingNotifier) Last() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Events) == 0 {
		return Notification{}, false
	}
	return n.Events[len(n.Events)-1], true
}

// StaticScheme is a fixed ambient color-scheme signal.
type StaticScheme bool

func (s StaticScheme) PrefersDark() bool { return bool(s) }
