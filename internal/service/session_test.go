package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/escolaweb/portal-core/internal/adapters/storage"
	"github.com/escolaweb/portal-core/internal/domain/nav"
	"github.com/escolaweb/portal-core/internal/domain/rbac"
	domainsession "github.com/escolaweb/portal-core/internal/domain/session"
	apperrors "github.com/escolaweb/portal-core/internal/errors"
	"github.com/escolaweb/portal-core/internal/mocks/portalapi"
	"github.com/escolaweb/portal-core/internal/ports"
	"github.com/escolaweb/portal-core/internal/testutil"
)

type sessionFixture struct {
	api      *portalapi.MockAuthAPI
	storage  ports.KeyValue
	nav      *portalapi.RecordingNavigator
	notifier *portalapi.RecordingNotifier
	store    *SessionStore
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		api:      &portalapi.MockAuthAPI{},
		storage:  storage.NewMemory(),
		nav:      &portalapi.RecordingNavigator{},
		notifier: &portalapi.RecordingNotifier{},
	}
	f.store = NewSessionStore(SessionStoreOptions{
		API:      f.api,
		Storage:  f.storage,
		Nav:      f.nav,
		Notifier: f.notifier,
		Now:      testutil.FixedTimeFunc(testutil.TestTime()),
	})
	return f
}

func (f *sessionFixture) persistToken(t *testing.T, token string) {
	t.Helper()
	require.NoError(t, f.storage.Set(context.Background(), keyAccessToken, token))
	require.NoError(t, f.storage.Set(context.Background(), keyRefreshToken, "refresh-0"))
}

// signedJWT returns an HS256 token expiring at the given offset from the
// fixture clock. The store only peeks at the exp claim; the key is irrelevant.
func signedJWT(t *testing.T, expOffset time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "user-1",
		"exp": testutil.TestTime().Add(expOffset).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestInitializeWithoutTokenResolvesAnonymous(t *testing.T) {
	f := newSessionFixture(t)

	f.store.Initialize(context.Background())

	snap := f.store.Snapshot()
	assert.Equal(t, domainsession.StatusAnonymous, snap.Status)
	assert.Nil(t, snap.User)
	assert.Zero(t, f.api.FetchCalls, "no round trip without a persisted token")
}

func TestInitializeWithValidTokenResolvesAuthenticated(t *testing.T) {
	f := newSessionFixture(t)
	f.persistToken(t, "opaque-token")

	f.api.FetchFunc = func(_ context.Context, accessToken string) (domainsession.UserProfile, error) {
		assert.Equal(t, "opaque-token", accessToken)
		return portalapi.DefaultProfile(), nil
	}

	f.store.Initialize(context.Background())

	snap := f.store.Snapshot()
	require.Equal(t, domainsession.StatusAuthenticated, snap.Status)
	require.NotNil(t, snap.User)
	assert.Equal(t, domainsession.RoleStudent, snap.User.Role)
	assert.True(t, f.store.Capabilities().ActsAsLearner)
}

func TestInitializeWithExpiredJWTSkipsFetch(t *testing.T) {
	f := newSessionFixture(t)
	f.persistToken(t, signedJWT(t, -time.Hour))

	f.store.Initialize(context.Background())

	snap := f.store.Snapshot()
	assert.Equal(t, domainsession.StatusAnonymous, snap.Status)
	assert.Zero(t, f.api.FetchCalls, "an expired token cannot possibly be accepted")

	_, err := f.storage.Get(context.Background(), keyAccessToken)
	assert.ErrorIs(t, err, ports.ErrKeyNotFound, "the expired token is purged")
}

func TestInitializeWithLiveJWTFetches(t *testing.T) {
	f := newSessionFixture(t)
	f.persistToken(t, signedJWT(t, time.Hour))

	f.store.Initialize(context.Background())

	assert.Equal(t, domainsession.StatusAuthenticated, f.store.Snapshot().Status)
	assert.Equal(t, 1, f.api.FetchCalls)
}

func TestInitializeWithRejectedTokenPurgesSilently(t *testing.T) {
	f := newSessionFixture(t)
	f.persistToken(t, "stale-token")

	f.api.FetchFunc = func(context.Context, string) (domainsession.UserProfile, error) {
		return domainsession.UserProfile{}, apperrors.Unauthorized("token revoked")
	}

	f.store.Initialize(context.Background())

	assert.Equal(t, domainsession.StatusAnonymous, f.store.Snapshot().Status)
	_, ok := f.notifier.Last()
	assert.False(t, ok, "silent re-authentication failures are never surfaced")

	_, err := f.storage.Get(context.Background(), keyAccessToken)
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
	_, err = f.storage.Get(context.Background(), keyRefreshToken)
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestLoginSuccess(t *testing.T) {
	f := newSessionFixture(t)

	err := f.store.Login(context.Background(), "test.user", "secret")
	require.NoError(t, err)

	snap := f.store.Snapshot()
	require.Equal(t, domainsession.StatusAuthenticated, snap.Status)
	require.NotNil(t, snap.User)
	assert.Equal(t, "test.user", snap.User.Username)

	access, err := f.storage.Get(context.Background(), keyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access-1", access)
	refresh, err := f.storage.Get(context.Background(), keyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", refresh)

	last, ok := f.nav.Last()
	require.True(t, ok)
	assert.Equal(t, nav.PathDashboard, last.Path)
	assert.False(t, last.Replace, "login navigation pushes a history entry")
}

func TestLoginFailureSurfacesServerMessage(t *testing.T) {
	f := newSessionFixture(t)
	f.store.Initialize(context.Background()) // settle into Anonymous first

	f.api.LoginFunc = func(context.Context, ports.Credentials) (ports.TokenPair, error) {
		return ports.TokenPair{}, apperrors.Unauthorized("Erro ao fazer login")
	}

	err := f.store.Login(context.Background(), "test.user", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))

	note, ok := f.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, ports.NotifyError, note.Kind)
	assert.Equal(t, "Erro ao fazer login", note.Message, "the server-provided message passes through verbatim")

	assert.Equal(t, domainsession.StatusAnonymous, f.store.Snapshot().Status, "the prior state is restored")
	_, navigated := f.nav.Last()
	assert.False(t, navigated, "no navigation on failure")

	_, gerr := f.storage.Get(context.Background(), keyAccessToken)
	assert.ErrorIs(t, gerr, ports.ErrKeyNotFound, "nothing is persisted on failure")
}

func TestLoginFailureWithoutMessageUsesGenericText(t *testing.T) {
	f := newSessionFixture(t)

	f.api.LoginFunc = func(context.Context, ports.Credentials) (ports.TokenPair, error) {
		return ports.TokenPair{}, context.DeadlineExceeded
	}

	err := f.store.Login(context.Background(), "test.user", "secret")
	require.Error(t, err)

	note, ok := f.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, genericLoginError, note.Message)
}

func TestLoginProfileFetchFailurePurgesTokens(t *testing.T) {
	f := newSessionFixture(t)

	f.api.FetchFunc = func(context.Context, string) (domainsession.UserProfile, error) {
		return domainsession.UserProfile{}, apperrors.Transient("backend unreachable")
	}

	err := f.store.Login(context.Background(), "test.user", "secret")
	require.Error(t, err)

	// A half-completed login must not leave a token pair behind that a later
	// Initialize would happily re-use against a broken profile endpoint.
	_, gerr := f.storage.Get(context.Background(), keyAccessToken)
	assert.ErrorIs(t, gerr, ports.ErrKeyNotFound)
	assert.NotEqual(t, domainsession.StatusAuthenticated, f.store.Snapshot().Status)
}

func TestLoginThrottled(t *testing.T) {
	f := newSessionFixture(t)
	f.store.limiter = rate.NewLimiter(rate.Every(time.Minute), 1)

	require.NoError(t, f.store.Login(context.Background(), "test.user", "secret"))

	err := f.store.Login(context.Background(), "test.user", "secret")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 1, f.api.LoginCalls, "the throttled attempt never reaches the backend")
}

func TestLogout(t *testing.T) {
	f := newSessionFixture(t)
	require.NoError(t, f.store.Login(context.Background(), "test.user", "secret"))

	f.store.Logout(context.Background())

	snap := f.store.Snapshot()
	assert.Equal(t, domainsession.StatusAnonymous, snap.Status)
	assert.Nil(t, snap.User)

	_, err := f.storage.Get(context.Background(), keyAccessToken)
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
	_, err = f.storage.Get(context.Background(), keyRefreshToken)
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	last, ok := f.nav.Last()
	require.True(t, ok)
	assert.Equal(t, nav.PathLogin, last.Path)
	assert.True(t, last.Replace, "logout replaces history so back cannot re-enter")

	// Logout from Anonymous is a harmless repeat.
	f.store.Logout(context.Background())
	assert.Equal(t, domainsession.StatusAnonymous, f.store.Snapshot().Status)
}

func TestLogoutSupersedesInFlightLogin(t *testing.T) {
	f := newSessionFixture(t)

	// The profile fetch lands after a logout was issued; its completion must
	// be discarded rather than resurrect the session.
	f.api.FetchFunc = func(context.Context, string) (domainsession.UserProfile, error) {
		f.store.Logout(context.Background())
		return portalapi.DefaultProfile(), nil
	}

	err := f.store.Login(context.Background(), "test.user", "secret")
	require.NoError(t, err, "a superseded login is not an error")

	snap := f.store.Snapshot()
	assert.Equal(t, domainsession.StatusAnonymous, snap.Status)
	assert.Nil(t, snap.User)

	last, ok := f.nav.Last()
	require.True(t, ok)
	assert.Equal(t, nav.PathLogin, last.Path, "the stale login must not navigate to the dashboard")
}

func TestSnapshotInvariantHeldAcrossTransitions(t *testing.T) {
	f := newSessionFixture(t)

	var seen []domainsession.Snapshot
	unsubscribe := f.store.Subscribe(func(snap domainsession.Snapshot) {
		seen = append(seen, snap)
	})
	defer unsubscribe()

	require.NoError(t, f.store.Login(context.Background(), "test.user", "secret"))
	f.store.Logout(context.Background())

	require.NotEmpty(t, seen)
	for i, snap := range seen {
		if snap.Status == domainsession.StatusAuthenticated {
			assert.NotNil(t, snap.User, "snapshot %d: authenticated implies a user", i)
		} else {
			assert.Nil(t, snap.User, "snapshot %d: only authenticated carries a user", i)
		}
	}

	assert.Equal(t, domainsession.StatusLoading, seen[0].Status, "login begins with a Loading phase")
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	f := newSessionFixture(t)

	calls := 0
	unsubscribe := f.store.Subscribe(func(domainsession.Snapshot) { calls++ })
	f.store.Initialize(context.Background())
	require.Positive(t, calls)

	before := calls
	unsubscribe()
	f.store.Logout(context.Background())
	assert.Equal(t, before, calls)
}

func TestPatchUser(t *testing.T) {
	f := newSessionFixture(t)

	// No user present: a patch is a no-op.
	f.store.PatchUser(domainsession.UserPatch{Name: testutil.StringPtr("Ghost")})
	assert.Nil(t, f.store.Snapshot().User)

	require.NoError(t, f.store.Login(context.Background(), "test.user", "secret"))

	notified := false
	defer f.store.Subscribe(func(snap domainsession.Snapshot) {
		notified = true
		require.NotNil(t, snap.User)
		assert.Equal(t, "Renamed User", snap.User.Name)
	})()

	f.store.PatchUser(domainsession.UserPatch{Name: testutil.StringPtr("Renamed User")})
	assert.True(t, notified)

	snap := f.store.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, "Renamed User", snap.User.Name)
	assert.Equal(t, "test.user", snap.User.Username)

	// Empty patches do not publish.
	notified = false
	f.store.PatchUser(domainsession.UserPatch{})
	assert.False(t, notified)
}

func TestToggleRemoteDarkMode(t *testing.T) {
	f := newSessionFixture(t)

	err := f.store.ToggleRemoteDarkMode(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err), "requires a live session")

	require.NoError(t, f.store.Login(context.Background(), "test.user", "secret"))
	require.NoError(t, f.store.ToggleRemoteDarkMode(context.Background()))

	snap := f.store.Snapshot()
	require.NotNil(t, snap.User)
	assert.True(t, snap.User.DarkMode)
	assert.Equal(t, 1, f.api.ToggleCalls)
}

func TestToggleRemoteDarkModeFailureKeepsProfile(t *testing.T) {
	f := newSessionFixture(t)
	require.NoError(t, f.store.Login(context.Background(), "test.user", "secret"))

	f.api.ToggleFunc = func(context.Context, string) (bool, error) {
		return false, apperrors.Transient("backend unreachable")
	}

	err := f.store.ToggleRemoteDarkMode(context.Background())
	require.Error(t, err)

	note, ok := f.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, ports.NotifyError, note.Kind)

	snap := f.store.Snapshot()
	require.NotNil(t, snap.User)
	assert.False(t, snap.User.DarkMode, "the local flag stays untouched on failure")
}

func TestCapabilitiesFollowSession(t *testing.T) {
	f := newSessionFixture(t)
	f.api.FetchFunc = func(context.Context, string) (domainsession.UserProfile, error) {
		p := portalapi.DefaultProfile()
		p.Role = domainsession.RoleManagement
		return p, nil
	}

	assert.Equal(t, rbac.CapabilitySet{}, f.store.Capabilities(), "no capabilities before resolution")

	require.NoError(t, f.store.Login(context.Background(), "test.user", "secret"))
	caps := f.store.Capabilities()
	assert.True(t, caps.ActsAsManagement)
	assert.True(t, caps.ActsAsAnyStaff)

	f.store.Logout(context.Background())
	assert.Equal(t, rbac.CapabilitySet{}, f.store.Capabilities())
}
