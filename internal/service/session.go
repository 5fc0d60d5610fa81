package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/escolaweb/portal-core/internal/domain/nav"
	"github.com/escolaweb/portal-core/internal/domain/rbac"
	domainsession "github.com/escolaweb/portal-core/internal/domain/session"
	apperrors "github.com/escolaweb/portal-core/internal/errors"
	"github.com/escolaweb/portal-core/internal/observability/statsd"
	"github.com/escolaweb/portal-core/internal/ports"
)

// Storage keys for the persisted token pair. The profile is never persisted,
// only re-derived from the backend.
const (
	keyAccessToken  = "session.access_token"
	keyRefreshToken = "session.refresh_token"
)

const genericLoginError = "unable to sign in, please try again"

// SessionStoreOptions groups dependencies for SessionStore.
type SessionStoreOptions struct {
	API      ports.AuthAPI
	Storage  ports.KeyValue
	Nav      ports.Navigator
	Notifier ports.Notifier
	Logger   *slog.Logger
	Metrics  statsd.Sink      // optional
	Limiter  *rate.Limiter    // optional client-side login throttle
	Now      func() time.Time // optional, defaults to time.Now
}

// SessionStore is the single source of truth for "who is logged in".
//
// All mutations are serialized by an internal mutex; the UI event loop the
// original design assumed does not exist in a concurrent Go host. Each
// Initialize/Login cycle is tagged with a monotonic id and completions that
// are no longer the latest are discarded, so a stale network response can
// never clobber a newer state.
type SessionStore struct {
	api      ports.AuthAPI
	storage  ports.KeyValue
	nav      ports.Navigator
	notifier ports.Notifier
	logger   *slog.Logger
	metrics  statsd.Sink
	limiter  *rate.Limiter
	now      func() time.Time

	init singleflight.Group

	mu      sync.Mutex
	status  domainsession.Status
	user    *domainsession.UserProfile
	tokens  ports.TokenPair
	cycleID uint64

	subsMu  sync.Mutex
	subs    []*subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(domainsession.Snapshot)
}

// NewSessionStore constructs a SessionStore in the Unknown state.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		api:      opts.API,
		storage:  opts.Storage,
		nav:      opts.Nav,
		notifier: opts.Notifier,
		logger:   logger,
		metrics:  opts.Metrics,
		limiter:  opts.Limiter,
		now:      now,
		status:   domainsession.StatusUnknown,
	}
}

// Snapshot returns the current immutable session view.
func (s *SessionStore) Snapshot() domainsession.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Capabilities derives the capability set for the current session.
func (s *SessionStore) Capabilities() rbac.CapabilitySet {
	return rbac.DeriveSnapshot(s.Snapshot())
}

// Subscribe registers fn for synchronous invocation after every state change.
// The returned function removes the subscription.
func (s *SessionStore) Subscribe(fn func(domainsession.Snapshot)) func() {
	s.subsMu.Lock()
	s.nextSub++
	sub := &subscriber{id: s.nextSub, fn: fn}
	s.subs = append(s.subs, sub)
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, candidate := range s.subs {
			if candidate.id == sub.id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Initialize attempts silent re-authentication from the persisted token.
// Concurrent calls are deduplicated; every code path resolves the status to
// Authenticated or Anonymous. Initialization failures are an expected
// steady-state condition (expired session) and are never surfaced to the user.
func (s *SessionStore) Initialize(ctx context.Context) {
	s.init.Do("initialize", func() (any, error) {
		s.initialize(ctx)
		return nil, nil
	})
}

func (s *SessionStore) initialize(ctx context.Context) {
	token, err := s.storage.Get(ctx, keyAccessToken)
	if err != nil {
		if err != ports.ErrKeyNotFound {
			s.logger.Warn("session: reading persisted token failed", "error", err)
		}
		s.resolveAnonymous(s.beginCycle(), false)
		s.count("session.init", "outcome", "anonymous")
		return
	}

	if s.tokenExpired(token) {
		// Skip the round trip for a token that cannot possibly be accepted.
		s.resolveAnonymous(s.beginCycle(), true)
		s.count("session.init", "outcome", "expired")
		return
	}

	cycle := s.beginCycle()

	profile, err := s.api.FetchCurrentUser(ctx, token)
	if err != nil {
		// Stale or rejected token: silent downgrade plus purge.
		s.logger.Info("session: silent re-authentication failed", "error", err)
		s.resolveAnonymous(cycle, true)
		s.count("session.init", "outcome", "rejected")
		return
	}

	refresh, err := s.storage.Get(ctx, keyRefreshToken)
	if err != nil && err != ports.ErrKeyNotFound {
		s.logger.Warn("session: reading refresh token failed", "error", err)
	}

	s.resolveAuthenticated(cycle, ports.TokenPair{AccessToken: token, RefreshToken: refresh}, profile)
	s.count("session.init", "outcome", "authenticated")
}

// Login authenticates with the backend, persists the token pair, loads the
// profile, and navigates to the dashboard. On failure the prior state is left
// untouched and the error message is surfaced on the notification channel.
func (s *SessionStore) Login(ctx context.Context, identifier, secret string) error {
	if s.limiter != nil && !s.limiter.Allow() {
		err := apperrors.Validation("too many sign-in attempts, wait a moment")
		s.notify(ports.NotifyError, err.Message)
		return err
	}

	prevStatus, prevUser := s.currentState()
	cycle := s.beginCycle()
	start := s.now()

	fail := func(err error) error {
		s.restoreState(cycle, prevStatus, prevUser)
		msg := apperrors.Message(err)
		if msg == "" {
			msg = genericLoginError
		}
		s.notify(ports.NotifyError, msg)
		s.count("session.login", "outcome", "failed")
		return err
	}

	pair, err := s.api.Login(ctx, ports.Credentials{Identifier: identifier, Secret: secret})
	if err != nil {
		return fail(err)
	}

	if err := s.persistTokens(ctx, pair); err != nil {
		return fail(err)
	}

	profile, err := s.api.FetchCurrentUser(ctx, pair.AccessToken)
	if err != nil {
		s.purgeTokens(ctx)
		return fail(err)
	}

	if done := s.resolveAuthenticated(cycle, pair, profile); !done {
		// A newer cycle (e.g. logout) superseded this login; drop it.
		return nil
	}

	if s.metrics != nil {
		s.metrics.Timing("session.login.duration", s.now().Sub(start), nil)
	}
	s.count("session.login", "outcome", "ok")
	if s.nav != nil {
		s.nav.GoTo(nav.PathDashboard, false)
	}
	return nil
}

// Logout purges persisted tokens, clears the profile, and navigates to the
// login route. Safe to call from any state, including already-Anonymous, and
// idempotent under retry.
func (s *SessionStore) Logout(ctx context.Context) {
	// Starting a new cycle invalidates any in-flight Initialize or Login.
	s.beginCycleWith(domainsession.StatusAnonymous)
	s.purgeTokens(ctx)

	s.count("session.logout", "outcome", "ok")
	if s.nav != nil {
		s.nav.GoTo(nav.PathLogin, true)
	}
}

// PatchUser shallow-merges locally-known-correct fields into the current
// profile without a network round trip. No-op when no user is present.
func (s *SessionStore) PatchUser(patch domainsession.UserPatch) {
	if patch.IsZero() {
		return
	}
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	updated := patch.Apply(*s.user)
	s.user = &updated
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// ToggleRemoteDarkMode flips the account-level dark-mode flag on the server
// and patches the local profile with the result. This is independent of the
// device-local theme preference; the two signals coexist by design.
func (s *SessionStore) ToggleRemoteDarkMode(ctx context.Context) error {
	s.mu.Lock()
	token := s.tokens.AccessToken
	s.mu.Unlock()

	if token == "" {
		err := apperrors.Unauthorized("not signed in")
		s.notify(ports.NotifyError, err.Message)
		return err
	}

	dark, err := s.api.ToggleServerDarkMode(ctx, token)
	if err != nil {
		msg := apperrors.Message(err)
		if msg == "" {
			msg = "could not update the display preference"
		}
		s.notify(ports.NotifyError, msg)
		return err
	}

	s.PatchUser(domainsession.UserPatch{DarkMode: &dark})
	return nil
}

// --- state machine internals ---

func (s *SessionStore) snapshotLocked() domainsession.Snapshot {
	var user *domainsession.UserProfile
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return domainsession.Snapshot{Status: s.status, User: user}
}

func (s *SessionStore) currentState() (domainsession.Status, *domainsession.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var user *domainsession.UserProfile
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return s.status, user
}

// beginCycle starts a Loading phase and returns the cycle id used to detect
// superseded completions.
func (s *SessionStore) beginCycle() uint64 {
	return s.beginCycleWith(domainsession.StatusLoading)
}

func (s *SessionStore) beginCycleWith(status domainsession.Status) uint64 {
	s.mu.Lock()
	s.cycleID++
	id := s.cycleID
	s.status = status
	if status != domainsession.StatusAuthenticated {
		s.user = nil
		if status == domainsession.StatusAnonymous {
			s.tokens = ports.TokenPair{}
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return id
}

func (s *SessionStore) resolveAuthenticated(cycle uint64, pair ports.TokenPair, profile domainsession.UserProfile) bool {
	s.mu.Lock()
	if cycle != s.cycleID {
		s.mu.Unlock()
		return false
	}
	s.status = domainsession.StatusAuthenticated
	s.user = &profile
	s.tokens = pair
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return true
}

func (s *SessionStore) resolveAnonymous(cycle uint64, purge bool) {
	s.mu.Lock()
	if cycle != s.cycleID {
		// Superseded by a newer cycle; its tokens are not ours to purge.
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	if purge {
		s.purgeTokens(context.Background())
	}
	s.mu.Lock()
	if cycle != s.cycleID {
		s.mu.Unlock()
		return
	}
	s.status = domainsession.StatusAnonymous
	s.user = nil
	s.tokens = ports.TokenPair{}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

func (s *SessionStore) restoreState(cycle uint64, status domainsession.Status, user *domainsession.UserProfile) {
	s.mu.Lock()
	if cycle != s.cycleID {
		s.mu.Unlock()
		return
	}
	s.status = status
	s.user = user
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

func (s *SessionStore) persistTokens(ctx context.Context, pair ports.TokenPair) error {
	if err := s.storage.Set(ctx, keyAccessToken, pair.AccessToken); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, genericLoginError)
	}
	if err := s.storage.Set(ctx, keyRefreshToken, pair.RefreshToken); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, genericLoginError)
	}
	return nil
}

func (s *SessionStore) purgeTokens(ctx context.Context) {
	if err := s.storage.Delete(ctx, keyAccessToken); err != nil {
		s.logger.Warn("session: purging access token failed", "error", err)
	}
	if err := s.storage.Delete(ctx, keyRefreshToken); err != nil {
		s.logger.Warn("session: purging refresh token failed", "error", err)
	}
}

// tokenExpired peeks at the exp claim of a JWT access token without verifying
// the signature. Opaque or unparsable tokens are conservatively treated as
// live and handed to the profile fetch.
func (s *SessionStore) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.now())
}

func (s *SessionStore) publish(snap domainsession.Snapshot) {
	s.subsMu.Lock()
	subs := make([]*subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

func (s *SessionStore) notify(kind ports.NotifyKind, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(kind, message)
}

func (s *SessionStore) count(name, tagKey, tagVal string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Count(name, 1, map[string]string{tagKey: tagVal})
}
