package guard

// Package guard gates protected views by the current session and its derived
// capabilities, and resolves paths through the static route table. Decisions
// are pure functions of the inputs and are recomputed on every evaluation.

import (
	"github.com/escolaweb/portal-core/internal/domain/nav"
	"github.com/escolaweb/portal-core/internal/domain/rbac"
	domainsession "github.com/escolaweb/portal-core/internal/domain/session"
	"github.com/escolaweb/portal-core/internal/observability/statsd"
)

// State is the outcome of a guard evaluation.
type State int

const (
	// StateLoading renders a neutral placeholder; never the wrapped view.
	StateLoading State = iota
	// StateRedirectLogin sends the visitor to the login route.
	StateRedirectLogin
	// StateRedirectDashboard sends an authenticated-but-unqualified visitor
	// to the default landing route.
	StateRedirectDashboard
	// StateRender renders the wrapped view unchanged.
	StateRender
)

// Decision carries the guard outcome. Redirects always replace history so the
// back button cannot loop into the guarded page.
type Decision struct {
	State          State
	RedirectPath   string
	ReplaceHistory bool
}

// Evaluate gates a single protected view. requiredCapabilities may be empty,
// meaning any authenticated role qualifies.
func Evaluate(required []rbac.Capability, snap domainsession.Snapshot) Decision {
	switch snap.Status {
	case domainsession.StatusAuthenticated:
		if len(required) > 0 && !rbac.DeriveSnapshot(snap).HasAny(required) {
			return Decision{State: StateRedirectDashboard, RedirectPath: nav.PathDashboard, ReplaceHistory: true}
		}
		return Decision{State: StateRender}
	case domainsession.StatusAnonymous:
		return Decision{State: StateRedirectLogin, RedirectPath: nav.PathLogin, ReplaceHistory: true}
	default:
		// Unknown behaves like Loading: initialization has not resolved yet,
		// and rendering or redirecting now would flash the wrong content.
		return Decision{State: StateLoading}
	}
}

// SessionSource provides the current session snapshot; *service.SessionStore
// satisfies it.
type SessionSource interface {
	Snapshot() domainsession.Snapshot
}

// Router resolves concrete paths against the route table, applying the guard
// to every non-public entry.
type Router struct {
	sessions SessionSource
	metrics  statsd.Sink
}

// NewRouter constructs a Router. metrics may be nil.
func NewRouter(sessions SessionSource, metrics statsd.Sink) *Router {
	return &Router{sessions: sessions, metrics: metrics}
}

// ResolutionKind classifies a route resolution.
type ResolutionKind int

const (
	ResolveRender ResolutionKind = iota
	ResolveLoading
	ResolveRedirect
)

// Resolution is the outcome of resolving a path for the current session.
type Resolution struct {
	Kind           ResolutionKind
	View           string
	Params         map[string]string
	RedirectPath   string
	ReplaceHistory bool
}

// Resolve maps a path to the view to render or the redirect to perform.
func (r *Router) Resolve(path string) Resolution {
	rd, params, ok := nav.Match(path)
	if !ok {
		return Resolution{Kind: ResolveRender, View: rd.View}
	}

	if rd.RedirectTo != "" {
		return Resolution{Kind: ResolveRedirect, RedirectPath: rd.RedirectTo}
	}
	if rd.Public {
		return Resolution{Kind: ResolveRender, View: rd.View, Params: params}
	}

	decision := Evaluate(rd.Required, r.sessions.Snapshot())
	switch decision.State {
	case StateRender:
		return Resolution{Kind: ResolveRender, View: rd.View, Params: params}
	case StateLoading:
		return Resolution{Kind: ResolveLoading}
	case StateRedirectLogin:
		r.count("guard.redirect", "to", "login")
		return Resolution{Kind: ResolveRedirect, RedirectPath: decision.RedirectPath, ReplaceHistory: decision.ReplaceHistory}
	default:
		r.count("guard.redirect", "to", "dashboard")
		return Resolution{Kind: ResolveRedirect, RedirectPath: decision.RedirectPath, ReplaceHistory: decision.ReplaceHistory}
	}
}

func (r *Router) count(name, tagKey, tagVal string) {
	if r.metrics == nil {
		return
	}
	r.metrics.Count(name, 1, map[string]string{tagKey: tagVal})
}
