// Package guard decides, for a protected view, whether to render it,
// show a loading placeholder, or redirect. Decisions are pure functions
// of a session snapshot; the side effect (navigation) stays with the
// caller, either through Watch or through the HTTP middleware.
package guard

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/internal/utils"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/routes"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/users"
)

// Action is what the guard wants done with the protected view.
type Action int

const (
	// ActionWait renders a neutral loading placeholder. No navigation
	// may happen: before hydration or while a login is in flight there
	// is not enough information to redirect anywhere.
	ActionWait Action = iota

	// ActionRender shows the protected content.
	ActionRender

	// ActionRedirect navigates to Decision.RedirectTo.
	ActionRedirect
)

// Decision is the guard's verdict for one session snapshot.
type Decision struct {
	Action     Action
	RedirectTo string
}

// Evaluate applies the access rules to a snapshot. requiredRole may be
// nil, meaning any authenticated user is allowed. The order of the
// checks is load-bearing: hydration first, so no redirect can fire off
// stale pre-restore state, then loading, then authentication, then role.
func Evaluate(state session.State, requiredRole *users.Role) Decision {
	if !state.IsHydrated {
		return Decision{Action: ActionWait}
	}
	if state.IsLoading {
		return Decision{Action: ActionWait}
	}
	if state.User == nil || !state.IsAuthenticated {
		// IsAuthenticated also guards against a profile snapshot left
		// behind without tokens; that session cannot call the backend,
		// so it does not get past the gate either.
		return Decision{Action: ActionRedirect, RedirectTo: routes.RouteLogin}
	}
	if requiredRole != nil && state.User.Role != utils.Value(requiredRole) {
		// Wrong role: send the user to their own landing page, not the
		// one they failed to reach.
		return Decision{Action: ActionRedirect, RedirectTo: routes.ForRole(state.User.Role)}
	}
	return Decision{Action: ActionRender}
}

// Guard wraps one protected view over a session store.
type Guard struct {
	store        *session.Store
	requiredRole *users.Role
}

// GuardOption defines a function type to modify the Guard instance.
type GuardOption func(*Guard)

// RequireRole restricts the guarded view to a single role.
func RequireRole(role users.Role) GuardOption {
	return func(g *Guard) {
		g.requiredRole = utils.Ptr(role)
	}
}

func New(store *session.Store, options ...GuardOption) *Guard {
	g := &Guard{store: store}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Evaluate returns the decision for the store's current state.
func (g *Guard) Evaluate() Decision {
	return Evaluate(g.store.State(), g.requiredRole)
}

// Watch re-evaluates on every store change and calls navigate whenever
// the decision is a redirect to somewhere new. It blocks until ctx is
// done; run it in its own goroutine.
func (g *Guard) Watch(ctx context.Context, navigate func(path string)) {
	changes, cancel := g.store.Subscribe()
	defer cancel()

	lastTarget := ""
	apply := func() {
		decision := g.Evaluate()
		if decision.Action != ActionRedirect {
			lastTarget = ""
			return
		}
		if decision.RedirectTo == lastTarget {
			return
		}
		lastTarget = decision.RedirectTo
		log.Debug().Str("target", decision.RedirectTo).Msg("guard redirect")
		navigate(decision.RedirectTo)
	}

	apply()
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			apply()
		}
	}
}
