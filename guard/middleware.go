package guard

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/routes"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/users"
)

// Middleware adapts the guard to HTTP routes. Each request is evaluated
// against the current session snapshot: renders pass through, redirects
// become 303s, and waits answer with a retryable placeholder so clients
// poll instead of being bounced somewhere wrong.
func Middleware(store *session.Store, options ...GuardOption) mux.MiddlewareFunc {
	g := New(store, options...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := g.Evaluate()
			switch decision.Action {
			case ActionRender:
				next.ServeHTTP(w, r)
			case ActionRedirect:
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
			default:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "loading", http.StatusServiceUnavailable)
			}
		})
	}
}

// RequireAnyRole is a convenience for routes shared by several roles: it
// behaves like Middleware with no role requirement when roles is empty,
// otherwise any listed role may pass and everyone else is sent to their
// own landing page.
func RequireAnyRole(store *session.Store, roles ...users.Role) mux.MiddlewareFunc {
	if len(roles) == 1 {
		return Middleware(store, RequireRole(roles[0]))
	}
	allowed := make(map[users.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// One snapshot per request: re-reading the store after the
			// base decision could observe a concurrent logout and leave
			// no user to take the role from.
			state := store.State()
			decision := Evaluate(state, nil)
			if decision.Action == ActionRender && len(allowed) > 0 {
				if _, ok := allowed[state.User.Role]; !ok {
					decision = Decision{Action: ActionRedirect, RedirectTo: routes.ForRole(state.User.Role)}
				}
			}
			switch decision.Action {
			case ActionRender:
				next.ServeHTTP(w, r)
			case ActionRedirect:
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
			default:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "loading", http.StatusServiceUnavailable)
			}
		})
	}
}
