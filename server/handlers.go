package server

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/routes"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session"
)

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.AppName}} - Sign in</title></head>
<body>
	<h1>Sign in</h1>
	{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
	<form method="post" action="{{.LoginAction}}">
		<input type="text" name="username" placeholder="Username" autofocus>
		<input type="password" name="password" placeholder="Password">
		<button type="submit">Sign in</button>
	</form>
</body>
</html>`))

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName     string
	LoginAction string
	Error       string
}

// LoginPageHandler renders the sign-in form. An already authenticated
// user is sent straight to their landing page instead.
func (s *Server) LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	state := s.store.State()
	if state.IsAuthenticated {
		http.Redirect(w, r, routes.ForRole(state.User.Role), http.StatusSeeOther)
		return
	}

	data := LoginPageData{
		AppName:     s.config.GetAppName(),
		LoginAction: routes.RouteAuthLogin,
		Error:       state.Error,
	}
	if err := loginPage.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("rendering login page")
	}
}

// LoginHandler runs the login attempt and dispatches on the outcome:
// success goes to the role's landing page, failure back to the form with
// the store's error message, and a re-entrant submit just returns to the
// form while the first attempt finishes.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")

	ok, err := s.store.Login(r.Context(), username, password)
	if err == session.ErrLoginInFlight {
		http.Redirect(w, r, routes.RouteLogin, http.StatusSeeOther)
		return
	}
	if !ok {
		http.Redirect(w, r, routes.RouteLogin, http.StatusSeeOther)
		return
	}

	state := s.store.State()
	http.Redirect(w, r, routes.ForRole(state.User.Role), http.StatusSeeOther)
}

// LogoutHandler resets the session and returns to the sign-in form.
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	s.store.Logout(r.Context())
	http.Redirect(w, r, routes.RouteLogin, http.StatusSeeOther)
}

// DashboardHandler is a stand-in for a role's dashboard. The real
// screens (customers, orders, products, tickets) mount here.
func (s *Server) DashboardHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := s.store.State()
		display := ""
		if state.User != nil {
			display = state.User.DisplayName()
		}
		fmt.Fprintf(w, "%s dashboard - signed in as %s\n", name, display)
	}
}

// RootHandler forwards to the login page or to the user's landing page.
func (s *Server) RootHandler(w http.ResponseWriter, r *http.Request) {
	state := s.store.State()
	if state.IsAuthenticated {
		http.Redirect(w, r, routes.ForRole(state.User.Role), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, routes.RouteLogin, http.StatusSeeOther)
}
