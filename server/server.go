// Package server provides the dashboard shell: the login flow wired to
// the session store, and one guarded landing route per role. The CRUD
// screens behind those landings are separate components and mount their
// own routers; this package only decides who gets through.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/guard"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/internal/config"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/routes"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/users"
)

type Server struct {
	router *mux.Router
	config config.Config
	store  *session.Store
}

func New(cfg config.Config, store *session.Store) (*Server, error) {
	if store == nil {
		return nil, errors.New("[server.New] session store is required")
	}

	s := &Server{
		router: mux.NewRouter(),
		config: cfg,
		store:  store,
	}
	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	s.router.HandleFunc(routes.RouteLogin, s.LoginPageHandler).Methods(http.MethodGet)
	s.router.HandleFunc(routes.RouteAuthLogin, s.LoginHandler).Methods(http.MethodPost)
	s.router.HandleFunc(routes.RouteAuthLogout, s.LogoutHandler).Methods(http.MethodPost, http.MethodGet)

	s.guardedDashboard(routes.RoutePlatformDashboard, users.RolePlatformAdmin)
	s.guardedDashboard(routes.RouteBusinessAdminDashboard, users.RoleBusinessAdmin)
	s.guardedDashboard(routes.RouteManagerDashboard, users.RoleManager)
	s.guardedDashboard(routes.RouteMarketingDashboard, users.RoleMarketing)
	s.guardedDashboard(routes.RouteTelecallerDashboard, users.RoleTeleCalling)

	// Sales is shared by field and in-house sales, and is also the
	// fail-open landing for unknown roles.
	sales := s.router.PathPrefix(routes.RouteSalesDashboard).Subrouter()
	sales.Use(guard.RequireAnyRole(s.store,
		users.RoleSalesTeam, users.RoleInhouseSales, users.RoleUnknown))
	sales.HandleFunc("", s.DashboardHandler("Sales")).Methods(http.MethodGet)

	s.router.HandleFunc("/", s.RootHandler).Methods(http.MethodGet)
}

func (s *Server) guardedDashboard(path string, role users.Role) {
	sub := s.router.PathPrefix(path).Subrouter()
	sub.Use(guard.Middleware(s.store, guard.RequireRole(role)))
	sub.HandleFunc("", s.DashboardHandler(string(role))).Methods(http.MethodGet)
}
