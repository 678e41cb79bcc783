package guard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/apiclient/clientfakes"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/guard"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session/persistence"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session/persistence/adapterfakes"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/users"
)

func storeWithUser(t *testing.T, user *users.User) *session.Store {
	t.Helper()

	adapter := adapterfakes.New()
	if user != nil {
		adapter.Seed(&persistence.Record{User: user, AccessToken: "opaque", IsAuthenticated: true})
	}
	store, err := session.New(adapter, clientfakes.New())
	require.NoError(t, err)
	return store
}

func protected(t *testing.T, store *session.Store, options ...guard.GuardOption) *httptest.Server {
	t.Helper()

	var body http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("protected"))
	})
	srv := httptest.NewServer(guard.Middleware(store, options...)(body))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// TestMiddleware_UnauthenticatedRedirectsToLogin
func TestMiddleware_UnauthenticatedRedirectsToLogin(t *testing.T) {
	store := storeWithUser(t, nil)
	srv := protected(t, store, guard.RequireRole(users.RoleManager))

	resp := get(t, srv.URL)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

// TestMiddleware_MatchingRolePassesThrough
func TestMiddleware_MatchingRolePassesThrough(t *testing.T) {
	store := storeWithUser(t, &users.User{ID: "u", Username: "meera", Role: users.RoleManager, Active: true})
	srv := protected(t, store, guard.RequireRole(users.RoleManager))

	resp := get(t, srv.URL)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestMiddleware_RoleMismatchRedirectsToOwnLanding
func TestMiddleware_RoleMismatchRedirectsToOwnLanding(t *testing.T) {
	store := storeWithUser(t, &users.User{ID: "u", Username: "tina", Role: users.RoleTeleCalling, Active: true})
	srv := protected(t, store, guard.RequireRole(users.RoleManager))

	resp := get(t, srv.URL)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/telecaller/dashboard", resp.Header.Get("Location"))
}

// TestRequireAnyRole_StableUnderConcurrentSessionChanges: the handler
// must work from a single session snapshot, so a logout or profile
// update landing mid-request can never leave it without a user.
func TestRequireAnyRole_StableUnderConcurrentSessionChanges(t *testing.T) {
	user := &users.User{ID: "u", Username: "ivan", Role: users.RoleInhouseSales, Active: true}
	store := storeWithUser(t, user)

	var body http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sales"))
	})
	handler := guard.RequireAnyRole(store, users.RoleSalesTeam, users.RoleInhouseSales)(body)

	stop := make(chan struct{})
	toggled := make(chan struct{})
	go func() {
		defer close(toggled)
		for {
			select {
			case <-stop:
				return
			default:
				store.SetUser(nil)
				store.SetUser(user)
			}
		}
	}()

	for i := 0; i < 500; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Contains(t, []int{http.StatusOK, http.StatusSeeOther}, rec.Code)
	}

	close(stop)
	<-toggled
}

// TestRequireAnyRole_SharedDashboard
func TestRequireAnyRole_SharedDashboard(t *testing.T) {
	var body http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sales"))
	})

	inhouse := storeWithUser(t, &users.User{ID: "u", Username: "ivan", Role: users.RoleInhouseSales, Active: true})
	srv := httptest.NewServer(guard.RequireAnyRole(inhouse, users.RoleSalesTeam, users.RoleInhouseSales)(body))
	t.Cleanup(srv.Close)

	resp := get(t, srv.URL)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	marketing := storeWithUser(t, &users.User{ID: "u", Username: "mia", Role: users.RoleMarketing, Active: true})
	srv2 := httptest.NewServer(guard.RequireAnyRole(marketing, users.RoleSalesTeam, users.RoleInhouseSales)(body))
	t.Cleanup(srv2.Close)

	resp2 := get(t, srv2.URL)
	require.Equal(t, http.StatusSeeOther, resp2.StatusCode)
	require.Equal(t, "/marketing/dashboard", resp2.Header.Get("Location"))
}
