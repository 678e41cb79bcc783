package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/apiclient"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/apiclient/clientfakes"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/routes"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session/persistence"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session/persistence/adapterfakes"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/users"
)

const (
	testUsername = "rara"
	testPassword = "password123"
)

// testFixture holds all test dependencies
type testFixture struct {
	adapter *adapterfakes.FakeAdapter
	client  *clientfakes.FakeClient
	store   *session.Store
}

// setupTestFixture creates a store over fresh fakes; buildStore is split
// out so tests can seed persisted state first.
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		adapter: adapterfakes.New(),
		client:  clientfakes.New(),
	}
	f.buildStore(t)
	return f
}

func (f *testFixture) buildStore(t *testing.T, options ...session.StoreOption) {
	t.Helper()

	store, err := session.New(f.adapter, f.client, options...)
	require.NoError(t, err)
	f.store = store
}

func (f *testFixture) seedBusinessAdmin(t *testing.T) users.User {
	t.Helper()

	user := users.User{
		ID:        "user-1",
		Username:  testUsername,
		Email:     "rara@example.com",
		FirstName: "Rara",
		Role:      users.RoleBusinessAdmin,
		Active:    true,
		StoreID:   "store-1",
	}
	require.NoError(t, f.client.SeedUser(user, testPassword))
	return user
}

// requireInvariant asserts IsAuthenticated == (user present && token present).
func requireInvariant(t *testing.T, state session.State) {
	t.Helper()
	require.Equal(t, state.User != nil && state.AccessToken != "", state.IsAuthenticated)
}

// TestNew_MissingDependencies tests constructor validation
func TestNew_MissingDependencies(t *testing.T) {
	_, err := session.New(nil, clientfakes.New())
	require.Error(t, err)

	_, err = session.New(adapterfakes.New(), nil)
	require.Error(t, err)
}

// TestNew_FreshProcessStartsHydratedAndEmpty covers the no-record start
func TestNew_FreshProcessStartsHydratedAndEmpty(t *testing.T) {
	f := setupTestFixture(t)

	state := f.store.State()
	require.True(t, state.IsHydrated)
	require.False(t, state.IsAuthenticated)
	require.Nil(t, state.User)
	require.False(t, state.IsLoading)
	require.Empty(t, state.Error)
	requireInvariant(t, state)
}

// TestLogin_Success checks the full success path and persistence
func TestLogin_Success(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, ok)

	state := f.store.State()
	require.True(t, state.IsAuthenticated)
	require.False(t, state.IsLoading)
	require.Empty(t, state.Error)
	require.NotNil(t, state.User)
	require.Equal(t, users.RoleBusinessAdmin, state.User.Role)
	require.NotEmpty(t, state.AccessToken)
	requireInvariant(t, state)

	// Post-login dispatch goes through the shared role table.
	require.Equal(t, "/business-admin/dashboard", routes.ForRole(state.User.Role))

	stored := f.adapter.Stored()
	require.NotNil(t, stored)
	require.True(t, stored.IsAuthenticated)
	require.Equal(t, state.AccessToken, stored.AccessToken)
	require.Equal(t, testUsername, stored.User.Username)
}

// TestLogin_InvalidPassword checks the credential-failure path
func TestLogin_InvalidPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)

	ok, err := f.store.Login(context.Background(), testUsername, "wrong")
	require.NoError(t, err)
	require.False(t, ok)

	state := f.store.State()
	require.False(t, state.IsAuthenticated)
	require.False(t, state.IsLoading)
	require.NotEmpty(t, state.Error)
	requireInvariant(t, state)
}

// TestLogin_TransportError folds a hard client error into the state
func TestLogin_TransportError(t *testing.T) {
	f := setupTestFixture(t)
	f.client.LoginErr = context.DeadlineExceeded

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.False(t, ok)

	state := f.store.State()
	require.False(t, state.IsAuthenticated)
	require.NotEmpty(t, state.Error)
	requireInvariant(t, state)
}

// TestLogin_MalformedResponse treats success-without-token as a failure
func TestLogin_MalformedResponse(t *testing.T) {
	f := setupTestFixture(t)
	f.buildStoreWithClient(t, malformedClient{})

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.False(t, ok)

	state := f.store.State()
	require.False(t, state.IsAuthenticated)
	require.NotEmpty(t, state.Error)
	requireInvariant(t, state)
}

// TestLogin_FailedAttemptKeepsExistingSession covers the decided open
// question: a failed re-login leaves the current session untouched.
func TestLogin_FailedAttemptKeepsExistingSession(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, ok)
	token := f.store.State().AccessToken

	ok, err = f.store.Login(context.Background(), testUsername, "wrong")
	require.NoError(t, err)
	require.False(t, ok)

	state := f.store.State()
	require.True(t, state.IsAuthenticated)
	require.Equal(t, token, state.AccessToken)
	require.NotEmpty(t, state.Error)
	requireInvariant(t, state)
}

// TestLogin_ClearsPreviousError ensures a new attempt starts clean
func TestLogin_ClearsPreviousError(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)

	_, err := f.store.Login(context.Background(), testUsername, "wrong")
	require.NoError(t, err)
	require.NotEmpty(t, f.store.State().Error)

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, f.store.State().Error)
}

// TestLogin_ReentrantAttemptRejected enforces one login in flight
func TestLogin_ReentrantAttemptRejected(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)
	f.client.Gate = make(chan struct{})

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		ok, err := f.store.Login(context.Background(), testUsername, testPassword)
		require.NoError(t, err)
		require.True(t, ok)
	}()

	waitForLoading(t, f.store)

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.ErrorIs(t, err, session.ErrLoginInFlight)
	require.False(t, ok)

	close(f.client.Gate)
	<-firstDone
	require.Equal(t, 1, f.client.LoginCalls)
}

// TestLogin_StaleResultAfterLogoutDiscarded: a success that lands after
// logout must not resurrect the session.
func TestLogin_StaleResultAfterLogoutDiscarded(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)
	f.client.Gate = make(chan struct{})

	loginDone := make(chan struct{})
	go func() {
		defer close(loginDone)
		ok, err := f.store.Login(context.Background(), testUsername, testPassword)
		require.NoError(t, err)
		require.False(t, ok, "stale login result must be discarded")
	}()

	waitForLoading(t, f.store)
	f.store.Logout(context.Background())

	close(f.client.Gate)
	<-loginDone

	state := f.store.State()
	require.False(t, state.IsAuthenticated)
	require.Nil(t, state.User)
	requireInvariant(t, state)
	require.Nil(t, f.adapter.Stored())
}

// TestLogout_ResetsAndPersists checks the unconditional local reset
func TestLogout_ResetsAndPersists(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, ok)

	f.store.Logout(context.Background())

	state := f.store.State()
	require.False(t, state.IsAuthenticated)
	require.Nil(t, state.User)
	require.Empty(t, state.AccessToken)
	require.Empty(t, state.Error)
	require.True(t, state.IsHydrated)
	requireInvariant(t, state)
	require.Nil(t, f.adapter.Stored())
	require.Equal(t, 1, f.client.LogoutCalls)
}

// TestLogout_Idempotent: logging out twice equals logging out once
func TestLogout_Idempotent(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, ok)

	f.store.Logout(context.Background())
	first := f.store.State()
	f.store.Logout(context.Background())
	second := f.store.State()

	require.Equal(t, first, second)
	requireInvariant(t, second)
}

// TestRehydration_RoundTrip: state persisted by one store is restored
// identically by the next.
func TestRehydration_RoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, ok)
	before := f.store.State()

	f.buildStore(t) // "process restart" over the same adapter

	after := f.store.State()
	require.True(t, after.IsHydrated)
	require.True(t, after.IsAuthenticated)
	require.Equal(t, before.AccessToken, after.AccessToken)
	require.Equal(t, before.RefreshToken, after.RefreshToken)
	require.Equal(t, *before.User, *after.User)
	require.False(t, after.IsLoading)
	require.Empty(t, after.Error)
	requireInvariant(t, after)
}

// TestRehydration_CorruptRecordFailsOpen: isAuthenticated without a user
// must yield a clean unauthenticated start.
func TestRehydration_CorruptRecordFailsOpen(t *testing.T) {
	f := &testFixture{adapter: adapterfakes.New(), client: clientfakes.New()}
	f.adapter.SeedRaw([]byte(`{"user":null,"token":"t","isAuthenticated":true}`))
	f.buildStore(t)

	state := f.store.State()
	require.True(t, state.IsHydrated)
	require.False(t, state.IsAuthenticated)
	require.Nil(t, state.User)
	requireInvariant(t, state)
}

// TestRehydration_UnreadableStorageFailsOpen covers adapter read errors
func TestRehydration_UnreadableStorageFailsOpen(t *testing.T) {
	f := &testFixture{adapter: adapterfakes.New(), client: clientfakes.New()}
	f.adapter.ReadErr = context.DeadlineExceeded
	f.buildStore(t)

	state := f.store.State()
	require.True(t, state.IsHydrated)
	require.False(t, state.IsAuthenticated)
}

// TestRehydration_ExpiredJWTDiscarded: a persisted JWT past its exp is
// treated as no record; opaque tokens are restored untouched.
func TestRehydration_ExpiredJWTDiscarded(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	nowFunc := session.WithNowTime(func() time.Time { return now })
	expired := signedJWT(t, now.Add(-time.Hour))
	fresh := signedJWT(t, now.Add(time.Hour))
	user := &users.User{ID: "user-1", Username: testUsername, Role: users.RoleManager}

	f := &testFixture{adapter: adapterfakes.New(), client: clientfakes.New()}
	f.adapter.Seed(&persistence.Record{User: user, AccessToken: expired, IsAuthenticated: true})
	f.buildStore(t, nowFunc)
	require.False(t, f.store.State().IsAuthenticated)

	f.adapter.Seed(&persistence.Record{User: user, AccessToken: fresh, IsAuthenticated: true})
	f.buildStore(t, nowFunc)
	require.True(t, f.store.State().IsAuthenticated)

	f.adapter.Seed(&persistence.Record{User: user, AccessToken: "opaque-token", IsAuthenticated: true})
	f.buildStore(t, nowFunc)
	require.True(t, f.store.State().IsAuthenticated)
}

// TestSetUser_ReplacesIdentityWithoutTouchingTokens
func TestSetUser_ReplacesIdentityWithoutTouchingTokens(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, ok)
	token := f.store.State().AccessToken

	updated := &users.User{ID: "user-1", Username: testUsername, FirstName: "Renamed", Role: users.RoleBusinessAdmin, Active: true}
	f.store.SetUser(updated)

	state := f.store.State()
	require.Equal(t, "Renamed", state.User.FirstName)
	require.Equal(t, token, state.AccessToken)
	require.True(t, state.IsAuthenticated)
	requireInvariant(t, state)
	require.Equal(t, "Renamed", f.adapter.Stored().User.FirstName)
}

// TestSetUser_NilDropsAuthentication keeps the invariant intact
func TestSetUser_NilDropsAuthentication(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, ok)

	f.store.SetUser(nil)

	state := f.store.State()
	require.False(t, state.IsAuthenticated)
	requireInvariant(t, state)
}

// TestSetError_SurfacesMessage
func TestSetError_SurfacesMessage(t *testing.T) {
	f := setupTestFixture(t)

	f.store.SetError("session expired")
	require.Equal(t, "session expired", f.store.State().Error)
}

// TestSubscribe_NotifiesOnMutation
func TestSubscribe_NotifiesOnMutation(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)

	changes, cancel := f.store.Subscribe()
	defer cancel()

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, ok)

	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected a change notification after login")
	}
}

// TestPersistence_WriteFailureKeepsInMemorySession: storage trouble must
// not log the user out of the running process.
func TestPersistence_WriteFailureKeepsInMemorySession(t *testing.T) {
	f := setupTestFixture(t)
	f.seedBusinessAdmin(t)
	f.adapter.WriteErr = context.DeadlineExceeded

	ok, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, f.store.State().IsAuthenticated)
}

// buildStoreWithClient swaps in a custom client implementation.
func (f *testFixture) buildStoreWithClient(t *testing.T, client apiclient.Client) {
	t.Helper()

	store, err := session.New(f.adapter, client)
	require.NoError(t, err)
	f.store = store
}

// malformedClient reports success without a user or token.
type malformedClient struct{}

func (malformedClient) Login(ctx context.Context, username, password string) (*apiclient.LoginResult, error) {
	return &apiclient.LoginResult{Success: true}, nil
}

func (malformedClient) Logout(ctx context.Context, accessToken string) error {
	return nil
}

// waitForLoading blocks until the store reports a login in flight.
func waitForLoading(t *testing.T, store *session.Store) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if store.State().IsLoading {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("store never entered the loading state")
}

// signedJWT builds a minimal HS256 token with the given expiry.
func signedJWT(t *testing.T, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}
