package clientfakes

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/apiclient"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/users"
)

var _ apiclient.Client = (*FakeClient)(nil)

type seededUser struct {
	user         users.User
	passwordHash string
}

// FakeClient is an in-memory stand-in for the backend. Seeded users are
// checked with the same bcrypt comparison the real backend uses, so
// credential-failure paths behave identically in tests.
type FakeClient struct {
	users map[string]seededUser
	lock  sync.Mutex

	// Gate, when non-nil, blocks Login until a value is sent or the
	// channel is closed. Tests use it to hold a login in flight.
	Gate chan struct{}

	// LoginErr, when set, is returned from Login as a hard error.
	LoginErr error

	LoginCalls  int
	LogoutCalls int
}

func New() *FakeClient {
	return &FakeClient{users: make(map[string]seededUser)}
}

// SeedUser registers a user that can log in with the given password.
func (fc *FakeClient) SeedUser(user users.User, password string) error {
	hash, err := users.HashPassword(password)
	if err != nil {
		return err
	}
	fc.lock.Lock()
	defer fc.lock.Unlock()
	fc.users[user.Username] = seededUser{user: user, passwordHash: hash}
	return nil
}

func (fc *FakeClient) Login(ctx context.Context, username, password string) (*apiclient.LoginResult, error) {
	fc.lock.Lock()
	fc.LoginCalls++
	gate := fc.Gate
	loginErr := fc.LoginErr
	seeded, ok := fc.users[username]
	fc.lock.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return &apiclient.LoginResult{Success: false, Message: "request cancelled"}, nil
		}
	}

	if loginErr != nil {
		return nil, loginErr
	}

	if !ok || !users.CheckPasswordHash(password, seeded.passwordHash) {
		return &apiclient.LoginResult{Success: false, Message: "invalid username or password"}, nil
	}

	user := seeded.user
	return &apiclient.LoginResult{
		Success:      true,
		User:         &user,
		AccessToken:  uuid.New().String(),
		RefreshToken: uuid.New().String(),
	}, nil
}

func (fc *FakeClient) Logout(ctx context.Context, accessToken string) error {
	fc.lock.Lock()
	defer fc.lock.Unlock()
	fc.LogoutCalls++
	return nil
}
