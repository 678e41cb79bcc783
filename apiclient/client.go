// Package apiclient defines the boundary to the backend auth contract.
// The session store treats a Client as an opaque asynchronous operation:
// credential rejections and transport failures both come back as a
// LoginResult with Success=false, so no transport detail leaks upward.
package apiclient

import (
	"context"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/users"
)

// LoginResult is the outcome of a login attempt. When Success is false,
// Message carries a human-readable reason suitable for display.
type LoginResult struct {
	Success      bool
	User         *users.User
	AccessToken  string
	RefreshToken string
	Message      string
}

// Client is implemented by the HTTP and OAuth2 backends and by test
// fakes. Login returns a non-nil error only for programming mistakes;
// expected failures (bad credentials, unreachable backend, malformed
// responses) are folded into the result. Logout is advisory: the caller
// resets local state regardless of its outcome.
type Client interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, accessToken string) error
}
