package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/users"
)

const defaultTimeout = 15 * time.Second

// HTTPClient talks to the backend's JSON auth endpoints.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// HTTPClientOption modifies an HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets the underlying http.Client (primarily for testing).
func WithHTTPClient(hc *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

func NewHTTPClient(baseURL string, options ...HTTPClientOption) *HTTPClient {
	client := &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userPayload struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Active    bool   `json:"is_active"`
	StoreID   string `json:"store"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *userPayload `json:"user"`
	Token   string       `json:"token"`
	Refresh string       `json:"refresh"`
}

// Login posts the credentials to the backend. Every failure mode ends up
// in the returned LoginResult; the error return stays nil so callers
// never have to distinguish transport trouble from bad credentials.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("login request failed")
		return &LoginResult{Success: false, Message: "could not reach the server, please try again"}, nil
	}
	defer resp.Body.Close()

	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Warn().Err(err).Int("status", resp.StatusCode).Msg("malformed login response")
		return &LoginResult{Success: false, Message: "unexpected response from the server"}, nil
	}

	if !payload.Success || resp.StatusCode != http.StatusOK {
		message := payload.Message
		if message == "" {
			message = fmt.Sprintf("login failed (status %d)", resp.StatusCode)
		}
		return &LoginResult{Success: false, Message: message}, nil
	}

	result := &LoginResult{
		Success:      true,
		AccessToken:  payload.Token,
		RefreshToken: payload.Refresh,
	}
	if payload.User != nil {
		result.User = &users.User{
			ID:        payload.User.ID,
			Username:  payload.User.Username,
			Email:     payload.User.Email,
			FirstName: payload.User.FirstName,
			LastName:  payload.User.LastName,
			Role:      users.ParseRole(payload.User.Role),
			Active:    payload.User.Active,
			StoreID:   payload.User.StoreID,
		}
	}
	return result, nil
}

// Logout notifies the backend that the session ended. The result is
// advisory; callers reset local state whether or not this succeeds.
func (c *HTTPClient) Logout(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/logout/", nil)
	if err != nil {
		return err
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("logout returned status %d", resp.StatusCode)
	}
	return nil
}
