package apiclient

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/users"
)

// OAuth2Client authenticates against an OAuth2/OIDC issuer using the
// resource-owner password grant. The identity snapshot comes from the
// verified ID token claims when the issuer returns one, otherwise the
// session carries tokens without a profile until SetUser fills it in.
type OAuth2Client struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

var _ Client = (*OAuth2Client)(nil)

// NewOAuth2Client discovers the issuer's endpoints via OIDC discovery.
func NewOAuth2Client(ctx context.Context, issuer, clientID string) (*OAuth2Client, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, errors.Wrap(err, "[NewOAuth2Client] oidc discovery")
	}

	return &OAuth2Client{
		oauthConfig: &oauth2.Config{
			ClientID: clientID,
			Endpoint: provider.Endpoint(),
			Scopes:   []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

type idTokenClaims struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	PreferredUsername string `json:"preferred_username"`
	Role              string `json:"role"`
	StoreID           string `json:"store"`
}

func (c *OAuth2Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	token, err := c.oauthConfig.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		if rErr, ok := err.(*oauth2.RetrieveError); ok && rErr.ErrorDescription != "" {
			return &LoginResult{Success: false, Message: rErr.ErrorDescription}, nil
		}
		log.Warn().Err(err).Msg("oauth2 password grant failed")
		return &LoginResult{Success: false, Message: "could not reach the server, please try again"}, nil
	}

	result := &LoginResult{
		Success:      true,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return result, nil
	}

	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		// A token that fails verification never becomes an identity.
		log.Warn().Err(err).Msg("id token verification failed")
		return &LoginResult{Success: false, Message: "identity token could not be verified"}, nil
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		log.Warn().Err(err).Msg("id token claims unreadable")
		return &LoginResult{Success: false, Message: "identity token could not be read"}, nil
	}

	result.User = &users.User{
		ID:        claims.Subject,
		Username:  claims.PreferredUsername,
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Role:      users.ParseRole(claims.Role),
		Active:    true,
		StoreID:   claims.StoreID,
	}
	return result, nil
}

// Logout is a no-op at the issuer: the password grant has no RP-initiated
// logout, and the session store discards the tokens locally either way.
func (c *OAuth2Client) Logout(ctx context.Context, accessToken string) error {
	log.Debug().Msg("oauth2 logout: dropping tokens locally")
	return nil
}
