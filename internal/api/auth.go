package api

import (
	"context"

	"github.com/sakif/gradlink/internal/apiclient"
	"github.com/sakif/gradlink/internal/model"
)

// Login exchanges credentials for a token and the caller's profile.
// It does not touch the session store; service.AuthService does that.
func (a *API) Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := a.post(ctx, "login/", apiclient.JSON(creds), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup creates an account. The backend logs the new user in straight
// away and answers like Login.
func (a *API) Signup(ctx context.Context, reg model.Registration) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := a.post(ctx, "signup/", apiclient.JSON(reg), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the server-side session. The token itself stays valid on
// the backend, so clearing the local session is what actually logs out.
func (a *API) Logout(ctx context.Context) error {
	return a.post(ctx, "logout/", nil, nil)
}
