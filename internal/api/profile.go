package api

import (
	"context"

	"github.com/sakif/gradlink/internal/apiclient"
	"github.com/sakif/gradlink/internal/model"
)

const profilePath = "profile/update/"

// GetProfile returns the caller's own profile. The answer carries no token.
func (a *API) GetProfile(ctx context.Context) (*model.ProfileResponse, error) {
	var out model.ProfileResponse
	if err := a.get(ctx, profilePath, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the caller's profile. The backend treats it as a
// partial update. Send apiclient.JSON for plain fields or an
// *apiclient.Form when a new image is attached.
func (a *API) UpdateProfile(ctx context.Context, payload apiclient.Payload) (*model.ProfileResponse, error) {
	var out model.ProfileResponse
	if err := a.put(ctx, profilePath, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProfile permanently deletes the caller's account.
func (a *API) DeleteProfile(ctx context.Context) error {
	return a.delete(ctx, "delete-profile/")
}
