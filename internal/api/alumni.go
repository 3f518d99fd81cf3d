package api

import (
	"context"

	"github.com/sakif/gradlink/internal/model"
)

func (a *API) ListAlumni(ctx context.Context) ([]model.AlumniCard, error) {
	var out []model.AlumniCard
	if err := a.get(ctx, "alumni/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAlumni returns one alumnus's full profile, not the directory card.
func (a *API) GetAlumni(ctx context.Context, id int64) (*model.UserProfile, error) {
	var out model.UserProfile
	if err := a.get(ctx, itemPath("alumni", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DashboardStats is alumni-only; students get 403.
func (a *API) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var out model.DashboardStats
	if err := a.get(ctx, "alumni/dashboard-stats/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
