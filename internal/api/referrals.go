package api

import (
	"context"

	"github.com/sakif/gradlink/internal/apiclient"
	"github.com/sakif/gradlink/internal/apperror"
	"github.com/sakif/gradlink/internal/model"
)

const referralsPath = "referrals"

// ListReferrals returns the caller's referral requests as a student, or
// the requests on their postings as an alumnus.
func (a *API) ListReferrals(ctx context.Context) ([]model.Referral, error) {
	var out []model.Referral
	if err := a.get(ctx, referralsPath+"/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReferral asks for a referral to a job. form must carry a "job"
// field and a "resume" file; without the resume nothing is sent.
func (a *API) CreateReferral(ctx context.Context, form *apiclient.Form) (*model.Referral, error) {
	if !form.HasFile("resume") {
		return nil, apperror.ValidationFailed("resume", "a resume file is required to request a referral")
	}

	var out model.Referral
	if err := a.post(ctx, referralsPath+"/", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateReferral changes a referral, normally its status, as the alumnus
// who posted the job.
func (a *API) UpdateReferral(ctx context.Context, id int64, fields model.ReferralUpdate) (*model.Referral, error) {
	var out model.Referral
	if err := a.patch(ctx, itemPath(referralsPath, id), apiclient.JSON(fields), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
