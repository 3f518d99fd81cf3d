package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/sakif/gradlink/internal/apiclient"
	"github.com/sakif/gradlink/internal/model"
)

const activitiesPath = "mentorship-activities"

// ListMentorshipActivities returns activities on requests the caller is
// part of, newest first.
func (a *API) ListMentorshipActivities(ctx context.Context, filter model.ActivityFilter) ([]model.MentorshipActivity, error) {
	q := url.Values{}
	if filter.RequestID != 0 {
		q.Set("request_id", strconv.FormatInt(filter.RequestID, 10))
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}

	var out []model.MentorshipActivity
	if err := a.get(ctx, activitiesPath+"/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMentorshipActivity adds an activity. Use apiclient.JSON with a
// model.ActivityInput, or an *apiclient.Form carrying a "file" part.
func (a *API) CreateMentorshipActivity(ctx context.Context, payload apiclient.Payload) (*model.MentorshipActivity, error) {
	var out model.MentorshipActivity
	if err := a.post(ctx, activitiesPath+"/", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMentorshipActivity partially updates an activity (PATCH).
func (a *API) UpdateMentorshipActivity(ctx context.Context, id int64, payload apiclient.Payload) (*model.MentorshipActivity, error) {
	var out model.MentorshipActivity
	if err := a.patch(ctx, itemPath(activitiesPath, id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) DeleteMentorshipActivity(ctx context.Context, id int64) error {
	return a.delete(ctx, itemPath(activitiesPath, id))
}
