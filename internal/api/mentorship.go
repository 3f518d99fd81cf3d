package api

import (
	"context"
	"net/url"

	"github.com/sakif/gradlink/internal/apiclient"
	"github.com/sakif/gradlink/internal/model"
)

const requestsPath = "mentorship-requests"

func (a *API) ListMentorshipTypes(ctx context.Context) ([]model.MentorshipType, error) {
	var out []model.MentorshipType
	if err := a.get(ctx, "mentorship-types/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMentorshipRequests returns the caller's requests: those they sent
// as a student, or those addressed to them as an alumnus.
func (a *API) ListMentorshipRequests(ctx context.Context, filter model.RequestFilter) ([]model.MentorshipRequest, error) {
	var q url.Values
	if filter.Status != "" {
		q = url.Values{"status": {string(filter.Status)}}
	}

	var out []model.MentorshipRequest
	if err := a.get(ctx, requestsPath+"/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMentorshipRequest sends a request from the caller (a student).
func (a *API) CreateMentorshipRequest(ctx context.Context, in model.MentorshipRequestInput) (*model.MentorshipRequest, error) {
	var out model.MentorshipRequest
	if err := a.post(ctx, requestsPath+"/", apiclient.JSON(in), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptMentorshipRequest is allowed for the addressed alumnus only.
func (a *API) AcceptMentorshipRequest(ctx context.Context, id int64) (*model.StatusResponse, error) {
	return a.requestAction(ctx, id, "accept")
}

// RejectMentorshipRequest is allowed for the addressed alumnus only.
func (a *API) RejectMentorshipRequest(ctx context.Context, id int64) (*model.StatusResponse, error) {
	return a.requestAction(ctx, id, "reject")
}

// CancelMentorshipRequest is allowed for the requesting student only.
func (a *API) CancelMentorshipRequest(ctx context.Context, id int64) (*model.StatusResponse, error) {
	return a.requestAction(ctx, id, "cancel")
}

// requestAction POSTs with no body; the transition is decided server-side.
func (a *API) requestAction(ctx context.Context, id int64, action string) (*model.StatusResponse, error) {
	var out model.StatusResponse
	if err := a.post(ctx, itemPath(requestsPath, id, action), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
