package api

import (
	"context"

	"github.com/sakif/gradlink/internal/apiclient"
	"github.com/sakif/gradlink/internal/model"
)

const eventsPath = "events"

// ListEvents returns all events, newest date first. Anonymous callers
// may list; IsRegistered is only meaningful with a session.
func (a *API) ListEvents(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	if err := a.get(ctx, eventsPath+"/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEvent publishes an event organised by the caller.
func (a *API) CreateEvent(ctx context.Context, in model.EventInput) (*model.Event, error) {
	var out model.Event
	if err := a.post(ctx, eventsPath+"/", apiclient.JSON(in), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEvent replaces an event's writable fields. Organizer only.
func (a *API) UpdateEvent(ctx context.Context, id int64, in model.EventInput) (*model.Event, error) {
	var out model.Event
	if err := a.put(ctx, itemPath(eventsPath, id), apiclient.JSON(in), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEvent removes an event. Organizer only.
func (a *API) DeleteEvent(ctx context.Context, id int64) error {
	return a.delete(ctx, itemPath(eventsPath, id))
}

// ToggleEventRegistration registers the caller for the event, or
// unregisters them if they already were. Status is "registered" or
// "unregistered".
func (a *API) ToggleEventRegistration(ctx context.Context, id int64) (*model.StatusResponse, error) {
	var out model.StatusResponse
	if err := a.post(ctx, itemPath(eventsPath, id, "register"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
