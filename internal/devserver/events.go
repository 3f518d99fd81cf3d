package devserver

import (
	"cmp"
	"net/http"
	"slices"
	"time"

	"github.com/sakif/gradlink/internal/apperror"
	"github.com/sakif/gradlink/internal/auth"
	"github.com/sakif/gradlink/internal/model"
)

// Anyone may read events. Any logged-in user may create one and becomes
// its organizer; only the organizer may change or delete it.

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.UserIDFromContext(r.Context())

	var out []model.Event
	s.db.do(func(t *tables) error {
		out = make([]model.Event, 0, len(t.events))
		for _, rec := range t.events {
			out = append(out, t.renderEvent(rec, viewer))
		}
		return nil
	})

	// Dates are ISO strings, so they order lexically.
	slices.SortFunc(out, func(a, b model.Event) int {
		if a.Date != b.Date {
			if a.Date > b.Date {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.ID, a.ID)
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.UserIDFromContext(r.Context())
	id, err := pathID(r, "event")
	if err != nil {
		writeError(w, err)
		return
	}

	var out model.Event
	err = s.db.do(func(t *tables) error {
		rec, ok := t.events[id]
		if !ok {
			return apperror.NotFound("event", formatID(id))
		}
		out = t.renderEvent(rec, viewer)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in model.EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := validateEvent(in); err != nil {
		writeError(w, err)
		return
	}

	user := caller(r)
	var out model.Event
	s.db.do(func(t *tables) error {
		rec := &eventRecord{event: model.Event{
			ID:          t.nextID(),
			Title:       in.Title,
			Description: in.Description,
			Date:        in.Date,
			Time:        in.Time,
			Location:    in.Location,
			Type:        in.Type,
			Organizer:   user,
			CreatedAt:   t.now().UTC(),
		}}
		t.events[rec.event.ID] = rec
		out = t.renderEvent(rec, user)
		return nil
	})
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "event")
	if err != nil {
		writeError(w, err)
		return
	}
	var in model.EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := validateEvent(in); err != nil {
		writeError(w, err)
		return
	}

	user := caller(r)
	var out model.Event
	err = s.db.do(func(t *tables) error {
		rec, err := t.organizedEvent(id, user)
		if err != nil {
			return err
		}
		ev := &rec.event
		ev.Title, ev.Description = in.Title, in.Description
		ev.Date, ev.Time = in.Date, in.Time
		ev.Location, ev.Type = in.Location, in.Type
		out = t.renderEvent(rec, user)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "event")
	if err != nil {
		writeError(w, err)
		return
	}
	err = s.db.do(func(t *tables) error {
		if _, err := t.organizedEvent(id, caller(r)); err != nil {
			return err
		}
		delete(t.events, id)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleToggleRegistration flips the caller's registration.
func (s *Server) handleToggleRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "event")
	if err != nil {
		writeError(w, err)
		return
	}

	user := caller(r)
	var status string
	err = s.db.do(func(t *tables) error {
		rec, ok := t.events[id]
		if !ok {
			return apperror.NotFound("event", formatID(id))
		}
		if i := slices.Index(rec.registered, user); i >= 0 {
			rec.registered = slices.Delete(rec.registered, i, i+1)
			status = "unregistered"
			return nil
		}
		rec.registered = append(rec.registered, user)
		status = "registered"
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{Status: status})
}

func (t *tables) organizedEvent(id, user int64) (*eventRecord, error) {
	rec, ok := t.events[id]
	if !ok {
		return nil, apperror.NotFound("event", formatID(id))
	}
	if rec.event.Organizer != user {
		return nil, apperror.Forbidden("You do not have permission to perform this action.")
	}
	return rec, nil
}

func validateEvent(in model.EventInput) error {
	switch {
	case in.Title == "":
		return apperror.ValidationFailed("title", "This field is required.")
	case in.Location == "":
		return apperror.ValidationFailed("location", "This field is required.")
	case in.Type != model.EventOnline && in.Type != model.EventOffline:
		return apperror.ValidationFailed("type", "\""+string(in.Type)+"\" is not a valid choice.")
	}
	if _, err := time.Parse(time.DateOnly, in.Date); err != nil {
		return apperror.ValidationFailed("date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	if _, err := time.Parse(time.TimeOnly, in.Time); err != nil {
		if _, err := time.Parse("15:04", in.Time); err != nil {
			return apperror.ValidationFailed("time", "Time has wrong format. Use one of these formats instead: hh:mm[:ss[.uuuuuu]].")
		}
	}
	return nil
}
