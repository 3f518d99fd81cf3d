package devserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sakif/gradlink/internal/apperror"
	"github.com/sakif/gradlink/internal/model"
)

// =========================================================================
// MENTORSHIP REQUESTS
// =========================================================================
//
// VISIBILITY:
// A student sees the requests they sent, an alumnus the ones addressed to
// them. Anything outside that set is a 404 for the caller, even by id.
// Inside it, the wrong party asking for a transition gets 403.

type transition struct {
	to    model.RequestStatus
	party func(req *model.MentorshipRequest, user int64) bool
}

var (
	transitionAccept = transition{model.RequestAccepted, isAlumniOf}
	transitionReject = transition{model.RequestRejected, isAlumniOf}
	transitionCancel = transition{model.RequestCancelled, isStudentOf}
)

func isAlumniOf(req *model.MentorshipRequest, user int64) bool  { return req.Alumni == user }
func isStudentOf(req *model.MentorshipRequest, user int64) bool { return req.Student == user }

func isParty(req *model.MentorshipRequest, user int64) bool {
	return isAlumniOf(req, user) || isStudentOf(req, user)
}

// visibleRequest looks up a request the user is allowed to see.
func (t *tables) visibleRequest(id, user int64) (*model.MentorshipRequest, error) {
	req, ok := t.requests[id]
	if !ok || !isParty(req, user) {
		return nil, apperror.NotFound("mentorship request", formatID(id))
	}
	return req, nil
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user := caller(r)
	status := model.RequestStatus(r.URL.Query().Get("status"))

	var out []model.MentorshipRequest
	err := s.db.do(func(t *tables) error {
		u, err := t.user(user)
		if err != nil {
			return err
		}
		out = []model.MentorshipRequest{}
		for _, req := range t.requests {
			mine := (u.profile.Role == model.RoleStudent && req.Student == user) ||
				(u.profile.Role == model.RoleAlumni && req.Alumni == user)
			if mine && (status == "" || req.Status == status) {
				out = append(out, t.renderRequest(req))
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	newestFirst(out,
		func(r model.MentorshipRequest) time.Time { return r.RequestedAt },
		func(r model.MentorshipRequest) int64 { return r.ID },
	)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "mentorship request")
	if err != nil {
		writeError(w, err)
		return
	}
	var out model.MentorshipRequest
	err = s.db.do(func(t *tables) error {
		req, err := t.visibleRequest(id, caller(r))
		if err != nil {
			return err
		}
		out = t.renderRequest(req)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateRequest files a request from the caller to an alumnus. The
// student is always the caller; a "student" field in the body is ignored.
func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var in model.MentorshipRequestInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user := caller(r)
	var out model.MentorshipRequest
	err := s.db.do(func(t *tables) error {
		mentor, ok := t.users[in.Alumni]
		if !ok || mentor.profile.Role != model.RoleAlumni {
			return apperror.ValidationFailed("alumni", "Invalid pk \""+formatID(in.Alumni)+"\" - object does not exist.")
		}
		if in.Alumni == user {
			return apperror.ValidationFailed("alumni", "You cannot request mentorship from yourself.")
		}
		if _, err := t.mentorshipTypes(in.MentorshipTypes); err != nil {
			return err
		}

		now := t.now().UTC()
		req := &model.MentorshipRequest{
			ID:              t.nextID(),
			Student:         user,
			Alumni:          in.Alumni,
			Message:         in.Message,
			MentorshipTypes: append([]int64{}, in.MentorshipTypes...),
			Status:          model.RequestPending,
			RequestedAt:     now,
			UpdatedAt:       now,
		}
		t.requests[req.ID] = req
		out = t.renderRequest(req)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// handleRequestTransition serves accept, reject and cancel. The target
// status is applied as asked; the backend does not guard against moving
// out of a terminal state, and neither does this.
func (s *Server) handleRequestTransition(tr transition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "mentorship request")
		if err != nil {
			writeError(w, err)
			return
		}

		user := caller(r)
		err = s.db.do(func(t *tables) error {
			req, err := t.visibleRequest(id, user)
			if err != nil {
				return err
			}
			if !tr.party(req, user) {
				return notAuthorized
			}
			req.Status = tr.to
			req.UpdatedAt = t.now().UTC()
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}

		s.logger.Info("mentorship request transitioned",
			slog.Int64("requestID", id),
			slog.String("status", string(tr.to)),
		)
		writeJSON(w, http.StatusOK, model.StatusResponse{Status: string(tr.to)})
	}
}

// =========================================================================
// MENTORSHIP ACTIVITIES
// =========================================================================

func (t *tables) visibleActivity(id, user int64) (*model.MentorshipActivity, error) {
	act, ok := t.activities[id]
	if !ok {
		return nil, apperror.NotFound("mentorship activity", formatID(id))
	}
	if req, ok := t.requests[act.MentorshipRequest]; !ok || !isParty(req, user) {
		return nil, apperror.NotFound("mentorship activity", formatID(id))
	}
	return act, nil
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	user := caller(r)
	q := r.URL.Query()

	var requestID int64
	if raw := q.Get("request_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, apperror.ValidationFailed("request_id", "A valid integer is required."))
			return
		}
		requestID = id
	}
	status := model.ActivityStatus(q.Get("status"))

	var out []model.MentorshipActivity
	s.db.do(func(t *tables) error {
		out = []model.MentorshipActivity{}
		for _, act := range t.activities {
			req, ok := t.requests[act.MentorshipRequest]
			if !ok || !isParty(req, user) {
				continue
			}
			if requestID != 0 && act.MentorshipRequest != requestID {
				continue
			}
			if status != "" && act.Status != status {
				continue
			}
			out = append(out, *act)
		}
		return nil
	})
	newestFirst(out,
		func(a model.MentorshipActivity) time.Time { return a.CreatedAt },
		func(a model.MentorshipActivity) int64 { return a.ID },
	)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "mentorship activity")
	if err != nil {
		writeError(w, err)
		return
	}
	var out model.MentorshipActivity
	err = s.db.do(func(t *tables) error {
		act, err := t.visibleActivity(id, caller(r))
		if err != nil {
			return err
		}
		out = *act
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateActivity accepts JSON or multipart; a "file" part becomes
// the activity's attachment.
func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user := caller(r)
	var out model.MentorshipActivity
	err = s.db.do(func(t *tables) error {
		reqID, err := in.int("mentorship_request")
		if err != nil {
			return err
		}
		req, ok := t.requests[reqID]
		if !ok {
			return apperror.ValidationFailed("mentorship_request", "Invalid pk \""+formatID(reqID)+"\" - object does not exist.")
		}
		if !isParty(req, user) {
			return apperror.ValidationFailed("", "You are not part of this mentorship request.")
		}
		if in.str("title") == "" {
			return apperror.ValidationFailed("title", "This field is required.")
		}

		now := t.now().UTC()
		act := &model.MentorshipActivity{
			MentorshipRequest: reqID,
			Status:            model.ActivityPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := applyActivityFields(t, act, in); err != nil {
			return err
		}
		act.ID = t.nextID()
		t.activities[act.ID] = act
		out = *act
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if out.Status == model.ActivityScheduled {
		// The backend emails the student here. The devserver only logs it.
		s.logger.Info("session scheduled",
			slog.Int64("activityID", out.ID),
			slog.Int64("requestID", out.MentorshipRequest),
		)
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "mentorship activity")
	if err != nil {
		writeError(w, err)
		return
	}
	in, err := readInput(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var out model.MentorshipActivity
	err = s.db.do(func(t *tables) error {
		act, err := t.visibleActivity(id, caller(r))
		if err != nil {
			return err
		}
		next := *act
		if err := applyActivityFields(t, &next, in); err != nil {
			return err
		}
		next.UpdatedAt = t.now().UTC()
		*act = next
		out = next
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "mentorship activity")
	if err != nil {
		writeError(w, err)
		return
	}
	err = s.db.do(func(t *tables) error {
		if _, err := t.visibleActivity(id, caller(r)); err != nil {
			return err
		}
		delete(t.activities, id)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// applyActivityFields copies the present writable fields. The owning
// request is fixed at creation and never moves.
func applyActivityFields(t *tables, act *model.MentorshipActivity, in *input) error {
	if in.has("title") {
		act.Title = in.str("title")
	}
	if in.has("description") {
		act.Description = in.str("description")
	}
	if in.has("meeting_link") {
		act.MeetingLink = in.str("meeting_link")
	}
	if in.has("status") {
		switch st := model.ActivityStatus(in.str("status")); st {
		case model.ActivityPending, model.ActivityScheduled, model.ActivityInProgress, model.ActivityCompleted:
			act.Status = st
		default:
			return apperror.ValidationFailed("status", "\""+string(st)+"\" is not a valid choice.")
		}
	}
	if in.has("date") {
		act.Date = nil
		if raw := in.str("date"); raw != "" {
			d, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return apperror.ValidationFailed("date", "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z].")
			}
			act.Date = &d
		}
	}
	if fh := in.file("file"); fh != nil {
		path, err := t.saveUpload("mentorship_files", fh)
		if err != nil {
			return err
		}
		act.File = path
	}
	return nil
}
