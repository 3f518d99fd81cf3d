package devserver

import (
	"net/http"
	"time"

	"github.com/sakif/gradlink/internal/apperror"
	"github.com/sakif/gradlink/internal/model"
)

// =========================================================================
// JOBS
// =========================================================================
//
// Every logged-in user sees the whole board. Only alumni post, and only
// the poster may change or remove a posting.

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	user := caller(r)
	mine := r.URL.Query().Get("my_jobs") == "true"

	var out []model.Job
	s.db.do(func(t *tables) error {
		out = []model.Job{}
		for _, job := range t.jobs {
			if mine && job.PostedBy != user {
				continue
			}
			out = append(out, t.renderJob(job))
		}
		return nil
	})
	newestFirst(out,
		func(j model.Job) time.Time { return j.PostedAt },
		func(j model.Job) int64 { return j.ID },
	)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "job")
	if err != nil {
		writeError(w, err)
		return
	}
	var out model.Job
	err = s.db.do(func(t *tables) error {
		job, ok := t.jobs[id]
		if !ok {
			return apperror.NotFound("job", formatID(id))
		}
		out = t.renderJob(job)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var in model.JobInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user := caller(r)
	var out model.Job
	err := s.db.do(func(t *tables) error {
		u, err := t.user(user)
		if err != nil {
			return err
		}
		if u.profile.Role != model.RoleAlumni {
			return apperror.ValidationFailed("", "Only alumni can post jobs.")
		}

		job := &model.Job{
			Title:       in.Title,
			Company:     in.Company,
			Location:    in.Location,
			Description: in.Description,
			JobType:     in.JobType,
			Link:        in.Link,
			PostedBy:    user,
			PostedAt:    t.now().UTC(),
		}
		if job.JobType == "" {
			job.JobType = model.JobFullTime
		}
		if err := validateJob(job); err != nil {
			return err
		}
		job.ID = t.nextID()
		t.jobs[job.ID] = job
		out = t.renderJob(job)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "job")
	if err != nil {
		writeError(w, err)
		return
	}
	var in model.JobUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	var out model.Job
	err = s.db.do(func(t *tables) error {
		job, err := t.postedJob(id, caller(r))
		if err != nil {
			return err
		}
		next := *job
		setIf(&next.Title, in.Title)
		setIf(&next.Company, in.Company)
		setIf(&next.Location, in.Location)
		setIf(&next.Description, in.Description)
		setIf(&next.JobType, in.JobType)
		setIf(&next.Link, in.Link)
		if err := validateJob(&next); err != nil {
			return err
		}
		*job = next
		out = t.renderJob(job)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDeleteJob also drops the referral requests made against the job.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "job")
	if err != nil {
		writeError(w, err)
		return
	}
	err = s.db.do(func(t *tables) error {
		if _, err := t.postedJob(id, caller(r)); err != nil {
			return err
		}
		delete(t.jobs, id)
		for rid, ref := range t.referrals {
			if ref.Job == id {
				delete(t.referrals, rid)
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (t *tables) postedJob(id, user int64) (*model.Job, error) {
	job, ok := t.jobs[id]
	if !ok {
		return nil, apperror.NotFound("job", formatID(id))
	}
	if job.PostedBy != user {
		return nil, apperror.Forbidden("You do not have permission to perform this action.")
	}
	return job, nil
}

func validateJob(job *model.Job) error {
	required := []struct{ field, value string }{
		{"title", job.Title},
		{"company", job.Company},
		{"location", job.Location},
		{"description", job.Description},
	}
	for _, f := range required {
		if f.value == "" {
			return apperror.ValidationFailed(f.field, "This field is required.")
		}
	}
	switch job.JobType {
	case model.JobFullTime, model.JobInternship, model.JobContract:
		return nil
	}
	return apperror.ValidationFailed("job_type", "\""+string(job.JobType)+"\" is not a valid choice.")
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// =========================================================================
// REFERRALS
// =========================================================================
//
// A student sees their own requests. An alumnus sees the requests made on
// jobs they posted and is the only one who moves a referral's status.

func (t *tables) referralVisible(ref *model.Referral, user int64) bool {
	if ref.Student == user {
		return true
	}
	job, ok := t.jobs[ref.Job]
	return ok && job.PostedBy == user
}

func (s *Server) handleListReferrals(w http.ResponseWriter, r *http.Request) {
	user := caller(r)

	var out []model.Referral
	err := s.db.do(func(t *tables) error {
		u, err := t.user(user)
		if err != nil {
			return err
		}
		out = []model.Referral{}
		for _, ref := range t.referrals {
			var mine bool
			switch u.profile.Role {
			case model.RoleStudent:
				mine = ref.Student == user
			case model.RoleAlumni:
				job, ok := t.jobs[ref.Job]
				mine = ok && job.PostedBy == user
			}
			if mine {
				out = append(out, t.renderReferral(ref))
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	newestFirst(out,
		func(r model.Referral) time.Time { return r.RequestedAt },
		func(r model.Referral) int64 { return r.ID },
	)
	writeJSON(w, http.StatusOK, out)
}

// handleCreateReferral takes multipart (job, message, resume) or JSON.
// A JSON body can never carry the resume, so it always fails validation.
func (s *Server) handleCreateReferral(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user := caller(r)
	var out model.Referral
	err = s.db.do(func(t *tables) error {
		jobID, err := in.int("job")
		if err != nil {
			return err
		}
		if _, ok := t.jobs[jobID]; !ok {
			return apperror.ValidationFailed("job", "Invalid pk \""+formatID(jobID)+"\" - object does not exist.")
		}
		fh := in.file("resume")
		if fh == nil {
			return apperror.ValidationFailed("resume", "No file was submitted.")
		}
		u, err := t.user(user)
		if err != nil {
			return err
		}
		if u.profile.Role != model.RoleStudent {
			return apperror.ValidationFailed("", "Only students can request referrals.")
		}

		resume, err := t.saveUpload("resumes", fh)
		if err != nil {
			return err
		}
		ref := &model.Referral{
			ID:          t.nextID(),
			Job:         jobID,
			Student:     user,
			Message:     in.str("message"),
			Resume:      resume,
			Status:      model.ReferralPending,
			RequestedAt: t.now().UTC(),
		}
		t.referrals[ref.ID] = ref
		out = t.renderReferral(ref)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateReferral(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "referral")
	if err != nil {
		writeError(w, err)
		return
	}
	var in model.ReferralUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	user := caller(r)
	var out model.Referral
	err = s.db.do(func(t *tables) error {
		ref, ok := t.referrals[id]
		if !ok || !t.referralVisible(ref, user) {
			return apperror.NotFound("referral", formatID(id))
		}
		next := *ref
		if in.Status != nil {
			if job := t.jobs[ref.Job]; job == nil || job.PostedBy != user {
				return notAuthorized
			}
			switch *in.Status {
			case model.ReferralPending, model.ReferralViewed, model.ReferralReferred, model.ReferralRejected:
				next.Status = *in.Status
			default:
				return apperror.ValidationFailed("status", "\""+string(*in.Status)+"\" is not a valid choice.")
			}
		}
		setIf(&next.Message, in.Message)
		*ref = next
		out = t.renderReferral(ref)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
