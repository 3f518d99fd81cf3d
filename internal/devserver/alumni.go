package devserver

import (
	"cmp"
	"fmt"
	"math"
	"net/http"
	"slices"

	"github.com/sakif/gradlink/internal/apperror"
	"github.com/sakif/gradlink/internal/model"
)

// avgRating is what the backend reports until it has a rating system.
const avgRating = 4.9

func (s *Server) handleListAlumni(w http.ResponseWriter, r *http.Request) {
	var out []model.AlumniCard
	s.db.do(func(t *tables) error {
		out = []model.AlumniCard{}
		for _, u := range t.users {
			if u.profile.Role == model.RoleAlumni {
				out = append(out, alumniCard(u.profile))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b model.AlumniCard) int { return cmp.Compare(a.ID, b.ID) })
	writeJSON(w, http.StatusOK, out)
}

// handleGetAlumni returns the full profile, not the card.
func (s *Server) handleGetAlumni(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "alumni")
	if err != nil {
		writeError(w, err)
		return
	}

	var out model.UserProfile
	err = s.db.do(func(t *tables) error {
		u, ok := t.users[id]
		if !ok || u.profile.Role != model.RoleAlumni {
			return apperror.NotFound("alumni", formatID(id))
		}
		out = u.profile
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	user := caller(r)

	var out model.DashboardStats
	err := s.db.do(func(t *tables) error {
		u, err := t.user(user)
		if err != nil {
			return err
		}
		if u.profile.Role != model.RoleAlumni {
			return apperror.Forbidden("Only alumni can access this endpoint")
		}
		out = dashboardStats(t, user)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// dashboardStats computes the alumni summary:
//
//	total_mentees   distinct students with an accepted request
//	hours_mentored  completed activities, one hour each
//	success_rate    accepted / all non-cancelled requests, rounded
func dashboardStats(t *tables, alumni int64) model.DashboardStats {
	mentees := map[int64]struct{}{}
	mine := map[int64]struct{}{}
	accepted, considered := 0, 0

	for _, req := range t.requests {
		if req.Alumni != alumni {
			continue
		}
		mine[req.ID] = struct{}{}
		if req.Status != model.RequestCancelled {
			considered++
		}
		if req.Status == model.RequestAccepted {
			accepted++
			mentees[req.Student] = struct{}{}
		}
	}

	hours := 0
	for _, act := range t.activities {
		if _, ok := mine[act.MentorshipRequest]; ok && act.Status == model.ActivityCompleted {
			hours++
		}
	}

	rate := 0.0
	if considered > 0 {
		rate = math.Round(float64(accepted) / float64(considered) * 100)
	}

	return model.DashboardStats{
		TotalMentees:  len(mentees),
		HoursMentored: hours,
		AvgRating:     avgRating,
		SuccessRate:   fmt.Sprintf("%d%%", int(rate)),
	}
}

func (s *Server) handleListMentorshipTypes(w http.ResponseWriter, r *http.Request) {
	var out []model.MentorshipType
	s.db.do(func(t *tables) error {
		out = slices.Clone(t.types)
		return nil
	})
	writeJSON(w, http.StatusOK, out)
}
