package devserver

import (
	"slices"
	"time"

	"github.com/sakif/gradlink/internal/model"
)

var mentorshipTypeNames = []string{
	"Career Guidance",
	"Resume Review",
	"Mock Interview",
	"Technical Mentoring",
	"Higher Studies",
}

func seedMentorshipTypes(t *tables) {
	for _, name := range mentorshipTypeNames {
		t.types = append(t.types, model.MentorshipType{ID: t.nextID(), Name: name})
	}
}

// Demo accounts created by Config.Seed. Passwords are public on purpose:
// the devserver only ever runs on a developer machine.
const (
	DemoStudent  = "demo_student"
	DemoAlumni   = "demo_alumni"
	DemoPassword = "gradlink-demo"
)

// seed adds one student, one alumnus, an event and a job posting, enough
// to exercise every CLI command without signing up first.
func (s *Server) seed() error {
	hash, err := s.passwords.Hash(DemoPassword)
	if err != nil {
		return err
	}

	return s.db.do(func(t *tables) error {
		now := t.now().UTC()
		years := 6

		alumni := &userRecord{passwordHash: hash, profile: model.UserProfile{
			ID:        t.nextID(),
			Username:  DemoAlumni,
			Email:     "alumni@gradlink.test",
			FirstName: "Ada",
			LastName:  "Lovelace",
			Role:      model.RoleAlumni,
			College:   "GradLink University",
			Degree:    "Computer Science",
			BatchYear: 2018,
			AlumniProfile: &model.AlumniProfile{
				JobTitle:          "Staff Engineer",
				CurrentCompany:    "Analytical Engines",
				Industry:          "Software",
				YearsOfExperience: &years,
				WillingToMentor:   true,
				AvailableFor:      slices.Clone(t.types[:2]),
			},
		}}
		student := &userRecord{passwordHash: hash, profile: model.UserProfile{
			ID:        t.nextID(),
			Username:  DemoStudent,
			Email:     "student@gradlink.test",
			FirstName: "Sam",
			LastName:  "Lee",
			Role:      model.RoleStudent,
			College:   "GradLink University",
			Degree:    "Computer Science",
			BatchYear: 2026,
		}}
		for _, u := range []*userRecord{alumni, student} {
			t.users[u.profile.ID] = u
			t.usernames[u.profile.Username] = u.profile.ID
		}

		ev := &eventRecord{event: model.Event{
			ID:          t.nextID(),
			Title:       "Alumni Tech Talk",
			Description: "Career paths in systems engineering.",
			Date:        now.AddDate(0, 0, 14).Format(time.DateOnly),
			Time:        "18:30:00",
			Location:    "https://meet.gradlink.test/tech-talk",
			Type:        model.EventOnline,
			Organizer:   alumni.profile.ID,
			CreatedAt:   now,
		}}
		t.events[ev.event.ID] = ev

		job := &model.Job{
			ID:          t.nextID(),
			Title:       "Backend Intern",
			Company:     "Analytical Engines",
			Location:    "Remote",
			Description: "Go services and data pipelines.",
			JobType:     model.JobInternship,
			PostedBy:    alumni.profile.ID,
			PostedAt:    now,
		}
		t.jobs[job.ID] = job
		return nil
	})
}
