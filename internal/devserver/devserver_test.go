// End-to-end tests: the real client stack (session store, apiclient with
// its transport chain, api catalog, AuthService) against the devserver.
package devserver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/gradlink/internal/api"
	"github.com/sakif/gradlink/internal/apiclient"
	"github.com/sakif/gradlink/internal/apperror"
	"github.com/sakif/gradlink/internal/devserver"
	"github.com/sakif/gradlink/internal/model"
	"github.com/sakif/gradlink/internal/service"
	"github.com/sakif/gradlink/internal/session"
)

// =========================================================================
// HARNESS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestServer(t *testing.T, seed bool) *httptest.Server {
	t.Helper()

	srv, err := devserver.New(devserver.Config{
		JWTSecret:    "devserver-test-secret-0123456789",
		PasswordCost: bcrypt.MinCost,
		Seed:         seed,
	}, testLogger())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// actor is one CLI installation: its own session store and client.
type actor struct {
	api   *api.API
	auth  *service.AuthService
	store session.Store
}

func newActor(t *testing.T, ts *httptest.Server) *actor {
	t.Helper()

	store := session.New(session.NewMemoryStorage(), testLogger())
	client, err := apiclient.New(apiclient.Config{BaseURL: ts.URL + "/api/", Timeout: 5 * time.Second}, store, testLogger())
	require.NoError(t, err)

	a := api.New(client)
	return &actor{api: a, auth: service.NewAuthService(a, store, testLogger()), store: store}
}

func registration(username string, role model.Role) model.Registration {
	reg := model.Registration{
		Username:        username,
		Email:           username + "@uni.test",
		Password:        "pass-" + username,
		ConfirmPassword: "pass-" + username,
		FirstName:       strings.ToUpper(username[:1]) + username[1:],
		LastName:        "Tester",
		Role:            role,
		College:         "GradLink University",
		Degree:          "Computer Science",
		BatchYear:       2024,
	}
	if role == model.RoleAlumni {
		reg.JobTitle = "Engineer"
		reg.CurrentCompany = "Acme"
		reg.WillingToMentor = true
	}
	return reg
}

// signedUp returns an actor already logged in as a new user.
func signedUp(t *testing.T, ts *httptest.Server, username string, role model.Role) (*actor, *model.Session) {
	t.Helper()

	a := newActor(t, ts)
	sess, err := a.auth.Register(context.Background(), registration(username, role))
	require.NoError(t, err)
	return a, sess
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func backendMessage(t *testing.T, err error) string {
	t.Helper()

	var apiErr *apiclient.Error
	require.True(t, errors.As(err, &apiErr), "want *apiclient.Error, got %T: %v", err, err)
	return apiErr.Message()
}

// =========================================================================
// ACCOUNTS
// =========================================================================

func TestSignupStoresSession(t *testing.T) {
	ts := newTestServer(t, false)
	ctx := context.Background()

	a, sess := signedUp(t, ts, "sam", model.RoleStudent)

	assert.True(t, sess.Valid())
	assert.Equal(t, "sam", sess.Identity.Username)
	assert.Nil(t, sess.Identity.AlumniProfile)

	stored, err := a.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, stored.Token)

	prof, err := a.api.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.Identity.ID, prof.User.ID)
}

func TestSignupAlumniGetsSubProfile(t *testing.T) {
	ts := newTestServer(t, false)

	_, sess := signedUp(t, ts, "ada", model.RoleAlumni)

	require.NotNil(t, sess.Identity.AlumniProfile)
	assert.Equal(t, "Engineer", sess.Identity.AlumniProfile.JobTitle)
	assert.Equal(t, "Acme", sess.Identity.AlumniProfile.CurrentCompany)
}

func TestSignupValidation(t *testing.T) {
	ts := newTestServer(t, false)
	signedUp(t, ts, "taken", model.RoleStudent)

	mismatch := registration("mia", model.RoleStudent)
	mismatch.ConfirmPassword = "something-else"

	noCompany := registration("al", model.RoleAlumni)
	noCompany.CurrentCompany = ""

	tests := []struct {
		name    string
		reg     model.Registration
		wantMsg string
	}{
		{"passwords differ", mismatch, "Passwords do not match"},
		{"alumni without company", noCompany, "Job title and company are required for alumni"},
		{"duplicate username", registration("taken", model.RoleStudent), "username: A user with that username already exists."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newActor(t, ts)

			_, err := a.auth.Register(context.Background(), tt.reg)

			require.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.wantMsg, backendMessage(t, err))

			sess, err := a.store.Load(context.Background())
			require.NoError(t, err)
			assert.Nil(t, sess, "a failed signup must not create a session")
		})
	}
}

func TestLoginErrors(t *testing.T) {
	ts := newTestServer(t, false)
	signedUp(t, ts, "sam", model.RoleStudent)
	a := newActor(t, ts)
	ctx := context.Background()

	_, err := a.auth.Login(ctx, model.Credentials{Username: "sam", Password: "wrong"})
	require.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", backendMessage(t, err))

	_, err = a.auth.Login(ctx, model.Credentials{Username: "sam"})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "Username and password required", backendMessage(t, err))

	sess, err := a.auth.Login(ctx, model.Credentials{Username: "sam", Password: "pass-sam"})
	require.NoError(t, err)
	assert.Equal(t, "sam", sess.Identity.Username)
}

func TestUpdateProfileKeepsToken(t *testing.T) {
	ts := newTestServer(t, false)
	a, before := signedUp(t, ts, "ada", model.RoleAlumni)
	ctx := context.Background()

	types, err := a.api.ListMentorshipTypes(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, types)

	after, err := a.auth.UpdateProfile(ctx, apiclient.JSON(map[string]any{
		"bio":                 "Hello",
		"industry":            "Software",
		"years_of_experience": 7,
		"available_for":       []int64{types[0].ID},
	}))
	require.NoError(t, err)

	assert.Equal(t, before.Token, after.Token)
	assert.Equal(t, "Hello", after.Identity.Bio)
	assert.Equal(t, "Ada", after.Identity.FirstName, "absent fields are left alone")
	require.NotNil(t, after.Identity.AlumniProfile)
	assert.Equal(t, "Software", after.Identity.AlumniProfile.Industry)
	require.NotNil(t, after.Identity.AlumniProfile.YearsOfExperience)
	assert.Equal(t, 7, *after.Identity.AlumniProfile.YearsOfExperience)
	assert.Equal(t, []model.MentorshipType{types[0]}, after.Identity.AlumniProfile.AvailableFor)
}

func TestUpdateProfileImageIsServed(t *testing.T) {
	ts := newTestServer(t, false)
	a, _ := signedUp(t, ts, "sam", model.RoleStudent)

	form := apiclient.NewForm().
		Set("first_name", "Samuel").
		AddFile("image", "me.png", strings.NewReader("not really a png"))

	sess, err := a.auth.UpdateProfile(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, "Samuel", sess.Identity.FirstName)
	require.True(t, strings.HasPrefix(sess.Identity.Image, "/media/profile_images/"), sess.Identity.Image)

	resp, err := http.Get(a.api.MediaURL(sess.Identity.Image))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "not really a png", string(body))
}

func TestLogoutDropsCredentials(t *testing.T) {
	ts := newTestServer(t, false)
	a, _ := signedUp(t, ts, "sam", model.RoleStudent)
	ctx := context.Background()

	_, err := a.api.ListAlumni(ctx)
	require.NoError(t, err)

	require.NoError(t, a.auth.Logout(ctx))

	_, err = a.api.ListAlumni(ctx)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestDeleteAccount(t *testing.T) {
	ts := newTestServer(t, false)
	a, _ := signedUp(t, ts, "sam", model.RoleStudent)
	ctx := context.Background()

	require.NoError(t, a.auth.DeleteAccount(ctx))

	sess, err := a.store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, err = a.auth.Login(ctx, model.Credentials{Username: "sam", Password: "pass-sam"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

// =========================================================================
// EVENTS
// =========================================================================

func newEvent(title string) model.EventInput {
	return model.EventInput{
		Title:       title,
		Description: "talk",
		Date:        "2030-05-01",
		Time:        "18:30:00",
		Location:    "Hall A",
		Type:        model.EventOffline,
	}
}

func TestEventsReadableAnonymously(t *testing.T) {
	ts := newTestServer(t, false)
	organizer, _ := signedUp(t, ts, "ada", model.RoleAlumni)
	ctx := context.Background()

	_, err := organizer.api.CreateEvent(ctx, newEvent("Meetup"))
	require.NoError(t, err)

	events, err := newActor(t, ts).api.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ada", events[0].OrganizerName)
	assert.False(t, events[0].IsRegistered)
	assert.Nil(t, events[0].Participants)

	_, err = newActor(t, ts).api.CreateEvent(ctx, newEvent("Anonymous"))
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestEventRegistrationToggles(t *testing.T) {
	ts := newTestServer(t, false)
	organizer, _ := signedUp(t, ts, "ada", model.RoleAlumni)
	student, _ := signedUp(t, ts, "sam", model.RoleStudent)
	ctx := context.Background()

	ev, err := organizer.api.CreateEvent(ctx, newEvent("Meetup"))
	require.NoError(t, err)

	status, err := student.api.ToggleEventRegistration(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "registered", status.Status)

	seen, err := student.api.ListEvents(ctx)
	require.NoError(t, err)
	assert.True(t, seen[0].IsRegistered)
	assert.Equal(t, 1, seen[0].ParticipantsCount)
	assert.Nil(t, seen[0].Participants, "only the organizer sees participants")

	own, err := organizer.api.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, own[0].Participants, 1)
	assert.Equal(t, "sam", own[0].Participants[0].Username)

	status, err = student.api.ToggleEventRegistration(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "unregistered", status.Status)
}

func TestEventEditIsOrganizerOnly(t *testing.T) {
	ts := newTestServer(t, false)
	organizer, _ := signedUp(t, ts, "ada", model.RoleAlumni)
	other, _ := signedUp(t, ts, "sam", model.RoleStudent)
	ctx := context.Background()

	ev, err := organizer.api.CreateEvent(ctx, newEvent("Meetup"))
	require.NoError(t, err)

	_, err = other.api.UpdateEvent(ctx, ev.ID, newEvent("Hijacked"))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.ErrorIs(t, other.api.DeleteEvent(ctx, ev.ID), apperror.ErrForbidden)

	updated, err := organizer.api.UpdateEvent(ctx, ev.ID, newEvent("Renamed"))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	require.NoError(t, organizer.api.DeleteEvent(ctx, ev.ID))
	assert.ErrorIs(t, organizer.api.DeleteEvent(ctx, ev.ID), apperror.ErrNotFound)
}

// =========================================================================
// ALUMNI AND MENTORSHIP
// =========================================================================

func TestAlumniDirectory(t *testing.T) {
	ts := newTestServer(t, false)
	_, alumni := signedUp(t, ts, "ada", model.RoleAlumni)
	student, sess := signedUp(t, ts, "sam", model.RoleStudent)
	ctx := context.Background()

	cards, err := student.api.ListAlumni(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Ada Tester", cards[0].Name)
	assert.Equal(t, "Engineer", cards[0].Role)
	assert.True(t, cards[0].Mentorship)

	full, err := student.api.GetAlumni(ctx, alumni.Identity.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", full.Username)

	_, err = student.api.GetAlumni(ctx, sess.Identity.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "students are not in the alumni directory")
}

func TestMentorshipFlow(t *testing.T) {
	ts := newTestServer(t, false)
	mentor, mentorSess := signedUp(t, ts, "ada", model.RoleAlumni)
	student, _ := signedUp(t, ts, "sam", model.RoleStudent)
	outsider, _ := signedUp(t, ts, "eve", model.RoleStudent)
	ctx := context.Background()

	types, err := student.api.ListMentorshipTypes(ctx)
	require.NoError(t, err)

	req, err := student.api.CreateMentorshipRequest(ctx, model.MentorshipRequestInput{
		Alumni:          mentorSess.Identity.ID,
		MentorshipTypes: []int64{types[0].ID},
		Message:         "Could you review my resume?",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)
	assert.Equal(t, "ada", req.AlumniName)
	assert.Equal(t, []model.MentorshipType{types[0]}, req.MentorshipTypesDetails)

	// === Wrong parties ===
	_, err = student.api.AcceptMentorshipRequest(ctx, req.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Equal(t, "Not authorized", backendMessage(t, err))

	_, err = mentor.api.CancelMentorshipRequest(ctx, req.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = outsider.api.AcceptMentorshipRequest(ctx, req.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "requests of others are invisible")

	// === Accept ===
	status, err := mentor.api.AcceptMentorshipRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "accepted", status.Status)

	accepted, err := mentor.api.ListMentorshipRequests(ctx, model.RequestFilter{Status: model.RequestAccepted})
	require.NoError(t, err)
	assert.Len(t, accepted, 1)

	pending, err := student.api.ListMentorshipRequests(ctx, model.RequestFilter{Status: model.RequestPending})
	require.NoError(t, err)
	assert.Empty(t, pending)

	// === Activities ===
	act, err := mentor.api.CreateMentorshipActivity(ctx, apiclient.JSON(model.ActivityInput{
		MentorshipRequest: req.ID,
		Title:             "Resume walkthrough",
		Status:            model.ActivityCompleted,
	}))
	require.NoError(t, err)
	assert.Equal(t, model.ActivityCompleted, act.Status)

	_, err = outsider.api.CreateMentorshipActivity(ctx, apiclient.JSON(model.ActivityInput{
		MentorshipRequest: req.ID,
		Title:             "Sneaky",
	}))
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "You are not part of this mentorship request.", backendMessage(t, err))

	seen, err := student.api.ListMentorshipActivities(ctx, model.ActivityFilter{RequestID: req.ID})
	require.NoError(t, err)
	require.Len(t, seen, 1)

	none, err := outsider.api.ListMentorshipActivities(ctx, model.ActivityFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)

	// === Dashboard ===
	stats, err := mentor.api.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardStats{TotalMentees: 1, HoursMentored: 1, AvgRating: 4.9, SuccessRate: "100%"}, *stats)

	_, err = student.api.DashboardStats(ctx)
	require.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Equal(t, "Only alumni can access this endpoint", backendMessage(t, err))
}

func TestActivityWithFileAndPatch(t *testing.T) {
	ts := newTestServer(t, false)
	mentor, mentorSess := signedUp(t, ts, "ada", model.RoleAlumni)
	student, _ := signedUp(t, ts, "sam", model.RoleStudent)
	ctx := context.Background()

	req, err := student.api.CreateMentorshipRequest(ctx, model.MentorshipRequestInput{Alumni: mentorSess.Identity.ID})
	require.NoError(t, err)

	form := apiclient.NewForm().
		Set("mentorship_request", formatInt(req.ID)).
		Set("title", "Draft CV").
		AddFile("file", "cv.pdf", strings.NewReader("%PDF"))

	act, err := student.api.CreateMentorshipActivity(ctx, form)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(act.File, "/media/mentorship_files/"), act.File)

	done := model.ActivityCompleted
	patched, err := mentor.api.UpdateMentorshipActivity(ctx, act.ID, apiclient.JSON(model.ActivityUpdate{Status: &done}))
	require.NoError(t, err)
	assert.Equal(t, model.ActivityCompleted, patched.Status)
	assert.Equal(t, "Draft CV", patched.Title)
	assert.Equal(t, act.File, patched.File)

	require.NoError(t, student.api.DeleteMentorshipActivity(ctx, act.ID))
	left, err := mentor.api.ListMentorshipActivities(ctx, model.ActivityFilter{})
	require.NoError(t, err)
	assert.Empty(t, left)
}

// =========================================================================
// JOBS AND REFERRALS
// =========================================================================

func TestJobsAndReferrals(t *testing.T) {
	ts := newTestServer(t, false)
	poster, _ := signedUp(t, ts, "ada", model.RoleAlumni)
	student, _ := signedUp(t, ts, "sam", model.RoleStudent)
	ctx := context.Background()

	in := model.JobInput{Title: "Intern", Company: "Acme", Location: "Remote", Description: "Go"}

	_, err := student.api.CreateJob(ctx, in)
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "Only alumni can post jobs.", backendMessage(t, err))

	job, err := poster.api.CreateJob(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, model.JobFullTime, job.JobType)
	assert.Equal(t, "ada", job.PostedByName)

	mine, err := poster.api.ListJobs(ctx, model.JobFilter{Mine: true})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	studentMine, err := student.api.ListJobs(ctx, model.JobFilter{Mine: true})
	require.NoError(t, err)
	assert.Empty(t, studentMine)
	board, err := student.api.ListJobs(ctx, model.JobFilter{})
	require.NoError(t, err)
	assert.Len(t, board, 1)

	title := "Senior Intern"
	_, err = student.api.UpdateJob(ctx, job.ID, model.JobUpdate{Title: &title})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	// === Referral ===
	ref, err := student.api.CreateReferral(ctx, apiclient.NewForm().
		Set("job", formatInt(job.ID)).
		Set("message", "Keen to apply").
		AddFile("resume", "resume.pdf", strings.NewReader("%PDF-1.4")))
	require.NoError(t, err)
	assert.Equal(t, model.ReferralPending, ref.Status)
	assert.Equal(t, "Intern", ref.JobTitle)
	assert.True(t, strings.HasPrefix(ref.Resume, "/media/resumes/"), ref.Resume)

	_, err = poster.api.CreateReferral(ctx, apiclient.NewForm().
		Set("job", formatInt(job.ID)).
		AddFile("resume", "resume.pdf", strings.NewReader("%PDF-1.4")))
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "Only students can request referrals.", backendMessage(t, err))

	inbox, err := poster.api.ListReferrals(ctx)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "sam", inbox[0].StudentName)

	referred := model.ReferralReferred
	_, err = student.api.UpdateReferral(ctx, ref.ID, model.ReferralUpdate{Status: &referred})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := poster.api.UpdateReferral(ctx, ref.ID, model.ReferralUpdate{Status: &referred})
	require.NoError(t, err)
	assert.Equal(t, model.ReferralReferred, updated.Status)

	// Deleting the job takes its referrals with it.
	require.NoError(t, poster.api.DeleteJob(ctx, job.ID))
	gone, err := student.api.ListReferrals(ctx)
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestReferralWithoutResumeFromJSONClient(t *testing.T) {
	ts := newTestServer(t, false)
	poster, _ := signedUp(t, ts, "ada", model.RoleAlumni)
	student, _ := signedUp(t, ts, "sam", model.RoleStudent)
	ctx := context.Background()

	job, err := poster.api.CreateJob(ctx, model.JobInput{Title: "Intern", Company: "Acme", Location: "Remote", Description: "Go"})
	require.NoError(t, err)

	// The catalog refuses to send this; a raw JSON request reaches the
	// server, which refuses it too.
	client, err := apiclient.New(apiclient.Config{BaseURL: ts.URL + "/api/"}, student.store, testLogger())
	require.NoError(t, err)
	err = client.Do(ctx, http.MethodPost, "referrals/", nil, apiclient.JSON(map[string]any{"job": job.ID}), nil)
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "resume: No file was submitted.", backendMessage(t, err))
}

// =========================================================================
// SEED
// =========================================================================

func TestSeededDemoAccounts(t *testing.T) {
	ts := newTestServer(t, true)
	a := newActor(t, ts)
	ctx := context.Background()

	sess, err := a.auth.Login(ctx, model.Credentials{Username: devserver.DemoStudent, Password: devserver.DemoPassword})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, sess.Identity.Role)

	events, err := a.api.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	jobs, err := a.api.ListJobs(ctx, model.JobFilter{})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	alumni, err := a.api.ListAlumni(ctx)
	require.NoError(t, err)
	require.Len(t, alumni, 1)
	assert.Equal(t, []string{"Career Guidance", "Resume Review"}, alumni[0].Skills)
}
