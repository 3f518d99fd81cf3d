package devserver

import (
	"cmp"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/gradlink/internal/apperror"
	"github.com/sakif/gradlink/internal/model"
)

// db is the devserver's whole state. It lives in memory and is gone on
// restart.
//
// LOCKING:
// Handlers run one transaction at a time through do(). A dev server sees
// a handful of requests per second, and a single lock keeps every
// multi-table rule (permissions, cascades) trivially consistent.
type db struct {
	mu sync.Mutex
	t  tables
}

type tables struct {
	lastID int64
	now    func() time.Time

	users      map[int64]*userRecord
	usernames  map[string]int64
	types      []model.MentorshipType
	events     map[int64]*eventRecord
	requests   map[int64]*model.MentorshipRequest
	activities map[int64]*model.MentorshipActivity
	jobs       map[int64]*model.Job
	referrals  map[int64]*model.Referral
	media      map[string]mediaFile
}

type userRecord struct {
	profile      model.UserProfile
	passwordHash string
}

type eventRecord struct {
	event      model.Event // derived fields are filled in per viewer
	registered []int64     // user IDs in registration order
}

type mediaFile struct {
	contentType string
	data        []byte
}

func newDB(now func() time.Time) *db {
	return &db{t: tables{
		now:        now,
		users:      map[int64]*userRecord{},
		usernames:  map[string]int64{},
		events:     map[int64]*eventRecord{},
		requests:   map[int64]*model.MentorshipRequest{},
		activities: map[int64]*model.MentorshipActivity{},
		jobs:       map[int64]*model.Job{},
		referrals:  map[int64]*model.Referral{},
		media:      map[string]mediaFile{},
	}}
}

func (d *db) do(fn func(t *tables) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(&d.t)
}

// nextID is shared by every table; ids are unique across the server,
// which makes mix-ups in tests fail loudly.
func (t *tables) nextID() int64 {
	t.lastID++
	return t.lastID
}

// =========================================================================
// LOOKUPS
// =========================================================================

func (t *tables) user(id int64) (*userRecord, error) {
	u, ok := t.users[id]
	if !ok {
		return nil, apperror.NotFound("user", fmt.Sprint(id))
	}
	return u, nil
}

func (t *tables) mentorshipTypes(ids []int64) ([]model.MentorshipType, error) {
	out := make([]model.MentorshipType, 0, len(ids))
	for _, id := range ids {
		i := slices.IndexFunc(t.types, func(mt model.MentorshipType) bool { return mt.ID == id })
		if i < 0 {
			return nil, apperror.ValidationFailed("mentorship_types", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
		out = append(out, t.types[i])
	}
	return out, nil
}

// =========================================================================
// MEDIA
// =========================================================================

// saveUpload stores an uploaded file and returns its server-relative
// /media/ path, the same shape the backend returns for FileFields.
func (t *tables) saveUpload(dir string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	p := "/media/" + dir + "/" + xid.New().String() + "_" + path.Base(fh.Filename)
	t.media[p] = mediaFile{contentType: fh.Header.Get("Content-Type"), data: data}
	return p, nil
}

// =========================================================================
// RENDERING (derived, per-viewer fields)
// =========================================================================

func (t *tables) renderEvent(rec *eventRecord, viewer int64) model.Event {
	ev := rec.event
	ev.RegisteredUsers = slices.Clone(rec.registered)
	ev.ParticipantsCount = len(rec.registered)
	ev.IsRegistered = viewer != 0 && slices.Contains(rec.registered, viewer)
	if org, ok := t.users[ev.Organizer]; ok {
		ev.OrganizerName = org.profile.Username
	}
	if viewer != 0 && viewer == ev.Organizer {
		ev.Participants = []model.Participant{}
		for _, id := range rec.registered {
			if u, ok := t.users[id]; ok {
				ev.Participants = append(ev.Participants, model.Participant{
					ID:        u.profile.ID,
					Username:  u.profile.Username,
					FirstName: u.profile.FirstName,
					LastName:  u.profile.LastName,
					Email:     u.profile.Email,
				})
			}
		}
	}
	return ev
}

func (t *tables) renderRequest(req *model.MentorshipRequest) model.MentorshipRequest {
	out := *req
	out.MentorshipTypes = slices.Clone(req.MentorshipTypes)
	if s, ok := t.users[req.Student]; ok {
		out.StudentName = s.profile.Username
		out.StudentFullName = s.profile.FirstName + " " + s.profile.LastName
		out.StudentDept = s.profile.Degree
		out.StudentImage = s.profile.Image
	}
	if a, ok := t.users[req.Alumni]; ok {
		out.AlumniName = a.profile.Username
		out.AlumniFullName = a.profile.FirstName + " " + a.profile.LastName
		out.AlumniImage = a.profile.Image
		if ap := a.profile.AlumniProfile; ap != nil {
			out.AlumniCompany = ap.CurrentCompany
			out.AlumniRole = ap.JobTitle
		}
	}
	out.MentorshipTypesDetails, _ = t.mentorshipTypes(req.MentorshipTypes)
	return out
}

func (t *tables) renderJob(job *model.Job) model.Job {
	out := *job
	if u, ok := t.users[job.PostedBy]; ok {
		out.PostedByName = u.profile.Username
		out.PostedByFullName = u.profile.FirstName + " " + u.profile.LastName
	}
	return out
}

func (t *tables) renderReferral(ref *model.Referral) model.Referral {
	out := *ref
	if u, ok := t.users[ref.Student]; ok {
		out.StudentName = u.profile.Username
		out.StudentFullName = u.profile.FirstName + " " + u.profile.LastName
	}
	if job, ok := t.jobs[ref.Job]; ok {
		out.JobTitle = job.Title
		out.Company = job.Company
	}
	return out
}

func alumniCard(u model.UserProfile) model.AlumniCard {
	card := model.AlumniCard{
		ID:     u.ID,
		Name:   u.FirstName + " " + u.LastName,
		Dept:   u.Degree,
		Batch:  u.BatchYear,
		Image:  u.Image,
		Skills: []string{},
	}
	if ap := u.AlumniProfile; ap != nil {
		card.Role = ap.JobTitle
		card.Company = ap.CurrentCompany
		card.Industry = ap.Industry
		card.Mentorship = ap.WillingToMentor
		for _, mt := range ap.AvailableFor {
			card.Skills = append(card.Skills, mt.Name)
		}
	}
	return card
}

// newestFirst sorts by timestamp descending, newer ids first on ties.
func newestFirst[T any](items []T, at func(T) time.Time, id func(T) int64) {
	slices.SortFunc(items, func(a, b T) int {
		if c := at(b).Compare(at(a)); c != 0 {
			return c
		}
		return cmp.Compare(id(b), id(a))
	})
}

// =========================================================================
// CASCADES
// =========================================================================

// deleteUser removes a user and everything that references them, the way
// the backend's ON DELETE CASCADE foreign keys do.
func (t *tables) deleteUser(id int64) {
	u, ok := t.users[id]
	if !ok {
		return
	}
	delete(t.usernames, u.profile.Username)
	delete(t.users, id)

	for eid, ev := range t.events {
		if ev.event.Organizer == id {
			delete(t.events, eid)
			continue
		}
		ev.registered = slices.DeleteFunc(ev.registered, func(uid int64) bool { return uid == id })
	}
	for rid, req := range t.requests {
		if req.Student == id || req.Alumni == id {
			delete(t.requests, rid)
			for aid, act := range t.activities {
				if act.MentorshipRequest == rid {
					delete(t.activities, aid)
				}
			}
		}
	}
	for jid, job := range t.jobs {
		if job.PostedBy == id {
			delete(t.jobs, jid)
		}
	}
	for rid, ref := range t.referrals {
		if ref.Student == id || t.jobs[ref.Job] == nil {
			delete(t.referrals, rid)
		}
	}
}
