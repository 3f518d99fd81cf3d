package model

import "time"

// MentorshipType is reference data ("Career Guidance", "Mock Interview", ...).
type MentorshipType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RequestStatus is the lifecycle state of a MentorshipRequest.
//
// STATE MACHINE (enforced by the backend, never computed here):
//
//	pending ──► accepted
//	        ├─► rejected
//	        └─► cancelled
//
// The client only ASKS for a transition through the accept/reject/cancel
// endpoints and then shows whatever the backend answers.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// Terminal reports whether no further transition is offered from s.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestAccepted, RequestRejected, RequestCancelled:
		return true
	}
	return false
}

// MentorshipRequest is a student's proposal to an alumnus.
type MentorshipRequest struct {
	ID              int64         `json:"id"`
	Student         int64         `json:"student"`
	Alumni          int64         `json:"alumni"`
	Message         string        `json:"message,omitempty"`
	MentorshipTypes []int64       `json:"mentorship_types"`
	Status          RequestStatus `json:"status"`
	RequestedAt     time.Time     `json:"requested_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	// Read-only, derived server-side.
	StudentName            string           `json:"student_name,omitempty"`
	StudentFullName        string           `json:"student_full_name,omitempty"`
	StudentDept            string           `json:"student_dept,omitempty"`
	StudentImage           string           `json:"student_image,omitempty"`
	AlumniName             string           `json:"alumni_name,omitempty"`
	AlumniFullName         string           `json:"alumni_full_name,omitempty"`
	AlumniCompany          string           `json:"alumni_company,omitempty"`
	AlumniRole             string           `json:"alumni_role,omitempty"`
	AlumniImage            string           `json:"alumni_image,omitempty"`
	MentorshipTypesDetails []MentorshipType `json:"mentorship_types_details,omitempty"`
}

// MentorshipRequestInput is the body of POST mentorship-requests/.
// The student is taken from the token, never from the body.
type MentorshipRequestInput struct {
	Alumni          int64   `json:"alumni"`
	MentorshipTypes []int64 `json:"mentorship_types"`
	Message         string  `json:"message,omitempty"`
}

// RequestFilter narrows GET mentorship-requests/.
type RequestFilter struct {
	Status RequestStatus
}

// ActivityStatus is the progress state of a MentorshipActivity.
type ActivityStatus string

const (
	ActivityPending    ActivityStatus = "pending"
	ActivityScheduled  ActivityStatus = "scheduled"
	ActivityInProgress ActivityStatus = "in_progress"
	ActivityCompleted  ActivityStatus = "completed"
)

// MentorshipActivity is a note, file submission or scheduled session
// attached to exactly one MentorshipRequest.
type MentorshipActivity struct {
	ID                int64          `json:"id"`
	MentorshipRequest int64          `json:"mentorship_request"`
	Title             string         `json:"title"`
	Description       string         `json:"description,omitempty"`
	Status            ActivityStatus `json:"status"`
	Date              *time.Time     `json:"date,omitempty"`
	File              string         `json:"file,omitempty"`
	MeetingLink       string         `json:"meeting_link,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// ActivityInput is the JSON body for creating an activity without a file.
// Attach a file by sending an apiclient.Form instead.
type ActivityInput struct {
	MentorshipRequest int64          `json:"mentorship_request"`
	Title             string         `json:"title"`
	Description       string         `json:"description,omitempty"`
	Status            ActivityStatus `json:"status,omitempty"`
	Date              *time.Time     `json:"date,omitempty"`
	MeetingLink       string         `json:"meeting_link,omitempty"`
}

// ActivityUpdate is a partial update: nil fields are left untouched.
type ActivityUpdate struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Status      *ActivityStatus `json:"status,omitempty"`
	Date        *time.Time      `json:"date,omitempty"`
	MeetingLink *string         `json:"meeting_link,omitempty"`
}

// ActivityFilter narrows GET mentorship-activities/. Zero values mean "all".
type ActivityFilter struct {
	RequestID int64
	Status    ActivityStatus
}
