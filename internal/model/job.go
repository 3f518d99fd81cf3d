package model

import "time"

// JobType is the employment type of a Job posting.
type JobType string

const (
	JobFullTime   JobType = "full_time"
	JobInternship JobType = "internship"
	JobContract   JobType = "contract"
)

// Job is a posting published by an alumnus on the referral board.
type Job struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	JobType     JobType   `json:"job_type"`
	Link        string    `json:"link,omitempty"`
	PostedAt    time.Time `json:"posted_at"`
	PostedBy    int64     `json:"posted_by"`

	PostedByName     string `json:"posted_by_name,omitempty"`
	PostedByFullName string `json:"posted_by_full_name,omitempty"`
}

// JobInput is the body of POST jobs/.
type JobInput struct {
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	JobType     JobType `json:"job_type,omitempty"`
	Link        string  `json:"link,omitempty"`
}

// JobUpdate is a partial update of a Job.
type JobUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Company     *string  `json:"company,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Description *string  `json:"description,omitempty"`
	JobType     *JobType `json:"job_type,omitempty"`
	Link        *string  `json:"link,omitempty"`
}

// JobFilter narrows GET jobs/.
type JobFilter struct {
	Mine bool // my_jobs=true: only jobs posted by the caller
}

// ReferralStatus is driven by the alumnus who posted the job.
type ReferralStatus string

const (
	ReferralPending  ReferralStatus = "pending"
	ReferralViewed   ReferralStatus = "viewed"
	ReferralReferred ReferralStatus = "referred"
	ReferralRejected ReferralStatus = "rejected"
)

// Referral links a student, with a resume, to a Job.
type Referral struct {
	ID          int64          `json:"id"`
	Job         int64          `json:"job"`
	Student     int64          `json:"student"`
	Message     string         `json:"message,omitempty"`
	Resume      string         `json:"resume"`
	Status      ReferralStatus `json:"status"`
	RequestedAt time.Time      `json:"requested_at"`

	StudentName     string `json:"student_name,omitempty"`
	StudentFullName string `json:"student_full_name,omitempty"`
	JobTitle        string `json:"job_title,omitempty"`
	Company         string `json:"company,omitempty"`
}

// ReferralUpdate is a partial update of a Referral, in practice a status change.
type ReferralUpdate struct {
	Status  *ReferralStatus `json:"status,omitempty"`
	Message *string         `json:"message,omitempty"`
}
