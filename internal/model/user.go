// Package model defines the data structures exchanged with the GradLink backend.
//
// These are client-side shapes: they mirror what the backend serializers
// emit, field for field, so the JSON tags use the backend's snake_case names.
// Fields the backend derives (full names, counts, flags) are marked
// read-only in their comments; the client must not rely on them being
// accepted on write.
package model

// Role tags a user as a student or an alumnus.
//
// The role is chosen at signup and never changes afterwards. Consumers
// branch on it (which dashboard, which actions) but the client never
// rewrites it.
type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAlumni
}

// UserProfile is the authenticated identity returned by login, signup and
// the profile endpoints.
//
// WHY *AlumniProfile?
// Only alumni have the nested sub-profile. The backend sends null for
// students, and a nil pointer keeps that distinction after a round trip
// through the session store.
type UserProfile struct {
	ID            int64          `json:"id"`
	Username      string         `json:"username"`
	Email         string         `json:"email"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	Role          Role           `json:"role"`
	Phone         string         `json:"phone,omitempty"`
	College       string         `json:"college"`
	Degree        string         `json:"degree"`
	BatchYear     int            `json:"batch_year"`
	Bio           string         `json:"bio,omitempty"`
	Image         string         `json:"image,omitempty"` // server-relative media path, see apiclient.Client.MediaURL
	AlumniProfile *AlumniProfile `json:"alumni_profile,omitempty"`
}

// FullName joins first and last name the way the backend does for its
// derived *_full_name fields.
func (u UserProfile) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// AlumniProfile is the alumni-only part of a UserProfile.
type AlumniProfile struct {
	JobTitle          string           `json:"job_title,omitempty"`
	CurrentCompany    string           `json:"current_company,omitempty"`
	Industry          string           `json:"industry,omitempty"`
	YearsOfExperience *int             `json:"years_of_experience,omitempty"`
	LinkedInURL       string           `json:"linkedin_url,omitempty"`
	WillingToMentor   bool             `json:"willing_to_mentor"`
	AvailableFor      []MentorshipType `json:"available_for"`
}

// AlumniCard is the compact directory entry returned by GET alumni/.
// Every field is derived server-side and read-only.
type AlumniCard struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Role       string   `json:"role"` // job title, not model.Role
	Company    string   `json:"company"`
	Dept       string   `json:"dept"`
	Batch      int      `json:"batch"`
	Skills     []string `json:"skills"`
	Mentorship bool     `json:"mentorship"`
	Industry   string   `json:"industry"`
	Image      string   `json:"image,omitempty"`
}

// DashboardStats is the alumni dashboard summary.
type DashboardStats struct {
	TotalMentees  int     `json:"total_mentees"`
	HoursMentored int     `json:"hours_mentored"`
	AvgRating     float64 `json:"avg_rating"`
	SuccessRate   string  `json:"success_rate"` // already formatted, e.g. "75%"
}
