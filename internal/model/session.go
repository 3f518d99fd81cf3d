package model

// Session is the locally persisted pair of identity and token.
//
// INVARIANT:
// A session is either absent entirely (logged out) or carries BOTH an
// identity and a token. Stores refuse to persist anything else, and a
// stored value that breaks the rule is read back as "no session".
type Session struct {
	Identity UserProfile `json:"identity"`
	Token    string      `json:"token"`
}

// Valid reports whether the session satisfies the identity+token invariant.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.Identity.ID != 0
}

// WithIdentity returns a copy of s carrying the new identity and the SAME
// token.
//
// The profile endpoints answer with an updated identity but never with a
// token, so the held token has to be carried forward by hand before the
// session is saved again.
func (s Session) WithIdentity(u UserProfile) Session {
	s.Identity = u
	return s
}

// Credentials is the body of POST login/.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the body of POST signup/.
//
// The alumni-only fields are required by the backend when Role is
// RoleAlumni and ignored otherwise.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Role            Role   `json:"role"`
	Phone           string `json:"phone,omitempty"`
	College         string `json:"college"`
	Degree          string `json:"degree"`
	BatchYear       int    `json:"batch_year"`
	Bio             string `json:"bio,omitempty"`

	JobTitle        string `json:"job_title,omitempty"`
	CurrentCompany  string `json:"current_company,omitempty"`
	WillingToMentor bool   `json:"willing_to_mentor"`
}

// AuthResponse is returned by login/ and signup/.
type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserProfile `json:"user"`
}

// ProfileResponse is returned by GET and PUT profile/update/. Note: no token.
type ProfileResponse struct {
	Message string      `json:"message,omitempty"`
	User    UserProfile `json:"user"`
}

// StatusResponse is the small {"status": "..."} body the action endpoints
// (accept, reject, cancel, register) answer with.
type StatusResponse struct {
	Status string `json:"status"`
}
