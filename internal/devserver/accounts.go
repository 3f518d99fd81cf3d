package devserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sakif/gradlink/internal/apperror"
	"github.com/sakif/gradlink/internal/model"
)

// =========================================================================
// SIGNUP / LOGIN / LOGOUT
// =========================================================================

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if err := decodeJSON(r, &reg); err != nil {
		writeError(w, err)
		return
	}
	if err := validateRegistration(reg); err != nil {
		writeError(w, err)
		return
	}

	hash, err := s.passwords.Hash(reg.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	var user model.UserProfile
	err = s.db.do(func(t *tables) error {
		if _, taken := t.usernames[reg.Username]; taken {
			return apperror.ValidationFailed("username", "A user with that username already exists.")
		}
		u := &userRecord{passwordHash: hash, profile: model.UserProfile{
			ID:        t.nextID(),
			Username:  reg.Username,
			Email:     reg.Email,
			FirstName: reg.FirstName,
			LastName:  reg.LastName,
			Role:      reg.Role,
			Phone:     reg.Phone,
			College:   reg.College,
			Degree:    reg.Degree,
			BatchYear: reg.BatchYear,
			Bio:       reg.Bio,
		}}
		if reg.Role == model.RoleAlumni {
			u.profile.AlumniProfile = &model.AlumniProfile{
				JobTitle:        reg.JobTitle,
				CurrentCompany:  reg.CurrentCompany,
				WillingToMentor: reg.WillingToMentor,
				AvailableFor:    []model.MentorshipType{},
			}
		}
		t.users[u.profile.ID] = u
		t.usernames[u.profile.Username] = u.profile.ID
		user = u.profile
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info("user signed up",
		slog.Int64("userID", user.ID),
		slog.String("role", string(user.Role)),
	)
	writeJSON(w, http.StatusCreated, model.AuthResponse{Message: "Signup successful", Token: token, User: user})
}

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// validateRegistration applies the backend's signup rules. Cross-field
// failures are reported under non_field_errors, as the backend does.
func validateRegistration(reg model.Registration) error {
	switch {
	case strings.TrimSpace(reg.Username) == "":
		return apperror.ValidationFailed("username", "This field is required.")
	case reg.Password == "":
		return apperror.ValidationFailed("password", "This field is required.")
	case len(reg.Password) > maxPasswordBytes:
		return apperror.ValidationFailed("password", "Ensure this field has no more than 72 characters.")
	case !reg.Role.Valid():
		return apperror.ValidationFailed("role", strconv.Quote(string(reg.Role))+" is not a valid choice.")
	case reg.Password != reg.ConfirmPassword:
		return apperror.ValidationFailed("non_field_errors", "Passwords do not match")
	case reg.Role == model.RoleAlumni && (reg.JobTitle == "" || reg.CurrentCompany == ""):
		return apperror.ValidationFailed("non_field_errors", "Job title and company are required for alumni")
	}
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, err)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeError(w, apperror.ValidationFailed("", "Username and password required"))
		return
	}

	var (
		user model.UserProfile
		hash string
	)
	found := false
	s.db.do(func(t *tables) error {
		if id, ok := t.usernames[creds.Username]; ok {
			user, hash, found = t.users[id].profile, t.users[id].passwordHash, true
		}
		return nil
	})

	if !found || s.passwords.Verify(hash, creds.Password) != nil {
		s.logger.Warn("login rejected", slog.String("username", creds.Username))
		writeError(w, apperror.Unauthorized("Invalid credentials"))
		return
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.AuthResponse{Message: "Login successful", Token: token, User: user})
}

// handleLogout always succeeds: tokens are stateless, so there is nothing
// to revoke server-side.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// =========================================================================
// PROFILE
// =========================================================================

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	var user model.UserProfile
	err := s.db.do(func(t *tables) error {
		u, err := t.user(caller(r))
		if err != nil {
			return err
		}
		user = u.profile
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ProfileResponse{User: user})
}

// handleUpdateProfile is a partial update despite the PUT verb: only the
// fields present in the body change. It accepts JSON or multipart (for a
// new image).
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var user model.UserProfile
	err = s.db.do(func(t *tables) error {
		u, err := t.user(caller(r))
		if err != nil {
			return err
		}
		next := u.profile
		if err := applyProfileUpdate(t, &next, in); err != nil {
			return err
		}
		u.profile = next
		user = next
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ProfileResponse{Message: "Profile updated successfully", User: user})
}

// applyProfileUpdate writes the present fields of in onto p. p is a copy,
// so a validation failure halfway leaves the stored profile untouched.
func applyProfileUpdate(t *tables, p *model.UserProfile, in *input) error {
	for field, dst := range map[string]*string{
		"first_name": &p.FirstName,
		"last_name":  &p.LastName,
		"email":      &p.Email,
		"phone":      &p.Phone,
		"college":    &p.College,
		"degree":     &p.Degree,
		"bio":        &p.Bio,
	} {
		if in.has(field) {
			*dst = in.str(field)
		}
	}
	if in.has("batch_year") {
		if in.str("batch_year") == "" {
			p.BatchYear = 0
		} else {
			n, err := in.int("batch_year")
			if err != nil {
				return err
			}
			p.BatchYear = int(n)
		}
	}
	if fh := in.file("image"); fh != nil {
		path, err := t.saveUpload("profile_images", fh)
		if err != nil {
			return err
		}
		p.Image = path
	}

	if p.Role != model.RoleAlumni || p.AlumniProfile == nil {
		return nil
	}

	ap := *p.AlumniProfile
	for field, dst := range map[string]*string{
		"job_title":       &ap.JobTitle,
		"current_company": &ap.CurrentCompany,
		"industry":        &ap.Industry,
		"linkedin_url":    &ap.LinkedInURL,
	} {
		if in.has(field) {
			*dst = in.str(field)
		}
	}
	if in.has("years_of_experience") {
		ap.YearsOfExperience = nil
		if in.str("years_of_experience") != "" {
			n, err := in.int("years_of_experience")
			if err != nil {
				return err
			}
			years := int(n)
			ap.YearsOfExperience = &years
		}
	}
	if in.has("willing_to_mentor") {
		ap.WillingToMentor = in.bool("willing_to_mentor")
	}
	if in.has("available_for") {
		ids, err := in.ints("available_for")
		if err != nil {
			return err
		}
		types, err := t.mentorshipTypes(ids)
		if err != nil {
			return err
		}
		ap.AvailableFor = types
	}
	p.AlumniProfile = &ap
	return nil
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := caller(r)
	err := s.db.do(func(t *tables) error {
		if _, err := t.user(id); err != nil {
			return err
		}
		t.deleteUser(id)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("account deleted", slog.Int64("userID", id))
	w.WriteHeader(http.StatusNoContent)
}
