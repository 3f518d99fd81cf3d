// Package service owns the session lifecycle.
//
// AuthService is the only code that WRITES the session store. Resource
// calls in internal/api only read it (through the Authorize stage):
//
//	CLI / caller → AuthService → api.API (HTTP)
//	                           ↘ session.Store (persist / clear)
//
// KEY RULES:
//   - A session is saved whole, identity and token together, only after
//     the backend said yes.
//   - Profile endpoints answer without a token, so the token already held
//     is carried forward (model.Session.WithIdentity) on every re-save.
//   - Logout always clears locally, even if the backend can't be reached.
//     Account deletion clears only once the backend confirmed it.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/gradlink/internal/apiclient"
	"github.com/sakif/gradlink/internal/apperror"
	"github.com/sakif/gradlink/internal/model"
	"github.com/sakif/gradlink/internal/session"
)

// AccountAPI is the slice of the resource catalog AuthService needs.
// *api.API implements it.
type AccountAPI interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error)
	Signup(ctx context.Context, reg model.Registration) (*model.AuthResponse, error)
	Logout(ctx context.Context) error
	GetProfile(ctx context.Context) (*model.ProfileResponse, error)
	UpdateProfile(ctx context.Context, payload apiclient.Payload) (*model.ProfileResponse, error)
	DeleteProfile(ctx context.Context) error
}

// AuthService handles login, signup, profile refresh and logout.
//
// DEPENDENCIES (injected via NewAuthService):
//   - api     AccountAPI     → the backend
//   - store   session.Store  → where the session lives
//   - logger  *slog.Logger
type AuthService struct {
	api    AccountAPI
	store  session.Store
	logger *slog.Logger
}

func NewAuthService(api AccountAPI, store session.Store, logger *slog.Logger) *AuthService {
	return &AuthService{api: api, store: store, logger: logger}
}

// Login authenticates and persists the new session.
func (s *AuthService) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.saveFromAuth(ctx, resp, "login")
}

// Register creates the account and logs straight in with the token the
// signup response carries.
func (s *AuthService) Register(ctx context.Context, reg model.Registration) (*model.Session, error) {
	resp, err := s.api.Signup(ctx, reg)
	if err != nil {
		return nil, err
	}
	return s.saveFromAuth(ctx, resp, "signup")
}

func (s *AuthService) saveFromAuth(ctx context.Context, resp *model.AuthResponse, op string) (*model.Session, error) {
	sess := &model.Session{Identity: resp.User, Token: resp.Token}
	if err := s.store.Save(ctx, sess); err != nil {
		// The backend accepted us but answered without a usable token or
		// user; nothing was written.
		return nil, fmt.Errorf("%s: saving session: %w", op, err)
	}

	s.logger.Info("logged in",
		slog.Int64("userID", sess.Identity.ID),
		slog.String("username", sess.Identity.Username),
		slog.String("role", string(sess.Identity.Role)),
	)
	return sess, nil
}

// Current returns the stored session, or nil when logged out.
func (s *AuthService) Current(ctx context.Context) (*model.Session, error) {
	return s.store.Load(ctx)
}

// SyncProfile re-reads the caller's profile from the backend and stores
// it with the held token.
func (s *AuthService) SyncProfile(ctx context.Context) (*model.Session, error) {
	current, err := s.requireSession(ctx, "profile sync")
	if err != nil {
		return nil, err
	}

	resp, err := s.api.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	return s.resave(ctx, current, resp.User)
}

// UpdateProfile sends the changes and stores the updated identity with
// the held token. Without a session nothing is sent.
func (s *AuthService) UpdateProfile(ctx context.Context, payload apiclient.Payload) (*model.Session, error) {
	current, err := s.requireSession(ctx, "profile update")
	if err != nil {
		return nil, err
	}

	resp, err := s.api.UpdateProfile(ctx, payload)
	if err != nil {
		return nil, err
	}
	return s.resave(ctx, current, resp.User)
}

func (s *AuthService) requireSession(ctx context.Context, op string) (*model.Session, error) {
	current, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperror.Unauthorized(op + " requires a logged-in session")
	}
	return current, nil
}

func (s *AuthService) resave(ctx context.Context, current *model.Session, identity model.UserProfile) (*model.Session, error) {
	next := current.WithIdentity(identity)
	if err := s.store.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("saving updated profile: %w", err)
	}
	s.logger.Debug("profile stored", slog.Int64("userID", identity.ID))
	return &next, nil
}

// Logout tells the backend, then clears the local session regardless of
// the answer. Only a failure to clear is returned.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("backend logout failed, clearing local session anyway",
			slog.String("error", err.Error()),
		)
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// DeleteAccount deletes the caller's account. The local session is cleared
// only after the backend confirmed; on error it is kept.
func (s *AuthService) DeleteAccount(ctx context.Context) error {
	if err := s.api.DeleteProfile(ctx); err != nil {
		return err
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.logger.Info("account deleted")
	return nil
}
