// Package devserver is a local, in-memory stand-in for the GradLink
// backend.
//
// It speaks the same contract the real backend does: the same paths with
// trailing slashes, "Authorization: Token <t>" credentials, the same
// JSON and multipart bodies and the same error shapes. The CLI can be
// pointed at it for offline work, and the client packages run their
// end-to-end tests against it.
//
// Tokens are JWTs from auth.TokenService and passwords are bcrypt
// hashes, so the credential path is real even though storage is not.
package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/gradlink/internal/apperror"
	"github.com/sakif/gradlink/internal/auth"
	"github.com/sakif/gradlink/internal/middleware"
)

// Config holds devserver configuration.
type Config struct {
	Port      int
	JWTSecret string

	// PasswordCost is the bcrypt cost. Zero means the auth package default;
	// tests lower it to keep signups fast.
	PasswordCost int

	// Seed preloads two demo accounts, an event and a job posting.
	Seed bool
}

// Server is the devserver: router, state and credential services.
type Server struct {
	router    *chi.Mux
	config    Config
	logger    *slog.Logger
	db        *db
	tokens    *auth.TokenService
	passwords *auth.PasswordService
}

// New builds a Server with an empty database (plus demo data when
// cfg.Seed is set).
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	passwords := auth.NewPasswordService()
	if cfg.PasswordCost != 0 {
		passwords = auth.NewPasswordServiceWithCost(cfg.PasswordCost)
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		db:        newDB(time.Now),
		tokens:    tokens,
		passwords: passwords,
	}
	s.db.do(func(t *tables) error {
		seedMentorshipTypes(t)
		return nil
	})
	if cfg.Seed {
		if err := s.seed(); err != nil {
			return nil, fmt.Errorf("seeding demo data: %w", err)
		}
	}

	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes mounts everything under /api/, mirroring the backend.
//
// ROUTES:
//
//	POST   /api/signup/                              public
//	POST   /api/login/                               public
//	POST   /api/logout/                              public
//	GET    /api/events/                              optional auth
//	GET    /api/events/{id}/                         optional auth
//	GET    /api/profile/update/   PUT                auth
//	DELETE /api/delete-profile/                      auth
//	POST   /api/events/  PUT/DELETE /{id}/  POST /{id}/register/
//	GET    /api/alumni/  /{id}/  /dashboard-stats/
//	GET    /api/mentorship-types/
//	GET    /api/mentorship-requests/  POST  /{id}/accept|reject|cancel/
//	CRUD   /api/mentorship-activities/
//	CRUD   /api/jobs/
//	GET    /api/referrals/  POST  PATCH /{id}/
//	GET    /media/*                                  public
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.RequestLogger(s.logger))

	s.router.Get("/media/*", s.handleMedia)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/signup/", s.handleSignup)
		r.Post("/login/", s.handleLogin)
		r.Post("/logout/", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(s.tokens))
			r.Get("/events/", s.handleListEvents)
			r.Get("/events/{id}/", s.handleGetEvent)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.tokens))

			r.Get("/profile/update/", s.handleGetProfile)
			r.Put("/profile/update/", s.handleUpdateProfile)
			r.Delete("/delete-profile/", s.handleDeleteProfile)

			r.Post("/events/", s.handleCreateEvent)
			r.Put("/events/{id}/", s.handleUpdateEvent)
			r.Delete("/events/{id}/", s.handleDeleteEvent)
			r.Post("/events/{id}/register/", s.handleToggleRegistration)

			r.Get("/alumni/", s.handleListAlumni)
			r.Get("/alumni/dashboard-stats/", s.handleDashboardStats)
			r.Get("/alumni/{id}/", s.handleGetAlumni)

			r.Get("/mentorship-types/", s.handleListMentorshipTypes)

			r.Get("/mentorship-requests/", s.handleListRequests)
			r.Post("/mentorship-requests/", s.handleCreateRequest)
			r.Get("/mentorship-requests/{id}/", s.handleGetRequest)
			r.Post("/mentorship-requests/{id}/accept/", s.handleRequestTransition(transitionAccept))
			r.Post("/mentorship-requests/{id}/reject/", s.handleRequestTransition(transitionReject))
			r.Post("/mentorship-requests/{id}/cancel/", s.handleRequestTransition(transitionCancel))

			r.Get("/mentorship-activities/", s.handleListActivities)
			r.Post("/mentorship-activities/", s.handleCreateActivity)
			r.Get("/mentorship-activities/{id}/", s.handleGetActivity)
			r.Patch("/mentorship-activities/{id}/", s.handleUpdateActivity)
			r.Delete("/mentorship-activities/{id}/", s.handleDeleteActivity)

			r.Get("/jobs/", s.handleListJobs)
			r.Post("/jobs/", s.handleCreateJob)
			r.Get("/jobs/{id}/", s.handleGetJob)
			r.Patch("/jobs/{id}/", s.handleUpdateJob)
			r.Delete("/jobs/{id}/", s.handleDeleteJob)

			r.Get("/referrals/", s.handleListReferrals)
			r.Post("/referrals/", s.handleCreateReferral)
			r.Patch("/referrals/{id}/", s.handleUpdateReferral)
		})
	})
}

// Start runs the devserver until SIGINT or SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("devserver starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d/api/", s.config.Port)),
			slog.Bool("seeded", s.config.Seed),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("devserver stopped gracefully")
	}

	return nil
}

// caller returns the authenticated user's id. Routes behind RequireAuth
// always have one.
func caller(r *http.Request) int64 {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

// pathID parses {id}. A malformed id cannot name an object, so it is a 404
// like any other unknown id.
func pathID(r *http.Request, resource string) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NotFound(resource, raw)
	}
	return id, nil
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	var (
		f  mediaFile
		ok bool
	)
	s.db.do(func(t *tables) error {
		f, ok = t.media[r.URL.Path]
		return nil
	})
	if !ok {
		http.NotFound(w, r)
		return
	}
	if f.contentType != "" {
		w.Header().Set("Content-Type", f.contentType)
	}
	w.Write(f.data)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
