package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pingate-bank/web/internal/auth"
	"pingate-bank/web/internal/config"
	"pingate-bank/web/internal/pin"
)

type Server struct {
	cfg    config.Config
	auth   *auth.Service
	pins   *pin.Service
	logger *slog.Logger
	audit  *auditLogger
	router chi.Router
}

func NewServer(cfg config.Config, authSvc *auth.Service, pins *pin.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		auth:   authSvc,
		pins:   pins,
		logger: logger,
		audit:  newAuditLogger(logger),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = recoverMiddleware(s.logger)(h)
	h = securityHeaders(s.cfg.IsProduction())(h)
	h = admissionFilter(s.cfg.PreviewHosts)(h)
	h = requestIDMiddleware(h)
	h = loggingMiddleware(s.logger)(h)
	return h
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		s.registerDocs(r)

		r.Post("/auth/sign-up", s.handleSignUp)
		r.Post("/auth/sign-in", s.handleSignIn)
		r.Post("/auth/sign-out", s.handleSignOut)

		// The PIN handlers validate the body before consulting the guard.
		r.Post("/pin/set", s.handlePinSet)
		r.Post("/pin/verify", s.handlePinVerify)

		r.With(s.require(requireCustomer)).Get("/me", s.handleMe)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/logout", s.handleAdminLogout)
			r.Group(func(r chi.Router) {
				r.Use(s.require(requireAdminAPI))
				r.Post("/create", s.handleAdminCreate)
				r.Get("/users", s.handleAdminUsers)
			})
		})
	})

	s.registerUI(r)
	return r
}
