package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/facegate/facegate/internal/gate"
	"github.com/facegate/facegate/internal/web/handlers"
	"github.com/facegate/facegate/internal/web/middleware"
)

func (s *Server) setupRoutes(extractor gate.Extractor) {
	rec := s.config.Recognition
	audit := gate.NewAudit(s.store)
	capture := gate.NewCapture(s.store, extractor, audit, rec.TicketTTL(), rec.EmbeddingDim)
	matcher := gate.NewMatcher(s.store, rec.MatchThreshold)
	sessions := gate.NewSessions(s.store, audit)
	enroller := gate.NewEnroller(s.store, s.store, audit)

	captureHandler := handlers.NewCaptureHandler(capture)
	registerHandler := handlers.NewRegisterHandler(enroller)
	approveHandler := handlers.NewApproveHandler(capture, matcher, sessions, audit)
	sessionHandler := handlers.NewSessionHandler(sessions)
	adminHandler := handlers.NewAdminHandler(s.store, s.adminSessions, audit)
	healthHandler := handlers.NewHealthHandler(s.store)

	// Health check (no auth required)
	s.router.Get("/health", healthHandler.Check)

	s.router.Route("/api", func(r chi.Router) {
		// Enrollment flow
		r.Post("/capture-face", captureHandler.CaptureFace)
		r.Post("/clear-face", captureHandler.ClearFace)
		r.Post("/register-entry", registerHandler.RegisterEntry)

		// Access flow
		r.Post("/approve-face", approveHandler.ApproveFace)
		r.Get("/session/{sessionID}", sessionHandler.Get)
		r.Post("/end-session", sessionHandler.End)

		// Admin console
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminHandler.Login)
			r.Post("/logout", adminHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(s.adminSessions))

				r.Get("/users", adminHandler.Users)
				r.Get("/logs", adminHandler.Logs)
				r.Delete("/user", adminHandler.DeleteUser)
				r.Put("/user", adminHandler.EditUser)
			})
		})
	})
}
