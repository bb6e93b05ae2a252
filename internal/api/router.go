package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/convene/backend/internal/auth"
	"github.com/convene/backend/internal/domain"
	"github.com/convene/backend/internal/middleware"
)

// Router holds all handlers and creates the chi router
type Router struct {
	authHandler   *AuthHandler
	postHandler   *PostHandler
	storyHandler  *StoryHandler
	healthHandler *HealthHandler
	jwtManager    *auth.JWTManager
	logger        *zap.Logger
}

// NewRouter creates a new router
func NewRouter(
	authHandler *AuthHandler,
	postHandler *PostHandler,
	storyHandler *StoryHandler,
	healthHandler *HealthHandler,
	jwtManager *auth.JWTManager,
	logger *zap.Logger,
) *Router {
	return &Router{
		authHandler:   authHandler,
		postHandler:   postHandler,
		storyHandler:  storyHandler,
		healthHandler: healthHandler,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Setup configures and returns the chi router
func (rt *Router) Setup() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(middleware.CORSMiddleware())
	r.Use(chimiddleware.Compress(5))

	// Health endpoints (no auth required)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", rt.healthHandler.Health)
		r.Get("/ready", rt.healthHandler.Ready)
		r.Get("/live", rt.healthHandler.Live)
	})

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", rt.authHandler.Register)
			r.Post("/login", rt.authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthMiddleware(rt.jwtManager))
				r.Post("/refresh", rt.authHandler.Refresh)
				r.Get("/me", rt.authHandler.Me)
				r.Put("/me", rt.authHandler.UpdateMe)
				r.Post("/fcm-token", rt.authHandler.UpdateFCMToken)
			})
		})

		// Post routes
		r.Route("/posts", func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.jwtManager))

			r.Get("/", rt.postHandler.List)
			r.Get("/{id}", rt.postHandler.Get)

			r.With(middleware.RequireRole(string(domain.RoleOrganizer))).
				Post("/", rt.postHandler.Create)
			r.Put("/{id}", rt.postHandler.Update)
			r.Delete("/{id}", rt.postHandler.Delete)

			r.Post("/{id}/like", rt.postHandler.Like)
			r.Delete("/{id}/like", rt.postHandler.Unlike)
			r.Get("/{id}/likes", rt.postHandler.ListLikes)
			r.Post("/{id}/comments", rt.postHandler.AddComment)
			r.Get("/{id}/comments", rt.postHandler.ListComments)
		})

		// Story routes
		r.Route("/stories", func(r chi.Router) {
			// Invoked by an external scheduler, no auth
			r.Post("/expire-old", rt.storyHandler.ExpireOld)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthMiddleware(rt.jwtManager))

				r.Get("/", rt.storyHandler.List)
				r.Get("/{id}", rt.storyHandler.View)
				r.Get("/author/{authorID}", rt.storyHandler.ListByAuthor)
				r.Get("/{id}/views", rt.storyHandler.Views)

				r.With(middleware.RequireRole(string(domain.RoleOrganizer))).
					Post("/", rt.storyHandler.Create)
				r.Put("/{id}", rt.storyHandler.Update)
				r.Delete("/{id}", rt.storyHandler.Delete)
			})
		})
	})

	return r
}
