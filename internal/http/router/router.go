package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/cache"
	"github.com/induskill/marketplace-api/internal/config"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/http/handler"
	"github.com/induskill/marketplace-api/internal/http/middleware"
	"github.com/induskill/marketplace-api/internal/web"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/induskill/marketplace-api/docs" // registers the swagger spec
)

type Router struct {
	cfg               *config.Config
	logger            *zap.Logger
	authMiddleware    *auth.Middleware
	rateLimiter       *middleware.RateLimiter
	catalogCache      cache.Provider
	courseHandler     *handler.CourseHandler
	partnerHandler    *handler.PartnerHandler
	enrollmentHandler *handler.EnrollmentHandler
	contactHandler    *handler.ContactHandler
	userHandler       *handler.UserHandler
	dashboardHandler  *handler.DashboardHandler
	healthHandler     *handler.HealthHandler
	mediaHandler      *handler.MediaHandler
	webHandler        *web.Handler
}

// NewRouter wires handlers to routes. catalogCache and mediaHandler may be nil
// when caching is disabled or images are stored in the cloud.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	catalogCache cache.Provider,
	courseHandler *handler.CourseHandler,
	partnerHandler *handler.PartnerHandler,
	enrollmentHandler *handler.EnrollmentHandler,
	contactHandler *handler.ContactHandler,
	userHandler *handler.UserHandler,
	dashboardHandler *handler.DashboardHandler,
	healthHandler *handler.HealthHandler,
	mediaHandler *handler.MediaHandler,
	webHandler *web.Handler,
) *Router {
	return &Router{
		cfg:               cfg,
		logger:            logger,
		authMiddleware:    authMiddleware,
		rateLimiter:       rateLimiter,
		catalogCache:      catalogCache,
		courseHandler:     courseHandler,
		partnerHandler:    partnerHandler,
		enrollmentHandler: enrollmentHandler,
		contactHandler:    contactHandler,
		userHandler:       userHandler,
		dashboardHandler:  dashboardHandler,
		healthHandler:     healthHandler,
		mediaHandler:      mediaHandler,
		webHandler:        webHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		r.Use(chimiddleware.Timeout(timeout))
	}

	// Probes
	r.Get("/health", rt.healthHandler.Live)
	r.Get("/health/db", rt.healthHandler.Database)
	r.Get("/health/ready", rt.healthHandler.Ready)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	if rt.mediaHandler != nil {
		r.With(rt.rateLimiter.LimitByIP).Get("/media/*", rt.mediaHandler.Serve)
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes; a session, when present, widens what the catalog shows
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.OptionalAuthenticate)
			r.Use(rt.rateLimiter.Limit)

			r.Group(func(r chi.Router) {
				if rt.catalogCache != nil {
					r.Use(middleware.ResponseCache(rt.catalogCache, rt.cfg.Cache.TTLDuration(), rt.logger))
				}
				r.Get("/courses", rt.courseHandler.List)
				r.Get("/courses/featured", rt.courseHandler.Featured)
				r.Get("/courses/{id}", rt.courseHandler.GetByID)
				r.Get("/partners", rt.partnerHandler.List)
				r.Get("/partners/industries", rt.partnerHandler.Industries)
				r.Get("/partners/{id}", rt.partnerHandler.GetByID)
			})

			r.Post("/contact", rt.contactHandler.Submit)
		})

		// Signed-in routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			r.Post("/enroll", rt.enrollmentHandler.Enroll)
			r.Get("/enrollments/me", rt.enrollmentHandler.ListMine)

			r.Post("/sync-user", rt.userHandler.SyncUser)
			r.Get("/get-user-role", rt.userHandler.GetUserRole)
			r.Get("/profile", rt.userHandler.GetProfile)
			r.Put("/update-profile", rt.userHandler.UpdateProfile)

			r.Get("/dashboard/{role}", rt.dashboardHandler.Get)

			// Course authoring; ownership is checked by the service
			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleTrainer))
				r.Post("/courses", rt.courseHandler.Create)
				r.Put("/courses/{id}", rt.courseHandler.Update)
				r.Post("/courses/{id}/image", rt.courseHandler.UploadImage)
			})

			// Administration
			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)

				r.Delete("/courses/{id}", rt.courseHandler.Delete)

				r.Post("/partners", rt.partnerHandler.Create)
				r.Put("/partners/{id}", rt.partnerHandler.Update)
				r.Delete("/partners/{id}", rt.partnerHandler.Delete)

				r.Put("/enrollments/{id}/status", rt.enrollmentHandler.UpdateStatus)

				r.Get("/contact", rt.contactHandler.List)
				r.Get("/contact/{id}", rt.contactHandler.GetByID)
				r.Put("/contact/{id}/status", rt.contactHandler.UpdateStatus)
				r.Post("/contact/{id}/reply", rt.contactHandler.Reply)

				r.Put("/users/{id}/role", rt.userHandler.AssignRole)
				r.Put("/users/{id}/partner", rt.userHandler.AssignPartner)
			})
		})
	})

	// Server-rendered pages
	r.Group(func(r chi.Router) {
		r.Use(rt.authMiddleware.OptionalAuthenticate)
		r.Use(rt.rateLimiter.Limit)

		r.Get("/", rt.webHandler.Home)
		r.Get("/courses", rt.webHandler.Courses)
		r.Get("/courses/{id}", rt.webHandler.Course)
		r.Post("/courses/{id}/enroll", rt.webHandler.Enroll)
		r.Get("/partners", rt.webHandler.Partners)
		r.Get("/contact", rt.webHandler.ContactForm)
		r.Post("/contact", rt.webHandler.ContactSubmit)
		r.Get("/dashboard", rt.webHandler.Dashboard)
		r.Get("/dashboard/{role}", rt.webHandler.RoleDashboard)
		r.Post("/theme", rt.webHandler.ToggleTheme)
	})
	r.NotFound(rt.webHandler.NotFound)

	return r
}
