package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/induskill/marketplace-api/docs"
	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/cache"
	"github.com/induskill/marketplace-api/internal/config"
	"github.com/induskill/marketplace-api/internal/database"
	"github.com/induskill/marketplace-api/internal/http/handler"
	"github.com/induskill/marketplace-api/internal/http/middleware"
	"github.com/induskill/marketplace-api/internal/http/router"
	"github.com/induskill/marketplace-api/internal/jobs"
	"github.com/induskill/marketplace-api/internal/logger"
	"github.com/induskill/marketplace-api/internal/mailer"
	"github.com/induskill/marketplace-api/internal/repository"
	"github.com/induskill/marketplace-api/internal/service"
	"github.com/induskill/marketplace-api/internal/storage"
	"github.com/induskill/marketplace-api/internal/web"
	"go.uber.org/zap"
)

// @title InduSkill Marketplace API
// @version 1.0
// @description Industrial training marketplace: course catalog, partner directory, enrollments, contact inbox and role dashboards
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@induskill.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Identity provider session token (Bearer)

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	docs.SwaggerInfo.Host = swaggerHost(&basicCfg.App)

	// In staging/production with USE_AZURE_KEY_VAULT=true secrets come from Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// The catalog cache is optional; without Redis every read hits the database
	var cacheProvider cache.Provider = cache.Noop{}
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, &cfg.Cache)
		if err != nil {
			log.Warn("Redis unavailable, continuing without catalog cache",
				zap.String("addr", cfg.Cache.Addr()),
				zap.Error(err),
			)
		} else {
			cacheProvider = redisCache
			log.Info("Catalog cache connected",
				zap.String("addr", cfg.Cache.Addr()),
				zap.Duration("ttl", cfg.Cache.TTLDuration()),
			)
		}
	} else {
		log.Info("Catalog cache disabled")
	}
	invalidator := cache.NewCatalogInvalidator(cacheProvider)

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	smtpMailer := mailer.NewSMTPMailer(&cfg.Mail, log)
	if !cfg.Mail.Enabled() {
		log.Info("SMTP host not configured, contact replies will be logged only")
	}

	identityClient := auth.NewIdentityClient(&cfg.Identity)
	if !identityClient.Enabled() {
		log.Info("Identity provider secret key not configured, roles are stored in the database only")
	}

	maxImageBytes := cfg.Storage.MaxUploadSizeMB * 1024 * 1024

	// Repositories
	courseRepo := repository.NewCourseRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	messageRepo := repository.NewContactMessageRepository(db)
	profileRepo := repository.NewUserProfileRepository(db)

	// Services
	courseService := service.NewCourseService(courseRepo, partnerRepo, fileStorage, invalidator, maxImageBytes, log)
	partnerService := service.NewPartnerService(partnerRepo, invalidator, log)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, invalidator, log)
	contactService := service.NewContactService(messageRepo, smtpMailer, cfg.App.Name, log)
	userService := service.NewUserService(profileRepo, partnerRepo, identityClient, log)
	dashboardService := service.NewDashboardService(courseRepo, partnerRepo, enrollmentRepo, messageRepo, profileRepo, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(cfg, profileRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	courseHandler := handler.NewCourseHandler(courseService, maxImageBytes, log)
	partnerHandler := handler.NewPartnerHandler(partnerService, log)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService, log)
	contactHandler := handler.NewContactHandler(contactService, log)
	userHandler := handler.NewUserHandler(userService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	healthHandler := handler.NewHealthHandler(db, cacheProvider, log)

	// Local uploads are served by the API; blob storage serves its own URLs
	var mediaHandler *handler.MediaHandler
	if cfg.Storage.Mode == "local" {
		mediaHandler = handler.NewMediaHandler(fileStorage, log)
	}

	webHandler, err := web.NewHandler(&cfg.Web, &cfg.App, courseService, partnerService, enrollmentService, contactService, dashboardService, log)
	if err != nil {
		return fmt.Errorf("failed to load page templates: %w", err)
	}

	var catalogCache cache.Provider
	if cfg.Cache.Enabled {
		catalogCache = cacheProvider
	}

	rt := router.NewRouter(
		cfg,
		log,
		authMiddleware,
		rateLimiter,
		catalogCache,
		courseHandler,
		partnerHandler,
		enrollmentHandler,
		contactHandler,
		userHandler,
		dashboardHandler,
		healthHandler,
		mediaHandler,
		webHandler,
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.CourseStatsEnabled {
		scheduler = jobs.NewScheduler(log, cfg.Jobs.CourseStatsTimeoutDuration())
		if err := jobs.RegisterCourseStatsJob(
			scheduler,
			courseService,
			log,
			cfg.Jobs.CourseStatsCron,
			true,
		); err != nil {
			log.Error("Failed to register course stats job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
			next, _ := scheduler.Next(jobs.CourseStatsJobName)
			log.Info("Scheduler started with course stats job",
				zap.String("cron_expr", cfg.Jobs.CourseStatsCron),
				zap.Duration("timeout", cfg.Jobs.CourseStatsTimeoutDuration()),
				zap.Time("next_run", next),
			)
		}
	} else {
		log.Info("Course stats job disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if err := cacheProvider.Close(); err != nil {
			log.Warn("Error closing cache connection", zap.Error(err))
		}
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("Error closing database connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

// swaggerHost points the interactive docs at the public host outside development
func swaggerHost(app *config.AppConfig) string {
	switch app.Environment {
	case "staging", "production":
		if u, err := url.Parse(app.PublicURL); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return fmt.Sprintf("localhost:%d", app.Port)
}
