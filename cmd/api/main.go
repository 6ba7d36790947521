package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sport-meetup-api/api/swagger"
	"github.com/noah-isme/sport-meetup-api/internal/handler"
	"github.com/noah-isme/sport-meetup-api/internal/middleware"
	"github.com/noah-isme/sport-meetup-api/internal/monitor"
	"github.com/noah-isme/sport-meetup-api/internal/repository"
	"github.com/noah-isme/sport-meetup-api/internal/service"
	"github.com/noah-isme/sport-meetup-api/pkg/cache"
	"github.com/noah-isme/sport-meetup-api/pkg/config"
	"github.com/noah-isme/sport-meetup-api/pkg/database"
	"github.com/noah-isme/sport-meetup-api/pkg/export"
	"github.com/noah-isme/sport-meetup-api/pkg/jobs"
	"github.com/noah-isme/sport-meetup-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sport-meetup-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sport-meetup-api/pkg/middleware/requestid"
)

// @title Sport Meetup API
// @version 1.0.0
// @description Organise and join local sport activities, one-off or recurring.
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// listings still work uncached
		logr.Warn("redis unavailable, listing cache disabled", zap.Error(err))
		redisClient = nil
	}
	cacheEnabled := cfg.Listing.CacheEnabled && redisClient != nil

	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	queue := jobs.NewQueue("listing", jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})

	validate := validator.New()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Listing.CacheTTL, logr, cacheEnabled)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	activitySvc := service.NewActivityService(service.ActivityServiceParams{
		Activities:   activityRepo,
		Participants: participantRepo,
		Cache:        cacheSvc,
		Queue:        queue,
		Metrics:      metrics,
		Validator:    validate,
		Logger:       logr,
		Config: service.ActivityServiceConfig{
			DefaultPageSize: cfg.Listing.DefaultPageSize,
			MaxPageSize:     cfg.Listing.MaxPageSize,
			CandidateLimit:  cfg.Listing.CandidateLimit,
			CacheTTL:        cfg.Listing.CacheTTL,
			APIPrefix:       cfg.APIPrefix,
		},
	})
	participationSvc := service.NewParticipationService(activityRepo, participantRepo, cacheSvc, queue, metrics, logr)
	dashboardSvc := service.NewDashboardService(activityRepo, participantRepo, logr, service.DashboardServiceConfig{
		HomeSectionSize: cfg.Listing.HomeSectionSize,
	})
	exportSvc := service.NewExportService(
		activityRepo,
		export.NewICSExporter(cfg.Export.ProductID),
		export.NewCSVExporter(),
		export.NewPDFExporter(),
		logr,
		service.ExportConfig{EventDuration: cfg.Export.EventDuration, UpcomingLimit: cfg.Export.UpcomingLimit},
	)

	queue.Handle(service.JobInvalidateListings, activitySvc.InvalidateListings)
	queue.Start(ctx)
	defer queue.Stop()

	if cfg.Monitor.Enabled {
		activeMonitor := monitor.NewActiveActivities(activityRepo, metrics, logr)
		if err := activeMonitor.Start(ctx, cfg.Monitor.Spec); err != nil {
			return err
		}
		defer activeMonitor.Stop()
	}

	router := newRouter(cfg, logr, routes{
		auth:       handler.NewAuthHandler(authSvc, handler.SessionCookie{Name: cfg.JWT.CookieName, Secure: cfg.JWT.CookieSecure}),
		activities: handler.NewActivityHandler(activitySvc, participationSvc),
		exports:    handler.NewExportHandler(exportSvc),
		dashboard:  handler.NewDashboardHandler(dashboardSvc),
		metrics: handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
			"database": db.PingContext,
			"cache": func(ctx context.Context) error {
				if !cacheEnabled {
					return nil
				}
				return cacheRepo.Ping(ctx)
			},
		}),
		authSvc:     authSvc,
		metricsSvc:  metrics,
		cookieName:  cfg.JWT.CookieName,
		development: cfg.Env != config.EnvProduction,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type routes struct {
	auth        *handler.AuthHandler
	activities  *handler.ActivityHandler
	exports     *handler.ExportHandler
	dashboard   *handler.DashboardHandler
	metrics     *handler.MetricsHandler
	authSvc     *service.AuthService
	metricsSvc  *service.MetricsService
	cookieName  string
	development bool
}

func newRouter(cfg *config.Config, logr *zap.Logger, rt routes) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(rt.metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", rt.metrics.Health)
	r.GET("/ready", rt.metrics.Ready)
	r.GET("/metrics", rt.metrics.Prometheus)
	if rt.development {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAuth := middleware.JWT(rt.authSvc, rt.cookieName)
	optionalAuth := middleware.OptionalJWT(rt.authSvc, rt.cookieName)

	api := r.Group("/" + strings.Trim(cfg.APIPrefix, "/"))

	auth := api.Group("/auth")
	auth.POST("/register", rt.auth.Register)
	auth.POST("/login", rt.auth.Login)
	auth.POST("/logout", rt.auth.Logout)
	auth.GET("/me", requireAuth, rt.auth.Me)

	api.GET("/home", optionalAuth, rt.dashboard.Home)
	api.GET("/dashboard", requireAuth, rt.dashboard.Dashboard)

	activities := api.Group("/activities")
	activities.GET("", optionalAuth, rt.activities.List)
	activities.POST("", requireAuth, rt.activities.Create)
	activities.GET("/:id", optionalAuth, rt.activities.Get)
	activities.PATCH("/:id", requireAuth, rt.activities.Update)
	activities.DELETE("/:id", requireAuth, rt.activities.Delete)
	activities.POST("/:id/join", requireAuth, rt.activities.Join)
	activities.POST("/:id/leave", requireAuth, rt.activities.Leave)
	activities.GET("/:id/calendar.ics", rt.exports.ICS)
	activities.GET("/:id/calendar/google", rt.exports.GoogleCalendar)
	activities.GET("/:id/schedule.csv", rt.exports.ScheduleCSV)
	activities.GET("/:id/schedule.pdf", rt.exports.SchedulePDF)

	return r
}
