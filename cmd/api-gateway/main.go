package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/handler"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/jobs"
	"github.com/noah-isme/timetable-api/pkg/logger"
)

// @title Campus Timetable API
// @version 1.0.0
// @description Courses, time slots, timing change requests and preference polls
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type sessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

type auditSink interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repository.NewEntityStore()
	if cfg.SeedDemo {
		if err := repository.SeedDemoData(store); err != nil {
			logr.Fatal("failed to seed demo data", zap.Error(err))
		}
	}
	users := repository.NewUserDirectory(repository.DemoUsers()...)
	readiness := map[string]handler.ReadinessCheck{}

	var redisClient *redis.Client
	if cfg.Session.Backend == config.SessionBackendRedis || cfg.Realtime.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		readiness["redis"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return redisClient.Ping(pingCtx).Err()
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	var sessions sessionStore
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		sessions = repository.NewRedisSessionRepository(cacheRepo)
	case config.SessionBackendBolt:
		boltSessions, err := repository.OpenBoltSessionRepository(cfg.Session.BoltPath)
		if err != nil {
			logr.Fatal("failed to open session db", zap.Error(err))
		}
		defer boltSessions.Close() //nolint:errcheck
		sessions = boltSessions
	default:
		sessions = repository.NewMemorySessionRepository()
	}

	var audit auditSink
	if cfg.Audit.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close() //nolint:errcheck
		auditRepo := repository.NewAuditRepository(db)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			logr.Fatal("failed to prepare audit schema", zap.Error(err))
		}
		audit = auditRepo
		readiness["postgres"] = db.Ping
	}

	metrics := service.NewMetricsService()
	if err := metrics.RegisterGauge("timetable_pending_timing_requests", "Timing change requests awaiting review", func() float64 {
		pending := 0
		for _, r := range store.TimingRequests() {
			if r.Status == models.RequestStatusPending {
				pending++
			}
		}
		return float64(pending)
	}); err != nil {
		logr.Warn("failed to register pending requests gauge", zap.Error(err))
	}

	validate := validator.New()
	requestOpts := []service.TimingRequestServiceOption{
		service.WithTimingRequestMetrics(metrics),
		service.WithTimingRequestAudit(audit),
	}

	var queue *jobs.Queue
	if cfg.Realtime.Enabled {
		dispatcher := service.NewNotificationDispatcher(cacheRepo, cfg.Realtime.Channel, metrics, logr)
		queue = jobs.NewQueue("notifications", dispatcher.Handle, jobs.QueueConfig{
			Workers:    cfg.Realtime.Workers,
			MaxRetries: cfg.Realtime.MaxRetries,
			Logger:     logr,
		})
		dispatcher.Attach(queue)
		// Detached from ctx so Stop can drain pending publishes after a signal.
		queue.Start(context.Background())
		requestOpts = append(requestOpts, service.WithTimingRequestPublisher(dispatcher))
	}

	authSvc := service.NewAuthService(users, sessions, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		SessionTTL:        cfg.Session.TTL,
		Issuer:            cfg.JWT.Issuer,
	}, service.WithAuthMetrics(metrics), service.WithAuthAudit(audit))

	r := newRouter(routerDeps{
		apiPrefix:      cfg.APIPrefix,
		allowedOrigins: cfg.CORS.AllowedOrigins,
		enableDocs:     cfg.Env != config.EnvProduction,
		logger:         logr,
		metrics:        metrics,
		loginLimiter:   middleware.NewIPRateLimiter(cfg.Login.RatePerSecond, cfg.Login.Burst),
		readiness:      readiness,
		auth:           authSvc,
		courses:        service.NewCourseService(store, validate, audit, logr),
		timeSlots:      service.NewTimeSlotService(store, validate, audit, logr),
		rooms:          service.NewRoomService(store),
		requests:       service.NewTimingRequestService(store, users, validate, logr, requestOpts...),
		polls:          service.NewPollService(store, validate, logr, service.WithPollMetrics(metrics), service.WithPollAudit(audit)),
		notifications:  service.NewNotificationService(store, logr),
		dashboard:      service.NewDashboardService(store, logr),
		export:         service.NewExportService(store, logr),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "sessions", cfg.Session.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
	if queue != nil {
		if err := queue.Stop(shutdownCtx); err != nil {
			logr.Warn("notification queue shutdown", zap.Error(err))
		}
	}
}
