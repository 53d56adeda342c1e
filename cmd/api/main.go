package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/calendar"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/config"
	appointmentHandler "github.com/SebasQuintero99/LandingPageMiAbogada/internal/handler/appointment"
	authHandler "github.com/SebasQuintero99/LandingPageMiAbogada/internal/handler/auth"
	contactHandler "github.com/SebasQuintero99/LandingPageMiAbogada/internal/handler/contact"
	healthHandler "github.com/SebasQuintero99/LandingPageMiAbogada/internal/handler/health"
	settingsHandler "github.com/SebasQuintero99/LandingPageMiAbogada/internal/handler/settings"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/middleware"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository/postgres"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/router"
	appointmentService "github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/appointment"
	authService "github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/auth"
	contactService "github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/contact"
	notificationService "github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/notification"
	scheduleService "github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/schedule"
	settingsService "github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/settings"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/auth"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/email"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/logger"
	redisBroker "github.com/SebasQuintero99/LandingPageMiAbogada/pkg/messaging/redis"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/metrics"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/security"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/worker"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logger.NewLogger(nil)
	zl := log.Zerolog()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(cfg.Database, cfg.Server.MigrationsPath); err != nil {
		log.Fatal(err, "failed to apply migrations")
	}

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	contactRepo := postgres.NewContactRepository(db)
	settingRepo := postgres.NewSettingRepository(db)
	userRepo := postgres.NewUserRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	settingsSvc := settingsService.NewService(settingsService.Repositories{
		Settings:     settingRepo,
		Appointments: appointmentRepo,
		Contacts:     contactRepo,
		Users:        userRepo,
	}, zl)
	scheduleSvc := scheduleService.NewService(settingsSvc, appointmentRepo, zl)

	calendarAdapter, err := calendar.New(context.Background(), cfg.Calendar, zl)
	if err != nil {
		log.Fatal(err, "failed to initialize calendar adapter")
	}

	appointmentSvc := appointmentService.NewService(appointmentRepo, settingsSvc, scheduleSvc, calendarAdapter, zl)
	contactSvc := contactService.NewService(contactRepo, zl)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher, zl)

	// Router
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	r := router.New(authMiddleware, zl, router.Config{
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		Timeout:        time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		CacheTTL:       cfg.HTTP.CacheTTL,
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.AllowedOrigins,
			AllowMethods: middleware.DefaultCORSConfig().AllowMethods,
			AllowHeaders: middleware.DefaultCORSConfig().AllowHeaders,
		},
		MetricsPrefix: "miabogada",
	})

	r.Setup(
		healthHandler.NewHandler(db, version),
		appointmentHandler.NewHandler(appointmentSvc, scheduleSvc),
		contactHandler.NewHandler(contactSvc),
		authHandler.NewHandler(authSvc),
		settingsHandler.NewHandler(settingsSvc, calendarAdapter, r.PublicCacheInvalidator()),
	)

	// Outbox pipeline: processor publishes committed events to redis, the
	// dispatcher turns them into emails.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	m := metrics.NewMetrics("miabogada")
	broker, err := redisBroker.NewBroker(redisBroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &zl)
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		Channel:      notificationService.EventsChannel,
		BatchSize:    cfg.Outbox.BatchSize,
		PollInterval: cfg.Outbox.PollInterval,
		RetryDelay:   cfg.Outbox.RetryDelay,
	}, zl, m)
	go processor.Start(workerCtx)

	emailSvc := email.NewService(email.Config{
		Host:          cfg.SMTP.Host,
		Port:          cfg.SMTP.Port,
		Username:      cfg.SMTP.Username,
		Password:      cfg.SMTP.Password,
		From:          cfg.SMTP.From,
		BusinessName:  cfg.Business.Name,
		BusinessEmail: cfg.Business.Email,
		BusinessPhone: cfg.Business.Phone,
	})
	dispatcher := notificationService.NewDispatcher(broker, emailSvc, settingsSvc, m, zl)
	if err := dispatcher.Start(workerCtx); err != nil {
		log.Fatal(err, "failed to start notification dispatcher")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	stopWorkers()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
