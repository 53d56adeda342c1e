package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/config"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository/postgres"
	notificationService "github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/notification"
	settingsService "github.com/SebasQuintero99/LandingPageMiAbogada/internal/service/settings"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/email"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/logger"
	redisBroker "github.com/SebasQuintero99/LandingPageMiAbogada/pkg/messaging/redis"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/metrics"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/worker"
)

// Retention window for processed outbox rows.
const outboxRetention = 30 * 24 * time.Hour

func main() {
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

	outboxRepo := postgres.NewOutboxRepository(db)
	settingRepo := postgres.NewSettingRepository(db)
	settingsSvc := settingsService.NewService(settingsService.Repositories{Settings: settingRepo}, zl)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics("miabogada_worker")
	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		Channel:      notificationService.EventsChannel,
		BatchSize:    cfg.Outbox.BatchSize,
		PollInterval: cfg.Outbox.PollInterval,
		RetryDelay:   cfg.Outbox.RetryDelay,
	}, zl, m)
	go processor.Start(ctx)

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
	if err := dispatcher.Start(ctx); err != nil {
		log.Fatal(err, "failed to start notification dispatcher")
	}

	// Prune processed events once a day.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := outboxRepo.DeleteProcessedBefore(ctx, time.Now().Add(-outboxRetention))
				if err != nil {
					log.Error(err, "failed to prune outbox")
					continue
				}
				log.Info("pruned outbox", "deleted", deleted)
			}
		}
	}()

	log.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("worker shutting down")
	cancel()
}
