package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caseflow-backend/internal/notify"
	"caseflow-backend/internal/reminders"
	"caseflow-backend/internal/scheduler"
	"caseflow-backend/internal/shared/config"
	"caseflow-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer sqlDB.Close()

	var notifier notify.Client
	if cfg.NotifyQueueURL != "" {
		notifier, err = notify.NewSQSClient(ctx, cfg.AWSRegion, cfg.NotifyQueueURL)
		if err != nil {
			log.Fatalf("init sqs notifier: %v", err)
		}
	} else {
		log.Printf("NOTIFY_QUEUE_URL not set, notifications recorded in memory only")
		notifier = notify.NewMemoryClient()
	}

	dispatcher := &reminders.Dispatcher{
		Tasks:      &scheduler.PGClient{DB: sqlDB},
		Notifier:   notifier,
		Recipients: cfg.ReviewRecipients,
		BatchSize:  cfg.WorkerBatchSize,
	}

	interval := time.Duration(cfg.WorkerPollSeconds) * time.Second
	log.Printf("worker started poll=%s batch=%d", interval, cfg.WorkerBatchSize)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fired, err := dispatcher.RunOnce(ctx, time.Now().UTC())
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				break
			}
			log.Printf("claim due tasks: %v", err)
		} else if fired > 0 {
			log.Printf("dispatched %d reminder(s)", fired)
		}

		select {
		case <-ctx.Done():
			log.Printf("shutdown requested")
			return
		case <-ticker.C:
		}
	}
}
