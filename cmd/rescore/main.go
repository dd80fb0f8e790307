package main

// Batch score recomputation after a scoring rule change:
//   go run ./cmd/rescore

import (
	"context"
	"log"
	"os"

	"caseflow-backend/internal/cases"
	"caseflow-backend/internal/shared/config"
	"caseflow-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Recomputation only rewrites scores; it sends no notifications and
	// schedules no reminders, so the service needs nothing but the repo.
	svc := &cases.Service{Repo: &cases.PGRepo{DB: sqlDB}}
	changed, err := svc.RecomputeScores(ctx)
	if err != nil {
		log.Printf("recompute scores: %v", err)
		os.Exit(1)
	}
	log.Printf("recomputed scores, %d case(s) changed", changed)
}
