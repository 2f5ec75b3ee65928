// Recomputes the derived counters (course likes and ratings, quiz totals and
// the scores of graded attempts) from the rows they summarise.
//
// The service keeps these in step on every write; run this after bulk imports
// or manual edits to the database.
//
// Usage: go run ./scripts/rebuild_aggregates -config configs

package main

import (
	"flag"
	"lms_backend/internal/config"
	"lms_backend/internal/service"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"
	"log"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	logger.Log.Info("Rebuilding aggregates")
	stats, err := service.NewAggregateService().Rebuild(db)
	if err != nil {
		logger.Log.Fatal("Aggregate rebuild failed",
			zap.Int("courses", stats.Courses),
			zap.Int("quizzes", stats.Quizzes),
			zap.Int("attempts", stats.Attempts),
			zap.Error(err))
	}
	logger.Log.Info("Aggregate rebuild finished",
		zap.Int("courses", stats.Courses),
		zap.Int("quizzes", stats.Quizzes),
		zap.Int("attempts", stats.Attempts))
	_ = logger.Log.Sync()
}
