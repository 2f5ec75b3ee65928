// Seeds a development database with fake instructors and courses. Every
// seeded account uses the password "password".
//
// Usage: go run ./scripts/seed_dummy_data -config configs -instructors 3 -courses 10

package main

import (
	"context"
	"flag"
	"lms_backend/internal/config"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"
	"log"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs", "directory holding config.yaml")
	instructors := flag.Int("instructors", 3, "number of instructors to create")
	courses := flag.Int("courses", 10, "number of courses to create")
	perCourse := flag.Int("per-course", 3, "instructors assigned to each course")
	seed := flag.Uint64("seed", 0, "faker seed, 0 for random")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	cache := service.NewCourseCache(nil, 0)
	aggregates := service.NewAggregateService()
	users := service.NewUserService(db, userRepo, engagementRepo, aggregates, cache)
	courseService := service.NewCourseService(db, repository.NewCourseRepository(db), userRepo, engagementRepo, cache)

	res, err := service.NewSeedService(users, courseService, *seed).
		Seed(context.Background(), *instructors, *courses, *perCourse)
	if err != nil {
		logger.Log.Fatal("Seeding failed", zap.Error(err))
	}
	for _, u := range res.Instructors {
		logger.Log.Info("Instructor created", zap.Uint("id", u.ID), zap.String("username", u.Username))
	}
	logger.Log.Info("Seeding finished",
		zap.Int("instructors", len(res.Instructors)),
		zap.Int("courses", len(res.Courses)))
	_ = logger.Log.Sync()
}
