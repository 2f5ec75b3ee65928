package service

import (
	"context"
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/pkg/database"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

type testEnv struct {
	db          *gorm.DB
	access      *AccessService
	aggregates  *AggregateService
	users       *UserService
	auth        *AuthService
	courses     *CourseService
	enrollments *EnrollmentService
	videos      *VideoService
	quizzes     *QuizService
	engagement  *EngagementService
	progress    *ProgressService
	attempts    *QuizAttemptService

	admin *model.User
}

// newTestEnv wires every service over a private in-memory SQLite database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", Path: dsn}, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpireTime: time.Hour, RefreshExpire: 2 * time.Hour},
		Storage: config.StorageConfig{
			Type:        "local",
			LocalPath:   t.TempDir(),
			MaxUploadMB: 1,
		},
	}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	attemptRepo := repository.NewQuizAttemptRepository(db)

	cache := NewCourseCache(nil, 0)
	env := &testEnv{db: db}
	env.access = NewAccessService(courseRepo, enrollmentRepo)
	env.aggregates = NewAggregateService()
	env.users = NewUserService(db, userRepo, engagementRepo, env.aggregates, cache)
	env.auth = NewAuthService(userRepo, env.users, cfg)
	env.courses = NewCourseService(db, courseRepo, userRepo, engagementRepo, cache)
	env.enrollments = NewEnrollmentService(db, enrollmentRepo, courseRepo, userRepo)
	env.videos = NewVideoService(db, videoRepo, env.access, NewStorageService(cfg), &cfg.Storage)
	env.quizzes = NewQuizService(db, quizRepo, videoRepo, env.access, env.aggregates)
	env.engagement = NewEngagementService(db, engagementRepo, env.access, env.aggregates, cache)
	env.progress = NewProgressService(db, progressRepo, videoRepo, courseRepo, userRepo, enrollmentRepo, env.access)
	env.attempts = NewQuizAttemptService(db, attemptRepo, quizRepo, env.access, env.aggregates)

	env.admin = env.user(t, "admin", model.Admin)
	return env
}

func (e *testEnv) user(t *testing.T, username string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, e.users.Create(u, "password123", "password123"))
	return u
}

func (e *testEnv) course(t *testing.T, name string, instructors ...*model.User) *model.Course {
	t.Helper()
	ids := make([]uint, 0, len(instructors))
	for _, u := range instructors {
		ids = append(ids, u.ID)
	}
	c, err := e.courses.Create(context.Background(), CourseInput{Name: name, Description: name + " course", InstructorIDs: ids})
	require.NoError(t, err)
	return c
}

// enroll creates an enrollment and moves it to status, optionally assigning an instructor.
func (e *testEnv) enroll(t *testing.T, student *model.User, course *model.Course, status model.EnrollmentStatus, instructor *model.User) *EnrollmentView {
	t.Helper()
	view, err := e.enrollments.Enroll(student.ID, course.ID)
	require.NoError(t, err)
	patch := EnrollmentPatch{Status: &status}
	if instructor != nil {
		patch.SetInstructor = true
		patch.InstructorID = &instructor.ID
	}
	view, err = e.enrollments.Patch(actorOf(e.admin), view.ID, patch)
	require.NoError(t, err)
	return view
}

func (e *testEnv) video(t *testing.T, course *model.Course, title string) *model.CourseVideo {
	t.Helper()
	v := &model.CourseVideo{CourseID: course.ID, Title: title, ObjectKey: "videos/" + title + ".mp4", URL: "/uploads/videos/" + title + ".mp4"}
	max, err := repository.NewVideoRepository(e.db).MaxOrder(course.ID)
	require.NoError(t, err)
	v.Order = max + 1
	require.NoError(t, repository.NewVideoRepository(e.db).Create(v))
	return v
}

func actorOf(u *model.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func (e *testEnv) reloadCourse(t *testing.T, id uint) *model.Course {
	t.Helper()
	c, err := repository.NewCourseRepository(e.db).FindByIDUnscoped(id)
	require.NoError(t, err)
	return c
}
