package service

import (
	"context"
	"errors"
	"fmt"
	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

// SeedPassword is the password every seeded account gets.
const SeedPassword = "password"

// SeedService fills a development database with fake instructors and courses.
// Like and rating counters are left at zero; they only move with real rows.
type SeedService struct {
	Users   *UserService
	Courses *CourseService
	Faker   *gofakeit.Faker
}

// NewSeedService uses a random source when seed is 0.
func NewSeedService(users *UserService, courses *CourseService, seed uint64) *SeedService {
	return &SeedService{Users: users, Courses: courses, Faker: gofakeit.New(seed)}
}

type SeedResult struct {
	Instructors []*model.User
	Courses     []*model.Course
}

// Seed creates instructors, then courses that each get perCourse of them
// picked at random.
func (s *SeedService) Seed(ctx context.Context, instructors, courses, perCourse int) (*SeedResult, error) {
	if instructors <= 0 {
		return nil, util.NewValidationError("instructors", "must be positive")
	}
	if perCourse > instructors {
		perCourse = instructors
	}

	res := &SeedResult{}
	for attempts := 0; len(res.Instructors) < instructors; attempts++ {
		if attempts >= instructors*5 {
			return res, fmt.Errorf("seed: gave up after %d username collisions", attempts)
		}
		u, err := s.instructor()
		if errors.Is(err, util.ErrUsernameTaken) || errors.Is(err, util.ErrEmailRegistered) {
			continue
		}
		if err != nil {
			return res, err
		}
		res.Instructors = append(res.Instructors, u)
	}

	for i := 0; i < courses; i++ {
		ids := make([]uint, 0, perCourse)
		for _, j := range s.pick(len(res.Instructors), perCourse) {
			ids = append(ids, res.Instructors[j].ID)
		}
		c, err := s.Courses.Create(ctx, CourseInput{
			Name:          strings.TrimSuffix(s.Faker.Sentence(4), "."),
			Description:   s.Faker.Paragraph(1, 5, 12, " "),
			InstructorIDs: ids,
		})
		if err != nil {
			return res, err
		}
		res.Courses = append(res.Courses, c)
	}
	return res, nil
}

func (s *SeedService) instructor() (*model.User, error) {
	username := strings.ToLower(s.Faker.Username())
	u := &model.User{
		Username: username,
		Email:    username + "@" + s.Faker.DomainName(),
		Role:     model.Instructor,
	}
	if err := s.Users.Create(u, SeedPassword, SeedPassword); err != nil {
		return nil, err
	}
	return u, nil
}

// pick returns k distinct indexes below n.
func (s *SeedService) pick(n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := s.Faker.Number(0, i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
