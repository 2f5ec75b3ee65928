package service

import (
	"context"
	"errors"
	"fmt"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type CourseService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	UserRepo       *repository.UserRepository
	EngagementRepo *repository.EngagementRepository
	Cache          CourseCache
}

func NewCourseService(db *gorm.DB, courseRepo *repository.CourseRepository, userRepo *repository.UserRepository, engagementRepo *repository.EngagementRepository, cache CourseCache) *CourseService {
	return &CourseService{
		DB:             db,
		CourseRepo:     courseRepo,
		UserRepo:       userRepo,
		EngagementRepo: engagementRepo,
		Cache:          cache,
	}
}

// CourseDetail is a course with its comment thread.
type CourseDetail struct {
	model.Course
	Comments []model.CourseComment `json:"comments"`
}

type CoursePage struct {
	Items []model.Course `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type CourseInput struct {
	Name          string
	Description   string
	InstructorIDs []uint
}

func (s *CourseService) List(ctx context.Context, search string, page, limit int) (*CoursePage, error) {
	key := fmt.Sprintf("q=%s:p=%d:l=%d", search, page, limit)
	if cached, ok := s.Cache.GetList(ctx, key); ok {
		return cached, nil
	}
	items, total, err := s.CourseRepo.List(search, page, limit)
	if err != nil {
		return nil, err
	}
	out := &CoursePage{Items: items, Total: total, Page: page, Limit: limit}
	s.Cache.SetList(ctx, key, out)
	return out, nil
}

func (s *CourseService) ListAll(page, limit int) (*CoursePage, error) {
	items, total, err := s.CourseRepo.ListAll(page, limit)
	if err != nil {
		return nil, err
	}
	return &CoursePage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *CourseService) Get(ctx context.Context, id uint) (*CourseDetail, error) {
	if cached, ok := s.Cache.GetCourse(ctx, id); ok {
		return cached, nil
	}
	course, err := s.find(id)
	if err != nil {
		return nil, err
	}
	comments, err := s.EngagementRepo.ListComments(id)
	if err != nil {
		return nil, err
	}
	detail := &CourseDetail{Course: *course, Comments: comments}
	s.Cache.SetCourse(ctx, detail)
	return detail, nil
}

func (s *CourseService) find(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// instructors loads the users behind ids and checks each holds the instructor role.
func (s *CourseService) instructors(repo *repository.UserRepository, ids []uint) ([]model.User, error) {
	ids = uniqueIDs(ids)
	users, err := repo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(users) != len(ids) {
		return nil, util.NewValidationError("instructors", "Invalid instructor id")
	}
	for _, u := range users {
		if u.Role != model.Instructor {
			return nil, util.NewValidationError("instructors", "Invalid instructor id")
		}
	}
	return users, nil
}

func (s *CourseService) Create(ctx context.Context, in CourseInput) (*model.Course, error) {
	if in.Name == "" {
		return nil, util.NewValidationError("name", "this field is required")
	}
	course := &model.Course{Name: in.Name, Description: in.Description}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		users, err := s.instructors(s.UserRepo.WithTx(tx), in.InstructorIDs)
		if err != nil {
			return err
		}
		course.Instructors = users
		return s.CourseRepo.WithTx(tx).Create(course)
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	return course, nil
}

// Update replaces name, description and, when given, the instructor set.
func (s *CourseService) Update(ctx context.Context, id uint, in CourseInput, replaceInstructors bool) (*model.Course, error) {
	if in.Name == "" {
		return nil, util.NewValidationError("name", "this field is required")
	}
	var course *model.Course
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.CourseRepo.WithTx(tx)
		var err error
		course, err = repo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrCourseNotFound
			}
			return err
		}
		course.Name = in.Name
		course.Description = in.Description
		if err := repo.UpdateFields(course); err != nil {
			return err
		}
		if replaceInstructors {
			users, err := s.instructors(s.UserRepo.WithTx(tx), in.InstructorIDs)
			if err != nil {
				return err
			}
			if err := repo.ReplaceInstructors(course, users); err != nil {
				return err
			}
			course.Instructors = users
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, id)
	return course, nil
}

// Delete soft-deletes the course; its children stay in place.
func (s *CourseService) Delete(ctx context.Context, id uint) error {
	if err := s.CourseRepo.SoftDelete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}
	s.Cache.Invalidate(ctx, id)
	return nil
}

func (s *CourseService) Restore(ctx context.Context, id uint) (*model.Course, error) {
	if err := s.CourseRepo.Restore(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	s.Cache.Invalidate(ctx, id)
	return s.find(id)
}

func (s *CourseService) Instructors(id uint) (*model.Course, error) {
	return s.find(id)
}

func (s *CourseService) InstructorCourses(userID uint) ([]model.Course, error) {
	return s.CourseRepo.ListByInstructor(userID)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
