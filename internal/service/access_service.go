package service

import (
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role model.UserRole
}

func ActorFromClaims(c *util.Claims) Actor {
	return Actor{ID: c.UserID, Role: c.Role}
}

func (a Actor) IsAdmin() bool      { return a.Role == model.Admin }
func (a Actor) IsInstructor() bool { return a.Role == model.Instructor }
func (a Actor) IsStudent() bool    { return a.Role == model.Student }

// AccessService evaluates the relationship predicates between a caller and a
// course. Results are never cached.
type AccessService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
}

func NewAccessService(courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository) *AccessService {
	return &AccessService{
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
	}
}

func (s *AccessService) courseExists(courseID uint) error {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}
	return nil
}

func (s *AccessService) IsCourseInstructor(a Actor, courseID uint) (bool, error) {
	if !a.IsInstructor() {
		return false, nil
	}
	return s.CourseRepo.IsInstructor(courseID, a.ID)
}

func (s *AccessService) IsApprovedStudent(a Actor, courseID uint) (bool, error) {
	if !a.IsStudent() {
		return false, nil
	}
	return s.EnrollmentRepo.IsApproved(courseID, a.ID)
}

// CanView: admin, an instructor of the course, or an approved student.
func (s *AccessService) CanView(a Actor, courseID uint) error {
	if err := s.courseExists(courseID); err != nil {
		return err
	}
	if a.IsAdmin() {
		return nil
	}
	ok, err := s.IsCourseInstructor(a, courseID)
	if err != nil || ok {
		return err
	}
	ok, err = s.IsApprovedStudent(a, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrForbidden
	}
	return nil
}

// CanManage: admin or an instructor of the course.
func (s *AccessService) CanManage(a Actor, courseID uint) error {
	if err := s.courseExists(courseID); err != nil {
		return err
	}
	if a.IsAdmin() {
		return nil
	}
	ok, err := s.IsCourseInstructor(a, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrForbidden
	}
	return nil
}

// RequireApprovedStudent admits only a student with an approved enrollment.
func (s *AccessService) RequireApprovedStudent(a Actor, courseID uint) error {
	if err := s.courseExists(courseID); err != nil {
		return err
	}
	ok, err := s.IsApprovedStudent(a, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrForbidden
	}
	return nil
}

// CanGrade: admin, or an instructor of the course who is also the assigned
// instructor on the student's approved enrollment.
func (s *AccessService) CanGrade(a Actor, courseID, studentID uint) error {
	if a.IsAdmin() {
		return nil
	}
	ok, err := s.IsCourseInstructor(a, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrForbidden
	}
	assigned, err := s.EnrollmentRepo.IsAssignedInstructor(courseID, studentID, a.ID)
	if err != nil {
		return err
	}
	if !assigned {
		return util.ErrForbidden
	}
	return nil
}
