package service

import (
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/monitoring"
	"time"

	"gorm.io/gorm"
)

type EnrollmentService struct {
	DB             *gorm.DB
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	UserRepo       *repository.UserRepository
}

func NewEnrollmentService(db *gorm.DB, enrollmentRepo *repository.EnrollmentRepository, courseRepo *repository.CourseRepository, userRepo *repository.UserRepository) *EnrollmentService {
	return &EnrollmentService{
		DB:             db,
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		UserRepo:       userRepo,
	}
}

type Ref struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type UserRef struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// EnrollmentView is the wire shape of an enrollment.
type EnrollmentView struct {
	ID         uint                   `json:"id"`
	Course     Ref                    `json:"course"`
	Student    UserRef                `json:"student"`
	Instructor *UserRef               `json:"instructor"`
	Status     model.EnrollmentStatus `json:"status"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

func NewEnrollmentView(e *model.Enrollment) EnrollmentView {
	v := EnrollmentView{
		ID:        e.ID,
		Course:    Ref{ID: e.CourseID},
		Student:   UserRef{ID: e.StudentID},
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.Course != nil {
		v.Course.Name = e.Course.Name
	}
	if e.Student != nil {
		v.Student.Username = e.Student.Username
	}
	if e.InstructorID != nil {
		v.Instructor = &UserRef{ID: *e.InstructorID}
		if e.Instructor != nil {
			v.Instructor.Username = e.Instructor.Username
		}
	}
	return v
}

func enrollmentViews(list []model.Enrollment) []EnrollmentView {
	out := make([]EnrollmentView, 0, len(list))
	for i := range list {
		out = append(out, NewEnrollmentView(&list[i]))
	}
	return out
}

// EnrollmentInput is a full replacement of an enrollment.
type EnrollmentInput struct {
	CourseID     uint
	StudentID    uint
	InstructorID *uint
	Status       model.EnrollmentStatus
}

// EnrollmentPatch changes instructor and/or status. SetInstructor
// distinguishes an explicit null from an absent field.
type EnrollmentPatch struct {
	SetInstructor bool
	InstructorID  *uint
	Status        *model.EnrollmentStatus
}

func (s *EnrollmentService) List(page, limit int) ([]EnrollmentView, int64, error) {
	list, total, err := s.EnrollmentRepo.List(page, limit)
	if err != nil {
		return nil, 0, err
	}
	return enrollmentViews(list), total, nil
}

func (s *EnrollmentService) find(repo *repository.EnrollmentRepository, id uint) (*model.Enrollment, error) {
	e, err := repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *EnrollmentService) Get(id uint) (*EnrollmentView, error) {
	e, err := s.find(s.EnrollmentRepo, id)
	if err != nil {
		return nil, err
	}
	v := NewEnrollmentView(e)
	return &v, nil
}

func (s *EnrollmentService) checkInstructor(tx *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	u, err := s.UserRepo.WithTx(tx).FindByID(*id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NewValidationError("instructor", "Invalid instructor id")
		}
		return err
	}
	if u.Role != model.Instructor {
		return util.NewValidationError("instructor", "The instructor must have the role 'instructor'.")
	}
	return nil
}

func (s *EnrollmentService) checkCourseAndStudent(tx *gorm.DB, courseID, studentID uint) error {
	if _, err := s.CourseRepo.WithTx(tx).FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NewValidationError("course", "Invalid course id")
		}
		return err
	}
	u, err := s.UserRepo.WithTx(tx).FindByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NewValidationError("student", "Invalid student id")
		}
		return err
	}
	if u.Role != model.Student {
		return util.NewValidationError("student", "The student must have the role 'student'.")
	}
	return nil
}

func mapEnrollmentConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrAlreadyEnrolled
	}
	return err
}

// Replace overwrites every field of the enrollment, keeping (course, student) unique.
func (s *EnrollmentService) Replace(id uint, in EnrollmentInput) (*EnrollmentView, error) {
	if !in.Status.Valid() {
		return nil, util.NewValidationError("status", "must be one of pending, approved, rejected")
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.EnrollmentRepo.WithTx(tx)
		e, err := s.find(repo, id)
		if err != nil {
			return err
		}
		if err := s.checkCourseAndStudent(tx, in.CourseID, in.StudentID); err != nil {
			return err
		}
		if err := s.checkInstructor(tx, in.InstructorID); err != nil {
			return err
		}
		if other, err := repo.FindByCourseAndStudent(in.CourseID, in.StudentID); err == nil && other.ID != id {
			return util.ErrAlreadyEnrolled
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		previous := e.Status
		e.CourseID, e.StudentID, e.InstructorID, e.Status = in.CourseID, in.StudentID, in.InstructorID, in.Status
		if err := repo.Save(e); err != nil {
			return mapEnrollmentConflict(err)
		}
		if previous != e.Status {
			monitoring.EnrollmentTransitions.WithLabelValues(string(e.Status)).Inc()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Patch moves the enrollment through its workflow. Admins and the course's
// instructors may patch.
func (s *EnrollmentService) Patch(actor Actor, id uint, p EnrollmentPatch) (*EnrollmentView, error) {
	if p.Status != nil && !p.Status.Valid() {
		return nil, util.NewValidationError("status", "must be one of pending, approved, rejected")
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.EnrollmentRepo.WithTx(tx)
		e, err := s.find(repo, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() {
			ok, err := s.CourseRepo.WithTx(tx).IsInstructor(e.CourseID, actor.ID)
			if err != nil {
				return err
			}
			if !ok || !actor.IsInstructor() {
				return util.ErrForbidden
			}
		}
		if p.SetInstructor {
			if err := s.checkInstructor(tx, p.InstructorID); err != nil {
				return err
			}
			e.InstructorID = p.InstructorID
		}
		if p.Status != nil && *p.Status != e.Status {
			e.Status = *p.Status
			monitoring.EnrollmentTransitions.WithLabelValues(string(e.Status)).Inc()
		}
		return repo.Save(e)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *EnrollmentService) Delete(id uint) error {
	if err := s.EnrollmentRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrEnrollmentNotFound
		}
		return err
	}
	return nil
}

func (s *EnrollmentService) StudentEnrollments(studentID uint) ([]EnrollmentView, error) {
	list, err := s.EnrollmentRepo.ListByStudent(studentID)
	if err != nil {
		return nil, err
	}
	return enrollmentViews(list), nil
}

func (s *EnrollmentService) StudentEnrollment(studentID, id uint) (*EnrollmentView, error) {
	e, err := s.find(s.EnrollmentRepo, id)
	if err != nil {
		return nil, err
	}
	if e.StudentID != studentID {
		return nil, util.ErrForbidden
	}
	v := NewEnrollmentView(e)
	return &v, nil
}

// Enroll records a pending enrollment of the student in the course.
func (s *EnrollmentService) Enroll(studentID, courseID uint) (*EnrollmentView, error) {
	e := &model.Enrollment{
		CourseID:  courseID,
		StudentID: studentID,
		Status:    model.EnrollmentPending,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.checkCourseAndStudent(tx, courseID, studentID); err != nil {
			return err
		}
		repo := s.EnrollmentRepo.WithTx(tx)
		if _, err := repo.FindByCourseAndStudent(courseID, studentID); err == nil {
			return util.ErrAlreadyEnrolled
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return mapEnrollmentConflict(repo.Create(e))
	})
	if err != nil {
		return nil, err
	}
	monitoring.EnrollmentTransitions.WithLabelValues(string(model.EnrollmentPending)).Inc()
	return s.Get(e.ID)
}

func (s *EnrollmentService) Withdraw(studentID, id uint) error {
	e, err := s.find(s.EnrollmentRepo, id)
	if err != nil {
		return err
	}
	if e.StudentID != studentID {
		return util.ErrForbidden
	}
	return s.Delete(id)
}

func (s *EnrollmentService) InstructorStudents(instructorID uint) ([]EnrollmentView, error) {
	list, err := s.EnrollmentRepo.ListByInstructor(instructorID)
	if err != nil {
		return nil, err
	}
	return enrollmentViews(list), nil
}
