package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

func (r *EnrollmentRepository) withRelations() *gorm.DB {
	return r.DB.
		Preload("Course", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Student").
		Preload("Instructor")
}

func (r *EnrollmentRepository) Create(e *model.Enrollment) error {
	return r.DB.Omit(clause.Associations).Create(e).Error
}

func (r *EnrollmentRepository) FindByID(id uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.withRelations().First(&e, id).Error
	return &e, err
}

func (r *EnrollmentRepository) FindByCourseAndStudent(courseID, studentID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("course_id = ? AND student_id = ?", courseID, studentID).First(&e).Error
	return &e, err
}

func (r *EnrollmentRepository) List(page, limit int) ([]model.Enrollment, int64, error) {
	var list []model.Enrollment
	var total int64
	q := r.DB.Model(&model.Enrollment{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.withRelations().Order("id").Offset((page - 1) * limit).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *EnrollmentRepository) ListByStudent(studentID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.withRelations().Where("student_id = ?", studentID).Order("id").Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) ListByInstructor(instructorID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.withRelations().Where("instructor_id = ?", instructorID).Order("id").Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) ListApprovedByInstructor(courseID, instructorID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.withRelations().Where("course_id = ? AND instructor_id = ? AND status = ?", courseID, instructorID, model.EnrollmentApproved).
		Order("id").Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) ListApprovedByCourse(courseID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.withRelations().Where("course_id = ? AND status = ?", courseID, model.EnrollmentApproved).
		Order("id").Find(&list).Error
	return list, err
}

// IsApproved reports whether the student holds an approved enrollment in the course.
func (r *EnrollmentRepository) IsApproved(courseID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ? AND status = ?", courseID, studentID, model.EnrollmentApproved).
		Count(&count).Error
	return count > 0, err
}

// IsAssignedInstructor reports whether instructorID is the assigned instructor
// on the student's approved enrollment in the course.
func (r *EnrollmentRepository) IsAssignedInstructor(courseID, studentID, instructorID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ? AND instructor_id = ? AND status = ?",
			courseID, studentID, instructorID, model.EnrollmentApproved).
		Count(&count).Error
	return count > 0, err
}

// Save writes the enrollment columns only; loaded relations are ignored.
func (r *EnrollmentRepository) Save(e *model.Enrollment) error {
	return r.DB.Omit(clause.Associations).Save(e).Error
}

func (r *EnrollmentRepository) Delete(id uint) error {
	res := r.DB.Delete(&model.Enrollment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
