package repository

import (
	"lms_backend/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Instructors").First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindByIDUnscoped(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Unscoped().Preload("Instructors").First(&course, id).Error
	return &course, err
}

// LockByID loads the course row with an exclusive row lock. Only meaningful
// inside a transaction. Soft-deleted courses are included so their counters
// keep following the rows underneath.
func (r *CourseRepository) LockByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Unscoped().Clauses(clause.Locking{Strength: "UPDATE"}).First(&course, id).Error
	return &course, err
}

// List returns live courses. With a non-empty search the postgres driver ranks
// by full-text match; other drivers fall back to a substring match.
func (r *CourseRepository) List(search string, page, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	q := r.DB.Model(&model.Course{})
	search = strings.TrimSpace(search)
	fullText := search != "" && r.DB.Dialector.Name() == "postgres"
	switch {
	case fullText:
		q = q.Where("to_tsvector('english', name || ' ' || coalesce(description, '')) @@ plainto_tsquery('english', ?)", search)
	case search != "":
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if fullText {
		q = q.Order(clause.Expr{
			SQL:  "ts_rank(to_tsvector('english', name || ' ' || coalesce(description, '')), plainto_tsquery('english', ?)) DESC",
			Vars: []interface{}{search},
		})
	}
	err := q.Preload("Instructors").Order("id").
		Offset((page - 1) * limit).Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

// ListAll includes soft-deleted courses.
func (r *CourseRepository) ListAll(page, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64
	q := r.DB.Unscoped().Model(&model.Course{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Instructors").Order("id").
		Offset((page - 1) * limit).Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) ListByInstructor(userID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.
		Joins("JOIN course_instructors ci ON ci.course_id = courses.id").
		Where("ci.user_id = ?", userID).
		Preload("Instructors").
		Order("courses.id").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) UpdateFields(course *model.Course) error {
	return r.DB.Model(course).Select("name", "description").Updates(course).Error
}

func (r *CourseRepository) ReplaceInstructors(course *model.Course, instructors []model.User) error {
	return r.DB.Model(course).Association("Instructors").Replace(instructors)
}

func (r *CourseRepository) SaveAggregates(course *model.Course) error {
	return r.DB.Unscoped().Model(&model.Course{}).Where("id = ?", course.ID).Updates(map[string]interface{}{
		"likes":         course.Likes,
		"total_ratings": course.TotalRatings,
		"rating":        course.Rating,
	}).Error
}

func (r *CourseRepository) IsInstructor(courseID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Table("course_instructors").
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) InstructorIDs(courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Table("course_instructors").
		Where("course_id = ?", courseID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *CourseRepository) SoftDelete(id uint) error {
	res := r.DB.Model(&model.Course{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_deleted": true,
		"deleted_at": time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CourseRepository) Restore(id uint) error {
	res := r.DB.Unscoped().Model(&model.Course{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Updates(map[string]interface{}{
			"is_deleted": false,
			"deleted_at": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AllIDs includes soft-deleted courses.
func (r *CourseRepository) AllIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Unscoped().Model(&model.Course{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}
