package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) Create(p *model.CourseProgressTracking) error {
	return r.DB.Create(p).Error
}

func (r *ProgressRepository) Find(courseID, studentID uint) (*model.CourseProgressTracking, error) {
	var p model.CourseProgressTracking
	err := r.DB.Preload("CompletedVideos", func(db *gorm.DB) *gorm.DB {
		return db.Order(orderColumn).Order("id")
	}).Where("course_id = ? AND student_id = ?", courseID, studentID).First(&p).Error
	return &p, err
}

func (r *ProgressRepository) ListByStudents(courseID uint, studentIDs []uint) ([]model.CourseProgressTracking, error) {
	var list []model.CourseProgressTracking
	if len(studentIDs) == 0 {
		return list, nil
	}
	err := r.DB.Preload("CompletedVideos").
		Where("course_id = ? AND student_id IN ?", courseID, studentIDs).
		Order("student_id").
		Find(&list).Error
	return list, err
}

func (r *ProgressRepository) ReplaceVideos(p *model.CourseProgressTracking, videos []model.CourseVideo) error {
	return r.DB.Model(p).Association("CompletedVideos").Replace(videos)
}

func (r *ProgressRepository) AppendVideos(p *model.CourseProgressTracking, videos []model.CourseVideo) error {
	if len(videos) == 0 {
		return nil
	}
	return r.DB.Model(p).Association("CompletedVideos").Append(videos)
}

func (r *ProgressRepository) Delete(p *model.CourseProgressTracking) error {
	if err := r.DB.Model(p).Association("CompletedVideos").Clear(); err != nil {
		return err
	}
	return r.DB.Delete(p).Error
}
