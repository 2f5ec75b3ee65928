package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VideoRepository struct {
	DB *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{DB: db}
}

func (r *VideoRepository) WithTx(tx *gorm.DB) *VideoRepository {
	return &VideoRepository{DB: tx}
}

var orderColumn = clause.OrderByColumn{Column: clause.Column{Name: "order"}}

func (r *VideoRepository) Create(v *model.CourseVideo) error {
	return r.DB.Create(v).Error
}

func (r *VideoRepository) FindByID(id uint) (*model.CourseVideo, error) {
	var v model.CourseVideo
	err := r.DB.First(&v, id).Error
	return &v, err
}

func (r *VideoRepository) ListByCourse(courseID uint) ([]model.CourseVideo, error) {
	var list []model.CourseVideo
	err := r.DB.Where("course_id = ?", courseID).
		Order(orderColumn).Order("id").
		Find(&list).Error
	return list, err
}

func (r *VideoRepository) FindByIDs(courseID uint, ids []uint) ([]model.CourseVideo, error) {
	var list []model.CourseVideo
	if len(ids) == 0 {
		return list, nil
	}
	err := r.DB.Where("course_id = ? AND id IN ?", courseID, ids).Find(&list).Error
	return list, err
}

func (r *VideoRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CourseVideo{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// MaxOrder returns the highest order in the course, or 0 when it has no videos.
func (r *VideoRepository) MaxOrder(courseID uint) (int, error) {
	var max int
	err := r.DB.Model(&model.CourseVideo{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(?), 0)", clause.Column{Name: "order"}).
		Scan(&max).Error
	return max, err
}

// DeleteWithContent removes the videos together with their quizzes, questions,
// attempts and progress links.
func (r *VideoRepository) DeleteWithContent(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	tx := r.DB
	var quizIDs []uint
	if err := tx.Model(&model.Quiz{}).Where("video_id IN ?", ids).Pluck("id", &quizIDs).Error; err != nil {
		return err
	}
	if err := deleteQuizzes(tx, quizIDs); err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM progress_completed_videos WHERE course_video_id IN ?", ids).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&model.CourseVideo{}).Error
}
