package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository stores comments, likes and ratings.
type EngagementRepository struct {
	DB *gorm.DB
}

func NewEngagementRepository(db *gorm.DB) *EngagementRepository {
	return &EngagementRepository{DB: db}
}

func (r *EngagementRepository) WithTx(tx *gorm.DB) *EngagementRepository {
	return &EngagementRepository{DB: tx}
}

func (r *EngagementRepository) CreateComment(c *model.CourseComment) error {
	return r.DB.Create(c).Error
}

func (r *EngagementRepository) FindComment(courseID, id uint) (*model.CourseComment, error) {
	var c model.CourseComment
	err := r.DB.Where("course_id = ?", courseID).First(&c, id).Error
	return &c, err
}

func (r *EngagementRepository) ListComments(courseID uint) ([]model.CourseComment, error) {
	var list []model.CourseComment
	err := r.DB.Preload("User").Where("course_id = ?", courseID).Order("id").Find(&list).Error
	return list, err
}

func (r *EngagementRepository) UpdateCommentContent(c *model.CourseComment) error {
	return r.DB.Model(c).Update("content", c.Content).Error
}

func (r *EngagementRepository) DeleteComment(id uint) error {
	return r.DB.Delete(&model.CourseComment{}, id).Error
}

func (r *EngagementRepository) CreateLike(l *model.CourseLike) error {
	return r.DB.Create(l).Error
}

func (r *EngagementRepository) ListLikesByUser(userID uint) ([]model.CourseLike, error) {
	var list []model.CourseLike
	err := r.DB.Where("user_id = ?", userID).Find(&list).Error
	return list, err
}

// DeleteLike reports whether a row was actually removed.
func (r *EngagementRepository) DeleteLike(id uint) (bool, error) {
	res := r.DB.Delete(&model.CourseLike{}, id)
	return res.RowsAffected > 0, res.Error
}

func (r *EngagementRepository) CreateRating(rt *model.CourseRating) error {
	return r.DB.Create(rt).Error
}

// LockRating loads the user's rating with a row lock so the old value read
// here is the one the update replaces.
func (r *EngagementRepository) LockRating(courseID, userID uint) (*model.CourseRating, error) {
	var rt model.CourseRating
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&rt).Error
	return &rt, err
}

func (r *EngagementRepository) LockLike(courseID, userID uint) (*model.CourseLike, error) {
	var l model.CourseLike
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&l).Error
	return &l, err
}

func (r *EngagementRepository) ListRatingsByUser(userID uint) ([]model.CourseRating, error) {
	var list []model.CourseRating
	err := r.DB.Where("user_id = ?", userID).Find(&list).Error
	return list, err
}

func (r *EngagementRepository) UpdateRatingValue(rt *model.CourseRating) error {
	return r.DB.Model(rt).Update("rating", rt.Rating).Error
}

func (r *EngagementRepository) DeleteRating(id uint) (bool, error) {
	res := r.DB.Delete(&model.CourseRating{}, id)
	return res.RowsAffected > 0, res.Error
}

// CourseTotals counts likes and ratings for a course straight from their rows.
func (r *EngagementRepository) CourseTotals(courseID uint) (likes int, ratings int, avg float64, err error) {
	var likeCount int64
	if err = r.DB.Model(&model.CourseLike{}).Where("course_id = ?", courseID).Count(&likeCount).Error; err != nil {
		return
	}
	var row struct {
		N   int
		Avg float64
	}
	err = r.DB.Model(&model.CourseRating{}).Where("course_id = ?", courseID).
		Select("COUNT(*) AS n, COALESCE(AVG(rating), 0) AS avg").Scan(&row).Error
	return int(likeCount), row.N, row.Avg, err
}
