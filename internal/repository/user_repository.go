package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByIDs(ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.Where("id IN ?", ids).Order("id").Find(&users).Error
	return users, err
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) List(page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64
	q := r.DB.Model(&model.User{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("id").Offset((page - 1) * limit).Limit(limit).Find(&users).Error
	return users, total, err
}

// CountAdminsExcept counts admin rows other than excludeID and locks them.
// With no admin row there is nothing to lock; the uniq_single_admin index
// rejects the second of two such writers.
func (r *UserRepository) CountAdminsExcept(excludeID uint) (int64, error) {
	var ids []uint
	err := r.DB.Model(&model.User{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("role = ? AND id <> ?", model.Admin, excludeID).
		Pluck("id", &ids).Error
	return int64(len(ids)), err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdatePassword(id uint, hash string) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).Update("password", hash).Error
}

// Delete removes the user row and the rows it owns outright. Likes and ratings
// are removed by the caller first so course aggregates stay consistent.
func (r *UserRepository) Delete(id uint) error {
	tx := r.DB
	var attemptIDs []uint
	if err := tx.Model(&model.QuizAttempt{}).Where("student_id = ?", id).Pluck("id", &attemptIDs).Error; err != nil {
		return err
	}
	if len(attemptIDs) > 0 {
		if err := tx.Where("quiz_attempt_id IN ?", attemptIDs).Delete(&model.AnswerAttempt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", attemptIDs).Delete(&model.QuizAttempt{}).Error; err != nil {
			return err
		}
	}

	var progressIDs []uint
	if err := tx.Model(&model.CourseProgressTracking{}).Where("student_id = ?", id).Pluck("id", &progressIDs).Error; err != nil {
		return err
	}
	if len(progressIDs) > 0 {
		if err := tx.Exec("DELETE FROM progress_completed_videos WHERE course_progress_tracking_id IN ?", progressIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", progressIDs).Delete(&model.CourseProgressTracking{}).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("user_id = ?", id).Delete(&model.CourseComment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("student_id = ?", id).Delete(&model.Enrollment{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.Enrollment{}).Where("instructor_id = ?", id).Update("instructor_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM course_instructors WHERE user_id = ?", id).Error; err != nil {
		return err
	}
	return tx.Delete(&model.User{}, id).Error
}
