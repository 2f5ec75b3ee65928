package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) WithTx(tx *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: tx}
}

func (r *QuizRepository) Create(q *model.Quiz) error {
	return r.DB.Omit("Questions").Create(q).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var q model.Quiz
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuizRepository) FindWithQuestions(id uint) (*model.Quiz, error) {
	var q model.Quiz
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).First(&q, id).Error
	return &q, err
}

func (r *QuizRepository) LockByID(id uint) (*model.Quiz, error) {
	var q model.Quiz
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&q, id).Error
	return &q, err
}

func (r *QuizRepository) List() ([]model.Quiz, error) {
	var list []model.Quiz
	err := r.DB.Order("id").Find(&list).Error
	return list, err
}

// ListByVideos returns quizzes hosted by the given videos.
func (r *QuizRepository) ListByVideos(videoIDs []uint) ([]model.Quiz, error) {
	var list []model.Quiz
	if len(videoIDs) == 0 {
		return list, nil
	}
	err := r.DB.Where("video_id IN ?", videoIDs).Order("id").Find(&list).Error
	return list, err
}

// CourseIDOf resolves the course owning the quiz through its video.
func (r *QuizRepository) CourseIDOf(quizID uint) (uint, error) {
	var courseIDs []uint
	err := r.DB.Model(&model.Quiz{}).
		Joins("JOIN course_videos ON course_videos.id = quizzes.video_id").
		Where("quizzes.id = ?", quizID).
		Pluck("course_videos.course_id", &courseIDs).Error
	if err != nil {
		return 0, err
	}
	if len(courseIDs) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return courseIDs[0], nil
}

func (r *QuizRepository) UpdateFields(q *model.Quiz) error {
	return r.DB.Model(q).Select("video_id", "title", "description").Updates(q).Error
}

func (r *QuizRepository) SaveTotals(q *model.Quiz) error {
	return r.DB.Model(&model.Quiz{}).Where("id = ?", q.ID).Updates(map[string]interface{}{
		"total_marks":   q.TotalMarks,
		"passing_marks": q.PassingMarks,
	}).Error
}

func (r *QuizRepository) Delete(id uint) error {
	return deleteQuizzes(r.DB, []uint{id})
}

// Question rows

func (r *QuizRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuizRepository) FindQuestion(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuizRepository) ListQuestions(quizID uint) ([]model.Question, error) {
	var list []model.Question
	err := r.DB.Where("quiz_id = ?", quizID).Order("id").Find(&list).Error
	return list, err
}

func (r *QuizRepository) UpdateQuestion(q *model.Question) error {
	return r.DB.Model(q).Select("question", "marks").Updates(q).Error
}

func (r *QuizRepository) SumMarks(quizID uint) (int, error) {
	var sum int
	err := r.DB.Model(&model.Question{}).
		Where("quiz_id = ?", quizID).
		Select("COALESCE(SUM(marks), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *QuizRepository) DeleteQuestion(id uint) error {
	if err := r.DB.Where("question_id = ?", id).Delete(&model.AnswerAttempt{}).Error; err != nil {
		return err
	}
	return r.DB.Delete(&model.Question{}, id).Error
}

func deleteQuizzes(tx *gorm.DB, quizIDs []uint) error {
	if len(quizIDs) == 0 {
		return nil
	}
	var attemptIDs []uint
	if err := tx.Model(&model.QuizAttempt{}).Where("quiz_id IN ?", quizIDs).Pluck("id", &attemptIDs).Error; err != nil {
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
	if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&model.Question{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", quizIDs).Delete(&model.Quiz{}).Error
}

func (r *QuizRepository) AllIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Quiz{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}
