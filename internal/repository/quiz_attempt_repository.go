package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

func (r *QuizAttemptRepository) WithTx(tx *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: tx}
}

// Create inserts the attempt and its answers.
func (r *QuizAttemptRepository) Create(a *model.QuizAttempt) error {
	return r.DB.Create(a).Error
}

func (r *QuizAttemptRepository) FindByID(id uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	err := r.DB.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Preload("Answers.Question").First(&a, id).Error
	return &a, err
}

func (r *QuizAttemptRepository) ListByStudent(studentID uint) ([]model.QuizAttempt, error) {
	var list []model.QuizAttempt
	err := r.DB.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Preload("Answers.Question").Where("student_id = ?", studentID).Order("id").Find(&list).Error
	return list, err
}

func (r *QuizAttemptRepository) SetAnswerCorrect(answerID uint, correct bool) error {
	return r.DB.Model(&model.AnswerAttempt{}).Where("id = ?", answerID).Update("is_correct", correct).Error
}

// CorrectMarks sums the marks of the questions answered correctly in the attempt.
func (r *QuizAttemptRepository) CorrectMarks(attemptID uint) (int, error) {
	var sum int
	err := r.DB.Model(&model.AnswerAttempt{}).
		Joins("JOIN questions ON questions.id = answer_attempts.question_id").
		Where("answer_attempts.quiz_attempt_id = ? AND answer_attempts.is_correct = ?", attemptID, true).
		Select("COALESCE(SUM(questions.marks), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *QuizAttemptRepository) SaveScore(a *model.QuizAttempt) error {
	return r.DB.Model(&model.QuizAttempt{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"marks_obtained":   a.MarksObtained,
		"qualified_status": a.QualifiedStatus,
	}).Error
}

func (r *QuizAttemptRepository) Delete(id uint) error {
	if err := r.DB.Where("quiz_attempt_id = ?", id).Delete(&model.AnswerAttempt{}).Error; err != nil {
		return err
	}
	return r.DB.Delete(&model.QuizAttempt{}, id).Error
}

// GradedIDs lists attempts that already carry a passed or failed status.
func (r *QuizAttemptRepository) GradedIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("qualified_status <> ?", model.QualifiedPending).
		Order("id").Pluck("id", &ids).Error
	return ids, err
}
