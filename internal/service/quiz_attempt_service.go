package service

import (
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type QuizAttemptService struct {
	DB          *gorm.DB
	AttemptRepo *repository.QuizAttemptRepository
	QuizRepo    *repository.QuizRepository
	Access      *AccessService
	Aggregates  *AggregateService
}

func NewQuizAttemptService(db *gorm.DB, attemptRepo *repository.QuizAttemptRepository, quizRepo *repository.QuizRepository, access *AccessService, aggregates *AggregateService) *QuizAttemptService {
	return &QuizAttemptService{
		DB:          db,
		AttemptRepo: attemptRepo,
		QuizRepo:    quizRepo,
		Access:      access,
		Aggregates:  aggregates,
	}
}

type AnswerInput struct {
	QuestionID uint
	Answer     string
}

type GradeInput struct {
	AnswerID  uint
	IsCorrect bool
}

// CheckAnswers verifies a submission answers every question of the quiz
// exactly once.
func CheckAnswers(questions []model.Question, answers []AnswerInput) error {
	if len(questions) == 0 {
		return util.NewValidationError("quiz", "No questions found for this quiz.")
	}
	if len(answers) != len(questions) {
		return util.NewValidationError("answers", "one answer per question is required")
	}
	valid := make(map[uint]struct{}, len(questions))
	for _, q := range questions {
		valid[q.ID] = struct{}{}
	}
	seen := make(map[uint]struct{}, len(answers))
	for _, a := range answers {
		if _, ok := valid[a.QuestionID]; !ok {
			return util.NewValidationError("answers", "Invalid question id")
		}
		if _, dup := seen[a.QuestionID]; dup {
			return util.NewValidationError("answers", "duplicate question id")
		}
		seen[a.QuestionID] = struct{}{}
	}
	return nil
}

// CheckGrades verifies a grading request covers every answer of the attempt
// with ids that belong to it.
func CheckGrades(attempt *model.QuizAttempt, grades []GradeInput) error {
	if len(grades) == 0 {
		return util.NewValidationError("answers", "No answers found for this quiz attempt.")
	}
	if len(grades) != len(attempt.Answers) {
		return util.NewValidationError("answers", "Invalid answer id")
	}
	owned := make(map[uint]struct{}, len(attempt.Answers))
	for _, a := range attempt.Answers {
		owned[a.ID] = struct{}{}
	}
	seen := make(map[uint]struct{}, len(grades))
	for _, g := range grades {
		if _, ok := owned[g.AnswerID]; !ok {
			return util.NewValidationError("answers", "Invalid answer id")
		}
		if _, dup := seen[g.AnswerID]; dup {
			return util.NewValidationError("answers", "duplicate answer id")
		}
		seen[g.AnswerID] = struct{}{}
	}
	return nil
}

func (s *QuizAttemptService) courseOf(quizID uint) (uint, error) {
	courseID, err := s.QuizRepo.CourseIDOf(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, util.ErrQuizNotFound
		}
		return 0, err
	}
	return courseID, nil
}

// Submit records a student's attempt with all answers in one transaction.
// The attempt stays pending until graded.
func (s *QuizAttemptService) Submit(actor Actor, quizID uint, answers []AnswerInput) (*model.QuizAttempt, error) {
	courseID, err := s.courseOf(quizID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.RequireApprovedStudent(actor, courseID); err != nil {
		return nil, err
	}
	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}
	if err := CheckAnswers(questions, answers); err != nil {
		return nil, err
	}

	attempt := &model.QuizAttempt{
		QuizID:          quizID,
		StudentID:       actor.ID,
		QualifiedStatus: model.QualifiedPending,
		Answers:         make([]model.AnswerAttempt, 0, len(answers)),
	}
	for _, a := range answers {
		attempt.Answers = append(attempt.Answers, model.AnswerAttempt{QuestionID: a.QuestionID, Answer: a.Answer})
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.AttemptRepo.WithTx(tx).Create(attempt)
	})
	if err != nil {
		return nil, err
	}
	monitoring.AttemptsSubmitted.Inc()
	return s.AttemptRepo.FindByID(attempt.ID)
}

func (s *QuizAttemptService) authorized(actor Actor, id uint) (*model.QuizAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	courseID, err := s.courseOf(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanGrade(actor, courseID, attempt.StudentID); err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *QuizAttemptService) Get(actor Actor, id uint) (*model.QuizAttempt, error) {
	return s.authorized(actor, id)
}

// Grade marks each answer correct or incorrect and rescores the attempt, all
// in one transaction.
func (s *QuizAttemptService) Grade(actor Actor, id uint, grades []GradeInput) (*model.QuizAttempt, error) {
	attempt, err := s.authorized(actor, id)
	if err != nil {
		return nil, err
	}
	if err := CheckGrades(attempt, grades); err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.AttemptRepo.WithTx(tx)
		for _, g := range grades {
			if err := repo.SetAnswerCorrect(g.AnswerID, g.IsCorrect); err != nil {
				return err
			}
		}
		_, err := s.Aggregates.ScoreAttempt(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.AttemptRepo.FindByID(id)
}

func (s *QuizAttemptService) Delete(actor Actor, id uint) error {
	if _, err := s.authorized(actor, id); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.AttemptRepo.WithTx(tx).Delete(id)
	})
}

func (s *QuizAttemptService) Mine(studentID uint) ([]model.QuizAttempt, error) {
	return s.AttemptRepo.ListByStudent(studentID)
}
