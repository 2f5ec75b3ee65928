package service

import (
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// QuizService manages quizzes and their questions. Access is decided by the
// course that owns the quiz's video.
type QuizService struct {
	DB         *gorm.DB
	QuizRepo   *repository.QuizRepository
	VideoRepo  *repository.VideoRepository
	Access     *AccessService
	Aggregates *AggregateService
}

func NewQuizService(db *gorm.DB, quizRepo *repository.QuizRepository, videoRepo *repository.VideoRepository, access *AccessService, aggregates *AggregateService) *QuizService {
	return &QuizService{
		DB:         db,
		QuizRepo:   quizRepo,
		VideoRepo:  videoRepo,
		Access:     access,
		Aggregates: aggregates,
	}
}

type QuizInput struct {
	VideoID     uint
	Title       string
	Description string
}

type QuestionInput struct {
	QuizID   uint
	Question string
	Marks    int
}

func (s *QuizService) video(id uint) (*model.CourseVideo, error) {
	v, err := s.VideoRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVideoNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *QuizService) courseOf(quizID uint) (uint, error) {
	courseID, err := s.QuizRepo.CourseIDOf(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, util.ErrQuizNotFound
		}
		return 0, err
	}
	return courseID, nil
}

func (s *QuizService) questionCourse(questionID uint) (*model.Question, uint, error) {
	q, err := s.QuizRepo.FindQuestion(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, util.ErrQuestionNotFound
		}
		return nil, 0, err
	}
	courseID, err := s.courseOf(q.QuizID)
	if err != nil {
		return nil, 0, err
	}
	return q, courseID, nil
}

// List returns the quizzes of a course, or every quiz for an admin when
// courseID is 0.
func (s *QuizService) List(actor Actor, courseID uint) ([]model.Quiz, error) {
	if courseID == 0 {
		if !actor.IsAdmin() {
			return nil, util.NewValidationError("course", "this field is required")
		}
		return s.QuizRepo.List()
	}
	if err := s.Access.CanView(actor, courseID); err != nil {
		return nil, err
	}
	videos, err := s.VideoRepo.ListByCourse(courseID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	return s.QuizRepo.ListByVideos(ids)
}

func (s *QuizService) Get(actor Actor, id uint) (*model.Quiz, error) {
	courseID, err := s.courseOf(id)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanView(actor, courseID); err != nil {
		return nil, err
	}
	return s.QuizRepo.FindWithQuestions(id)
}

func validateQuiz(in QuizInput) error {
	if in.VideoID == 0 {
		return util.NewValidationError("video", "this field is required")
	}
	if in.Title == "" {
		return util.NewValidationError("title", "this field is required")
	}
	return nil
}

func mapQuizConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrQuizExists
	}
	return err
}

func (s *QuizService) Create(actor Actor, in QuizInput) (*model.Quiz, error) {
	if err := validateQuiz(in); err != nil {
		return nil, err
	}
	v, err := s.video(in.VideoID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanManage(actor, v.CourseID); err != nil {
		return nil, err
	}
	quiz := &model.Quiz{VideoID: in.VideoID, Title: in.Title, Description: in.Description}
	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, mapQuizConflict(err)
	}
	return quiz, nil
}

// Update rewrites the quiz fields. Moving it to another video requires manage
// rights on both courses.
func (s *QuizService) Update(actor Actor, id uint, in QuizInput) (*model.Quiz, error) {
	if err := validateQuiz(in); err != nil {
		return nil, err
	}
	courseID, err := s.courseOf(id)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanManage(actor, courseID); err != nil {
		return nil, err
	}
	v, err := s.video(in.VideoID)
	if err != nil {
		return nil, err
	}
	if v.CourseID != courseID {
		if err := s.Access.CanManage(actor, v.CourseID); err != nil {
			return nil, err
		}
	}
	quiz, err := s.QuizRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	quiz.VideoID, quiz.Title, quiz.Description = in.VideoID, in.Title, in.Description
	if err := s.QuizRepo.UpdateFields(quiz); err != nil {
		return nil, mapQuizConflict(err)
	}
	return s.QuizRepo.FindWithQuestions(id)
}

func (s *QuizService) Delete(actor Actor, id uint) error {
	courseID, err := s.courseOf(id)
	if err != nil {
		return err
	}
	if err := s.Access.CanManage(actor, courseID); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.QuizRepo.WithTx(tx).Delete(id)
	})
}

func (s *QuizService) GetQuestion(actor Actor, id uint) (*model.Question, error) {
	q, courseID, err := s.questionCourse(id)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanView(actor, courseID); err != nil {
		return nil, err
	}
	return q, nil
}

func validateQuestion(text string, marks int) error {
	if text == "" {
		return util.NewValidationError("question", "this field is required")
	}
	if marks <= 0 {
		return util.NewValidationError("marks", "must be a positive integer")
	}
	return nil
}

// CreateQuestion adds a question and recomputes the quiz totals in the same
// transaction.
func (s *QuizService) CreateQuestion(actor Actor, in QuestionInput) (*model.Question, error) {
	if in.Marks == 0 {
		in.Marks = 1
	}
	if err := validateQuestion(in.Question, in.Marks); err != nil {
		return nil, err
	}
	courseID, err := s.courseOf(in.QuizID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanManage(actor, courseID); err != nil {
		return nil, err
	}

	q := &model.Question{QuizID: in.QuizID, Question: in.Question, Marks: in.Marks}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.QuizRepo.WithTx(tx).CreateQuestion(q); err != nil {
			return err
		}
		return s.Aggregates.RecomputeQuizTotals(tx, q.QuizID)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuizService) UpdateQuestion(actor Actor, id uint, text string, marks int) (*model.Question, error) {
	if marks == 0 {
		marks = 1
	}
	if err := validateQuestion(text, marks); err != nil {
		return nil, err
	}
	q, courseID, err := s.questionCourse(id)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanManage(actor, courseID); err != nil {
		return nil, err
	}

	q.Question, q.Marks = text, marks
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.QuizRepo.WithTx(tx).UpdateQuestion(q); err != nil {
			return err
		}
		return s.Aggregates.RecomputeQuizTotals(tx, q.QuizID)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuizService) DeleteQuestion(actor Actor, id uint) error {
	q, courseID, err := s.questionCourse(id)
	if err != nil {
		return err
	}
	if err := s.Access.CanManage(actor, courseID); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.QuizRepo.WithTx(tx).DeleteQuestion(id); err != nil {
			return err
		}
		return s.Aggregates.RecomputeQuizTotals(tx, q.QuizID)
	})
}
