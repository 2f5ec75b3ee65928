package service

import (
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// AggregateService keeps the derived counters on courses, quizzes and
// attempts in step with the rows they summarise. Every method must be called
// with the transaction that performed the write it reacts to.
type AggregateService struct{}

func NewAggregateService() *AggregateService {
	return &AggregateService{}
}

func (s *AggregateService) LikeAdded(tx *gorm.DB, courseID uint) error {
	return s.updateCourse(tx, courseID, func(c *model.Course) {
		c.Likes++
	})
}

func (s *AggregateService) LikeRemoved(tx *gorm.DB, courseID uint) error {
	return s.updateCourse(tx, courseID, func(c *model.Course) {
		c.Likes--
	})
}

func (s *AggregateService) RatingAdded(tx *gorm.DB, courseID uint, rating int) error {
	return s.updateCourse(tx, courseID, func(c *model.Course) {
		c.Rating, c.TotalRatings = AddRating(c.Rating, c.TotalRatings, rating)
	})
}

func (s *AggregateService) RatingChanged(tx *gorm.DB, courseID uint, oldRating, newRating int) error {
	return s.updateCourse(tx, courseID, func(c *model.Course) {
		c.Rating = ChangeRating(c.Rating, c.TotalRatings, oldRating, newRating)
	})
}

func (s *AggregateService) RatingRemoved(tx *gorm.DB, courseID uint, rating int) error {
	return s.updateCourse(tx, courseID, func(c *model.Course) {
		c.Rating, c.TotalRatings = RemoveRating(c.Rating, c.TotalRatings, rating)
	})
}

func (s *AggregateService) updateCourse(tx *gorm.DB, courseID uint, apply func(*model.Course)) error {
	repo := repository.NewCourseRepository(tx)
	course, err := repo.LockByID(courseID)
	if err != nil {
		return err
	}
	apply(course)
	return repo.SaveAggregates(course)
}

// RecomputeQuizTotals sets total_marks to the sum of the quiz's question marks
// and passing_marks to PassingPercent of it.
func (s *AggregateService) RecomputeQuizTotals(tx *gorm.DB, quizID uint) error {
	repo := repository.NewQuizRepository(tx)
	quiz, err := repo.LockByID(quizID)
	if err != nil {
		return err
	}
	total, err := repo.SumMarks(quizID)
	if err != nil {
		return err
	}
	quiz.TotalMarks = total
	quiz.PassingMarks = PassingMarks(total)
	return repo.SaveTotals(quiz)
}

// ScoreAttempt recomputes marks_obtained from the correct answers and derives
// the qualified status from the quiz's passing marks.
func (s *AggregateService) ScoreAttempt(tx *gorm.DB, attemptID uint) (*model.QuizAttempt, error) {
	attempts := repository.NewQuizAttemptRepository(tx)
	attempt, err := attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	quiz, err := repository.NewQuizRepository(tx).LockByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	marks, err := attempts.CorrectMarks(attemptID)
	if err != nil {
		return nil, err
	}
	attempt.MarksObtained = marks
	attempt.QualifiedStatus = Qualify(marks, quiz.PassingMarks)
	if err := attempts.SaveScore(attempt); err != nil {
		return nil, err
	}
	monitoring.AttemptsGraded.WithLabelValues(string(attempt.QualifiedStatus)).Inc()
	return attempt, nil
}

// RebuildCourse recounts a course's likes and ratings from the stored rows,
// overwriting whatever the running counters hold.
func (s *AggregateService) RebuildCourse(tx *gorm.DB, courseID uint) error {
	likes, n, avg, err := repository.NewEngagementRepository(tx).CourseTotals(courseID)
	if err != nil {
		return err
	}
	course := &model.Course{Likes: likes, TotalRatings: n, Rating: avg}
	course.ID = courseID
	return repository.NewCourseRepository(tx).SaveAggregates(course)
}

type RebuildStats struct {
	Courses  int
	Quizzes  int
	Attempts int
}

// Rebuild recomputes every derived counter in the database, one transaction
// per row. Quiz totals are refreshed before graded attempts are rescored.
func (s *AggregateService) Rebuild(db *gorm.DB) (RebuildStats, error) {
	var stats RebuildStats

	courseIDs, err := repository.NewCourseRepository(db).AllIDs()
	if err != nil {
		return stats, err
	}
	for _, id := range courseIDs {
		if err := db.Transaction(func(tx *gorm.DB) error {
			return s.RebuildCourse(tx, id)
		}); err != nil {
			return stats, err
		}
		stats.Courses++
	}

	quizIDs, err := repository.NewQuizRepository(db).AllIDs()
	if err != nil {
		return stats, err
	}
	for _, id := range quizIDs {
		if err := db.Transaction(func(tx *gorm.DB) error {
			return s.RecomputeQuizTotals(tx, id)
		}); err != nil {
			return stats, err
		}
		stats.Quizzes++
	}

	attemptIDs, err := repository.NewQuizAttemptRepository(db).GradedIDs()
	if err != nil {
		return stats, err
	}
	for _, id := range attemptIDs {
		if err := db.Transaction(func(tx *gorm.DB) error {
			_, err := s.ScoreAttempt(tx, id)
			return err
		}); err != nil {
			return stats, err
		}
		stats.Attempts++
	}
	return stats, nil
}

// AddRating folds a new rating into a running average over n ratings.
func AddRating(avg float64, n, rating int) (float64, int) {
	return (avg*float64(n) + float64(rating)) / float64(n+1), n + 1
}

// ChangeRating replaces one of the n ratings behind avg.
func ChangeRating(avg float64, n, oldRating, newRating int) float64 {
	if n <= 0 {
		return float64(newRating)
	}
	return (avg*float64(n) + float64(newRating-oldRating)) / float64(n)
}

// RemoveRating takes one rating out of the average; the last one resets it.
func RemoveRating(avg float64, n, rating int) (float64, int) {
	if n-1 <= 0 {
		return 0, 0
	}
	return (avg*float64(n) - float64(rating)) / float64(n-1), n - 1
}

func PassingMarks(total int) float64 {
	return float64(total) * model.PassingPercent / 100
}

func Qualify(marks int, passing float64) model.QualifiedStatus {
	if float64(marks) >= passing {
		return model.QualifiedPassed
	}
	return model.QualifiedFailed
}
