package model

// PassingPercent is the share of a quiz's total marks needed to pass.
const PassingPercent = 70

// swagger:model Quiz
type Quiz struct {
	BaseModel
	VideoID      uint       `gorm:"uniqueIndex;not null" json:"videoId"`
	Title        string     `gorm:"size:100;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	TotalMarks   int        `gorm:"default:0;not null" json:"totalMarks"`
	PassingMarks float64    `gorm:"default:0;not null" json:"passingMarks"`
	Questions    []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model Question
type Question struct {
	BaseModel
	QuizID   uint   `gorm:"index;not null" json:"quizId"`
	Question string `gorm:"type:text;not null" json:"question"`
	Marks    int    `gorm:"default:1;not null" json:"marks"`
}

func (Question) TableName() string {
	return "questions"
}

type QualifiedStatus string

const (
	QualifiedPending QualifiedStatus = "pending"
	QualifiedPassed  QualifiedStatus = "passed"
	QualifiedFailed  QualifiedStatus = "failed"
)

// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	QuizID          uint            `gorm:"index;not null" json:"quizId"`
	StudentID       uint            `gorm:"index;not null" json:"studentId"`
	MarksObtained   int             `gorm:"default:0;not null" json:"marksObtained"`
	QualifiedStatus QualifiedStatus `gorm:"size:20;default:'pending'" json:"qualifiedStatus"`
	Answers         []AnswerAttempt `gorm:"foreignKey:QuizAttemptID" json:"answers,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// swagger:model AnswerAttempt
type AnswerAttempt struct {
	BaseModel
	QuizAttemptID uint      `gorm:"uniqueIndex:idx_answer_attempt_question;not null" json:"quizAttemptId"`
	QuestionID    uint      `gorm:"uniqueIndex:idx_answer_attempt_question;not null" json:"questionId"`
	Question      *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Answer        string    `gorm:"type:text" json:"answer"`
	IsCorrect     bool      `gorm:"default:false" json:"isCorrect"`
}

func (AnswerAttempt) TableName() string {
	return "answer_attempts"
}
