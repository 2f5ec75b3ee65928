package service

import (
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAnswers(t *testing.T) {
	questions := []model.Question{
		{BaseModel: model.BaseModel{ID: 1}},
		{BaseModel: model.BaseModel{ID: 2}},
	}
	tests := []struct {
		name      string
		questions []model.Question
		answers   []AnswerInput
		ok        bool
	}{
		{"complete", questions, []AnswerInput{{QuestionID: 2}, {QuestionID: 1}}, true},
		{"no questions", nil, []AnswerInput{{QuestionID: 1}}, false},
		{"missing answer", questions, []AnswerInput{{QuestionID: 1}}, false},
		{"foreign question", questions, []AnswerInput{{QuestionID: 1}, {QuestionID: 3}}, false},
		{"duplicate question", questions, []AnswerInput{{QuestionID: 1}, {QuestionID: 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAnswers(tt.questions, tt.answers)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, util.ErrValidation)
			}
		})
	}
}

func TestCheckGrades(t *testing.T) {
	attempt := &model.QuizAttempt{Answers: []model.AnswerAttempt{
		{BaseModel: model.BaseModel{ID: 10}},
		{BaseModel: model.BaseModel{ID: 11}},
	}}
	assert.NoError(t, CheckGrades(attempt, []GradeInput{{AnswerID: 11}, {AnswerID: 10, IsCorrect: true}}))
	assert.ErrorIs(t, CheckGrades(attempt, nil), util.ErrValidation)
	assert.ErrorIs(t, CheckGrades(attempt, []GradeInput{{AnswerID: 10}}), util.ErrValidation)
	assert.ErrorIs(t, CheckGrades(attempt, []GradeInput{{AnswerID: 10}, {AnswerID: 12}}), util.ErrValidation)
	assert.ErrorIs(t, CheckGrades(attempt, []GradeInput{{AnswerID: 10}, {AnswerID: 10}}), util.ErrValidation)
}

func TestSubmitAndGradeAttempt(t *testing.T) {
	env := newTestEnv(t)
	mentor := env.user(t, "mentor", model.Instructor)
	other := env.user(t, "other", model.Instructor)
	course := env.course(t, "Go", mentor, other)
	video := env.video(t, course, "intro")
	s := env.user(t, "s1", model.Student)
	env.enroll(t, s, course, model.EnrollmentApproved, mentor)

	quiz, err := env.quizzes.Create(actorOf(mentor), QuizInput{VideoID: video.ID, Title: "Intro"})
	require.NoError(t, err)
	var qs []*model.Question
	for _, marks := range []int{10, 20, 30} {
		q, err := env.quizzes.CreateQuestion(actorOf(mentor), QuestionInput{QuizID: quiz.ID, Question: "Q?", Marks: marks})
		require.NoError(t, err)
		qs = append(qs, q)
	}

	_, err = env.attempts.Submit(actorOf(s), quiz.ID, []AnswerInput{{QuestionID: qs[0].ID, Answer: "a"}})
	assert.ErrorIs(t, err, util.ErrValidation)

	answers := []AnswerInput{
		{QuestionID: qs[0].ID, Answer: "a"},
		{QuestionID: qs[1].ID, Answer: "b"},
		{QuestionID: qs[2].ID, Answer: "c"},
	}
	attempt, err := env.attempts.Submit(actorOf(s), quiz.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, model.QualifiedPending, attempt.QualifiedStatus)
	require.Len(t, attempt.Answers, 3)

	_, err = env.attempts.Submit(actorOf(mentor), quiz.ID, answers)
	assert.ErrorIs(t, err, util.ErrForbidden)

	byQuestion := map[uint]uint{}
	for _, a := range attempt.Answers {
		byQuestion[a.QuestionID] = a.ID
	}
	grade := func(correct ...bool) []GradeInput {
		out := make([]GradeInput, 0, len(qs))
		for i, q := range qs {
			out = append(out, GradeInput{AnswerID: byQuestion[q.ID], IsCorrect: correct[i]})
		}
		return out
	}

	// the non-assigned instructor may not grade
	_, err = env.attempts.Grade(actorOf(other), attempt.ID, grade(true, true, true))
	assert.ErrorIs(t, err, util.ErrForbidden)

	// 10 + 30 = 40 < 42
	graded, err := env.attempts.Grade(actorOf(mentor), attempt.ID, grade(true, false, true))
	require.NoError(t, err)
	assert.Equal(t, 40, graded.MarksObtained)
	assert.Equal(t, model.QualifiedFailed, graded.QualifiedStatus)

	// 20 + 30 = 50 >= 42
	graded, err = env.attempts.Grade(actorOf(mentor), attempt.ID, grade(false, true, true))
	require.NoError(t, err)
	assert.Equal(t, 50, graded.MarksObtained)
	assert.Equal(t, model.QualifiedPassed, graded.QualifiedStatus)

	mine, err := env.attempts.Mine(s.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 50, mine[0].MarksObtained)

	require.NoError(t, env.attempts.Delete(actorOf(mentor), attempt.ID))
	_, err = env.attempts.Get(actorOf(mentor), attempt.ID)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestQuizPerVideoIsUnique(t *testing.T) {
	env := newTestEnv(t)
	mentor := env.user(t, "mentor", model.Instructor)
	outsider := env.user(t, "outsider", model.Instructor)
	course := env.course(t, "Go", mentor)
	video := env.video(t, course, "intro")

	_, err := env.quizzes.Create(actorOf(outsider), QuizInput{VideoID: video.ID, Title: "Intro"})
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = env.quizzes.Create(actorOf(mentor), QuizInput{VideoID: video.ID, Title: "Intro"})
	require.NoError(t, err)
	_, err = env.quizzes.Create(actorOf(mentor), QuizInput{VideoID: video.ID, Title: "Again"})
	assert.ErrorIs(t, err, util.ErrQuizExists)

	_, err = env.quizzes.List(actorOf(mentor), 0)
	assert.ErrorIs(t, err, util.ErrValidation)
	all, err := env.quizzes.List(actorOf(env.admin), 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	byCourse, err := env.quizzes.List(actorOf(mentor), course.ID)
	require.NoError(t, err)
	assert.Len(t, byCourse, 1)
}
