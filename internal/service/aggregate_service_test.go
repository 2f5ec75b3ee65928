package service

import (
	"context"
	"fmt"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRating(t *testing.T) {
	tests := []struct {
		name    string
		avg     float64
		n       int
		rating  int
		wantAvg float64
		wantN   int
	}{
		{"first rating", 0, 0, 4, 4, 1},
		{"two ratings of three plus a five", 3, 2, 5, 11.0 / 3, 3},
		{"equal rating keeps average", 2, 5, 2, 2, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg, n := AddRating(tt.avg, tt.n, tt.rating)
			assert.InDelta(t, tt.wantAvg, avg, 1e-9)
			assert.Equal(t, tt.wantN, n)
		})
	}

	avg, _ := AddRating(3, 2, 5)
	assert.InDelta(t, 3.667, avg, 0.0005)
}

func TestChangeRating(t *testing.T) {
	// ratings 1, 5 -> 3; change the 1 into a 4 -> 4.5
	assert.InDelta(t, 4.5, ChangeRating(3, 2, 1, 4), 1e-9)
	assert.InDelta(t, 2, ChangeRating(0, 0, 5, 2), 1e-9)
}

func TestRemoveRating(t *testing.T) {
	avg, n := RemoveRating(4, 2, 5)
	assert.InDelta(t, 3, avg, 1e-9)
	assert.Equal(t, 1, n)

	avg, n = RemoveRating(4, 1, 4)
	assert.Zero(t, avg)
	assert.Zero(t, n)
}

func TestPassingMarksAndQualify(t *testing.T) {
	assert.Equal(t, 42.0, PassingMarks(60))
	assert.Equal(t, 0.0, PassingMarks(0))
	assert.InDelta(t, 0.7, PassingMarks(1), 1e-12)

	tests := []struct {
		marks   int
		passing float64
		want    model.QualifiedStatus
	}{
		{42, 42, model.QualifiedPassed},
		{43, 42, model.QualifiedPassed},
		{41, 42, model.QualifiedFailed},
		{0, 0, model.QualifiedPassed},
		{0, 0.7, model.QualifiedFailed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Qualify(tt.marks, tt.passing), "marks=%d passing=%v", tt.marks, tt.passing)
	}
}

func TestRatingSequenceKeepsMean(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.course(t, "Go")
	students := []*model.User{
		env.user(t, "s1", model.Student),
		env.user(t, "s2", model.Student),
		env.user(t, "s3", model.Student),
	}
	for _, s := range students {
		env.enroll(t, s, course, model.EnrollmentApproved, nil)
	}

	live := map[uint]int{}
	mean := func() float64 {
		if len(live) == 0 {
			return 0
		}
		sum := 0
		for _, r := range live {
			sum += r
		}
		return float64(sum) / float64(len(live))
	}
	check := func() {
		t.Helper()
		c := env.reloadCourse(t, course.ID)
		assert.Equal(t, len(live), c.TotalRatings)
		assert.InDelta(t, mean(), c.Rating, 1e-9)
	}

	steps := []struct {
		op      string
		student int
		rating  int
	}{
		{"rate", 0, 3},
		{"rate", 1, 3},
		{"rate", 2, 5},
		{"change", 0, 1},
		{"delete", 2, 0},
		{"change", 1, 4},
		{"delete", 0, 0},
		{"delete", 1, 0},
		{"rate", 2, 2},
	}
	for _, st := range steps {
		s := students[st.student]
		var err error
		switch st.op {
		case "rate":
			_, err = env.engagement.Rate(ctx, actorOf(s), course.ID, st.rating)
			live[s.ID] = st.rating
		case "change":
			_, err = env.engagement.ChangeRating(ctx, actorOf(s), course.ID, st.rating)
			live[s.ID] = st.rating
		case "delete":
			err = env.engagement.Unrate(ctx, actorOf(s), course.ID)
			delete(live, s.ID)
		}
		require.NoError(t, err, "%s by student %d", st.op, st.student)
		check()
	}
}

func TestDeletingOnlyRatingResetsCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.course(t, "Go")
	s := env.user(t, "s1", model.Student)
	env.enroll(t, s, course, model.EnrollmentApproved, nil)

	_, err := env.engagement.Rate(ctx, actorOf(s), course.ID, 5)
	require.NoError(t, err)
	require.NoError(t, env.engagement.Unrate(ctx, actorOf(s), course.ID))

	c := env.reloadCourse(t, course.ID)
	assert.Zero(t, c.Rating)
	assert.Zero(t, c.TotalRatings)

	err = env.engagement.Unrate(ctx, actorOf(s), course.ID)
	assert.ErrorIs(t, err, util.ErrRatingNotFound)
}

func TestQuizTotalsFollowQuestions(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.user(t, "mentor", model.Instructor)
	course := env.course(t, "Go", instructor)
	video := env.video(t, course, "intro")
	actor := actorOf(instructor)

	quiz, err := env.quizzes.Create(actor, QuizInput{VideoID: video.ID, Title: "Intro quiz"})
	require.NoError(t, err)

	var questions []*model.Question
	for _, marks := range []int{10, 20, 30} {
		q, err := env.quizzes.CreateQuestion(actor, QuestionInput{QuizID: quiz.ID, Question: "Q?", Marks: marks})
		require.NoError(t, err)
		questions = append(questions, q)
	}

	stored, err := repository.NewQuizRepository(env.db).FindByID(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, stored.TotalMarks)
	assert.Equal(t, 42.0, stored.PassingMarks)

	_, err = env.quizzes.UpdateQuestion(actor, questions[0].ID, "Q?", 40)
	require.NoError(t, err)
	stored, err = repository.NewQuizRepository(env.db).FindByID(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, stored.TotalMarks)
	assert.Equal(t, 63.0, stored.PassingMarks)

	require.NoError(t, env.quizzes.DeleteQuestion(actor, questions[2].ID))
	stored, err = repository.NewQuizRepository(env.db).FindByID(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, stored.TotalMarks)
	assert.Equal(t, 42.0, stored.PassingMarks)
}

func TestLikeAndUnlike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.course(t, "Go")
	s := env.user(t, "s1", model.Student)
	env.enroll(t, s, course, model.EnrollmentApproved, nil)

	_, err := env.engagement.Like(ctx, actorOf(s), course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.reloadCourse(t, course.ID).Likes)

	_, err = env.engagement.Like(ctx, actorOf(s), course.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyLiked)
	assert.Equal(t, 1, env.reloadCourse(t, course.ID).Likes)

	require.NoError(t, env.engagement.Unlike(ctx, actorOf(s), course.ID))
	assert.Equal(t, 0, env.reloadCourse(t, course.ID).Likes)

	err = env.engagement.Unlike(ctx, actorOf(s), course.ID)
	assert.ErrorIs(t, err, util.ErrLikeNotFound)
	assert.Equal(t, 0, env.reloadCourse(t, course.ID).Likes)
}

func TestRebuildRestoresCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.user(t, "mentor", model.Instructor)
	course := env.course(t, "Go", instructor)
	for i, rating := range []int{2, 5} {
		s := env.user(t, []string{"s1", "s2"}[i], model.Student)
		env.enroll(t, s, course, model.EnrollmentApproved, nil)
		_, err := env.engagement.Like(ctx, actorOf(s), course.ID)
		require.NoError(t, err)
		_, err = env.engagement.Rate(ctx, actorOf(s), course.ID, rating)
		require.NoError(t, err)
	}

	video := env.video(t, course, "intro")
	quiz, err := env.quizzes.Create(actorOf(instructor), QuizInput{VideoID: video.ID, Title: "Intro quiz"})
	require.NoError(t, err)
	_, err = env.quizzes.CreateQuestion(actorOf(instructor), QuestionInput{QuizID: quiz.ID, Question: "Q?", Marks: 10})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&model.Course{}).Where("id = ?", course.ID).
		Updates(map[string]interface{}{"likes": 9, "total_ratings": 0, "rating": 0}).Error)
	require.NoError(t, env.db.Model(&model.Quiz{}).Where("id = ?", quiz.ID).
		Updates(map[string]interface{}{"total_marks": 0, "passing_marks": 0}).Error)

	stats, err := NewAggregateService().Rebuild(env.db)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Courses)
	assert.Equal(t, 1, stats.Quizzes)
	assert.Zero(t, stats.Attempts)

	c := env.reloadCourse(t, course.ID)
	assert.Equal(t, 2, c.Likes)
	assert.Equal(t, 2, c.TotalRatings)
	assert.InDelta(t, 3.5, c.Rating, 1e-9)

	stored, err := repository.NewQuizRepository(env.db).FindByID(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.TotalMarks)
	assert.Equal(t, 7.0, stored.PassingMarks)
}

func TestConcurrentLikesAndRatings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.course(t, "Go")

	const n = 20
	students := make([]*model.User, n)
	for i := range students {
		students[i] = env.user(t, fmt.Sprintf("s%d", i), model.Student)
		env.enroll(t, students[i], course, model.EnrollmentApproved, nil)
	}

	errs := make(chan error, 2*n)
	var wg sync.WaitGroup
	sum := 0
	for i, s := range students {
		rating := i%model.MaxRating + 1
		sum += rating
		wg.Add(1)
		go func(s *model.User, rating int) {
			defer wg.Done()
			if _, err := env.engagement.Like(ctx, actorOf(s), course.ID); err != nil {
				errs <- err
			}
			if _, err := env.engagement.Rate(ctx, actorOf(s), course.ID, rating); err != nil {
				errs <- err
			}
		}(s, rating)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	c := env.reloadCourse(t, course.ID)
	assert.Equal(t, n, c.Likes)
	assert.Equal(t, n, c.TotalRatings)
	assert.InDelta(t, float64(sum)/n, c.Rating, 1e-9)
}
