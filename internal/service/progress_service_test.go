package service

import (
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionPercentage(t *testing.T) {
	tests := []struct {
		completed, total int
		want             float64
	}{
		{0, 0, 0},
		{0, 4, 0},
		{1, 4, 25},
		{3, 3, 100},
		{1, 3, 100.0 / 3},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, CompletionPercentage(tt.completed, tt.total), 1e-9)
	}
}

func TestProgressLifecycle(t *testing.T) {
	env := newTestEnv(t)
	mentor := env.user(t, "mentor", model.Instructor)
	course := env.course(t, "Go", mentor)
	other := env.course(t, "Rust", mentor)
	v1 := env.video(t, course, "one")
	v2 := env.video(t, course, "two")
	v3 := env.video(t, course, "three")
	foreign := env.video(t, other, "elsewhere")
	s := env.user(t, "s1", model.Student)
	env.enroll(t, s, course, model.EnrollmentApproved, mentor)
	a := actorOf(s)

	_, err := env.progress.Get(a, course.ID)
	assert.ErrorIs(t, err, util.ErrProgressNotFound)

	view, err := env.progress.Create(a, course.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, view.CompletedVideos)
	assert.Len(t, view.RemainingVideos, 3)
	assert.Zero(t, view.CompletionPercentage)

	_, err = env.progress.Create(a, course.ID, nil)
	assert.ErrorIs(t, err, util.ErrProgressExists)

	view, err = env.progress.Update(a, course.ID, []uint{v1.ID}, false)
	require.NoError(t, err)
	assert.InDelta(t, 100.0/3, view.CompletionPercentage, 1e-9)

	view, err = env.progress.Update(a, course.ID, []uint{v2.ID, v1.ID}, false)
	require.NoError(t, err)
	assert.Len(t, view.CompletedVideos, 2)
	require.Len(t, view.RemainingVideos, 1)
	assert.Equal(t, v3.ID, view.RemainingVideos[0].ID)

	_, err = env.progress.Update(a, course.ID, []uint{foreign.ID}, false)
	var verr *util.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "completedVideos")

	view, err = env.progress.Update(a, course.ID, []uint{v3.ID}, true)
	require.NoError(t, err)
	require.Len(t, view.CompletedVideos, 1)
	assert.Equal(t, v3.ID, view.CompletedVideos[0].ID)

	list, err := env.progress.StudentsProgress(actorOf(mentor), course.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s.ID, list[0].Student.ID)

	_, err = env.progress.StudentsProgress(a, course.ID)
	assert.ErrorIs(t, err, util.ErrForbidden)

	require.NoError(t, env.progress.Delete(a, course.ID))
	_, err = env.progress.Get(a, course.ID)
	assert.ErrorIs(t, err, util.ErrProgressNotFound)
}

func TestProgressNeedsApprovedEnrollment(t *testing.T) {
	env := newTestEnv(t)
	course := env.course(t, "Go")
	s := env.user(t, "s1", model.Student)
	env.enroll(t, s, course, model.EnrollmentPending, nil)

	_, err := env.progress.Create(actorOf(s), course.ID, nil)
	assert.ErrorIs(t, err, util.ErrForbidden)
}
