package service

import (
	"context"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seeder := NewSeedService(env.users, env.courses, 42)

	res, err := seeder.Seed(ctx, 3, 4, 2)
	require.NoError(t, err)
	require.Len(t, res.Instructors, 3)
	require.Len(t, res.Courses, 4)

	for _, u := range res.Instructors {
		assert.Equal(t, model.Instructor, u.Role)
		_, _, err := env.auth.Login(u.Username, SeedPassword)
		assert.NoError(t, err, u.Username)
	}

	for _, c := range res.Courses {
		stored := env.reloadCourse(t, c.ID)
		assert.NotEmpty(t, stored.Name)
		assert.Len(t, stored.Instructors, 2)
		assert.Zero(t, stored.Likes)
		assert.Zero(t, stored.TotalRatings)
	}
}

func TestSeedCapsInstructorsPerCourse(t *testing.T) {
	env := newTestEnv(t)
	seeder := NewSeedService(env.users, env.courses, 7)

	res, err := seeder.Seed(context.Background(), 1, 1, 3)
	require.NoError(t, err)
	assert.Len(t, env.reloadCourse(t, res.Courses[0].ID).Instructors, 1)

	_, err = seeder.Seed(context.Background(), 0, 1, 1)
	assert.ErrorIs(t, err, util.ErrValidation)
}
