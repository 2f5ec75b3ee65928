package service

import (
	"context"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		user      model.User
		password  string
		password2 string
		field     string
		target    error
	}{
		{"passwords differ", model.User{Username: "a", Email: "a@example.com"}, "password123", "password124", "password", util.ErrValidation},
		{"password too short", model.User{Username: "b", Email: "b@example.com"}, "short", "short", "password", util.ErrValidation},
		{"unknown role", model.User{Username: "c", Email: "c@example.com", Role: "owner"}, "password123", "password123", "role", util.ErrValidation},
		{"duplicate username", model.User{Username: "admin", Email: "d@example.com"}, "password123", "password123", "", util.ErrUsernameTaken},
		{"duplicate email", model.User{Username: "e", Email: "admin@example.com"}, "password123", "password123", "", util.ErrEmailRegistered},
		{"second admin", model.User{Username: "f", Email: "f@example.com", Role: model.Admin}, "password123", "password123", "", util.ErrAdminExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			err := env.users.Create(&u, tt.password, tt.password2)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			if tt.field != "" {
				var verr *util.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, tt.field)
			}
		})
	}
}

func TestCreateUserDefaultsToStudent(t *testing.T) {
	env := newTestEnv(t)
	u := &model.User{Username: "newbie", Email: "newbie@example.com"}
	require.NoError(t, env.users.Create(u, "password123", "password123"))

	assert.Equal(t, model.Student, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "password123", u.Password)
}

func TestSingleAdminOnUpdate(t *testing.T) {
	env := newTestEnv(t)
	mentor := env.user(t, "mentor", model.Instructor)
	admin := model.Admin

	_, err := env.users.Update(actorOf(env.admin), mentor.ID, UserPatch{Role: &admin})
	assert.ErrorIs(t, err, util.ErrAdminExists)

	// the existing admin may keep its own role
	same, err := env.users.Update(actorOf(env.admin), env.admin.ID, UserPatch{Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, model.Admin, same.Role)

	// once the admin steps down another user may take over
	student := model.Student
	_, err = env.users.Update(actorOf(env.admin), env.admin.ID, UserPatch{Role: &student})
	require.NoError(t, err)
	promoted, err := env.users.Update(actorOf(env.admin), mentor.ID, UserPatch{Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, model.Admin, promoted.Role)
}

func TestUpdateUserPermissions(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice", model.Student)
	bob := env.user(t, "bob", model.Student)

	name := "alice2"
	updated, err := env.users.Update(actorOf(alice), alice.ID, UserPatch{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)

	_, err = env.users.Update(actorOf(bob), alice.ID, UserPatch{Username: &name})
	assert.ErrorIs(t, err, util.ErrForbidden)

	inactive := false
	_, err = env.users.Update(actorOf(alice), alice.ID, UserPatch{IsActive: &inactive})
	assert.ErrorIs(t, err, util.ErrForbidden)

	taken := "bob"
	_, err = env.users.Update(actorOf(alice), alice.ID, UserPatch{Username: &taken})
	assert.ErrorIs(t, err, util.ErrUsernameTaken)

	_, err = env.users.Update(actorOf(env.admin), alice.ID, UserPatch{IsActive: &inactive})
	require.NoError(t, err)
	_, _, err = env.auth.Login("alice2", "password123")
	assert.ErrorIs(t, err, util.ErrInactiveAccount)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "carol", model.Student)

	err := env.users.ChangePassword(u.ID, "wrong-password", "newpassword1", "newpassword1")
	var verr *util.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "current_password")

	err = env.users.ChangePassword(u.ID, "password123", "newpassword1", "newpassword2")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")

	require.NoError(t, env.users.ChangePassword(u.ID, "password123", "newpassword1", "newpassword1"))
	_, _, err = env.auth.Login("carol", "password123")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, _, err = env.auth.Login("carol", "newpassword1")
	assert.NoError(t, err)
}

func TestDeleteUserWithdrawsEngagement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.course(t, "Go")
	s1 := env.user(t, "s1", model.Student)
	s2 := env.user(t, "s2", model.Student)
	env.enroll(t, s1, course, model.EnrollmentApproved, nil)
	env.enroll(t, s2, course, model.EnrollmentApproved, nil)

	_, err := env.engagement.Like(ctx, actorOf(s1), course.ID)
	require.NoError(t, err)
	_, err = env.engagement.Like(ctx, actorOf(s2), course.ID)
	require.NoError(t, err)
	_, err = env.engagement.Rate(ctx, actorOf(s1), course.ID, 1)
	require.NoError(t, err)
	_, err = env.engagement.Rate(ctx, actorOf(s2), course.ID, 5)
	require.NoError(t, err)

	require.NoError(t, env.users.Delete(actorOf(env.admin), s1.ID))

	c := env.reloadCourse(t, course.ID)
	assert.Equal(t, 1, c.Likes)
	assert.Equal(t, 1, c.TotalRatings)
	assert.InDelta(t, 5.0, c.Rating, 1e-9)

	_, err = env.users.Get(actorOf(env.admin), s1.ID)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestDeleteUserOnDeletedCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.course(t, "Go")
	s := env.user(t, "s1", model.Student)
	env.enroll(t, s, course, model.EnrollmentApproved, nil)

	_, err := env.engagement.Like(ctx, actorOf(s), course.ID)
	require.NoError(t, err)
	_, err = env.engagement.Rate(ctx, actorOf(s), course.ID, 4)
	require.NoError(t, err)

	require.NoError(t, env.courses.Delete(ctx, course.ID))
	require.NoError(t, env.users.Delete(actorOf(env.admin), s.ID))

	restored, err := env.courses.Restore(ctx, course.ID)
	require.NoError(t, err)
	assert.Zero(t, restored.Likes)
	assert.Zero(t, restored.TotalRatings)
	assert.Zero(t, restored.Rating)

	c := env.reloadCourse(t, course.ID)
	assert.Zero(t, c.Likes)
	assert.Zero(t, c.TotalRatings)
	assert.Zero(t, c.Rating)
}

func TestSingleAdminIndex(t *testing.T) {
	env := newTestEnv(t)
	repo := repository.NewUserRepository(env.db)

	// bypasses the service check, as a concurrent writer would
	second := &model.User{Username: "root2", Email: "root2@example.com", Password: "x", Role: model.Admin, IsActive: true}
	assert.ErrorIs(t, repo.Create(second), gorm.ErrDuplicatedKey)

	assert.ErrorIs(t, env.users.conflictFor(gorm.ErrDuplicatedKey, 0, model.Admin), util.ErrAdminExists)
	assert.ErrorIs(t, env.users.conflictFor(gorm.ErrDuplicatedKey, 0, model.Student), util.ErrConflict)
	assert.NotErrorIs(t, env.users.conflictFor(gorm.ErrDuplicatedKey, 0, model.Student), util.ErrAdminExists)
	assert.NoError(t, env.users.conflictFor(nil, 0, model.Admin))

	instructor := model.Instructor
	_, err := env.users.Update(actorOf(env.admin), env.admin.ID, UserPatch{Role: &instructor})
	require.NoError(t, err)

	third := &model.User{Username: "root3", Email: "root3@example.com", Password: "x", Role: model.Admin, IsActive: true}
	assert.NoError(t, repo.Create(third))
}

func TestAuthTokens(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "dave", model.Instructor)

	_, _, err := env.auth.Login("dave", "nope-nope")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, _, err = env.auth.Login("nobody", "password123")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	user, tokens, err := env.auth.Login("dave", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)

	claims, err := util.ParseJWT(tokens.Access, env.auth.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, util.TokenAccess, claims.TokenType)
	assert.Equal(t, model.Instructor, claims.Role)

	access, err := env.auth.Refresh(tokens.Refresh)
	require.NoError(t, err)
	claims, err = util.ParseJWT(access, env.auth.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, util.TokenAccess, claims.TokenType)
	assert.Equal(t, u.ID, claims.UserID)

	_, err = env.auth.Refresh(tokens.Access)
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}
