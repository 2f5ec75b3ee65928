package service

import (
	"context"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourseChecksInstructors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mentor := env.user(t, "mentor", model.Instructor)
	student := env.user(t, "student", model.Student)

	_, err := env.courses.Create(ctx, CourseInput{Name: ""})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.courses.Create(ctx, CourseInput{Name: "Go", InstructorIDs: []uint{student.ID}})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.courses.Create(ctx, CourseInput{Name: "Go", InstructorIDs: []uint{9999}})
	assert.ErrorIs(t, err, util.ErrValidation)

	course, err := env.courses.Create(ctx, CourseInput{Name: "Go", InstructorIDs: []uint{mentor.ID, mentor.ID}})
	require.NoError(t, err)
	require.Len(t, course.Instructors, 1)
	assert.Equal(t, mentor.ID, course.Instructors[0].ID)

	mine, err := env.courses.InstructorCourses(mentor.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, course.ID, mine[0].ID)
}

func TestUpdateCourseInstructors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	t1 := env.user(t, "t1", model.Instructor)
	t2 := env.user(t, "t2", model.Instructor)
	course := env.course(t, "Go", t1)

	updated, err := env.courses.Update(ctx, course.ID, CourseInput{Name: "Go 2"}, false)
	require.NoError(t, err)
	assert.Equal(t, "Go 2", updated.Name)
	got, err := env.courses.Instructors(course.ID)
	require.NoError(t, err)
	require.Len(t, got.Instructors, 1)
	assert.Equal(t, t1.ID, got.Instructors[0].ID)

	_, err = env.courses.Update(ctx, course.ID, CourseInput{Name: "Go 2", InstructorIDs: []uint{t2.ID}}, true)
	require.NoError(t, err)
	got, err = env.courses.Instructors(course.ID)
	require.NoError(t, err)
	require.Len(t, got.Instructors, 1)
	assert.Equal(t, t2.ID, got.Instructors[0].ID)

	_, err = env.courses.Update(ctx, 9999, CourseInput{Name: "x"}, false)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestSoftDeleteAndRestoreCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.course(t, "Go")
	env.course(t, "Rust")

	require.NoError(t, env.courses.Delete(ctx, course.ID))

	_, err := env.courses.Get(ctx, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	assert.ErrorIs(t, env.courses.Delete(ctx, course.ID), util.ErrCourseNotFound)

	page, err := env.courses.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	all, err := env.courses.ListAll(1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	deleted := env.reloadCourse(t, course.ID)
	assert.True(t, deleted.IsDeleted)
	assert.NotNil(t, deleted.DeletedTime())

	restored, err := env.courses.Restore(ctx, course.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedTime())

	_, err = env.courses.Restore(ctx, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestListCoursesSearchAndPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, name := range []string{"Intro to Go", "Advanced Go", "Rust Basics"} {
		env.course(t, name)
	}

	page, err := env.courses.List(ctx, "go", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Len(t, page.Items, 2)

	page, err = env.courses.List(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Rust Basics", page.Items[0].Name)
}

func TestCourseDetailIncludesComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course := env.course(t, "Go")
	alice := env.user(t, "alice", model.Student)
	bob := env.user(t, "bob", model.Student)
	env.enroll(t, alice, course, model.EnrollmentApproved, nil)
	env.enroll(t, bob, course, model.EnrollmentApproved, nil)

	comment, err := env.engagement.AddComment(ctx, actorOf(alice), course.ID, "great")
	require.NoError(t, err)

	_, err = env.engagement.EditComment(ctx, actorOf(bob), course.ID, comment.ID, "mine now")
	assert.ErrorIs(t, err, util.ErrForbidden)
	assert.ErrorIs(t, env.engagement.DeleteComment(ctx, actorOf(bob), course.ID, comment.ID), util.ErrForbidden)

	_, err = env.engagement.EditComment(ctx, actorOf(alice), course.ID, comment.ID, "really great")
	require.NoError(t, err)

	detail, err := env.courses.Get(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "really great", detail.Comments[0].Content)

	require.NoError(t, env.engagement.DeleteComment(ctx, actorOf(alice), course.ID, comment.ID))
	_, err = env.engagement.EditComment(ctx, actorOf(alice), course.ID, comment.ID, "again")
	assert.ErrorIs(t, err, util.ErrCommentNotFound)
}
