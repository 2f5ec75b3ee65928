package service

import (
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollStartsPendingAndIsUnique(t *testing.T) {
	env := newTestEnv(t)
	course := env.course(t, "Go")
	s := env.user(t, "s1", model.Student)

	view, err := env.enrollments.Enroll(s.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentPending, view.Status)
	assert.Equal(t, "Go", view.Course.Name)
	assert.Equal(t, "s1", view.Student.Username)
	assert.Nil(t, view.Instructor)

	_, err = env.enrollments.Enroll(s.ID, course.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)
	assert.ErrorIs(t, err, util.ErrConflict)

	_, err = env.enrollments.Enroll(s.ID, 9999)
	assert.Error(t, err)
}

func TestPatchEnrollment(t *testing.T) {
	env := newTestEnv(t)
	mentor := env.user(t, "mentor", model.Instructor)
	outsider := env.user(t, "outsider", model.Instructor)
	course := env.course(t, "Go", mentor)
	s := env.user(t, "s1", model.Student)

	view, err := env.enrollments.Enroll(s.ID, course.ID)
	require.NoError(t, err)

	approved := model.EnrollmentApproved
	_, err = env.enrollments.Patch(actorOf(outsider), view.ID, EnrollmentPatch{Status: &approved})
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = env.enrollments.Patch(actorOf(s), view.ID, EnrollmentPatch{Status: &approved})
	assert.ErrorIs(t, err, util.ErrForbidden)

	bogus := model.EnrollmentStatus("done")
	_, err = env.enrollments.Patch(actorOf(mentor), view.ID, EnrollmentPatch{Status: &bogus})
	assert.ErrorIs(t, err, util.ErrValidation)

	patched, err := env.enrollments.Patch(actorOf(mentor), view.ID, EnrollmentPatch{
		Status:        &approved,
		SetInstructor: true,
		InstructorID:  &mentor.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentApproved, patched.Status)
	require.NotNil(t, patched.Instructor)
	assert.Equal(t, mentor.ID, patched.Instructor.ID)

	// absent instructor leaves it alone, explicit null clears it
	patched, err = env.enrollments.Patch(actorOf(mentor), view.ID, EnrollmentPatch{})
	require.NoError(t, err)
	require.NotNil(t, patched.Instructor)
	patched, err = env.enrollments.Patch(actorOf(mentor), view.ID, EnrollmentPatch{SetInstructor: true})
	require.NoError(t, err)
	assert.Nil(t, patched.Instructor)

	// a student cannot be assigned as instructor
	_, err = env.enrollments.Patch(actorOf(env.admin), view.ID, EnrollmentPatch{SetInstructor: true, InstructorID: &s.ID})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestReplaceEnrollmentKeepsPairUnique(t *testing.T) {
	env := newTestEnv(t)
	go1 := env.course(t, "Go")
	rust := env.course(t, "Rust")
	s := env.user(t, "s1", model.Student)

	first, err := env.enrollments.Enroll(s.ID, go1.ID)
	require.NoError(t, err)
	second, err := env.enrollments.Enroll(s.ID, rust.ID)
	require.NoError(t, err)

	_, err = env.enrollments.Replace(second.ID, EnrollmentInput{CourseID: go1.ID, StudentID: s.ID, Status: model.EnrollmentApproved})
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	replaced, err := env.enrollments.Replace(first.ID, EnrollmentInput{CourseID: go1.ID, StudentID: s.ID, Status: model.EnrollmentRejected})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentRejected, replaced.Status)

	_, err = env.enrollments.Replace(first.ID, EnrollmentInput{CourseID: go1.ID, StudentID: s.ID, Status: ""})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestStudentEnrollmentOwnership(t *testing.T) {
	env := newTestEnv(t)
	course := env.course(t, "Go")
	alice := env.user(t, "alice", model.Student)
	bob := env.user(t, "bob", model.Student)

	view, err := env.enrollments.Enroll(alice.ID, course.ID)
	require.NoError(t, err)

	_, err = env.enrollments.StudentEnrollment(bob.ID, view.ID)
	assert.ErrorIs(t, err, util.ErrForbidden)
	assert.ErrorIs(t, env.enrollments.Withdraw(bob.ID, view.ID), util.ErrForbidden)

	list, err := env.enrollments.StudentEnrollments(alice.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, env.enrollments.Withdraw(alice.ID, view.ID))
	_, err = env.enrollments.Get(view.ID)
	assert.ErrorIs(t, err, util.ErrEnrollmentNotFound)
}

func TestInstructorStudents(t *testing.T) {
	env := newTestEnv(t)
	mentor := env.user(t, "mentor", model.Instructor)
	course := env.course(t, "Go", mentor)
	s1 := env.user(t, "s1", model.Student)
	s2 := env.user(t, "s2", model.Student)
	env.enroll(t, s1, course, model.EnrollmentApproved, mentor)
	env.enroll(t, s2, course, model.EnrollmentPending, nil)

	list, err := env.enrollments.InstructorStudents(mentor.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s1.ID, list[0].Student.ID)
}

func TestAccessPredicates(t *testing.T) {
	env := newTestEnv(t)
	mentor := env.user(t, "mentor", model.Instructor)
	other := env.user(t, "other", model.Instructor)
	course := env.course(t, "Go", mentor, other)
	approved := env.user(t, "approved", model.Student)
	pending := env.user(t, "pending", model.Student)
	stranger := env.user(t, "stranger", model.Student)
	env.enroll(t, approved, course, model.EnrollmentApproved, mentor)
	env.enroll(t, pending, course, model.EnrollmentPending, nil)

	tests := []struct {
		name   string
		actor  *model.User
		view   error
		manage error
		study  error
	}{
		{"admin", env.admin, nil, nil, util.ErrForbidden},
		{"course instructor", mentor, nil, nil, util.ErrForbidden},
		{"approved student", approved, nil, util.ErrForbidden, nil},
		{"pending student", pending, util.ErrForbidden, util.ErrForbidden, util.ErrForbidden},
		{"unrelated student", stranger, util.ErrForbidden, util.ErrForbidden, util.ErrForbidden},
	}
	check := func(t *testing.T, want, got error) {
		if want == nil {
			assert.NoError(t, got)
		} else {
			assert.ErrorIs(t, got, want)
		}
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := actorOf(tt.actor)
			check(t, tt.view, env.access.CanView(a, course.ID))
			check(t, tt.manage, env.access.CanManage(a, course.ID))
			check(t, tt.study, env.access.RequireApprovedStudent(a, course.ID))
		})
	}

	assert.ErrorIs(t, env.access.CanView(actorOf(env.admin), 9999), util.ErrCourseNotFound)

	// grading needs the assigned instructor, not just any instructor of the course
	assert.NoError(t, env.access.CanGrade(actorOf(mentor), course.ID, approved.ID))
	assert.ErrorIs(t, env.access.CanGrade(actorOf(other), course.ID, approved.ID), util.ErrForbidden)
	assert.NoError(t, env.access.CanGrade(actorOf(env.admin), course.ID, approved.ID))
}

func TestPatchEnrollmentBackToPending(t *testing.T) {
	env := newTestEnv(t)
	course := env.course(t, "Go")
	s := env.user(t, "s1", model.Student)
	view := env.enroll(t, s, course, model.EnrollmentApproved, nil)
	require.NoError(t, env.access.CanView(actorOf(s), course.ID))

	pending := model.EnrollmentPending
	patched, err := env.enrollments.Patch(actorOf(env.admin), view.ID, EnrollmentPatch{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentPending, patched.Status)
	assert.ErrorIs(t, env.access.CanView(actorOf(s), course.ID), util.ErrForbidden)
}
