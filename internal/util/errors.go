package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("permission denied")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")

	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrCourseNotFound     = fmt.Errorf("course %w", ErrNotFound)
	ErrEnrollmentNotFound = fmt.Errorf("enrollment %w", ErrNotFound)
	ErrVideoNotFound      = fmt.Errorf("video %w", ErrNotFound)
	ErrCommentNotFound    = fmt.Errorf("comment %w", ErrNotFound)
	ErrLikeNotFound       = fmt.Errorf("like %w", ErrNotFound)
	ErrRatingNotFound     = fmt.Errorf("rating %w", ErrNotFound)
	ErrProgressNotFound   = fmt.Errorf("progress %w", ErrNotFound)
	ErrQuizNotFound       = fmt.Errorf("quiz %w", ErrNotFound)
	ErrQuestionNotFound   = fmt.Errorf("question %w", ErrNotFound)
	ErrAttemptNotFound    = fmt.Errorf("quiz attempt %w", ErrNotFound)

	ErrAdminExists        = fmt.Errorf("there can only be one admin user: %w", ErrConflict)
	ErrUsernameTaken      = fmt.Errorf("username already registered: %w", ErrConflict)
	ErrEmailRegistered    = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrAlreadyEnrolled    = fmt.Errorf("student already enrolled in this course: %w", ErrConflict)
	ErrAlreadyLiked       = fmt.Errorf("course already liked: %w", ErrConflict)
	ErrAlreadyRated       = fmt.Errorf("course already rated: %w", ErrConflict)
	ErrProgressExists     = fmt.Errorf("progress already tracked for this course: %w", ErrConflict)
	ErrQuizExists         = fmt.Errorf("video already has a quiz: %w", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", ErrUnauthorized)
	ErrInactiveAccount    = fmt.Errorf("the account is inactive: %w", ErrUnauthorized)
	ErrPermissionDenied   = ErrForbidden
)

// ValidationError carries per-field messages; it matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = message
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
