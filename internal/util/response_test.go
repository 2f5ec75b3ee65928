package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		fields []string
	}{
		{"field validation", NewValidationError("password", "too short").Add("email", "taken"), http.StatusBadRequest, []string{"password", "email"}},
		{"wrapped validation", fmt.Errorf("bad input: %w", ErrValidation), http.StatusBadRequest, nil},
		{"domain not found", ErrCourseNotFound, http.StatusNotFound, nil},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound, nil},
		{"forbidden", ErrForbidden, http.StatusForbidden, nil},
		{"bad credentials", ErrInvalidCredentials, http.StatusUnauthorized, nil},
		{"single admin", ErrAdminExists, http.StatusConflict, nil},
		{"duplicate key", gorm.ErrDuplicatedKey, http.StatusConflict, nil},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/courses", nil)

			HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Code)
			for _, f := range tt.fields {
				assert.Contains(t, resp.Fields, f)
			}
		})
	}
}

func TestForbiddenMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleError(c, ErrPermissionDenied)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "You do not have permission to perform this action", resp.Message)
}

func TestValidationErrorString(t *testing.T) {
	err := NewValidationError("b", "second").Add("a", "first")
	assert.Equal(t, "validation failed: a: first; b: second", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query       string
		page, limit int
	}{
		{"", 1, DefaultPageSize},
		{"?page=3&limit=5", 3, 5},
		{"?page=0&limit=-1", 1, DefaultPageSize},
		{"?page=x&limit=1000", 1, MaxPageSize},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/courses"+tt.query, nil)
		page, limit := Pagination(c)
		assert.Equal(t, tt.page, page, tt.query)
		assert.Equal(t, tt.limit, limit, tt.query)
	}
}
