package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"lms_backend/internal/config"
	"lms_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Fields  map[string]string `json:"fields"`
}

// obj is a JSON object literal.
type obj = map[string]interface{}

func newTestApp(t *testing.T) *App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), dbSeq.Add(1))
	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", Path: dsn}, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT: config.JWTConfig{
			Secret:        "router-test-secret-router-test-secret",
			ExpireTime:    time.Hour,
			RefreshExpire: 2 * time.Hour,
		},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir(), MaxUploadMB: 1},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
	a := New(cfg, db, nil)
	t.Cleanup(func() {
		a.rateLimiter.Stop()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return a
}

func (a *App) call(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// register creates the user and returns its id and an access/refresh pair.
func (a *App) register(t *testing.T, username, role string) (uint, string, string) {
	t.Helper()
	status, env := a.call(t, http.MethodPost, "/api/register", "", obj{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "password123",
		"password2": "password123",
		"role":      role,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var user struct {
		ID uint `json:"id"`
	}
	decode(t, env, &user)

	status, env = a.call(t, http.MethodPost, "/api/login", "", obj{"username": username, "password": "password123"})
	require.Equal(t, http.StatusOK, status, env.Message)
	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	decode(t, env, &tokens)
	return user.ID, tokens.Access, tokens.Refresh
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestApp(t)

	status, env := a.call(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"database":"up"`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow(t *testing.T) {
	a := newTestApp(t)
	_, access, refresh := a.register(t, "root", "admin")

	status, env := a.call(t, http.MethodPost, "/api/register", "", obj{
		"username": "root2", "email": "root2@example.com",
		"password": "password123", "password2": "password123", "role": "admin",
	})
	assert.Equal(t, http.StatusConflict, status, env.Message)

	status, env = a.call(t, http.MethodPost, "/api/register", "", obj{
		"username": "weak", "email": "weak@example.com", "password": "short", "password2": "short",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Fields, "password")

	status, _ = a.call(t, http.MethodPost, "/api/login", "", obj{"username": "root", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = a.call(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = a.call(t, http.MethodGet, "/api/profile", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = a.call(t, http.MethodGet, "/api/profile", access, nil)
	require.Equal(t, http.StatusOK, status)
	var profile struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	decode(t, env, &profile)
	assert.Equal(t, "root", profile.Username)
	assert.Equal(t, "admin", profile.Role)

	status, env = a.call(t, http.MethodPost, "/api/token/refresh", "", obj{"refresh": refresh})
	require.Equal(t, http.StatusOK, status)
	var fresh struct {
		Access string `json:"access"`
	}
	decode(t, env, &fresh)
	status, _ = a.call(t, http.MethodGet, "/api/profile", fresh.Access, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.call(t, http.MethodPost, "/api/token/refresh", "", obj{"refresh": access})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCourseEnrollmentAndEngagement(t *testing.T) {
	a := newTestApp(t)
	_, adminToken, _ := a.register(t, "root", "admin")
	mentorID, mentorToken, _ := a.register(t, "mentor", "instructor")
	_, studentToken, _ := a.register(t, "student", "student")

	status, _ := a.call(t, http.MethodGet, "/api/users", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	course := obj{"name": "Go", "description": "Learn Go", "instructors": []uint{mentorID}}
	status, _ = a.call(t, http.MethodPost, "/api/courses", studentToken, course)
	assert.Equal(t, http.StatusForbidden, status)
	status, env := a.call(t, http.MethodPost, "/api/courses", adminToken, course)
	require.Equal(t, http.StatusCreated, status, env.Message)
	var created struct {
		ID uint `json:"id"`
	}
	decode(t, env, &created)
	base := fmt.Sprintf("/api/courses/%d", created.ID)

	status, env = a.call(t, http.MethodPost, "/api/student/enrollments", studentToken, obj{"course": created.ID})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var enrollment struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	decode(t, env, &enrollment)
	assert.Equal(t, "pending", enrollment.Status)

	status, _ = a.call(t, http.MethodPost, "/api/student/enrollments", studentToken, obj{"course": created.ID})
	assert.Equal(t, http.StatusConflict, status)

	// pending students cannot see course content yet
	status, _ = a.call(t, http.MethodGet, base+"/comments", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = a.call(t, http.MethodPatch, fmt.Sprintf("/api/enrollments/%d", enrollment.ID), mentorToken,
		obj{"status": "graduated"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = a.call(t, http.MethodPatch, fmt.Sprintf("/api/enrollments/%d", enrollment.ID), mentorToken,
		obj{"status": "approved", "instructor": mentorID})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, _ = a.call(t, http.MethodPost, base+"/likes", studentToken, nil)
	assert.Equal(t, http.StatusCreated, status)
	status, _ = a.call(t, http.MethodPost, base+"/likes", studentToken, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, env = a.call(t, http.MethodPost, base+"/ratings", studentToken, obj{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Fields, "rating")
	status, _ = a.call(t, http.MethodPost, base+"/ratings", studentToken, obj{"rating": 4})
	assert.Equal(t, http.StatusCreated, status)

	status, _ = a.call(t, http.MethodPost, base+"/comments", studentToken, obj{"content": "nice course"})
	assert.Equal(t, http.StatusCreated, status)

	status, env = a.call(t, http.MethodGet, base, studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	var detail struct {
		Likes        int     `json:"likes"`
		Rating       float64 `json:"rating"`
		TotalRatings int     `json:"totalRatings"`
		Comments     []obj   `json:"comments"`
	}
	decode(t, env, &detail)
	assert.Equal(t, 1, detail.Likes)
	assert.Equal(t, 1, detail.TotalRatings)
	assert.InDelta(t, 4.0, detail.Rating, 1e-9)
	assert.Len(t, detail.Comments, 1)

	status, _ = a.call(t, http.MethodDelete, base, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = a.call(t, http.MethodGet, base, studentToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = a.call(t, http.MethodPost, fmt.Sprintf("/api/admin/courses/%d/restore", created.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = a.call(t, http.MethodGet, base, studentToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCORSPreflight(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/courses", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
