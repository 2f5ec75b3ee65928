package util

import (
	"testing"
	"time"

	"lms_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 7}, Username: "erin", Role: model.Instructor}

	token, err := GenerateJWT(user, TokenAccess, "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "erin", claims.Username)
	assert.Equal(t, model.Instructor, claims.Role)
	assert.Equal(t, TokenAccess, claims.TokenType)
	assert.False(t, claims.IsAdmin())
}

func TestParseJWTRejects(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 1}, Username: "root", Role: model.Admin}

	token, err := GenerateJWT(user, TokenAccess, "secret", time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)

	expired, err := GenerateJWT(user, TokenAccess, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)

	_, err = ParseJWT("not-a-token", "secret")
	assert.Error(t, err)
}
