package service

import (
	"bytes"
	"context"
	"os"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mp4Header is an ftyp box that content sniffing reports as video/mp4.
func mp4Header() []byte {
	b := []byte{0x00, 0x00, 0x00, 0x18}
	b = append(b, "ftypmp42"...)
	b = append(b, 0x00, 0x00, 0x00, 0x00)
	b = append(b, "mp41isom"...)
	return append(b, bytes.Repeat([]byte{0x01}, 64)...)
}

func upload(filename, title string, data []byte) VideoUpload {
	return VideoUpload{Title: title, Filename: filename, Size: int64(len(data)), File: bytes.NewReader(data)}
}

func TestUploadVideo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mentor := env.user(t, "mentor", model.Instructor)
	outsider := env.user(t, "outsider", model.Instructor)
	course := env.course(t, "Go", mentor)

	_, err := env.videos.Upload(ctx, actorOf(outsider), course.ID, upload("a.mp4", "A", mp4Header()))
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = env.videos.Upload(ctx, actorOf(mentor), course.ID, upload("notes.txt", "Notes", []byte("plain text")))
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.videos.Upload(ctx, actorOf(mentor), course.ID, upload("fake.mp4", "Fake", []byte("just some text pretending")))
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.videos.Upload(ctx, actorOf(mentor), course.ID, upload("a.mp4", "", mp4Header()))
	assert.ErrorIs(t, err, util.ErrValidation)

	first, err := env.videos.Upload(ctx, actorOf(mentor), course.ID, upload("a.mp4", "A", mp4Header()))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)
	assert.Contains(t, first.URL, "/uploads/videos/")
	path, ok := env.videos.Storage.LocalPath(first.ObjectKey)
	require.True(t, ok)
	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, mp4Header(), stored)

	second, err := env.videos.Upload(ctx, actorOf(mentor), course.ID, upload("b.mp4", "B", mp4Header()))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Order)

	order := 10
	up := upload("c.mp4", "C", mp4Header())
	up.Order = &order
	third, err := env.videos.Upload(ctx, actorOf(mentor), course.ID, up)
	require.NoError(t, err)
	assert.Equal(t, 10, third.Order)

	list, err := env.videos.List(actorOf(mentor), course.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uint{first.ID, second.ID, third.ID}, []uint{list[0].ID, list[1].ID, list[2].ID})
}

func TestUploadVideoTooLarge(t *testing.T) {
	env := newTestEnv(t)
	mentor := env.user(t, "mentor", model.Instructor)
	course := env.course(t, "Go", mentor)

	up := upload("big.mp4", "Big", mp4Header())
	up.Size = 2 * 1024 * 1024
	_, err := env.videos.Upload(context.Background(), actorOf(mentor), course.ID, up)
	var verr *util.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "video")
}

func TestBulkDeleteVideos(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mentor := env.user(t, "mentor", model.Instructor)
	course := env.course(t, "Go", mentor)
	other := env.course(t, "Rust", mentor)
	v1 := env.video(t, course, "one")
	v2 := env.video(t, course, "two")
	foreign := env.video(t, other, "foreign")

	quiz, err := env.quizzes.Create(actorOf(mentor), QuizInput{VideoID: v1.ID, Title: "Quiz"})
	require.NoError(t, err)

	err = env.videos.BulkDelete(ctx, actorOf(mentor), course.ID, []uint{v1.ID, foreign.ID})
	assert.ErrorIs(t, err, util.ErrValidation)
	list, err := env.videos.List(actorOf(mentor), course.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, env.videos.BulkDelete(ctx, actorOf(mentor), course.ID, []uint{v1.ID}))
	_, err = env.quizzes.Get(actorOf(mentor), quiz.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)

	assert.ErrorIs(t, env.videos.Delete(ctx, actorOf(mentor), course.ID, foreign.ID), util.ErrVideoNotFound)
	require.NoError(t, env.videos.Delete(ctx, actorOf(mentor), course.ID, v2.ID))
	list, err = env.videos.List(actorOf(mentor), course.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
