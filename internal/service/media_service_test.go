package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"alcyxob/fitness-programs/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestVideoUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)

	up, err := f.media.RequestVideoUpload(ctx, owner, ids.program, ids.day, ids.exercise, "video/mp4")
	require.NoError(t, err)

	prefix := "exercises/" + ids.program.Hex() + "/" + ids.exercise.Hex() + "/"
	assert.True(t, strings.HasPrefix(up.ObjectKey, prefix), up.ObjectKey)
	assert.True(t, strings.HasSuffix(up.ObjectKey, ".mp4"), up.ObjectKey)
	assert.Contains(t, up.UploadURL, up.ObjectKey)

	ex, err := f.exercises.GetExercise(ctx, owner, ids.program, ids.day, ids.exercise)
	require.NoError(t, err)
	assert.Equal(t, up.ObjectKey, ex.VideoKey)

	dl, err := f.media.VideoURL(ctx, owner, ids.program, ids.day, ids.exercise)
	require.NoError(t, err)
	assert.Contains(t, dl.DownloadURL, up.ObjectKey)
}

func TestRequestVideoUpload_ReplacesPreviousObject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)

	first, err := f.media.RequestVideoUpload(ctx, owner, ids.program, ids.day, ids.exercise, "video/quicktime")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(first.ObjectKey, ".mov"))

	second, err := f.media.RequestVideoUpload(ctx, owner, ids.program, ids.day, ids.exercise, "video/webm; codecs=vp9")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(second.ObjectKey, ".webm"))

	assert.Equal(t, []string{first.ObjectKey}, f.files.deletedKeys())
}

func TestRequestVideoUpload_PresignFailureKeepsCurrentVideo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)

	first, err := f.media.RequestVideoUpload(ctx, owner, ids.program, ids.day, ids.exercise, "video/mp4")
	require.NoError(t, err)
	before, err := f.programRepo.GetByID(ctx, ids.program)
	require.NoError(t, err)

	f.files.uploadErr = errors.New("s3 down")
	_, err = f.media.RequestVideoUpload(ctx, owner, ids.program, ids.day, ids.exercise, "video/mp4")
	require.Error(t, err)

	ex, err := f.exercises.GetExercise(ctx, owner, ids.program, ids.day, ids.exercise)
	require.NoError(t, err)
	assert.Equal(t, first.ObjectKey, ex.VideoKey)
	assert.Empty(t, f.files.deletedKeys())

	after, err := f.programRepo.GetByID(ctx, ids.program)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
}

func TestRequestVideoUpload_RejectsNonVideo(t *testing.T) {
	f := newFixture(t)
	owner := trainer()
	ids := f.buildTree(t, owner)

	for _, ct := range []string{"", "image/png", "video/", "garbage"} {
		_, err := f.media.RequestVideoUpload(context.Background(), owner, ids.program, ids.day, ids.exercise, ct)
		assertFieldError(t, err, "contentType")
	}
	assert.Empty(t, f.files.uploads)
}

func TestVideoURL_NoVideo(t *testing.T) {
	f := newFixture(t)
	owner := trainer()
	ids := f.buildTree(t, owner)

	_, err := f.media.VideoURL(context.Background(), owner, ids.program, ids.day, ids.exercise)
	assert.EqualError(t, err, "Video not found")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignedVideoURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)
	assigned := f.registerUser(t, "u@x.com", domain.RoleUser)
	bystander := f.registerUser(t, "v@x.com", domain.RoleUser)

	up, err := f.media.RequestVideoUpload(ctx, owner, ids.program, ids.day, ids.exercise, "video/mp4")
	require.NoError(t, err)
	_, err = f.assignments.AssignProgram(ctx, owner, ids.program, assigned.ID)
	require.NoError(t, err)

	dl, err := f.media.AssignedVideoURL(ctx, assigned, ids.program, ids.exercise)
	require.NoError(t, err)
	assert.Contains(t, dl.DownloadURL, up.ObjectKey)

	_, err = f.media.AssignedVideoURL(ctx, bystander, ids.program, ids.exercise)
	assert.EqualError(t, err, "Program not found")

	// Trainee view goes through assignment, not the trainer-only path
	_, err = f.media.VideoURL(ctx, assigned, ids.program, ids.day, ids.exercise)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCascadeDeletesVideos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)

	up, err := f.media.RequestVideoUpload(ctx, owner, ids.program, ids.day, ids.exercise, "video/mp4")
	require.NoError(t, err)

	require.NoError(t, f.days.DeleteTrainingDay(ctx, owner, ids.program, ids.day))
	assert.Equal(t, []string{up.ObjectKey}, f.files.deletedKeys())
}

func TestCascadeVideoDeleteFailureIsNotSurfaced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)

	_, err := f.media.RequestVideoUpload(ctx, owner, ids.program, ids.day, ids.exercise, "video/mp4")
	require.NoError(t, err)
	f.files.deleteErr = assert.AnError

	assert.NoError(t, f.programs.DeleteProgram(ctx, owner, ids.program))
	assert.Len(t, f.files.deletedKeys(), 1)
}

func TestMediaUnavailable(t *testing.T) {
	f := newFixture(t)
	owner := trainer()
	ids := f.buildTree(t, owner)
	media := NewMediaService(f.programRepo, nil, discardLogger)

	_, err := media.RequestVideoUpload(context.Background(), owner, ids.program, ids.day, ids.exercise, "video/mp4")
	assert.ErrorIs(t, err, ErrMediaUnavailable)
}
