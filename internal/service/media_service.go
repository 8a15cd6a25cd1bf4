package service

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/repository"
	"alcyxob/fitness-programs/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrVideoNotFound    = &NotFoundError{Entity: "Video"}
	ErrMediaUnavailable = errors.New("video storage is not configured")
)

// VideoUpload is returned to a trainer who is about to upload a demo video.
// The client PUTs the file to UploadURL with the same Content-Type.
type VideoUpload struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VideoDownload is a temporary URL for watching a demo video.
type VideoDownload struct {
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type MediaService interface {
	RequestVideoUpload(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID, contentType string) (*VideoUpload, error)
	// VideoURL is the owner trainer's view of an exercise video.
	VideoURL(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID) (*VideoDownload, error)
	// AssignedVideoURL is the assigned trainee's view.
	AssignedVideoURL(ctx context.Context, caller *Caller, programID, exerciseID primitive.ObjectID) (*VideoDownload, error)
}

type mediaService struct {
	*hierarchy
	expiry time.Duration
	now    func() time.Time
}

func NewMediaService(programRepo repository.ProgramRepository, files storage.FileStorage, logger *slog.Logger) MediaService {
	return &mediaService{
		hierarchy: newHierarchy(programRepo, files, logger),
		expiry:    storage.DefaultPresignedURLExpiry,
		now:       time.Now,
	}
}

// RequestVideoUpload presigns a PUT URL for a fresh object key and then
// stores the key on the exercise. A previously uploaded video is deleted once
// the new key is saved; a failed presign leaves the exercise untouched.
func (s *mediaService) RequestVideoUpload(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID, contentType string) (*VideoUpload, error) {
	if s.files == nil {
		return nil, ErrMediaUnavailable
	}
	mediaType, err := videoMediaType(contentType)
	if err != nil {
		return nil, err
	}

	objectKey := path.Join("exercises", programID.Hex(), exerciseID.Hex(),
		fmt.Sprintf("%s.%s", uuid.NewString(), videoExtension(mediaType)))

	uploadURL, err := s.files.GeneratePresignedUploadURL(ctx, objectKey, mediaType, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload for %s: %w", objectKey, err)
	}

	var previous string
	ref := NodeRef{ProgramID: programID, DayID: dayID, ExerciseID: exerciseID}
	_, err = s.mutate(ctx, caller, ref, func(p *domain.Program) error {
		ex, err := p.Exercise(dayID, exerciseID)
		if err != nil {
			return err
		}
		previous = ex.VideoKey
		ex.VideoKey = objectKey
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != "" {
		s.afterRemoval(ctx, domain.Removal{VideoKeys: []string{previous}})
	}
	mutated(entityExercise, "video")
	return &VideoUpload{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
		ExpiresAt: s.now().Add(s.expiry).UTC(),
	}, nil
}

func (s *mediaService) VideoURL(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID) (*VideoDownload, error) {
	if s.files == nil {
		return nil, ErrMediaUnavailable
	}
	ref := NodeRef{ProgramID: programID, DayID: dayID, ExerciseID: exerciseID}
	program, err := s.read(ctx, caller, ref)
	if err != nil {
		return nil, err
	}
	ex, err := program.Exercise(dayID, exerciseID)
	if err != nil {
		return nil, treeError(err)
	}
	return s.download(ctx, ex)
}

func (s *mediaService) AssignedVideoURL(ctx context.Context, caller *Caller, programID, exerciseID primitive.ObjectID) (*VideoDownload, error) {
	if s.files == nil {
		return nil, ErrMediaUnavailable
	}
	program, err := s.guard.RequireAssigned(ctx, caller, NodeRef{ProgramID: programID})
	if err != nil {
		return nil, err
	}
	ex, err := program.FindExercise(exerciseID)
	if err != nil {
		return nil, treeError(err)
	}
	return s.download(ctx, ex)
}

func (s *mediaService) download(ctx context.Context, ex *domain.Exercise) (*VideoDownload, error) {
	if ex.VideoKey == "" {
		return nil, ErrVideoNotFound
	}
	downloadURL, err := s.files.GeneratePresignedDownloadURL(ctx, ex.VideoKey, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign download for %s: %w", ex.VideoKey, err)
	}
	return &VideoDownload{
		DownloadURL: downloadURL,
		ExpiresAt:   s.now().Add(s.expiry).UTC(),
	}, nil
}

// videoMediaType accepts "video/<subtype>" with optional parameters and
// returns the bare media type.
func videoMediaType(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "video/") || mediaType == "video/" {
		return "", &ValidationError{Fields: []FieldError{{
			Field:   "contentType",
			Message: "Content type must be a video type, e.g. video/mp4",
		}}}
	}
	return mediaType, nil
}

func videoExtension(mediaType string) string {
	switch mediaType {
	case "video/quicktime":
		return "mov"
	case "video/x-matroska":
		return "mkv"
	case "video/x-msvideo":
		return "avi"
	}
	return strings.TrimPrefix(strings.TrimPrefix(mediaType, "video/"), "x-")
}
