package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func trainer() *Caller {
	return &Caller{ID: primitive.NewObjectID(), Role: domain.RoleTrainer}
}

func trainee() *Caller {
	return &Caller{ID: primitive.NewObjectID(), Role: domain.RoleUser}
}

// fixture wires every hierarchy service over one set of memory repositories.
type fixture struct {
	programRepo *memory.ProgramRepository
	userRepo    *memory.UserRepository
	files       *fakeStorage

	programs    ProgramService
	days        TrainingDayService
	exercises   ExerciseService
	sets        SetService
	assignments AssignmentService
	media       MediaService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		programRepo: memory.NewProgramRepository(),
		userRepo:    memory.NewUserRepository(),
		files:       newFakeStorage(),
	}
	f.programs = NewProgramService(f.programRepo, f.files, discardLogger)
	f.days = NewTrainingDayService(f.programRepo, f.files, discardLogger)
	f.exercises = NewExerciseService(f.programRepo, f.files, discardLogger)
	f.sets = NewSetService(f.programRepo, discardLogger)
	f.assignments = NewAssignmentService(f.programRepo, f.userRepo, discardLogger)
	f.media = NewMediaService(f.programRepo, f.files, discardLogger)
	return f
}

// tree is the ids of a Program -> day -> exercise -> set chain.
type tree struct {
	program, day, exercise, set primitive.ObjectID
}

func (f *fixture) buildTree(t *testing.T, owner *Caller) tree {
	t.Helper()
	ctx := context.Background()

	p, err := f.programs.CreateProgram(ctx, owner, "Strength")
	require.NoError(t, err)
	d, err := f.days.CreateTrainingDay(ctx, owner, p.ID, 1)
	require.NoError(t, err)
	e, err := f.exercises.CreateExercise(ctx, owner, p.ID, d.ID, "Squat")
	require.NoError(t, err)
	s, err := f.sets.CreateSet(ctx, owner, p.ID, d.ID, e.ID, 5, 100)
	require.NoError(t, err)

	return tree{program: p.ID, day: d.ID, exercise: e.ID, set: s.ID}
}

func (f *fixture) registerUser(t *testing.T, email string, role domain.Role) *Caller {
	t.Helper()
	id, err := f.userRepo.Create(context.Background(), &domain.User{Email: email, Role: role})
	require.NoError(t, err)
	return &Caller{ID: id, Role: role}
}

// fakeStorage records presign and delete calls.
type fakeStorage struct {
	mu        sync.Mutex
	uploads   []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func newFakeStorage() *fakeStorage { return &fakeStorage{} }

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads = append(s.uploads, objectKey)
	return "https://media.test/" + objectKey + "?op=put", nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://media.test/" + objectKey + "?op=get", nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectKey)
	return s.deleteErr
}

func (s *fakeStorage) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
