package service

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/repository"
	"alcyxob/fitness-programs/internal/storage"
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExerciseService interface {
	CreateExercise(ctx context.Context, caller *Caller, programID, dayID primitive.ObjectID, name string) (*domain.Exercise, error)
	ListExercises(ctx context.Context, caller *Caller, programID, dayID primitive.ObjectID) ([]domain.Exercise, error)
	GetExercise(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID, patch domain.ExercisePatch) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID) error
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	*hierarchy
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(programRepo repository.ProgramRepository, files storage.FileStorage, logger *slog.Logger) ExerciseService {
	return &exerciseService{hierarchy: newHierarchy(programRepo, files, logger)}
}

// CreateExercise appends an exercise to a training day. Names are unique
// within the day.
func (s *exerciseService) CreateExercise(ctx context.Context, caller *Caller, programID, dayID primitive.ObjectID, name string) (*domain.Exercise, error) {
	verr := &ValidationError{}
	name = validateExerciseName(name, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	var created domain.Exercise
	_, err := s.mutate(ctx, caller, NodeRef{ProgramID: programID, DayID: dayID}, func(p *domain.Program) error {
		ex, err := p.AddExercise(dayID, name)
		if err != nil {
			return err
		}
		created = *ex
		return nil
	})
	if err != nil {
		return nil, err
	}
	mutated(entityExercise, "create")
	return &created, nil
}

func (s *exerciseService) ListExercises(ctx context.Context, caller *Caller, programID, dayID primitive.ObjectID) ([]domain.Exercise, error) {
	ref := NodeRef{ProgramID: programID, DayID: dayID}
	program, err := s.read(ctx, caller, ref)
	if err != nil {
		return nil, err
	}
	day, err := program.TrainingDay(dayID)
	if err != nil {
		return nil, treeError(err)
	}
	return day.Exercises, nil
}

func (s *exerciseService) GetExercise(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	ref := NodeRef{ProgramID: programID, DayID: dayID, ExerciseID: exerciseID}
	program, err := s.read(ctx, caller, ref)
	if err != nil {
		return nil, err
	}
	ex, err := program.Exercise(dayID, exerciseID)
	return ex, treeError(err)
}

func (s *exerciseService) UpdateExercise(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID, patch domain.ExercisePatch) (*domain.Exercise, error) {
	verr := &ValidationError{}
	if patch.Name != nil {
		name := validateExerciseName(*patch.Name, verr)
		patch.Name = &name
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	var updated domain.Exercise
	ref := NodeRef{ProgramID: programID, DayID: dayID, ExerciseID: exerciseID}
	_, err := s.mutate(ctx, caller, ref, func(p *domain.Program) error {
		ex, err := p.UpdateExercise(dayID, exerciseID, patch)
		if err != nil {
			return err
		}
		updated = *ex
		return nil
	})
	if err != nil {
		return nil, err
	}
	mutated(entityExercise, "update")
	return &updated, nil
}

// DeleteExercise removes the exercise and its sets. A demo video, if any,
// is deleted from object storage afterwards.
func (s *exerciseService) DeleteExercise(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID) error {
	var removal domain.Removal
	ref := NodeRef{ProgramID: programID, DayID: dayID, ExerciseID: exerciseID}
	_, err := s.mutate(ctx, caller, ref, func(p *domain.Program) error {
		var err error
		removal, err = p.DeleteExercise(dayID, exerciseID)
		return err
	})
	if err != nil {
		return err
	}
	mutated(entityExercise, "delete")
	s.afterRemoval(ctx, removal)
	return nil
}
