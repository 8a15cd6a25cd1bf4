package service

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/repository"
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SetService interface {
	CreateSet(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID, reps int, weight float64) (*domain.Set, error)
	ListSets(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID) ([]domain.Set, error)
	GetSet(ctx context.Context, caller *Caller, programID, dayID, exerciseID, setID primitive.ObjectID) (*domain.Set, error)
	UpdateSet(ctx context.Context, caller *Caller, programID, dayID, exerciseID, setID primitive.ObjectID, patch domain.SetPatch) (*domain.Set, error)
	DeleteSet(ctx context.Context, caller *Caller, programID, dayID, exerciseID, setID primitive.ObjectID) error
}

type setService struct {
	*hierarchy
}

func NewSetService(programRepo repository.ProgramRepository, logger *slog.Logger) SetService {
	return &setService{hierarchy: newHierarchy(programRepo, nil, logger)}
}

func (s *setService) CreateSet(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID, reps int, weight float64) (*domain.Set, error) {
	verr := &ValidationError{}
	validateReps(reps, verr)
	validateWeight(weight, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	var created domain.Set
	ref := NodeRef{ProgramID: programID, DayID: dayID, ExerciseID: exerciseID}
	_, err := s.mutate(ctx, caller, ref, func(p *domain.Program) error {
		set, err := p.AddSet(dayID, exerciseID, reps, weight)
		if err != nil {
			return err
		}
		created = *set
		return nil
	})
	if err != nil {
		return nil, err
	}
	mutated(entitySet, "create")
	return &created, nil
}

func (s *setService) ListSets(ctx context.Context, caller *Caller, programID, dayID, exerciseID primitive.ObjectID) ([]domain.Set, error) {
	ref := NodeRef{ProgramID: programID, DayID: dayID, ExerciseID: exerciseID}
	program, err := s.read(ctx, caller, ref)
	if err != nil {
		return nil, err
	}
	ex, err := program.Exercise(dayID, exerciseID)
	if err != nil {
		return nil, treeError(err)
	}
	return ex.Sets, nil
}

func (s *setService) GetSet(ctx context.Context, caller *Caller, programID, dayID, exerciseID, setID primitive.ObjectID) (*domain.Set, error) {
	ref := NodeRef{ProgramID: programID, DayID: dayID, ExerciseID: exerciseID, SetID: setID}
	program, err := s.read(ctx, caller, ref)
	if err != nil {
		return nil, err
	}
	set, err := program.Set(dayID, exerciseID, setID)
	return set, treeError(err)
}

// UpdateSet applies only the provided fields.
func (s *setService) UpdateSet(ctx context.Context, caller *Caller, programID, dayID, exerciseID, setID primitive.ObjectID, patch domain.SetPatch) (*domain.Set, error) {
	verr := &ValidationError{}
	if patch.Reps != nil {
		validateReps(*patch.Reps, verr)
	}
	if patch.Weight != nil {
		validateWeight(*patch.Weight, verr)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	var updated domain.Set
	ref := NodeRef{ProgramID: programID, DayID: dayID, ExerciseID: exerciseID, SetID: setID}
	_, err := s.mutate(ctx, caller, ref, func(p *domain.Program) error {
		set, err := p.UpdateSet(dayID, exerciseID, setID, patch)
		if err != nil {
			return err
		}
		updated = *set
		return nil
	})
	if err != nil {
		return nil, err
	}
	mutated(entitySet, "update")
	return &updated, nil
}

func (s *setService) DeleteSet(ctx context.Context, caller *Caller, programID, dayID, exerciseID, setID primitive.ObjectID) error {
	ref := NodeRef{ProgramID: programID, DayID: dayID, ExerciseID: exerciseID, SetID: setID}
	_, err := s.mutate(ctx, caller, ref, func(p *domain.Program) error {
		_, err := p.DeleteSet(dayID, exerciseID, setID)
		return err
	})
	if err != nil {
		return err
	}
	mutated(entitySet, "delete")
	return nil
}
