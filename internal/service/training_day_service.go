package service

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/repository"
	"alcyxob/fitness-programs/internal/storage"
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TrainingDayService interface {
	CreateTrainingDay(ctx context.Context, caller *Caller, programID primitive.ObjectID, dayNumber int) (*domain.TrainingDay, error)
	ListTrainingDays(ctx context.Context, caller *Caller, programID primitive.ObjectID) ([]domain.TrainingDay, error)
	GetTrainingDay(ctx context.Context, caller *Caller, programID, dayID primitive.ObjectID) (*domain.TrainingDay, error)
	UpdateTrainingDay(ctx context.Context, caller *Caller, programID, dayID primitive.ObjectID, patch domain.TrainingDayPatch) (*domain.TrainingDay, error)
	DeleteTrainingDay(ctx context.Context, caller *Caller, programID, dayID primitive.ObjectID) error
}

type trainingDayService struct {
	*hierarchy
}

func NewTrainingDayService(programRepo repository.ProgramRepository, files storage.FileStorage, logger *slog.Logger) TrainingDayService {
	return &trainingDayService{hierarchy: newHierarchy(programRepo, files, logger)}
}

func (s *trainingDayService) CreateTrainingDay(ctx context.Context, caller *Caller, programID primitive.ObjectID, dayNumber int) (*domain.TrainingDay, error) {
	verr := &ValidationError{}
	validateDayNumber(dayNumber, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	var created domain.TrainingDay
	_, err := s.mutate(ctx, caller, NodeRef{ProgramID: programID}, func(p *domain.Program) error {
		day, err := p.AddTrainingDay(dayNumber)
		if err != nil {
			return err
		}
		created = *day
		return nil
	})
	if err != nil {
		return nil, err
	}
	mutated(entityTrainingDay, "create")
	return &created, nil
}

// ListTrainingDays returns the program's days in insertion order.
func (s *trainingDayService) ListTrainingDays(ctx context.Context, caller *Caller, programID primitive.ObjectID) ([]domain.TrainingDay, error) {
	program, err := s.read(ctx, caller, NodeRef{ProgramID: programID})
	if err != nil {
		return nil, err
	}
	return program.TrainingDays, nil
}

func (s *trainingDayService) GetTrainingDay(ctx context.Context, caller *Caller, programID, dayID primitive.ObjectID) (*domain.TrainingDay, error) {
	ref := NodeRef{ProgramID: programID, DayID: dayID}
	program, err := s.read(ctx, caller, ref)
	if err != nil {
		return nil, err
	}
	day, err := program.TrainingDay(dayID)
	return day, treeError(err)
}

func (s *trainingDayService) UpdateTrainingDay(ctx context.Context, caller *Caller, programID, dayID primitive.ObjectID, patch domain.TrainingDayPatch) (*domain.TrainingDay, error) {
	verr := &ValidationError{}
	if patch.DayNumber != nil {
		validateDayNumber(*patch.DayNumber, verr)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	var updated domain.TrainingDay
	_, err := s.mutate(ctx, caller, NodeRef{ProgramID: programID, DayID: dayID}, func(p *domain.Program) error {
		day, err := p.UpdateTrainingDay(dayID, patch)
		if err != nil {
			return err
		}
		updated = *day
		return nil
	})
	if err != nil {
		return nil, err
	}
	mutated(entityTrainingDay, "update")
	return &updated, nil
}

// DeleteTrainingDay removes the day along with its exercises and their sets.
func (s *trainingDayService) DeleteTrainingDay(ctx context.Context, caller *Caller, programID, dayID primitive.ObjectID) error {
	var removal domain.Removal
	_, err := s.mutate(ctx, caller, NodeRef{ProgramID: programID, DayID: dayID}, func(p *domain.Program) error {
		var err error
		removal, err = p.DeleteTrainingDay(dayID)
		return err
	})
	if err != nil {
		return err
	}
	mutated(entityTrainingDay, "delete")
	s.afterRemoval(ctx, removal)
	return nil
}
