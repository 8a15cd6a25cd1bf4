package service

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/metrics"
	"alcyxob/fitness-programs/internal/repository"
	"alcyxob/fitness-programs/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramPatch carries a partial program update; nil fields are unchanged.
type ProgramPatch struct {
	ProgramName *string
}

type ProgramService interface {
	CreateProgram(ctx context.Context, caller *Caller, programName string) (*domain.Program, error)
	ListPrograms(ctx context.Context, caller *Caller) ([]domain.Program, error)
	GetProgram(ctx context.Context, caller *Caller, programID primitive.ObjectID) (*domain.Program, error)
	UpdateProgram(ctx context.Context, caller *Caller, programID primitive.ObjectID, patch ProgramPatch) (*domain.Program, error)
	// DeleteProgram removes the program together with every training day,
	// exercise and set below it.
	DeleteProgram(ctx context.Context, caller *Caller, programID primitive.ObjectID) error
}

type programService struct {
	*hierarchy
}

func NewProgramService(programRepo repository.ProgramRepository, files storage.FileStorage, logger *slog.Logger) ProgramService {
	return &programService{hierarchy: newHierarchy(programRepo, files, logger)}
}

// CreateProgram creates an empty program owned by the calling trainer.
func (s *programService) CreateProgram(ctx context.Context, caller *Caller, programName string) (*domain.Program, error) {
	if err := s.guard.RequireRole(caller, domain.RoleTrainer); err != nil {
		return nil, err
	}
	verr := &ValidationError{}
	programName = validateProgramName(programName, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	program := &domain.Program{
		TrainerID:     caller.ID,
		ProgramName:   programName,
		TrainingDays:  []domain.TrainingDay{},
		AssignedUsers: []primitive.ObjectID{},
	}
	id, err := s.programs.Create(ctx, program)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}
	program.ID = id

	mutated(entityProgram, "create")
	s.logger.InfoContext(ctx, "program created", "program_id", id.Hex(), "trainer_id", caller.ID.Hex())
	return program, nil
}

// ListPrograms returns the caller's own programs in creation order.
func (s *programService) ListPrograms(ctx context.Context, caller *Caller) ([]domain.Program, error) {
	if err := s.guard.RequireRole(caller, domain.RoleTrainer); err != nil {
		return nil, err
	}
	programs, err := s.programs.ListByTrainer(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

func (s *programService) GetProgram(ctx context.Context, caller *Caller, programID primitive.ObjectID) (*domain.Program, error) {
	return s.read(ctx, caller, NodeRef{ProgramID: programID})
}

func (s *programService) UpdateProgram(ctx context.Context, caller *Caller, programID primitive.ObjectID, patch ProgramPatch) (*domain.Program, error) {
	verr := &ValidationError{}
	if patch.ProgramName != nil {
		name := validateProgramName(*patch.ProgramName, verr)
		patch.ProgramName = &name
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	program, err := s.mutate(ctx, caller, NodeRef{ProgramID: programID}, func(p *domain.Program) error {
		if patch.ProgramName != nil {
			p.ProgramName = *patch.ProgramName
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	mutated(entityProgram, "update")
	return program, nil
}

// DeleteProgram removes the program and its whole tree. The delete is pinned
// to the version the cascade was computed from, so a video uploaded
// concurrently is either in the removal or makes the delete retry.
func (s *programService) DeleteProgram(ctx context.Context, caller *Caller, programID primitive.ObjectID) error {
	var removal domain.Removal
	for attempt := 1; ; attempt++ {
		program, err := s.read(ctx, caller, NodeRef{ProgramID: programID})
		if err != nil {
			return err
		}
		removal = program.CascadeAll()

		err = s.programs.Delete(ctx, program)
		if err == nil {
			break
		}
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return &NotFoundError{Entity: "Program"}
		case !errors.Is(err, repository.ErrVersionConflict):
			return fmt.Errorf("delete program %s: %w", programID.Hex(), err)
		}
		metrics.VersionConflicts.Inc()
		if attempt == maxWriteAttempts {
			return fmt.Errorf("delete program %s after %d attempts: %w", programID.Hex(), attempt, err)
		}
	}

	mutated(entityProgram, "delete")
	s.afterRemoval(ctx, removal)
	s.logger.InfoContext(ctx, "program deleted",
		"program_id", programID.Hex(), "removed_nodes", removal.Count())
	return nil
}
