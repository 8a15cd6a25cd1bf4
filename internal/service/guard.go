package service

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NodeRef addresses a node of a program tree by its full ancestor chain.
// Trailing zero ids stop the chain, so {ProgramID, DayID} names a day.
type NodeRef struct {
	ProgramID  primitive.ObjectID
	DayID      primitive.ObjectID
	ExerciseID primitive.ObjectID
	SetID      primitive.ObjectID
}

// Guard enforces role and ownership rules on program trees.
type Guard struct {
	programs repository.ProgramRepository
}

func NewGuard(programs repository.ProgramRepository) *Guard {
	return &Guard{programs: programs}
}

// RequireRole fails with ErrForbidden unless the caller holds one of roles.
func (g *Guard) RequireRole(caller *Caller, roles ...domain.Role) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	for _, r := range roles {
		if caller.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// RequireOwnership loads the program named by ref, resolves the rest of the
// chain inside it and checks that the caller is the owning trainer. Missing
// links are reported before ownership.
func (g *Guard) RequireOwnership(ctx context.Context, caller *Caller, ref NodeRef) (*domain.Program, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	program, err := g.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if program.TrainerID != caller.ID {
		return nil, ErrForbidden
	}
	return program, nil
}

// RequireAssigned is the trainee read path: the caller must be in the
// program's assignedUsers. Anything else reads as "Program not found".
func (g *Guard) RequireAssigned(ctx context.Context, caller *Caller, ref NodeRef) (*domain.Program, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	program, err := g.loadProgram(ctx, ref.ProgramID)
	if err != nil {
		return nil, err
	}
	if !program.IsAssigned(caller.ID) {
		return nil, &NotFoundError{Entity: "Program"}
	}
	if err := resolve(program, ref); err != nil {
		return nil, err
	}
	return program, nil
}

func (g *Guard) load(ctx context.Context, ref NodeRef) (*domain.Program, error) {
	program, err := g.loadProgram(ctx, ref.ProgramID)
	if err != nil {
		return nil, err
	}
	if err := resolve(program, ref); err != nil {
		return nil, err
	}
	return program, nil
}

func (g *Guard) loadProgram(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	if id.IsZero() {
		return nil, &NotFoundError{Entity: "Program"}
	}
	program, err := g.programs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Program"}
		}
		return nil, fmt.Errorf("load program %s: %w", id.Hex(), err)
	}
	return program, nil
}

// resolve walks ref inside program, deepest link last.
func resolve(program *domain.Program, ref NodeRef) error {
	var err error
	switch {
	case ref.DayID.IsZero():
		return nil
	case ref.ExerciseID.IsZero():
		_, err = program.TrainingDay(ref.DayID)
	case ref.SetID.IsZero():
		_, err = program.Exercise(ref.DayID, ref.ExerciseID)
	default:
		_, err = program.Set(ref.DayID, ref.ExerciseID, ref.SetID)
	}
	return treeError(err)
}
