package service

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxPageLimit caps the page size of the assigned-program listing.
const MaxPageLimit = 100

// AssignedPage is one page of programs assigned to a trainee.
type AssignedPage struct {
	Programs      []domain.Program
	Page          int
	Limit         int
	TotalPages    int
	TotalPrograms int64
}

type AssignmentService interface {
	// AssignProgram adds userID to the program's assignees. Assigning twice
	// is a no-op.
	AssignProgram(ctx context.Context, caller *Caller, programID, userID primitive.ObjectID) (*domain.Program, error)
	UnassignProgram(ctx context.Context, caller *Caller, programID, userID primitive.ObjectID) (*domain.Program, error)
	ListAssignedPrograms(ctx context.Context, caller *Caller, page, limit int) (*AssignedPage, error)
	GetAssignedProgram(ctx context.Context, caller *Caller, programID primitive.ObjectID) (*domain.Program, error)
}

type assignmentService struct {
	*hierarchy
	userRepo repository.UserRepository
}

func NewAssignmentService(programRepo repository.ProgramRepository, userRepo repository.UserRepository, logger *slog.Logger) AssignmentService {
	return &assignmentService{
		hierarchy: newHierarchy(programRepo, nil, logger),
		userRepo:  userRepo,
	}
}

func (s *assignmentService) AssignProgram(ctx context.Context, caller *Caller, programID, userID primitive.ObjectID) (*domain.Program, error) {
	if err := s.guard.RequireRole(caller, domain.RoleTrainer); err != nil {
		return nil, err
	}
	// Surface a missing or foreign program before looking at the user
	current, err := s.ownedProgram(ctx, caller, programID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "User"}
		}
		return nil, fmt.Errorf("load user %s: %w", userID.Hex(), err)
	}
	if current.IsAssigned(userID) {
		return current, nil
	}

	changed := false
	program, err := s.write(ctx, programID,
		func() (*domain.Program, error) { return s.ownedProgram(ctx, caller, programID) },
		func(p *domain.Program) error {
			changed = p.Assign(userID)
			return nil
		})
	if err != nil {
		return nil, err
	}
	if changed {
		mutated(entityProgram, "assign")
		s.logger.InfoContext(ctx, "program assigned", "program_id", programID.Hex(), "user_id", userID.Hex())
	}
	return program, nil
}

func (s *assignmentService) UnassignProgram(ctx context.Context, caller *Caller, programID, userID primitive.ObjectID) (*domain.Program, error) {
	if err := s.guard.RequireRole(caller, domain.RoleTrainer); err != nil {
		return nil, err
	}

	changed := false
	program, err := s.write(ctx, programID,
		func() (*domain.Program, error) { return s.ownedProgram(ctx, caller, programID) },
		func(p *domain.Program) error {
			changed = p.Unassign(userID)
			return nil
		})
	if err != nil {
		return nil, err
	}
	if changed {
		mutated(entityProgram, "unassign")
	}
	return program, nil
}

// ListAssignedPrograms pages through programs assigned to the caller, in
// creation order. Any authenticated role may call it.
func (s *assignmentService) ListAssignedPrograms(ctx context.Context, caller *Caller, page, limit int) (*AssignedPage, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	verr := &ValidationError{}
	if page < 1 {
		verr.add("page", "Page must be a positive integer")
	}
	if limit < 1 || limit > MaxPageLimit {
		verr.add("limit", fmt.Sprintf("Limit must be an integer between 1 and %d", MaxPageLimit))
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	programs, total, err := s.programs.ListAssigned(ctx, caller.ID, pageOffset(page, limit), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list assigned programs: %w", err)
	}
	for i := range programs {
		traineeView(&programs[i])
	}
	return &AssignedPage{
		Programs:      programs,
		Page:          page,
		Limit:         limit,
		TotalPages:    totalPages(total, limit),
		TotalPrograms: total,
	}, nil
}

// pageOffset saturates at MaxInt64, which lies past the last page of any
// listing.
func pageOffset(page, limit int) int64 {
	if int64(page-1) > math.MaxInt64/int64(limit) {
		return math.MaxInt64
	}
	return int64(page-1) * int64(limit)
}

func totalPages(total int64, limit int) int {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return int(pages)
}

// GetAssignedProgram returns a program the caller is assigned to. Programs
// the caller is not assigned to read as not found.
func (s *assignmentService) GetAssignedProgram(ctx context.Context, caller *Caller, programID primitive.ObjectID) (*domain.Program, error) {
	program, err := s.guard.RequireAssigned(ctx, caller, NodeRef{ProgramID: programID})
	if err != nil {
		return nil, err
	}
	traineeView(program)
	return program, nil
}

// traineeView hides the other assignees from a trainee.
func traineeView(p *domain.Program) {
	p.AssignedUsers = nil
}

// ownedProgram reports a foreign program as not found rather than forbidden.
func (s *assignmentService) ownedProgram(ctx context.Context, caller *Caller, programID primitive.ObjectID) (*domain.Program, error) {
	program, err := s.guard.RequireOwnership(ctx, caller, NodeRef{ProgramID: programID})
	if errors.Is(err, ErrForbidden) {
		return nil, &NotFoundError{Entity: "Program"}
	}
	return program, err
}
