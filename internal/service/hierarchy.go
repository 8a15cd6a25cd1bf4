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
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxWriteAttempts bounds the load/mutate/save cycle under version conflicts.
const maxWriteAttempts = 3

// Entity labels used in metrics.
const (
	entityProgram     = "program"
	entityTrainingDay = "training_day"
	entityExercise    = "exercise"
	entitySet         = "set"
)

// hierarchy is the shared core of the per-level services. Every write goes
// through mutate, which persists the whole aggregate in one versioned write.
type hierarchy struct {
	programs repository.ProgramRepository
	guard    *Guard
	files    storage.FileStorage // nil when video storage is not configured
	logger   *slog.Logger
}

func newHierarchy(programs repository.ProgramRepository, files storage.FileStorage, logger *slog.Logger) *hierarchy {
	if logger == nil {
		logger = slog.Default()
	}
	return &hierarchy{
		programs: programs,
		guard:    NewGuard(programs),
		files:    files,
		logger:   logger,
	}
}

// read loads the aggregate for a trainer-only, owner-checked read.
func (h *hierarchy) read(ctx context.Context, caller *Caller, ref NodeRef) (*domain.Program, error) {
	if err := h.guard.RequireRole(caller, domain.RoleTrainer); err != nil {
		return nil, err
	}
	return h.guard.RequireOwnership(ctx, caller, ref)
}

// mutate runs fn against a freshly loaded, owner-checked aggregate and saves
// the result. fn may run more than once; it must derive everything from the
// program it is given.
func (h *hierarchy) mutate(ctx context.Context, caller *Caller, ref NodeRef, fn func(p *domain.Program) error) (*domain.Program, error) {
	if err := h.guard.RequireRole(caller, domain.RoleTrainer); err != nil {
		return nil, err
	}
	return h.write(ctx, ref.ProgramID,
		func() (*domain.Program, error) { return h.guard.RequireOwnership(ctx, caller, ref) },
		fn)
}

// write is the load/mutate/save cycle behind every aggregate write. A version
// conflict restarts the cycle from load, up to maxWriteAttempts times.
func (h *hierarchy) write(ctx context.Context, programID primitive.ObjectID, load func() (*domain.Program, error), fn func(p *domain.Program) error) (*domain.Program, error) {
	for attempt := 1; ; attempt++ {
		program, err := load()
		if err != nil {
			return nil, err
		}
		if err := fn(program); err != nil {
			return nil, treeError(err)
		}

		err = h.programs.Replace(ctx, program)
		switch {
		case err == nil:
			return program, nil
		case errors.Is(err, repository.ErrNotFound):
			// Deleted between load and save
			return nil, &NotFoundError{Entity: "Program"}
		case !errors.Is(err, repository.ErrVersionConflict):
			return nil, fmt.Errorf("save program %s: %w", programID.Hex(), err)
		}

		metrics.VersionConflicts.Inc()
		h.logger.DebugContext(ctx, "program changed concurrently, retrying",
			"program_id", programID.Hex(), "attempt", attempt)
		if attempt == maxWriteAttempts {
			return nil, fmt.Errorf("save program %s after %d attempts: %w", programID.Hex(), attempt, err)
		}
	}
}

// afterRemoval records cascade metrics and deletes orphaned video objects.
// Object deletion is best-effort: the aggregate write already succeeded.
func (h *hierarchy) afterRemoval(ctx context.Context, removal domain.Removal) {
	if n := len(removal.TrainingDays); n > 0 {
		metrics.CascadeRemovedNodes.WithLabelValues(entityTrainingDay).Add(float64(n))
	}
	if n := len(removal.Exercises); n > 0 {
		metrics.CascadeRemovedNodes.WithLabelValues(entityExercise).Add(float64(n))
	}
	if n := len(removal.Sets); n > 0 {
		metrics.CascadeRemovedNodes.WithLabelValues(entitySet).Add(float64(n))
	}

	if h.files == nil {
		return
	}
	for _, key := range removal.VideoKeys {
		if err := h.files.DeleteObject(context.WithoutCancel(ctx), key); err != nil {
			h.logger.WarnContext(ctx, "failed to delete exercise video", "key", key, "error", err)
		}
	}
}

func mutated(entity, op string) {
	metrics.ProgramMutations.WithLabelValues(entity, op).Inc()
}

// --- Field validation ---

func validateProgramName(name string, verr *ValidationError) string {
	name = strings.TrimSpace(name)
	if name == "" {
		verr.add("programName", "Program name is required")
	}
	return name
}

func validateDayNumber(dayNumber int, verr *ValidationError) {
	if dayNumber < 1 {
		verr.add("dayNumber", "Day number must be a positive integer")
	}
}

func validateExerciseName(name string, verr *ValidationError) string {
	name = strings.TrimSpace(name)
	if name == "" {
		verr.add("name", "Exercise name is required")
	}
	return name
}

func validateReps(reps int, verr *ValidationError) {
	if reps < 1 {
		verr.add("reps", "Reps must be at least 1")
	}
}

func validateWeight(weight float64, verr *ValidationError) {
	if weight < 0 {
		verr.add("weight", "Weight must be a non-negative number")
	}
}
