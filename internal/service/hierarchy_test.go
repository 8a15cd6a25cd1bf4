package service

import (
	"context"
	"errors"
	"testing"

	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/repository"
	"alcyxob/fitness-programs/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildTree_ReadBack(t *testing.T) {
	f := newFixture(t)
	owner := trainer()
	ids := f.buildTree(t, owner)

	p, err := f.programs.GetProgram(context.Background(), owner, ids.program)
	require.NoError(t, err)

	assert.Equal(t, "Strength", p.ProgramName)
	assert.Equal(t, owner.ID, p.TrainerID)
	require.Len(t, p.TrainingDays, 1)
	assert.Equal(t, 1, p.TrainingDays[0].DayNumber)
	require.Len(t, p.TrainingDays[0].Exercises, 1)
	assert.Equal(t, "Squat", p.TrainingDays[0].Exercises[0].Name)
	require.Len(t, p.TrainingDays[0].Exercises[0].Sets, 1)
	set := p.TrainingDays[0].Exercises[0].Sets[0]
	assert.Equal(t, ids.set, set.ID)
	assert.Equal(t, 5, set.Reps)
	assert.Equal(t, 100.0, set.Weight)
}

func TestListPrograms_OwnOnlyInCreationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	t1, t2 := trainer(), trainer()

	for _, name := range []string{"A", "B", "C"} {
		_, err := f.programs.CreateProgram(ctx, t1, name)
		require.NoError(t, err)
	}
	_, err := f.programs.CreateProgram(ctx, t2, "Other")
	require.NoError(t, err)

	list, err := f.programs.ListPrograms(ctx, t1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "A", list[0].ProgramName)
	assert.Equal(t, "C", list[2].ProgramName)
}

func TestDuplicateDayNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()

	p1, err := f.programs.CreateProgram(ctx, owner, "P1")
	require.NoError(t, err)
	p2, err := f.programs.CreateProgram(ctx, owner, "P2")
	require.NoError(t, err)

	_, err = f.days.CreateTrainingDay(ctx, owner, p1.ID, 1)
	require.NoError(t, err)
	_, err = f.days.CreateTrainingDay(ctx, owner, p1.ID, 1)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.EqualError(t, err, "Training day with this dayNumber already exists")

	// Same number under another program is fine
	_, err = f.days.CreateTrainingDay(ctx, owner, p2.ID, 1)
	assert.NoError(t, err)
}

func TestExerciseRename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)

	lunge, err := f.exercises.CreateExercise(ctx, owner, ids.program, ids.day, "Lunge")
	require.NoError(t, err)

	taken := "Squat"
	_, err = f.exercises.UpdateExercise(ctx, owner, ids.program, ids.day, lunge.ID, domain.ExercisePatch{Name: &taken})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	own := "Lunge"
	updated, err := f.exercises.UpdateExercise(ctx, owner, ids.program, ids.day, lunge.ID, domain.ExercisePatch{Name: &own})
	require.NoError(t, err)
	assert.Equal(t, "Lunge", updated.Name)

	list, err := f.exercises.ListExercises(ctx, owner, ids.program, ids.day)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Squat", list[0].Name)
	assert.Equal(t, "Lunge", list[1].Name)
}

func TestUpdateSet_Partial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)

	reps := 8
	set, err := f.sets.UpdateSet(ctx, owner, ids.program, ids.day, ids.exercise, ids.set, domain.SetPatch{Reps: &reps})
	require.NoError(t, err)
	assert.Equal(t, 8, set.Reps)
	assert.Equal(t, 100.0, set.Weight)

	stored, err := f.sets.GetSet(ctx, owner, ids.program, ids.day, ids.exercise, ids.set)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Reps)
}

func TestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)

	_, err := f.programs.CreateProgram(ctx, owner, "   ")
	assertFieldError(t, err, "programName")

	_, err = f.days.CreateTrainingDay(ctx, owner, ids.program, 0)
	assertFieldError(t, err, "dayNumber")

	_, err = f.exercises.CreateExercise(ctx, owner, ids.program, ids.day, "")
	assertFieldError(t, err, "name")

	_, err = f.sets.CreateSet(ctx, owner, ids.program, ids.day, ids.exercise, 0, -1)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	// Nothing was written
	sets, err := f.sets.ListSets(ctx, owner, ids.program, ids.day, ids.exercise)
	require.NoError(t, err)
	assert.Len(t, sets, 1)
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, field, verr.Fields[0].Field)
}

func TestDeleteTrainingDay_CascadesToDescendants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)

	require.NoError(t, f.days.DeleteTrainingDay(ctx, owner, ids.program, ids.day))

	_, err := f.days.GetTrainingDay(ctx, owner, ids.program, ids.day)
	assert.EqualError(t, err, "Training day not found")
	_, err = f.exercises.GetExercise(ctx, owner, ids.program, ids.day, ids.exercise)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.sets.GetSet(ctx, owner, ids.program, ids.day, ids.exercise, ids.set)
	assert.ErrorIs(t, err, ErrNotFound)

	// The program itself survives
	p, err := f.programs.GetProgram(ctx, owner, ids.program)
	require.NoError(t, err)
	assert.Empty(t, p.TrainingDays)
}

func TestDeleteExerciseAndSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)

	require.NoError(t, f.sets.DeleteSet(ctx, owner, ids.program, ids.day, ids.exercise, ids.set))
	_, err := f.sets.GetSet(ctx, owner, ids.program, ids.day, ids.exercise, ids.set)
	assert.EqualError(t, err, "Set not found")
	assert.ErrorIs(t, f.sets.DeleteSet(ctx, owner, ids.program, ids.day, ids.exercise, ids.set), ErrNotFound)

	require.NoError(t, f.exercises.DeleteExercise(ctx, owner, ids.program, ids.day, ids.exercise))
	_, err = f.exercises.GetExercise(ctx, owner, ids.program, ids.day, ids.exercise)
	assert.EqualError(t, err, "Exercise not found")
}

func TestDeleteProgram_CascadesToDescendants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)

	require.NoError(t, f.programs.DeleteProgram(ctx, owner, ids.program))

	_, err := f.programs.GetProgram(ctx, owner, ids.program)
	assert.EqualError(t, err, "Program not found")
	_, err = f.days.GetTrainingDay(ctx, owner, ids.program, ids.day)
	assert.EqualError(t, err, "Program not found")
	_, err = f.sets.GetSet(ctx, owner, ids.program, ids.day, ids.exercise, ids.set)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChildUnderWrongParentIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	a := f.buildTree(t, owner)
	b := f.buildTree(t, owner)

	_, err := f.days.GetTrainingDay(ctx, owner, a.program, b.day)
	assert.EqualError(t, err, "Training day not found")
	_, err = f.exercises.GetExercise(ctx, owner, a.program, a.day, b.exercise)
	assert.EqualError(t, err, "Exercise not found")
	_, err = f.sets.UpdateSet(ctx, owner, a.program, a.day, a.exercise, b.set, domain.SetPatch{})
	assert.EqualError(t, err, "Set not found")
}

func TestOwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, intruder := trainer(), trainer()
	ids := f.buildTree(t, owner)
	name := "Hijacked"
	reps := 1

	_, err := f.programs.GetProgram(ctx, intruder, ids.program)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.programs.UpdateProgram(ctx, intruder, ids.program, ProgramPatch{ProgramName: &name})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.programs.DeleteProgram(ctx, intruder, ids.program), ErrForbidden)
	_, err = f.days.CreateTrainingDay(ctx, intruder, ids.program, 2)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.days.DeleteTrainingDay(ctx, intruder, ids.program, ids.day), ErrForbidden)
	_, err = f.exercises.CreateExercise(ctx, intruder, ids.program, ids.day, "Deadlift")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.sets.UpdateSet(ctx, intruder, ids.program, ids.day, ids.exercise, ids.set, domain.SetPatch{Reps: &reps})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.sets.DeleteSet(ctx, intruder, ids.program, ids.day, ids.exercise, ids.set), ErrForbidden)

	// Untouched
	p, err := f.programs.GetProgram(ctx, owner, ids.program)
	require.NoError(t, err)
	assert.Equal(t, "Strength", p.ProgramName)
	assert.Equal(t, 5, p.TrainingDays[0].Exercises[0].Sets[0].Reps)
}

func TestUserRoleIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)
	// Same id as the owner but the wrong role
	impostor := &Caller{ID: owner.ID, Role: domain.RoleUser}

	_, err := f.programs.CreateProgram(ctx, impostor, "Mine")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.programs.ListPrograms(ctx, impostor)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.programs.GetProgram(ctx, impostor, ids.program)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.days.CreateTrainingDay(ctx, impostor, ids.program, 2)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.sets.ListSets(ctx, impostor, ids.program, ids.day, ids.exercise)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMissingChainBeforeOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, intruder := trainer(), trainer()
	ids := f.buildTree(t, owner)

	_, err := f.programs.GetProgram(ctx, intruder, primitive.NewObjectID())
	assert.EqualError(t, err, "Program not found")
	_, err = f.exercises.GetExercise(ctx, intruder, ids.program, ids.day, primitive.NewObjectID())
	assert.EqualError(t, err, "Exercise not found")
}

// conflictingRepo fails the first n Replace calls with a version conflict.
type conflictingRepo struct {
	*memory.ProgramRepository
	conflicts int
	calls     int
}

func (r *conflictingRepo) Replace(ctx context.Context, p *domain.Program) error {
	r.calls++
	if r.calls <= r.conflicts {
		return repository.ErrVersionConflict
	}
	return r.ProgramRepository.Replace(ctx, p)
}

func TestMutate_RetriesVersionConflicts(t *testing.T) {
	ctx := context.Background()
	owner := trainer()
	repo := &conflictingRepo{ProgramRepository: memory.NewProgramRepository(), conflicts: 2}
	programs := NewProgramService(repo, nil, discardLogger)
	days := NewTrainingDayService(repo, nil, discardLogger)

	p, err := programs.CreateProgram(ctx, owner, "Retry")
	require.NoError(t, err)

	day, err := days.CreateTrainingDay(ctx, owner, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)

	list, err := days.ListTrainingDays(ctx, owner, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, day.ID, list[0].ID)
}

func TestMutate_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	owner := trainer()
	repo := &conflictingRepo{ProgramRepository: memory.NewProgramRepository(), conflicts: 100}
	programs := NewProgramService(repo, nil, discardLogger)
	days := NewTrainingDayService(repo, nil, discardLogger)

	p, err := programs.CreateProgram(ctx, owner, "Busy")
	require.NoError(t, err)

	_, err = days.CreateTrainingDay(ctx, owner, p.ID, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrVersionConflict))
	assert.Equal(t, maxWriteAttempts, repo.calls)
}

func TestMutate_StaleCopyLosesToConcurrentWriter(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProgramRepository()
	owner := trainer()
	days := NewTrainingDayService(repo, nil, discardLogger)

	id, err := repo.Create(ctx, &domain.Program{TrainerID: owner.ID, ProgramName: "Race"})
	require.NoError(t, err)

	// A writer that read version 1 saves after someone else already did
	stale, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	_, err = days.CreateTrainingDay(ctx, owner, id, 1)
	require.NoError(t, err)

	_, err = stale.AddTrainingDay(1)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Replace(ctx, stale), repository.ErrVersionConflict)
}

// racingDeleteRepo runs race once, just before the first Delete reaches the
// store.
type racingDeleteRepo struct {
	*memory.ProgramRepository
	race  func()
	raced bool
}

func (r *racingDeleteRepo) Delete(ctx context.Context, p *domain.Program) error {
	if !r.raced {
		r.raced = true
		r.race()
	}
	return r.ProgramRepository.Delete(ctx, p)
}

func TestDeleteProgram_PicksUpConcurrentVideo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := trainer()
	ids := f.buildTree(t, owner)

	var uploaded string
	repo := &racingDeleteRepo{
		ProgramRepository: f.programRepo,
		race: func() {
			up, err := f.media.RequestVideoUpload(ctx, owner, ids.program, ids.day, ids.exercise, "video/mp4")
			require.NoError(t, err)
			uploaded = up.ObjectKey
		},
	}
	programs := NewProgramService(repo, f.files, discardLogger)

	require.NoError(t, programs.DeleteProgram(ctx, owner, ids.program))
	require.NotEmpty(t, uploaded)
	assert.Equal(t, []string{uploaded}, f.files.deletedKeys())

	_, err := f.programRepo.GetByID(ctx, ids.program)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
