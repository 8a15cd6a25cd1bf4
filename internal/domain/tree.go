package domain

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lookup and sibling-uniqueness errors raised by the tree operations below.
var (
	ErrTrainingDayNotFound   = errors.New("training day not found")
	ErrExerciseNotFound      = errors.New("exercise not found")
	ErrSetNotFound           = errors.New("set not found")
	ErrDuplicateDayNumber    = errors.New("training day with this day number already exists")
	ErrDuplicateExerciseName = errors.New("exercise with this name already exists")
)

// TrainingDayPatch carries a partial update; nil fields are left unchanged.
type TrainingDayPatch struct {
	DayNumber *int
}

type ExercisePatch struct {
	Name *string
}

type SetPatch struct {
	Reps   *int
	Weight *float64
}

// Removal reports every node removed by a cascade delete.
type Removal struct {
	TrainingDays []primitive.ObjectID
	Exercises    []primitive.ObjectID
	Sets         []primitive.ObjectID
	VideoKeys    []string
}

// Count is the total number of removed nodes.
func (r Removal) Count() int {
	return len(r.TrainingDays) + len(r.Exercises) + len(r.Sets)
}

func (r *Removal) addTrainingDay(d *TrainingDay) {
	r.TrainingDays = append(r.TrainingDays, d.ID)
	for i := range d.Exercises {
		r.addExercise(&d.Exercises[i])
	}
}

func (r *Removal) addExercise(e *Exercise) {
	r.Exercises = append(r.Exercises, e.ID)
	if e.VideoKey != "" {
		r.VideoKeys = append(r.VideoKeys, e.VideoKey)
	}
	for _, s := range e.Sets {
		r.Sets = append(r.Sets, s.ID)
	}
}

// --- Lookup ---

// TrainingDay resolves dayID inside this program.
func (p *Program) TrainingDay(dayID primitive.ObjectID) (*TrainingDay, error) {
	for i := range p.TrainingDays {
		if p.TrainingDays[i].ID == dayID {
			return &p.TrainingDays[i], nil
		}
	}
	return nil, ErrTrainingDayNotFound
}

// Exercise resolves exerciseID under dayID. An exercise that exists under a
// different day is reported as not found.
func (p *Program) Exercise(dayID, exerciseID primitive.ObjectID) (*Exercise, error) {
	day, err := p.TrainingDay(dayID)
	if err != nil {
		return nil, err
	}
	for i := range day.Exercises {
		if day.Exercises[i].ID == exerciseID {
			return &day.Exercises[i], nil
		}
	}
	return nil, ErrExerciseNotFound
}

// Set resolves setID under dayID/exerciseID.
func (p *Program) Set(dayID, exerciseID, setID primitive.ObjectID) (*Set, error) {
	ex, err := p.Exercise(dayID, exerciseID)
	if err != nil {
		return nil, err
	}
	for i := range ex.Sets {
		if ex.Sets[i].ID == setID {
			return &ex.Sets[i], nil
		}
	}
	return nil, ErrSetNotFound
}

// FindExercise resolves exerciseID anywhere in the program, for callers
// that address an exercise without its day.
func (p *Program) FindExercise(exerciseID primitive.ObjectID) (*Exercise, error) {
	for i := range p.TrainingDays {
		day := &p.TrainingDays[i]
		for j := range day.Exercises {
			if day.Exercises[j].ID == exerciseID {
				return &day.Exercises[j], nil
			}
		}
	}
	return nil, ErrExerciseNotFound
}

// --- Training days ---

// AddTrainingDay appends a new day. dayNumber must not be used by a sibling.
func (p *Program) AddTrainingDay(dayNumber int) (*TrainingDay, error) {
	if p.dayNumberTaken(dayNumber, primitive.NilObjectID) {
		return nil, ErrDuplicateDayNumber
	}
	p.TrainingDays = append(p.TrainingDays, TrainingDay{
		ID:        primitive.NewObjectID(),
		DayNumber: dayNumber,
		Exercises: []Exercise{},
	})
	return &p.TrainingDays[len(p.TrainingDays)-1], nil
}

// UpdateTrainingDay applies patch. Keeping the current dayNumber is not a
// collision.
func (p *Program) UpdateTrainingDay(dayID primitive.ObjectID, patch TrainingDayPatch) (*TrainingDay, error) {
	day, err := p.TrainingDay(dayID)
	if err != nil {
		return nil, err
	}
	if patch.DayNumber != nil {
		if p.dayNumberTaken(*patch.DayNumber, dayID) {
			return nil, ErrDuplicateDayNumber
		}
		day.DayNumber = *patch.DayNumber
	}
	return day, nil
}

// DeleteTrainingDay removes the day and its whole subtree.
func (p *Program) DeleteTrainingDay(dayID primitive.ObjectID) (Removal, error) {
	var removal Removal
	for i := range p.TrainingDays {
		if p.TrainingDays[i].ID == dayID {
			removal.addTrainingDay(&p.TrainingDays[i])
			p.TrainingDays = append(p.TrainingDays[:i], p.TrainingDays[i+1:]...)
			return removal, nil
		}
	}
	return removal, ErrTrainingDayNotFound
}

func (p *Program) dayNumberTaken(dayNumber int, except primitive.ObjectID) bool {
	for _, d := range p.TrainingDays {
		if d.DayNumber == dayNumber && d.ID != except {
			return true
		}
	}
	return false
}

// --- Exercises ---

// AddExercise appends a new exercise to the day. name must not be used by a
// sibling.
func (p *Program) AddExercise(dayID primitive.ObjectID, name string) (*Exercise, error) {
	day, err := p.TrainingDay(dayID)
	if err != nil {
		return nil, err
	}
	if day.exerciseNameTaken(name, primitive.NilObjectID) {
		return nil, ErrDuplicateExerciseName
	}
	day.Exercises = append(day.Exercises, Exercise{
		ID:   primitive.NewObjectID(),
		Name: name,
		Sets: []Set{},
	})
	return &day.Exercises[len(day.Exercises)-1], nil
}

func (p *Program) UpdateExercise(dayID, exerciseID primitive.ObjectID, patch ExercisePatch) (*Exercise, error) {
	day, err := p.TrainingDay(dayID)
	if err != nil {
		return nil, err
	}
	ex, err := p.Exercise(dayID, exerciseID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if day.exerciseNameTaken(*patch.Name, exerciseID) {
			return nil, ErrDuplicateExerciseName
		}
		ex.Name = *patch.Name
	}
	return ex, nil
}

// DeleteExercise removes the exercise and its sets.
func (p *Program) DeleteExercise(dayID, exerciseID primitive.ObjectID) (Removal, error) {
	var removal Removal
	day, err := p.TrainingDay(dayID)
	if err != nil {
		return removal, err
	}
	for i := range day.Exercises {
		if day.Exercises[i].ID == exerciseID {
			removal.addExercise(&day.Exercises[i])
			day.Exercises = append(day.Exercises[:i], day.Exercises[i+1:]...)
			return removal, nil
		}
	}
	return removal, ErrExerciseNotFound
}

func (d *TrainingDay) exerciseNameTaken(name string, except primitive.ObjectID) bool {
	for _, e := range d.Exercises {
		if e.Name == name && e.ID != except {
			return true
		}
	}
	return false
}

// --- Sets ---

func (p *Program) AddSet(dayID, exerciseID primitive.ObjectID, reps int, weight float64) (*Set, error) {
	ex, err := p.Exercise(dayID, exerciseID)
	if err != nil {
		return nil, err
	}
	ex.Sets = append(ex.Sets, Set{
		ID:     primitive.NewObjectID(),
		Reps:   reps,
		Weight: weight,
	})
	return &ex.Sets[len(ex.Sets)-1], nil
}

func (p *Program) UpdateSet(dayID, exerciseID, setID primitive.ObjectID, patch SetPatch) (*Set, error) {
	set, err := p.Set(dayID, exerciseID, setID)
	if err != nil {
		return nil, err
	}
	if patch.Reps != nil {
		set.Reps = *patch.Reps
	}
	if patch.Weight != nil {
		set.Weight = *patch.Weight
	}
	return set, nil
}

func (p *Program) DeleteSet(dayID, exerciseID, setID primitive.ObjectID) (Removal, error) {
	var removal Removal
	ex, err := p.Exercise(dayID, exerciseID)
	if err != nil {
		return removal, err
	}
	for i := range ex.Sets {
		if ex.Sets[i].ID == setID {
			removal.Sets = append(removal.Sets, setID)
			ex.Sets = append(ex.Sets[:i], ex.Sets[i+1:]...)
			return removal, nil
		}
	}
	return removal, ErrSetNotFound
}

// CascadeAll reports the full subtree of the program, used when the program
// itself is deleted.
func (p *Program) CascadeAll() Removal {
	var removal Removal
	for i := range p.TrainingDays {
		removal.addTrainingDay(&p.TrainingDays[i])
	}
	return removal
}
