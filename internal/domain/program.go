// internal/domain/program.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program is the aggregate root: one document holding the full
// TrainingDay -> Exercise -> Set tree. Every write replaces the whole
// document, so the tree is always persisted in a consistent shape.
type Program struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TrainerID     primitive.ObjectID   `bson:"trainerId" json:"trainerId"` // Owning trainer
	ProgramName   string               `bson:"programName" json:"programName"`
	TrainingDays  []TrainingDay        `bson:"trainingDays" json:"trainingDays"`
	AssignedUsers []primitive.ObjectID `bson:"assignedUsers" json:"assignedUsers"` // Unique, unordered
	Version       int64                `bson:"version" json:"-"`                   // Bumped on every write
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// TrainingDay is a day of a Program. DayNumber is unique within the Program.
type TrainingDay struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	DayNumber int                `bson:"dayNumber" json:"dayNumber"`
	Exercises []Exercise         `bson:"exercises" json:"exercises"`
}

// Exercise belongs to a TrainingDay. Name is unique within the day.
type Exercise struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Sets     []Set              `bson:"sets" json:"sets"`
	VideoKey string             `bson:"videoKey,omitempty" json:"-"` // Object key of the demo video, if uploaded
}

// Set is a leaf of the tree.
type Set struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Reps   int                `bson:"reps" json:"reps"`
	Weight float64            `bson:"weight" json:"weight"`
}

// IsAssigned reports whether userID is in AssignedUsers.
func (p *Program) IsAssigned(userID primitive.ObjectID) bool {
	for _, id := range p.AssignedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// Assign adds userID to AssignedUsers. It returns false when the user was
// already assigned.
func (p *Program) Assign(userID primitive.ObjectID) bool {
	if p.IsAssigned(userID) {
		return false
	}
	p.AssignedUsers = append(p.AssignedUsers, userID)
	return true
}

// Unassign removes userID from AssignedUsers. It returns false when the user
// was not assigned.
func (p *Program) Unassign(userID primitive.ObjectID) bool {
	for i, id := range p.AssignedUsers {
		if id == userID {
			p.AssignedUsers = append(p.AssignedUsers[:i], p.AssignedUsers[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy, so callers holding the copy cannot alias the
// original's slices.
func (p *Program) Clone() *Program {
	if p == nil {
		return nil
	}
	cp := *p
	cp.AssignedUsers = append([]primitive.ObjectID(nil), p.AssignedUsers...)
	cp.TrainingDays = make([]TrainingDay, len(p.TrainingDays))
	for i, day := range p.TrainingDays {
		d := day
		d.Exercises = make([]Exercise, len(day.Exercises))
		for j, ex := range day.Exercises {
			e := ex
			e.Sets = append([]Set(nil), ex.Sets...)
			d.Exercises[j] = e
		}
		cp.TrainingDays[i] = d
	}
	return &cp
}
