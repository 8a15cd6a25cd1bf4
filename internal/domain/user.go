package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role decides which side of the API a caller uses.
type Role string

const (
	RoleTrainer Role = "trainer"
	RoleUser    Role = "user" // Trainee; sees programs assigned to them
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleTrainer || r == RoleUser
}

// User is a registered account. Trainers own programs; users are assigned them.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`    // Unique index
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
