package repository

import (
	"alcyxob/fitness-programs/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound        = RepositoryError("not found")
	ErrDuplicateKey    = RepositoryError("duplicate key")
	ErrInvalidPage     = RepositoryError("invalid page window")
	ErrVersionConflict = RepositoryError("version conflict") // Aggregate changed since it was read
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	// Create returns ErrDuplicateKey when the email is taken.
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ProgramRepository stores whole Program aggregates.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	// ListByTrainer returns the trainer's programs in creation order.
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Program, error)
	// ListAssigned returns one page of programs assigned to userID, in
	// creation order, together with the total number of assigned programs.
	// It returns ErrInvalidPage for a negative skip or a non-positive limit.
	ListAssigned(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]domain.Program, int64, error)
	// Replace writes the aggregate if its stored version still equals
	// program.Version, then bumps Version and UpdatedAt on program.
	// It returns ErrVersionConflict when another writer got there first.
	Replace(ctx context.Context, program *domain.Program) error
	// Delete removes the aggregate under the same version rule as Replace,
	// so a caller that computed a cascade from program deletes exactly that
	// tree.
	Delete(ctx context.Context, program *domain.Program) error
}

// TokenRevocationRepository remembers revoked token ids until they expire.
type TokenRevocationRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
