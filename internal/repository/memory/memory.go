// Package memory holds in-process implementations of the repository
// interfaces. They keep the same contracts as the MongoDB ones (unique email,
// creation order, optimistic versioning) and back the tests and the
// "memory" storage driver.
package memory

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/repository"
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository implements repository.UserRepository.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[primitive.ObjectID]domain.User
	byEmail map[string]primitive.ObjectID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[primitive.ObjectID]domain.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return primitive.NilObjectID, repository.ErrDuplicateKey
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return user.ID, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

// ProgramRepository implements repository.ProgramRepository. Stored
// aggregates are cloned on the way in and out so callers never share state.
type ProgramRepository struct {
	mu       sync.RWMutex
	programs map[primitive.ObjectID]*domain.Program
	order    []primitive.ObjectID // creation order
	now      func() time.Time
}

func NewProgramRepository() *ProgramRepository {
	return &ProgramRepository{
		programs: make(map[primitive.ObjectID]*domain.Program),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *ProgramRepository) Create(_ context.Context, program *domain.Program) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	program.ID = primitive.NewObjectID()
	now := r.now()
	program.CreatedAt = now
	program.UpdatedAt = now
	program.Version = 1
	if program.TrainingDays == nil {
		program.TrainingDays = []domain.TrainingDay{}
	}
	if program.AssignedUsers == nil {
		program.AssignedUsers = []primitive.ObjectID{}
	}

	r.programs[program.ID] = program.Clone()
	r.order = append(r.order, program.ID)
	return program.ID, nil
}

func (r *ProgramRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProgramRepository) ListByTrainer(_ context.Context, trainerID primitive.ObjectID) ([]domain.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(p *domain.Program) bool { return p.TrainerID == trainerID }), nil
}

func (r *ProgramRepository) ListAssigned(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]domain.Program, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if skip < 0 || limit < 1 {
		return nil, 0, repository.ErrInvalidPage
	}
	all := r.collect(func(p *domain.Program) bool { return p.IsAssigned(userID) })
	total := int64(len(all))
	if skip >= total {
		return []domain.Program{}, total, nil
	}
	end := total
	if limit < total-skip {
		end = skip + limit
	}
	return all[skip:end], total, nil
}

func (r *ProgramRepository) collect(match func(*domain.Program) bool) []domain.Program {
	out := []domain.Program{}
	for _, id := range r.order {
		if p := r.programs[id]; match(p) {
			out = append(out, *p.Clone())
		}
	}
	return out
}

func (r *ProgramRepository) Replace(_ context.Context, program *domain.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.programs[program.ID]
	if !ok || stored.TrainerID != program.TrainerID {
		return repository.ErrNotFound
	}
	if stored.Version != program.Version {
		return repository.ErrVersionConflict
	}

	program.Version++
	program.UpdatedAt = r.now()
	r.programs[program.ID] = program.Clone()
	return nil
}

func (r *ProgramRepository) Delete(_ context.Context, program *domain.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.programs[program.ID]
	if !ok || stored.TrainerID != program.TrainerID {
		return repository.ErrNotFound
	}
	if stored.Version != program.Version {
		return repository.ErrVersionConflict
	}
	delete(r.programs, program.ID)
	for i, oid := range r.order {
		if oid == program.ID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// TokenRevocationRepository implements repository.TokenRevocationRepository.
type TokenRevocationRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewTokenRevocationRepository() *TokenRevocationRepository {
	return &TokenRevocationRepository{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (r *TokenRevocationRepository) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.revoked[tokenID] = expiresAt
	// Drop entries whose tokens would be rejected as expired anyway
	now := r.now()
	for id, exp := range r.revoked {
		if !exp.After(now) {
			delete(r.revoked, id)
		}
	}
	return nil
}

func (r *TokenRevocationRepository) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.revoked[tokenID]
	return ok && exp.After(r.now()), nil
}

var (
	_ repository.UserRepository            = (*UserRepository)(nil)
	_ repository.ProgramRepository         = (*ProgramRepository)(nil)
	_ repository.TokenRevocationRepository = (*TokenRevocationRepository)(nil)
)
