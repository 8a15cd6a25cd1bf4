// internal/repository/mongo/program_repo.go
package mongo

import (
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const programCollectionName = "programs"

// creation order, with _id as the tie breaker
var programSort = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

// mongoProgramRepository implements repository.ProgramRepository. Each
// Program is one document, so every write to its tree is atomic.
type mongoProgramRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramRepository creates a new Program repository.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		collection: db.Collection(programCollectionName),
	}
}

// Create inserts a new program aggregate.
func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	if program.TrainerID == primitive.NilObjectID || program.ProgramName == "" {
		return primitive.NilObjectID, errors.New("program requires trainerId and programName")
	}
	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now
	program.Version = 1
	if program.TrainingDays == nil {
		program.TrainingDays = []domain.TrainingDay{}
	}
	if program.AssignedUsers == nil {
		program.AssignedUsers = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, program)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted program ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single program with its full tree.
func (r *mongoProgramRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	var program domain.Program
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&program)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

// ListByTrainer retrieves all programs owned by the trainer.
func (r *mongoProgramRepository) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Program, error) {
	return r.find(ctx, bson.M{"trainerId": trainerID}, options.Find().SetSort(programSort))
}

// ListAssigned retrieves one page of the programs assigned to userID.
func (r *mongoProgramRepository) ListAssigned(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]domain.Program, int64, error) {
	if skip < 0 || limit < 1 {
		return nil, 0, repository.ErrInvalidPage
	}
	filter := bson.M{"assignedUsers": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 || skip >= total {
		return []domain.Program{}, total, nil
	}

	findOptions := options.Find().SetSort(programSort).SetSkip(skip).SetLimit(limit)
	programs, err := r.find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	return programs, total, nil
}

func (r *mongoProgramRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Program, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	programs := []domain.Program{}
	if err = cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return programs, nil
}

// Replace writes the whole aggregate in a single document update. The filter
// pins the version that was read, so a concurrent writer makes this a no-op
// that reports ErrVersionConflict instead of silently losing its change.
func (r *mongoProgramRepository) Replace(ctx context.Context, program *domain.Program) error {
	if program.ID == primitive.NilObjectID {
		return errors.New("program ID is required for replace")
	}

	next := *program
	next.Version = program.Version + 1
	next.UpdatedAt = time.Now().UTC()

	filter := bson.M{
		"_id":       program.ID,
		"trainerId": program.TrainerID,
		"version":   program.Version,
	}
	result, err := r.collection.ReplaceOne(ctx, filter, &next)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return r.missed(ctx, program)
	}

	program.Version = next.Version
	program.UpdatedAt = next.UpdatedAt
	return nil
}

// Delete removes the program document and with it the whole tree. Like
// Replace, it only matches the version that was read.
func (r *mongoProgramRepository) Delete(ctx context.Context, program *domain.Program) error {
	if program.ID == primitive.NilObjectID || program.TrainerID == primitive.NilObjectID {
		return errors.New("program ID and trainer ID are required for deletion")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":       program.ID,
		"trainerId": program.TrainerID,
		"version":   program.Version,
	})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return r.missed(ctx, program)
	}
	return nil
}

// missed explains a versioned write that matched nothing.
func (r *mongoProgramRepository) missed(ctx context.Context, program *domain.Program) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": program.ID, "trainerId": program.TrainerID})
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrVersionConflict
}

// EnsureProgramIndexes creates necessary indexes. Call during startup.
func EnsureProgramIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
		{
			// Multikey index backing the trainee listing
			Keys:    bson.D{{Key: "assignedUsers", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
