package mongo

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// setupTestDB connects to TEST_MONGO_URI and hands out a throwaway database.
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	client, err := ConnectDB(uri)
	require.NoError(t, err)

	db := client.Database("fitness_test_" + primitive.NewObjectID().Hex())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = DisconnectDB(client)
	})
	return db
}

func TestMongoUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMongoUserRepository(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, &domain.User{Email: "t@x.com", PasswordHash: "hash", Role: domain.RoleTrainer})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Email: "t@x.com", PasswordHash: "hash", Role: domain.RoleUser})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	got, err := repo.GetByEmail(ctx, "t@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, domain.RoleTrainer, got.Role)

	_, err = repo.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMongoProgramRepository_TreeRoundTripAndVersioning(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMongoProgramRepository(db)
	ctx := context.Background()
	trainer := primitive.NewObjectID()

	id, err := repo.Create(ctx, &domain.Program{TrainerID: trainer, ProgramName: "Strength"})
	require.NoError(t, err)

	p, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	stale, err := repo.GetByID(ctx, id)
	require.NoError(t, err)

	day, err := p.AddTrainingDay(1)
	require.NoError(t, err)
	dayID := day.ID
	ex, err := p.AddExercise(dayID, "Squat")
	require.NoError(t, err)
	_, err = p.AddSet(dayID, ex.ID, 5, 100)
	require.NoError(t, err)
	require.NoError(t, repo.Replace(ctx, p))

	assert.ErrorIs(t, repo.Replace(ctx, stale), repository.ErrVersionConflict)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.TrainingDays, 1)
	require.Len(t, got.TrainingDays[0].Exercises, 1)
	require.Len(t, got.TrainingDays[0].Exercises[0].Sets, 1)
	assert.Equal(t, 100.0, got.TrainingDays[0].Exercises[0].Sets[0].Weight)
	assert.Equal(t, int64(2), got.Version)

	assert.ErrorIs(t, repo.Delete(ctx, stale), repository.ErrVersionConflict)
	require.NoError(t, repo.Delete(ctx, p))
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMongoProgramRepository_ListAssigned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMongoProgramRepository(db)
	ctx := context.Background()
	trainer := primitive.NewObjectID()
	user := primitive.NewObjectID()

	for i := 0; i < 15; i++ {
		_, err := repo.Create(ctx, &domain.Program{
			TrainerID:     trainer,
			ProgramName:   "P",
			AssignedUsers: []primitive.ObjectID{user},
		})
		require.NoError(t, err)
	}

	page, total, err := repo.ListAssigned(ctx, user, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.Len(t, page, 5)

	page, total, err = repo.ListAssigned(ctx, user, math.MaxInt64, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.Empty(t, page)

	_, _, err = repo.ListAssigned(ctx, user, -4, 4)
	assert.ErrorIs(t, err, repository.ErrInvalidPage)
}
