package redis

import (
	"alcyxob/fitness-programs/internal/repository"
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// revocationRepository stores revoked token ids as keys that expire together
// with the token, so the set never outlives what it protects.
type revocationRepository struct {
	client *goredis.Client
	now    func() time.Time
}

// NewRevocationRepository creates a Redis-backed revocation store.
func NewRevocationRepository(client *goredis.Client) repository.TokenRevocationRepository {
	return &revocationRepository{client: client, now: time.Now}
}

// Connect opens a client and verifies it with a PING.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (r *revocationRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		// Already expired; verification rejects it without our help
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

func (r *revocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
