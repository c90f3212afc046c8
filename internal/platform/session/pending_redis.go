// Package session provides the Redis-backed pending verification store and
// browser session ID generation.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"account_backend/internal/feature/account/usecase"
)

// PendingRedis implements usecase.PendingVerificationRepository using Redis.
// Entries expire automatically via the key TTL.
type PendingRedis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Compile-time check to ensure PendingRedis implements PendingVerificationRepository.
var _ usecase.PendingVerificationRepository = (*PendingRedis)(nil)

// NewPendingRedis creates a new PendingRedis instance.
func NewPendingRedis(client *redis.Client, prefix string, ttl time.Duration) *PendingRedis {
	return &PendingRedis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// pendingKey returns the Redis key for a browser session's pending state.
func (r *PendingRedis) pendingKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

// Set stores the pending user for a browser session with the configured TTL.
// An existing entry for the same session is overwritten.
func (r *PendingRedis) Set(ctx context.Context, sessionID string, userID uint) error {
	return r.client.Set(ctx, r.pendingKey(sessionID), uint64(userID), r.ttl).Err()
}

// Get returns the pending user ID for a browser session.
// It returns usecase.ErrNoPendingVerification when the key is absent or expired.
func (r *PendingRedis) Get(ctx context.Context, sessionID string) (uint, error) {
	userID, err := r.client.Get(ctx, r.pendingKey(sessionID)).Uint64()
	if err != nil {
		if err == redis.Nil {
			return 0, usecase.ErrNoPendingVerification
		}
		return 0, err
	}
	return uint(userID), nil
}

// Delete removes the pending state for a browser session.
// Deleting an absent key is not an error.
func (r *PendingRedis) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.pendingKey(sessionID)).Err()
}
