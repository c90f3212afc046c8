// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"account_backend/internal/feature/account/adapters"
	"account_backend/internal/feature/account/usecase"
	"account_backend/internal/platform/session"
)

// NewPendingStore creates a PendingVerificationRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the database.
func NewPendingStore(rdb *redis.Client, db *gorm.DB, ttl time.Duration) usecase.PendingVerificationRepository {
	if rdb != nil {
		return session.NewPendingRedis(rdb, "pending", ttl)
	}
	return adapters.NewPendingGorm(db, ttl)
}
