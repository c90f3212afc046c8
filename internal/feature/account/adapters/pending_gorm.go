package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"account_backend/internal/feature/account/usecase"
)

// PendingVerificationModel is the GORM model for the pending_verifications
// table, the database fallback for the pending verification store when Redis
// is unavailable.
type PendingVerificationModel struct {
	SessionID string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

// TableName returns the table name for GORM.
func (PendingVerificationModel) TableName() string {
	return "pending_verifications"
}

// pendingGorm is a GORM implementation of the PendingVerificationRepository
// interface. Unlike the Redis store there is no automatic expiry, so Get
// checks ExpiresAt and lazily removes stale rows.
type pendingGorm struct {
	db  *gorm.DB
	ttl time.Duration
}

// Compile-time check to ensure pendingGorm implements PendingVerificationRepository.
var _ usecase.PendingVerificationRepository = (*pendingGorm)(nil)

// NewPendingGorm creates a new instance of pendingGorm with the given entry lifetime.
func NewPendingGorm(db *gorm.DB, ttl time.Duration) *pendingGorm {
	return &pendingGorm{db: db, ttl: ttl}
}

// Set stores the pending user for a browser session, overwriting any
// previous entry for the same session.
func (r *pendingGorm) Set(ctx context.Context, sessionID string, userID uint) error {
	now := time.Now().UTC()
	model := &PendingVerificationModel{
		SessionID: sessionID,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error
}

// Get returns the pending user ID for a browser session.
func (r *pendingGorm) Get(ctx context.Context, sessionID string) (uint, error) {
	var model PendingVerificationModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, usecase.ErrNoPendingVerification
		}
		return 0, err
	}
	if time.Now().After(model.ExpiresAt) {
		// Stale entry, drop it on the way out.
		if err := r.Delete(ctx, sessionID); err != nil {
			return 0, err
		}
		return 0, usecase.ErrNoPendingVerification
	}
	return model.UserID, nil
}

// Delete removes the pending state for a browser session.
func (r *pendingGorm) Delete(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&PendingVerificationModel{}).Error
}
