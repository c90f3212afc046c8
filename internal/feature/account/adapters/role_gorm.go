package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/usecase"
)

// roleGorm is a GORM implementation of the RoleRepository interface.
// Roles are seeded at store initialization, so this is read-only.
type roleGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure roleGorm implements RoleRepository.
var _ usecase.RoleRepository = (*roleGorm)(nil)

// NewRoleGorm creates a new instance of roleGorm.
func NewRoleGorm(db *gorm.DB) *roleGorm {
	return &roleGorm{db: db}
}

// FindByName retrieves a role by its name.
// It returns usecase.ErrRoleNotFound if the role does not exist.
func (r *roleGorm) FindByName(ctx context.Context, name string) (*entity.Role, error) {
	var role entity.Role
	if err := r.db.WithContext(ctx).Where("role_name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}
