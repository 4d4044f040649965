package repository

import (
	"context"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"gorm.io/gorm"
)

// UserRepository 用户目录（只读）
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// ListIDsByRole returns the ids of active users holding any of roles.
func (r *UserRepository) ListIDsByRole(ctx context.Context, roles ...string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("role IN ? AND status = ?", roles, "active").
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
