package repository

import (
	"context"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"gorm.io/gorm"
)

// SnagRepository 现场缺陷仓库
type SnagRepository struct {
	db *gorm.DB
}

func NewSnagRepository(db *gorm.DB) *SnagRepository {
	return &SnagRepository{db: db}
}

func (r *SnagRepository) Create(ctx context.Context, snag *entity.Snag) error {
	return r.db.WithContext(ctx).Create(snag).Error
}

func (r *SnagRepository) ListByItem(ctx context.Context, itemID string) ([]entity.Snag, error) {
	var snags []entity.Snag
	err := r.db.WithContext(ctx).
		Where("project_item_id = ?", itemID).
		Order("created_at DESC").
		Find(&snags).Error
	return snags, err
}
