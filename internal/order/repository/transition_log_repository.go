package repository

import (
	"context"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"gorm.io/gorm"
)

// TransitionLogRepository 条目状态日志仓库
type TransitionLogRepository struct {
	db *gorm.DB
}

func NewTransitionLogRepository(db *gorm.DB) *TransitionLogRepository {
	return &TransitionLogRepository{db: db}
}

func (r *TransitionLogRepository) Create(ctx context.Context, log *entity.ItemTransitionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListByItem returns an item's history, oldest first.
func (r *TransitionLogRepository) ListByItem(ctx context.Context, itemID string) ([]entity.ItemTransitionLog, error) {
	var logs []entity.ItemTransitionLog
	err := r.db.WithContext(ctx).
		Where("project_item_id = ?", itemID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
