package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"gorm.io/gorm"
)

// QuoteRepository 报价仓库
type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// FindByID loads a quote with its items in display order.
func (r *QuoteRepository) FindByID(ctx context.Context, id string) (*entity.Quote, error) {
	var quote entity.Quote
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, code ASC")
		}).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &quote, nil
}

// Create stores the quote and its items.
func (r *QuoteRepository) Create(ctx context.Context, quote *entity.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

// UpdateStatus is a conditional status write guarded by the expected current statuses.
func (r *QuoteRepository) UpdateStatus(ctx context.Context, id string, from []entity.QuoteStatus, to entity.QuoteStatus, extra map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	result := r.db.WithContext(ctx).Model(&entity.Quote{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// UpdateApproval is a conditional write of the internal approval gate.
func (r *QuoteRepository) UpdateApproval(ctx context.Context, id string, from, to entity.QuoteApprovalStatus, extra map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{
		"approval_status": to,
		"updated_at":      time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	result := r.db.WithContext(ctx).Model(&entity.Quote{}).
		Where("id = ? AND approval_status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *QuoteRepository) GenerateCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.Quote{}, "code", "Q")
}
