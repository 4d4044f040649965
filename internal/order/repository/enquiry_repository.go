package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"gorm.io/gorm"
)

// EnquiryRepository 询盘仓库
type EnquiryRepository struct {
	db *gorm.DB
}

func NewEnquiryRepository(db *gorm.DB) *EnquiryRepository {
	return &EnquiryRepository{db: db}
}

func (r *EnquiryRepository) FindByID(ctx context.Context, id string) (*entity.Enquiry, error) {
	var enquiry entity.Enquiry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&enquiry).Error; err != nil {
		return nil, notFound(err)
	}
	return &enquiry, nil
}

func (r *EnquiryRepository) Create(ctx context.Context, enquiry *entity.Enquiry) error {
	return r.db.WithContext(ctx).Create(enquiry).Error
}

// UpdateStatus moves the enquiry to status when it is currently in one of from.
// It returns the number of rows changed.
func (r *EnquiryRepository) UpdateStatus(ctx context.Context, id string, from []entity.EnquiryStatus, to entity.EnquiryStatus, extra map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	result := r.db.WithContext(ctx).Model(&entity.Enquiry{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *EnquiryRepository) GenerateCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.Enquiry{}, "code", "ENQ")
}
