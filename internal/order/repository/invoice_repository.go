package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"gorm.io/gorm"
)

// InvoiceRepository 发票仓库
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error; err != nil {
		return nil, notFound(err)
	}
	return &invoice, nil
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// MarkPaid sets status paid if the invoice is still in one of from.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, id string, from []entity.InvoiceStatus, paidBy string, paidAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{
			"status":     entity.InvoiceStatusPaid,
			"paid_at":    paidAt,
			"paid_by":    paidBy,
			"updated_at": paidAt,
		})
	return result.RowsAffected, result.Error
}

func (r *InvoiceRepository) GenerateNumber(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.Invoice{}, "number", "INV")
}
