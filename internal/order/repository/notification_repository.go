package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"gorm.io/gorm"
)

// NotificationRepository 站内通知仓库
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListByUser returns a page of a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) ([]entity.Notification, int64, error) {
	var (
		items []entity.Notification
		total int64
	)
	query := r.db.WithContext(ctx).Model(&entity.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkRead marks one of the user's notifications read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
