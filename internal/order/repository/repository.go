package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Repositories 仓库集合
type Repositories struct {
	db *gorm.DB

	Enquiry      *EnquiryRepository
	Quote        *QuoteRepository
	Project      *ProjectRepository
	Item         *ProjectItemRepository
	Drawing      *DrawingRepository
	Invoice      *InvoiceRepository
	Notification *NotificationRepository
	Log          *TransitionLogRepository
	Snag         *SnagRepository
	User         *UserRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		Enquiry:      NewEnquiryRepository(db),
		Quote:        NewQuoteRepository(db),
		Project:      NewProjectRepository(db),
		Item:         NewProjectItemRepository(db),
		Drawing:      NewDrawingRepository(db),
		Invoice:      NewInvoiceRepository(db),
		Notification: NewNotificationRepository(db),
		Log:          NewTransitionLogRepository(db),
		Snag:         NewSnagRepository(db),
		User:         NewUserRepository(db),
	}
}

// DB returns the handle the repositories were built on.
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

// Transaction runs fn with repositories bound to one database transaction.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// IsDuplicateKey reports a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// nextCode builds PREFIX-YYYY-NNNN from the number of codes already issued this year.
func nextCode(ctx context.Context, db *gorm.DB, model interface{}, column, prefix string) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, time.Now().Year())
	var count int64
	if err := db.WithContext(ctx).Model(model).
		Where(column+" LIKE ?", yearPrefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", yearPrefix, count+1), nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
