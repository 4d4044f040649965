package service

import (
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/bitfantasy/joinery/internal/order/sse"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options configures the service set.
type Options struct {
	DepositRate decimal.Decimal
	AppBaseURL  string
	// Notifier overrides the stored in-app notifier, mainly for tests.
	Notifier  Notifier
	Publisher EventPublisher
	Deduper   Deduper
	Archiver  Archiver
}

// Services 订单履约服务集合
type Services struct {
	Notification *NotificationService
	Enquiry      *EnquiryService
	Quote        *QuoteService
	Conversion   *ConversionService
	Project      *ProjectService
	Item         *ItemService
	Drawing      *DrawingService
	Release      *ReleaseService
	Invoice      *InvoiceService
	Export       *ExportService
}

func NewServices(repos *repository.Repositories, hub *sse.Hub, opts Options, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	notification := NewNotificationService(repos.Notification, repos.User, hub, opts.AppBaseURL, logger)
	if opts.Publisher != nil {
		notification.SetPublisher(opts.Publisher)
	}
	var notifier Notifier = notification
	if opts.Notifier != nil {
		notifier = opts.Notifier
	}

	conversion := NewConversionService(repos, notifier, hub, opts.DepositRate, logger)
	if opts.Deduper != nil {
		conversion.SetDeduper(opts.Deduper)
	}
	if opts.Archiver != nil {
		conversion.SetArchiver(opts.Archiver)
	}
	release := NewReleaseService(repos, notifier, hub, logger)

	return &Services{
		Notification: notification,
		Enquiry:      NewEnquiryService(repos, logger),
		Quote:        NewQuoteService(repos, logger),
		Conversion:   conversion,
		Project:      NewProjectService(repos, hub, logger),
		Item:         NewItemService(repos, notifier, hub, logger),
		Drawing:      NewDrawingService(repos, release, notifier, hub, logger),
		Release:      release,
		Invoice:      NewInvoiceService(repos, notifier, hub, logger),
		Export:       NewExportService(repos),
	}
}
