package service

import (
	"context"
	"strings"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteService 报价服务
type QuoteService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewQuoteService(repos *repository.Repositories, logger *zap.Logger) *QuoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{repos: repos, logger: logger.Named("quote")}
}

// CreateQuoteInput 创建报价请求
type CreateQuoteInput struct {
	EnquiryID  string                 `json:"enquiry_id"`
	ClientName string                 `json:"client_name" binding:"required"`
	Items      []CreateQuoteItemInput `json:"items" binding:"required,dive"`
}

type CreateQuoteItemInput struct {
	Code        string          `json:"code" binding:"required"`
	Description string          `json:"description"`
	Floor       string          `json:"floor"`
	Room        string          `json:"room"`
	ItemType    string          `json:"item_type"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Create stores a draft quote and moves its enquiry to quoted.
func (s *QuoteService) Create(ctx context.Context, in CreateQuoteInput, actorID string) (*entity.Quote, error) {
	if strings.TrimSpace(in.ClientName) == "" {
		return nil, entity.InvalidInput("client_name is required")
	}
	quoteID := uuid.New().String()
	quote := &entity.Quote{
		ID:             quoteID,
		ClientName:     in.ClientName,
		Status:         entity.QuoteStatusDraft,
		ApprovalStatus: entity.QuoteApprovalNotRequested,
		CreatedBy:      actorID,
	}

	seen := make(map[string]bool, len(in.Items))
	subtotal := decimal.Zero
	for i, line := range in.Items {
		code := strings.TrimSpace(line.Code)
		if code == "" {
			return nil, entity.InvalidInput("item %d: code is required", i+1)
		}
		if seen[code] {
			return nil, entity.InvalidInput("item code %s appears twice", code)
		}
		seen[code] = true
		qty := line.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 || line.UnitPrice.IsNegative() {
			return nil, entity.InvalidInput("item %s: quantity and unit price must not be negative", code)
		}
		item := entity.QuoteItem{
			ID:          uuid.New().String(),
			QuoteID:     quoteID,
			Code:        code,
			Description: line.Description,
			Floor:       line.Floor,
			Room:        line.Room,
			ItemType:    line.ItemType,
			Quantity:    qty,
			UnitPrice:   line.UnitPrice.Round(2),
			SortOrder:   i + 1,
		}
		item.LineTotal = item.CalcLineTotal().Round(2)
		subtotal = subtotal.Add(item.LineTotal)
		quote.Items = append(quote.Items, item)
	}
	quote.Subtotal = subtotal
	quote.Total = subtotal

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if in.EnquiryID != "" {
			enquiry, err := tx.Enquiry.FindByID(ctx, in.EnquiryID)
			if err != nil {
				return err
			}
			if enquiry.Status == entity.EnquiryStatusLost || enquiry.Status == entity.EnquiryStatusWon {
				return entity.InvalidInput("enquiry %s is %s", enquiry.Code, enquiry.Status)
			}
			quote.EnquiryID = &enquiry.ID
			if enquiry.Status != entity.EnquiryStatusQuoted {
				if _, err := tx.Enquiry.UpdateStatus(ctx, enquiry.ID,
					[]entity.EnquiryStatus{entity.EnquiryStatusNew, entity.EnquiryStatusReviewing},
					entity.EnquiryStatusQuoted, nil); err != nil {
					return err
				}
			}
		}
		code, err := tx.Quote.GenerateCode(ctx)
		if err != nil {
			return err
		}
		quote.Code = code
		return tx.Quote.Create(ctx, quote)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("quote created",
		zap.String("quote_id", quote.ID),
		zap.String("code", quote.Code),
		zap.String("total", quote.Total.StringFixed(2)))
	return s.repos.Quote.FindByID(ctx, quote.ID)
}

func (s *QuoteService) Get(ctx context.Context, id string) (*entity.Quote, error) {
	return s.repos.Quote.FindByID(ctx, id)
}

// Transition moves the client-facing status. converted is written only by
// the conversion pipeline. A pending internal approval blocks approved.
func (s *QuoteService) Transition(ctx context.Context, id string, to entity.QuoteStatus, actorID string) (*entity.Quote, error) {
	if !to.Valid() {
		return nil, entity.InvalidInput("unknown quote status %q", to)
	}
	quote, err := s.repos.Quote.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if to == entity.QuoteStatusConverted {
		return nil, entity.NewTransitionError("quote", quote.Status, to, "use the convert operation")
	}
	if !quote.Status.CanTransitionTo(to) {
		return nil, entity.NewTransitionError("quote", quote.Status, to, "")
	}
	if to == entity.QuoteStatusApproved && quote.ApprovalStatus == entity.QuoteApprovalPending {
		return nil, entity.NewTransitionError("quote", quote.Status, to, "internal approval is pending")
	}

	var extra map[string]interface{}
	if to == entity.QuoteStatusApproved {
		extra = map[string]interface{}{"approved_by": actorID, "approved_at": time.Now()}
	}
	n, err := s.repos.Quote.UpdateStatus(ctx, id, []entity.QuoteStatus{quote.Status}, to, extra)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, s.quoteConflict(ctx, id, string(quote.Status))
	}
	s.logger.Info("quote status changed",
		zap.String("quote_id", id),
		zap.String("from", string(quote.Status)),
		zap.String("to", string(to)),
		zap.String("operator_id", actorID))
	return s.repos.Quote.FindByID(ctx, id)
}

// RequestApproval opens the internal approval gate.
func (s *QuoteService) RequestApproval(ctx context.Context, id, actorID string) (*entity.Quote, error) {
	return s.moveApproval(ctx, id, entity.QuoteApprovalPending, actorID)
}

// DecideApproval closes a pending approval with approved or rejected.
func (s *QuoteService) DecideApproval(ctx context.Context, id string, approve bool, actorID string) (*entity.Quote, error) {
	to := entity.QuoteApprovalRejected
	if approve {
		to = entity.QuoteApprovalApproved
	}
	return s.moveApproval(ctx, id, to, actorID)
}

func (s *QuoteService) moveApproval(ctx context.Context, id string, to entity.QuoteApprovalStatus, actorID string) (*entity.Quote, error) {
	quote, err := s.repos.Quote.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Status.Terminal() {
		return nil, entity.InvalidInput("quote %s is %s", quote.Code, quote.Status)
	}
	if !quote.ApprovalStatus.CanTransitionTo(to) {
		return nil, entity.NewTransitionError("quote approval", quote.ApprovalStatus, to, "")
	}
	n, err := s.repos.Quote.UpdateApproval(ctx, id, quote.ApprovalStatus, to, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		current, err := s.repos.Quote.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &ConflictError{Entity: "quote approval", ID: id, Expected: string(quote.ApprovalStatus), Actual: string(current.ApprovalStatus)}
	}
	s.logger.Info("quote approval changed",
		zap.String("quote_id", id),
		zap.String("approval_status", string(to)),
		zap.String("operator_id", actorID))
	return s.repos.Quote.FindByID(ctx, id)
}

func (s *QuoteService) quoteConflict(ctx context.Context, id, expected string) error {
	current, err := s.repos.Quote.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return &ConflictError{Entity: "quote", ID: id, Expected: expected, Actual: string(current.Status)}
}
