package service

import (
	"context"
	"strings"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EnquiryService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewEnquiryService(repos *repository.Repositories, logger *zap.Logger) *EnquiryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnquiryService{repos: repos, logger: logger.Named("enquiry")}
}

type CreateEnquiryInput struct {
	ClientName      string `json:"client_name" binding:"required"`
	ClientReference string `json:"client_reference"`
}

func (s *EnquiryService) Create(ctx context.Context, in CreateEnquiryInput) (*entity.Enquiry, error) {
	if strings.TrimSpace(in.ClientName) == "" {
		return nil, entity.InvalidInput("client_name is required")
	}
	code, err := s.repos.Enquiry.GenerateCode(ctx)
	if err != nil {
		return nil, err
	}
	enquiry := &entity.Enquiry{
		ID:              uuid.New().String(),
		Code:            code,
		ClientName:      in.ClientName,
		ClientReference: in.ClientReference,
		Status:          entity.EnquiryStatusNew,
	}
	if err := s.repos.Enquiry.Create(ctx, enquiry); err != nil {
		return nil, err
	}
	return enquiry, nil
}

func (s *EnquiryService) Get(ctx context.Context, id string) (*entity.Enquiry, error) {
	return s.repos.Enquiry.FindByID(ctx, id)
}

// MarkLost closes an open enquiry with a reason.
func (s *EnquiryService) MarkLost(ctx context.Context, id, reason, actorID string) (*entity.Enquiry, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, entity.InvalidInput("a reason is required")
	}
	enquiry, err := s.repos.Enquiry.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !enquiry.Status.CanTransitionTo(entity.EnquiryStatusLost) {
		return nil, entity.NewTransitionError("enquiry", enquiry.Status, entity.EnquiryStatusLost, "")
	}
	n, err := s.repos.Enquiry.UpdateStatus(ctx, id, []entity.EnquiryStatus{enquiry.Status}, entity.EnquiryStatusLost,
		map[string]interface{}{"lost_reason": reason})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		current, err := s.repos.Enquiry.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &ConflictError{Entity: "enquiry", ID: id, Expected: string(enquiry.Status), Actual: string(current.Status)}
	}
	s.logger.Info("enquiry lost", zap.String("enquiry_id", id), zap.String("operator_id", actorID))
	return s.repos.Enquiry.FindByID(ctx, id)
}
