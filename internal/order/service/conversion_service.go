package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/bitfantasy/joinery/internal/order/sse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultDepositRate is the deposit share of the contract value.
var DefaultDepositRate = decimal.NewFromFloat(0.30)

// SignatureStatusCompleted is the only envelope status that converts a quote.
const SignatureStatusCompleted = "completed"

// Deduper drops repeated webhook deliveries before they reach the database.
type Deduper interface {
	FirstSeen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

// Archiver keeps raw webhook payloads for audit.
type Archiver interface {
	Archive(ctx context.Context, name string, payload []byte) error
}

// ConvertInput carries the fields the client supplies on conversion.
type ConvertInput struct {
	ProjectName string
	SiteAddress string
	ActorID     string
}

// SignatureCompletion is an envelope-completed event from the e-signature provider.
type SignatureCompletion struct {
	EnvelopeID  string `json:"envelope_id"`
	QuoteID     string `json:"quote_id"`
	Status      string `json:"status"`
	ProjectName string `json:"project_name"`
	SiteAddress string `json:"site_address"`
}

// SignatureResult is how a webhook delivery was handled.
type SignatureResult struct {
	Project   *entity.Project
	Invoice   *entity.Invoice
	Duplicate bool
	Ignored   bool
}

type conversionPath int

const (
	pathDirect conversionPath = iota
	pathSignature
)

// ConversionService turns an accepted quote into a project.
type ConversionService struct {
	repos       *repository.Repositories
	hub         *sse.Hub
	dispatch    dispatcher
	depositRate decimal.Decimal
	deduper     Deduper
	archiver    Archiver
	logger      *zap.Logger
}

func NewConversionService(repos *repository.Repositories, notifier Notifier, hub *sse.Hub, depositRate decimal.Decimal, logger *zap.Logger) *ConversionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !depositRate.IsPositive() {
		depositRate = DefaultDepositRate
	}
	logger = logger.Named("conversion")
	return &ConversionService{
		repos:       repos,
		hub:         hub,
		dispatch:    dispatcher{notifier: notifier, users: repos.User, logger: logger},
		depositRate: depositRate,
		logger:      logger,
	}
}

// SetDeduper enables early dropping of repeated signature deliveries.
func (s *ConversionService) SetDeduper(d Deduper) {
	s.deduper = d
}

// SetArchiver enables archiving of raw signature payloads.
func (s *ConversionService) SetArchiver(a Archiver) {
	s.archiver = a
}

// ConvertQuote converts an approved quote. Either every record is created
// or none is; a quote converts at most once.
func (s *ConversionService) ConvertQuote(ctx context.Context, quoteID string, in ConvertInput) (*entity.Project, *entity.Invoice, error) {
	in.ProjectName = strings.TrimSpace(in.ProjectName)
	if in.ProjectName == "" {
		return nil, nil, entity.InvalidInput("project_name is required")
	}
	project, invoice, err := s.convert(ctx, quoteID, in, pathDirect)
	if err != nil {
		return nil, nil, err
	}

	s.dispatch.notifyRoles(ctx, NotificationEvent{
		Type:       entity.NotificationDrawingsCreated,
		Title:      fmt.Sprintf("New project %s: %d drawings to produce", project.Code, len(project.Items)),
		EntityType: "project",
		EntityID:   project.ID,
		LinkURL:    "/projects/" + project.ID,
	}, entity.RoleDesignTeam, entity.RoleDesignLead)
	return project, invoice, nil
}

// ConvertFromSignature converts the quote named by a completed envelope.
// The project waits for the deposit before design starts. Repeated
// deliveries report Duplicate instead of failing.
func (s *ConversionService) ConvertFromSignature(ctx context.Context, ev SignatureCompletion, raw []byte) (*SignatureResult, error) {
	if ev.EnvelopeID == "" || ev.QuoteID == "" {
		return nil, entity.InvalidInput("envelope_id and quote_id are required")
	}
	log := s.logger.With(zap.String("envelope_id", ev.EnvelopeID), zap.String("quote_id", ev.QuoteID))

	if s.archiver != nil && len(raw) > 0 {
		if err := s.archiver.Archive(ctx, ev.EnvelopeID+".json", raw); err != nil {
			log.Warn("archive signature payload failed", zap.Error(err))
		}
	}
	if ev.Status != SignatureStatusCompleted {
		log.Info("signature event ignored", zap.String("status", ev.Status))
		return &SignatureResult{Ignored: true}, nil
	}

	if s.deduper != nil {
		first, err := s.deduper.FirstSeen(ctx, ev.EnvelopeID)
		if err != nil {
			log.Warn("signature dedup unavailable, relying on database", zap.Error(err))
		} else if !first {
			log.Info("duplicate signature delivery dropped")
			return &SignatureResult{Duplicate: true}, nil
		}
	}

	in := ConvertInput{
		ProjectName: strings.TrimSpace(ev.ProjectName),
		SiteAddress: ev.SiteAddress,
		ActorID:     "system",
	}
	project, invoice, err := s.convert(ctx, ev.QuoteID, in, pathSignature)
	if errors.Is(err, ErrAlreadyConverted) {
		log.Info("signature delivery for converted quote acknowledged")
		return &SignatureResult{Duplicate: true}, nil
	}
	if err != nil {
		if s.deduper != nil {
			if ferr := s.deduper.Forget(ctx, ev.EnvelopeID); ferr != nil {
				log.Warn("release signature dedup key failed", zap.Error(ferr))
			}
		}
		return nil, err
	}
	return &SignatureResult{Project: project, Invoice: invoice}, nil
}

func (s *ConversionService) convert(ctx context.Context, quoteID string, in ConvertInput, path conversionPath) (*entity.Project, *entity.Invoice, error) {
	var (
		project *entity.Project
		invoice *entity.Invoice
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		quote, err := tx.Quote.FindByID(ctx, quoteID)
		if err != nil {
			return stepError(quoteID, StepLoadQuote, err)
		}
		if err := s.checkConvertible(ctx, tx, quote, path); err != nil {
			return stepError(quoteID, StepLoadQuote, err)
		}

		project, err = s.createProject(ctx, tx, quote, in, path)
		if err != nil {
			return stepError(quoteID, StepCreateProject, err)
		}
		if project.Items, err = createItems(ctx, tx, project, quote.Items); err != nil {
			return stepError(quoteID, StepCreateItems, err)
		}
		if invoice, err = s.createDeposit(ctx, tx, project); err != nil {
			return stepError(quoteID, StepCreateInvoice, err)
		}
		if err := markConverted(ctx, tx, quote); err != nil {
			return stepError(quoteID, StepConvertQuote, err)
		}
		if quote.EnquiryID != nil && *quote.EnquiryID != "" {
			if _, err := tx.Enquiry.UpdateStatus(ctx, *quote.EnquiryID,
				[]entity.EnquiryStatus{entity.EnquiryStatusNew, entity.EnquiryStatusReviewing, entity.EnquiryStatusQuoted},
				entity.EnquiryStatusWon, nil); err != nil {
				return stepError(quoteID, StepUpdateEnquiry, err)
			}
		}
		if _, err := GenerateDrawingRequirements(ctx, tx, project.ID, project.Items); err != nil {
			return stepError(quoteID, StepGroupDrawings, err)
		}
		return nil
	})
	if err != nil {
		var ce *ConversionError
		if errors.As(err, &ce) && !errors.Is(err, ErrAlreadyConverted) && !errors.Is(err, ErrValidation) && !errors.Is(err, ErrNotFound) {
			s.logger.Error("quote conversion rolled back",
				zap.String("quote_id", quoteID),
				zap.String("step", ce.Step),
				zap.Error(ce.Err))
		}
		return nil, nil, err
	}

	s.logger.Info("quote converted",
		zap.String("quote_id", quoteID),
		zap.String("project_id", project.ID),
		zap.String("project_status", string(project.Status)),
		zap.Int("items", len(project.Items)),
		zap.String("deposit", invoice.Amount.StringFixed(2)))
	if s.hub != nil {
		s.hub.PublishProjectUpdate(project.ID, "created")
	}
	return project, invoice, nil
}

func (s *ConversionService) checkConvertible(ctx context.Context, tx *repository.Repositories, quote *entity.Quote, path conversionPath) error {
	if quote.Status == entity.QuoteStatusConverted {
		return ErrAlreadyConverted
	}
	existing, err := tx.Project.FindByQuoteID(ctx, quote.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrAlreadyConverted
	}

	switch path {
	case pathDirect:
		if quote.Status != entity.QuoteStatusApproved {
			return entity.InvalidInput("quote %s is %s, only approved quotes can be converted", quote.Code, quote.Status)
		}
	case pathSignature:
		if quote.Status != entity.QuoteStatusApproved && quote.Status != entity.QuoteStatusSent {
			return entity.InvalidInput("quote %s is %s and cannot be converted by signature", quote.Code, quote.Status)
		}
	}
	return nil
}

func (s *ConversionService) createProject(ctx context.Context, tx *repository.Repositories, quote *entity.Quote, in ConvertInput, path conversionPath) (*entity.Project, error) {
	code, err := tx.Project.GenerateCode(ctx)
	if err != nil {
		return nil, err
	}
	name := in.ProjectName
	if name == "" {
		name = strings.TrimSpace(quote.ClientName + " " + quote.Code)
	}
	status := entity.ProjectStatusDesignPending
	if path == pathSignature {
		status = entity.ProjectStatusAwaitingDeposit
	}
	invoiceID := uuid.New().String()
	project := &entity.Project{
		ID:               uuid.New().String(),
		Code:             code,
		Name:             name,
		SiteAddress:      in.SiteAddress,
		ClientName:       quote.ClientName,
		Status:           status,
		ContractValue:    quote.Total,
		QuoteID:          quote.ID,
		DepositInvoiceID: &invoiceID,
		CreatedBy:        in.ActorID,
	}
	if err := tx.Project.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrQuoteTaken) {
			return nil, ErrAlreadyConverted
		}
		return nil, err
	}
	return project, nil
}

func createItems(ctx context.Context, tx *repository.Repositories, project *entity.Project, lines []entity.QuoteItem) ([]entity.ProjectItem, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	items := make([]entity.ProjectItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, entity.ProjectItem{
			ID:          uuid.New().String(),
			ProjectID:   project.ID,
			QuoteItemID: line.ID,
			ItemCode:    line.Code,
			Description: line.Description,
			Floor:       line.Floor,
			Room:        line.Room,
			ItemType:    line.ItemType,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Status:      entity.ItemStatusAwaitingDrawings,
			SortOrder:   i + 1,
		})
	}
	if err := tx.Item.CreateBatch(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ConversionService) createDeposit(ctx context.Context, tx *repository.Repositories, project *entity.Project) (*entity.Invoice, error) {
	number, err := tx.Invoice.GenerateNumber(ctx)
	if err != nil {
		return nil, err
	}
	invoice := &entity.Invoice{
		ID:        *project.DepositInvoiceID,
		Number:    number,
		ProjectID: project.ID,
		Type:      entity.InvoiceTypeDeposit,
		Rate:      s.depositRate,
		Amount:    entity.DepositAmount(project.ContractValue, s.depositRate),
		Status:    entity.InvoiceStatusDraft,
	}
	if err := tx.Invoice.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// markConverted is guarded by the status the quote was read with.
func markConverted(ctx context.Context, tx *repository.Repositories, quote *entity.Quote) error {
	n, err := tx.Quote.UpdateStatus(ctx, quote.ID, []entity.QuoteStatus{quote.Status}, entity.QuoteStatusConverted,
		map[string]interface{}{"converted_at": time.Now()})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	current, err := tx.Quote.FindByID(ctx, quote.ID)
	if err != nil {
		return err
	}
	if current.Status == entity.QuoteStatusConverted {
		return ErrAlreadyConverted
	}
	return &ConflictError{Entity: "quote", ID: quote.ID, Expected: string(quote.Status), Actual: string(current.Status)}
}
