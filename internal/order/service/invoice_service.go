package service

import (
	"context"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/bitfantasy/joinery/internal/order/sse"
	"go.uber.org/zap"
)

// InvoiceService records deposit payments and opens design on gated projects.
type InvoiceService struct {
	repos    *repository.Repositories
	hub      *sse.Hub
	dispatch dispatcher
	logger   *zap.Logger
}

func NewInvoiceService(repos *repository.Repositories, notifier Notifier, hub *sse.Hub, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("invoice")
	return &InvoiceService{
		repos:    repos,
		hub:      hub,
		dispatch: dispatcher{notifier: notifier, users: repos.User, logger: logger},
		logger:   logger,
	}
}

func (s *InvoiceService) Get(ctx context.Context, id string) (*entity.Invoice, error) {
	return s.repos.Invoice.FindByID(ctx, id)
}

// PaymentResult is a recorded payment and what it did to the project.
type PaymentResult struct {
	Invoice      *entity.Invoice
	Project      *entity.Project
	DesignOpened bool
}

// MarkPaid records the payment. Paying the deposit of a project that awaits it
// moves the project to design_pending and tells the design team.
func (s *InvoiceService) MarkPaid(ctx context.Context, invoiceID, actorID string) (*PaymentResult, error) {
	res := &PaymentResult{}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		invoice, err := tx.Invoice.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !invoice.Status.CanTransitionTo(entity.InvoiceStatusPaid) {
			return entity.NewTransitionError("invoice", invoice.Status, entity.InvoiceStatusPaid, "")
		}
		n, err := tx.Invoice.MarkPaid(ctx, invoice.ID, []entity.InvoiceStatus{invoice.Status}, actorID, time.Now())
		if err != nil {
			return err
		}
		if n == 0 {
			current, err := tx.Invoice.FindByID(ctx, invoice.ID)
			if err != nil {
				return err
			}
			return &ConflictError{Entity: "invoice", ID: invoice.ID, Expected: string(invoice.Status), Actual: string(current.Status)}
		}

		project, err := tx.Project.FindByID(ctx, invoice.ProjectID)
		if err != nil {
			return err
		}
		if invoice.Type == entity.InvoiceTypeDeposit && project.Status == entity.ProjectStatusAwaitingDeposit {
			n, err := tx.Project.UpdateStatus(ctx, project.ID,
				[]entity.ProjectStatus{entity.ProjectStatusAwaitingDeposit}, entity.ProjectStatusDesignPending)
			if err != nil {
				return err
			}
			if n == 0 {
				return projectConflict(ctx, tx, project.ID, entity.ProjectStatusAwaitingDeposit)
			}
			if _, _, err := rollUpProject(ctx, tx, project.ID); err != nil {
				return err
			}
			res.DesignOpened = true
		}

		if res.Invoice, err = tx.Invoice.FindByID(ctx, invoice.ID); err != nil {
			return err
		}
		res.Project, err = tx.Project.FindByID(ctx, project.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice paid",
		zap.String("invoice_id", res.Invoice.ID),
		zap.String("project_id", res.Project.ID),
		zap.Bool("design_opened", res.DesignOpened),
		zap.String("operator_id", actorID))
	if res.DesignOpened {
		if s.hub != nil {
			s.hub.PublishProjectUpdate(res.Project.ID, "status_changed")
		}
		s.dispatch.notifyRoles(ctx, NotificationEvent{
			Type:       entity.NotificationDepositPaid,
			Title:      "Deposit paid, design can start: " + res.Project.Name,
			EntityType: "project",
			EntityID:   res.Project.ID,
			LinkURL:    "/projects/" + res.Project.ID,
		}, entity.RoleDesignTeam, entity.RoleDesignLead)
	}
	return res, nil
}
