package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/bitfantasy/joinery/internal/order/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DrawingService groups items into drawing requirements and drives their status.
type DrawingService struct {
	repos    *repository.Repositories
	release  *ReleaseService
	hub      *sse.Hub
	dispatch dispatcher
	logger   *zap.Logger
}

func NewDrawingService(repos *repository.Repositories, release *ReleaseService, notifier Notifier, hub *sse.Hub, logger *zap.Logger) *DrawingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("drawing")
	return &DrawingService{
		repos:    repos,
		release:  release,
		hub:      hub,
		dispatch: dispatcher{notifier: notifier, users: repos.User, logger: logger},
		logger:   logger,
	}
}

func (s *DrawingService) Get(ctx context.Context, id string) (*entity.DrawingRequirement, error) {
	return s.repos.Drawing.FindByID(ctx, id)
}

func (s *DrawingService) ListByProject(ctx context.Context, projectID string) ([]entity.DrawingRequirement, error) {
	return s.repos.Drawing.ListByProject(ctx, projectID)
}

// GenerateDrawingRequirements creates one queued, unassigned requirement per
// item. Items that already have a requirement are skipped, so re-running is safe.
// Pass the transaction's repositories when called inside one.
func GenerateDrawingRequirements(ctx context.Context, repos *repository.Repositories, projectID string, items []entity.ProjectItem) ([]entity.DrawingRequirement, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	linked, err := repos.Drawing.LinkedItemSet(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load existing drawing links: %w", err)
	}
	seq, err := repos.Drawing.CountByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("count drawing requirements: %w", err)
	}

	var created []entity.DrawingRequirement
	now := time.Now()
	for _, item := range items {
		if item.ProjectID != projectID {
			return nil, entity.InvalidInput("item %s belongs to project %s, not %s", item.ID, item.ProjectID, projectID)
		}
		if linked[item.ID] {
			continue
		}
		seq++
		id := uuid.New().String()
		drawing := entity.DrawingRequirement{
			ID:        id,
			ProjectID: projectID,
			Code:      fmt.Sprintf("DR-%03d", seq),
			Title:     entity.DrawingTitle(item),
			Status:    entity.DrawingStatusQueued,
			CreatedAt: now,
			UpdatedAt: now,
			Items: []entity.DrawingRequirementItem{{
				ID:                   uuid.New().String(),
				DrawingRequirementID: id,
				ProjectItemID:        item.ID,
				CreatedAt:            now,
			}},
		}
		if err := repos.Drawing.Create(ctx, &drawing); err != nil {
			return nil, fmt.Errorf("create drawing requirement for item %s: %w", item.ItemCode, err)
		}
		linked[item.ID] = true
		created = append(created, drawing)
	}
	return created, nil
}

// DrawingUpdate is the outcome of a drawing status change.
type DrawingUpdate struct {
	Drawing       *entity.DrawingRequirement
	Released      bool
	RolledForward bool
	ReleaseErr    error
}

// UpdateStatus moves a requirement along its adjacency table. Sending it to
// production needs a design lead and an active project, and releases its
// items afterwards; a failed
// release is reported in the result but keeps the drawing's new status.
func (s *DrawingService) UpdateStatus(ctx context.Context, drawingID string, to entity.DrawingStatus, actor Actor) (*DrawingUpdate, error) {
	if !to.Valid() {
		return nil, entity.InvalidInput("unknown drawing status %q", to)
	}
	if to == entity.DrawingStatusSentToProduction && !actor.HasRole(entity.RoleDesignLead) {
		return nil, fmt.Errorf("%w: only a design lead can send drawings to production", ErrForbidden)
	}

	drawing, err := s.repos.Drawing.FindByID(ctx, drawingID)
	if err != nil {
		return nil, err
	}
	if !drawing.Status.CanTransitionTo(to) {
		return nil, entity.NewTransitionError("drawing", drawing.Status, to, "")
	}
	if to == entity.DrawingStatusSentToProduction {
		project, err := s.repos.Project.FindByID(ctx, drawing.ProjectID)
		if err != nil {
			return nil, err
		}
		if !project.Status.Active() {
			return nil, entity.InvalidInput("project %s is %s, its drawings cannot go to production", project.Code, project.Status)
		}
	}

	extra := map[string]interface{}{}
	if to == entity.DrawingStatusSentToProduction {
		extra["released_at"] = time.Now()
		extra["released_by"] = actor.ID
	}
	n, err := s.repos.Drawing.UpdateStatus(ctx, drawing.ID, drawing.Status, to, extra)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		current, err := s.repos.Drawing.FindByID(ctx, drawing.ID)
		if err != nil {
			return nil, err
		}
		return nil, &ConflictError{Entity: "drawing", ID: drawing.ID, Expected: string(drawing.Status), Actual: string(current.Status)}
	}

	s.logger.Info("drawing status changed",
		zap.String("drawing_id", drawing.ID),
		zap.String("from", string(drawing.Status)),
		zap.String("to", string(to)),
		zap.String("operator_id", actor.ID))

	result := &DrawingUpdate{}
	switch to {
	case entity.DrawingStatusWaitingClientApproval:
		s.dispatch.notifyRoles(ctx, NotificationEvent{
			Type:       entity.NotificationDrawingForReview,
			Title:      "Drawing awaiting client approval: " + drawing.Title,
			EntityType: "drawing_requirement",
			EntityID:   drawing.ID,
			LinkURL:    drawingLink(drawing),
		}, entity.RoleDesignLead)
	case entity.DrawingStatusSentToProduction:
		result.Released = true
		rolled, err := s.release.ReleaseDrawingToProduction(ctx, drawing.ID, drawing.ProjectID, actor.ID)
		if err != nil {
			s.logger.Error("release to production failed, items need manual reconciliation",
				zap.String("drawing_id", drawing.ID),
				zap.String("project_id", drawing.ProjectID),
				zap.Error(err))
			result.Released = false
			result.ReleaseErr = &ReleaseError{DrawingID: drawing.ID, Err: err}
		}
		result.RolledForward = rolled
	}

	result.Drawing, err = s.repos.Drawing.FindByID(ctx, drawing.ID)
	if err != nil {
		return nil, err
	}
	if s.hub != nil {
		s.hub.PublishProjectUpdate(drawing.ProjectID, "drawing_"+string(to))
	}
	return result, nil
}

// Assign sets the designer and tells them. Every call notifies again.
func (s *DrawingService) Assign(ctx context.Context, drawingID, designerID, actorID string) (*entity.DrawingRequirement, error) {
	if designerID == "" {
		return nil, entity.InvalidInput("designer_id is required")
	}
	drawing, err := s.repos.Drawing.FindByID(ctx, drawingID)
	if err != nil {
		return nil, err
	}
	if drawing.Status == entity.DrawingStatusSentToProduction || drawing.Status == entity.DrawingStatusCancelled {
		return nil, entity.InvalidInput("drawing %s is %s and cannot be reassigned", drawing.Code, drawing.Status)
	}
	if _, err := s.repos.User.FindByID(ctx, designerID); err != nil {
		if err == repository.ErrNotFound {
			return nil, entity.InvalidInput("designer %s does not exist", designerID)
		}
		return nil, err
	}
	if err := s.repos.Drawing.Assign(ctx, drawing.ID, designerID); err != nil {
		return nil, err
	}

	s.logger.Info("drawing assigned",
		zap.String("drawing_id", drawing.ID),
		zap.String("designer_id", designerID),
		zap.String("operator_id", actorID))
	s.dispatch.notify(ctx, []string{designerID}, NotificationEvent{
		Type:       entity.NotificationDrawingAssigned,
		Title:      "Drawing assigned to you: " + drawing.Title,
		EntityType: "drawing_requirement",
		EntityID:   drawing.ID,
		LinkURL:    drawingLink(drawing),
	})
	return s.repos.Drawing.FindByID(ctx, drawing.ID)
}

func drawingLink(d *entity.DrawingRequirement) string {
	return "/projects/" + d.ProjectID + "/drawings/" + d.ID
}
