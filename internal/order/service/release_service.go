package service

import (
	"context"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/bitfantasy/joinery/internal/order/sse"
	"go.uber.org/zap"
)

// ReleaseService moves the items of a released drawing into production.
type ReleaseService struct {
	repos    *repository.Repositories
	hub      *sse.Hub
	dispatch dispatcher
	logger   *zap.Logger
}

func NewReleaseService(repos *repository.Repositories, notifier Notifier, hub *sse.Hub, logger *zap.Logger) *ReleaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("release")
	return &ReleaseService{
		repos:    repos,
		hub:      hub,
		dispatch: dispatcher{notifier: notifier, users: repos.User, logger: logger},
		logger:   logger,
	}
}

// designPhase lists the project statuses a release may roll forward from.
var designPhase = []entity.ProjectStatus{
	entity.ProjectStatusDesignPending,
	entity.ProjectStatusInDesign,
	entity.ProjectStatusDesignApproved,
}

// ReleaseDrawingToProduction moves every linked item still in a design
// phase to pre_production. Items further along are left alone. When no item
// of the project remains in a design phase the project moves to
// in_production; the return value reports whether that happened.
func (s *ReleaseService) ReleaseDrawingToProduction(ctx context.Context, drawingID, projectID, actorID string) (bool, error) {
	var (
		released []string
		rolled   bool
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		drawing, err := tx.Drawing.FindByID(ctx, drawingID)
		if err != nil {
			return err
		}
		if projectID == "" {
			projectID = drawing.ProjectID
		}
		if drawing.ProjectID != projectID {
			return entity.InvalidInput("drawing %s does not belong to project %s", drawing.Code, projectID)
		}
		if drawing.Status != entity.DrawingStatusSentToProduction {
			return entity.InvalidInput("drawing %s is %s, only drawings sent to production can be released", drawing.Code, drawing.Status)
		}
		project, err := tx.Project.FindByID(ctx, projectID)
		if err != nil {
			return err
		}
		if !project.Status.Active() {
			return entity.InvalidInput("project %s is %s, its items cannot be released", project.Code, project.Status)
		}

		itemIDs, err := tx.Drawing.LinkedItemIDs(ctx, drawing.ID)
		if err != nil {
			return err
		}
		now := time.Now()
		for _, id := range itemIDs {
			item, err := tx.Item.FindByID(ctx, id)
			if err != nil {
				return err
			}
			if !entity.NormalizeItemStatus(item.Status).IsPreRelease() {
				continue
			}
			change := &entity.ItemChange{
				Action:  entity.ItemActionRelease,
				From:    entity.NormalizeItemStatus(item.Status),
				To:      entity.ItemStatusPreProduction,
				Updates: map[string]interface{}{"status": entity.ItemStatusPreProduction, "updated_at": now},
				Comment: "released with drawing " + drawing.Code,
			}
			n, err := tx.Item.ApplyChange(ctx, item.ID, entity.PreReleaseItemStatuses(), change.Updates)
			if err != nil {
				return err
			}
			if n == 0 {
				continue
			}
			if err := logTransition(ctx, tx, item, change, actorID); err != nil {
				return err
			}
			released = append(released, item.ID)
		}

		remaining, err := tx.Item.CountInStatuses(ctx, projectID, entity.PreReleaseItemStatuses())
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}
		n, err := tx.Project.UpdateStatus(ctx, projectID, designPhase, entity.ProjectStatusInProduction)
		if err != nil {
			return err
		}
		rolled = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("drawing released to production",
		zap.String("drawing_id", drawingID),
		zap.String("project_id", projectID),
		zap.Int("items_released", len(released)),
		zap.Bool("project_in_production", rolled))

	if s.hub != nil {
		for _, id := range released {
			s.hub.PublishItemUpdate(projectID, id, string(entity.ItemStatusPreProduction))
		}
		if rolled {
			s.hub.PublishProjectUpdate(projectID, "status_changed")
		}
	}
	s.dispatch.notifyRoles(ctx, NotificationEvent{
		Type:       entity.NotificationDrawingReleased,
		Title:      "Drawing released to production",
		EntityType: "drawing_requirement",
		EntityID:   drawingID,
		LinkURL:    "/projects/" + projectID + "/drawings/" + drawingID,
	}, entity.RoleProduction, entity.RoleDesignLead)
	return rolled, nil
}
