package service

import (
	"context"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/bitfantasy/joinery/internal/order/sse"
	"go.uber.org/zap"
)

// Manual project actions a screen may request.
const (
	ProjectActionHold   = "on_hold"
	ProjectActionCancel = "cancelled"
	ProjectActionResume = "resume"
)

// ProjectService validates manual project requests. Every other project
// status change comes from the roll-up.
type ProjectService struct {
	repos  *repository.Repositories
	hub    *sse.Hub
	logger *zap.Logger
}

func NewProjectService(repos *repository.Repositories, hub *sse.Hub, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{repos: repos, hub: hub, logger: logger.Named("project")}
}

func (s *ProjectService) Get(ctx context.Context, id string) (*entity.Project, error) {
	return s.repos.Project.FindByID(ctx, id)
}

// RequestTransition applies on_hold, cancelled or resume.
func (s *ProjectService) RequestTransition(ctx context.Context, projectID, action, actorID string) (*entity.Project, error) {
	var updated *entity.Project
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		project, err := tx.Project.FindByID(ctx, projectID)
		if err != nil {
			return err
		}

		fields := map[string]interface{}{}
		var to entity.ProjectStatus
		switch action {
		case ProjectActionHold:
			if !project.Status.Active() && project.Status != entity.ProjectStatusAwaitingDeposit {
				return entity.NewTransitionError("project", project.Status, entity.ProjectStatusOnHold, "")
			}
			to = entity.ProjectStatusOnHold
			fields["held_from"] = project.Status
		case ProjectActionCancel:
			if project.Status == entity.ProjectStatusCompleted || project.Status == entity.ProjectStatusCancelled {
				return entity.NewTransitionError("project", project.Status, entity.ProjectStatusCancelled, "")
			}
			to = entity.ProjectStatusCancelled
		case ProjectActionResume:
			if project.Status != entity.ProjectStatusOnHold {
				return entity.NewTransitionError("project", project.Status, "resume", "only a project on hold can resume")
			}
			to = project.HeldFrom
			if !to.Valid() || to == entity.ProjectStatusOnHold || to == entity.ProjectStatusCancelled {
				to = entity.ProjectStatusDesignPending
			}
			fields["held_from"] = ""
		default:
			return entity.InvalidInput("unknown project action %q", action)
		}

		n, err := tx.Project.UpdateStatus(ctx, project.ID, []entity.ProjectStatus{project.Status}, to)
		if err != nil {
			return err
		}
		if n == 0 {
			return projectConflict(ctx, tx, project.ID, project.Status)
		}
		if err := tx.Project.UpdateFields(ctx, project.ID, fields); err != nil {
			return err
		}
		if action == ProjectActionResume {
			if _, _, err := rollUpProject(ctx, tx, project.ID); err != nil {
				return err
			}
		}
		updated, err = tx.Project.FindByID(ctx, project.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project status requested",
		zap.String("project_id", projectID),
		zap.String("action", action),
		zap.String("status", string(updated.Status)),
		zap.String("operator_id", actorID))
	if s.hub != nil {
		s.hub.PublishProjectUpdate(projectID, "status_changed")
	}
	return updated, nil
}

// rollUpProject recomputes a project's status from its items inside tx.
// The write only moves the project forward, so concurrent roll-ups cannot regress it.
func rollUpProject(ctx context.Context, tx *repository.Repositories, projectID string) (entity.ProjectStatus, bool, error) {
	project, err := tx.Project.FindByID(ctx, projectID)
	if err != nil {
		return "", false, err
	}
	statuses, err := tx.Item.ListStatuses(ctx, projectID)
	if err != nil {
		return "", false, err
	}
	derived := entity.DeriveProjectStatus(project.Status, statuses)
	if derived == project.Status {
		return project.Status, false, nil
	}
	n, err := tx.Project.UpdateStatus(ctx, projectID, entity.ProjectStatusesBelow(derived), derived)
	if err != nil {
		return "", false, err
	}
	return derived, n > 0, nil
}

func projectConflict(ctx context.Context, tx *repository.Repositories, id string, expected entity.ProjectStatus) error {
	current, err := tx.Project.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return &ConflictError{Entity: "project", ID: id, Expected: string(expected), Actual: string(current.Status)}
}
