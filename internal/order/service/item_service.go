package service

import (
	"context"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/bitfantasy/joinery/internal/order/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ItemService applies item transitions: plain advances and QC actions.
type ItemService struct {
	repos    *repository.Repositories
	hub      *sse.Hub
	dispatch dispatcher
	logger   *zap.Logger
	now      func() time.Time
}

func NewItemService(repos *repository.Repositories, notifier Notifier, hub *sse.Hub, logger *zap.Logger) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("item")
	return &ItemService{
		repos:    repos,
		hub:      hub,
		dispatch: dispatcher{notifier: notifier, users: repos.User, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

// TransitionResult is an applied item transition.
type TransitionResult struct {
	Item           *entity.ProjectItem
	From           entity.ItemStatus
	ProjectStatus  entity.ProjectStatus
	ProjectChanged bool
	Snag           *entity.Snag
}

func (s *ItemService) Get(ctx context.Context, id string) (*entity.ProjectItem, error) {
	return s.repos.Item.FindByID(ctx, id)
}

// ListByProject returns a project's items in quote order.
func (s *ItemService) ListByProject(ctx context.Context, projectID string) ([]entity.ProjectItem, error) {
	if _, err := s.repos.Project.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repos.Item.ListByProject(ctx, projectID)
}

// History returns the item's transition log.
func (s *ItemService) History(ctx context.Context, id string) ([]entity.ItemTransitionLog, error) {
	if _, err := s.repos.Item.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.Log.ListByItem(ctx, id)
}

// Advance moves an item to the immediate successor of its current status.
func (s *ItemService) Advance(ctx context.Context, itemID string, requested entity.ItemStatus, actorID string) (*TransitionResult, error) {
	now := s.now()
	return s.apply(ctx, itemID, actorID, func(item *entity.ProjectItem) (*entity.ItemChange, error) {
		return entity.PlanAdvance(item, requested, actorID, now)
	}, nil)
}

// PassQC records a passed workshop or site inspection.
func (s *ItemService) PassQC(ctx context.Context, itemID string, qcType entity.QCType, notes, actorID string) (*TransitionResult, error) {
	now := s.now()
	return s.apply(ctx, itemID, actorID, func(item *entity.ProjectItem) (*entity.ItemChange, error) {
		return entity.PlanPassQC(item, qcType, notes, now)
	}, nil)
}

// FailQC records a failed inspection with its reason. A failed site
// inspection can raise a snag against the item.
func (s *ItemService) FailQC(ctx context.Context, itemID string, qcType entity.QCType, reason, actorID string, raiseSnag bool) (*TransitionResult, error) {
	now := s.now()
	var after func(context.Context, *repository.Repositories, *entity.ProjectItem, *TransitionResult) error
	if raiseSnag && qcType == entity.QCTypeSite {
		after = func(ctx context.Context, tx *repository.Repositories, item *entity.ProjectItem, res *TransitionResult) error {
			snag := &entity.Snag{
				ID:            uuid.New().String(),
				ProjectID:     item.ProjectID,
				ProjectItemID: item.ID,
				Description:   reason,
				Status:        entity.SnagStatusOpen,
				RaisedBy:      actorID,
			}
			if err := tx.Snag.Create(ctx, snag); err != nil {
				return err
			}
			res.Snag = snag
			return nil
		}
	}

	res, err := s.apply(ctx, itemID, actorID, func(item *entity.ProjectItem) (*entity.ItemChange, error) {
		return entity.PlanFailQC(item, qcType, reason, now)
	}, after)
	if err != nil {
		return nil, err
	}

	if qcType == entity.QCTypeWorkshop {
		s.dispatch.notifyRoles(ctx, NotificationEvent{
			Type:       entity.NotificationItemQCFailed,
			Title:      "Workshop QC failed: " + res.Item.ItemCode,
			Body:       reason,
			EntityType: "project_item",
			EntityID:   res.Item.ID,
			LinkURL:    "/projects/" + res.Item.ProjectID + "/items/" + res.Item.ID,
		}, entity.RoleProduction)
	}
	return res, nil
}

type planFunc func(item *entity.ProjectItem) (*entity.ItemChange, error)

// apply re-reads the item, plans the change and writes it guarded by the
// status it was planned from, all in one transaction.
func (s *ItemService) apply(ctx context.Context, itemID, actorID string, plan planFunc,
	after func(context.Context, *repository.Repositories, *entity.ProjectItem, *TransitionResult) error) (*TransitionResult, error) {
	res := &TransitionResult{}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		item, err := tx.Item.FindByID(ctx, itemID)
		if err != nil {
			return err
		}
		project, err := tx.Project.FindByID(ctx, item.ProjectID)
		if err != nil {
			return err
		}
		if !project.Status.Active() {
			return entity.InvalidInput("project %s is %s, its items cannot move", project.Code, project.Status)
		}

		change, err := plan(item)
		if err != nil {
			return err
		}

		n, err := tx.Item.ApplyChange(ctx, item.ID, storedStatuses(change.From), change.Updates)
		if err != nil {
			return err
		}
		if n == 0 {
			return itemConflict(ctx, tx, item.ID, change.From)
		}

		if err := logTransition(ctx, tx, item, change, actorID); err != nil {
			return err
		}
		res.From = change.From
		if after != nil {
			if err := after(ctx, tx, item, res); err != nil {
				return err
			}
		}

		res.ProjectStatus, res.ProjectChanged, err = rollUpProject(ctx, tx, project.ID)
		if err != nil {
			return err
		}
		res.Item, err = tx.Item.FindByID(ctx, item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item transition",
		zap.String("item_id", res.Item.ID),
		zap.String("from", string(res.From)),
		zap.String("to", string(res.Item.Status)),
		zap.String("operator_id", actorID))
	if s.hub != nil {
		s.hub.PublishItemUpdate(res.Item.ProjectID, res.Item.ID, string(res.Item.Status))
		if res.ProjectChanged {
			s.hub.PublishProjectUpdate(res.Item.ProjectID, "status_changed")
		}
	}
	return res, nil
}

// storedStatuses expands a status into the values that may be stored for it.
func storedStatuses(s entity.ItemStatus) []entity.ItemStatus {
	if s == entity.ItemStatusAwaitingDrawings {
		return []entity.ItemStatus{s, entity.ItemStatusPendingDesign}
	}
	return []entity.ItemStatus{s}
}

func itemConflict(ctx context.Context, tx *repository.Repositories, id string, expected entity.ItemStatus) error {
	current, err := tx.Item.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return &ConflictError{Entity: "item", ID: id, Expected: string(expected), Actual: string(current.Status)}
}

func logTransition(ctx context.Context, tx *repository.Repositories, item *entity.ProjectItem, change *entity.ItemChange, operatorID string) error {
	entry := &entity.ItemTransitionLog{
		ID:            uuid.New().String(),
		ProjectID:     item.ProjectID,
		ProjectItemID: item.ID,
		Action:        change.Action,
		FromStatus:    change.From,
		ToStatus:      change.To,
		OperatorID:    operatorID,
		OperatorType:  "user",
		Comment:       change.Comment,
	}
	if operatorID == "" || operatorID == "system" {
		entry.OperatorID = "system"
		entry.OperatorType = "system"
	}
	if change.Action != entity.ItemActionAdvance {
		entry.EventData = datatypes.JSONMap{"item_code": item.ItemCode}
		for _, k := range []string{"workshop_qc_passed", "site_qc_passed"} {
			if v, ok := change.Updates[k]; ok {
				entry.EventData[k] = v
			}
		}
	}
	return tx.Log.Create(ctx, entry)
}
