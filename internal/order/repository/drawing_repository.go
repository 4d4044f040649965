package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"gorm.io/gorm"
)

// DrawingRepository 图纸需求仓库
type DrawingRepository struct {
	db *gorm.DB
}

func NewDrawingRepository(db *gorm.DB) *DrawingRepository {
	return &DrawingRepository{db: db}
}

func (r *DrawingRepository) FindByID(ctx context.Context, id string) (*entity.DrawingRequirement, error) {
	var drawing entity.DrawingRequirement
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&drawing).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &drawing, nil
}

// Create stores the requirement together with its item links.
func (r *DrawingRepository) Create(ctx context.Context, drawing *entity.DrawingRequirement) error {
	return r.db.WithContext(ctx).Create(drawing).Error
}

func (r *DrawingRepository) ListByProject(ctx context.Context, projectID string) ([]entity.DrawingRequirement, error) {
	var drawings []entity.DrawingRequirement
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("project_id = ?", projectID).
		Order("code ASC").
		Find(&drawings).Error
	return drawings, err
}

// LinkedItemIDs returns the ids of the items a requirement covers.
func (r *DrawingRepository) LinkedItemIDs(ctx context.Context, drawingID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.DrawingRequirementItem{}).
		Where("drawing_requirement_id = ?", drawingID).
		Order("created_at ASC").
		Pluck("project_item_id", &ids).Error
	return ids, err
}

// LinkedItemSet returns which of itemIDs already belong to a requirement.
func (r *DrawingRepository) LinkedItemSet(ctx context.Context, itemIDs []string) (map[string]bool, error) {
	linked := make(map[string]bool)
	if len(itemIDs) == 0 {
		return linked, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.DrawingRequirementItem{}).
		Where("project_item_id IN ?", itemIDs).
		Pluck("project_item_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		linked[id] = true
	}
	return linked, nil
}

// UpdateStatus is a conditional status write guarded by the current status.
func (r *DrawingRepository) UpdateStatus(ctx context.Context, id string, from, to entity.DrawingStatus, extra map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	result := r.db.WithContext(ctx).Model(&entity.DrawingRequirement{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// Assign sets the designer of a requirement.
func (r *DrawingRepository) Assign(ctx context.Context, id, designerID string) error {
	return r.db.WithContext(ctx).Model(&entity.DrawingRequirement{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"assigned_to": designerID,
			"updated_at":  time.Now(),
		}).Error
}

// CountByProject is used to number new requirements.
func (r *DrawingRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.DrawingRequirement{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}
