package repository

import (
	"context"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"gorm.io/gorm"
)

// ProjectItemRepository 项目条目仓库
type ProjectItemRepository struct {
	db *gorm.DB
}

func NewProjectItemRepository(db *gorm.DB) *ProjectItemRepository {
	return &ProjectItemRepository{db: db}
}

func (r *ProjectItemRepository) FindByID(ctx context.Context, id string) (*entity.ProjectItem, error) {
	var item entity.ProjectItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// CreateBatch inserts items in one statement.
func (r *ProjectItemRepository) CreateBatch(ctx context.Context, items []entity.ProjectItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *ProjectItemRepository) ListByProject(ctx context.Context, projectID string) ([]entity.ProjectItem, error) {
	var items []entity.ProjectItem
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("sort_order ASC, item_code ASC").
		Find(&items).Error
	return items, err
}

// ListStatuses returns the status of every item in a project.
func (r *ProjectItemRepository) ListStatuses(ctx context.Context, projectID string) ([]entity.ItemStatus, error) {
	var statuses []entity.ItemStatus
	err := r.db.WithContext(ctx).Model(&entity.ProjectItem{}).
		Where("project_id = ?", projectID).
		Pluck("status", &statuses).Error
	return statuses, err
}

// ApplyChange writes updates only if the item is still in status from.
func (r *ProjectItemRepository) ApplyChange(ctx context.Context, id string, from []entity.ItemStatus, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.ProjectItem{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// CountInStatuses counts a project's items currently in any of statuses.
func (r *ProjectItemRepository) CountInStatuses(ctx context.Context, projectID string, statuses []entity.ItemStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ProjectItem{}).
		Where("project_id = ? AND status IN ?", projectID, statuses).
		Count(&count).Error
	return count, err
}
