package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"gorm.io/gorm"
)

// ProjectRepository 项目仓库
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*entity.Project, error) {
	var project entity.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, notFound(err)
	}
	return &project, nil
}

// FindByQuoteID returns the project converted from a quote, if any.
func (r *ProjectRepository) FindByQuoteID(ctx context.Context, quoteID string) (*entity.Project, error) {
	var project entity.Project
	if err := r.db.WithContext(ctx).Where("quote_id = ?", quoteID).First(&project).Error; err != nil {
		return nil, notFound(err)
	}
	return &project, nil
}

// ErrQuoteTaken means another project already holds the quote.
var ErrQuoteTaken = errors.New("quote already has a project")

const createProjectSavepoint = "create_project"

// Create inserts a project and must run inside a transaction. On a unique
// violation it rolls back to a savepoint and checks the quote again:
// ErrQuoteTaken only when the quote now has a project, otherwise the
// original error.
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	db := r.db.WithContext(ctx)
	if err := db.SavePoint(createProjectSavepoint).Error; err != nil {
		return err
	}
	err := db.Omit("Items").Create(project).Error
	if err == nil || !IsDuplicateKey(err) {
		return err
	}
	if rbErr := db.RollbackTo(createProjectSavepoint).Error; rbErr != nil {
		return err
	}
	if _, findErr := r.FindByQuoteID(ctx, project.QuoteID); findErr == nil {
		return ErrQuoteTaken
	}
	return err
}

// UpdateFields writes arbitrary columns without a status guard.
func (r *ProjectRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&entity.Project{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateStatus moves the project to status when it is currently in one of from.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, from []entity.ProjectStatus, to entity.ProjectStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Project{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *ProjectRepository) GenerateCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.Project{}, "code", "PRJ")
}
