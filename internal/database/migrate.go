package database

import (
	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Models lists every table of the fulfillment schema.
func Models() []interface{} {
	return []interface{}{
		&entity.User{},
		&entity.Enquiry{},
		&entity.Quote{},
		&entity.QuoteItem{},
		&entity.Project{},
		&entity.ProjectItem{},
		&entity.DrawingRequirement{},
		&entity.DrawingRequirementItem{},
		&entity.Invoice{},
		&entity.Notification{},
		&entity.ItemTransitionLog{},
		&entity.Snag{},
	}
}

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202610150001_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(Models()...)
			},
			Rollback: func(tx *gorm.DB) error {
				models := Models()
				for i := len(models) - 1; i >= 0; i-- {
					if err := tx.Migrator().DropTable(models[i]); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			// items created before the vocabulary was settled used pending_design
			ID: "202610150002_normalize_pending_design",
			Migrate: func(tx *gorm.DB) error {
				return tx.Model(&entity.ProjectItem{}).
					Where("status = ?", entity.ItemStatusPendingDesign).
					Update("status", entity.ItemStatusAwaitingDrawings).Error
			},
		},
	}
}

// Migrate applies pending migrations in order.
func Migrate(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations()).Migrate()
}

// RollbackLast undoes the most recent migration.
func RollbackLast(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations()).RollbackLast()
}
