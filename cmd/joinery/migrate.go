package main

import (
	"fmt"

	"github.com/bitfantasy/joinery/internal/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase("up", database.Migrate)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rollback",
		Short: "Roll back the last applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase("rollback", database.RollbackLast)
		},
	})
	return cmd
}

func withDatabase(name string, fn func(*gorm.DB) error) error {
	cfg, zapLogger, err := bootstrap()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	db, err := database.Open(cfg.Database, zapLogger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := fn(db); err != nil {
		return fmt.Errorf("migrate %s: %w", name, err)
	}
	zapLogger.Info("Migration finished", zap.String("command", name), zap.String("database", cfg.Database.DBName))
	return nil
}
