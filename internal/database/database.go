package database

import (
	"fmt"
	"time"

	"github.com/bitfantasy/joinery/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres and applies the pool settings.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         NewGormLogger(log, cfg.LogLevel),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

// NewGormLogger routes SQL logging through zap at the configured level.
func NewGormLogger(log *zap.Logger, level string) logger.Interface {
	if log == nil {
		return logger.Discard
	}
	return logger.New(zapWriter{log.Named("gorm").Sugar()}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  ParseLogLevel(level),
		IgnoreRecordNotFoundError: true,
	})
}

// ParseLogLevel maps a config string to a gorm log level. Unknown values mean warn.
func ParseLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Infof(format, args...)
}
