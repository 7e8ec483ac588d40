package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/rodify-dispatch/internal/config"
	"github.com/nurpe/rodify-dispatch/internal/repository"
)

// New opens PostgreSQL, applies pool settings, migrates and seeds.
func New(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}

	database, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{
		Logger: gormlogger.New(&log, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.ConnMaxLifetime != "" {
		lifetime, err := time.ParseDuration(cfg.DB.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("parse conn max lifetime: %w", err)
		}
		sqlDB.SetConnMaxLifetime(lifetime)
	}

	if err := runMigrations(database); err != nil {
		return nil, err
	}
	log.Info().Int("statements", len(migrationStatements)).Msg("migrations applied")

	if cfg.DB.Seed {
		if err := seed(database); err != nil {
			return nil, fmt.Errorf("seed database: %w", err)
		}
	}

	return database, nil
}

// NewStore returns the store selected by DB_DRIVER.
func NewStore(cfg *config.Config, log zerolog.Logger) (repository.Store, error) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		store := repository.NewMemoryStore()
		if cfg.DB.Seed {
			if err := SeedMemory(store); err != nil {
				return nil, err
			}
		}
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return store, nil
	default:
		database, err := New(cfg, log)
		if err != nil {
			return nil, err
		}
		return repository.NewRepository(database), nil
	}
}
