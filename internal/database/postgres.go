package database

import (
	"fmt"

	"github.com/echoremedy/echoremedy-bot/internal/config"
	"github.com/echoremedy/echoremedy-bot/internal/database/migrations"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresDB connects to Postgres, applies pending migrations and seeds
// the remedy catalog when it is empty.
func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	registry, err := migrations.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := registry.Run(db)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	seeded, err := SeedRemedies(db)
	if err != nil {
		return nil, fmt.Errorf("failed to seed remedies: %w", err)
	}

	logger.Info("Database connection established",
		"host", cfg.Host,
		"db", cfg.DBName,
		"migrations_applied", len(applied),
		"remedies_seeded", seeded,
	)
	return db, nil
}
