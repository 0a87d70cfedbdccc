// Command migrate_data copies a sqlite database (DB_PATH) into the postgres
// database configured by DB_HOST and friends, then advances the postgres id
// sequences.
package main

import (
	"context"

	"woo-notify/internal/config"
	"woo-notify/internal/database"
	"woo-notify/internal/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	cfg, envErr := config.LoadConfig()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()
	if envErr != nil {
		log.Warn("Using environment only", zap.Error(envErr))
	}
	ctx := context.Background()

	sqliteDB, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{Logger: database.NewGormLogger(log)})
	if err != nil {
		log.Fatal("Failed to connect to SQLite", zap.Error(err))
	}
	log.Info("Connected to SQLite", zap.String("path", cfg.DBPath))

	pgCfg := *cfg
	pgCfg.DBDriver = "postgres"
	pgDB, err := database.Open(&pgCfg, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}

	log.Info("Starting data migration")
	if err := database.Copy(ctx, sqliteDB, pgDB, log); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	if err := database.SyncSequences(ctx, pgDB, log); err != nil {
		log.Fatal("Sequence sync failed", zap.Error(err))
	}
	log.Info("Migration completed")
}
