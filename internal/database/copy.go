package database

import (
	"context"
	"fmt"

	"woo-notify/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const copyBatchSize = 500

// serialTables have auto-increment ids whose postgres sequences must be
// advanced after rows are copied with explicit ids.
var serialTables = []string{"message_templates", "notification_logs"}

// Copy moves every row of the service tables from src to dst. Rows already
// present in dst are kept, so an interrupted copy can be rerun.
func Copy(ctx context.Context, src, dst *gorm.DB, log *zap.Logger) error {
	steps := []struct {
		table string
		run   func() (int, error)
	}{
		{"app_settings", func() (int, error) { return copyTable[models.SystemSetting](ctx, src, dst) }},
		{"orders", func() (int, error) { return copyTable[models.Order](ctx, src, dst) }},
		{"message_templates", func() (int, error) { return copyTable[models.MessageTemplate](ctx, src, dst) }},
		{"notification_logs", func() (int, error) { return copyTable[models.NotificationLog](ctx, src, dst) }},
	}
	for _, step := range steps {
		n, err := step.run()
		if err != nil {
			return fmt.Errorf("copy %s: %w", step.table, err)
		}
		log.Info("Table copied", zap.String("table", step.table), zap.Int("rows", n))
	}
	return nil
}

func copyTable[T any](ctx context.Context, src, dst *gorm.DB) (int, error) {
	var batch []T
	total := 0
	res := src.WithContext(ctx).FindInBatches(&batch, copyBatchSize, func(_ *gorm.DB, _ int) error {
		err := dst.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch).Error
		})
		if err != nil {
			return err
		}
		total += len(batch)
		return nil
	})
	return total, res.Error
}

// SyncSequences advances postgres id sequences past the copied rows. It is a
// no-op for other drivers.
func SyncSequences(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range serialTables {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), coalesce(max(id), 0) + 1, false) FROM %s", table, table)
		if err := db.WithContext(ctx).Exec(query).Error; err != nil {
			return fmt.Errorf("sync sequence for %s: %w", table, err)
		}
		log.Info("Sequence synced", zap.String("table", table))
	}
	return nil
}
