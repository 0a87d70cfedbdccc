// Package settings persists operator configuration in the app_settings table
// and serves it from an in-memory snapshot that is reloaded after every save.
package settings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"woo-notify/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const KeyStoreName = "store_name"

type Store struct {
	db  *gorm.DB
	log *zap.Logger

	mu     sync.RWMutex
	values map[string]string
}

func NewStore(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log, values: map[string]string{}}
}

// Load replaces the snapshot with the current table contents.
func (s *Store) Load(ctx context.Context) error {
	var rows []models.SystemSetting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	s.log.Debug("Settings loaded", zap.Int("count", len(values)))
	return nil
}

// Save upserts every key in one transaction and reloads the snapshot.
// An empty value is stored as-is so the key reads as unset.
func (s *Store) Save(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]models.SystemSetting, 0, len(values))
	for _, k := range keys {
		rows = append(rows, models.SystemSetting{Key: k, Value: strings.TrimSpace(values[k])})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	s.log.Info("Settings saved", zap.Strings("keys", keys))
	return s.Load(ctx)
}

func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Snapshot returns a copy of the loaded values.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
