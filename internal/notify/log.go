package notify

import (
	"context"
	"fmt"
	"time"

	"woo-notify/internal/models"
	"woo-notify/internal/sms"

	"gorm.io/gorm"
)

// LogStore persists one NotificationLog row per delivery attempt. Rows are
// created pending and completed once, matched by attempt id.
type LogStore struct {
	db *gorm.DB
}

func NewLogStore(db *gorm.DB) *LogStore {
	return &LogStore{db: db}
}

func (s *LogStore) Start(ctx context.Context, d sms.Delivery) error {
	row := models.NotificationLog{
		AttemptID: d.AttemptID,
		OrderID:   d.OrderID,
		Phone:     d.Phone,
		Message:   d.Message,
		Status:    models.NotificationPending,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("log attempt %s: %w", d.AttemptID, err)
	}
	return nil
}

func (s *LogStore) Succeed(ctx context.Context, attemptID string, receipt sms.Receipt) error {
	return s.complete(ctx, attemptID, map[string]interface{}{
		"status":            models.NotificationSent,
		"simulated":         receipt.Simulated,
		"provider_response": string(receipt.Response),
	})
}

func (s *LogStore) Fail(ctx context.Context, attemptID string, cause error) error {
	return s.complete(ctx, attemptID, map[string]interface{}{
		"status":        models.NotificationFailed,
		"error_message": cause.Error(),
	})
}

func (s *LogStore) complete(ctx context.Context, attemptID string, fields map[string]interface{}) error {
	fields["completed_at"] = time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.NotificationLog{}).
		Where("attempt_id = ? AND status = ?", attemptID, models.NotificationPending).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("complete attempt %s: %w", attemptID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("complete attempt %s: no pending log entry", attemptID)
	}
	return nil
}

// Recent returns the newest entries, optionally for one order.
func (s *LogStore) Recent(ctx context.Context, orderID *int64, limit int) ([]models.NotificationLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit)
	if orderID != nil {
		q = q.Where("order_id = ?", *orderID)
	}
	logs := []models.NotificationLog{}
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list notification logs: %w", err)
	}
	return logs, nil
}
