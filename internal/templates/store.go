package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"woo-notify/internal/apperrors"
	"woo-notify/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store keeps at most one MessageTemplate per order status.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the template bound to status; ok is false when none exists.
func (s *Store) Get(ctx context.Context, status models.OrderStatus) (models.MessageTemplate, bool, error) {
	var tmpl models.MessageTemplate
	err := s.db.WithContext(ctx).Where("status = ?", status).First(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.MessageTemplate{}, false, nil
	}
	if err != nil {
		return models.MessageTemplate{}, false, fmt.Errorf("get template for %s: %w", status, err)
	}
	return tmpl, true, nil
}

// Upsert binds tmpl to status, replacing the name and content of any
// template already bound to it. tmpl.ID and tmpl.Status are ignored.
func (s *Store) Upsert(ctx context.Context, status models.OrderStatus, tmpl models.MessageTemplate) (models.MessageTemplate, error) {
	if !status.Valid() {
		return models.MessageTemplate{}, apperrors.InvalidInput("invalid status value %q", status)
	}
	row := models.MessageTemplate{
		Status:  status,
		Name:    strings.TrimSpace(tmpl.Name),
		Content: tmpl.Content,
	}
	if row.Name == "" || strings.TrimSpace(row.Content) == "" {
		return models.MessageTemplate{}, apperrors.InvalidInput("name, text, and status are required")
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "status"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "content", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return models.MessageTemplate{}, fmt.Errorf("save template for %s: %w", status, err)
	}

	saved, _, err := s.Get(ctx, status)
	return saved, err
}

// Remove deletes the template bound to status. Removing an absent status is
// not an error.
func (s *Store) Remove(ctx context.Context, status models.OrderStatus) error {
	err := s.db.WithContext(ctx).Where("status = ?", status).Delete(&models.MessageTemplate{}).Error
	if err != nil {
		return fmt.Errorf("delete template for %s: %w", status, err)
	}
	return nil
}

// List returns every template ordered by status for display.
func (s *Store) List(ctx context.Context) ([]models.MessageTemplate, error) {
	templates := []models.MessageTemplate{}
	if err := s.db.WithContext(ctx).Order("status").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

var defaultTemplates = []models.MessageTemplate{
	{
		Status:  models.StatusPending,
		Name:    "Payment Pending",
		Content: "Hi {customer_name}, thank you for your order {order_id}! We're waiting for your payment of {order_total}. Please complete payment to process your order.",
	},
	{
		Status:  models.StatusProcessing,
		Name:    "Order Processing",
		Content: "Great news {customer_name}! Your order {order_id} for {order_total} is now being processed. We'll update you once it ships.",
	},
	{
		Status:  models.StatusCompleted,
		Name:    "Order Completed",
		Content: "Hello {customer_name}, your order {order_id} has been completed! Thank you for shopping with us.",
	},
}

// SeedDefaults installs the starter templates when the table is empty and
// reports how many were written. Only called when the operator opts in.
func (s *Store) SeedDefaults(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.MessageTemplate{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	for _, tmpl := range defaultTemplates {
		if _, err := s.Upsert(ctx, tmpl.Status, tmpl); err != nil {
			return 0, err
		}
	}
	return len(defaultTemplates), nil
}
