package models

import (
	"strings"
	"time"
)

// OrderStatus is one of the WooCommerce order lifecycle states.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusOnHold     OrderStatus = "on-hold"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
	StatusFailed     OrderStatus = "failed"
	StatusTrash      OrderStatus = "trash"
)

// OrderStatuses lists every accepted status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusOnHold,
	StatusCompleted,
	StatusCancelled,
	StatusRefunded,
	StatusFailed,
	StatusTrash,
}

func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Order is the operator's local view of a store order. Only Status is
// changed locally; everything else comes from the store.
type Order struct {
	ID          int64       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Number      string      `gorm:"type:varchar(64);index" json:"number"`
	Status      OrderStatus `gorm:"type:varchar(20);index;not null" json:"status"`
	DateCreated time.Time   `json:"date_created"`
	Total       string      `gorm:"type:varchar(64)" json:"total"`
	Currency    string      `gorm:"type:varchar(8)" json:"currency"`
	FirstName   string      `gorm:"type:varchar(255)" json:"first_name"`
	LastName    string      `gorm:"type:varchar(255)" json:"last_name"`
	Phone       string      `gorm:"type:varchar(32)" json:"phone"`
	LineItems   []LineItem  `gorm:"serializer:json" json:"line_items"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// CustomerName joins the billing first and last name.
func (o Order) CustomerName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// MessageTemplate is an operator-authored SMS body bound to one order status.
type MessageTemplate struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null;uniqueIndex" json:"status"`
	Name      string      `gorm:"type:varchar(255);not null" json:"name"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MessageTemplate) TableName() string {
	return "message_templates"
}

// SystemSetting is one persisted configuration value.
type SystemSetting struct {
	Key       string    `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SystemSetting) TableName() string {
	return "app_settings"
}

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// NotificationLog records one SMS delivery attempt, keyed by AttemptID.
type NotificationLog struct {
	ID               uint               `gorm:"primaryKey" json:"id"`
	AttemptID        string             `gorm:"type:varchar(36);not null;uniqueIndex" json:"attempt_id"`
	OrderID          *int64             `gorm:"index" json:"order_id"`
	Phone            string             `gorm:"type:varchar(32)" json:"phone"`
	Message          string             `gorm:"type:text" json:"message"`
	Status           NotificationStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Simulated        bool               `json:"simulated"`
	ProviderResponse string             `gorm:"type:text" json:"provider_response,omitempty"`
	ErrorMessage     string             `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time          `gorm:"autoCreateTime" json:"created_at"`
	CompletedAt      *time.Time         `json:"completed_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}

// All lists the models migrated at startup.
func All() []interface{} {
	return []interface{}{
		&Order{},
		&MessageTemplate{},
		&SystemSetting{},
		&NotificationLog{},
	}
}
