package model

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus enum constants
const (
	DeliveryStatusScheduled = "scheduled"
	DeliveryStatusInTransit = "in_transit"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
)

// Delivery tracks handover of purchased tickets for an approved order.
type Delivery struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	Order           *Order     `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Status          string     `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	ScheduledDate   *time.Time `gorm:"type:date" json:"scheduled_date"`
	DeliveredAt     *time.Time `json:"delivered_at"`
	RecipientName   string     `gorm:"type:varchar(255)" json:"recipient_name"`
	DeliveryAddress string     `gorm:"type:text" json:"delivery_address"`
	Notes           string     `gorm:"type:text" json:"notes"`
	CreatedBy       *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
