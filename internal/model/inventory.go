package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EventType enum constants
const (
	EventTypeFootball   = "football"
	EventTypeCricket    = "cricket"
	EventTypeTennis     = "tennis"
	EventTypeFormula1   = "formula1"
	EventTypeOlympics   = "olympics"
	EventTypeBasketball = "basketball"
	EventTypeBadminton  = "badminton"
	EventTypeHockey     = "hockey"
)

// TicketCategory enum constants
const (
	TicketCategoryVIP          = "VIP"
	TicketCategoryPremium      = "Premium"
	TicketCategoryGold         = "Gold"
	TicketCategorySilver       = "Silver"
	TicketCategoryBronze       = "Bronze"
	TicketCategoryGeneral      = "General"
	TicketCategoryCorporateBox = "Corporate Box"
	TicketCategoryHospitality  = "Hospitality"
)

// TicketInventory is a block of tickets held for one event and category.
type TicketInventory struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EventName        string          `gorm:"type:varchar(255);not null;index" json:"event_name"`
	EventDate        time.Time       `gorm:"type:date;not null;index" json:"event_date"`
	EventType        string          `gorm:"type:varchar(50);not null" json:"event_type"`
	Venue            string          `gorm:"type:varchar(255)" json:"venue"`
	CategoryOfTicket string          `gorm:"type:varchar(50);not null" json:"category_of_ticket"`
	TotalTickets     int             `gorm:"type:int;not null" json:"total_tickets"`
	AvailableTickets int             `gorm:"type:int;not null" json:"available_tickets"`
	BuyingPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"buying_price"`
	SellingPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"selling_price"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TicketAllocation records tickets reserved from an inventory block for an
// order. AvailableAfter is the block's availability once the allocation
// landed, giving an audit trail equivalent to a stock card.
type TicketAllocation struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InventoryID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"inventory_id"`
	OrderID        *uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	Quantity       int        `gorm:"type:int;not null" json:"quantity"`
	AvailableAfter int        `gorm:"type:int;not null" json:"available_after"`
	AllocatedBy    *uuid.UUID `gorm:"type:uuid" json:"allocated_by"`
	CreatedAt      time.Time  `json:"created_at"`
}
