package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus enum constants
const (
	OrderStatusPendingApproval = "pending_approval"
	OrderStatusApproved        = "approved"
	OrderStatusRejected        = "rejected"
)

// PaymentStatus enum constants
const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Order is a ticket sale raised from a converted lead. It waits for
// approval before payment can be captured and an invoice generated.
type Order struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber   string           `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_number"`
	LeadID        *uuid.UUID       `gorm:"type:uuid;index" json:"lead_id"`
	Lead          *Lead            `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	InventoryID   *uuid.UUID       `gorm:"type:uuid;index" json:"inventory_id"`
	Inventory     *TicketInventory `gorm:"foreignKey:InventoryID" json:"inventory,omitempty"`
	Quantity      int              `gorm:"type:int;not null" json:"quantity"`
	Status        string           `gorm:"type:varchar(30);not null;default:'pending_approval';index" json:"status"`
	ApprovedBy    *uuid.UUID       `gorm:"type:uuid" json:"approved_by"`
	Approver      *User            `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	ApprovedAt    *time.Time       `json:"approved_at"`
	RejectionNote string           `gorm:"type:text" json:"rejection_note"`

	// Buyer identity captured at payment time, drives the GST split.
	LegalName         string `gorm:"type:varchar(255)" json:"legal_name"`
	CustomerState     string `gorm:"type:varchar(100)" json:"customer_state"`
	RegisteredAddress string `gorm:"type:text" json:"registered_address"`
	CustomerGSTIN     string `gorm:"type:varchar(20)" json:"customer_gstin"`
	CustomerPAN       string `gorm:"type:varchar(15)" json:"customer_pan"`
	CategoryOfSale    string `gorm:"type:varchar(50)" json:"category_of_sale"`

	BaseAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"base_amount"`
	GSTRate       decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"gst_rate"`
	AdvanceAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"advance_amount"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	PaymentMethod string          `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentDate   *time.Time      `gorm:"type:date" json:"payment_date"`

	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
