package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is the GST document generated for a paid order. The tax columns
// hold the split computed by the gst package: either CGST+SGST (intra-state)
// or IGST (inter-state), never both.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_number"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Order         *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	BuyerName     string          `gorm:"type:varchar(255)" json:"buyer_name"`
	BuyerState    string          `gorm:"type:varchar(100)" json:"buyer_state"`
	BuyerGSTIN    string          `gorm:"type:varchar(20)" json:"buyer_gstin"`
	IntraState    bool            `gorm:"not null" json:"intra_state"`
	BaseAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"base_amount"`
	GSTRate       decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"gst_rate"`
	CGSTAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"cgst_amount"`
	SGSTAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"sgst_amount"`
	IGSTAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"igst_amount"`
	TotalTax      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_tax"`
	FinalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"final_amount"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Counter backs sequential document numbering (invoices, orders).
type Counter struct {
	Name  string `gorm:"type:varchar(50);primaryKey" json:"name"`
	Count int64  `gorm:"type:bigint;not null;default:0" json:"count"`
}
