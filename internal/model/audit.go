package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActionCreateLead     = "CREATE_LEAD"
	ActionUpdateLead     = "UPDATE_LEAD"
	ActionDeleteLead     = "DELETE_LEAD"
	ActionAssignLead     = "ASSIGN_LEAD"
	ActionTransitionLead = "TRANSITION_LEAD"

	ActionCreateInventory   = "CREATE_INVENTORY"
	ActionUpdateInventory   = "UPDATE_INVENTORY"
	ActionDeleteInventory   = "DELETE_INVENTORY"
	ActionAllocateInventory = "ALLOCATE_INVENTORY"

	ActionCreateOrder    = "CREATE_ORDER"
	ActionApproveOrder   = "APPROVE_ORDER"
	ActionRejectOrder    = "REJECT_ORDER"
	ActionRecordPayment  = "RECORD_PAYMENT"
	ActionCreateInvoice  = "CREATE_INVOICE"
	ActionCreateDelivery = "CREATE_DELIVERY"
	ActionUpdateDelivery = "UPDATE_DELIVERY"

	ActionCreateUser = "CREATE_USER"
	ActionUpdateUser = "UPDATE_USER"
	ActionDeleteUser = "DELETE_USER"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User          `gorm:"foreignKey:UserID" json:"user"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string         `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string         `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}
