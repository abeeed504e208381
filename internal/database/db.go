package database

import (
	"crm-backend/internal/model"
	"crm-backend/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Lead{},
		&model.TicketInventory{},
		&model.TicketAllocation{},
		&model.Order{},
		&model.Invoice{},
		&model.Counter{},
		&model.Delivery{},
		&model.AuditLog{},
	)
	if err != nil {
		logger.Get().WithError(err).Warn("Failed to auto-migrate models")
	}

	return db, nil
}
