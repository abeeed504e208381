package repository

import (
	"context"
	"errors"

	"crm-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter names for sequential document numbering.
const (
	CounterInvoices = "invoices"
	CounterOrders   = "orders"
)

// CounterRepository hands out gapless sequence numbers for document codes.
type CounterRepository interface {
	// Next increments the named counter and returns its new value. Safe
	// under concurrency; the row is locked for the enclosing transaction.
	Next(ctx context.Context, name string) (int64, error)
}

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

func (r *counterRepository) Next(ctx context.Context, name string) (int64, error) {
	db := GetDB(ctx, r.db)

	var counter model.Counter
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = model.Counter{Name: name, Count: 1}
		if err := db.Create(&counter).Error; err != nil {
			return 0, err
		}
		return counter.Count, nil
	}
	if err != nil {
		return 0, err
	}

	counter.Count++
	if err := db.Save(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Count, nil
}
