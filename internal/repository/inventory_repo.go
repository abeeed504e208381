package repository

import (
	"context"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryFilter narrows inventory listings.
type InventoryFilter struct {
	EventName string
	EventType string
	Category  string
}

// InventoryRepository defines the interface for data access of ticket inventory
type InventoryRepository interface {
	Create(ctx context.Context, inv *model.TicketInventory) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.TicketInventory, error)
	// GetByIDForUpdate takes a row lock so allocations against the same
	// block serialize inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TicketInventory, error)
	List(ctx context.Context, filter InventoryFilter, page, limit int) ([]model.TicketInventory, int64, error)
	Update(ctx context.Context, inv *model.TicketInventory) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateAllocation(ctx context.Context, alloc *model.TicketAllocation) error
	ListAllocations(ctx context.Context, inventoryID uuid.UUID) ([]model.TicketAllocation, error)
	CountAvailable(ctx context.Context) (int64, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, inv *model.TicketInventory) error {
	return GetDB(ctx, r.db).Create(inv).Error
}

func (r *inventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TicketInventory, error) {
	var inv model.TicketInventory
	if err := GetDB(ctx, r.db).First(&inv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TicketInventory, error) {
	var inv model.TicketInventory
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepository) List(ctx context.Context, filter InventoryFilter, page, limit int) ([]model.TicketInventory, int64, error) {
	var items []model.TicketInventory
	var total int64

	query := GetDB(ctx, r.db).Model(&model.TicketInventory{})
	if filter.EventName != "" {
		query = query.Where("event_name ILIKE ?", "%"+filter.EventName+"%")
	}
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.Category != "" {
		query = query.Where("category_of_ticket = ?", filter.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("event_date ASC").Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *inventoryRepository) Update(ctx context.Context, inv *model.TicketInventory) error {
	return GetDB(ctx, r.db).Save(inv).Error
}

func (r *inventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TicketInventory{}).Error
}

func (r *inventoryRepository) CreateAllocation(ctx context.Context, alloc *model.TicketAllocation) error {
	return GetDB(ctx, r.db).Create(alloc).Error
}

func (r *inventoryRepository) ListAllocations(ctx context.Context, inventoryID uuid.UUID) ([]model.TicketAllocation, error) {
	var allocs []model.TicketAllocation
	err := GetDB(ctx, r.db).
		Where("inventory_id = ?", inventoryID).
		Order("created_at DESC").
		Find(&allocs).Error
	if err != nil {
		return nil, err
	}
	return allocs, nil
}

func (r *inventoryRepository) CountAvailable(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.TicketInventory{}).
		Where("available_tickets > 0").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
