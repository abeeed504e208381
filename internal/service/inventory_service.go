package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	ws "crm-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when an allocation asks for more tickets
// than the inventory block has available.
var ErrInsufficientStock = errors.New("not enough available tickets")

// --- DTOs ---

type CreateInventoryRequest struct {
	EventName        string `json:"event_name" binding:"required"`
	EventDate        string `json:"event_date" binding:"required"` // YYYY-MM-DD
	EventType        string `json:"event_type" binding:"required"`
	Venue            string `json:"venue"`
	CategoryOfTicket string `json:"category_of_ticket" binding:"required"`
	TotalTickets     int    `json:"total_tickets" binding:"required,gt=0"`
	BuyingPrice      string `json:"buying_price" binding:"required"`
	SellingPrice     string `json:"selling_price" binding:"required"`
}

type UpdateInventoryRequest struct {
	EventName    string `json:"event_name"`
	EventDate    string `json:"event_date"`
	Venue        string `json:"venue"`
	TotalTickets int    `json:"total_tickets" binding:"omitempty,gt=0"`
	BuyingPrice  string `json:"buying_price"`
	SellingPrice string `json:"selling_price"`
}

type AllocateInventoryRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	OrderID  string `json:"order_id" binding:"omitempty,uuid"`
}

type InventoryResponse struct {
	ID               string          `json:"id"`
	EventName        string          `json:"event_name"`
	EventDate        string          `json:"event_date"`
	EventType        string          `json:"event_type"`
	Venue            string          `json:"venue"`
	CategoryOfTicket string          `json:"category_of_ticket"`
	TotalTickets     int             `json:"total_tickets"`
	AvailableTickets int             `json:"available_tickets"`
	BuyingPrice      decimal.Decimal `json:"buying_price"`
	SellingPrice     decimal.Decimal `json:"selling_price"`
	CreatedAt        string          `json:"created_at"`
}

type AllocationResponse struct {
	ID             string  `json:"id"`
	InventoryID    string  `json:"inventory_id"`
	OrderID        *string `json:"order_id"`
	Quantity       int     `json:"quantity"`
	AvailableAfter int     `json:"available_after"`
	CreatedAt      string  `json:"created_at"`
}

// --- Interface ---

type InventoryService interface {
	CreateInventory(ctx context.Context, actorID string, req CreateInventoryRequest) (*InventoryResponse, error)
	GetInventory(ctx context.Context, id string) (*InventoryResponse, error)
	ListInventory(ctx context.Context, filter repository.InventoryFilter, page, limit int) ([]InventoryResponse, int64, error)
	UpdateInventory(ctx context.Context, actorID string, id string, req UpdateInventoryRequest) (*InventoryResponse, error)
	DeleteInventory(ctx context.Context, actorID string, id string) error
	// AllocateTickets reserves quantity tickets from the block inside a
	// transaction with a row lock. Ends with ErrInsufficientStock when the
	// block cannot cover it.
	AllocateTickets(ctx context.Context, actorID string, id string, req AllocateInventoryRequest) (*AllocationResponse, error)
	ListAllocations(ctx context.Context, id string) ([]AllocationResponse, error)
}

type inventoryService struct {
	repo      repository.InventoryRepository
	txManager repository.TransactionManager
	audit     AuditService
	hub       *ws.Hub
}

func NewInventoryService(repo repository.InventoryRepository, txManager repository.TransactionManager, audit AuditService, hub *ws.Hub) InventoryService {
	return &inventoryService{repo: repo, txManager: txManager, audit: audit, hub: hub}
}

// --- Implementation ---

func toInventoryResponse(inv *model.TicketInventory) *InventoryResponse {
	return &InventoryResponse{
		ID:               inv.ID.String(),
		EventName:        inv.EventName,
		EventDate:        inv.EventDate.Format("2006-01-02"),
		EventType:        inv.EventType,
		Venue:            inv.Venue,
		CategoryOfTicket: inv.CategoryOfTicket,
		TotalTickets:     inv.TotalTickets,
		AvailableTickets: inv.AvailableTickets,
		BuyingPrice:      inv.BuyingPrice,
		SellingPrice:     inv.SellingPrice,
		CreatedAt:        inv.CreatedAt.Format(time.RFC3339),
	}
}

func toAllocationResponse(alloc *model.TicketAllocation) *AllocationResponse {
	res := &AllocationResponse{
		ID:             alloc.ID.String(),
		InventoryID:    alloc.InventoryID.String(),
		Quantity:       alloc.Quantity,
		AvailableAfter: alloc.AvailableAfter,
		CreatedAt:      alloc.CreatedAt.Format(time.RFC3339),
	}
	if alloc.OrderID != nil {
		id := alloc.OrderID.String()
		res.OrderID = &id
	}
	return res
}

func parsePrice(value, field string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", field)
	}
	return price, nil
}

func (s *inventoryService) CreateInventory(ctx context.Context, actorID string, req CreateInventoryRequest) (*InventoryResponse, error) {
	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("invalid event date (expected YYYY-MM-DD): %w", err)
	}

	buyingPrice, err := parsePrice(req.BuyingPrice, "buying price")
	if err != nil {
		return nil, err
	}
	sellingPrice, err := parsePrice(req.SellingPrice, "selling price")
	if err != nil {
		return nil, err
	}

	inv := &model.TicketInventory{
		EventName:        req.EventName,
		EventDate:        eventDate,
		EventType:        req.EventType,
		Venue:            req.Venue,
		CategoryOfTicket: req.CategoryOfTicket,
		TotalTickets:     req.TotalTickets,
		AvailableTickets: req.TotalTickets,
		BuyingPrice:      buyingPrice,
		SellingPrice:     sellingPrice,
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create inventory: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionCreateInventory, inv.ID.String(), inv.EventName,
		map[string]interface{}{"category": inv.CategoryOfTicket, "total_tickets": inv.TotalTickets})

	return toInventoryResponse(inv), nil
}

func (s *inventoryService) getInventory(ctx context.Context, id string) (*model.TicketInventory, error) {
	invID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid inventory id: %w", err)
	}
	inv, err := s.repo.GetByID(ctx, invID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("inventory not found")
		}
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}
	return inv, nil
}

func (s *inventoryService) GetInventory(ctx context.Context, id string) (*InventoryResponse, error) {
	inv, err := s.getInventory(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInventoryResponse(inv), nil
}

func (s *inventoryService) ListInventory(ctx context.Context, filter repository.InventoryFilter, page, limit int) ([]InventoryResponse, int64, error) {
	items, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch inventory: %w", err)
	}

	res := make([]InventoryResponse, 0, len(items))
	for i := range items {
		res = append(res, *toInventoryResponse(&items[i]))
	}
	return res, total, nil
}

func (s *inventoryService) UpdateInventory(ctx context.Context, actorID string, id string, req UpdateInventoryRequest) (*InventoryResponse, error) {
	inv, err := s.getInventory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.EventName != "" {
		inv.EventName = req.EventName
	}
	if req.EventDate != "" {
		eventDate, err := time.Parse("2006-01-02", req.EventDate)
		if err != nil {
			return nil, fmt.Errorf("invalid event date (expected YYYY-MM-DD): %w", err)
		}
		inv.EventDate = eventDate
	}
	if req.Venue != "" {
		inv.Venue = req.Venue
	}
	if req.TotalTickets > 0 {
		// Growing or shrinking the block moves availability by the same delta
		delta := req.TotalTickets - inv.TotalTickets
		if inv.AvailableTickets+delta < 0 {
			return nil, errors.New("cannot shrink block below allocated tickets")
		}
		inv.TotalTickets = req.TotalTickets
		inv.AvailableTickets += delta
	}
	if req.BuyingPrice != "" {
		buyingPrice, err := parsePrice(req.BuyingPrice, "buying price")
		if err != nil {
			return nil, err
		}
		inv.BuyingPrice = buyingPrice
	}
	if req.SellingPrice != "" {
		sellingPrice, err := parsePrice(req.SellingPrice, "selling price")
		if err != nil {
			return nil, err
		}
		inv.SellingPrice = sellingPrice
	}

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionUpdateInventory, inv.ID.String(), inv.EventName, req)

	return toInventoryResponse(inv), nil
}

func (s *inventoryService) DeleteInventory(ctx context.Context, actorID string, id string) error {
	inv, err := s.getInventory(ctx, id)
	if err != nil {
		return err
	}

	if inv.AvailableTickets != inv.TotalTickets {
		return errors.New("cannot delete inventory with allocated tickets")
	}

	if err := s.repo.Delete(ctx, inv.ID); err != nil {
		return fmt.Errorf("failed to delete inventory: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionDeleteInventory, id, inv.EventName,
		map[string]string{"deleted_id": id})
	return nil
}

func (s *inventoryService) AllocateTickets(ctx context.Context, actorID string, id string, req AllocateInventoryRequest) (*AllocationResponse, error) {
	invID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid inventory id: %w", err)
	}

	var orderID *uuid.UUID
	if req.OrderID != "" {
		parsed, err := uuid.Parse(req.OrderID)
		if err != nil {
			return nil, fmt.Errorf("invalid order id: %w", err)
		}
		orderID = &parsed
	}

	var allocatedBy *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		allocatedBy = &parsed
	}

	var alloc *model.TicketAllocation
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		inv, err := s.repo.GetByIDForUpdate(txCtx, invID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("inventory not found")
			}
			return err
		}

		if inv.AvailableTickets < req.Quantity {
			return ErrInsufficientStock
		}

		inv.AvailableTickets -= req.Quantity
		if err := s.repo.Update(txCtx, inv); err != nil {
			return err
		}

		alloc = &model.TicketAllocation{
			InventoryID:    inv.ID,
			OrderID:        orderID,
			Quantity:       req.Quantity,
			AvailableAfter: inv.AvailableTickets,
			AllocatedBy:    allocatedBy,
		}
		return s.repo.CreateAllocation(txCtx, alloc)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, model.ActionAllocateInventory, invID.String(), "",
		map[string]interface{}{"quantity": req.Quantity, "available_after": alloc.AvailableAfter})
	s.hub.BroadcastEvent("inventory_allocated", map[string]interface{}{
		"inventory_id":    invID.String(),
		"quantity":        req.Quantity,
		"available_after": alloc.AvailableAfter,
	})

	return toAllocationResponse(alloc), nil
}

func (s *inventoryService) ListAllocations(ctx context.Context, id string) ([]AllocationResponse, error) {
	invID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid inventory id: %w", err)
	}

	allocs, err := s.repo.ListAllocations(ctx, invID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch allocations: %w", err)
	}

	res := make([]AllocationResponse, 0, len(allocs))
	for i := range allocs {
		res = append(res, *toAllocationResponse(&allocs[i]))
	}
	return res, nil
}
