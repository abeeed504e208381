package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-backend/internal/model"
	"crm-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateDeliveryRequest struct {
	OrderID         string `json:"order_id" binding:"required,uuid"`
	ScheduledDate   string `json:"scheduled_date"` // YYYY-MM-DD
	RecipientName   string `json:"recipient_name" binding:"required"`
	DeliveryAddress string `json:"delivery_address"`
	Notes           string `json:"notes"`
}

type UpdateDeliveryRequest struct {
	Status          string `json:"status" binding:"omitempty,oneof=scheduled in_transit delivered failed"`
	ScheduledDate   string `json:"scheduled_date"`
	RecipientName   string `json:"recipient_name"`
	DeliveryAddress string `json:"delivery_address"`
	Notes           string `json:"notes"`
}

type DeliveryResponse struct {
	ID              string  `json:"id"`
	OrderID         string  `json:"order_id"`
	OrderNumber     string  `json:"order_number,omitempty"`
	Status          string  `json:"status"`
	ScheduledDate   *string `json:"scheduled_date"`
	DeliveredAt     *string `json:"delivered_at"`
	RecipientName   string  `json:"recipient_name"`
	DeliveryAddress string  `json:"delivery_address"`
	Notes           string  `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// --- Interface ---

type DeliveryService interface {
	CreateDelivery(ctx context.Context, actorID string, req CreateDeliveryRequest) (*DeliveryResponse, error)
	GetDelivery(ctx context.Context, id string) (*DeliveryResponse, error)
	ListDeliveries(ctx context.Context, status string, page, limit int) ([]DeliveryResponse, int64, error)
	UpdateDelivery(ctx context.Context, actorID string, id string, req UpdateDeliveryRequest) (*DeliveryResponse, error)
}

type deliveryService struct {
	repo      repository.DeliveryRepository
	orderRepo repository.OrderRepository
	audit     AuditService
}

func NewDeliveryService(repo repository.DeliveryRepository, orderRepo repository.OrderRepository, audit AuditService) DeliveryService {
	return &deliveryService{repo: repo, orderRepo: orderRepo, audit: audit}
}

// --- Implementation ---

func toDeliveryResponse(delivery *model.Delivery) *DeliveryResponse {
	res := &DeliveryResponse{
		ID:              delivery.ID.String(),
		OrderID:         delivery.OrderID.String(),
		Status:          delivery.Status,
		RecipientName:   delivery.RecipientName,
		DeliveryAddress: delivery.DeliveryAddress,
		Notes:           delivery.Notes,
		CreatedAt:       delivery.CreatedAt.Format(time.RFC3339),
	}
	if delivery.Order != nil {
		res.OrderNumber = delivery.Order.OrderNumber
	}
	if delivery.ScheduledDate != nil {
		d := delivery.ScheduledDate.Format("2006-01-02")
		res.ScheduledDate = &d
	}
	if delivery.DeliveredAt != nil {
		ts := delivery.DeliveredAt.Format(time.RFC3339)
		res.DeliveredAt = &ts
	}
	return res
}

func (s *deliveryService) CreateDelivery(ctx context.Context, actorID string, req CreateDeliveryRequest) (*DeliveryResponse, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	if order.Status != model.OrderStatusApproved {
		return nil, errors.New("deliveries require an approved order")
	}

	delivery := &model.Delivery{
		OrderID:         orderID,
		Status:          model.DeliveryStatusScheduled,
		RecipientName:   req.RecipientName,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
	}

	if req.ScheduledDate != "" {
		scheduled, err := time.Parse("2006-01-02", req.ScheduledDate)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduled date (expected YYYY-MM-DD): %w", err)
		}
		delivery.ScheduledDate = &scheduled
	}

	if parsed, err := uuid.Parse(actorID); err == nil {
		delivery.CreatedBy = &parsed
	}

	if err := s.repo.Create(ctx, delivery); err != nil {
		return nil, fmt.Errorf("failed to create delivery: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionCreateDelivery, delivery.ID.String(), order.OrderNumber,
		map[string]string{"order_id": req.OrderID})

	delivery.Order = order
	return toDeliveryResponse(delivery), nil
}

func (s *deliveryService) getDelivery(ctx context.Context, id string) (*model.Delivery, error) {
	deliveryID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid delivery id: %w", err)
	}
	delivery, err := s.repo.GetByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("delivery not found")
		}
		return nil, fmt.Errorf("failed to fetch delivery: %w", err)
	}
	return delivery, nil
}

func (s *deliveryService) GetDelivery(ctx context.Context, id string) (*DeliveryResponse, error) {
	delivery, err := s.getDelivery(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDeliveryResponse(delivery), nil
}

func (s *deliveryService) ListDeliveries(ctx context.Context, status string, page, limit int) ([]DeliveryResponse, int64, error) {
	deliveries, total, err := s.repo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch deliveries: %w", err)
	}

	res := make([]DeliveryResponse, 0, len(deliveries))
	for i := range deliveries {
		res = append(res, *toDeliveryResponse(&deliveries[i]))
	}
	return res, total, nil
}

func (s *deliveryService) UpdateDelivery(ctx context.Context, actorID string, id string, req UpdateDeliveryRequest) (*DeliveryResponse, error) {
	delivery, err := s.getDelivery(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != "" && req.Status != delivery.Status {
		delivery.Status = req.Status
		if req.Status == model.DeliveryStatusDelivered {
			now := time.Now()
			delivery.DeliveredAt = &now
		}
	}
	if req.ScheduledDate != "" {
		scheduled, err := time.Parse("2006-01-02", req.ScheduledDate)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduled date (expected YYYY-MM-DD): %w", err)
		}
		delivery.ScheduledDate = &scheduled
	}
	if req.RecipientName != "" {
		delivery.RecipientName = req.RecipientName
	}
	if req.DeliveryAddress != "" {
		delivery.DeliveryAddress = req.DeliveryAddress
	}
	if req.Notes != "" {
		delivery.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, delivery); err != nil {
		return nil, fmt.Errorf("failed to update delivery: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionUpdateDelivery, delivery.ID.String(), "", req)

	return toDeliveryResponse(delivery), nil
}
