package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-backend/internal/config"
	"crm-backend/internal/gst"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	ws "crm-backend/internal/websocket"
	"crm-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrOrderNotApprovable is returned when approve/reject is attempted on an
// order that already left pending_approval.
var ErrOrderNotApprovable = errors.New("order is not pending approval")

// --- DTOs ---

type CreateOrderRequest struct {
	LeadID      string `json:"lead_id" binding:"required,uuid"`
	InventoryID string `json:"inventory_id" binding:"required,uuid"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
}

type RejectOrderRequest struct {
	Note string `json:"note"`
}

type RecordPaymentRequest struct {
	Amount        string `json:"amount" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	PaymentDate   string `json:"payment_date"` // YYYY-MM-DD, defaults to today

	LegalName         string `json:"legal_name" binding:"required"`
	CustomerState     string `json:"customer_state" binding:"required,indianstate"`
	RegisteredAddress string `json:"registered_address"`
	CustomerGSTIN     string `json:"customer_gstin"`
	CustomerPAN       string `json:"customer_pan"`
	CategoryOfSale    string `json:"category_of_sale"`
	GSTRate           string `json:"gst_rate"` // percent, defaults from config
}

type OrderResponse struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"order_number"`
	LeadID        *string         `json:"lead_id"`
	LeadName      string          `json:"lead_name,omitempty"`
	InventoryID   *string         `json:"inventory_id"`
	EventName     string          `json:"event_name,omitempty"`
	Quantity      int             `json:"quantity"`
	Status        string          `json:"status"`
	ApprovedBy    *string         `json:"approved_by"`
	ApprovedAt    *string         `json:"approved_at"`
	RejectionNote string          `json:"rejection_note,omitempty"`
	LegalName     string          `json:"legal_name,omitempty"`
	CustomerState string          `json:"customer_state,omitempty"`
	BaseAmount    decimal.Decimal `json:"base_amount"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
	AdvanceAmount decimal.Decimal `json:"advance_amount"`
	PaymentStatus string          `json:"payment_status"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	PaymentDate   *string         `json:"payment_date"`
	CreatedAt     string          `json:"created_at"`
}

// --- Interface ---

type OrderService interface {
	// CreateOrder raises an order from a converted lead and reserves the
	// requested tickets from inventory in the same transaction.
	CreateOrder(ctx context.Context, actorID string, req CreateOrderRequest) (*OrderResponse, error)
	GetOrder(ctx context.Context, id string) (*OrderResponse, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter, page, limit int) ([]OrderResponse, int64, error)
	ApproveOrder(ctx context.Context, actorID string, id string) (*OrderResponse, error)
	// RejectOrder turns the order down and returns its tickets to inventory.
	RejectOrder(ctx context.Context, actorID string, id string, req RejectOrderRequest) (*OrderResponse, error)
	// RecordPayment captures a payment with the buyer identity that drives
	// the GST split, derives the payment status and moves the lead to
	// payment_received once the order is fully paid.
	RecordPayment(ctx context.Context, actorID string, id string, req RecordPaymentRequest) (*OrderResponse, error)
}

type orderService struct {
	repo          repository.OrderRepository
	inventoryRepo repository.InventoryRepository
	leadRepo      repository.LeadRepository
	counterRepo   repository.CounterRepository
	txManager     repository.TransactionManager
	graph         *model.StatusGraph
	company       config.CompanyConfig
	audit         AuditService
	hub           *ws.Hub
}

func NewOrderService(
	repo repository.OrderRepository,
	inventoryRepo repository.InventoryRepository,
	leadRepo repository.LeadRepository,
	counterRepo repository.CounterRepository,
	txManager repository.TransactionManager,
	graph *model.StatusGraph,
	company config.CompanyConfig,
	audit AuditService,
	hub *ws.Hub,
) OrderService {
	return &orderService{
		repo:          repo,
		inventoryRepo: inventoryRepo,
		leadRepo:      leadRepo,
		counterRepo:   counterRepo,
		txManager:     txManager,
		graph:         graph,
		company:       company,
		audit:         audit,
		hub:           hub,
	}
}

// --- Implementation ---

func toOrderResponse(order *model.Order) *OrderResponse {
	res := &OrderResponse{
		ID:            order.ID.String(),
		OrderNumber:   order.OrderNumber,
		Quantity:      order.Quantity,
		Status:        order.Status,
		RejectionNote: order.RejectionNote,
		LegalName:     order.LegalName,
		CustomerState: order.CustomerState,
		BaseAmount:    order.BaseAmount,
		GSTRate:       order.GSTRate,
		AdvanceAmount: order.AdvanceAmount,
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt.Format(time.RFC3339),
	}
	if order.LeadID != nil {
		id := order.LeadID.String()
		res.LeadID = &id
	}
	if order.Lead != nil {
		res.LeadName = order.Lead.Name
	}
	if order.InventoryID != nil {
		id := order.InventoryID.String()
		res.InventoryID = &id
	}
	if order.Inventory != nil {
		res.EventName = order.Inventory.EventName
	}
	if order.ApprovedBy != nil {
		id := order.ApprovedBy.String()
		res.ApprovedBy = &id
	}
	if order.ApprovedAt != nil {
		ts := order.ApprovedAt.Format(time.RFC3339)
		res.ApprovedAt = &ts
	}
	if order.PaymentDate != nil {
		d := order.PaymentDate.Format("2006-01-02")
		res.PaymentDate = &d
	}
	return res
}

func (s *orderService) CreateOrder(ctx context.Context, actorID string, req CreateOrderRequest) (*OrderResponse, error) {
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		return nil, fmt.Errorf("invalid lead id: %w", err)
	}
	invID, err := uuid.Parse(req.InventoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid inventory id: %w", err)
	}

	var createdBy *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		createdBy = &parsed
	}

	var order *model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		lead, err := s.leadRepo.GetByID(txCtx, leadID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("lead not found")
			}
			return err
		}
		if lead.Status != model.LeadStatusConverted {
			return fmt.Errorf("orders require a converted lead, got status %q", lead.Status)
		}

		inv, err := s.inventoryRepo.GetByIDForUpdate(txCtx, invID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("inventory not found")
			}
			return err
		}
		if inv.AvailableTickets < req.Quantity {
			return ErrInsufficientStock
		}

		seq, err := s.counterRepo.Next(txCtx, repository.CounterOrders)
		if err != nil {
			return err
		}

		order = &model.Order{
			OrderNumber:   fmt.Sprintf("ORD-%06d", seq),
			LeadID:        &lead.ID,
			InventoryID:   &inv.ID,
			Quantity:      req.Quantity,
			Status:        model.OrderStatusPendingApproval,
			BaseAmount:    inv.SellingPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
			GSTRate:       decimal.Zero,
			PaymentStatus: model.PaymentStatusPending,
			CreatedBy:     createdBy,
		}
		if err := s.repo.Create(txCtx, order); err != nil {
			return err
		}

		inv.AvailableTickets -= req.Quantity
		if err := s.inventoryRepo.Update(txCtx, inv); err != nil {
			return err
		}

		alloc := &model.TicketAllocation{
			InventoryID:    inv.ID,
			OrderID:        &order.ID,
			Quantity:       req.Quantity,
			AvailableAfter: inv.AvailableTickets,
			AllocatedBy:    createdBy,
		}
		return s.inventoryRepo.CreateAllocation(txCtx, alloc)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, model.ActionCreateOrder, order.ID.String(), order.OrderNumber,
		map[string]interface{}{"lead_id": req.LeadID, "inventory_id": req.InventoryID, "quantity": req.Quantity})

	return s.GetOrder(ctx, order.ID.String())
}

func (s *orderService) getOrder(ctx context.Context, id string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*OrderResponse, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter, page, limit int) ([]OrderResponse, int64, error) {
	orders, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	res := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, *toOrderResponse(&orders[i]))
	}
	return res, total, nil
}

func (s *orderService) ApproveOrder(ctx context.Context, actorID string, id string) (*OrderResponse, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPendingApproval {
		return nil, ErrOrderNotApprovable
	}

	approverID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, fmt.Errorf("invalid approver id: %w", err)
	}

	now := time.Now()
	order.Status = model.OrderStatusApproved
	order.ApprovedBy = &approverID
	order.ApprovedAt = &now

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to approve order: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionApproveOrder, order.ID.String(), order.OrderNumber, nil)
	s.hub.BroadcastEvent("order_approved", map[string]interface{}{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
	})

	return toOrderResponse(order), nil
}

func (s *orderService) RejectOrder(ctx context.Context, actorID string, id string, req RejectOrderRequest) (*OrderResponse, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPendingApproval {
		return nil, ErrOrderNotApprovable
	}

	approverID, parseErr := uuid.Parse(actorID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order.Status = model.OrderStatusRejected
		order.RejectionNote = req.Note
		if parseErr == nil {
			order.ApprovedBy = &approverID
		}
		now := time.Now()
		order.ApprovedAt = &now

		if err := s.repo.Update(txCtx, order); err != nil {
			return err
		}

		// Return the reserved tickets to the block
		if order.InventoryID == nil {
			return nil
		}
		inv, err := s.inventoryRepo.GetByIDForUpdate(txCtx, *order.InventoryID)
		if err != nil {
			return err
		}
		inv.AvailableTickets += order.Quantity
		if err := s.inventoryRepo.Update(txCtx, inv); err != nil {
			return err
		}
		return s.inventoryRepo.CreateAllocation(txCtx, &model.TicketAllocation{
			InventoryID:    inv.ID,
			OrderID:        &order.ID,
			Quantity:       -order.Quantity,
			AvailableAfter: inv.AvailableTickets,
			AllocatedBy:    order.ApprovedBy,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reject order: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionRejectOrder, order.ID.String(), order.OrderNumber,
		map[string]string{"note": req.Note})
	s.hub.BroadcastEvent("order_rejected", map[string]interface{}{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
	})

	return toOrderResponse(order), nil
}

// derivePaymentStatus maps the cumulative advance against the grand total.
func derivePaymentStatus(advance, finalAmount decimal.Decimal) string {
	switch {
	case advance.GreaterThanOrEqual(finalAmount) && finalAmount.IsPositive():
		return model.PaymentStatusPaid
	case advance.IsPositive():
		return model.PaymentStatusPartial
	default:
		return model.PaymentStatusPending
	}
}

func (s *orderService) RecordPayment(ctx context.Context, actorID string, id string, req RecordPaymentRequest) (*OrderResponse, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusApproved {
		return nil, errors.New("payments can only be recorded on approved orders")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	if !amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}

	rate, err := decimal.NewFromString(s.company.DefaultGSTRate)
	if err != nil {
		rate = decimal.NewFromInt(18)
	}
	if req.GSTRate != "" {
		rate, err = decimal.NewFromString(req.GSTRate)
		if err != nil {
			return nil, fmt.Errorf("invalid gst rate: %w", err)
		}
	}

	paymentDate := time.Now()
	if req.PaymentDate != "" {
		paymentDate, err = time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("invalid payment date (expected YYYY-MM-DD): %w", err)
		}
	}

	sameState := gst.SameState(req.CustomerState, s.company.HomeState)
	breakdown, err := gst.Compute(order.BaseAmount, rate, sameState)
	if err != nil {
		return nil, err
	}

	order.LegalName = req.LegalName
	order.CustomerState = req.CustomerState
	order.RegisteredAddress = req.RegisteredAddress
	order.CustomerGSTIN = req.CustomerGSTIN
	order.CustomerPAN = req.CustomerPAN
	order.CategoryOfSale = req.CategoryOfSale
	order.GSTRate = rate
	order.AdvanceAmount = order.AdvanceAmount.Add(amount)
	order.PaymentMethod = req.PaymentMethod
	order.PaymentDate = &paymentDate
	order.PaymentStatus = derivePaymentStatus(order.AdvanceAmount, breakdown.FinalAmount)

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionRecordPayment, order.ID.String(), order.OrderNumber,
		map[string]interface{}{
			"amount":         req.Amount,
			"method":         req.PaymentMethod,
			"payment_status": order.PaymentStatus,
		})

	if order.PaymentStatus == model.PaymentStatusPaid {
		s.advanceLeadToPaid(ctx, actorID, order)
	}

	return toOrderResponse(order), nil
}

// advanceLeadToPaid moves the originating lead to payment_received when the
// lifecycle allows it. Best-effort: a lead already moved along stays put.
func (s *orderService) advanceLeadToPaid(ctx context.Context, actorID string, order *model.Order) {
	if order.LeadID == nil {
		return
	}
	lead, err := s.leadRepo.GetByID(ctx, *order.LeadID)
	if err != nil {
		logger.Get().WithError(err).WithField("lead_id", order.LeadID.String()).
			Warn("could not load lead for payment transition")
		return
	}
	if !s.graph.CanTransition(lead.Status, model.LeadStatusPaymentReceived) {
		return
	}

	fromStatus := lead.Status
	if err := s.graph.Apply(lead, model.LeadStatusPaymentReceived, time.Now()); err != nil {
		return
	}
	if err := s.leadRepo.UpdateStatusGuarded(ctx, lead, fromStatus); err != nil {
		logger.Get().WithError(err).WithField("lead_id", lead.ID.String()).
			Warn("could not persist payment transition")
		return
	}

	s.audit.Record(ctx, actorID, model.ActionTransitionLead, lead.ID.String(), lead.Name,
		map[string]string{"from": fromStatus, "to": model.LeadStatusPaymentReceived})
	s.hub.BroadcastEvent("lead_status_changed", map[string]interface{}{
		"lead_id": lead.ID.String(),
		"from":    fromStatus,
		"to":      model.LeadStatusPaymentReceived,
	})
}
