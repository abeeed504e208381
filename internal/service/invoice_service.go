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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateInvoiceRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
}

type InvoiceResponse struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number,omitempty"`
	BuyerName     string          `json:"buyer_name"`
	BuyerState    string          `json:"buyer_state"`
	BuyerGSTIN    string          `json:"buyer_gstin,omitempty"`
	IntraState    bool            `json:"intra_state"`
	BaseAmount    decimal.Decimal `json:"base_amount"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
	CGSTAmount    decimal.Decimal `json:"cgst_amount"`
	SGSTAmount    decimal.Decimal `json:"sgst_amount"`
	IGSTAmount    decimal.Decimal `json:"igst_amount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	FinalAmount   decimal.Decimal `json:"final_amount"`
	CreatedAt     string          `json:"created_at"`
}

// --- Interface ---

type InvoiceService interface {
	// CreateFromOrder issues the GST invoice for an approved, fully paid
	// order. One invoice per order; repeats are rejected.
	CreateFromOrder(ctx context.Context, actorID string, req CreateInvoiceRequest) (*InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error)
	ListInvoices(ctx context.Context, page, limit int) ([]InvoiceResponse, int64, error)
}

type invoiceService struct {
	repo        repository.InvoiceRepository
	orderRepo   repository.OrderRepository
	counterRepo repository.CounterRepository
	txManager   repository.TransactionManager
	company     config.CompanyConfig
	audit       AuditService
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	counterRepo repository.CounterRepository,
	txManager repository.TransactionManager,
	company config.CompanyConfig,
	audit AuditService,
) InvoiceService {
	return &invoiceService{
		repo:        repo,
		orderRepo:   orderRepo,
		counterRepo: counterRepo,
		txManager:   txManager,
		company:     company,
		audit:       audit,
	}
}

// --- Implementation ---

func toInvoiceResponse(invoice *model.Invoice) *InvoiceResponse {
	res := &InvoiceResponse{
		ID:            invoice.ID.String(),
		InvoiceNumber: invoice.InvoiceNumber,
		OrderID:       invoice.OrderID.String(),
		BuyerName:     invoice.BuyerName,
		BuyerState:    invoice.BuyerState,
		BuyerGSTIN:    invoice.BuyerGSTIN,
		IntraState:    invoice.IntraState,
		BaseAmount:    invoice.BaseAmount,
		GSTRate:       invoice.GSTRate,
		CGSTAmount:    invoice.CGSTAmount,
		SGSTAmount:    invoice.SGSTAmount,
		IGSTAmount:    invoice.IGSTAmount,
		TotalTax:      invoice.TotalTax,
		FinalAmount:   invoice.FinalAmount,
		CreatedAt:     invoice.CreatedAt.Format(time.RFC3339),
	}
	if invoice.Order != nil {
		res.OrderNumber = invoice.Order.OrderNumber
	}
	return res
}

func (s *invoiceService) CreateFromOrder(ctx context.Context, actorID string, req CreateInvoiceRequest) (*InvoiceResponse, error) {
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
		return nil, errors.New("invoices require an approved order")
	}
	if order.PaymentStatus != model.PaymentStatusPaid {
		return nil, errors.New("invoices require a fully paid order")
	}

	if _, err := s.repo.GetByOrderID(ctx, orderID); err == nil {
		return nil, errors.New("order already has an invoice")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing invoice: %w", err)
	}

	sameState := gst.SameState(order.CustomerState, s.company.HomeState)
	breakdown, err := gst.Compute(order.BaseAmount, order.GSTRate, sameState)
	if err != nil {
		return nil, err
	}

	var createdBy *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		createdBy = &parsed
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		seq, err := s.counterRepo.Next(txCtx, repository.CounterInvoices)
		if err != nil {
			return err
		}

		invoice = &model.Invoice{
			InvoiceNumber: fmt.Sprintf("INV-%06d", seq),
			OrderID:       order.ID,
			BuyerName:     order.LegalName,
			BuyerState:    order.CustomerState,
			BuyerGSTIN:    order.CustomerGSTIN,
			IntraState:    sameState,
			BaseAmount:    order.BaseAmount,
			GSTRate:       order.GSTRate,
			CGSTAmount:    breakdown.CGST,
			SGSTAmount:    breakdown.SGST,
			IGSTAmount:    breakdown.IGST,
			TotalTax:      breakdown.Total,
			FinalAmount:   breakdown.FinalAmount,
			CreatedBy:     createdBy,
		}
		return s.repo.Create(txCtx, invoice)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionCreateInvoice, invoice.ID.String(), invoice.InvoiceNumber,
		map[string]interface{}{
			"order_id":     order.ID.String(),
			"intra_state":  sameState,
			"final_amount": breakdown.FinalAmount.String(),
		})

	invoice.Order = order
	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice id: %w", err)
	}
	invoice, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invoice not found")
		}
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}
	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, page, limit int) ([]InvoiceResponse, int64, error) {
	invoices, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	res := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		res = append(res, *toInvoiceResponse(&invoices[i]))
	}
	return res, total, nil
}
