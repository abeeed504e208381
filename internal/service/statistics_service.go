package service

import (
	"context"
	"fmt"

	"crm-backend/internal/model"
	"crm-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type DashboardStats struct {
	TotalLeads        int64 `json:"total_leads"`
	ActiveLeads       int64 `json:"active_leads"`
	ConvertedLeads    int64 `json:"converted_leads"`
	PendingApprovals  int64 `json:"pending_approvals"`
	PendingDeliveries int64 `json:"pending_deliveries"`
	AvailableBlocks   int64 `json:"available_inventory_blocks"`
}

type RevenueStats struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalTax         decimal.Decimal `json:"total_tax"`
	CollectedAdvance decimal.Decimal `json:"collected_advance"`
}

// --- Interface ---

type StatisticsService interface {
	// GetDashboard returns the operational counters shown on the landing
	// dashboard. Gated by dashboard.read.
	GetDashboard(ctx context.Context) (*DashboardStats, error)
	// GetRevenue aggregates invoice and payment totals. Gated by
	// finance.read.
	GetRevenue(ctx context.Context) (*RevenueStats, error)
}

type statisticsService struct {
	leadRepo      repository.LeadRepository
	orderRepo     repository.OrderRepository
	deliveryRepo  repository.DeliveryRepository
	invoiceRepo   repository.InvoiceRepository
	inventoryRepo repository.InventoryRepository
	graph         *model.StatusGraph
}

func NewStatisticsService(
	leadRepo repository.LeadRepository,
	orderRepo repository.OrderRepository,
	deliveryRepo repository.DeliveryRepository,
	invoiceRepo repository.InvoiceRepository,
	inventoryRepo repository.InventoryRepository,
	graph *model.StatusGraph,
) StatisticsService {
	return &statisticsService{
		leadRepo:      leadRepo,
		orderRepo:     orderRepo,
		deliveryRepo:  deliveryRepo,
		invoiceRepo:   invoiceRepo,
		inventoryRepo: inventoryRepo,
		graph:         graph,
	}
}

// --- Implementation ---

// activeStatuses are the non-terminal lifecycle statuses.
func (s *statisticsService) activeStatuses() []string {
	var active []string
	for _, status := range s.graph.Statuses() {
		if !s.graph.IsTerminal(status) {
			active = append(active, status)
		}
	}
	return active
}

func (s *statisticsService) GetDashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if stats.TotalLeads, err = s.leadRepo.CountByStatuses(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	if stats.ActiveLeads, err = s.leadRepo.CountByStatuses(ctx, s.activeStatuses()); err != nil {
		return nil, fmt.Errorf("failed to count active leads: %w", err)
	}
	if stats.ConvertedLeads, err = s.leadRepo.CountByStatuses(ctx, []string{model.LeadStatusConverted}); err != nil {
		return nil, fmt.Errorf("failed to count converted leads: %w", err)
	}
	if stats.PendingApprovals, err = s.orderRepo.CountByStatus(ctx, model.OrderStatusPendingApproval); err != nil {
		return nil, fmt.Errorf("failed to count pending approvals: %w", err)
	}
	if stats.PendingDeliveries, err = s.deliveryRepo.CountByStatus(ctx, model.DeliveryStatusScheduled); err != nil {
		return nil, fmt.Errorf("failed to count pending deliveries: %w", err)
	}
	if stats.AvailableBlocks, err = s.inventoryRepo.CountAvailable(ctx); err != nil {
		return nil, fmt.Errorf("failed to count inventory: %w", err)
	}

	return stats, nil
}

func (s *statisticsService) GetRevenue(ctx context.Context) (*RevenueStats, error) {
	stats := &RevenueStats{}

	var err error
	if stats.TotalRevenue, err = s.invoiceRepo.SumFinalAmounts(ctx); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if stats.TotalTax, err = s.invoiceRepo.SumTotalTax(ctx); err != nil {
		return nil, fmt.Errorf("failed to sum tax: %w", err)
	}
	if stats.CollectedAdvance, err = s.orderRepo.SumAdvanceByPaymentStatuses(ctx,
		[]string{model.PaymentStatusPartial, model.PaymentStatusPaid}); err != nil {
		return nil, fmt.Errorf("failed to sum advances: %w", err)
	}

	return stats, nil
}
