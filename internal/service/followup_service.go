package service

import (
	"context"
	"time"

	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	ws "crm-backend/internal/websocket"
	"crm-backend/pkg/logger"

	"github.com/robfig/cron/v3"
)

// FollowUpSweeper periodically finds leads whose follow-up date has passed
// while still in a non-terminal status and nudges the dashboards about them.
type FollowUpSweeper struct {
	leadRepo repository.LeadRepository
	graph    *model.StatusGraph
	hub      *ws.Hub
	cron     *cron.Cron
}

func NewFollowUpSweeper(leadRepo repository.LeadRepository, graph *model.StatusGraph, hub *ws.Hub) *FollowUpSweeper {
	return &FollowUpSweeper{
		leadRepo: leadRepo,
		graph:    graph,
		hub:      hub,
		cron:     cron.New(),
	}
}

// Start schedules the sweep with the given cron spec (e.g. "0 9 * * *") and
// runs the scheduler in its own goroutine.
func (s *FollowUpSweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	logger.Get().WithField("schedule", spec).Info("follow-up sweep scheduled")
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (s *FollowUpSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep performs one pass. Exported so an admin endpoint or test can trigger
// it outside the schedule.
func (s *FollowUpSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var terminal []string
	for _, status := range s.graph.Statuses() {
		if s.graph.IsTerminal(status) {
			terminal = append(terminal, status)
		}
	}

	leads, err := s.leadRepo.ListOverdueFollowUps(ctx, terminal)
	if err != nil {
		logger.Get().WithError(err).Error("follow-up sweep failed")
		return
	}
	if len(leads) == 0 {
		return
	}

	overdue := make([]map[string]interface{}, 0, len(leads))
	for i := range leads {
		lead := &leads[i]
		entry := map[string]interface{}{
			"lead_id": lead.ID.String(),
			"name":    lead.Name,
			"status":  lead.Status,
		}
		if lead.FollowUpDate != nil {
			entry["follow_up_date"] = lead.FollowUpDate.Format("2006-01-02")
		}
		if lead.AssignedTo != nil {
			entry["assigned_to"] = lead.AssignedTo.String()
		}
		overdue = append(overdue, entry)
	}

	logger.Get().WithField("count", len(leads)).Info("leads with overdue follow-ups")
	s.hub.BroadcastEvent("follow_up_overdue", map[string]interface{}{
		"count": len(leads),
		"leads": overdue,
	})
}
