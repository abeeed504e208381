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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrAmbiguousTransition is returned by the progress quick action when the
// current status offers more than one next status and the caller must pick.
var ErrAmbiguousTransition = errors.New("multiple next statuses available, an explicit choice is required")

// --- DTOs ---

type CreateLeadRequest struct {
	Name                string `json:"name" binding:"required"`
	Email               string `json:"email" binding:"omitempty,email"`
	Phone               string `json:"phone"`
	Company             string `json:"company"`
	LeadForEvent        string `json:"lead_for_event"`
	NumberOfPeople      int    `json:"number_of_people" binding:"omitempty,gt=0"`
	EventStartDate      string `json:"event_start_date"` // YYYY-MM-DD
	EventEndDate        string `json:"event_end_date"`   // YYYY-MM-DD
	LocationPreference  string `json:"location_preference"`
	AnnualIncomeBracket string `json:"annual_income_bracket"`
	Source              string `json:"source"`
	AssignedTo          string `json:"assigned_to"` // User UUID, optional
	FollowUpDate        string `json:"follow_up_date"`
	Notes               string `json:"notes"`
}

type UpdateLeadRequest struct {
	Name                string `json:"name"`
	Email               string `json:"email" binding:"omitempty,email"`
	Phone               string `json:"phone"`
	Company             string `json:"company"`
	LeadForEvent        string `json:"lead_for_event"`
	NumberOfPeople      int    `json:"number_of_people" binding:"omitempty,gt=0"`
	LocationPreference  string `json:"location_preference"`
	AnnualIncomeBracket string `json:"annual_income_bracket"`
	Source              string `json:"source"`
	FollowUpDate        string `json:"follow_up_date"`
	Notes               string `json:"notes"`
}

type TransitionLeadRequest struct {
	Status string `json:"status" binding:"required"`
}

type AssignLeadRequest struct {
	AssignedTo string `json:"assigned_to" binding:"required,uuid"`
}

type LeadListFilter struct {
	Status     string
	AssignedTo string
	Source     string
	Page       int
	Limit      int
}

type LeadResponse struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Email               string            `json:"email"`
	Phone               string            `json:"phone"`
	Company             string            `json:"company"`
	LeadForEvent        string            `json:"lead_for_event"`
	NumberOfPeople      int               `json:"number_of_people"`
	EventStartDate      *string           `json:"event_start_date"`
	EventEndDate        *string           `json:"event_end_date"`
	LocationPreference  string            `json:"location_preference"`
	AnnualIncomeBracket string            `json:"annual_income_bracket"`
	Source              string            `json:"source"`
	Status              string            `json:"status"`
	AllowedNext         []string          `json:"allowed_next"`
	AssignedTo          *string           `json:"assigned_to"`
	AssigneeName        string            `json:"assignee_name,omitempty"`
	FollowUpDate        *string           `json:"follow_up_date"`
	Notes               string            `json:"notes"`
	StatusTimestamps    map[string]string `json:"status_timestamps"`
	CreatedAt           string            `json:"created_at"`
}

// --- Interface ---

type LeadService interface {
	CreateLead(ctx context.Context, actorID string, req CreateLeadRequest) (*LeadResponse, error)
	GetLead(ctx context.Context, id string) (*LeadResponse, error)
	ListLeads(ctx context.Context, filter LeadListFilter) ([]LeadResponse, int64, error)
	UpdateLead(ctx context.Context, actorID string, id string, req UpdateLeadRequest) (*LeadResponse, error)
	DeleteLead(ctx context.Context, actorID string, id string) error
	AssignLead(ctx context.Context, actorID string, id string, req AssignLeadRequest) (*LeadResponse, error)
	AllowedNext(ctx context.Context, id string) (string, []string, error)
	// TransitionLead moves the lead along a declared edge of the lifecycle
	// graph. Fails with model.ErrInvalidTransition on anything else.
	TransitionLead(ctx context.Context, actorID string, id string, to string) (*LeadResponse, error)
	// ProgressLead auto-applies the single next status. Fails with
	// ErrAmbiguousTransition when there is more than one option and with
	// model.ErrInvalidTransition when the lead is terminal.
	ProgressLead(ctx context.Context, actorID string, id string) (*LeadResponse, error)
}

type leadService struct {
	repo  repository.LeadRepository
	graph *model.StatusGraph
	audit AuditService
	hub   *ws.Hub
}

func NewLeadService(repo repository.LeadRepository, graph *model.StatusGraph, audit AuditService, hub *ws.Hub) LeadService {
	return &leadService{repo: repo, graph: graph, audit: audit, hub: hub}
}

// --- Implementation ---

func (s *leadService) toResponse(lead *model.Lead) *LeadResponse {
	res := &LeadResponse{
		ID:                  lead.ID.String(),
		Name:                lead.Name,
		Email:               lead.Email,
		Phone:               lead.Phone,
		Company:             lead.Company,
		LeadForEvent:        lead.LeadForEvent,
		NumberOfPeople:      lead.NumberOfPeople,
		LocationPreference:  lead.LocationPreference,
		AnnualIncomeBracket: lead.AnnualIncomeBracket,
		Source:              lead.Source,
		Status:              lead.Status,
		AllowedNext:         s.graph.AllowedNext(lead.Status),
		Notes:               lead.Notes,
		StatusTimestamps:    map[string]string{},
		CreatedAt:           lead.CreatedAt.Format(time.RFC3339),
	}

	if lead.EventStartDate != nil {
		d := lead.EventStartDate.Format("2006-01-02")
		res.EventStartDate = &d
	}
	if lead.EventEndDate != nil {
		d := lead.EventEndDate.Format("2006-01-02")
		res.EventEndDate = &d
	}
	if lead.FollowUpDate != nil {
		d := lead.FollowUpDate.Format("2006-01-02")
		res.FollowUpDate = &d
	}
	if lead.AssignedTo != nil {
		id := lead.AssignedTo.String()
		res.AssignedTo = &id
	}
	if lead.Assignee != nil {
		res.AssigneeName = lead.Assignee.Name
	}
	for status, ts := range lead.StatusTimestamps {
		if v, ok := ts.(string); ok {
			res.StatusTimestamps[status] = v
		}
	}

	return res
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}
	return &t, nil
}

func (s *leadService) CreateLead(ctx context.Context, actorID string, req CreateLeadRequest) (*LeadResponse, error) {
	var assignedTo *uuid.UUID
	if req.AssignedTo != "" {
		parsed, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("invalid assignee id: %w", err)
		}
		assignedTo = &parsed
	}

	eventStart, err := parseDate(req.EventStartDate)
	if err != nil {
		return nil, err
	}
	eventEnd, err := parseDate(req.EventEndDate)
	if err != nil {
		return nil, err
	}
	followUp, err := parseDate(req.FollowUpDate)
	if err != nil {
		return nil, err
	}

	numberOfPeople := req.NumberOfPeople
	if numberOfPeople == 0 {
		numberOfPeople = 1
	}

	now := time.Now()
	status := model.InitialLeadStatus(assignedTo != nil)

	lead := &model.Lead{
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		Company:             req.Company,
		LeadForEvent:        req.LeadForEvent,
		NumberOfPeople:      numberOfPeople,
		EventStartDate:      eventStart,
		EventEndDate:        eventEnd,
		LocationPreference:  req.LocationPreference,
		AnnualIncomeBracket: req.AnnualIncomeBracket,
		Source:              req.Source,
		Status:              status,
		AssignedTo:          assignedTo,
		FollowUpDate:        followUp,
		Notes:               req.Notes,
		StatusTimestamps:    datatypes.JSONMap{status: now.UTC().Format(time.RFC3339)},
	}

	if actorID != "" {
		if parsed, err := uuid.Parse(actorID); err == nil {
			lead.CreatedBy = &parsed
		}
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionCreateLead, lead.ID.String(), lead.Name,
		map[string]string{"status": lead.Status, "source": lead.Source})

	return s.toResponse(lead), nil
}

func (s *leadService) getLead(ctx context.Context, id string) (*model.Lead, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid lead id: %w", err)
	}
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("lead not found")
		}
		return nil, fmt.Errorf("failed to fetch lead: %w", err)
	}
	return lead, nil
}

func (s *leadService) GetLead(ctx context.Context, id string) (*LeadResponse, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(lead), nil
}

func (s *leadService) ListLeads(ctx context.Context, filter LeadListFilter) ([]LeadResponse, int64, error) {
	page, limit := filter.Page, filter.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	leads, total, err := s.repo.List(ctx, repository.LeadFilter{
		Status:     filter.Status,
		AssignedTo: filter.AssignedTo,
		Source:     filter.Source,
	}, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch leads: %w", err)
	}

	res := make([]LeadResponse, 0, len(leads))
	for i := range leads {
		res = append(res, *s.toResponse(&leads[i]))
	}
	return res, total, nil
}

func (s *leadService) UpdateLead(ctx context.Context, actorID string, id string, req UpdateLeadRequest) (*LeadResponse, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		lead.Name = req.Name
	}
	if req.Email != "" {
		lead.Email = req.Email
	}
	if req.Phone != "" {
		lead.Phone = req.Phone
	}
	if req.Company != "" {
		lead.Company = req.Company
	}
	if req.LeadForEvent != "" {
		lead.LeadForEvent = req.LeadForEvent
	}
	if req.NumberOfPeople > 0 {
		lead.NumberOfPeople = req.NumberOfPeople
	}
	if req.LocationPreference != "" {
		lead.LocationPreference = req.LocationPreference
	}
	if req.AnnualIncomeBracket != "" {
		lead.AnnualIncomeBracket = req.AnnualIncomeBracket
	}
	if req.Source != "" {
		lead.Source = req.Source
	}
	if req.FollowUpDate != "" {
		followUp, err := parseDate(req.FollowUpDate)
		if err != nil {
			return nil, err
		}
		lead.FollowUpDate = followUp
	}
	if req.Notes != "" {
		lead.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionUpdateLead, lead.ID.String(), lead.Name, req)

	return s.toResponse(lead), nil
}

func (s *leadService) DeleteLead(ctx context.Context, actorID string, id string) error {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, lead.ID); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionDeleteLead, id, lead.Name, map[string]string{"deleted_id": id})
	return nil
}

func (s *leadService) AssignLead(ctx context.Context, actorID string, id string, req AssignLeadRequest) (*LeadResponse, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return nil, err
	}

	assigneeID, err := uuid.Parse(req.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("invalid assignee id: %w", err)
	}

	lead.AssignedTo = &assigneeID

	// A first assignment also moves the pipeline forward
	if lead.Status == model.LeadStatusUnassigned {
		if err := s.graph.Apply(lead, model.LeadStatusAssigned, time.Now()); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to assign lead: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionAssignLead, lead.ID.String(), lead.Name,
		map[string]string{"assigned_to": req.AssignedTo})
	s.hub.BroadcastEvent("lead_assigned", map[string]interface{}{
		"lead_id":     lead.ID.String(),
		"assigned_to": req.AssignedTo,
		"status":      lead.Status,
	})

	return s.toResponse(lead), nil
}

func (s *leadService) AllowedNext(ctx context.Context, id string) (string, []string, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return lead.Status, s.graph.AllowedNext(lead.Status), nil
}

func (s *leadService) TransitionLead(ctx context.Context, actorID string, id string, to string) (*LeadResponse, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.applyAndPersist(ctx, actorID, lead, to)
}

func (s *leadService) ProgressLead(ctx context.Context, actorID string, id string) (*LeadResponse, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return nil, err
	}

	next := s.graph.AllowedNext(lead.Status)
	switch len(next) {
	case 0:
		return nil, model.ErrInvalidTransition
	case 1:
		return s.applyAndPersist(ctx, actorID, lead, next[0])
	default:
		return nil, ErrAmbiguousTransition
	}
}

// applyAndPersist runs the graph transition and stores it with an
// optimistic guard on the prior status so concurrent transitions of the
// same lead cannot both land.
func (s *leadService) applyAndPersist(ctx context.Context, actorID string, lead *model.Lead, to string) (*LeadResponse, error) {
	fromStatus := lead.Status
	if err := s.graph.Apply(lead, to, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatusGuarded(ctx, lead, fromStatus); err != nil {
		if errors.Is(err, repository.ErrStaleLead) {
			return nil, fmt.Errorf("lead status changed concurrently, reload and retry: %w", err)
		}
		return nil, fmt.Errorf("failed to persist lead transition: %w", err)
	}

	s.audit.Record(ctx, actorID, model.ActionTransitionLead, lead.ID.String(), lead.Name,
		map[string]string{"from": fromStatus, "to": to})
	s.hub.BroadcastEvent("lead_status_changed", map[string]interface{}{
		"lead_id": lead.ID.String(),
		"from":    fromStatus,
		"to":      to,
	})

	return s.toResponse(lead), nil
}
