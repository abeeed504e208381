package service

import (
	"context"
	"errors"
	"testing"

	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	ws "crm-backend/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeLeadRepo struct {
	leads map[uuid.UUID]*model.Lead
	// staleOnNextGuard makes the next guarded update lose the race.
	staleOnNextGuard bool
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[uuid.UUID]*model.Lead)}
}

func (f *fakeLeadRepo) Create(_ context.Context, lead *model.Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	copied := *lead
	f.leads[lead.ID] = &copied
	return nil
}

func (f *fakeLeadRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *lead
	return &copied, nil
}

func (f *fakeLeadRepo) List(_ context.Context, _ repository.LeadFilter, _, _ int) ([]model.Lead, int64, error) {
	out := make([]model.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		out = append(out, *lead)
	}
	return out, int64(len(out)), nil
}

func (f *fakeLeadRepo) Update(_ context.Context, lead *model.Lead) error {
	copied := *lead
	f.leads[lead.ID] = &copied
	return nil
}

func (f *fakeLeadRepo) UpdateStatusGuarded(_ context.Context, lead *model.Lead, fromStatus string) error {
	if f.staleOnNextGuard {
		f.staleOnNextGuard = false
		return repository.ErrStaleLead
	}
	stored, ok := f.leads[lead.ID]
	if !ok || stored.Status != fromStatus {
		return repository.ErrStaleLead
	}
	stored.Status = lead.Status
	stored.StatusTimestamps = lead.StatusTimestamps
	return nil
}

func (f *fakeLeadRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.leads, id)
	return nil
}

func (f *fakeLeadRepo) CountByStatuses(_ context.Context, _ []string) (int64, error) {
	return int64(len(f.leads)), nil
}

func (f *fakeLeadRepo) ListOverdueFollowUps(_ context.Context, _ []string) ([]model.Lead, error) {
	return nil, nil
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(_ context.Context, _, action, _, _ string, _ interface{}) {
	f.actions = append(f.actions, action)
}

func (f *fakeAudit) GetAuditLogs(_ context.Context, _, _ int) ([]AuditLogResponse, int64, error) {
	return nil, 0, nil
}

func newTestLeadService(t *testing.T) (LeadService, *fakeLeadRepo, *fakeAudit) {
	t.Helper()
	repo := newFakeLeadRepo()
	audit := &fakeAudit{}
	hub := ws.NewHub()
	go hub.Run()
	return NewLeadService(repo, model.DefaultStatusGraph(), audit, hub), repo, audit
}

func TestCreateLeadInitialStatus(t *testing.T) {
	svc, _, _ := newTestLeadService(t)
	ctx := context.Background()

	unassigned, err := svc.CreateLead(ctx, uuid.NewString(), CreateLeadRequest{Name: "Acme Corp"})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if unassigned.Status != model.LeadStatusUnassigned {
		t.Errorf("status = %q, want %q", unassigned.Status, model.LeadStatusUnassigned)
	}
	if _, ok := unassigned.StatusTimestamps[model.LeadStatusUnassigned]; !ok {
		t.Error("initial status has no entered-at timestamp")
	}

	assigned, err := svc.CreateLead(ctx, uuid.NewString(), CreateLeadRequest{
		Name:       "Globex",
		AssignedTo: uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("CreateLead with assignee: %v", err)
	}
	if assigned.Status != model.LeadStatusAssigned {
		t.Errorf("status = %q, want %q", assigned.Status, model.LeadStatusAssigned)
	}
}

func TestTransitionLead(t *testing.T) {
	svc, _, audit := newTestLeadService(t)
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, uuid.NewString(), CreateLeadRequest{
		Name:       "Initech",
		AssignedTo: uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}

	got, err := svc.TransitionLead(ctx, uuid.NewString(), lead.ID, model.LeadStatusContacted)
	if err != nil {
		t.Fatalf("TransitionLead: %v", err)
	}
	if got.Status != model.LeadStatusContacted {
		t.Errorf("status = %q, want %q", got.Status, model.LeadStatusContacted)
	}
	if _, ok := got.StatusTimestamps[model.LeadStatusContacted]; !ok {
		t.Error("transition did not record an entered-at timestamp")
	}

	// Skipping ahead is not an edge
	if _, err := svc.TransitionLead(ctx, uuid.NewString(), lead.ID, model.LeadStatusConverted); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("contacted -> converted error = %v, want ErrInvalidTransition", err)
	}

	recorded := false
	for _, action := range audit.actions {
		if action == model.ActionTransitionLead {
			recorded = true
		}
	}
	if !recorded {
		t.Error("transition was not audited")
	}
}

func TestTransitionLeadStale(t *testing.T) {
	svc, repo, _ := newTestLeadService(t)
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, uuid.NewString(), CreateLeadRequest{
		Name:       "Umbrella",
		AssignedTo: uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}

	repo.staleOnNextGuard = true
	if _, err := svc.TransitionLead(ctx, uuid.NewString(), lead.ID, model.LeadStatusContacted); !errors.Is(err, repository.ErrStaleLead) {
		t.Errorf("error = %v, want ErrStaleLead", err)
	}

	// The losing writer must not have moved the stored lead
	got, err := svc.GetLead(ctx, lead.ID)
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if got.Status != model.LeadStatusAssigned {
		t.Errorf("stored status = %q, want %q after lost race", got.Status, model.LeadStatusAssigned)
	}
}

func TestProgressLead(t *testing.T) {
	svc, _, _ := newTestLeadService(t)
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, uuid.NewString(), CreateLeadRequest{
		Name:       "Wayne Enterprises",
		AssignedTo: uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}

	// assigned has exactly one next status
	got, err := svc.ProgressLead(ctx, uuid.NewString(), lead.ID)
	if err != nil {
		t.Fatalf("ProgressLead: %v", err)
	}
	if got.Status != model.LeadStatusContacted {
		t.Errorf("status = %q, want %q", got.Status, model.LeadStatusContacted)
	}

	// contacted forks to junk or qualified
	if _, err := svc.ProgressLead(ctx, uuid.NewString(), lead.ID); !errors.Is(err, ErrAmbiguousTransition) {
		t.Errorf("error = %v, want ErrAmbiguousTransition", err)
	}

	// terminal statuses cannot progress
	if _, err := svc.TransitionLead(ctx, uuid.NewString(), lead.ID, model.LeadStatusJunk); err != nil {
		t.Fatalf("TransitionLead to junk: %v", err)
	}
	if _, err := svc.ProgressLead(ctx, uuid.NewString(), lead.ID); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("error = %v, want ErrInvalidTransition on terminal", err)
	}
}

func TestAssignLeadMovesUnassigned(t *testing.T) {
	svc, _, _ := newTestLeadService(t)
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, uuid.NewString(), CreateLeadRequest{Name: "Stark Industries"})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}

	got, err := svc.AssignLead(ctx, uuid.NewString(), lead.ID, AssignLeadRequest{AssignedTo: uuid.NewString()})
	if err != nil {
		t.Fatalf("AssignLead: %v", err)
	}
	if got.Status != model.LeadStatusAssigned {
		t.Errorf("status = %q, want %q", got.Status, model.LeadStatusAssigned)
	}
	if got.AssignedTo == nil {
		t.Error("assignee not set")
	}
}
