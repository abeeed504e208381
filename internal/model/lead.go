package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LeadStatus values of the sales pipeline.
const (
	LeadStatusUnassigned         = "unassigned"
	LeadStatusAssigned           = "assigned"
	LeadStatusContacted          = "contacted"
	LeadStatusJunk               = "junk"
	LeadStatusQualified          = "qualified"
	LeadStatusHot                = "hot"
	LeadStatusWarm               = "warm"
	LeadStatusCold               = "cold"
	LeadStatusConverted          = "converted"
	LeadStatusDropped            = "dropped"
	LeadStatusPaymentReceived    = "payment_received"
	LeadStatusPostServicePayment = "post_service_payment"
	LeadStatusService            = "service"
	LeadStatusDelivery           = "delivery"
	LeadStatusCompleted          = "completed"
)

// ErrInvalidTransition is returned when a status change is not an edge of
// the lifecycle graph. The lead is left untouched.
var ErrInvalidTransition = errors.New("invalid lead status transition")

// Lead is a sales prospect moving through the pipeline. Status is only ever
// changed through StatusGraph.Apply; nothing else writes the field.
type Lead struct {
	ID                  uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                string            `gorm:"type:varchar(255);not null" json:"name"`
	Email               string            `gorm:"type:varchar(255);index" json:"email"`
	Phone               string            `gorm:"type:varchar(20)" json:"phone"`
	Company             string            `gorm:"type:varchar(255)" json:"company"`
	LeadForEvent        string            `gorm:"type:varchar(255)" json:"lead_for_event"`
	NumberOfPeople      int               `gorm:"type:int;default:1" json:"number_of_people"`
	EventStartDate      *time.Time        `gorm:"type:date" json:"event_start_date"`
	EventEndDate        *time.Time        `gorm:"type:date" json:"event_end_date"`
	LocationPreference  string            `gorm:"type:varchar(255)" json:"location_preference"`
	AnnualIncomeBracket string            `gorm:"type:varchar(100)" json:"annual_income_bracket"`
	Source              string            `gorm:"type:varchar(100)" json:"source"`
	Status              string            `gorm:"type:varchar(30);not null;index" json:"status"`
	AssignedTo          *uuid.UUID        `gorm:"type:uuid;index" json:"assigned_to"`
	Assignee            *User             `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	FollowUpDate        *time.Time        `gorm:"index" json:"follow_up_date"`
	Notes               string            `gorm:"type:text" json:"notes"`
	StatusTimestamps    datatypes.JSONMap `gorm:"type:jsonb" json:"status_timestamps"` // status -> entered-at (RFC3339)
	CreatedBy           *uuid.UUID        `gorm:"type:uuid" json:"created_by"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	DeletedAt           gorm.DeletedAt    `gorm:"index" json:"-"`
}

// StatusGraph is the directed graph of permitted lead status transitions.
// Immutable after construction; one shared instance serves all callers.
type StatusGraph struct {
	next map[string][]string
}

// DefaultStatusGraph returns the canonical pipeline graph.
func DefaultStatusGraph() *StatusGraph {
	return &StatusGraph{next: map[string][]string{
		LeadStatusUnassigned:         {LeadStatusAssigned},
		LeadStatusAssigned:           {LeadStatusContacted},
		LeadStatusContacted:          {LeadStatusJunk, LeadStatusQualified},
		LeadStatusJunk:               {},
		LeadStatusQualified:          {LeadStatusHot, LeadStatusWarm, LeadStatusCold},
		LeadStatusHot:                {LeadStatusConverted, LeadStatusDropped},
		LeadStatusWarm:               {LeadStatusConverted, LeadStatusDropped},
		LeadStatusCold:               {LeadStatusConverted, LeadStatusDropped},
		LeadStatusConverted:          {LeadStatusPaymentReceived, LeadStatusPostServicePayment},
		LeadStatusDropped:            {},
		LeadStatusPaymentReceived:    {LeadStatusService},
		LeadStatusPostServicePayment: {LeadStatusService},
		LeadStatusService:            {LeadStatusDelivery},
		LeadStatusDelivery:           {LeadStatusCompleted},
		LeadStatusCompleted:          {},
	}}
}

// AllowedNext returns the statuses reachable from status. An unknown status
// yields an empty set and is therefore treated as terminal.
func (g *StatusGraph) AllowedNext(status string) []string {
	edges := g.next[status]
	out := make([]string, len(edges))
	copy(out, edges)
	return out
}

// CanTransition reports whether from -> to is an edge of the graph.
func (g *StatusGraph) CanTransition(from, to string) bool {
	for _, next := range g.next[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether status has no outgoing edges. Unknown statuses
// count as terminal.
func (g *StatusGraph) IsTerminal(status string) bool {
	return len(g.next[status]) == 0
}

// Statuses returns every node of the graph, in no particular order.
func (g *StatusGraph) Statuses() []string {
	out := make([]string, 0, len(g.next))
	for status := range g.next {
		out = append(out, status)
	}
	return out
}

// IsKnownStatus reports whether status is a node of the graph.
func (g *StatusGraph) IsKnownStatus(status string) bool {
	_, ok := g.next[status]
	return ok
}

// Apply moves lead to the given status, recording when it entered it.
// Fails with ErrInvalidTransition and leaves the lead unchanged when the
// move is not a declared edge.
func (g *StatusGraph) Apply(lead *Lead, to string, now time.Time) error {
	if !g.CanTransition(lead.Status, to) {
		return ErrInvalidTransition
	}

	if lead.StatusTimestamps == nil {
		lead.StatusTimestamps = datatypes.JSONMap{}
	}
	lead.Status = to
	lead.StatusTimestamps[to] = now.UTC().Format(time.RFC3339)
	return nil
}

// InitialLeadStatus returns the status a freshly created lead starts in:
// assigned when it already has an assignee, unassigned otherwise.
func InitialLeadStatus(hasAssignee bool) string {
	if hasAssignee {
		return LeadStatusAssigned
	}
	return LeadStatusUnassigned
}
