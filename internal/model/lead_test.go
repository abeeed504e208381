package model_test

import (
	"errors"
	"sort"
	"testing"
	"time"

	"crm-backend/internal/model"
)

func sorted(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

func equalSets(a, b []string) bool {
	a, b = sorted(a), sorted(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAllowedNext_FullGraph(t *testing.T) {
	g := model.DefaultStatusGraph()

	cases := []struct {
		status string
		next   []string
	}{
		{model.LeadStatusUnassigned, []string{model.LeadStatusAssigned}},
		{model.LeadStatusAssigned, []string{model.LeadStatusContacted}},
		{model.LeadStatusContacted, []string{model.LeadStatusJunk, model.LeadStatusQualified}},
		{model.LeadStatusJunk, nil},
		{model.LeadStatusQualified, []string{model.LeadStatusHot, model.LeadStatusWarm, model.LeadStatusCold}},
		{model.LeadStatusHot, []string{model.LeadStatusConverted, model.LeadStatusDropped}},
		{model.LeadStatusWarm, []string{model.LeadStatusConverted, model.LeadStatusDropped}},
		{model.LeadStatusCold, []string{model.LeadStatusConverted, model.LeadStatusDropped}},
		{model.LeadStatusConverted, []string{model.LeadStatusPaymentReceived, model.LeadStatusPostServicePayment}},
		{model.LeadStatusDropped, nil},
		{model.LeadStatusPaymentReceived, []string{model.LeadStatusService}},
		{model.LeadStatusPostServicePayment, []string{model.LeadStatusService}},
		{model.LeadStatusService, []string{model.LeadStatusDelivery}},
		{model.LeadStatusDelivery, []string{model.LeadStatusCompleted}},
		{model.LeadStatusCompleted, nil},
	}

	for _, tc := range cases {
		got := g.AllowedNext(tc.status)
		if !equalSets(got, tc.next) {
			t.Errorf("AllowedNext(%s) = %v, want %v", tc.status, got, tc.next)
		}
	}
}

func TestAllowedNext_UnknownStatusIsTerminal(t *testing.T) {
	g := model.DefaultStatusGraph()

	if got := g.AllowedNext("archived"); len(got) != 0 {
		t.Errorf("AllowedNext(archived) = %v, want empty", got)
	}
	if !g.IsTerminal("archived") {
		t.Error("unknown status should be terminal")
	}
	if g.IsKnownStatus("archived") {
		t.Error("archived should not be a known status")
	}
}

// CanTransition must agree with membership in AllowedNext across the whole
// status space, including self-loops.
func TestCanTransition_MatchesAllowedNext(t *testing.T) {
	g := model.DefaultStatusGraph()

	all := []string{
		model.LeadStatusUnassigned, model.LeadStatusAssigned, model.LeadStatusContacted,
		model.LeadStatusJunk, model.LeadStatusQualified, model.LeadStatusHot,
		model.LeadStatusWarm, model.LeadStatusCold, model.LeadStatusConverted,
		model.LeadStatusDropped, model.LeadStatusPaymentReceived,
		model.LeadStatusPostServicePayment, model.LeadStatusService,
		model.LeadStatusDelivery, model.LeadStatusCompleted,
	}

	for _, from := range all {
		next := g.AllowedNext(from)
		member := make(map[string]bool, len(next))
		for _, s := range next {
			member[s] = true
		}

		for _, to := range all {
			if got := g.CanTransition(from, to); got != member[to] {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, member[to])
			}
		}
		if g.CanTransition(from, from) {
			t.Errorf("CanTransition(%s, %s) self-loop should be false", from, from)
		}
	}
}

func TestApply_ValidTransition(t *testing.T) {
	g := model.DefaultStatusGraph()
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	lead := &model.Lead{Status: model.LeadStatusQualified}
	if err := g.Apply(lead, model.LeadStatusHot, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lead.Status != model.LeadStatusHot {
		t.Errorf("status = %s, want hot", lead.Status)
	}
	if got := lead.StatusTimestamps[model.LeadStatusHot]; got != "2026-03-14T10:30:00Z" {
		t.Errorf("entered-at timestamp = %v, want 2026-03-14T10:30:00Z", got)
	}
}

func TestApply_InvalidTransitionLeavesLeadUnchanged(t *testing.T) {
	g := model.DefaultStatusGraph()

	lead := &model.Lead{Status: model.LeadStatusQualified}
	err := g.Apply(lead, model.LeadStatusConverted, time.Now())
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}

	if lead.Status != model.LeadStatusQualified {
		t.Errorf("status = %s, want qualified (unchanged)", lead.Status)
	}
	if len(lead.StatusTimestamps) != 0 {
		t.Errorf("timestamps recorded on failed transition: %v", lead.StatusTimestamps)
	}
}

func TestApply_TerminalStatusLocked(t *testing.T) {
	g := model.DefaultStatusGraph()

	for _, terminal := range []string{model.LeadStatusJunk, model.LeadStatusDropped, model.LeadStatusCompleted} {
		lead := &model.Lead{Status: terminal}
		if err := g.Apply(lead, model.LeadStatusAssigned, time.Now()); !errors.Is(err, model.ErrInvalidTransition) {
			t.Errorf("Apply from terminal %s: got %v, want ErrInvalidTransition", terminal, err)
		}
	}
}

func TestApply_AccumulatesTimestamps(t *testing.T) {
	g := model.DefaultStatusGraph()
	base := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	lead := &model.Lead{Status: model.LeadStatusUnassigned}
	for i, to := range []string{model.LeadStatusAssigned, model.LeadStatusContacted, model.LeadStatusQualified} {
		if err := g.Apply(lead, to, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("Apply(%s): %v", to, err)
		}
	}

	if len(lead.StatusTimestamps) != 3 {
		t.Fatalf("expected 3 recorded timestamps, got %d", len(lead.StatusTimestamps))
	}
	if got := lead.StatusTimestamps[model.LeadStatusContacted]; got != "2026-01-02T10:00:00Z" {
		t.Errorf("contacted entered-at = %v, want 2026-01-02T10:00:00Z", got)
	}
}

func TestInitialLeadStatus(t *testing.T) {
	if got := model.InitialLeadStatus(false); got != model.LeadStatusUnassigned {
		t.Errorf("without assignee: %s, want unassigned", got)
	}
	if got := model.InitialLeadStatus(true); got != model.LeadStatusAssigned {
		t.Errorf("with assignee: %s, want assigned", got)
	}
}
