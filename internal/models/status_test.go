package models

import (
	"strings"
	"testing"
)

var allStatuses = []ApplicationStatus{
	StatusApplied, StatusWithdrawn, StatusShortlisted, StatusOnHold,
	StatusInterview, StatusRejected, StatusHired,
}

// expectedEdges mirrors the documented transition graph; the test asserts
// the table against it pair by pair so an accidental edit to either shows up.
var expectedEdges = map[string]bool{
	"none->Applied":          true,
	"Applied->Withdrawn":     true,
	"Applied->Shortlisted":   true,
	"Shortlisted->On-hold":   true,
	"Shortlisted->Interview": true,
	"Shortlisted->Rejected":  true,
	"On-hold->Interview":     true,
	"On-hold->Rejected":      true,
	"Interview->Rejected":    true,
	"Interview->Hired":       true,
}

func TestCanTransition_AllPairs(t *testing.T) {
	froms := []*ApplicationStatus{nil}
	for i := range allStatuses {
		froms = append(froms, &allStatuses[i])
	}

	for _, from := range froms {
		for _, to := range allStatuses {
			key := StatusLabel(from) + "->" + string(to)
			got := CanTransition(from, to)
			if got != expectedEdges[key] {
				t.Errorf("CanTransition(%s) = %v, want %v", key, got, expectedEdges[key])
			}
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[ApplicationStatus]bool{
		StatusWithdrawn: true,
		StatusRejected:  true,
		StatusHired:     true,
	}
	for _, s := range allStatuses {
		if IsTerminal(s) != terminal[s] {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, IsTerminal(s), terminal[s])
		}
	}
}

func TestCanApply(t *testing.T) {
	if !CanApply(nil) {
		t.Error("apply from never-applied should be allowed")
	}
	for _, s := range allStatuses {
		s := s
		want := s == StatusWithdrawn
		if CanApply(&s) != want {
			t.Errorf("CanApply(%s) = %v, want %v", s, CanApply(&s), want)
		}
	}
}

func TestCanWithdraw(t *testing.T) {
	if CanWithdraw(nil) {
		t.Error("withdraw with no application should be rejected")
	}
	withdrawable := map[ApplicationStatus]bool{
		StatusApplied:     true,
		StatusShortlisted: true,
		StatusOnHold:      true,
		StatusInterview:   true,
	}
	for _, s := range allStatuses {
		s := s
		if CanWithdraw(&s) != withdrawable[s] {
			t.Errorf("CanWithdraw(%s) = %v, want %v", s, CanWithdraw(&s), withdrawable[s])
		}
	}
}

func TestActionForStatus(t *testing.T) {
	want := map[ApplicationStatus]AuditAction{
		StatusApplied:     ActionApplied,
		StatusWithdrawn:   ActionWithdrawn,
		StatusShortlisted: ActionShortlisted,
		StatusOnHold:      ActionOnHold,
		StatusInterview:   ActionInterview,
		StatusRejected:    ActionRejected,
		StatusHired:       ActionHired,
	}
	for s, a := range want {
		if got := ActionForStatus(s); got != a {
			t.Errorf("ActionForStatus(%s) = %s, want %s", s, got, a)
		}
	}
}

func TestTransitionError_IncludesPair(t *testing.T) {
	from := StatusApplied
	msg := TransitionError(&from, StatusHired)
	if !strings.Contains(msg, "Applied") || !strings.Contains(msg, "Hired") {
		t.Errorf("message %q should name both statuses", msg)
	}

	msg = TransitionError(nil, StatusInterview)
	if !strings.Contains(msg, "none") || !strings.Contains(msg, "Interview") {
		t.Errorf("message %q should name the nil state and the target", msg)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range allStatuses {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false", s)
		}
	}
	if ValidStatus("Offer") {
		t.Error("Offer is not a member of the status enum")
	}
}
