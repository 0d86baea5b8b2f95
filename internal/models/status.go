package models

import "fmt"

// ApplicationStatus is the pipeline stage of an application. A record with a
// nil status has never been applied (it may still be saved).
type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "Applied"
	StatusWithdrawn   ApplicationStatus = "Withdrawn"
	StatusShortlisted ApplicationStatus = "Shortlisted"
	StatusOnHold      ApplicationStatus = "On-hold"
	StatusInterview   ApplicationStatus = "Interview"
	StatusRejected    ApplicationStatus = "Rejected"
	StatusHired       ApplicationStatus = "Hired"
)

type AuditAction string

const (
	ActionSaved       AuditAction = "saved"
	ActionUnsaved     AuditAction = "unsaved"
	ActionApplied     AuditAction = "applied"
	ActionWithdrawn   AuditAction = "withdrawn"
	ActionShortlisted AuditAction = "shortlisted"
	ActionOnHold      AuditAction = "on_hold"
	ActionInterview   AuditAction = "interview"
	ActionRejected    AuditAction = "rejected"
	ActionHired       AuditAction = "hired"
)

// statusTransitions is the single source of truth for legal status moves.
// Withdrawn, Rejected and Hired are terminal. Never mutated at runtime.
var statusTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:     {StatusWithdrawn, StatusShortlisted},
	StatusWithdrawn:   {},
	StatusShortlisted: {StatusOnHold, StatusInterview, StatusRejected},
	StatusOnHold:      {StatusInterview, StatusRejected},
	StatusInterview:   {StatusRejected, StatusHired},
	StatusRejected:    {},
	StatusHired:       {},
}

// entryTransitions covers the unapplied (nil) state: the only way in is Applied.
var entryTransitions = []ApplicationStatus{StatusApplied}

// CanTransition reports whether the move from -> to is present in the
// transition table. A nil from means the record has never been applied.
func CanTransition(from *ApplicationStatus, to ApplicationStatus) bool {
	allowed := entryTransitions
	if from != nil {
		allowed = statusTransitions[*from]
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing edges.
func IsTerminal(s ApplicationStatus) bool {
	return len(statusTransitions[s]) == 0
}

// CanApply reports whether an apply action is accepted from the given state.
// Apply is the entry-point operation: it succeeds from the never-applied
// state and re-enters from Withdrawn; every other state is an active or
// resolved application and re-applying conflicts.
func CanApply(from *ApplicationStatus) bool {
	return from == nil || *from == StatusWithdrawn
}

// CanWithdraw reports whether a withdraw action is accepted from the given
// state. Withdrawal is a privileged override with its own source set, not a
// table-governed transition: any non-terminal applied status may withdraw.
func CanWithdraw(from *ApplicationStatus) bool {
	return from != nil && !IsTerminal(*from)
}

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s ApplicationStatus) bool {
	_, ok := statusTransitions[s]
	return ok
}

// ActionForStatus maps a target status to the audit action recorded for the
// transition into it.
func ActionForStatus(s ApplicationStatus) AuditAction {
	switch s {
	case StatusApplied:
		return ActionApplied
	case StatusWithdrawn:
		return ActionWithdrawn
	case StatusShortlisted:
		return ActionShortlisted
	case StatusOnHold:
		return ActionOnHold
	case StatusInterview:
		return ActionInterview
	case StatusRejected:
		return ActionRejected
	case StatusHired:
		return ActionHired
	}
	return AuditAction(s)
}

// StatusLabel renders a nullable status for error messages.
func StatusLabel(s *ApplicationStatus) string {
	if s == nil {
		return "none"
	}
	return string(*s)
}

// TransitionError builds the message surfaced when a write violates the table.
func TransitionError(from *ApplicationStatus, to ApplicationStatus) string {
	return fmt.Sprintf("Invalid status transition from %s to %s", StatusLabel(from), to)
}
