package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApplicationRecord tracks one user's relationship to one job posting.
// At most one record exists per (user_id, job_post_id) pair, enforced by a
// unique compound index. Records are created lazily on first save or first
// apply and are never hard-deleted; withdrawal is a status, not a deletion.
type ApplicationRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	JobPostID primitive.ObjectID `bson:"job_post_id" json:"job_post_id"`

	IsSaved bool               `bson:"is_saved" json:"is_saved"`
	Status  *ApplicationStatus `bson:"status,omitempty" json:"status,omitempty"`
	Notes   string             `bson:"notes,omitempty" json:"notes,omitempty"`

	// InteractionHistory is append-only; entries are pushed by the
	// repository in the same update as the state change they record.
	InteractionHistory []AuditEntry `bson:"interaction_history" json:"interaction_history"`

	// References to externally-owned resume data; stored, never interpreted.
	ResumeRef                string `bson:"resume_ref,omitempty" json:"resume_ref,omitempty"`
	ResumeVersionNumber      int    `bson:"resume_version_number,omitempty" json:"resume_version_number,omitempty"`
	CoverLetterVersionNumber int    `bson:"cover_letter_version_number,omitempty" json:"cover_letter_version_number,omitempty"`

	DateApplied *time.Time `bson:"date_applied,omitempty" json:"date_applied,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// AuditEntry is one immutable line of the interaction history.
type AuditEntry struct {
	Action     AuditAction        `bson:"action" json:"action"`
	FromStatus *ApplicationStatus `bson:"from_status,omitempty" json:"from_status,omitempty"`
	ToStatus   *ApplicationStatus `bson:"to_status,omitempty" json:"to_status,omitempty"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// NewSaveEntry records a save/unsave flip.
func NewSaveEntry(saved bool, at time.Time) AuditEntry {
	action := ActionUnsaved
	if saved {
		action = ActionSaved
	}
	return AuditEntry{Action: action, Timestamp: at.UTC()}
}

// NewTransitionEntry records an accepted status change.
func NewTransitionEntry(from *ApplicationStatus, to ApplicationStatus, at time.Time) AuditEntry {
	toCopy := to
	return AuditEntry{
		Action:     ActionForStatus(to),
		FromStatus: from,
		ToStatus:   &toCopy,
		Timestamp:  at.UTC(),
	}
}

// ApplicationView is an ApplicationRecord with its posting summary resolved,
// as returned by the my-applications listing.
type ApplicationView struct {
	ApplicationRecord `bson:",inline"`
	JobPost           *JobPostSummary `json:"job_post,omitempty"`
}
