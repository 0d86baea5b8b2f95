package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/talentrail/talentrail/internal/models"
	"github.com/talentrail/talentrail/internal/utils"
)

// ErrDuplicate is returned when an insert loses the unique-index race on
// (user_id, job_post_id).
var ErrDuplicate = errors.New("application already exists for user and job post")

// ErrStale is returned when a guarded update matched no document because a
// concurrent writer moved the record's status first.
var ErrStale = errors.New("application modified concurrently")

// ApplicationRepository is the only mutation path for application records.
// Every status write re-validates its allowed-source set here, at the record
// boundary, and appends exactly one audit entry in the same update; callers
// cannot bypass the check with a direct write.
type ApplicationRepository interface {
	Insert(ctx context.Context, rec *models.ApplicationRecord) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ApplicationRecord, error)
	FindByUserAndJob(ctx context.Context, userID string, jobPostID primitive.ObjectID) (*models.ApplicationRecord, error)
	ListByUser(ctx context.Context, userID string) ([]models.ApplicationRecord, error)

	Apply(ctx context.Context, id primitive.ObjectID, from *models.ApplicationStatus, notes string, at time.Time) error
	Withdraw(ctx context.Context, id primitive.ObjectID, from *models.ApplicationStatus, at time.Time) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from *models.ApplicationStatus, to models.ApplicationStatus, at time.Time) error
	ForceStatus(ctx context.Context, id primitive.ObjectID, from *models.ApplicationStatus, to models.ApplicationStatus, at time.Time) error
	SetSaved(ctx context.Context, id primitive.ObjectID, saved bool, at time.Time) error
}

type applicationRepo struct {
	col *mongo.Collection
}

func NewApplicationRepo(db *mongo.Database) ApplicationRepository {
	return &applicationRepo{col: db.Collection("applications")}
}

func (r *applicationRepo) Insert(ctx context.Context, rec *models.ApplicationRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.InteractionHistory == nil {
		rec.InteractionHistory = []models.AuditEntry{}
	}
	// a brand-new record starts unapplied; the only status it may carry is
	// the table's entry point
	if rec.Status != nil && !models.CanTransition(nil, *rec.Status) {
		return utils.E(utils.CodeInvalidArgument, "ApplicationRepo.Insert", models.TransitionError(nil, *rec.Status), nil)
	}

	res, err := r.col.InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rec.ID = oid
	}
	return nil
}

func (r *applicationRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ApplicationRecord, error) {
	var rec models.ApplicationRecord
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &rec, err
}

func (r *applicationRepo) FindByUserAndJob(ctx context.Context, userID string, jobPostID primitive.ObjectID) (*models.ApplicationRecord, error) {
	var rec models.ApplicationRecord
	err := r.col.FindOne(ctx, bson.M{"user_id": userID, "job_post_id": jobPostID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &rec, err
}

func (r *applicationRepo) ListByUser(ctx context.Context, userID string) ([]models.ApplicationRecord, error) {
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ApplicationRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Apply moves a record into Applied. Allowed only from the never-applied
// state or from Withdrawn (re-entry).
func (r *applicationRepo) Apply(ctx context.Context, id primitive.ObjectID, from *models.ApplicationStatus, notes string, at time.Time) error {
	if !models.CanApply(from) {
		return utils.E(utils.CodeInvalidArgument, "ApplicationRepo.Apply", models.TransitionError(from, models.StatusApplied), nil)
	}

	set := bson.M{
		"status":       models.StatusApplied,
		"date_applied": at.UTC(),
		"updated_at":   at.UTC(),
	}
	if notes != "" {
		set["notes"] = notes
	}
	return r.guardedUpdate(ctx, id, from, set, models.NewTransitionEntry(from, models.StatusApplied, at))
}

// Withdraw moves a record into Withdrawn from any non-terminal applied
// status. This is the privileged override path: it does not consult the
// transition table.
func (r *applicationRepo) Withdraw(ctx context.Context, id primitive.ObjectID, from *models.ApplicationStatus, at time.Time) error {
	if !models.CanWithdraw(from) {
		return utils.E(utils.CodeInvalidArgument, "ApplicationRepo.Withdraw", models.TransitionError(from, models.StatusWithdrawn), nil)
	}

	set := bson.M{
		"status":     models.StatusWithdrawn,
		"updated_at": at.UTC(),
	}
	return r.guardedUpdate(ctx, id, from, set, models.NewTransitionEntry(from, models.StatusWithdrawn, at))
}

// UpdateStatus performs a table-governed transition.
func (r *applicationRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from *models.ApplicationStatus, to models.ApplicationStatus, at time.Time) error {
	if !models.CanTransition(from, to) {
		return utils.E(utils.CodeInvalidArgument, "ApplicationRepo.UpdateStatus", models.TransitionError(from, to), nil)
	}

	set := bson.M{
		"status":     to,
		"updated_at": at.UTC(),
	}
	return r.guardedUpdate(ctx, id, from, set, models.NewTransitionEntry(from, to, at))
}

// ForceStatus writes a status without consulting the transition table. It
// exists for the legacy recruiter path, which historically bypassed the
// table; the target must still be a valid status and the audit entry is
// still appended atomically with the write.
func (r *applicationRepo) ForceStatus(ctx context.Context, id primitive.ObjectID, from *models.ApplicationStatus, to models.ApplicationStatus, at time.Time) error {
	if !models.ValidStatus(to) {
		return utils.E(utils.CodeInvalidArgument, "ApplicationRepo.ForceStatus", fmt.Sprintf("invalid status: %s", to), nil)
	}

	set := bson.M{
		"status":     to,
		"updated_at": at.UTC(),
	}
	return r.guardedUpdate(ctx, id, from, set, models.NewTransitionEntry(from, to, at))
}

// SetSaved flips the saved flag. The filter pins the opposite value so a
// racing duplicate toggle matches nothing and appends no second entry.
func (r *applicationRepo) SetSaved(ctx context.Context, id primitive.ObjectID, saved bool, at time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "is_saved": !saved},
		bson.M{
			"$set":  bson.M{"is_saved": saved, "updated_at": at.UTC()},
			"$push": bson.M{"interaction_history": models.NewSaveEntry(saved, at)},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStale
	}
	return nil
}

// guardedUpdate pins the expected prior status in the filter so concurrent
// transition attempts cannot both commit against the same from-state, and
// pushes the audit entry atomically with the status write.
func (r *applicationRepo) guardedUpdate(ctx context.Context, id primitive.ObjectID, from *models.ApplicationStatus, set bson.M, entry models.AuditEntry) error {
	filter := bson.M{"_id": id}
	if from == nil {
		filter["status"] = bson.M{"$exists": false}
	} else {
		filter["status"] = *from
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$set":  set,
		"$push": bson.M{"interaction_history": entry},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStale
	}
	return nil
}
