package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/talentrail/talentrail/internal/cache"
	"github.com/talentrail/talentrail/internal/models"
	mongorepo "github.com/talentrail/talentrail/internal/repositories/mongo"
	"github.com/talentrail/talentrail/internal/utils"
)

// recruiterTargets is the narrow set a recruiter may move an application to.
// The legacy recruiter path never consulted the transition table; that
// behavior is kept by default for compatibility, with table enforcement
// available behind the strict flag (see NewApplicationService).
var recruiterTargets = map[models.ApplicationStatus]bool{
	models.StatusInterview: true,
	models.StatusRejected:  true,
	models.StatusHired:     true,
}

type ApplicationService interface {
	Apply(ctx context.Context, userID, jobPostID, notes string) (*models.ApplicationRecord, error)
	Withdraw(ctx context.Context, userID, applicationID string) (*models.ApplicationRecord, error)
	ToggleSave(ctx context.Context, userID, jobPostID string, isSaved bool) (string, *models.ApplicationRecord, error)
	UpdateStatus(ctx context.Context, recruiterID, jobPostID, userID string, status models.ApplicationStatus) (*models.ApplicationRecord, error)
	History(ctx context.Context, userID, applicationID string) ([]models.AuditEntry, error)
	Get(ctx context.Context, userID, applicationID string) (*models.ApplicationRecord, error)
	ListMine(ctx context.Context, userID string) ([]models.ApplicationView, error)
}

type applicationService struct {
	apps  mongorepo.ApplicationRepository
	posts mongorepo.JobPostRepository
	cache cache.Cache
	log   *logrus.Logger

	// strictRecruiter routes recruiter status updates through the
	// transition table instead of the legacy direct write. Off by default:
	// the table has no Applied->Interview edge, so strict mode makes parts
	// of the recruiter pipeline unreachable until the table grows them.
	strictRecruiter bool
}

func NewApplicationService(apps mongorepo.ApplicationRepository, posts mongorepo.JobPostRepository, c cache.Cache, log *logrus.Logger, strictRecruiter bool) ApplicationService {
	return &applicationService{apps: apps, posts: posts, cache: c, log: log, strictRecruiter: strictRecruiter}
}

func (s *applicationService) Apply(ctx context.Context, userID, jobPostID, notes string) (*models.ApplicationRecord, error) {
	const op = "ApplicationService.Apply"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	postID, err := primitive.ObjectIDFromHex(jobPostID)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid job post id", err)
	}

	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job post not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job post", err)
	}

	now := time.Now().UTC()

	rec, err := s.apps.FindByUserAndJob(ctx, userID, postID)
	switch {
	case errors.Is(err, utils.ErrNotFound):
		applied := models.StatusApplied
		rec = &models.ApplicationRecord{
			UserID:      userID,
			JobPostID:   postID,
			Status:      &applied,
			Notes:       notes,
			DateApplied: &now,
			InteractionHistory: []models.AuditEntry{
				models.NewTransitionEntry(nil, models.StatusApplied, now),
			},
		}
		if err := s.apps.Insert(ctx, rec); err != nil {
			if errors.Is(err, mongorepo.ErrDuplicate) {
				// lost the unique-index race to a concurrent first write
				return nil, utils.E(utils.CodeConflict, op, "application already exists for this job post", err)
			}
			return nil, utils.E(utils.CodeInternal, op, "failed to create application", err)
		}

	case err != nil:
		return nil, utils.E(utils.CodeInternal, op, "failed to load application", err)

	default:
		if !models.CanApply(rec.Status) {
			return nil, utils.E(utils.CodeConflict, op,
				fmt.Sprintf("already in status: %s", models.StatusLabel(rec.Status)), nil)
		}
		if err := s.apps.Apply(ctx, rec.ID, rec.Status, notes, now); err != nil {
			return nil, s.mutationError(op, err)
		}
		applied := models.StatusApplied
		entry := models.NewTransitionEntry(rec.Status, models.StatusApplied, now)
		rec.Status = &applied
		rec.DateApplied = &now
		rec.UpdatedAt = now
		if notes != "" {
			rec.Notes = notes
		}
		rec.InteractionHistory = append(rec.InteractionHistory, entry)
	}

	s.invalidate(ctx, cache.UserApplicationsKey(userID))
	return rec, nil
}

func (s *applicationService) Withdraw(ctx context.Context, userID, applicationID string) (*models.ApplicationRecord, error) {
	const op = "ApplicationService.Withdraw"

	rec, err := s.loadOwned(ctx, op, userID, applicationID)
	if err != nil {
		return nil, err
	}

	if !models.CanWithdraw(rec.Status) {
		return nil, utils.E(utils.CodeConflict, op,
			fmt.Sprintf("cannot withdraw from status: %s", models.StatusLabel(rec.Status)), nil)
	}

	now := time.Now().UTC()
	if err := s.apps.Withdraw(ctx, rec.ID, rec.Status, now); err != nil {
		return nil, s.mutationError(op, err)
	}

	withdrawn := models.StatusWithdrawn
	entry := models.NewTransitionEntry(rec.Status, models.StatusWithdrawn, now)
	rec.Status = &withdrawn
	rec.UpdatedAt = now
	rec.InteractionHistory = append(rec.InteractionHistory, entry)

	s.invalidate(ctx,
		cache.UserApplicationsKey(userID),
		cache.ApplicationKey(rec.ID.Hex()),
	)
	return rec, nil
}

func (s *applicationService) ToggleSave(ctx context.Context, userID, jobPostID string, isSaved bool) (string, *models.ApplicationRecord, error) {
	const op = "ApplicationService.ToggleSave"

	if userID == "" {
		return "", nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	postID, err := primitive.ObjectIDFromHex(jobPostID)
	if err != nil {
		return "", nil, utils.E(utils.CodeInvalidArgument, op, "invalid job post id", err)
	}

	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", nil, utils.E(utils.CodeNotFound, op, "job post not found", err)
		}
		return "", nil, utils.E(utils.CodeInternal, op, "failed to load job post", err)
	}

	now := time.Now().UTC()

	rec, err := s.apps.FindByUserAndJob(ctx, userID, postID)
	switch {
	case errors.Is(err, utils.ErrNotFound):
		if !isSaved {
			// nothing saved, nothing to unsave; no record is created
			return "Job already unsaved", nil, nil
		}
		rec = &models.ApplicationRecord{
			UserID:             userID,
			JobPostID:          postID,
			IsSaved:            true,
			InteractionHistory: []models.AuditEntry{models.NewSaveEntry(true, now)},
		}
		if err := s.apps.Insert(ctx, rec); err != nil {
			if errors.Is(err, mongorepo.ErrDuplicate) {
				return "", nil, utils.E(utils.CodeConflict, op, "application record already exists for this job post", err)
			}
			return "", nil, utils.E(utils.CodeInternal, op, "failed to create application record", err)
		}

	case err != nil:
		return "", nil, utils.E(utils.CodeInternal, op, "failed to load application record", err)

	case rec.IsSaved == isSaved:
		// idempotent no-op: no write, no audit entry, no invalidation
		if isSaved {
			return "Job already saved", rec, nil
		}
		return "Job already unsaved", rec, nil

	default:
		if err := s.apps.SetSaved(ctx, rec.ID, isSaved, now); err != nil {
			if errors.Is(err, mongorepo.ErrStale) {
				// a concurrent toggle got there first; the requested
				// state already holds
				rec.IsSaved = isSaved
				if isSaved {
					return "Job already saved", rec, nil
				}
				return "Job already unsaved", rec, nil
			}
			return "", nil, utils.E(utils.CodeInternal, op, "failed to update saved flag", err)
		}
		rec.IsSaved = isSaved
		rec.UpdatedAt = now
		rec.InteractionHistory = append(rec.InteractionHistory, models.NewSaveEntry(isSaved, now))
	}

	s.invalidate(ctx, cache.UserApplicationsKey(userID))
	if isSaved {
		return "Job saved successfully", rec, nil
	}
	return "Job unsaved successfully", rec, nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, recruiterID, jobPostID, userID string, status models.ApplicationStatus) (*models.ApplicationRecord, error) {
	const op = "ApplicationService.UpdateStatus"

	if !recruiterTargets[status] {
		return nil, utils.E(utils.CodeInvalidArgument, op,
			fmt.Sprintf("invalid status: %s", status), nil)
	}
	postID, err := primitive.ObjectIDFromHex(jobPostID)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid job post id", err)
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job post not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job post", err)
	}
	if post.RecruiterID != recruiterID {
		return nil, utils.E(utils.CodeForbidden, op, "not the owner of this job post", nil)
	}

	rec, err := s.apps.FindByUserAndJob(ctx, userID, postID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "application not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load application", err)
	}

	now := time.Now().UTC()
	if s.strictRecruiter {
		err = s.apps.UpdateStatus(ctx, rec.ID, rec.Status, status, now)
	} else {
		err = s.apps.ForceStatus(ctx, rec.ID, rec.Status, status, now)
	}
	if err != nil {
		return nil, s.mutationError(op, err)
	}

	entry := models.NewTransitionEntry(rec.Status, status, now)
	newStatus := status
	rec.Status = &newStatus
	rec.UpdatedAt = now
	rec.InteractionHistory = append(rec.InteractionHistory, entry)

	s.invalidate(ctx,
		cache.UserApplicationsKey(userID),
		cache.ApplicationKey(rec.ID.Hex()),
	)
	return rec, nil
}

func (s *applicationService) History(ctx context.Context, userID, applicationID string) ([]models.AuditEntry, error) {
	const op = "ApplicationService.History"

	rec, err := s.loadOwned(ctx, op, userID, applicationID)
	if err != nil {
		return nil, err
	}
	return rec.InteractionHistory, nil
}

func (s *applicationService) Get(ctx context.Context, userID, applicationID string) (*models.ApplicationRecord, error) {
	const op = "ApplicationService.Get"

	if _, err := primitive.ObjectIDFromHex(applicationID); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid application id", err)
	}

	key := cache.ApplicationKey(applicationID)
	var cached models.ApplicationRecord
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
	} else if hit {
		if cached.UserID != userID {
			return nil, utils.E(utils.CodeNotFound, op, "application not found", nil)
		}
		return &cached, nil
	}

	rec, err := s.loadOwned(ctx, op, userID, applicationID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, key, rec, cache.DefaultTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return rec, nil
}

func (s *applicationService) ListMine(ctx context.Context, userID string) ([]models.ApplicationView, error) {
	const op = "ApplicationService.ListMine"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	key := cache.UserApplicationsKey(userID)
	var cached []models.ApplicationView
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
	} else if hit {
		return cached, nil
	}

	recs, err := s.apps.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list applications", err)
	}
	if len(recs) == 0 {
		// empty list surfaces as not-found; callers treat it as
		// "no applications", not a failure
		return nil, utils.E(utils.CodeNotFound, op, "no applications found", nil)
	}

	ids := make([]primitive.ObjectID, 0, len(recs))
	for i := range recs {
		ids = append(ids, recs[i].JobPostID)
	}
	posts, err := s.posts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to resolve job posts", err)
	}

	views := make([]models.ApplicationView, 0, len(recs))
	for i := range recs {
		view := models.ApplicationView{ApplicationRecord: recs[i]}
		if p, ok := posts[recs[i].JobPostID]; ok {
			view.JobPost = p.Summary()
		}
		views = append(views, view)
	}

	if err := s.cache.SetJSON(ctx, key, views, cache.DefaultTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return views, nil
}

// loadOwned fetches a record by id scoped to its owner. A record owned by
// someone else reads as not found.
func (s *applicationService) loadOwned(ctx context.Context, op, userID, applicationID string) (*models.ApplicationRecord, error) {
	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	id, err := primitive.ObjectIDFromHex(applicationID)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid application id", err)
	}

	rec, err := s.apps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "application not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load application", err)
	}
	if rec.UserID != userID {
		return nil, utils.E(utils.CodeNotFound, op, "application not found", nil)
	}
	return rec, nil
}

// mutationError maps guarded-write failures: transition violations pass
// through with their from/to message, stale writes surface as conflicts.
func (s *applicationService) mutationError(op string, err error) error {
	var ae *utils.AppError
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, mongorepo.ErrStale) {
		return utils.E(utils.CodeConflict, op, "application was modified concurrently", err)
	}
	return utils.E(utils.CodeInternal, op, "failed to update application", err)
}

// invalidate is fire-and-forget: a failed cache delete is logged and never
// fails the mutating request.
func (s *applicationService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.log.WithError(err).WithField("keys", keys).Warn("cache invalidation failed")
	}
}
