package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/talentrail/talentrail/internal/cache"
	"github.com/talentrail/talentrail/internal/models"
	mongorepo "github.com/talentrail/talentrail/internal/repositories/mongo"
	"github.com/talentrail/talentrail/internal/utils"
)

type JobPostService interface {
	Create(ctx context.Context, recruiterID string, p *models.JobPost) (*models.JobPost, error)
	Get(ctx context.Context, jobPostID string) (*models.JobPost, error)
	ListAvailable(ctx context.Context, f models.JobPostFilter) ([]models.JobPost, error)
	Close(ctx context.Context, recruiterID, jobPostID string) error
}

type jobPostService struct {
	posts mongorepo.JobPostRepository
	cache cache.Cache
	log   *logrus.Logger
}

func NewJobPostService(posts mongorepo.JobPostRepository, c cache.Cache, log *logrus.Logger) JobPostService {
	return &jobPostService{posts: posts, cache: c, log: log}
}

func (s *jobPostService) Create(ctx context.Context, recruiterID string, p *models.JobPost) (*models.JobPost, error) {
	const op = "JobPostService.Create"

	if recruiterID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "recruiter_id is required", nil)
	}
	if p == nil || p.Title == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title is required", nil)
	}
	if p.Deadline.IsZero() || p.Deadline.Before(time.Now().UTC()) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "deadline must be in the future", nil)
	}

	p.RecruiterID = recruiterID
	p.IsActive = true

	if err := s.posts.Insert(ctx, p); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create job post", err)
	}
	return p, nil
}

func (s *jobPostService) Get(ctx context.Context, jobPostID string) (*models.JobPost, error) {
	const op = "JobPostService.Get"

	id, err := primitive.ObjectIDFromHex(jobPostID)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid job post id", err)
	}

	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job post not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job post", err)
	}
	return p, nil
}

// ListAvailable is cache-aside: correctness never depends on the cache, a
// miss recomputes from the store and repopulates.
func (s *jobPostService) ListAvailable(ctx context.Context, f models.JobPostFilter) ([]models.JobPost, error) {
	const op = "JobPostService.ListAvailable"

	key := cache.AvailableJobsKey(f)
	var cached []models.JobPost
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
	} else if hit {
		return cached, nil
	}

	posts, err := s.posts.ListAvailable(ctx, f, time.Now().UTC())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list job posts", err)
	}
	if posts == nil {
		posts = []models.JobPost{}
	}

	if err := s.cache.SetJSON(ctx, key, posts, cache.DefaultTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return posts, nil
}

func (s *jobPostService) Close(ctx context.Context, recruiterID, jobPostID string) error {
	const op = "JobPostService.Close"

	p, err := s.Get(ctx, jobPostID)
	if err != nil {
		return err
	}
	if p.RecruiterID != recruiterID {
		return utils.E(utils.CodeForbidden, op, "not the owner of this job post", nil)
	}

	if err := s.posts.SetActive(ctx, p.ID, false); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "job post not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to close job post", err)
	}
	return nil
}
