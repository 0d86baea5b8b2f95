package services

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/talentrail/talentrail/internal/models"
	mongorepo "github.com/talentrail/talentrail/internal/repositories/mongo"
	"github.com/talentrail/talentrail/internal/utils"
)

// fakeAppRepo mirrors the guard semantics of the mongo repository: status
// writes validate their allowed-source set, pin the expected prior status,
// and append exactly one audit entry.
type fakeAppRepo struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.ApplicationRecord
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{byID: map[primitive.ObjectID]*models.ApplicationRecord{}}
}

func copyRecord(rec *models.ApplicationRecord) *models.ApplicationRecord {
	cp := *rec
	cp.InteractionHistory = append([]models.AuditEntry(nil), rec.InteractionHistory...)
	if rec.Status != nil {
		s := *rec.Status
		cp.Status = &s
	}
	return &cp
}

func (f *fakeAppRepo) Insert(_ context.Context, rec *models.ApplicationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.byID {
		if existing.UserID == rec.UserID && existing.JobPostID == rec.JobPostID {
			return mongorepo.ErrDuplicate
		}
	}
	if rec.Status != nil && !models.CanTransition(nil, *rec.Status) {
		return utils.E(utils.CodeInvalidArgument, "fakeAppRepo.Insert", models.TransitionError(nil, *rec.Status), nil)
	}

	rec.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	f.byID[rec.ID] = copyRecord(rec)
	return nil
}

func (f *fakeAppRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.ApplicationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return copyRecord(rec), nil
}

func (f *fakeAppRepo) FindByUserAndJob(_ context.Context, userID string, jobPostID primitive.ObjectID) (*models.ApplicationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rec := range f.byID {
		if rec.UserID == userID && rec.JobPostID == jobPostID {
			return copyRecord(rec), nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeAppRepo) ListByUser(_ context.Context, userID string) ([]models.ApplicationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.ApplicationRecord
	for _, rec := range f.byID {
		if rec.UserID == userID {
			out = append(out, *copyRecord(rec))
		}
	}
	return out, nil
}

func (f *fakeAppRepo) mutate(id primitive.ObjectID, from *models.ApplicationStatus, apply func(*models.ApplicationRecord)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.byID[id]
	if !ok {
		return mongorepo.ErrStale
	}
	if (rec.Status == nil) != (from == nil) {
		return mongorepo.ErrStale
	}
	if rec.Status != nil && *rec.Status != *from {
		return mongorepo.ErrStale
	}
	apply(rec)
	return nil
}

func (f *fakeAppRepo) Apply(_ context.Context, id primitive.ObjectID, from *models.ApplicationStatus, notes string, at time.Time) error {
	if !models.CanApply(from) {
		return utils.E(utils.CodeInvalidArgument, "fakeAppRepo.Apply", models.TransitionError(from, models.StatusApplied), nil)
	}
	return f.mutate(id, from, func(rec *models.ApplicationRecord) {
		applied := models.StatusApplied
		rec.Status = &applied
		appliedAt := at.UTC()
		rec.DateApplied = &appliedAt
		rec.UpdatedAt = at.UTC()
		if notes != "" {
			rec.Notes = notes
		}
		rec.InteractionHistory = append(rec.InteractionHistory, models.NewTransitionEntry(from, models.StatusApplied, at))
	})
}

func (f *fakeAppRepo) Withdraw(_ context.Context, id primitive.ObjectID, from *models.ApplicationStatus, at time.Time) error {
	if !models.CanWithdraw(from) {
		return utils.E(utils.CodeInvalidArgument, "fakeAppRepo.Withdraw", models.TransitionError(from, models.StatusWithdrawn), nil)
	}
	return f.mutate(id, from, func(rec *models.ApplicationRecord) {
		withdrawn := models.StatusWithdrawn
		rec.Status = &withdrawn
		rec.UpdatedAt = at.UTC()
		rec.InteractionHistory = append(rec.InteractionHistory, models.NewTransitionEntry(from, models.StatusWithdrawn, at))
	})
}

func (f *fakeAppRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, from *models.ApplicationStatus, to models.ApplicationStatus, at time.Time) error {
	if !models.CanTransition(from, to) {
		return utils.E(utils.CodeInvalidArgument, "fakeAppRepo.UpdateStatus", models.TransitionError(from, to), nil)
	}
	return f.setStatus(id, from, to, at)
}

func (f *fakeAppRepo) ForceStatus(_ context.Context, id primitive.ObjectID, from *models.ApplicationStatus, to models.ApplicationStatus, at time.Time) error {
	if !models.ValidStatus(to) {
		return utils.E(utils.CodeInvalidArgument, "fakeAppRepo.ForceStatus", "invalid status", nil)
	}
	return f.setStatus(id, from, to, at)
}

func (f *fakeAppRepo) setStatus(id primitive.ObjectID, from *models.ApplicationStatus, to models.ApplicationStatus, at time.Time) error {
	return f.mutate(id, from, func(rec *models.ApplicationRecord) {
		toCopy := to
		rec.Status = &toCopy
		rec.UpdatedAt = at.UTC()
		rec.InteractionHistory = append(rec.InteractionHistory, models.NewTransitionEntry(from, to, at))
	})
}

func (f *fakeAppRepo) SetSaved(_ context.Context, id primitive.ObjectID, saved bool, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.byID[id]
	if !ok || rec.IsSaved == saved {
		return mongorepo.ErrStale
	}
	rec.IsSaved = saved
	rec.UpdatedAt = at.UTC()
	rec.InteractionHistory = append(rec.InteractionHistory, models.NewSaveEntry(saved, at))
	return nil
}

type fakePostRepo struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.JobPost
	lists int // ListAvailable call count, for cache-aside assertions
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{byID: map[primitive.ObjectID]*models.JobPost{}}
}

func (f *fakePostRepo) add(p *models.JobPost) *models.JobPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	f.byID[p.ID] = p
	return p
}

func (f *fakePostRepo) Insert(_ context.Context, p *models.JobPost) error {
	f.add(p)
	return nil
}

func (f *fakePostRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.JobPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.JobPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[primitive.ObjectID]*models.JobPost{}
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (f *fakePostRepo) ListAvailable(_ context.Context, fl models.JobPostFilter, now time.Time) ([]models.JobPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	var out []models.JobPost
	for _, p := range f.byID {
		if !p.IsActive || p.Deadline.Before(now) {
			continue
		}
		if fl.Type != "" && p.Type != fl.Type {
			continue
		}
		if fl.Level != "" && p.Level != fl.Level {
			continue
		}
		if fl.Department != "" && p.Department != fl.Department {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePostRepo) SetActive(_ context.Context, id primitive.ObjectID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	p.IsActive = active
	return nil
}

// fakeCache is an in-memory Cache that records deleted keys.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = b
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.entries, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
