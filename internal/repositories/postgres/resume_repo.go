package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/talentrail/talentrail/internal/models"
	"github.com/talentrail/talentrail/internal/utils"
)

type ResumeRepository interface {
	Insert(ctx context.Context, r *models.Resume) error
	GetByID(ctx context.Context, id string) (*models.Resume, error)
	ListByUser(ctx context.Context, userID string) ([]models.Resume, error)
	NextVersion(ctx context.Context, userID, title string) (int, error)
}

type resumeRepo struct {
	db *gorm.DB
}

func NewResumeRepo(db *gorm.DB) ResumeRepository {
	return &resumeRepo{db: db}
}

func (r *resumeRepo) Insert(ctx context.Context, row *models.Resume) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *resumeRepo) GetByID(ctx context.Context, id string) (*models.Resume, error) {
	var row models.Resume
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *resumeRepo) ListByUser(ctx context.Context, userID string) ([]models.Resume, error) {
	var rows []models.Resume
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// NextVersion returns 1 + the highest existing version for (user, title).
func (r *resumeRepo) NextVersion(ctx context.Context, userID, title string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.Resume{}).
		Where("user_id = ? AND title = ?", userID, title).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	return max + 1, err
}
