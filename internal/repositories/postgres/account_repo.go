package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/talentrail/talentrail/internal/models"
	"github.com/talentrail/talentrail/internal/utils"
)

type AccountRepository interface {
	Insert(ctx context.Context, a *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	TouchSignIn(ctx context.Context, id string, at time.Time) error
}

type accountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) Insert(ctx context.Context, a *models.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var a models.Account
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}

func (r *accountRepo) TouchSignIn(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("last_sign_in_at", at.UTC()).Error
}
