package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/talentrail/talentrail/internal/models"
	pgrepo "github.com/talentrail/talentrail/internal/repositories/postgres"
	"github.com/talentrail/talentrail/internal/utils"
)

const tokenTTL = 24 * time.Hour

type AccountService interface {
	Register(ctx context.Context, email, password, fullName string, role models.AccountRole) (*models.Account, error)
	Login(ctx context.Context, email, password string) (token string, acc *models.Account, err error)
}

type accountService struct {
	accounts pgrepo.AccountRepository
}

func NewAccountService(accounts pgrepo.AccountRepository) AccountService {
	return &accountService{accounts: accounts}
}

func (s *accountService) Register(ctx context.Context, email, password, fullName string, role models.AccountRole) (*models.Account, error) {
	const op = "AccountService.Register"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}
	if role != models.RoleApplicant && role != models.RoleRecruiter {
		return nil, utils.E(utils.CodeInvalidArgument, op, "role must be applicant or recruiter", nil)
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, utils.E(utils.CodeConflict, op, "email already registered", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check email", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	acc := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accounts.Insert(ctx, acc); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create account", err)
	}
	return acc, nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (string, *models.Account, error) {
	const op = "AccountService.Login"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", nil, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
		}
		return "", nil, utils.E(utils.CodeInternal, op, "failed to load account", err)
	}
	if err := utils.CheckPassword(acc.PasswordHash, password); err != nil {
		return "", nil, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}

	now := time.Now().UTC()
	token, err := signToken(acc, now)
	if err != nil {
		return "", nil, utils.E(utils.CodeInternal, op, "failed to sign token", err)
	}

	if err := s.accounts.TouchSignIn(ctx, acc.ID, now); err != nil {
		return "", nil, utils.E(utils.CodeInternal, op, "failed to record sign-in", err)
	}
	acc.LastSignInAt = &now

	return token, acc, nil
}

func signToken(acc *models.Account, now time.Time) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}

	claims := jwt.MapClaims{
		"sub":  acc.ID,
		"role": string(acc.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}
