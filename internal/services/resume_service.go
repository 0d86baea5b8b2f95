package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/talentrail/talentrail/internal/models"
	"github.com/talentrail/talentrail/internal/providers/llm"
	pgrepo "github.com/talentrail/talentrail/internal/repositories/postgres"
	"github.com/talentrail/talentrail/internal/storage"
	"github.com/talentrail/talentrail/internal/utils"
)

type ResumeService interface {
	Upload(ctx context.Context, userID, fileName string, fileSize int, mimeType, objectName string, r io.Reader) (*models.Resume, error)
	Generate(ctx context.Context, userID, title, profileText, jobDescription string) (*models.Resume, error)
	CoverLetter(ctx context.Context, userID, title, profileText, jobDescription string) (*models.Resume, error)
	List(ctx context.Context, userID string) ([]models.Resume, error)
}

type resumeService struct {
	repo     pgrepo.ResumeRepository
	uploader storage.Uploader
	provider llm.Provider
}

func NewResumeService(repo pgrepo.ResumeRepository, uploader storage.Uploader, provider llm.Provider) ResumeService {
	return &resumeService{repo: repo, uploader: uploader, provider: provider}
}

func (s *resumeService) Upload(ctx context.Context, userID, fileName string, fileSize int, mimeType, objectName string, r io.Reader) (*models.Resume, error) {
	const op = "ResumeService.Upload"

	if userID == "" || objectName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and object_name are required", nil)
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeInternal, op, "uploader is not configured", nil)
	}

	storedPath, err := s.uploader.Upload(ctx, objectName, mimeType, r)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload file", err)
	}

	return s.persist(ctx, op, &models.Resume{
		UserID:   userID,
		Title:    fileName,
		Kind:     models.ResumeKindUpload,
		FilePath: storedPath,
		FileSize: fileSize,
		MimeType: mimeType,
	})
}

func (s *resumeService) Generate(ctx context.Context, userID, title, profileText, jobDescription string) (*models.Resume, error) {
	const op = "ResumeService.Generate"
	return s.generate(ctx, op, models.ResumeKindGenerated, resumePrompt(profileText, jobDescription), userID, title)
}

func (s *resumeService) CoverLetter(ctx context.Context, userID, title, profileText, jobDescription string) (*models.Resume, error) {
	const op = "ResumeService.CoverLetter"
	return s.generate(ctx, op, models.ResumeKindCoverLetter, coverLetterPrompt(profileText, jobDescription), userID, title)
}

func (s *resumeService) List(ctx context.Context, userID string) ([]models.Resume, error) {
	const op = "ResumeService.List"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list resumes", err)
	}
	return rows, nil
}

func (s *resumeService) generate(ctx context.Context, op, kind, prompt, userID, title string) (*models.Resume, error) {
	if userID == "" || title == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and title are required", nil)
	}
	if s.provider == nil {
		return nil, utils.E(utils.CodeInternal, op, "generation provider is not configured", nil)
	}

	content, err := s.provider.GenerateText(ctx, prompt)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "generation failed", err)
	}

	return s.persist(ctx, op, &models.Resume{
		UserID:  userID,
		Title:   title,
		Kind:    kind,
		Content: content,
	})
}

func (s *resumeService) persist(ctx context.Context, op string, row *models.Resume) (*models.Resume, error) {
	version, err := s.repo.NextVersion(ctx, row.UserID, row.Title)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to compute version", err)
	}

	now := time.Now().UTC()
	row.ID = uuid.NewString()
	row.Version = version
	row.CreatedAt = now
	row.UpdatedAt = now

	if err := s.repo.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist resume", err)
	}
	return row, nil
}

func resumePrompt(profileText, jobDescription string) string {
	return fmt.Sprintf(
		"Write a professional resume in plain text for the following candidate profile, tailored to the job description.\n\nProfile:\n%s\n\nJob description:\n%s",
		profileText, jobDescription)
}

func coverLetterPrompt(profileText, jobDescription string) string {
	return fmt.Sprintf(
		"Write a concise professional cover letter in plain text for the following candidate profile, tailored to the job description.\n\nProfile:\n%s\n\nJob description:\n%s",
		profileText, jobDescription)
}
