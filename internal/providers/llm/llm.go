package llm

import "context"

// Provider generates document text (resumes, cover letters) from a prompt.
// The provider is an external collaborator; callers treat failures as
// infrastructure errors, not domain errors.
type Provider interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}
