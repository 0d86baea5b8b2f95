package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Resume kinds distinguish uploaded files from AI-generated documents.
const (
	ResumeKindUpload      = "upload"
	ResumeKindGenerated   = "generated"
	ResumeKindCoverLetter = "cover_letter"
)

// Resume is one version of a user's resume or cover letter. Versions are
// numbered per (user_id, title); an ApplicationRecord references a row here
// by id and version without this core ever interpreting the content.
type Resume struct {
	ID      string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID  string `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Title   string `gorm:"column:title;type:text" json:"title"`
	Kind    string `gorm:"column:kind;type:text" json:"kind"`
	Version int    `gorm:"column:version;type:integer" json:"version"`

	// Generated documents keep their text; uploads keep the stored file path.
	Content  string `gorm:"column:content;type:text" json:"content,omitempty"`
	FilePath string `gorm:"column:file_path;type:text" json:"file_path,omitempty"`
	FileSize int    `gorm:"column:file_size;type:integer" json:"file_size,omitempty"`
	MimeType string `gorm:"column:mime_type;type:text" json:"mime_type,omitempty"`

	Skills pq.StringArray `gorm:"column:skills;type:text[]" json:"skills,omitempty"`

	// JSONB (structure owned by the client)
	Sections datatypes.JSON `gorm:"column:sections;type:jsonb" json:"sections,omitempty"`

	// pgvector, populated when the generation provider returns an embedding
	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(768)" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Resume) TableName() string { return "resumes" }
