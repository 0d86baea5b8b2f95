package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JobPost struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecruiterID string             `bson:"recruiter_id" json:"recruiter_id"`

	Title       string `bson:"title" json:"title"`
	Company     string `bson:"company" json:"company"`
	Description string `bson:"description" json:"description"`

	// Filterable attributes.
	Type       string `bson:"type" json:"type"`             // full-time|part-time|contract|internship
	Level      string `bson:"level" json:"level"`           // junior|mid|senior
	Department string `bson:"department" json:"department"` // engineering|design|...

	IsActive bool      `bson:"is_active" json:"is_active"`
	Deadline time.Time `bson:"deadline" json:"deadline"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// JobPostSummary is the slice of posting fields resolved into application
// listings.
type JobPostSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Title    string             `bson:"title" json:"title"`
	Company  string             `bson:"company" json:"company"`
	Type     string             `bson:"type" json:"type"`
	Level    string             `bson:"level" json:"level"`
	Deadline time.Time          `bson:"deadline" json:"deadline"`
	IsActive bool               `bson:"is_active" json:"is_active"`
}

func (p *JobPost) Summary() *JobPostSummary {
	return &JobPostSummary{
		ID:       p.ID,
		Title:    p.Title,
		Company:  p.Company,
		Type:     p.Type,
		Level:    p.Level,
		Deadline: p.Deadline,
		IsActive: p.IsActive,
	}
}

// JobPostFilter carries the optional listing filters. Zero values mean "all".
type JobPostFilter struct {
	Type       string `form:"type" json:"type"`
	Level      string `form:"level" json:"level"`
	Department string `form:"department" json:"department"`
	Search     string `form:"search" json:"search"`
}
