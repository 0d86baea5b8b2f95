package models

import "time"

type AccountRole string

const (
	RoleApplicant AccountRole = "applicant"
	RoleRecruiter AccountRole = "recruiter"
)

type Account struct {
	ID           string      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string      `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	PasswordHash string      `gorm:"column:password_hash;type:text" json:"-"`
	FullName     string      `gorm:"column:full_name;type:text" json:"full_name"`
	Role         AccountRole `gorm:"column:role;type:text" json:"role"`

	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	LastSignInAt *time.Time `gorm:"column:last_sign_in_at;type:timestamptz" json:"last_sign_in_at,omitempty"`
}

func (Account) TableName() string { return "accounts" }
