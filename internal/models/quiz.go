package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Quiz struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:150;index" validate:"required,min=1,max=150"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Duration    int     `json:"duration" gorm:"not null;default:60" validate:"min=1,max=300"` // minutes
	IsActive    bool    `json:"is_active" gorm:"default:true"`

	// Bcrypt hash of the optional access code. Never serialized; callers
	// see RequiresAccess instead.
	AccessCodeHash *string `json:"-" gorm:"size:100"`

	// Display settings (show results, shuffle questions, ...), stored as-is.
	Settings datatypes.JSON `json:"settings,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	Attempts  []Attempt  `json:"-" gorm:"foreignKey:QuizID"`

	// Computed fields (not stored)
	RequiresAccess bool `json:"requires_access" gorm:"-"`
	AttemptCount   int  `json:"attempt_count,omitempty" gorm:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Sanitize fills computed fields and drops anything derived from the
// access-code secret. Must be called before a quiz leaves the service layer.
func (q *Quiz) Sanitize() {
	q.RequiresAccess = q.AccessCodeHash != nil && *q.AccessCodeHash != ""
	q.AccessCodeHash = nil
}
