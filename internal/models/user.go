package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleAdmin   UserRole = "ADMIN"
)

type User struct {
	ID    uint     `json:"id" gorm:"primaryKey"`
	Email string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	Name  string   `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Role  UserRole `json:"role" gorm:"not null;default:STUDENT;size:20" validate:"omitempty,oneof=STUDENT ADMIN"`

	// Bcrypt hash, never serialized
	Password string `json:"-" gorm:"not null;size:100"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
