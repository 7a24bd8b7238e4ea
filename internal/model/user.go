package model

import "time"

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model
type User struct {
	BaseModel
	Name     string   `gorm:"size:100" json:"name"`
	Email    string   `gorm:"size:255;uniqueIndex" json:"email"`
	Password string   `gorm:"size:255" json:"-"`
	Role     UserRole `gorm:"size:20;default:student" json:"role"`

	// Exam streak, maintained by the streak tracker on submission events.
	StreakDays   int        `gorm:"default:0" json:"streakDays"`
	LastExamDate *time.Time `json:"lastExamDate,omitempty"`
}

func (User) TableName() string {
	return "users"
}
