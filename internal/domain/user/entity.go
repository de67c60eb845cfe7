package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Account statuses
const (
	StatusEnabled  = "ENABLED"
	StatusDisabled = "DISABLED"
	StatusBanned   = "BANNED"
	StatusVacation = "VACATION"
)

// User represents the users table
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:citext;uniqueIndex:idx_users_email;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	FirstName    string
	LastName     string
	Status       string `gorm:"type:user_status;not null;default:'ENABLED'"`
	LastLoginAt  sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// IsEnabled reports whether the user can currently send and receive messages.
func (u User) IsEnabled() bool {
	return u.Status == StatusEnabled || u.Status == StatusVacation
}

// IsBanned reports whether the account was banned by an administrator.
func (u User) IsBanned() bool {
	return u.Status == StatusBanned
}
