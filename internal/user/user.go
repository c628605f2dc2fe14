// Package user manages the back-office staff accounts. Only chief
// doctors can reach these endpoints; everyone else sees the section
// filtered out of the menu and gets a 403 from the middleware.
package user

import (
	"time"
)

// AdminUser is one staff account of the back office.
type AdminUser struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (AdminUser) TableName() string { return "admin_users" }

func (u *AdminUser) IsActiveUser() bool {
	return u.IsActive
}
