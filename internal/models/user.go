package models

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a signup user type onto a role. Anything unknown is a customer.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleProvider:
		return RoleProvider
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleCustomer
	}
}

type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName  string    `gorm:"type:varchar(128);not null" json:"display_name"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	UserType     Role      `gorm:"type:varchar(16);index;not null" json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
