// Package models contains domain entities and business models for the case management system
package models

import (
	"time"
)

// Role represents a staff role granted by an admin during account approval
type Role string

const (
	RoleAdmin              Role = "admin"
	RoleCustomer           Role = "customer"
	RoleAccountManager     Role = "account-manager"
	RoleCreditAdmin        Role = "credit-admin"
	RoleBoardDirector      Role = "board-director"
	RoleTransactionManager Role = "transaction-manager"
)

// AllRoles lists every grantable role
var AllRoles = []Role{
	RoleAdmin,
	RoleCustomer,
	RoleAccountManager,
	RoleCreditAdmin,
	RoleBoardDirector,
	RoleTransactionManager,
}

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

type Account struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"size:64;not null;uniqueIndex:uk_accounts_username" json:"username"`
	PasswordHash  string     `gorm:"size:255;not null" json:"-"` // Never serialize password hash
	Email         string     `gorm:"size:255;not null;uniqueIndex:uk_accounts_email" json:"email"`
	Role          *Role      `gorm:"type:varchar(32);index:idx_accounts_role" json:"role"` // Null until an admin grants one
	IsActive      bool       `gorm:"default:false;index:idx_accounts_is_active" json:"is_active"`
	EmailVerified bool       `gorm:"default:false" json:"email_verified"`
	OTPCode       *string    `gorm:"size:6" json:"-"` // Never serialize OTP code
	OTPExpiresAt  *time.Time `json:"-"`
	CreatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP;index:idx_accounts_created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// HasRole reports whether the account holds the given role
func (a *Account) HasRole(role Role) bool {
	return a.Role != nil && *a.Role == role
}

// IsAdmin reports whether the account holds the admin role
func (a *Account) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// OTPExpired reports whether the pending OTP is past its expiry.
// A missing expiry counts as expired.
func (a *Account) OTPExpired(now time.Time) bool {
	return a.OTPExpiresAt == nil || !now.Before(*a.OTPExpiresAt)
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	ID              *uint
	Username        *string
	Email           *string
	Role            *Role
	HasRole         *bool
	IsActive        *bool
	EmailVerified   *bool
	ExcludeUsername *string
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
}
