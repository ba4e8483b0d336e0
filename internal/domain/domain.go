package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleNurse        Role = "nurse"
	RolePharmacist   Role = "pharmacist"
	RoleStorekeeper  Role = "storekeeper"
	RoleReceptionist Role = "receptionist"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleNurse, RolePharmacist, RoleStorekeeper, RoleReceptionist:
		return true
	}
	return false
}

type User struct {
	Base

	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Name         string `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Role         Role   `gorm:"column:role;type:varchar(30);not null;index" json:"role"`

	IsActive         bool       `gorm:"column:is_active;default:true;index" json:"isActive"`
	FailedLoginCount int        `gorm:"column:failed_login_count;default:0" json:"-"`
	LockedUntil      *time.Time `gorm:"column:locked_until" json:"lockedUntil,omitempty"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
}

func (User) TableName() string {
	return "auth.users"
}

const (
	MaxFailedLogins   = 5
	LoginLockDuration = 15 * time.Minute
)

func (u *User) ApplyDefaults() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Name = strings.TrimSpace(u.Name)
}

func (u *User) Validate() error {
	var errs []string
	if u.Email == "" {
		errs = append(errs, "email is required")
	}
	if u.Name == "" {
		errs = append(errs, "name is required")
	}
	if !u.Role.IsValid() {
		errs = append(errs, "role is invalid")
	}
	if u.PasswordHash == "" {
		errs = append(errs, "password is required")
	}
	return NewValidationError(errs)
}

// IsLocked returns true if the account is temporarily locked due to failed logins.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// RegisterLoginAttempt updates the failed-login counter. The account locks for
// LoginLockDuration once MaxFailedLogins consecutive attempts have failed.
func (u *User) RegisterLoginAttempt(success bool, now time.Time) {
	if success {
		u.FailedLoginCount = 0
		u.LockedUntil = nil
		u.LastLoginAt = &now
		return
	}
	u.FailedLoginCount++
	if u.FailedLoginCount >= MaxFailedLogins {
		until := now.Add(LoginLockDuration)
		u.LockedUntil = &until
		u.FailedLoginCount = 0
	}
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionLogin  AuditAction = "login"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who. UserID is nil for anonymous callers (auth disabled).
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	UserRole  Role       `gorm:"column:user_role;type:varchar(30)"`
	IPAddress string     `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	RequestID string `gorm:"column:request_id;type:varchar(50);index"`
	Changes   string `gorm:"column:changes;type:text"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}

type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"` // Always "Bearer"
}

type Claims struct {
	UserID uuid.UUID `json:"sub"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}
