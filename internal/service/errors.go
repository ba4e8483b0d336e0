package service

import (
	"errors"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
)

var ErrForbidden = errors.New("forbidden: insufficient permissions")

// Actor identifies who triggered an operation. UserID is nil when requests
// are not authenticated.
type Actor struct {
	UserID    *uuid.UUID
	Role      domain.Role
	IPAddress string
	RequestID string
}

type AuditEntry struct {
	Actor
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	Changes      string
}
