package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/metrics"
)

const minPasswordLength = 12

type CreateUserInput struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
	Password string      `json:"password"`
	IsActive *bool       `json:"isActive"`
}

type UserService struct {
	*ResourceService[domain.User, *domain.User]
}

func NewUserService(repo domain.Repository[domain.User], auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *UserService {
	return &UserService{
		ResourceService: NewResourceService[domain.User]("user", repo, auditSvc, m, log),
	}
}

// Register creates a user with a bcrypt hash of in.Password. Accounts are
// active unless IsActive is explicitly false.
func (s *UserService) Register(ctx context.Context, in CreateUserInput, actor Actor) (*domain.User, error) {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	return s.Create(ctx, &domain.User{
		Email:        in.Email,
		Name:         in.Name,
		Role:         in.Role,
		PasswordHash: hash,
		IsActive:     active,
	}, actor)
}

// Update merges patch onto the user. A "password" key replaces the stored
// hash in the same write.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, patch []byte, expectedVersion *int, actor Actor) (*domain.User, error) {
	var body struct {
		Password *string `json:"password"`
	}
	if err := json.Unmarshal(patch, &body); err != nil {
		return nil, &domain.ValidationError{Fields: []string{"body must be a JSON object"}}
	}
	if body.Password == nil {
		return s.update(ctx, id, patch, expectedVersion, actor, nil)
	}

	hash, err := hashPassword(*body.Password)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, patch, expectedVersion, actor, func(u *domain.User) error {
		u.PasswordHash = hash
		// a reset also clears any lockout
		u.FailedLoginCount = 0
		u.LockedUntil = nil
		return nil
	})
}

// Delete removes a user. Callers cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if actor.UserID != nil && *actor.UserID == id {
		return fmt.Errorf("deleting own account: %w", ErrForbidden)
	}
	return s.ResourceService.Delete(ctx, id, actor)
}

func hashPassword(password string) (string, error) {
	if err := validatePasswordStrength(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", &domain.ValidationError{Fields: []string{"password must be at most 72 bytes"}}
		}
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func validatePasswordStrength(password string) error {
	if len(password) < minPasswordLength {
		return &domain.ValidationError{Fields: []string{fmt.Sprintf("password must be at least %d characters", minPasswordLength)}}
	}
	return nil
}
