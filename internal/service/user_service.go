package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
	appErrors "github.com/hiraya-scholars/hiraya-api/pkg/errors"
)

type userAdminRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error
}

// UserService provides administrator account management.
type UserService struct {
	users  userAdminRepository
	logger *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(users userAdminRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger}
}

// List returns user accounts matching the filter. Administrator only.
func (s *UserService) List(ctx context.Context, actor models.PermissionSet, filter models.UserFilter) ([]models.User, int, error) {
	if !actor.CanManageUsers {
		return nil, 0, appErrors.Clone(appErrors.ErrPermissionDenied, "not allowed to manage users")
	}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list users")
	}
	return users, total, nil
}

// Get returns a single user account. Administrator only.
func (s *UserService) Get(ctx context.Context, actor models.PermissionSet, id int64) (*models.User, error) {
	if !actor.CanManageUsers {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "not allowed to manage users")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load user")
	}
	return user, nil
}

// SetStatus activates or deactivates an account. Accounts referenced by
// applications are deactivated, never hard-deleted.
func (s *UserService) SetStatus(ctx context.Context, actor models.PermissionSet, id int64, status models.UserStatus) error {
	if !actor.CanManageUsers {
		return appErrors.Clone(appErrors.ErrPermissionDenied, "not allowed to manage users")
	}
	switch status {
	case models.StatusActive, models.StatusInactive, models.StatusPending:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown account status")
	}
	if err := s.users.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update account status")
	}
	s.logger.Info("account status changed", zap.Int64("user_id", id), zap.String("status", string(status)))
	return nil
}
