package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/config"
	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/repository"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

// UserService exposes admin user management.
type UserService struct {
	users  repository.UserRepository
	argon  auth.Argon2Params
	logger *zap.Logger
}

// UserCreateInput describes an admin-created account.
type UserCreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	IsAdmin   bool
}

// UserPatch describes an admin edit. Nil or empty strings keep the stored value.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	IsAdmin   *bool
}

// NewUserService constructs the service.
func NewUserService(cfg config.AuthConfig, users repository.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, argon: argonParams(cfg), logger: logger}
}

// ListUsers returns every account.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := requireUserAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// CreateUser adds an account with an explicit admin flag.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.User, input UserCreateInput) (*domain.User, error) {
	if err := requireUserAdmin(actor); err != nil {
		return nil, err
	}
	firstName, lastName, email, err := validateIdentity(input.FirstName, input.LastName, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.argon)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		IsAdmin:      input.IsAdmin,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, emailTaken(email)
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.Int64("actor_id", actor.ID), zap.Bool("is_admin", user.IsAdmin))
	return user, nil
}

// UpdateUser applies patch to user id.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, id int64, patch UserPatch) (*domain.User, error) {
	if err := requireUserAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if v, ok := nonEmpty(patch.FirstName); ok {
		user.FirstName = v
	}
	if v, ok := nonEmpty(patch.LastName); ok {
		user.LastName = v
	}
	if v, ok := nonEmpty(patch.Email); ok {
		email := normalizeEmail(v)
		if !validEmail(email) {
			return nil, apperrors.NewValidationError("invalid user", map[string]any{"email": "must be a valid email address"})
		}
		user.Email = email
	}
	if patch.Password != nil && *patch.Password != "" {
		hash, err := auth.HashPassword(*patch.Password, s.argon)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}
	if patch.IsAdmin != nil {
		user.IsAdmin = *patch.IsAdmin
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, emailTaken(user.Email)
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		default:
			return nil, apperrors.NewInternalError(err)
		}
	}
	return user, nil
}

// DeleteUser removes user id and, through the store cascade, their bookings.
// Deleting an absent user succeeds.
func (s *UserService) DeleteUser(ctx context.Context, actor *domain.User, id int64) error {
	if err := requireUserAdmin(actor); err != nil {
		return err
	}
	if actor.ID == id {
		return apperrors.NewValidationError("admins cannot delete their own account", map[string]any{"user_id": id})
	}
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if deleted {
		s.logger.Info("user deleted", zap.Int64("user_id", id), zap.Int64("actor_id", actor.ID))
	}
	return nil
}

func requireUserAdmin(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !auth.CanManageUsers(actor) {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}
