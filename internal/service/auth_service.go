package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/config"
	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/repository"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

const invalidCredentials = "invalid email or password"

// AuthService coordinates registration and login flows.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	argon    auth.Argon2Params
	logger   *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Logger   *zap.Logger
	// Clock overrides token issue time; nil uses time.Now.
	Clock func() time.Time
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    deps.UserRepo,
		tokenMgr: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL(), auth.WithClock(deps.Clock)),
		argon:    argonParams(cfg.Auth),
		logger:   logger,
	}
}

// Register creates an account and signs the caller in. The first account ever created is an admin.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, domain.IssuedToken, error) {
	firstName, lastName, email, err := validateIdentity(input.FirstName, input.LastName, input.Email, input.Password)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.IssuedToken{}, emailTaken(email)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.IssuedToken{}, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.argon)
	if err != nil {
		return nil, domain.IssuedToken{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateBootstrap(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, domain.IssuedToken{}, emailTaken(email)
		}
		return nil, domain.IssuedToken{}, apperrors.NewInternalError(err)
	}
	if user.IsAdmin {
		s.logger.Info("bootstrap admin registered", zap.Int64("user_id", user.ID))
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	return user, token, nil
}

// Login authenticates by email and password. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.IssuedToken, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.IssuedToken{}, apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, domain.IssuedToken{}, apperrors.NewInternalError(err)
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, domain.IssuedToken{}, apperrors.NewUnauthorized(invalidCredentials)
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	return user, token, nil
}

// Me returns the authenticated principal.
func (s *AuthService) Me(actor *domain.User) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return actor, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(userID int64) (domain.IssuedToken, error) {
	token, exp, err := s.tokenMgr.Issue(userID)
	if err != nil {
		return domain.IssuedToken{}, apperrors.NewInternalError(err)
	}
	return domain.IssuedToken{Token: token, SubjectID: userID, ExpiresAt: exp}, nil
}

func argonParams(cfg config.AuthConfig) auth.Argon2Params {
	params := auth.DefaultArgon2Params
	if cfg.Argon2MemoryKiB > 0 {
		params.Memory = cfg.Argon2MemoryKiB
	}
	if cfg.Argon2Iterations > 0 {
		params.Iterations = cfg.Argon2Iterations
	}
	if cfg.Argon2Parallelism > 0 {
		params.Parallelism = cfg.Argon2Parallelism
	}
	return params
}

func emailTaken(email string) error {
	return apperrors.NewConflict("email already registered", map[string]any{"email": email})
}
