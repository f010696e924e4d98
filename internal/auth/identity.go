package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/room-booking/internal/domain"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

// UserLookup loads a user by id. It returns pgx.ErrNoRows for unknown ids.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Resolver maps a raw Authorization header to the current user record.
type Resolver struct {
	tokens *TokenManager
	users  UserLookup
}

// NewResolver constructs a Resolver.
func NewResolver(tokens *TokenManager, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve verifies the header and reloads the user from the store.
// Token failures and unknown subjects are reported as unauthorized.
func (r *Resolver) Resolve(ctx context.Context, rawHeader string) (*domain.User, error) {
	subjectID, ok := r.tokens.Verify(rawHeader)
	if !ok {
		return nil, apperrors.NewUnauthorized("invalid or missing token")
	}

	user, err := r.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("load principal %d: %w", subjectID, err))
	}
	return user, nil
}
