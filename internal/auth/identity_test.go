package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/room-booking/internal/domain"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

type stubUsers struct {
	users map[int64]*domain.User
	err   error
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func TestResolverResolvesCurrentRecord(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	users := &stubUsers{users: map[int64]*domain.User{5: {ID: 5, IsAdmin: true, Email: "a@x.io"}}}
	resolver := NewResolver(tm, users)

	token, _, err := tm.Issue(5)
	require.NoError(t, err)

	user, err := resolver.Resolve(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)

	// role is read from the store on every call
	users.users[5].IsAdmin = false
	user, err = resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
}

func TestResolverFailures(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	token, _, err := tm.Issue(99)
	require.NoError(t, err)

	_, err = NewResolver(tm, &stubUsers{}).Resolve(context.Background(), "")
	assert.Equal(t, http.StatusUnauthorized, apperrors.StatusOf(err))

	_, err = NewResolver(tm, &stubUsers{}).Resolve(context.Background(), token)
	assert.Equal(t, http.StatusUnauthorized, apperrors.StatusOf(err), "deleted user")

	_, err = NewResolver(tm, &stubUsers{err: errors.New("connection reset")}).Resolve(context.Background(), token)
	assert.Equal(t, http.StatusInternalServerError, apperrors.StatusOf(err))
}
