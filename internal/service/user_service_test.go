package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/repository"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

func TestUserAdminRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.admin(t)
	user := f.register(t, "u@example.com")

	_, err := f.users.ListUsers(ctx, user)
	assert.Equal(t, 403, apperrors.StatusOf(err))
	_, err = f.users.CreateUser(ctx, user, UserCreateInput{FirstName: "A", LastName: "B", Email: "n@example.com", Password: "pw"})
	assert.Equal(t, 403, apperrors.StatusOf(err))
	assert.Equal(t, 403, apperrors.StatusOf(f.users.DeleteUser(ctx, user, user.ID)))
	_, err = f.users.ListUsers(ctx, nil)
	assert.Equal(t, 401, apperrors.StatusOf(err))
}

func TestUserAdminCreateUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)

	created, err := f.users.CreateUser(ctx, admin, UserCreateInput{FirstName: "Cy", LastName: "D", Email: "cy@example.com", Password: "pw", IsAdmin: true})
	require.NoError(t, err)
	assert.True(t, created.IsAdmin)

	_, err = f.users.CreateUser(ctx, admin, UserCreateInput{FirstName: "Cy", LastName: "D", Email: "CY@example.com", Password: "pw"})
	assert.Equal(t, 409, apperrors.StatusOf(err))

	updated, err := f.users.UpdateUser(ctx, admin, created.ID, UserPatch{
		FirstName: strPtr("Cyrus"),
		LastName:  strPtr(""),
		Password:  strPtr("new-password"),
		IsAdmin:   boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cyrus", updated.FirstName)
	assert.Equal(t, "D", updated.LastName)
	assert.False(t, updated.IsAdmin)

	stored := f.reload(t, created.ID)
	assert.True(t, auth.VerifyPassword("new-password", stored.PasswordHash))

	_, err = f.users.UpdateUser(ctx, admin, created.ID, UserPatch{Email: strPtr("admin@example.com")})
	assert.Equal(t, 409, apperrors.StatusOf(err))
	_, err = f.users.UpdateUser(ctx, admin, created.ID, UserPatch{Email: strPtr("broken")})
	assert.Equal(t, 400, apperrors.StatusOf(err))
	_, err = f.users.UpdateUser(ctx, admin, created.ID+100, UserPatch{})
	assert.Equal(t, 404, apperrors.StatusOf(err))

	users, err := f.users.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserAdminDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	user := f.register(t, "u@example.com")
	room := f.room(t, admin, "Blue")

	_, err := f.bookings.CreateBooking(ctx, user, BookingCreateInput{Reason: "a", Slot: 2, Date: day, RoomID: room.ID})
	require.NoError(t, err)

	assert.Equal(t, 400, apperrors.StatusOf(f.users.DeleteUser(ctx, admin, admin.ID)), "admins cannot delete themselves")

	require.NoError(t, f.users.DeleteUser(ctx, admin, user.ID))
	require.NoError(t, f.users.DeleteUser(ctx, admin, user.ID), "idempotent")

	left, err := f.store.Bookings().List(ctx, repository.BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, left, "bookings cascade with their owner")
}
