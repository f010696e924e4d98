package auth

import (
	"math"
	"strconv"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenIssueVerifyRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, exp, err := tm.Issue(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	id, ok := tm.Verify("Bearer " + token)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	id, ok = tm.Verify(token)
	require.True(t, ok, "bare token is accepted")
	assert.Equal(t, int64(42), id)

	id, ok = tm.Verify("bearer " + token)
	require.True(t, ok, "prefix is case-insensitive")
	assert.Equal(t, int64(42), id)
}

func TestTokenIssueRejectsUnassignedSubjects(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	for _, id := range []int64{0, -1, -3} {
		token, _, err := tm.Issue(id)
		assert.ErrorIs(t, err, ErrInvalidSubject, "id %d", id)
		assert.Empty(t, token)
	}

	for _, id := range []int64{1, math.MaxInt64} {
		token, _, err := tm.Issue(id)
		require.NoError(t, err)
		got, ok := tm.Verify(token)
		require.True(t, ok, "id %d", id)
		assert.Equal(t, id, got)
	}
}

func TestTokenDefaultTTL(t *testing.T) {
	now := time.Date(2024, 7, 11, 9, 0, 0, 0, time.UTC)
	tm := NewTokenManager(testSecret, 0, WithClock(fixedClock(now)))

	_, exp, err := tm.Issue(1)
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTokenTTL), exp)
}

func TestTokenVerifyRejectsBadHeaders(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	for _, header := range []string{"", "   ", "abc", "Bearer ", "Bearer    ", "Bearer not.a.jwt", "garbage-token-value"} {
		_, ok := tm.Verify(header)
		assert.False(t, ok, "header %q", header)
	}
}

func TestTokenVerifyRejectsWrongKey(t *testing.T) {
	issuer := NewTokenManager("other-secret", time.Hour)
	token, _, err := issuer.Issue(7)
	require.NoError(t, err)

	_, ok := NewTokenManager(testSecret, time.Hour).Verify(token)
	assert.False(t, ok)
}

func TestTokenVerifyRejectsExpired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := NewTokenManager(testSecret, time.Hour, WithClock(fixedClock(issued)))
	token, _, err := issuer.Issue(7)
	require.NoError(t, err)

	stillValid := NewTokenManager(testSecret, time.Hour, WithClock(fixedClock(issued.Add(59*time.Minute))))
	_, ok := stillValid.Verify(token)
	assert.True(t, ok)

	later := NewTokenManager(testSecret, time.Hour, WithClock(fixedClock(issued.Add(2*time.Hour))))
	_, ok = later.Verify(token)
	assert.False(t, ok)
}

func TestTokenVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tm := NewTokenManager(testSecret, time.Hour)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, ok := tm.Verify(hs512)
	assert.False(t, ok, "HS512 must be rejected")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, ok = tm.Verify(none)
	assert.False(t, ok, "alg none must be rejected")
}

func TestTokenVerifyRequiresExpiryAndNumericSubject(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	sign := func(c jwt.RegisteredClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	_, ok := tm.Verify(sign(jwt.RegisteredClaims{Subject: "7"}))
	assert.False(t, ok, "missing exp")

	_, ok = tm.Verify(sign(jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp}))
	assert.False(t, ok, "non numeric sub")

	_, ok = tm.Verify(sign(jwt.RegisteredClaims{Subject: "0", ExpiresAt: exp}))
	assert.False(t, ok, "zero sub")

	_, ok = tm.Verify(sign(jwt.RegisteredClaims{Subject: strconv.Itoa(9), ExpiresAt: exp}))
	assert.True(t, ok)
}

func TestTokenMissingSecret(t *testing.T) {
	tm := NewTokenManager("", time.Hour)
	_, _, err := tm.Issue(1)
	assert.ErrorIs(t, err, ErrSigningKeyMissing)

	_, ok := tm.Verify("anything.at.all")
	assert.False(t, ok)
}
