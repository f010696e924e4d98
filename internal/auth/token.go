package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// ErrSigningKeyMissing is returned when no signing secret was configured.
var ErrSigningKeyMissing = errors.New("auth: signing key missing")

// ErrInvalidSubject is returned when issuing for an unassigned (<= 0) id.
var ErrInvalidSubject = errors.New("auth: subject id must be positive")

var signingMethod = jwt.SigningMethodHS256

// TokenManager handles issuing and validating JWT tokens.
// Tokens carry only the subject id; role is always read from the store.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration, opts ...TokenOption) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	tm := &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Issue builds and signs a token for the subject. Only positive ids are signed,
// matching what Verify accepts.
func (tm *TokenManager) Issue(subjectID int64) (string, time.Time, error) {
	if len(tm.secret) == 0 {
		return "", time.Time{}, ErrSigningKeyMissing
	}
	if subjectID <= 0 {
		return "", time.Time{}, ErrInvalidSubject
	}

	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(subjectID, 10),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
	}

	token, err := jwt.NewWithClaims(signingMethod, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify validates a raw Authorization header value and returns the subject id.
// Any failure yields false.
func (tm *TokenManager) Verify(rawHeader string) (int64, bool) {
	bearer := ParseBearer(rawHeader)
	if bearer.Kind != BearerValid || len(tm.secret) == 0 {
		return 0, false
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(bearer.Token, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != signingMethod {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil || !parsed.Valid {
		return 0, false
	}

	subjectID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || subjectID <= 0 {
		return 0, false
	}
	return subjectID, true
}
