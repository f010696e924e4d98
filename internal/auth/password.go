package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Params holds the Argon2id cost parameters.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params are used when configuration does not override them.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Upper bounds accepted when hashing and when decoding a stored hash.
const (
	MaxMemoryKiB  = 1024 * 1024
	MaxIterations = 64
	maxKeyLength  = 128
)

// ErrInvalidArgon2Params is returned when cost parameters exceed the bounds
// VerifyPassword accepts; such a hash could never be verified.
var ErrInvalidArgon2Params = errors.New("auth: argon2 parameters out of range")

// HashPassword derives an encoded Argon2id hash with a fresh random salt.
// The output is self-describing: $argon2id$v=19$m=..,t=..,p=..$salt$digest.
func HashPassword(password string, params Argon2Params) (string, error) {
	params = params.withDefaults()
	if err := params.Validate(); err != nil {
		return "", err
	}

	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		params.Memory,
		params.Iterations,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// VerifyPassword reports whether password matches the encoded hash.
// Malformed hashes never match.
func VerifyPassword(password, encoded string) bool {
	params, salt, digest, ok := decodeHash(encoded)
	if !ok {
		return false
	}
	candidate := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(digest)))
	return subtle.ConstantTimeCompare(digest, candidate) == 1
}

func decodeHash(encoded string) (Argon2Params, []byte, []byte, bool) {
	var params Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return params, nil, nil, false
	}
	if params.Memory == 0 || params.Iterations == 0 || params.Parallelism == 0 {
		return params, nil, nil, false
	}
	if params.Memory > MaxMemoryKiB || params.Iterations > MaxIterations {
		return params, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return params, nil, nil, false
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 || len(digest) > maxKeyLength {
		return params, nil, nil, false
	}
	return params, salt, digest, true
}

// Validate reports whether the cost parameters are within the decode bounds.
// Zero values are allowed and mean "use the default".
func (p Argon2Params) Validate() error {
	if p.Memory > MaxMemoryKiB {
		return fmt.Errorf("%w: memory %d KiB exceeds %d", ErrInvalidArgon2Params, p.Memory, MaxMemoryKiB)
	}
	if p.Iterations > MaxIterations {
		return fmt.Errorf("%w: iterations %d exceed %d", ErrInvalidArgon2Params, p.Iterations, MaxIterations)
	}
	if p.KeyLength > maxKeyLength {
		return fmt.Errorf("%w: key length %d exceeds %d", ErrInvalidArgon2Params, p.KeyLength, maxKeyLength)
	}
	return nil
}

func (p Argon2Params) withDefaults() Argon2Params {
	if p.Memory == 0 {
		p.Memory = DefaultArgon2Params.Memory
	}
	if p.Iterations == 0 {
		p.Iterations = DefaultArgon2Params.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultArgon2Params.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = DefaultArgon2Params.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = DefaultArgon2Params.KeyLength
	}
	return p
}
