package auth

import "strings"

const bearerPrefix = "Bearer "

// BearerKind tags the outcome of parsing an Authorization header.
type BearerKind int

const (
	BearerAbsent BearerKind = iota
	BearerMalformed
	BearerValid
)

// Bearer is the parsed Authorization header.
type Bearer struct {
	Kind  BearerKind
	Token string
}

// ParseBearer extracts a token from a raw Authorization header value.
// Both "Bearer <token>" and a bare token are accepted.
func ParseBearer(header string) Bearer {
	header = strings.TrimSpace(header)
	if header == "" {
		return Bearer{Kind: BearerAbsent}
	}
	if len(header) < len(bearerPrefix) {
		return Bearer{Kind: BearerMalformed}
	}

	token := header
	if strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		token = strings.TrimSpace(header[len(bearerPrefix):])
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return Bearer{Kind: BearerMalformed}
	}
	return Bearer{Kind: BearerValid, Token: token}
}
