package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks a bearer credential and returns the verified account id.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// ErrNoSubject is returned when a structurally valid token carries no
// subject claim to use as the account id.
var ErrNoSubject = errors.New("token has no subject claim")

// JWTVerifier verifies HS256 tokens minted by the identity provider with a
// shared signing key. Expiry and issuer are enforced by the parser.
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier creates a verifier for the given signing key and expected
// issuer.
func NewJWTVerifier(secret []byte, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: secret, issuer: issuer}
}

// Verify parses and validates the token, returning its subject claim.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (interface{}, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("parsing bearer token: %w", err)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrNoSubject
	}
	return sub, nil
}
