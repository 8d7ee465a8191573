// Package auth issues and verifies the bearer credentials used by the API.
//
// Register and login hand the client an HS256 JWT whose subject is the user
// id. Every protected request carries it back as
//
//	Authorization: Bearer <token>
//
// and RequireAuth resolves it to a user id without touching the database.
//
// Token layout:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:    {"alg":"HS256","typ":"JWT"}
//	- Payload:   {"sub":"<user id>","iss":"crackbano","iat":...,"exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, JWT_SECRET)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "crackbano"

// DefaultTokenTTL is used when NewTokenService is given a non-positive TTL.
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrTokenExpired is returned by Validate for a well-signed token whose
	// exp claim is in the past.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrInvalidToken covers every other verification failure.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// TokenService signs and verifies access tokens with one HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters; in production use something like `openssl rand -hex 32`.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL reports how long issued tokens stay valid.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate signs a token for userID that expires after the configured TTL.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration signs a token with an explicit lifetime. A negative
// duration yields an already-expired token, which tests rely on.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()
	c := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, algorithm, issuer and expiry and returns the
// user id from the subject claim.
//
// jwt.WithValidMethods pins HS256, so a token claiming "none" or an RSA
// algorithm is rejected before any key is consulted.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	var c jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	return c.Subject, nil
}
