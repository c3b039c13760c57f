package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/blogcms/blogcms/pkg/blogcms"
)

// DefaultTokenTTL bounds token lifetime when no TTL is configured.
// Unbounded tokens are a correctness bug, so a zero TTL is rejected
// outright rather than treated as "no expiry".
const DefaultTokenTTL = 24 * time.Hour

// Claims carries the subject id and role embedded in a bearer token.
type Claims struct {
	Role blogcms.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the token subject as a uuid.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, blogcms.ErrTokenInvalid
	}
	return id, nil
}

// TokenIssuer signs and verifies bearer tokens (HS256). Verification is
// stateless: no store lookup is involved.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer with the given signing secret and
// token lifetime.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenIssuer{secret: secret, ttl: ttl}, nil
}

// Issue signs a token embedding the user id, role, issue time and expiry.
func (ti *TokenIssuer) Issue(userID uuid.UUID, role blogcms.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify decodes and checks a token. The error kinds are distinct so callers
// can tell "not logged in" (ErrTokenMissing) from "stale" (ErrTokenExpired)
// from "tampered" (ErrTokenInvalid).
func (ti *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, blogcms.ErrTokenMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ti.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, blogcms.ErrTokenExpired
		}
		return nil, blogcms.ErrTokenInvalid
	}
	if !token.Valid || !claims.Role.IsValid() {
		return nil, blogcms.ErrTokenInvalid
	}

	return claims, nil
}
