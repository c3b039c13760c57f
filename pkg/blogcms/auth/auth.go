// Package auth is the access-control core: credential checks, bearer token
// issue/verify, and the role gate applied before mutating operations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogcms/blogcms/pkg/blogcms"
)

// gate is the closed authorization table: required role -> roles allowed.
// There is no role hierarchy; extending the role set means extending this
// table, not scattering string comparisons across handlers.
var gate = map[blogcms.Role]map[blogcms.Role]bool{
	blogcms.RoleAdmin:  {blogcms.RoleAdmin: true},
	blogcms.RoleReader: {blogcms.RoleReader: true},
}

// Gate reports whether actual satisfies required. It is a pure function;
// a deny maps to 403 at the API surface, distinct from the 401 token errors.
func Gate(required, actual blogcms.Role) bool {
	allowed, ok := gate[required]
	if !ok {
		return false
	}
	return allowed[actual]
}

// Service issues tokens against the credential store and registers users.
// Token verification itself is stateless and lives on TokenIssuer.
type Service struct {
	users  blogcms.UserRepository
	tokens *TokenIssuer
}

// NewService creates an auth service backed by the given credential store
// and token issuer.
func NewService(users blogcms.UserRepository, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Verify decodes the bearer token. See TokenIssuer.Verify for error kinds.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	return s.tokens.Verify(tokenString)
}

// Register creates a user. The role defaults to reader when empty; emails
// are compared case-insensitively by storing them lowercase.
func (s *Service) Register(ctx context.Context, email, password string, role blogcms.Role) (*blogcms.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, &blogcms.ValidationError{Fields: missing}
	}

	if role == "" {
		role = blogcms.RoleReader
	}
	if !role.IsValid() {
		return nil, &blogcms.ValidationError{Fields: []string{"role"}}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &blogcms.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, blogcms.ErrEmailTaken) {
			return nil, blogcms.ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: %v", blogcms.ErrStoreUnavailable, err)
	}

	return user, nil
}

// Login checks the credentials and issues a signed token. A missing user and
// a failed password check both report ErrInvalidCredentials; the bcrypt
// comparison is constant-time, so neither path leaks which part failed.
func (s *Service) Login(ctx context.Context, email, password string) (string, *blogcms.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, blogcms.ErrUserNotFound) {
			return "", nil, blogcms.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%w: %v", blogcms.ErrStoreUnavailable, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, blogcms.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, user, nil
}

// CurrentUser resolves verified claims back to the stored user record. A
// subject that no longer exists is reported as an invalid token.
func (s *Service) CurrentUser(ctx context.Context, claims *Claims) (*blogcms.User, error) {
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, blogcms.ErrUserNotFound) {
			return nil, blogcms.ErrTokenInvalid
		}
		return nil, fmt.Errorf("%w: %v", blogcms.ErrStoreUnavailable, err)
	}

	return user, nil
}
