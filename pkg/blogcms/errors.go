package blogcms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Error kinds. Callers distinguish them with errors.Is; the API surface maps
// each kind to a transport status. Authentication failures (the token
// errors, ErrInvalidCredentials) are deliberately separate kinds from the
// authorization failure ErrForbidden.
var (
	// ErrPostNotFound indicates a blog post was not found
	ErrPostNotFound = errors.New("post not found")

	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrAssetNotFound indicates an asset was not found in the asset store
	ErrAssetNotFound = errors.New("asset not found")

	// ErrEmailTaken indicates a registration with an already-used email
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials indicates a failed email/password check
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTokenMissing indicates no bearer token was presented
	ErrTokenMissing = errors.New("authorization token missing")

	// ErrTokenInvalid indicates a malformed or tampered token
	ErrTokenInvalid = errors.New("authorization token invalid")

	// ErrTokenExpired indicates a well-formed token past its expiry
	ErrTokenExpired = errors.New("authorization token expired")

	// ErrForbidden indicates an authenticated caller with insufficient role
	ErrForbidden = errors.New("insufficient role")

	// ErrUnsupportedMedia indicates an upload outside the image allow-list
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrPayloadTooLarge indicates an upload over the size bound
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrStoreUnavailable indicates a store-layer failure (connectivity,
	// timeout). Never conflated with not-found or validation errors.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports missing required input fields by name.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// PostError represents an error related to a post lifecycle operation
type PostError struct {
	PostID uuid.UUID
	Op     string
	Err    error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post operation %s failed for post %s: %v", e.Op, e.PostID, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to asset store operations
type StorageError struct {
	Ref string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("asset operation %s failed for ref %s: %v", e.Op, e.Ref, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
