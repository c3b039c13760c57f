package blogcms

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// PostRepository defines the document-store interface for blog posts.
// Implementations return ErrPostNotFound for missing ids and surface
// infrastructure failures as-is; the service maps those to
// ErrStoreUnavailable.
type PostRepository interface {
	CreatePost(ctx context.Context, post *BlogPost) error
	GetPost(ctx context.Context, id uuid.UUID) (*BlogPost, error)
	UpdatePost(ctx context.Context, post *BlogPost) error
	DeletePost(ctx context.Context, id uuid.UUID) error

	// ListPosts returns all posts newest first (created_at descending,
	// ties broken by insertion order).
	ListPosts(ctx context.Context) ([]*BlogPost, error)
}

// UserRepository defines the credential store. Emails are stored lowercase
// and unique; CreateUser returns ErrEmailTaken on a duplicate.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}

// AssetStore defines the interface for uploaded binary assets. Assets are
// addressed by a generated key on save; Save returns the public reference
// (a relative path under the store's URL prefix) that the other methods
// accept. Delete and Open return ErrAssetNotFound for missing references.
type AssetStore interface {
	// Save stores the reader's content under key and returns its public
	// reference.
	Save(ctx context.Context, key string, reader io.Reader) (string, error)

	// Delete removes the asset for ref.
	Delete(ctx context.Context, ref string) error

	// Exists reports whether an asset exists for ref.
	Exists(ctx context.Context, ref string) (bool, error)

	// Open returns the asset content for ref.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}
