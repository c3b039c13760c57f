package blogcms

import (
	"context"

	"github.com/google/uuid"
)

// Service is the content lifecycle manager: it owns the blog post CRUD
// contract and coordinates the post repository and the asset store so an
// image replace or post delete never leaves a dangling reference.
type Service interface {
	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]*BlogPost, error)

	// GetPost returns the post with the given id or ErrPostNotFound.
	GetPost(ctx context.Context, id uuid.UUID) (*BlogPost, error)

	// CreatePost validates the request, stores the image asset if one is
	// supplied, then inserts the post record. If the insert fails after
	// the asset was saved, the asset is deleted before the error is
	// returned.
	CreatePost(ctx context.Context, req CreatePostRequest) (*BlogPost, error)

	// UpdatePost applies a partial update. A replacement image is saved
	// before the record is relinked, and the previous asset is removed
	// only afterwards, best-effort.
	UpdatePost(ctx context.Context, req UpdatePostRequest) (*BlogPost, error)

	// DeletePost removes the post's asset (tolerating an already-missing
	// one) and then the record.
	DeletePost(ctx context.Context, id uuid.UUID) error
}
