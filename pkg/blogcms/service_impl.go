package blogcms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/blogcms/blogcms/pkg/blogcms/assetkey"
)

const defaultStoreTimeout = 10 * time.Second

// service implements the Service interface
type service struct {
	posts   PostRepository
	assets  AssetStore
	keys    assetkey.Generator
	timeout time.Duration
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithPostRepository sets the post repository for the service
func WithPostRepository(repo PostRepository) Option {
	return func(s *service) {
		s.posts = repo
	}
}

// WithAssetStore sets the asset store for the service
func WithAssetStore(store AssetStore) Option {
	return func(s *service) {
		s.assets = store
	}
}

// WithKeyGenerator overrides the asset key generation strategy
func WithKeyGenerator(gen assetkey.Generator) Option {
	return func(s *service) {
		s.keys = gen
	}
}

// WithStoreTimeout bounds every repository and asset store call. Expiry is
// surfaced as ErrStoreUnavailable.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *service) {
		s.timeout = d
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		keys:    assetkey.NewTimestampGenerator(),
		timeout: defaultStoreTimeout,
	}

	for _, option := range options {
		option(s)
	}

	if s.posts == nil {
		return nil, fmt.Errorf("post repository is required")
	}
	if s.assets == nil {
		return nil, fmt.Errorf("asset store is required")
	}

	return s, nil
}

// opCtx bounds a single operation's store calls.
func (s *service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// storeErr maps infrastructure failures to ErrStoreUnavailable while letting
// domain error kinds pass through untouched. Raw store detail stays in the
// wrapped chain and is never shown to API callers.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPostNotFound) || errors.Is(err, ErrAssetNotFound) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: operation timed out: %v", ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func (s *service) ListPosts(ctx context.Context) ([]*BlogPost, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return posts, nil
}

func (s *service) GetPost(ctx context.Context, id uuid.UUID) (*BlogPost, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return post, nil
}

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest) (*BlogPost, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Image != nil {
		if err := ValidateImage(req.Image); err != nil {
			return nil, err
		}
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	// Save the asset first so the record never points at a missing file.
	var imageRef string
	if req.Image != nil {
		key := s.keys.GenerateKey(req.Image.FileName)
		ref, err := s.assets.Save(ctx, key, bytes.NewReader(req.Image.Data))
		if err != nil {
			return nil, storeErr(&StorageError{Ref: key, Op: "save", Err: err})
		}
		imageRef = ref
	}

	now := time.Now().UTC()
	post := &BlogPost{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Author:      req.Author,
		ImageRef:    imageRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		// Compensate: the insert failed after the asset was saved, so the
		// asset would otherwise be orphaned forever.
		if imageRef != "" {
			s.removeAsset(ctx, imageRef, "create rollback")
		}
		return nil, &PostError{PostID: post.ID, Op: "create", Err: storeErr(err)}
	}

	return post, nil
}

func (s *service) UpdatePost(ctx context.Context, req UpdatePostRequest) (*BlogPost, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Image != nil {
		if err := ValidateImage(req.Image); err != nil {
			return nil, err
		}
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	post, err := s.posts.GetPost(ctx, req.ID)
	if err != nil {
		return nil, storeErr(err)
	}

	// Patch semantics: nil fields retain their stored values.
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Description != nil {
		post.Description = *req.Description
	}
	if req.Category != nil {
		post.Category = *req.Category
	}
	if req.Author != nil {
		post.Author = *req.Author
	}

	// Save the new asset before relinking, and delete the old one only
	// after the record is updated. A failure anywhere in the sequence
	// leaves the post referencing a valid image (old or new).
	oldRef := post.ImageRef
	if req.Image != nil {
		key := s.keys.GenerateKey(req.Image.FileName)
		ref, err := s.assets.Save(ctx, key, bytes.NewReader(req.Image.Data))
		if err != nil {
			return nil, storeErr(&StorageError{Ref: key, Op: "save", Err: err})
		}
		post.ImageRef = ref
	}

	post.UpdatedAt = time.Now().UTC()

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		// The record still points at the old asset; the new one would be
		// orphaned.
		if req.Image != nil {
			s.removeAsset(ctx, post.ImageRef, "update rollback")
		}
		return nil, &PostError{PostID: post.ID, Op: "update", Err: storeErr(err)}
	}

	if req.Image != nil && oldRef != "" {
		// Best-effort: a stray unreferenced file is recoverable garbage,
		// a broken reference is not.
		s.removeAsset(ctx, oldRef, "replace")
	}

	return post, nil
}

// DeletePost removes the asset first, then the record. Asset deletion
// failures other than "already missing" are logged and do not block record
// deletion: the policy favors no orphaned records over no orphaned files.
func (s *service) DeletePost(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return storeErr(err)
	}

	if post.ImageRef != "" {
		s.removeAsset(ctx, post.ImageRef, "delete")
	}

	if err := s.posts.DeletePost(ctx, id); err != nil {
		return &PostError{PostID: id, Op: "delete", Err: storeErr(err)}
	}

	return nil
}

// removeAsset deletes an asset, treating "already missing" as success and
// logging any other failure. It runs on a detached timeout so compensation
// still proceeds when the operation's own deadline already expired.
func (s *service) removeAsset(ctx context.Context, ref, reason string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.assets.Delete(ctx, ref); err != nil && !errors.Is(err, ErrAssetNotFound) {
		slog.Error("asset removal failed", "ref", ref, "reason", reason, "error", err)
	}
}
