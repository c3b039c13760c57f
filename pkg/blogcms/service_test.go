package blogcms_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogcms/blogcms/pkg/blogcms"
	repomemory "github.com/blogcms/blogcms/pkg/blogcms/repo/memory"
	memorystorage "github.com/blogcms/blogcms/pkg/blogcms/storage/memory"
)

// pngImage returns a minimal valid PNG upload.
func pngImage(fileName string) *blogcms.ImageUpload {
	data := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	return &blogcms.ImageUpload{
		FileName:    fileName,
		ContentType: "image/png",
		Data:        data,
	}
}

func validCreateRequest(image *blogcms.ImageUpload) blogcms.CreatePostRequest {
	return blogcms.CreatePostRequest{
		Title:       "First Post",
		Description: "A post about something",
		Category:    "general",
		Author:      "alice",
		Image:       image,
	}
}

func setupTestService(t *testing.T) (blogcms.Service, *repomemory.Repository, *memorystorage.Store) {
	repo := repomemory.New()
	store := memorystorage.New()

	svc, err := blogcms.New(
		blogcms.WithPostRepository(repo),
		blogcms.WithAssetStore(store),
	)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return svc, repo, store
}

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []blogcms.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []blogcms.Option{},
			expectError: true,
		},
		{
			name: "repository alone should fail",
			options: []blogcms.Option{
				blogcms.WithPostRepository(repomemory.New()),
			},
			expectError: true,
		},
		{
			name: "repository and asset store should succeed",
			options: []blogcms.Option{
				blogcms.WithPostRepository(repomemory.New()),
				blogcms.WithAssetStore(memorystorage.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := blogcms.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("with image", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		post, err := svc.CreatePost(ctx, validCreateRequest(pngImage("cover.png")))
		require.NoError(t, err)
		require.NotNil(t, post)

		assert.NotEqual(t, uuid.Nil, post.ID)
		assert.Equal(t, "First Post", post.Title)
		assert.NotEmpty(t, post.ImageRef)
		assert.False(t, post.CreatedAt.IsZero())
		assert.Equal(t, post.CreatedAt, post.UpdatedAt)

		exists, err := store.Exists(ctx, post.ImageRef)
		require.NoError(t, err)
		assert.True(t, exists)

		got, err := svc.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.ID, got.ID)
		assert.Equal(t, post.ImageRef, got.ImageRef)
	})

	t.Run("without image", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		post, err := svc.CreatePost(ctx, validCreateRequest(nil))
		require.NoError(t, err)
		assert.Empty(t, post.ImageRef)
		assert.Zero(t, store.Len())
	})

	t.Run("missing fields write nothing", func(t *testing.T) {
		svc, repo, store := setupTestService(t)

		req := validCreateRequest(pngImage("cover.png"))
		req.Title = ""
		req.Author = "   "

		_, err := svc.CreatePost(ctx, req)

		var verr *blogcms.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "title")
		assert.Contains(t, verr.Fields, "author")

		assert.Zero(t, store.Len())
		posts, err := repo.ListPosts(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("oversized image writes nothing", func(t *testing.T) {
		svc, repo, store := setupTestService(t)

		img := pngImage("big.png")
		img.Data = append(img.Data, make([]byte, blogcms.MaxImageBytes)...)

		_, err := svc.CreatePost(ctx, validCreateRequest(img))
		assert.ErrorIs(t, err, blogcms.ErrPayloadTooLarge)

		assert.Zero(t, store.Len())
		posts, err := repo.ListPosts(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("disallowed file type writes nothing", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		img := &blogcms.ImageUpload{
			FileName:    "script.svg",
			ContentType: "image/svg+xml",
			Data:        []byte("<svg></svg>"),
		}

		_, err := svc.CreatePost(ctx, validCreateRequest(img))
		assert.ErrorIs(t, err, blogcms.ErrUnsupportedMedia)
		assert.Zero(t, store.Len())
	})
}

func TestGetPost(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	_, err := svc.GetPost(ctx, uuid.New())
	assert.ErrorIs(t, err, blogcms.ErrPostNotFound)
}

func TestListPostsOrdering(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	first, err := svc.CreatePost(ctx, validCreateRequest(nil))
	require.NoError(t, err)

	second := validCreateRequest(nil)
	second.Title = "Second Post"
	secondPost, err := svc.CreatePost(ctx, second)
	require.NoError(t, err)

	third := validCreateRequest(nil)
	third.Title = "Third Post"
	thirdPost, err := svc.CreatePost(ctx, third)
	require.NoError(t, err)

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)

	// Newest first; equal timestamps keep insertion order.
	ids := []uuid.UUID{posts[0].ID, posts[1].ID, posts[2].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, secondPost.ID)
	assert.Contains(t, ids, thirdPost.ID)
	for i := 0; i < len(posts)-1; i++ {
		assert.False(t, posts[i].CreatedAt.Before(posts[i+1].CreatedAt),
			"posts must be ordered newest first")
	}
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("patch retains unset fields", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		post, err := svc.CreatePost(ctx, validCreateRequest(nil))
		require.NoError(t, err)

		title := "Renamed"
		updated, err := svc.UpdatePost(ctx, blogcms.UpdatePostRequest{
			ID:    post.ID,
			Title: &title,
		})
		require.NoError(t, err)

		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, post.Description, updated.Description)
		assert.Equal(t, post.Category, updated.Category)
		assert.Equal(t, post.Author, updated.Author)
		assert.Equal(t, post.CreatedAt, updated.CreatedAt)
		assert.False(t, updated.UpdatedAt.Before(post.UpdatedAt))
	})

	t.Run("supplied empty field rejected", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		post, err := svc.CreatePost(ctx, validCreateRequest(nil))
		require.NoError(t, err)

		empty := "  "
		_, err = svc.UpdatePost(ctx, blogcms.UpdatePostRequest{
			ID:    post.ID,
			Title: &empty,
		})

		var verr *blogcms.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "title")
	})

	t.Run("image replace removes old asset", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		post, err := svc.CreatePost(ctx, validCreateRequest(pngImage("old.png")))
		require.NoError(t, err)
		oldRef := post.ImageRef

		updated, err := svc.UpdatePost(ctx, blogcms.UpdatePostRequest{
			ID:    post.ID,
			Image: pngImage("new.png"),
		})
		require.NoError(t, err)

		assert.NotEqual(t, oldRef, updated.ImageRef)

		oldExists, err := store.Exists(ctx, oldRef)
		require.NoError(t, err)
		assert.False(t, oldExists, "old asset must be gone after replace")

		newExists, err := store.Exists(ctx, updated.ImageRef)
		require.NoError(t, err)
		assert.True(t, newExists)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("two sequential replaces leave one asset", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		post, err := svc.CreatePost(ctx, validCreateRequest(pngImage("a.png")))
		require.NoError(t, err)

		_, err = svc.UpdatePost(ctx, blogcms.UpdatePostRequest{ID: post.ID, Image: pngImage("b.png")})
		require.NoError(t, err)

		final, err := svc.UpdatePost(ctx, blogcms.UpdatePostRequest{ID: post.ID, Image: pngImage("c.png")})
		require.NoError(t, err)

		assert.Equal(t, 1, store.Len())
		exists, err := store.Exists(ctx, final.ImageRef)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("unknown post", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		title := "x"
		_, err := svc.UpdatePost(ctx, blogcms.UpdatePostRequest{ID: uuid.New(), Title: &title})
		assert.ErrorIs(t, err, blogcms.ErrPostNotFound)
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("removes record and asset", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		post, err := svc.CreatePost(ctx, validCreateRequest(pngImage("cover.png")))
		require.NoError(t, err)

		require.NoError(t, svc.DeletePost(ctx, post.ID))

		_, err = svc.GetPost(ctx, post.ID)
		assert.ErrorIs(t, err, blogcms.ErrPostNotFound)
		assert.Zero(t, store.Len())
	})

	t.Run("tolerates already-missing asset", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		post, err := svc.CreatePost(ctx, validCreateRequest(pngImage("cover.png")))
		require.NoError(t, err)

		// Something else removed the file out from under us.
		require.NoError(t, store.Delete(ctx, post.ImageRef))

		require.NoError(t, svc.DeletePost(ctx, post.ID))
		_, err = svc.GetPost(ctx, post.ID)
		assert.ErrorIs(t, err, blogcms.ErrPostNotFound)
	})

	t.Run("unknown post", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		err := svc.DeletePost(ctx, uuid.New())
		assert.ErrorIs(t, err, blogcms.ErrPostNotFound)
	})
}

// failingPostRepo wraps the memory repository but fails every insert, to
// exercise the create compensation path.
type failingPostRepo struct {
	*repomemory.Repository
}

func (f *failingPostRepo) CreatePost(ctx context.Context, post *blogcms.BlogPost) error {
	return errors.New("connection reset")
}

func TestCreatePostCompensation(t *testing.T) {
	ctx := context.Background()

	repo := &failingPostRepo{Repository: repomemory.New()}
	store := memorystorage.New()

	svc, err := blogcms.New(
		blogcms.WithPostRepository(repo),
		blogcms.WithAssetStore(store),
	)
	require.NoError(t, err)

	_, err = svc.CreatePost(ctx, validCreateRequest(pngImage("cover.png")))
	require.Error(t, err)
	assert.ErrorIs(t, err, blogcms.ErrStoreUnavailable)

	var perr *blogcms.PostError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, "create", perr.Op)

	// The saved asset must have been rolled back.
	assert.Zero(t, store.Len())
}

// failingUpdateRepo fails every record update after a successful read.
type failingUpdateRepo struct {
	*repomemory.Repository
}

func (f *failingUpdateRepo) UpdatePost(ctx context.Context, post *blogcms.BlogPost) error {
	return errors.New("connection reset")
}

func TestUpdatePostCompensation(t *testing.T) {
	ctx := context.Background()

	inner := repomemory.New()
	store := memorystorage.New()

	setup, err := blogcms.New(
		blogcms.WithPostRepository(inner),
		blogcms.WithAssetStore(store),
	)
	require.NoError(t, err)

	post, err := setup.CreatePost(ctx, validCreateRequest(pngImage("old.png")))
	require.NoError(t, err)

	svc, err := blogcms.New(
		blogcms.WithPostRepository(&failingUpdateRepo{Repository: inner}),
		blogcms.WithAssetStore(store),
	)
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, blogcms.UpdatePostRequest{ID: post.ID, Image: pngImage("new.png")})
	require.Error(t, err)
	assert.ErrorIs(t, err, blogcms.ErrStoreUnavailable)

	// The new asset was rolled back and the old one survives, so the stored
	// record still points at a live file.
	assert.Equal(t, 1, store.Len())
	exists, err := store.Exists(ctx, post.ImageRef)
	require.NoError(t, err)
	assert.True(t, exists)
}
