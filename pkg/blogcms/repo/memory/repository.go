package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/blogcms/blogcms/pkg/blogcms"
)

// Repository implements blogcms.PostRepository and blogcms.UserRepository
// using in-memory storage.
type Repository struct {
	mu           sync.RWMutex
	posts        map[uuid.UUID]*blogcms.BlogPost
	postSeq      map[uuid.UUID]uint64 // insertion order, for stable list ties
	nextSeq      uint64
	users        map[uuid.UUID]*blogcms.User
	usersByEmail map[string]uuid.UUID
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		posts:        make(map[uuid.UUID]*blogcms.BlogPost),
		postSeq:      make(map[uuid.UUID]uint64),
		users:        make(map[uuid.UUID]*blogcms.User),
		usersByEmail: make(map[string]uuid.UUID),
	}
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *blogcms.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy to guard against external modifications
	postCopy := *post
	r.posts[post.ID] = &postCopy
	r.nextSeq++
	r.postSeq[post.ID] = r.nextSeq

	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*blogcms.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[id]
	if !exists {
		return nil, blogcms.ErrPostNotFound
	}

	postCopy := *post
	return &postCopy, nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *blogcms.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.ID]; !exists {
		return blogcms.ErrPostNotFound
	}

	postCopy := *post
	r.posts[post.ID] = &postCopy

	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[id]; !exists {
		return blogcms.ErrPostNotFound
	}

	delete(r.posts, id)
	delete(r.postSeq, id)
	return nil
}

func (r *Repository) ListPosts(ctx context.Context) ([]*blogcms.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*blogcms.BlogPost, 0, len(r.posts))
	for _, post := range r.posts {
		postCopy := *post
		result = append(result, &postCopy)
	}

	// Insertion order first, then a stable sort by created_at descending,
	// so equal timestamps keep insertion order.
	sort.Slice(result, func(i, j int) bool {
		return r.postSeq[result[i].ID] < r.postSeq[result[j].ID]
	})
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *blogcms.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := r.usersByEmail[email]; exists {
		return blogcms.ErrEmailTaken
	}

	userCopy := *user
	r.users[user.ID] = &userCopy
	r.usersByEmail[email] = user.ID

	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*blogcms.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.usersByEmail[strings.ToLower(email)]
	if !exists {
		return nil, blogcms.ErrUserNotFound
	}

	userCopy := *r.users[id]
	return &userCopy, nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*blogcms.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, blogcms.ErrUserNotFound
	}

	userCopy := *user
	return &userCopy, nil
}
