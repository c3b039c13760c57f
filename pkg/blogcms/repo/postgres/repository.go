package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blogcms/blogcms/pkg/blogcms"
)

// DBTX is an interface that allows us to use either a database connection or
// a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements blogcms.PostRepository and blogcms.UserRepository
// using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "email") {
				return blogcms.ErrEmailTaken
			}
			return fmt.Errorf("duplicate entry in %s", operation)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *blogcms.BlogPost) error {
	query := `
		INSERT INTO posts (
			id, title, description, category, author, image_ref,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		post.ID, post.Title, post.Description, post.Category,
		post.Author, post.ImageRef, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create post", err)
	}

	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*blogcms.BlogPost, error) {
	query := `
		SELECT id, title, description, category, author, image_ref,
		       created_at, updated_at
		FROM posts WHERE id = $1`

	var post blogcms.BlogPost
	err := r.db.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Description, &post.Category,
		&post.Author, &post.ImageRef, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blogcms.ErrPostNotFound
		}
		return nil, r.handlePostgresError("get post", err)
	}

	return &post, nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *blogcms.BlogPost) error {
	query := `
		UPDATE posts SET
			title = $2, description = $3, category = $4, author = $5,
			image_ref = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		post.ID, post.Title, post.Description, post.Category,
		post.Author, post.ImageRef, post.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update post", err)
	}
	if tag.RowsAffected() == 0 {
		return blogcms.ErrPostNotFound
	}

	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return blogcms.ErrPostNotFound
	}

	return nil
}

func (r *Repository) ListPosts(ctx context.Context) ([]*blogcms.BlogPost, error) {
	// seq is an identity column, so equal created_at values keep
	// insertion order.
	query := `
		SELECT id, title, description, category, author, image_ref,
		       created_at, updated_at
		FROM posts
		ORDER BY created_at DESC, seq ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list posts", err)
	}
	defer rows.Close()

	var result []*blogcms.BlogPost
	for rows.Next() {
		var post blogcms.BlogPost
		if err := rows.Scan(
			&post.ID, &post.Title, &post.Description, &post.Category,
			&post.Author, &post.ImageRef, &post.CreatedAt, &post.UpdatedAt,
		); err != nil {
			return nil, r.handlePostgresError("list posts", err)
		}
		result = append(result, &post)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list posts", err)
	}

	return result, nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *blogcms.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create user", err)
	}

	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*blogcms.User, error) {
	query := `
		SELECT id, email, password_hash, role, created_at
		FROM users WHERE email = $1`

	var user blogcms.User
	err := r.db.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blogcms.ErrUserNotFound
		}
		return nil, r.handlePostgresError("get user by email", err)
	}

	return &user, nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*blogcms.User, error) {
	query := `
		SELECT id, email, password_hash, role, created_at
		FROM users WHERE id = $1`

	var user blogcms.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blogcms.ErrUserNotFound
		}
		return nil, r.handlePostgresError("get user", err)
	}

	return &user, nil
}
