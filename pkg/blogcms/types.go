package blogcms

import (
	"time"

	"github.com/google/uuid"
)

// Role is the domain type for user roles. The set is closed: only the
// constants below are valid, and authorization decisions are table-driven
// (see the auth package) rather than compared ad hoc in handlers.
type Role string

// Role constants (typed).
const (
	RoleAdmin  Role = "admin"
	RoleReader Role = "reader"
)

// IsValid reports whether r is one of the defined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleReader:
		return true
	}
	return false
}

// User represents an account in the credential store. The password hash is
// never serialized outward.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// BlogPost represents a published post. ImageRef is the public relative path
// of the uploaded image asset ("" means the post has no image); whenever it
// is non-empty the referenced asset exists in the asset store, except during
// the brief window of an in-flight replace.
type BlogPost struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Author      string    `json:"author"`
	ImageRef    string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
