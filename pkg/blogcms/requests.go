package blogcms

import (
	"strings"

	"github.com/google/uuid"
)

// Request DTOs

// ImageUpload carries an image received from a client. Data is fully
// buffered before validation so no partial asset is ever written for a
// rejected upload.
type ImageUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// CreatePostRequest contains parameters for creating a post. All four text
// fields are required; Image is optional.
type CreatePostRequest struct {
	Title       string
	Description string
	Category    string
	Author      string
	Image       *ImageUpload
}

// Validate returns a ValidationError naming every missing field.
func (r CreatePostRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(r.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(r.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(r.Author) == "" {
		missing = append(missing, "author")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// UpdatePostRequest contains parameters for a partial post update. A nil
// field retains the stored value (patch, not replace); Image, when set,
// replaces the current asset.
type UpdatePostRequest struct {
	ID          uuid.UUID
	Title       *string
	Description *string
	Category    *string
	Author      *string
	Image       *ImageUpload
}

// Validate rejects supplied-but-empty fields, which would break the
// non-empty invariant on stored posts.
func (r UpdatePostRequest) Validate() error {
	var missing []string
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		missing = append(missing, "title")
	}
	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		missing = append(missing, "description")
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		missing = append(missing, "category")
	}
	if r.Author != nil && strings.TrimSpace(*r.Author) == "" {
		missing = append(missing, "author")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
