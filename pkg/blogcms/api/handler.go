// Package api exposes the blog service over HTTP: auth endpoints, the post
// CRUD surface, and the middleware that enforces the role gate.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/blogcms/blogcms/pkg/blogcms"
	"github.com/blogcms/blogcms/pkg/blogcms/auth"
)

// Handler handles HTTP requests for auth and posts.
type Handler struct {
	posts blogcms.Service
	auth  *auth.Service
}

// NewHandler creates a new handler over the content service and the
// access-control core.
func NewHandler(posts blogcms.Service, authService *auth.Service) *Handler {
	return &Handler{
		posts: posts,
		auth:  authService,
	}
}

// Routes returns the routes for the API surface. Reads on /posts are public;
// every write is behind the authenticator and the admin gate.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticator)
			r.Get("/me", h.Me)
		})
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.ListPosts)
		r.Get("/{id}", h.GetPost)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticator)
			r.Use(h.RequireRole(blogcms.RoleAdmin))
			r.Post("/", h.CreatePost)
			r.Put("/{id}", h.UpdatePost)
			r.Delete("/{id}", h.DeletePost)
		})
	})

	return r
}

// RegisterRequest is the request body for registering a user.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token and the user it belongs to.
type LoginResponse struct {
	Token string        `json:"token"`
	User  *blogcms.User `json:"user"`
}

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &blogcms.ValidationError{Fields: []string{"body"}})
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password, blogcms.Role(req.Role))
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

// Login checks credentials and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &blogcms.ValidationError{Fields: []string{"body"}})
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, LoginResponse{Token: token, User: user})
}

// Me returns the account behind the presented token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CurrentUser(r.Context(), ClaimsFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, user)
}

// ListPosts returns every post, newest first.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, posts)
}

// GetPost retrieves a post by ID.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, blogcms.ErrPostNotFound)
		return
	}

	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, post)
}

// CreatePost creates a post from a multipart form. Text fields are "title",
// "description", "category" and "author"; the optional image arrives under
// the "image" file field.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	form, err := parseMultipart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	req := blogcms.CreatePostRequest{
		Title:       formField(form, "title"),
		Description: formField(form, "description"),
		Category:    formField(form, "category"),
		Author:      formField(form, "author"),
	}

	req.Image, err = formImage(form)
	if err != nil {
		writeError(w, r, err)
		return
	}

	post, err := h.posts.CreatePost(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, post)
}

// UpdatePost applies a partial update from a multipart form. Fields absent
// from the form keep their stored value.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, blogcms.ErrPostNotFound)
		return
	}

	form, err := parseMultipart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	req := blogcms.UpdatePostRequest{
		ID:          id,
		Title:       optionalField(form, "title"),
		Description: optionalField(form, "description"),
		Category:    optionalField(form, "category"),
		Author:      optionalField(form, "author"),
	}

	req.Image, err = formImage(form)
	if err != nil {
		writeError(w, r, err)
		return
	}

	post, err := h.posts.UpdatePost(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, post)
}

// DeletePost removes a post and its image asset.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, blogcms.ErrPostNotFound)
		return
	}

	if err := h.posts.DeletePost(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "post deleted"})
}

// maxFormMemory bounds the in-memory portion of multipart parsing; larger
// file parts spill to disk, but the image itself is capped separately when
// it is read.
const maxFormMemory = 1 << 20

// parseMultipart parses the request form, mapping an oversized body to the
// payload-too-large error so the client sees 413 rather than a bare 400.
func parseMultipart(r *http.Request) (*multipart.Form, error) {
	// The overall body may not exceed the image cap plus room for the
	// text fields and part framing.
	r.Body = http.MaxBytesReader(nil, r.Body, blogcms.MaxImageBytes+maxFormMemory)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			return nil, blogcms.ErrPayloadTooLarge
		}
		return nil, &blogcms.ValidationError{Fields: []string{"body"}}
	}

	return r.MultipartForm, nil
}

func formField(form *multipart.Form, key string) string {
	values := form.Value[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// optionalField distinguishes "absent from the form" (nil, keep the stored
// value) from "present" (pointer to the submitted value).
func optionalField(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// formImage reads the optional "image" file part into an ImageUpload. The
// read is capped just past the image limit so an oversized upload is
// reported as too large without buffering the whole body.
func formImage(form *multipart.Form) (*blogcms.ImageUpload, error) {
	files := form.File["image"]
	if len(files) == 0 {
		return nil, nil
	}

	header := files[0]
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, blogcms.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return &blogcms.ImageUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
