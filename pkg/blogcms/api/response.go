package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/blogcms/blogcms/pkg/blogcms"
)

// ErrorBody is the JSON error envelope: {"error": {"kind": ..., "message": ...}}.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail names the failure kind alongside a human-readable message.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeError maps a domain error to a transport status and JSON body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind, message := classify(err)
	render.Status(r, status)
	render.JSON(w, r, ErrorBody{Error: ErrorDetail{Kind: kind, Message: message}})
}

// classify maps the domain error taxonomy to HTTP statuses. Store and
// unknown failures get a generic message so internal detail never leaks to
// clients.
func classify(err error) (status int, kind, message string) {
	var verr *blogcms.ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation_error", verr.Error()
	case errors.Is(err, blogcms.ErrEmailTaken):
		return http.StatusBadRequest, "email_taken", blogcms.ErrEmailTaken.Error()
	case errors.Is(err, blogcms.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", blogcms.ErrInvalidCredentials.Error()
	case errors.Is(err, blogcms.ErrTokenMissing):
		return http.StatusUnauthorized, "token_missing", blogcms.ErrTokenMissing.Error()
	case errors.Is(err, blogcms.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired", blogcms.ErrTokenExpired.Error()
	case errors.Is(err, blogcms.ErrTokenInvalid):
		return http.StatusUnauthorized, "token_invalid", blogcms.ErrTokenInvalid.Error()
	case errors.Is(err, blogcms.ErrForbidden):
		return http.StatusForbidden, "forbidden", "you do not have permission to perform this action"
	case errors.Is(err, blogcms.ErrPostNotFound):
		return http.StatusNotFound, "not_found", blogcms.ErrPostNotFound.Error()
	case errors.Is(err, blogcms.ErrUserNotFound):
		return http.StatusNotFound, "not_found", blogcms.ErrUserNotFound.Error()
	case errors.Is(err, blogcms.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large", err.Error()
	case errors.Is(err, blogcms.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType, "unsupported_media", err.Error()
	case errors.Is(err, blogcms.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable", "backing store is unavailable"
	default:
		return http.StatusInternalServerError, "internal_error", "an internal server error occurred"
	}
}
